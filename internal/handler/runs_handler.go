package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/leadforge/internal/dto"
	middlewarepkg "github.com/octobees/leadforge/internal/middleware"
	"github.com/octobees/leadforge/internal/service"
)

// RunsHandler exposes the stored generation history of a tenant.
type RunsHandler struct {
	service *service.RunsService
}

// NewRunsHandler creates a new handler instance.
func NewRunsHandler(svc *service.RunsService) *RunsHandler {
	return &RunsHandler{service: svc}
}

// List handles GET /leads/runs requests.
func (h *RunsHandler) List(c echo.Context) error {
	filter := dto.RunListFilter{
		TenantID: middlewarepkg.TenantIDFromContext(c),
		Page:     parseIntDefault(c.QueryParam("page"), 1),
		PerPage:  parseIntDefault(c.QueryParam("per_page"), 20),
	}

	runs, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list runs")
	}
	return Success(c, http.StatusOK, "", runs)
}

// Get handles GET /leads/runs/:id requests.
func (h *RunsHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid run id")
	}

	run, err := h.service.Get(c.Request().Context(), middlewarepkg.TenantIDFromContext(c), id)
	if err != nil {
		return runError(c, err)
	}
	return Success(c, http.StatusOK, "", run)
}

// Export handles GET /leads/runs/:id/export requests.
func (h *RunsHandler) Export(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid run id")
	}

	var buf bytes.Buffer
	if err := h.service.ExportCSV(c.Request().Context(), middlewarepkg.TenantIDFromContext(c), id, &buf); err != nil {
		return runError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="leads-`+id.String()+`.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func runError(c echo.Context, err error) error {
	if errors.Is(err, service.ErrRunNotFound) {
		return Error(c, http.StatusNotFound, "run not found")
	}
	return Error(c, http.StatusInternalServerError, "failed to load run")
}

func parseIntDefault(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
