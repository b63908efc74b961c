package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/leadforge/internal/dto"
	middlewarepkg "github.com/octobees/leadforge/internal/middleware"
	"github.com/octobees/leadforge/internal/service"
)

// LeadGenerator runs the lead generation pipeline.
type LeadGenerator interface {
	Generate(ctx context.Context, in service.GenerateInput) (*service.GenerateOutput, error)
}

// LeadsHandler exposes lead generation endpoints.
type LeadsHandler struct {
	generator LeadGenerator
}

// NewLeadsHandler creates a new handler instance.
func NewLeadsHandler(generator LeadGenerator) *LeadsHandler {
	return &LeadsHandler{generator: generator}
}

// Generate handles POST /leads/generate requests.
func (h *LeadsHandler) Generate(c echo.Context) error {
	var req dto.GenerateLeadsRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return Error(c, http.StatusBadRequest, "prompt is required")
	}

	out, err := h.generator.Generate(c.Request().Context(), service.GenerateInput{
		Prompt:         req.Prompt,
		Website:        strings.TrimSpace(req.Website),
		ScrapeContacts: req.ScrapeContacts,
		TenantID:       middlewarepkg.TenantIDFromContext(c),
		UserID:         middlewarepkg.UserIDFromContext(c),
	})
	if err != nil {
		if errors.Is(err, service.ErrPromptRequired) {
			return Error(c, http.StatusBadRequest, "prompt is required")
		}
		zap.L().Error("generate leads",
			zap.String("request_id", middlewarepkg.RequestIDFromContext(c)),
			zap.Error(err),
		)
		return Error(c, http.StatusInternalServerError, "failed to generate leads")
	}

	resp := dto.GenerateLeadsResponse{
		Leads:             out.Leads,
		ValidationSummary: out.ValidationSummary,
		ScrapingSummary:   out.ScrapingSummary,
		RunID:             out.RunID,
	}
	return Success(c, http.StatusOK, "leads generated", resp)
}
