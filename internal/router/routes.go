package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadforge/internal/auth"
	"github.com/octobees/leadforge/internal/config"
	"github.com/octobees/leadforge/internal/handler"
	middlewarepkg "github.com/octobees/leadforge/internal/middleware"
)

const generatePath = "/leads/generate"

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Leads *handler.LeadsHandler
	Runs  *handler.RunsHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	leads := e.Group("/leads")
	leads.Use(middlewarepkg.JWT(jwtManager))
	leads.Use(middlewarepkg.RequireTenant())

	leads.POST("/generate", handlers.Leads.Generate, middlewarepkg.RouteRateLimiter(cfg.RateLimitGenerate, generatePath))

	if handlers.Runs != nil {
		leads.GET("/runs", handlers.Runs.List)
		leads.GET("/runs/:id", handlers.Runs.Get)
		leads.GET("/runs/:id/export", handlers.Runs.Export)
	}
}
