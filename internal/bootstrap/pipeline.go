// Package bootstrap builds the lead generation pipeline from configuration.
// It is shared by the HTTP server and the CLI.
package bootstrap

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/octobees/leadforge/internal/ai"
	"github.com/octobees/leadforge/internal/config"
	"github.com/octobees/leadforge/internal/registry"
	"github.com/octobees/leadforge/internal/scraper"
	"github.com/octobees/leadforge/internal/service"
)

// NewOpener returns the page loader for the configured scraper mode.
func NewOpener(cfg config.ScraperConfig) (scraper.Opener, error) {
	switch cfg.Mode {
	case config.ScraperModeBrowser, "":
		return scraper.NewBrowserOpener(cfg.BrowserControlURL, cfg.SettleDelay), nil
	case config.ScraperModeHTTP:
		return scraper.NewStaticOpener(nil), nil
	case config.ScraperModeWorker:
		client, err := scraper.NewWorkerClient(nil, cfg.WorkerBaseURL)
		if err != nil {
			return nil, err
		}
		return scraper.NewWorkerOpener(client), nil
	default:
		return nil, fmt.Errorf("unsupported scraper mode %q", cfg.Mode)
	}
}

// NewRegistryClient configures the Companies House client.
func NewRegistryClient(cfg config.RegistryConfig) *registry.Client {
	return registry.NewClient(cfg.BaseURL, cfg.APIKey,
		registry.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		registry.WithRateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Interval),
		registry.WithMaxAttempts(cfg.MaxAttempts),
	)
}

// NewLeadService wires every pipeline stage. recorder may be nil when run
// history is not persisted.
func NewLeadService(cfg *config.Config, recorder service.RunRecorder) (*service.LeadService, error) {
	if cfg.AI.APIKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is required")
	}
	if cfg.Registry.APIKey == "" {
		return nil, errors.New("COMPANIES_HOUSE_API_KEY is required")
	}

	opener, err := NewOpener(cfg.Scraper)
	if err != nil {
		return nil, fmt.Errorf("configure scraper: %w", err)
	}

	opts := []service.LeadServiceOption{
		service.WithNormalizer(service.NewDataProcessor(cfg.Pipeline.DefaultPhoneRegion)),
		service.WithScraper(scraper.New(opener, cfg.Scraper.PageTimeout)),
		service.WithConcurrency(cfg.Pipeline.Concurrency),
		service.WithRecencyPolicy(cfg.Pipeline.RecencyPolicy),
	}
	if recorder != nil {
		opts = append(opts, service.WithRunRecorder(recorder))
	}

	completer := ai.NewClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.MaxTokens)
	return service.NewLeadService(completer, NewRegistryClient(cfg.Registry), opts...), nil
}
