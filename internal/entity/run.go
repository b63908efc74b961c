package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GenerationRun stores the outcome of one lead generation request for a tenant.
type GenerationRun struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       string          `json:"tenant_id"`
	UserID         string          `json:"user_id"`
	Prompt         string          `json:"prompt"`
	Website        *string         `json:"website,omitempty"`
	ScrapeContacts bool            `json:"scrape_contacts"`
	LeadCount      int             `json:"lead_count"`
	CutoffYear     *int            `json:"cutoff_year,omitempty"`
	Result         json.RawMessage `json:"result,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// RunResult is the JSON document persisted in GenerationRun.Result.
type RunResult struct {
	Leads             []Lead            `json:"leads"`
	ValidationSummary ValidationSummary `json:"validation_summary"`
	ScrapingSummary   ScrapingSummary   `json:"scraping_summary"`
}
