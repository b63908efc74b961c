package dto

import "github.com/octobees/leadforge/internal/entity"

// GenerateLeadsRequest is the payload accepted by POST /leads/generate.
type GenerateLeadsRequest struct {
	Prompt         string `json:"prompt"`
	Website        string `json:"website,omitempty"`
	ScrapeContacts bool   `json:"scrapeContacts,omitempty"`
}

// GenerateLeadsResponse is returned inside the success envelope.
type GenerateLeadsResponse struct {
	Leads             []entity.Lead            `json:"leads"`
	ValidationSummary entity.ValidationSummary `json:"validation_summary"`
	ScrapingSummary   entity.ScrapingSummary   `json:"scraping_summary"`
	RunID             string                   `json:"run_id,omitempty"`
}
