package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/leadforge/internal/dto"
	"github.com/octobees/leadforge/internal/entity"
	"github.com/octobees/leadforge/internal/repository"
)

// ErrRunNotFound is returned when a run does not exist for the tenant.
var ErrRunNotFound = errors.New("run not found")

var leadCSVHeader = []string{
	"company", "name", "email", "phone", "website", "address", "notes",
	"companies_house_found", "company_number", "company_status", "incorporation_date", "meets_recency",
	"contacts", "score",
}

// RunsService exposes the stored generation history of a tenant.
type RunsService struct {
	repo repository.RunsRepository
}

// NewRunsService creates a new instance of RunsService.
func NewRunsService(repo repository.RunsRepository) *RunsService {
	return &RunsService{repo: repo}
}

// Record stores a finished run.
func (s *RunsService) Record(ctx context.Context, run *entity.GenerationRun) error {
	if run == nil || strings.TrimSpace(run.TenantID) == "" {
		return errors.New("run must belong to a tenant")
	}
	return s.repo.Create(ctx, run)
}

// List returns runs respecting pagination defaults.
func (s *RunsService) List(ctx context.Context, filter dto.RunListFilter) ([]entity.GenerationRun, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	return s.repo.List(ctx, filter)
}

// Get returns one run of the tenant.
func (s *RunsService) Get(ctx context.Context, tenantID string, id uuid.UUID) (*entity.GenerationRun, error) {
	run, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

// ExportCSV writes the leads of a stored run as CSV.
func (s *RunsService) ExportCSV(ctx context.Context, tenantID string, id uuid.UUID, w io.Writer) error {
	run, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	var result entity.RunResult
	if len(run.Result) > 0 {
		if err := json.Unmarshal(run.Result, &result); err != nil {
			return fmt.Errorf("decode run result: %w", err)
		}
	}
	return WriteLeadsCSV(w, result.Leads)
}

// WriteLeadsCSV writes one row per lead. Contacts are flattened into a single
// "Name (Title) <email>" list.
func WriteLeadsCSV(w io.Writer, leads []entity.Lead) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(leadCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, lead := range leads {
		v := lead.Validation
		meets := ""
		if v.MeetsRecency != nil {
			meets = strconv.FormatBool(*v.MeetsRecency)
		}
		record := []string{
			lead.Company, lead.Name, lead.Email, lead.Phone, lead.Website, lead.Address, lead.Notes,
			strconv.FormatBool(v.CompaniesHouseFound), v.CompanyNumber, v.CompanyStatus, v.IncorporationDate, meets,
			formatContacts(lead.Contacts), strconv.Itoa(lead.Score),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatContacts(contacts []entity.ContactPerson) string {
	parts := make([]string, 0, len(contacts))
	for _, c := range contacts {
		var b strings.Builder
		b.WriteString(c.Name)
		if c.Title != "" {
			b.WriteString(" (" + c.Title + ")")
		}
		if c.Email != "" {
			b.WriteString(" <" + c.Email + ">")
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "; ")
}
