package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/octobees/leadforge/internal/dto"
	"github.com/octobees/leadforge/internal/entity"
)

var (
	runColumns = []string{"id", "tenant_id", "user_id", "prompt", "website", "scrape_contacts", "lead_count", "cutoff_year", "created_at"}
	runID      = uuid.MustParse("0b7e1f4a-3c2d-4e5f-8a9b-0c1d2e3f4a5b")
	createdAt  = time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestPGXRunsRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	website := "https://octobees.io"
	cutoff := 2023
	run := &entity.GenerationRun{
		TenantID:   "tenant-1",
		UserID:     "user-1",
		Prompt:     "Find SaaS companies founded in the last 3 years",
		Website:    &website,
		LeadCount:  2,
		CutoffYear: &cutoff,
		Result:     []byte(`{"leads":[]}`),
	}

	mock.ExpectQuery("INSERT INTO generation_runs").
		WithArgs("tenant-1", "user-1", run.Prompt, &website, false, 2, &cutoff, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(runID, createdAt))

	if err := NewPGXRunsRepository(mock).Create(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.ID != runID || !run.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected generated id and timestamp, got %s %s", run.ID, run.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGXRunsRepository_List(t *testing.T) {
	mock := newMockPool(t)
	var noWebsite *string
	var noCutoff *int
	cutoff := 2023

	rows := pgxmock.NewRows(runColumns).
		AddRow(runID, "tenant-1", "user-1", "prompt one", noWebsite, true, 3, &cutoff, createdAt).
		AddRow(uuid.New(), "tenant-1", "user-2", "prompt two", noWebsite, false, 0, noCutoff, createdAt.Add(-time.Hour))
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs("tenant-1", 20, 20).
		WillReturnRows(rows)

	runs, err := NewPGXRunsRepository(mock).List(context.Background(), dto.RunListFilter{TenantID: "tenant-1", Page: 2, PerPage: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != runID || !runs[0].ScrapeContacts || runs[0].CutoffYear == nil || *runs[0].CutoffYear != 2023 {
		t.Fatalf("unexpected first run: %+v", runs[0])
	}
	if runs[1].CutoffYear != nil || runs[1].Website != nil {
		t.Fatalf("expected null columns to stay nil, got %+v", runs[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGXRunsRepository_ListError(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery("ORDER BY created_at DESC").WillReturnError(errors.New("connection reset"))

	if _, err := NewPGXRunsRepository(mock).List(context.Background(), dto.RunListFilter{TenantID: "t", Page: 1, PerPage: 10}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPGXRunsRepository_FindByID(t *testing.T) {
	mock := newMockPool(t)
	website := "https://octobees.io"
	var noCutoff *int
	columns := append([]string{}, runColumns[:8]...)
	columns = append(columns, "result", "created_at")

	mock.ExpectQuery(`WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs("tenant-1", runID).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(runID, "tenant-1", "user-1", "prompt", &website, false, 1, noCutoff, []byte(`{"leads":[{"company":"Acme Ltd"}]}`), createdAt))

	run, err := NewPGXRunsRepository(mock).FindByID(context.Background(), "tenant-1", runID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Website == nil || *run.Website != website || string(run.Result) != `{"leads":[{"company":"Acme Ltd"}]}` {
		t.Fatalf("unexpected run: %+v", run)
	}
}

func TestPGXRunsRepository_FindByIDNotFound(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(`WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs("tenant-2", runID).
		WillReturnError(pgx.ErrNoRows)

	_, err := NewPGXRunsRepository(mock).FindByID(context.Background(), "tenant-2", runID)
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}
