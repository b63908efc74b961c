package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/octobees/leadforge/internal/dto"
	"github.com/octobees/leadforge/internal/entity"
)

// ErrRunNotFound is returned when no run matches the lookup criteria.
var ErrRunNotFound = errors.New("run not found")

// pgxPool is the subset of *pgxpool.Pool used by repositories.
type pgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RunsRepository persists generation runs per tenant.
type RunsRepository interface {
	Create(ctx context.Context, run *entity.GenerationRun) error
	List(ctx context.Context, filter dto.RunListFilter) ([]entity.GenerationRun, error)
	FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*entity.GenerationRun, error)
}

// PGXRunsRepository implements RunsRepository with pgx.
type PGXRunsRepository struct {
	pool pgxPool
}

// NewPGXRunsRepository instantiates a runs repository.
func NewPGXRunsRepository(pool pgxPool) *PGXRunsRepository {
	return &PGXRunsRepository{pool: pool}
}

// Create inserts a run and fills in its generated id and timestamp.
func (r *PGXRunsRepository) Create(ctx context.Context, run *entity.GenerationRun) error {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO generation_runs (tenant_id, user_id, prompt, website, scrape_contacts, lead_count, cutoff_year, result)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at
    `, run.TenantID, run.UserID, run.Prompt, run.Website, run.ScrapeContacts, run.LeadCount, run.CutoffYear, []byte(run.Result))

	if err := row.Scan(&run.ID, &run.CreatedAt); err != nil {
		return fmt.Errorf("insert generation run: %w", err)
	}
	return nil
}

// List returns a page of runs for a tenant, newest first. The result
// document is not loaded.
func (r *PGXRunsRepository) List(ctx context.Context, filter dto.RunListFilter) ([]entity.GenerationRun, error) {
	offset := (filter.Page - 1) * filter.PerPage
	rows, err := r.pool.Query(ctx, `
        SELECT id, tenant_id, user_id, prompt, website, scrape_contacts, lead_count, cutoff_year, created_at
        FROM generation_runs
        WHERE tenant_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `, filter.TenantID, filter.PerPage, offset)
	if err != nil {
		return nil, fmt.Errorf("list generation runs: %w", err)
	}
	defer rows.Close()

	runs := make([]entity.GenerationRun, 0)
	for rows.Next() {
		var run entity.GenerationRun
		if err := rows.Scan(&run.ID, &run.TenantID, &run.UserID, &run.Prompt, &run.Website, &run.ScrapeContacts, &run.LeadCount, &run.CutoffYear, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generation run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generation runs: %w", err)
	}
	return runs, nil
}

// FindByID loads a single run, including its result document.
func (r *PGXRunsRepository) FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*entity.GenerationRun, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT id, tenant_id, user_id, prompt, website, scrape_contacts, lead_count, cutoff_year, result, created_at
        FROM generation_runs
        WHERE tenant_id = $1 AND id = $2
    `, tenantID, id)

	var (
		run    entity.GenerationRun
		result []byte
	)
	if err := row.Scan(&run.ID, &run.TenantID, &run.UserID, &run.Prompt, &run.Website, &run.ScrapeContacts, &run.LeadCount, &run.CutoffYear, &result, &run.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("query generation run: %w", err)
	}
	run.Result = result
	return &run, nil
}
