package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/leadforge/internal/entity"
	"github.com/octobees/leadforge/internal/registry"
)

// RegistryChecker cross-validates leads against Companies House.
type RegistryChecker struct {
	searcher    registry.Searcher
	concurrency int
}

// NewRegistryChecker wires a checker around a registry searcher.
func NewRegistryChecker(searcher registry.Searcher, concurrency int) *RegistryChecker {
	return &RegistryChecker{searcher: searcher, concurrency: max(concurrency, 1)}
}

// Check looks up a single lead and records the outcome on its validation
// block. Lookup failures are recorded, never returned.
func (r *RegistryChecker) Check(ctx context.Context, lead *entity.Lead, filter *entity.RecencyFilter) {
	lead.Validation.CompaniesHouseFound = false
	lead.Validation.RegistryError = ""

	company, err := r.searcher.Search(ctx, lead.Company)
	if err != nil {
		if !errors.Is(err, registry.ErrNotFound) {
			zap.L().Warn("registry lookup failed",
				zap.String("company", lead.Company),
				zap.Error(err),
			)
			lead.Validation.RegistryError = err.Error()
		}
		return
	}

	lead.Validation.CompaniesHouseFound = true
	lead.Validation.CompanyNumber = company.CompanyNumber
	lead.Validation.CompanyStatus = company.CompanyStatus
	lead.Validation.IncorporationDate = company.DateOfCreation

	if filter != nil {
		if year := company.IncorporationYear(); year > 0 {
			lead.Validation.MeetsRecency = entity.BoolPtr(year >= filter.CutoffYear)
		}
	}
}

// CrossValidate checks every lead. One failing lookup never affects the others.
func (r *RegistryChecker) CrossValidate(ctx context.Context, leads []entity.Lead, filter *entity.RecencyFilter) {
	forEachLead(ctx, r.concurrency, len(leads), func(ctx context.Context, i int) {
		r.Check(ctx, &leads[i], filter)
	})
}

// forEachLead runs fn for indexes [0, n) with at most limit in flight. Each
// call owns its index, so callers write results into slot i without locking.
func forEachLead(ctx context.Context, limit, n int, fn func(ctx context.Context, i int)) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(gctx, i)
			return nil
		})
	}
	_ = g.Wait()
}
