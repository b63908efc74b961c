package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/leadforge/internal/ai"
	"github.com/octobees/leadforge/internal/config"
	"github.com/octobees/leadforge/internal/entity"
	"github.com/octobees/leadforge/internal/registry"
	"github.com/octobees/leadforge/internal/scraper"
	"github.com/octobees/leadforge/internal/service/scoring"
)

var (
	// ErrPromptRequired is returned when the request carries no prompt.
	ErrPromptRequired = errors.New("prompt is required")
	// ErrGenerationFailed is returned when no usable leads came back from the AI provider.
	ErrGenerationFailed = errors.New("lead generation failed")
)

// WebsiteScraper extracts named people from a company website.
type WebsiteScraper interface {
	ScrapeWebsiteForPeople(ctx context.Context, website string) scraper.Result
}

// LeadNormalizer cleans a lead's contact fields in place.
type LeadNormalizer interface {
	NormalizeLead(ctx context.Context, lead *entity.Lead)
}

// RunRecorder persists a finished generation run.
type RunRecorder interface {
	Record(ctx context.Context, run *entity.GenerationRun) error
}

// GenerateInput is a single lead generation request.
type GenerateInput struct {
	Prompt         string
	Website        string
	ScrapeContacts bool
	TenantID       string
	UserID         string
}

// GenerateOutput carries the enriched leads and their summaries.
type GenerateOutput struct {
	Leads             []entity.Lead
	ValidationSummary entity.ValidationSummary
	ScrapingSummary   entity.ScrapingSummary
	DateFilter        *entity.RecencyFilter
	RunID             string
}

// LeadService runs the generate, validate, scrape and merge pipeline.
type LeadService struct {
	completer   ai.Completer
	checker     *RegistryChecker
	scraper     WebsiteScraper
	normalizer  LeadNormalizer
	recorder    RunRecorder
	concurrency int
	policy      string
	now         func() time.Time
}

// LeadServiceOption configures optional collaborators.
type LeadServiceOption func(*LeadService)

// WithScraper enables contact scraping.
func WithScraper(s WebsiteScraper) LeadServiceOption {
	return func(svc *LeadService) { svc.scraper = s }
}

// WithNormalizer enables contact field normalization.
func WithNormalizer(n LeadNormalizer) LeadServiceOption {
	return func(svc *LeadService) { svc.normalizer = n }
}

// WithRunRecorder persists every successful run.
func WithRunRecorder(r RunRecorder) LeadServiceOption {
	return func(svc *LeadService) { svc.recorder = r }
}

// WithConcurrency bounds how many leads are processed at once.
func WithConcurrency(n int) LeadServiceOption {
	return func(svc *LeadService) {
		if n > 0 {
			svc.concurrency = n
		}
	}
}

// WithRecencyPolicy selects what happens to leads incorporated before the cutoff.
func WithRecencyPolicy(policy string) LeadServiceOption {
	return func(svc *LeadService) {
		if policy != "" {
			svc.policy = policy
		}
	}
}

// WithClock overrides the time source used for the recency cutoff.
func WithClock(now func() time.Time) LeadServiceOption {
	return func(svc *LeadService) {
		if now != nil {
			svc.now = now
		}
	}
}

// NewLeadService wires the pipeline around its two mandatory collaborators.
func NewLeadService(completer ai.Completer, searcher registry.Searcher, opts ...LeadServiceOption) *LeadService {
	svc := &LeadService{
		completer:   completer,
		concurrency: 1,
		policy:      config.RecencyPolicyFlag,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	svc.checker = NewRegistryChecker(searcher, svc.concurrency)
	return svc
}

// Generate produces leads for a prompt and enriches them. Only a missing
// prompt or an unusable AI response fail the call; enrichment problems are
// recorded on the affected leads.
func (s *LeadService) Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return nil, ErrPromptRequired
	}
	website := strings.TrimSpace(in.Website)

	filter := DetectRecency(prompt, s.now())
	completion, err := s.completer.Complete(ctx, ai.CompletionRequest{
		System: BuildSystemInstruction(filter),
		Prompt: BuildUserPrompt(prompt, website),
	})
	if err != nil {
		zap.L().Error("ai completion failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	decoded := DecodeLeads(completion.Text)
	if !decoded.OK() {
		zap.L().Error("ai response could not be decoded",
			zap.Error(decoded.Err),
			zap.Int("response_length", len(completion.Text)),
		)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, decoded.Err)
	}
	if decoded.Dropped > 0 {
		zap.L().Info("dropped leads without a company name", zap.Int("dropped", decoded.Dropped))
	}

	leads := decoded.Leads
	if s.normalizer != nil {
		forEachLead(ctx, s.concurrency, len(leads), func(ctx context.Context, i int) {
			s.normalizer.NormalizeLead(ctx, &leads[i])
		})
	}

	s.checker.CrossValidate(ctx, leads, filter)

	if in.ScrapeContacts && s.scraper != nil {
		forEachLead(ctx, s.concurrency, len(leads), func(ctx context.Context, i int) {
			if strings.TrimSpace(leads[i].Website) == "" {
				return
			}
			res := s.scraper.ScrapeWebsiteForPeople(ctx, leads[i].Website)
			leads[i] = MergeContactsIntoLead(leads[i], res)
		})
	}

	for i := range leads {
		leads[i].Score = scoring.ComputeScore(scoring.FeaturesFromLead(leads[i])).Total
	}

	kept, excluded := ApplyRecencyPolicy(leads, s.policy)
	out := &GenerateOutput{
		Leads:             kept,
		ValidationSummary: BuildValidationSummary(kept, filter, s.policy, excluded),
		ScrapingSummary:   BuildScrapingSummary(kept, in.ScrapeContacts),
		DateFilter:        filter,
	}

	zap.L().Info("leads generated",
		zap.String("tenant_id", in.TenantID),
		zap.Int("leads", len(out.Leads)),
		zap.Int("companies_house_found", out.ValidationSummary.CompaniesHouseFound),
		zap.Int("excluded_by_recency", excluded),
		zap.Bool("scrape_contacts", in.ScrapeContacts),
	)

	if s.recorder != nil {
		out.RunID = s.recordRun(ctx, in, prompt, website, filter, out)
	}
	return out, nil
}

func (s *LeadService) recordRun(ctx context.Context, in GenerateInput, prompt, website string, filter *entity.RecencyFilter, out *GenerateOutput) string {
	result, err := json.Marshal(entity.RunResult{
		Leads:             out.Leads,
		ValidationSummary: out.ValidationSummary,
		ScrapingSummary:   out.ScrapingSummary,
	})
	if err != nil {
		zap.L().Warn("encode run result", zap.Error(err))
		return ""
	}

	run := &entity.GenerationRun{
		TenantID:       in.TenantID,
		UserID:         in.UserID,
		Prompt:         prompt,
		ScrapeContacts: in.ScrapeContacts,
		LeadCount:      len(out.Leads),
		Result:         result,
	}
	if website != "" {
		run.Website = &website
	}
	if filter != nil {
		run.CutoffYear = entity.IntPtr(filter.CutoffYear)
	}

	if err := s.recorder.Record(ctx, run); err != nil {
		zap.L().Warn("record generation run", zap.String("tenant_id", in.TenantID), zap.Error(err))
		return ""
	}
	return run.ID.String()
}
