package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/leadforge/internal/entity"
	middlewarepkg "github.com/octobees/leadforge/internal/middleware"
	"github.com/octobees/leadforge/internal/service"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type stubGenerator struct {
	out   *service.GenerateOutput
	err   error
	input service.GenerateInput
	calls int
}

func (s *stubGenerator) Generate(_ context.Context, in service.GenerateInput) (*service.GenerateOutput, error) {
	s.calls++
	s.input = in
	return s.out, s.err
}

func newGenerateContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/leads/generate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middlewarepkg.ContextKeyTenantID, "tenant-1")
	c.Set(middlewarepkg.ContextKeyUserID, "user-1")
	return c, rec
}

func TestLeadsHandler_Generate_Success(t *testing.T) {
	gen := &stubGenerator{out: &service.GenerateOutput{
		Leads: []entity.Lead{
			{Company: "Acme Widgets Ltd", Validation: entity.LeadValidation{CompaniesHouseFound: true}},
			{Company: "Beta Cloud Ltd"},
		},
		ValidationSummary: entity.ValidationSummary{Total: 2, CompaniesHouseFound: 1, CompaniesHouseNotFound: 1},
		ScrapingSummary:   entity.ScrapingSummary{Message: "Contact scraping was not requested"},
		RunID:             "run-1",
	}}
	c, rec := newGenerateContext(`{"prompt":"  Find SaaS companies founded in the last 3 years in London ","website":" octobees.io ","scrapeContacts":true}`)

	if err := NewLeadsHandler(gen).Generate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gen.input.Prompt != "Find SaaS companies founded in the last 3 years in London" || gen.input.Website != "octobees.io" || !gen.input.ScrapeContacts {
		t.Fatalf("unexpected input: %+v", gen.input)
	}
	if gen.input.TenantID != "tenant-1" || gen.input.UserID != "user-1" {
		t.Fatalf("expected identity forwarded, got %+v", gen.input)
	}

	var payload struct {
		Status string `json:"status"`
		Data   struct {
			Leads             []entity.Lead            `json:"leads"`
			ValidationSummary entity.ValidationSummary `json:"validation_summary"`
			ScrapingSummary   entity.ScrapingSummary   `json:"scraping_summary"`
			RunID             string                   `json:"run_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Status != "success" || len(payload.Data.Leads) != 2 || payload.Data.RunID != "run-1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Data.ValidationSummary.CompaniesHouseFound != 1 || payload.Data.ScrapingSummary.Requested {
		t.Fatalf("unexpected summaries: %+v", payload.Data)
	}
}

func TestLeadsHandler_Generate_BadRequest(t *testing.T) {
	cases := map[string]string{
		"invalid json":   `{"prompt":`,
		"missing prompt": `{"website":"acme.io"}`,
		"blank prompt":   `{"prompt":"   "}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			gen := &stubGenerator{}
			c, rec := newGenerateContext(body)

			if err := NewLeadsHandler(gen).Generate(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if gen.calls != 0 {
				t.Fatalf("expected no pipeline call")
			}
		})
	}
}

func TestLeadsHandler_Generate_Failure(t *testing.T) {
	gen := &stubGenerator{err: errors.Join(service.ErrGenerationFailed, errors.New("upstream 529"))}
	c, rec := newGenerateContext(`{"prompt":"Find leads"}`)

	if err := NewLeadsHandler(gen).Generate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var payload APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Status != "error" || payload.Message != "failed to generate leads" || payload.Data != nil {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Error == nil || payload.Error.Code != "internal_server_error" {
		t.Fatalf("expected structured error detail, got %+v", payload.Error)
	}
}

func TestLeadsHandler_Generate_PromptRequiredFromService(t *testing.T) {
	gen := &stubGenerator{err: service.ErrPromptRequired}
	c, rec := newGenerateContext(`{"prompt":"x"}`)

	if err := NewLeadsHandler(gen).Generate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
