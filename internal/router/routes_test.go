package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/leadforge/internal/auth"
	"github.com/octobees/leadforge/internal/config"
	"github.com/octobees/leadforge/internal/handler"
	"github.com/octobees/leadforge/internal/service"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type stubGenerator struct{ calls int }

func (s *stubGenerator) Generate(context.Context, service.GenerateInput) (*service.GenerateOutput, error) {
	s.calls++
	return &service.GenerateOutput{}, nil
}

func newTestServer(t *testing.T, limit config.RateLimitConfig) (*echo.Echo, *auth.JWTManager, *stubGenerator) {
	t.Helper()
	cfg := &config.Config{RateLimitGenerate: limit}
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	gen := &stubGenerator{}

	e := echo.New()
	Register(e, cfg, jwtManager, Handlers{Leads: handler.NewLeadsHandler(gen)})
	return e, jwtManager, gen
}

func doGenerate(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/leads/generate", strings.NewReader(`{"prompt":"Find leads"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegister_Healthz(t *testing.T) {
	e, _, _ := newTestServer(t, config.RateLimitConfig{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRegister_GenerateRequiresTenantToken(t *testing.T) {
	e, jwtManager, gen := newTestServer(t, config.RateLimitConfig{})

	if rec := doGenerate(e, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	noTenant, err := jwtManager.GenerateToken(auth.Identity{Subject: "user-1", Role: "member"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if rec := doGenerate(e, noTenant); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without tenant, got %d", rec.Code)
	}

	token, err := jwtManager.GenerateToken(auth.Identity{Subject: "user-1", Role: "member", TenantID: "tenant-1"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if rec := doGenerate(e, token); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gen.calls != 1 {
		t.Fatalf("expected one pipeline call, got %d", gen.calls)
	}
}

func TestRegister_GenerateIsRateLimited(t *testing.T) {
	e, jwtManager, _ := newTestServer(t, config.RateLimitConfig{Requests: 1, Interval: time.Hour})
	token, err := jwtManager.GenerateToken(auth.Identity{Subject: "user-1", TenantID: "tenant-1"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if rec := doGenerate(e, token); rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}
	if rec := doGenerate(e, token); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRegister_RunsRoutesOnlyWithRepository(t *testing.T) {
	e, jwtManager, _ := newTestServer(t, config.RateLimitConfig{})
	token, err := jwtManager.GenerateToken(auth.Identity{Subject: "user-1", TenantID: "tenant-1"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/leads/runs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected runs routes to be absent, got %d", rec.Code)
	}
}
