package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/octobees/leadforge/internal/middleware"
)

func TestWorkerClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") != "req-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"status": "queued"}})
	}))
	defer server.Close()

	client, err := NewWorkerClient(server.Client(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out struct {
		Status string `json:"status"`
	}
	ctx := middleware.WithRequestID(context.Background(), "req-1")
	if err := client.PostJSON(ctx, "/test", map[string]string{"foo": "bar"}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != "queued" {
		t.Fatalf("expected queued, got %+v", out)
	}
}

func TestWorkerClient_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "chrome crashed"})
	}))
	defer server.Close()

	client, _ := NewWorkerClient(server.Client(), server.URL)
	err := client.PostJSON(context.Background(), "/render", map[string]string{}, nil)
	if err == nil || !strings.Contains(err.Error(), "chrome crashed") {
		t.Fatalf("expected worker error message, got %v", err)
	}
}

func TestNewWorkerClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewWorkerClient(http.DefaultClient, " "); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestWorkerOpener_LoadPage(t *testing.T) {
	var got renderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/render" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"html": janeDoePage}})
	}))
	defer server.Close()

	client, _ := NewWorkerClient(server.Client(), server.URL+"/")
	opener := NewWorkerOpener(client)
	session, err := opener.Open(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer session.Close()

	page, err := session.LoadPage(context.Background(), "https://acme.example/team", 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.URL != "https://acme.example/team" || got.TimeoutMS != 2000 {
		t.Fatalf("unexpected render request: %+v", got)
	}
	if page.URL != "https://acme.example/team" || !strings.Contains(page.HTML, "Jane Doe") {
		t.Fatalf("unexpected page: %+v", page)
	}
	if opener.Method() != MethodWorker {
		t.Fatalf("unexpected method %s", opener.Method())
	}
}

func TestWorkerOpener_EmptyHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"html": "  "}})
	}))
	defer server.Close()

	client, _ := NewWorkerClient(server.Client(), server.URL)
	session, _ := NewWorkerOpener(client).Open(context.Background())
	if _, err := session.LoadPage(context.Background(), "https://acme.example", time.Second); err == nil {
		t.Fatalf("expected error for empty html")
	}
}

func TestStaticOpener_RejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected user agent header")
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	session, _ := NewStaticOpener(server.Client()).Open(context.Background())
	if _, err := session.LoadPage(context.Background(), server.URL+"/team", time.Second); err == nil {
		t.Fatalf("expected error for 404 page")
	}
}
