package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"google.golang.org/api/idtoken"

	"github.com/octobees/leadforge/internal/middleware"
)

// WorkerClient posts JSON payloads to the render worker.
type WorkerClient struct {
	client  HTTPDoer
	baseURL string
}

// NewWorkerClient builds a worker client, auto-configuring an ID token client when needed.
func NewWorkerClient(client HTTPDoer, workerBaseURL string) (*WorkerClient, error) {
	workerBaseURL = strings.TrimRight(workerBaseURL, "/")
	if workerBaseURL == "" {
		return nil, eris.New("scraper: worker base url must not be empty")
	}
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), workerBaseURL)
		if err != nil {
			client = &http.Client{Timeout: 60 * time.Second}
		} else {
			client = idc
		}
	}
	return &WorkerClient{client: client, baseURL: workerBaseURL}, nil
}

// PostJSON posts payload to path and decodes the worker's "data" object into out.
func (c *WorkerClient) PostJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "scraper: marshal worker payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "scraper: create worker request")
	}
	req.Header.Set("Content-Type", "application/json")
	if rid := middleware.RequestIDFrom(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "scraper: worker request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return eris.Errorf("scraper: worker error: %s", extractWorkerError(resp.Body))
	}

	var workerResp struct {
		Data  json.RawMessage `json:"data"`
		Error string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&workerResp); err != nil && err != io.EOF {
		return eris.Wrap(err, "scraper: decode worker response")
	}
	if workerResp.Error != "" {
		return eris.Errorf("scraper: worker error: %s", workerResp.Error)
	}
	if out == nil || len(workerResp.Data) == 0 {
		return nil
	}
	return eris.Wrap(json.Unmarshal(workerResp.Data, out), "scraper: decode worker data")
}

func extractWorkerError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return "worker returned an error"
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}

// WorkerOpener renders pages on a remote worker exposing POST /render.
type WorkerOpener struct {
	Client *WorkerClient
}

// NewWorkerOpener builds a WorkerOpener.
func NewWorkerOpener(client *WorkerClient) *WorkerOpener {
	return &WorkerOpener{Client: client}
}

func (o *WorkerOpener) Method() string { return MethodWorker }

func (o *WorkerOpener) Open(context.Context) (Session, error) {
	if o.Client == nil {
		return nil, eris.New("scraper: render worker not configured")
	}
	return &workerSession{client: o.Client}, nil
}

type workerSession struct {
	client *WorkerClient
}

type renderRequest struct {
	URL       string `json:"url"`
	TimeoutMS int64  `json:"timeout_ms"`
}

type renderResponse struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

func (s *workerSession) Close() error { return nil }

func (s *workerSession) LoadPage(ctx context.Context, url string, timeout time.Duration) (*Page, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		// leave the worker room to report its own timeout
		ctx, cancel = context.WithTimeout(ctx, timeout+5*time.Second)
		defer cancel()
	}

	var out renderResponse
	if err := s.client.PostJSON(ctx, "/render", renderRequest{URL: url, TimeoutMS: timeout.Milliseconds()}, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.HTML) == "" {
		return nil, eris.Errorf("scraper: worker returned empty html for %s", url)
	}
	if out.URL == "" {
		out.URL = url
	}
	return &Page{URL: out.URL, HTML: out.HTML}, nil
}
