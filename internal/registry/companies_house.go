// Package registry looks companies up in the UK Companies House register.
package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the register has no company matching the query.
var ErrNotFound = eris.New("registry: company not found")

// Company is the subset of a Companies House search item used for validation.
type Company struct {
	Title          string `json:"title"`
	CompanyNumber  string `json:"company_number"`
	CompanyStatus  string `json:"company_status"`
	DateOfCreation string `json:"date_of_creation"`
	AddressSnippet string `json:"address_snippet"`
}

// IncorporationYear returns the year of date_of_creation, or 0 when unknown.
func (c Company) IncorporationYear() int {
	if len(c.DateOfCreation) < 4 {
		return 0
	}
	year, err := strconv.Atoi(c.DateOfCreation[:4])
	if err != nil {
		return 0
	}
	return year
}

// Searcher finds the registered company for a name.
type Searcher interface {
	Search(ctx context.Context, companyName string) (*Company, error)
}

// HTTPClient abstracts HTTP requests to simplify testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the Companies House search API.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   HTTPClient
	limiter      *rate.Limiter
	maxAttempts  int
	itemsPerPage int
	backoff      time.Duration
}

// Option configures optional dependencies.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPClient) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit throttles outgoing requests to n per interval.
func WithRateLimit(n int, interval time.Duration) Option {
	return func(c *Client) {
		if n > 0 && interval > 0 {
			c.limiter = rate.NewLimiter(rate.Every(interval/time.Duration(n)), 1)
		}
	}
}

// WithMaxAttempts sets how many times a transient failure is attempted.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff sets the base delay between attempts.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.backoff = d
		}
	}
}

// NewClient builds a Companies House client.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		maxAttempts:  3,
		itemsPerPage: 5,
		backoff:      500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Items []Company `json:"items"`
}

// Search returns the best matching company for companyName or ErrNotFound.
func (c *Client) Search(ctx context.Context, companyName string) (*Company, error) {
	query := strings.TrimSpace(companyName)
	if query == "" {
		return nil, ErrNotFound
	}

	var (
		resp    searchResponse
		lastErr error
	)
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.backoff * time.Duration(1<<(attempt-2))
			zap.L().Debug("registry: retrying search",
				zap.String("company", query),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "registry: search cancelled")
			case <-time.After(delay):
			}
		}

		var retry bool
		resp, retry, lastErr = c.search(ctx, query)
		if lastErr == nil {
			break
		}
		if !retry {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, eris.Wrapf(lastErr, "registry: search %q failed after %d attempts", query, c.maxAttempts)
	}

	match := bestMatch(query, resp.Items)
	if match == nil {
		return nil, ErrNotFound
	}
	return match, nil
}

func (c *Client) search(ctx context.Context, query string) (searchResponse, bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return searchResponse{}, false, eris.Wrap(err, "registry: rate limiter")
		}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("items_per_page", strconv.Itoa(c.itemsPerPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/companies?"+params.Encode(), nil)
	if err != nil {
		return searchResponse{}, false, eris.Wrap(err, "registry: build request")
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return searchResponse{}, ctx.Err() == nil, eris.Wrap(err, "registry: request failed")
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return searchResponse{}, false, ErrNotFound
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, res.Body)
		return searchResponse{}, true, eris.Errorf("registry: transient status %d", res.StatusCode)
	case res.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return searchResponse{}, false, eris.Errorf("registry: status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out searchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return searchResponse{}, false, eris.Wrap(err, "registry: decode response")
	}
	return out, false, nil
}
