package scraper

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const maxPageBytes = 4 << 20

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StaticOpener fetches raw HTML without executing scripts.
type StaticOpener struct {
	Client    HTTPDoer
	UserAgent string
}

// NewStaticOpener builds a StaticOpener; a nil client uses a default one.
func NewStaticOpener(client HTTPDoer) *StaticOpener {
	if client == nil {
		client = &http.Client{}
	}
	return &StaticOpener{
		Client:    client,
		UserAgent: "Mozilla/5.0 (compatible; leadforge/1.0)",
	}
}

func (o *StaticOpener) Method() string { return MethodHTTP }

func (o *StaticOpener) Open(context.Context) (Session, error) {
	return &staticSession{opener: o}, nil
}

type staticSession struct {
	opener *StaticOpener
}

func (s *staticSession) Close() error { return nil }

func (s *staticSession) LoadPage(ctx context.Context, url string, timeout time.Duration) (*Page, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "scraper: build request %s", url)
	}
	req.Header.Set("User-Agent", s.opener.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.opener.Client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "scraper: fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))
		return nil, eris.Errorf("scraper: fetch %s: status %d", url, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, eris.Errorf("scraper: fetch %s: unexpected content type %q", url, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "scraper: read %s", url)
	}
	return &Page{URL: url, HTML: string(body)}, nil
}
