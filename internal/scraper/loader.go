// Package scraper visits a company website and extracts the people named on it.
package scraper

import (
	"context"
	"time"
)

// Scraping method identifiers reported on results.
const (
	MethodBrowser = "headless-browser"
	MethodHTTP    = "static-http"
	MethodWorker  = "render-worker"
)

// Page is a rendered HTML snapshot of a URL.
type Page struct {
	URL  string
	HTML string
}

// Session loads pages. A session is opened per scrape and must be closed.
type Session interface {
	LoadPage(ctx context.Context, url string, timeout time.Duration) (*Page, error)
	Close() error
}

// Opener starts page loading sessions and names the method it uses.
type Opener interface {
	Open(ctx context.Context) (Session, error)
	Method() string
}
