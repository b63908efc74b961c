package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/octobees/leadforge/internal/entity"
)

// DefaultPaths are the pages visited on every website, in order.
var DefaultPaths = []string{"", "/about", "/team", "/about-us", "/leadership", "/contact", "/meet-the-team", "/founders", "/staff"}

// Result is the outcome of scraping one website. Failures are reported here
// rather than returned as errors.
type Result struct {
	Success      bool
	Method       string
	People       []entity.ContactPerson
	Error        string
	PagesVisited int
	PagesFailed  int
}

// Scraper visits a fixed set of pages on a website and collects the people named there.
type Scraper struct {
	opener      Opener
	pageTimeout time.Duration
	paths       []string
}

// Option customises a Scraper.
type Option func(*Scraper)

// WithPaths overrides the visited paths.
func WithPaths(paths []string) Option {
	return func(s *Scraper) {
		if len(paths) > 0 {
			s.paths = paths
		}
	}
}

// New builds a Scraper around a page loader.
func New(opener Opener, pageTimeout time.Duration, opts ...Option) *Scraper {
	if pageTimeout <= 0 {
		pageTimeout = 30 * time.Second
	}
	s := &Scraper{opener: opener, pageTimeout: pageTimeout, paths: DefaultPaths}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeWebsite prepends https:// when no scheme is given and reduces the
// address to its origin.
func NormalizeWebsite(website string) (string, error) {
	website = strings.TrimSpace(website)
	if website == "" {
		return "", eris.New("empty website")
	}
	if !strings.Contains(website, "://") {
		website = "https://" + strings.TrimPrefix(website, "//")
	}
	u, err := url.Parse(website)
	if err != nil {
		return "", eris.Wrapf(err, "invalid website %q", website)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", eris.Errorf("invalid website %q", website)
	}
	return u.Scheme + "://" + u.Host, nil
}

// ScrapeWebsiteForPeople visits each candidate page of website and extracts
// named people. A page that fails to load is logged and skipped.
func (s *Scraper) ScrapeWebsiteForPeople(ctx context.Context, website string) Result {
	res := Result{Method: s.opener.Method()}

	base, err := NormalizeWebsite(website)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	session, err := s.opener.Open(ctx)
	if err != nil {
		zap.L().Warn("scraper: could not start session", zap.String("website", base), zap.Error(err))
		res.Error = err.Error()
		return res
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			zap.L().Warn("scraper: close session", zap.String("website", base), zap.Error(cerr))
		}
	}()

	var (
		found   []entity.ContactPerson
		lastErr error
	)
	for _, path := range s.paths {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
		target := base + path
		page, err := session.LoadPage(ctx, target, s.pageTimeout)
		if err != nil {
			res.PagesFailed++
			lastErr = err
			zap.L().Warn("scraper: page load failed", zap.String("url", target), zap.Error(err))
			continue
		}
		res.PagesVisited++
		found = append(found, extractPeople(page.HTML, path)...)
	}

	res.People = DedupePeople(found)
	res.Success = len(res.People) > 0
	if res.PagesVisited == 0 && lastErr != nil {
		res.Error = fmt.Sprintf("no pages could be loaded: %v", lastErr)
	}

	zap.L().Debug("scraper: website scraped",
		zap.String("website", base),
		zap.String("method", res.Method),
		zap.Int("people", len(res.People)),
		zap.Int("pages_visited", res.PagesVisited),
		zap.Int("pages_failed", res.PagesFailed),
	)
	return res
}

func extractPeople(rawHTML, path string) []entity.ContactPerson {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	people := extractJSONLD(doc)
	people = append(people, extractCards(doc)...)
	if path == contactPath {
		people = append(people, extractContactBlocks(rawHTML)...)
	}
	return people
}

// DedupePeople collapses entries sharing a case-insensitive (name, email)
// pair. The first entry wins; a missing title is filled from a later duplicate
// and the highest confidence is kept.
func DedupePeople(people []entity.ContactPerson) []entity.ContactPerson {
	out := make([]entity.ContactPerson, 0, len(people))
	index := make(map[string]int, len(people))
	for _, p := range people {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		key := PersonKey(p)
		if i, ok := index[key]; ok {
			if out[i].Title == "" && p.Title != "" {
				out[i].Title = p.Title
			}
			if p.Confidence > out[i].Confidence {
				out[i].Confidence = p.Confidence
			}
			continue
		}
		index[key] = len(out)
		out = append(out, p)
	}
	return out
}

// PersonKey is the identity used to deduplicate contacts.
func PersonKey(p entity.ContactPerson) string {
	return strings.ToLower(strings.TrimSpace(p.Name)) + "\x00" + strings.ToLower(strings.TrimSpace(p.Email))
}
