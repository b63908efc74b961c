package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/octobees/leadforge/internal/entity"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "GB"
	defaultHTTPTimeout = 5 * time.Second
)

// DNSResolver abstracts DNS lookups to simplify testing.
type DNSResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// HTTPClient abstracts HTTP requests for validation purposes.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DataProcessor cleans the contact fields of AI generated leads.
type DataProcessor struct {
	DefaultRegion string
	dnsResolver   DNSResolver
	httpClient    HTTPClient

	mu      sync.Mutex
	mxCache map[string]bool
}

// DataProcessorOption configures optional dependencies.
type DataProcessorOption func(*DataProcessor)

// WithDNSResolver overrides the default DNS resolver.
func WithDNSResolver(resolver DNSResolver) DataProcessorOption {
	return func(p *DataProcessor) {
		p.dnsResolver = resolver
	}
}

// WithHTTPClient enables website reachability checks with the given client.
func WithHTTPClient(client HTTPClient) DataProcessorOption {
	return func(p *DataProcessor) {
		p.httpClient = client
	}
}

// NewDataProcessor builds a processor with sensible defaults.
func NewDataProcessor(defaultRegion string, opts ...DataProcessorOption) *DataProcessor {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	p := &DataProcessor{
		DefaultRegion: region,
		dnsResolver:   systemDNSResolver{},
		httpClient:    &http.Client{Timeout: defaultHTTPTimeout},
		mxCache:       make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NormalizeLead cleans email, phone and website in place and records what
// could be verified. Nothing here drops a lead.
func (p *DataProcessor) NormalizeLead(ctx context.Context, lead *entity.Lead) {
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Address = strings.TrimSpace(lead.Address)
	lead.Notes = strings.TrimSpace(lead.Notes)

	if email := strings.ToLower(strings.TrimSpace(lead.Email)); email != "" {
		lead.Email = email
		lead.Validation.EmailVerified = entity.BoolPtr(p.verifyEmail(ctx, email))
	}

	if raw := strings.TrimSpace(lead.Phone); raw != "" {
		if normalized := normalizePhone(raw, p.DefaultRegion); normalized != "" {
			lead.Phone = normalized
			lead.Validation.PhoneNormalized = entity.BoolPtr(true)
		} else {
			lead.Phone = raw
			lead.Validation.PhoneNormalized = entity.BoolPtr(false)
		}
	}

	if raw := strings.TrimSpace(lead.Website); raw != "" {
		u, err := sanitizeURL(raw)
		if err != nil {
			lead.Website = raw
			lead.Validation.WebsiteReachable = entity.BoolPtr(false)
			return
		}
		stripTracking(u)
		lead.Website = strings.TrimSuffix(u.String(), "/")
		if p.httpClient != nil {
			lead.Validation.WebsiteReachable = entity.BoolPtr(p.urlResolves(ctx, lead.Website))
		}
	}
}

func (p *DataProcessor) verifyEmail(ctx context.Context, email string) bool {
	if !emailPattern.MatchString(email) {
		return false
	}
	domain := email[strings.LastIndexByte(email, '@')+1:]
	if !isDomainValid(domain) {
		return false
	}
	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || asciiDomain == "" {
		return false
	}

	p.mu.Lock()
	ok, cached := p.mxCache[asciiDomain]
	p.mu.Unlock()
	if cached {
		return ok
	}

	ok = p.hasMXRecord(ctx, asciiDomain)
	p.mu.Lock()
	p.mxCache[asciiDomain] = ok
	p.mu.Unlock()
	return ok
}

func (p *DataProcessor) hasMXRecord(ctx context.Context, domain string) bool {
	if p.dnsResolver == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	records, err := p.dnsResolver.LookupMX(ctx, domain)
	return err == nil && len(records) > 0
}

func (p *DataProcessor) urlResolves(ctx context.Context, target string) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultHTTPTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode < http.StatusBadRequest {
			return true
		}
		if resp.StatusCode != http.StatusMethodNotAllowed {
			return false
		}
	}

	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	resp, err = p.httpClient.Do(getReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusBadRequest
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || !isDomainValid(u.Hostname()) {
		return nil, errors.New("invalid url")
	}
	u.Scheme = "https"
	u.Fragment = ""
	return u, nil
}

func stripTracking(u *url.URL) {
	if u == nil {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, trackingPrefix) || lower == "gclid" || lower == "fbclid" {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

type systemDNSResolver struct{}

func (systemDNSResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return net.DefaultResolver.LookupMX(ctx, domain)
}
