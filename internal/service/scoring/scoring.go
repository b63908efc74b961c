package scoring

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/octobees/leadforge/internal/entity"
)

const (
	categoryContact  = "contact_completeness"
	categoryWebsite  = "website_quality"
	categoryRegistry = "registry_confidence"
	categoryBusiness = "business_profile"
)

var freeHostingDomains = []string{
	"wordpress.com",
	"blogspot.com",
	"wixsite.com",
	"weebly.com",
	"squarespace.com",
	"medium.com",
	"substack.com",
	"godaddysites.com",
	"notion.site",
	"googlepages.com",
}

// LeadFeatures captures the signals used for scoring.
type LeadFeatures struct {
	Email            string
	EmailVerified    bool
	Phone            string
	PhoneNormalized  bool
	Contacts         int
	Website          string
	WebsiteReachable bool
	RegistryFound    bool
	CompanyStatus    string
	MeetsRecency     *bool
	ContactName      string
	Address          string
}

// FeaturesFromLead reads scoring signals off an enriched lead.
func FeaturesFromLead(lead entity.Lead) LeadFeatures {
	v := lead.Validation
	return LeadFeatures{
		Email:            lead.Email,
		EmailVerified:    v.EmailVerified != nil && *v.EmailVerified,
		Phone:            lead.Phone,
		PhoneNormalized:  v.PhoneNormalized != nil && *v.PhoneNormalized,
		Contacts:         len(lead.Contacts),
		Website:          lead.Website,
		WebsiteReachable: v.WebsiteReachable != nil && *v.WebsiteReachable,
		RegistryFound:    v.CompaniesHouseFound,
		CompanyStatus:    v.CompanyStatus,
		MeetsRecency:     v.MeetsRecency,
		ContactName:      lead.Name,
		Address:          lead.Address,
	}
}

// ScoreResult reports the aggregate score and the per-category breakdown.
type ScoreResult struct {
	Total     int
	Breakdown map[string]int
}

// ComputeScore evaluates the provided features and returns the score breakdown.
func ComputeScore(input LeadFeatures) ScoreResult {
	breakdown := map[string]int{
		categoryContact:  scoreContactCompleteness(input),
		categoryWebsite:  scoreWebsiteQuality(input),
		categoryRegistry: scoreRegistryConfidence(input),
		categoryBusiness: scoreBusinessProfile(input),
	}

	total := 0
	for _, value := range breakdown {
		total += value
	}

	return ScoreResult{
		Total:     total,
		Breakdown: breakdown,
	}
}

func scoreContactCompleteness(input LeadFeatures) int {
	score := 0
	switch {
	case input.EmailVerified:
		score += 10
	case strings.TrimSpace(input.Email) != "":
		score += 5
	}
	switch {
	case input.PhoneNormalized:
		score += 10
	case strings.TrimSpace(input.Phone) != "":
		score += 5
	}
	score += min(input.Contacts*5, 10)
	return min(score, 30)
}

func scoreWebsiteQuality(input LeadFeatures) int {
	if strings.TrimSpace(input.Website) == "" {
		return 0
	}
	score := 0
	if strings.HasPrefix(strings.ToLower(input.Website), "https://") {
		score += 5
	}
	if input.WebsiteReachable {
		score += 10
	}
	if highQualityDomain(input.Website) {
		score += 5
	}
	return min(score, 20)
}

func scoreRegistryConfidence(input LeadFeatures) int {
	if !input.RegistryFound {
		return 0
	}
	score := 20
	if strings.EqualFold(strings.TrimSpace(input.CompanyStatus), "active") {
		score += 5
	}
	if input.MeetsRecency == nil || *input.MeetsRecency {
		score += 5
	}
	return min(score, 30)
}

func scoreBusinessProfile(input LeadFeatures) int {
	score := 0
	if hasCompleteAddress(input.Address) {
		score += 10
	}
	if strings.TrimSpace(input.ContactName) != "" {
		score += 10
	}
	return min(score, 20)
}

func hasCompleteAddress(raw string) bool {
	addr := strings.TrimSpace(raw)
	if len(addr) < 10 {
		return false
	}
	var hasLetter, hasDigit bool
	separatorCount := 0
	for _, r := range addr {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case r == ',':
			separatorCount++
		}
	}
	return hasLetter && hasDigit && separatorCount >= 1
}

func highQualityDomain(raw string) bool {
	domain := extractDomain(raw)
	if domain == "" {
		return false
	}
	for _, bad := range freeHostingDomains {
		if domain == bad || strings.HasSuffix(domain, "."+bad) {
			return false
		}
	}
	return strings.Count(domain, ".") >= 1
}

func extractDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lowered := strings.ToLower(raw)
	if !strings.Contains(lowered, "://") {
		lowered = "https://" + lowered
	}
	parsed, err := url.Parse(lowered)
	if err != nil {
		return ""
	}
	host := strings.TrimSpace(strings.ToLower(parsed.Hostname()))
	host = strings.TrimPrefix(host, "www.")
	return host
}
