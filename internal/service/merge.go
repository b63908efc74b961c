package service

import (
	"fmt"

	"github.com/octobees/leadforge/internal/config"
	"github.com/octobees/leadforge/internal/entity"
	"github.com/octobees/leadforge/internal/scraper"
)

// MergeContactsIntoLead folds a scrape result into a copy of the lead.
// Existing contacts are kept; merging the same result twice is a no-op.
func MergeContactsIntoLead(lead entity.Lead, res scraper.Result) entity.Lead {
	seen := make(map[string]struct{}, len(lead.Contacts)+len(res.People))
	contacts := make([]entity.ContactPerson, 0, len(lead.Contacts)+len(res.People))
	for _, c := range lead.Contacts {
		seen[scraper.PersonKey(c)] = struct{}{}
		contacts = append(contacts, c)
	}
	for _, p := range res.People {
		key := scraper.PersonKey(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		contacts = append(contacts, p)
	}
	if len(contacts) == 0 {
		contacts = nil
	}
	lead.Contacts = contacts

	lead.Validation.WebsiteScraped = entity.BoolPtr(res.Error == "")
	lead.Validation.ContactsFound = entity.IntPtr(len(res.People))
	lead.Validation.ScrapingMethod = res.Method
	lead.Validation.ScrapingError = res.Error
	return lead
}

// ApplyRecencyPolicy returns the leads to keep and how many were excluded.
// Only leads known to predate the cutoff are affected.
func ApplyRecencyPolicy(leads []entity.Lead, policy string) ([]entity.Lead, int) {
	if policy != config.RecencyPolicyExclude {
		return leads, 0
	}
	kept := make([]entity.Lead, 0, len(leads))
	for _, lead := range leads {
		if m := lead.Validation.MeetsRecency; m != nil && !*m {
			continue
		}
		kept = append(kept, lead)
	}
	return kept, len(leads) - len(kept)
}

// BuildValidationSummary counts registry outcomes over the returned leads.
func BuildValidationSummary(leads []entity.Lead, filter *entity.RecencyFilter, policy string, excluded int) entity.ValidationSummary {
	if policy == "" {
		policy = config.RecencyPolicyFlag
	}
	summary := entity.ValidationSummary{
		Total:             len(leads),
		ExcludedByRecency: excluded,
		DateFilter:        filter,
		RecencyPolicy:     policy,
	}
	for _, lead := range leads {
		v := lead.Validation
		if v.CompaniesHouseFound {
			summary.CompaniesHouseFound++
		} else {
			summary.CompaniesHouseNotFound++
		}
		if v.RegistryError != "" {
			summary.RegistryErrors++
		}
		if v.MeetsRecency != nil {
			if *v.MeetsRecency {
				summary.MeetsRecency++
			} else {
				summary.FailsRecency++
			}
		}
	}
	return summary
}

// BuildScrapingSummary counts scraping outcomes over the returned leads.
func BuildScrapingSummary(leads []entity.Lead, requested bool) entity.ScrapingSummary {
	summary := entity.ScrapingSummary{Requested: requested}
	if !requested {
		summary.Message = "Contact scraping was not requested"
		return summary
	}

	for _, lead := range leads {
		v := lead.Validation
		if v.WebsiteScraped == nil {
			summary.Skipped++
			continue
		}
		summary.Attempted++
		found := 0
		if v.ContactsFound != nil {
			found = *v.ContactsFound
		}
		switch {
		case found > 0:
			summary.Successful++
		case v.ScrapingError != "":
			summary.Failed++
		}
		if len(lead.Contacts) > 0 {
			summary.LeadsWithContacts++
			summary.TotalContacts += len(lead.Contacts)
		}
	}

	summary.Message = fmt.Sprintf("Scraped %d of %d websites: %d with contacts, %d failed, %d skipped",
		summary.Attempted, len(leads), summary.Successful, summary.Failed, summary.Skipped)
	return summary
}
