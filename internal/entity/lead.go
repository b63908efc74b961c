package entity

// Lead represents a candidate business produced by the AI generation step.
type Lead struct {
	Name     string          `json:"name"`
	Company  string          `json:"company"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Website  string          `json:"website"`
	Address  string          `json:"address"`
	Notes    string          `json:"notes"`
	Contacts []ContactPerson `json:"contacts,omitempty"`

	Validation LeadValidation `json:"validation"`
	Score      int            `json:"score"`
}

// LeadValidation carries registry, normalization and scraping metadata for a lead.
type LeadValidation struct {
	CompaniesHouseFound bool   `json:"companiesHouseFound"`
	CompanyNumber       string `json:"companyNumber,omitempty"`
	CompanyStatus       string `json:"companyStatus,omitempty"`
	IncorporationDate   string `json:"incorporationDate,omitempty"`
	MeetsRecency        *bool  `json:"meetsRecency,omitempty"`
	RegistryError       string `json:"registryError,omitempty"`

	EmailVerified    *bool `json:"emailVerified,omitempty"`
	PhoneNormalized  *bool `json:"phoneNormalized,omitempty"`
	WebsiteReachable *bool `json:"websiteReachable,omitempty"`

	WebsiteScraped *bool  `json:"websiteScraped,omitempty"`
	ContactsFound  *int   `json:"contactsFound,omitempty"`
	ScrapingMethod string `json:"scrapingMethod,omitempty"`
	ScrapingError  string `json:"scrapingError,omitempty"`
}

// ContactPerson is an individual discovered on a lead's website.
type ContactPerson struct {
	Name       string  `json:"name"`
	Title      string  `json:"title,omitempty"`
	Email      string  `json:"email,omitempty"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// RecencyFilter is the "last N years" constraint parsed from a prompt.
type RecencyFilter struct {
	Years      int    `json:"years"`
	CutoffYear int    `json:"cutoffYear"`
	Phrase     string `json:"phrase"`
}

// ValidationSummary aggregates registry results over the returned leads.
type ValidationSummary struct {
	Total                  int            `json:"total"`
	CompaniesHouseFound    int            `json:"companiesHouseFound"`
	CompaniesHouseNotFound int            `json:"companiesHouseNotFound"`
	RegistryErrors         int            `json:"registryErrors"`
	MeetsRecency           int            `json:"meetsRecency"`
	FailsRecency           int            `json:"failsRecency"`
	ExcludedByRecency      int            `json:"excludedByRecency"`
	DateFilter             *RecencyFilter `json:"dateFilter,omitempty"`
	RecencyPolicy          string         `json:"recencyPolicy"`
}

// ScrapingSummary aggregates website scraping results over the returned leads.
type ScrapingSummary struct {
	Requested         bool   `json:"requested"`
	Attempted         int    `json:"attempted"`
	Successful        int    `json:"successful"`
	Failed            int    `json:"failed"`
	Skipped           int    `json:"skipped"`
	LeadsWithContacts int    `json:"leadsWithContacts"`
	TotalContacts     int    `json:"totalContacts"`
	Message           string `json:"message"`
}

// BoolPtr returns a pointer to the provided value.
func BoolPtr(v bool) *bool { return &v }

// IntPtr returns a pointer to the provided value.
func IntPtr(v int) *int { return &v }
