package dto

// RunListFilter contains query parameters for the run history endpoint.
type RunListFilter struct {
	TenantID string
	Page     int
	PerPage  int
}
