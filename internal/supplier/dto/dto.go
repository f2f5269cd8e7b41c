package dto

type SupplierFilters struct {
	OrganizationID string
	Search         string
	IsActive       *bool
	Page           int
	PageSize       int
}
