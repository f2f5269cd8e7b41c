package dto

type CategoryFilters struct {
	OrganizationID string
	ParentID       *string // Nil means ignore, empty string means root categories
	IsActive       *bool
	Search         string
	Page           int
	PageSize       int
}
