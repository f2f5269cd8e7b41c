package dto

type PurchaseOrderFilters struct {
	OrganizationID string
	SupplierID     string
	Status         string
	Page           int
	PageSize       int
}
