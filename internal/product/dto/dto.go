package dto

type ProductFilters struct {
	OrganizationID string   `json:"organizationId"`
	CategoryID     string   `json:"categoryId"`
	IsActive       *bool    `json:"isActive"`
	SearchQuery    string   `json:"search"` // name, sku, qr code
	LowStock       bool     `json:"lowStock"`
	SortBy         string   `json:"sortBy"`    // name, price, createdAt, stock
	SortOrder      string   `json:"sortOrder"` // asc, desc
	Page           int      `json:"page"`
	PageSize       int      `json:"limit"`
	IDs            []string `json:"-"`
}
