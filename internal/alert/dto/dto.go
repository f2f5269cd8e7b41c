package dto

import "time"

// Subject is the product state alert rules look at.
type Subject struct {
	OrganizationID    string     `db:"organization_id"`
	ProductID         string     `db:"product_id"`
	ProductName       string     `db:"product_name"`
	TotalStock        int        `db:"total_stock"`
	LowStockThreshold int        `db:"low_stock_threshold"`
	ExpirationDate    *time.Time `db:"expiration_date"`
	IsActive          bool       `db:"is_active"`
}

type AlertFilters struct {
	OrganizationID string
	Type           string
	UnreadOnly     bool
	IncludeClosed  bool
	Page           int
	PageSize       int
}
