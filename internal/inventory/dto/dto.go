package dto

import "time"

type LevelFilters struct {
	OrganizationID string
	CategoryID     string
	Search         string
	LowStock       bool
	Page           int
	PageSize       int
}

type MovementFilters struct {
	OrganizationID string
	ProductID      string
	MovementType   string
	StartDate      *time.Time
	EndDate        *time.Time
	Page           int
	PageSize       int
}

// LevelView is one row of the stock levels screen.
type LevelView struct {
	ProductID         string    `db:"product_id" json:"productId"`
	ProductName       string    `db:"product_name" json:"productName"`
	SKU               string    `db:"sku" json:"sku"`
	CategoryID        *string   `db:"category_id" json:"categoryId"`
	LowStockThreshold int       `db:"low_stock_threshold" json:"lowStockThreshold"`
	Godown            int       `db:"godown" json:"godown"`
	Store             int       `db:"store" json:"store"`
	Reserved          int       `db:"reserved" json:"reserved"`
	Total             int       `db:"total" json:"total"`
	Available         int       `db:"available" json:"available"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}
