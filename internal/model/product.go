package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	OrganizationID    string              `db:"organization_id" json:"organizationId"`
	CategoryID        *string             `db:"category_id" json:"categoryId"` // Nullable
	SKU               string              `db:"sku" json:"sku"`
	QRCode            *string             `db:"qr_code" json:"qrCode"` // Nullable
	Name              string              `db:"name" json:"name"`
	Description       *string             `db:"description" json:"description"`
	Price             decimal.Decimal     `db:"price" json:"price"`
	CostPrice         decimal.NullDecimal `db:"cost_price" json:"costPrice"`
	Unit              string              `db:"unit" json:"unit"`
	Quantity          int                 `db:"quantity" json:"quantity"` // Legacy flat stock
	LowStockThreshold int                 `db:"low_stock_threshold" json:"lowStockThreshold"`
	ReorderQuantity   int                 `db:"reorder_quantity" json:"reorderQuantity"`
	ExpirationDate    *time.Time          `db:"expiration_date" json:"expirationDate"`
	ImageURL          *string             `db:"image_url" json:"image"`
	IsActive          bool                `db:"is_active" json:"isActive"`
	Stock             *StockSummary       `db:"-" json:"stock,omitempty"`    // Joined data
	Category          *Category           `db:"-" json:"category,omitempty"` // Joined data
}

// TotalStock prefers the two-location stock and falls back to the legacy quantity.
func (p *Product) TotalStock() int {
	if p.Stock != nil {
		return p.Stock.Total
	}
	return p.Quantity
}

// StockStatus is what the dashboard badges show.
func (p *Product) StockStatus() string {
	total := p.TotalStock()
	switch {
	case total <= 0:
		return StockStatusOutOfStock
	case total <= p.LowStockThreshold:
		return StockStatusLow
	default:
		return StockStatusInStock
	}
}

const (
	StockStatusInStock    = "in_stock"
	StockStatusLow        = "low_stock"
	StockStatusOutOfStock = "out_of_stock"
)

// ProductRow is the flat shape read by list queries that join stock_levels.
type ProductRow struct {
	Product
	Godown   *int `db:"godown"`
	Store    *int `db:"store"`
	Reserved *int `db:"reserved"`
}

// ToProduct attaches the stock summary when a stock_levels row was joined.
func (r ProductRow) ToProduct() Product {
	p := r.Product
	if r.Godown != nil && r.Store != nil {
		reserved := 0
		if r.Reserved != nil {
			reserved = *r.Reserved
		}
		s := NewStockSummary(*r.Godown, *r.Store, reserved)
		p.Stock = &s
	}
	return p
}
