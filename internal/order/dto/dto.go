package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderFilters struct {
	OrganizationID string
	Status         string
	Search         string
	Page           int
	PageSize       int
}

// PricedProduct is a product with its best promotion discount at order time.
type PricedProduct struct {
	ID              string          `db:"id"`
	Name            string          `db:"name"`
	Price           decimal.Decimal `db:"price"`
	DiscountPercent decimal.Decimal `db:"discount_percent"`
	IsActive        bool            `db:"is_active"`
}

func (p PricedProduct) UnitPrice() decimal.Decimal {
	if p.DiscountPercent.IsZero() {
		return p.Price
	}
	factor := decimal.NewFromInt(100).Sub(p.DiscountPercent).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor).Round(2)
}

type SalesFilters struct {
	OrganizationID string
	From           time.Time
	To             time.Time
}
