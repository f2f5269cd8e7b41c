package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Promotion struct {
	BaseModel
	OrganizationID  string          `db:"organization_id" json:"organizationId"`
	Name            string          `db:"name" json:"name"`
	ProductID       *string         `db:"product_id" json:"productId"` // Nil applies to every product
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discountPercent"`
	StartsAt        time.Time       `db:"starts_at" json:"startsAt"`
	EndsAt          time.Time       `db:"ends_at" json:"endsAt"`
	IsActive        bool            `db:"is_active" json:"isActive"`
}

func (p *Promotion) ActiveAt(t time.Time) bool {
	return p.IsActive && !t.Before(p.StartsAt) && t.Before(p.EndsAt)
}
