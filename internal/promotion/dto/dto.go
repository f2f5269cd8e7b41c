package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type PromotionFilters struct {
	OrganizationID string
	ProductID      string
	ActiveAt       *time.Time // Only promotions running at this instant
	Page           int
	PageSize       int
}

type CreatePromotionInput struct {
	OrganizationID  string          `json:"-"`
	Name            string          `json:"name"`
	ProductID       string          `json:"productId"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	StartsAt        time.Time       `json:"startsAt"`
	EndsAt          time.Time       `json:"endsAt"`
}
