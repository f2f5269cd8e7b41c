package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderFulfilled = "fulfilled"
	OrderCancelled = "cancelled"
)

type Order struct {
	BaseModel
	OrganizationID string          `db:"organization_id" json:"organizationId"`
	OrderNumber    string          `db:"order_number" json:"orderNumber"`
	CustomerName   string          `db:"customer_name" json:"customerName"`
	CustomerPhone  *string         `db:"customer_phone" json:"customerPhone"`
	Status         string          `db:"status" json:"status"`
	Total          decimal.Decimal `db:"total" json:"total"`
	Notes          string          `db:"notes" json:"notes"`
	CreatedBy      *string         `db:"created_by" json:"createdBy"`
	FulfilledAt    *time.Time      `db:"fulfilled_at" json:"fulfilledAt"`
	Items          []OrderItem     `db:"-" json:"items"`
}

type OrderItem struct {
	ID          string          `db:"id" json:"id"`
	OrderID     string          `db:"order_id" json:"orderId"`
	ProductID   string          `db:"product_id" json:"productId"`
	ProductName string          `db:"product_name" json:"productName"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`
	LineTotal   decimal.Decimal `db:"line_total" json:"lineTotal"`
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	switch from {
	case OrderPending:
		return to == OrderConfirmed || to == OrderFulfilled || to == OrderCancelled
	case OrderConfirmed:
		return to == OrderFulfilled || to == OrderCancelled
	default:
		return false
	}
}

// SalesLine is one product's fulfilled sales in a period.
type SalesLine struct {
	ProductID   string          `db:"product_id" json:"productId"`
	ProductName string          `db:"product_name" json:"productName"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Revenue     decimal.Decimal `db:"revenue" json:"revenue"`
}
