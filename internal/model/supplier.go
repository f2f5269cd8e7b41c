package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Supplier struct {
	BaseModel
	OrganizationID string  `db:"organization_id" json:"organizationId"`
	Name           string  `db:"name" json:"name"`
	ContactName    *string `db:"contact_name" json:"contactName"`
	Email          *string `db:"email" json:"email"`
	Phone          *string `db:"phone" json:"phone"`
	Address        *string `db:"address" json:"address"`
	IsActive       bool    `db:"is_active" json:"isActive"`
}

const (
	PurchaseOrderDraft     = "draft"
	PurchaseOrderOrdered   = "ordered"
	PurchaseOrderReceived  = "received"
	PurchaseOrderCancelled = "cancelled"
)

type PurchaseOrder struct {
	BaseModel
	OrganizationID string              `db:"organization_id" json:"organizationId"`
	SupplierID     string              `db:"supplier_id" json:"supplierId"`
	PONumber       string              `db:"po_number" json:"poNumber"`
	Status         string              `db:"status" json:"status"`
	Total          decimal.Decimal     `db:"total" json:"total"`
	ExpectedAt     *time.Time          `db:"expected_at" json:"expectedAt"`
	ReceivedAt     *time.Time          `db:"received_at" json:"receivedAt"`
	Notes          string              `db:"notes" json:"notes"`
	CreatedBy      *string             `db:"created_by" json:"createdBy"`
	Items          []PurchaseOrderItem `db:"-" json:"items"`
}

type PurchaseOrderItem struct {
	ID              string          `db:"id" json:"id"`
	PurchaseOrderID string          `db:"purchase_order_id" json:"purchaseOrderId"`
	ProductID       string          `db:"product_id" json:"productId"`
	Quantity        int             `db:"quantity" json:"quantity"`
	UnitCost        decimal.Decimal `db:"unit_cost" json:"unitCost"`
}

// CanTransitionPurchaseOrder reports whether a purchase order may move between statuses.
// Receiving straight from draft is allowed for walk-in deliveries.
func CanTransitionPurchaseOrder(from, to string) bool {
	switch from {
	case PurchaseOrderDraft:
		return to == PurchaseOrderOrdered || to == PurchaseOrderReceived || to == PurchaseOrderCancelled
	case PurchaseOrderOrdered:
		return to == PurchaseOrderReceived || to == PurchaseOrderCancelled
	default:
		return false
	}
}
