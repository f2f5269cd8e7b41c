package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseOrderItemInput struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unitCost"`
}

type CreatePurchaseOrderInput struct {
	OrganizationID string                   `json:"-"`
	UserID         string                   `json:"-"`
	SupplierID     string                   `json:"supplierId"`
	ExpectedAt     *time.Time               `json:"expectedAt"`
	Notes          string                   `json:"notes"`
	Submit         bool                     `json:"submit"` // Create directly in "ordered"
	Items          []PurchaseOrderItemInput `json:"items"`
}

type UpdateStatusInput struct {
	OrganizationID string `json:"-"`
	UserID         string `json:"-"`
	ID             string `json:"-"`
	Status         string `json:"status"`
}
