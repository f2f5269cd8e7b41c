package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateProductInput struct {
	OrganizationID    string              `json:"-" form:"-"`
	CategoryID        string              `json:"categoryId" form:"categoryId"`
	SKU               string              `json:"sku" form:"sku"`
	QRCode            string              `json:"qrCode" form:"qrCode"`
	Name              string              `json:"name" form:"name"`
	Description       string              `json:"description" form:"description"`
	Price             decimal.Decimal     `json:"price" form:"-"`
	CostPrice         decimal.NullDecimal `json:"costPrice" form:"-"`
	Unit              string              `json:"unit" form:"unit"`
	LowStockThreshold *int                `json:"lowStockThreshold" form:"lowStockThreshold"`
	ReorderQuantity   int                 `json:"reorderQuantity" form:"reorderQuantity"`
	ExpirationDate    *time.Time          `json:"expirationDate" form:"-"`
	ImageURL          string              `json:"image" form:"image"`
	InitialGodown     int                 `json:"initialGodown" form:"initialGodown"`
	InitialStore      int                 `json:"initialStore" form:"initialStore"`
	UserID            string              `json:"-" form:"-"`
}

type UpdateProductInput struct {
	ID                string              `json:"-" form:"-"`
	OrganizationID    string              `json:"-" form:"-"`
	CategoryID        string              `json:"categoryId" form:"categoryId"`
	SKU               string              `json:"sku" form:"sku"`
	QRCode            string              `json:"qrCode" form:"qrCode"`
	Name              string              `json:"name" form:"name"`
	Description       string              `json:"description" form:"description"`
	Price             decimal.Decimal     `json:"price" form:"-"`
	CostPrice         decimal.NullDecimal `json:"costPrice" form:"-"`
	Unit              string              `json:"unit" form:"unit"`
	LowStockThreshold *int                `json:"lowStockThreshold" form:"lowStockThreshold"`
	ReorderQuantity   int                 `json:"reorderQuantity" form:"reorderQuantity"`
	ExpirationDate    *time.Time          `json:"expirationDate" form:"-"`
	ImageURL          string              `json:"image" form:"image"`
	IsActive          *bool               `json:"isActive" form:"isActive"`
}
