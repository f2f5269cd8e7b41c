package dto

import "time"

// StockChangeInput drives increase, reduce, reserve, release and sell.
type StockChangeInput struct {
	OrganizationID string `json:"-"`
	UserID         string `json:"-"`
	ProductID      string `json:"productId"`
	Location       string `json:"location"`
	Quantity       int    `json:"quantity"`
	Notes          string `json:"notes"`
	ReferenceType  string `json:"referenceType"` // 'sale', 'order', 'purchase_order', 'manual'
	ReferenceID    string `json:"referenceId"`
}

type MoveStockInput struct {
	OrganizationID string `json:"-"`
	UserID         string `json:"-"`
	ProductID      string `json:"productId"`
	From           string `json:"from"`
	To             string `json:"to"`
	Quantity       int    `json:"quantity"`
	Notes          string `json:"notes"`
}

// AdjustStockInput sets a location to an absolute quantity (stock count).
type AdjustStockInput struct {
	OrganizationID string `json:"-"`
	UserID         string `json:"-"`
	ProductID      string `json:"productId"`
	Location       string `json:"location"`
	NewQuantity    int    `json:"newQuantity"`
	Reason         string `json:"reason"`
}

type ReceiveBatchInput struct {
	OrganizationID string     `json:"-"`
	UserID         string     `json:"-"`
	ProductID      string     `json:"productId"`
	BatchNumber    string     `json:"batchNumber"`
	Quantity       int        `json:"quantity"`
	ExpirationDate *time.Time `json:"expirationDate"`
	ReceivedAt     *time.Time `json:"receivedAt"`
}
