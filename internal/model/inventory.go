package model

import "time"

const (
	LocationGodown = "godown"
	LocationStore  = "store"
)

const (
	MovementIn       = "IN"
	MovementOut      = "OUT"
	MovementSale     = "SALE"
	MovementAdjust   = "ADJUST"
	MovementTransfer = "TRANSFER"
	MovementReserve  = "RESERVE"
	MovementRelease  = "RELEASE"
	MovementReturn   = "RETURN"
)

func ValidLocation(loc string) bool {
	return loc == LocationGodown || loc == LocationStore
}

// StockLevel is the persisted two-location stock of one product.
type StockLevel struct {
	ProductID      string    `db:"product_id" json:"productId"`
	OrganizationID string    `db:"organization_id" json:"organizationId"`
	Godown         int       `db:"godown" json:"godown"`
	Store          int       `db:"store" json:"store"`
	Reserved       int       `db:"reserved" json:"reserved"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

func (l *StockLevel) Total() int     { return l.Godown + l.Store }
func (l *StockLevel) Available() int { return l.Store - l.Reserved }

func (l *StockLevel) At(location string) int {
	if location == LocationGodown {
		return l.Godown
	}
	return l.Store
}

func (l *StockLevel) Set(location string, qty int) {
	if location == LocationGodown {
		l.Godown = qty
		return
	}
	l.Store = qty
}

func (l *StockLevel) Summary() StockSummary {
	return NewStockSummary(l.Godown, l.Store, l.Reserved)
}

// StockSummary is the wire shape {godown, store, total, reserved}.
type StockSummary struct {
	Godown    int `json:"godown"`
	Store     int `json:"store"`
	Total     int `json:"total"`
	Reserved  int `json:"reserved"`
	Available int `json:"available"`
}

func NewStockSummary(godown, store, reserved int) StockSummary {
	return StockSummary{
		Godown:    godown,
		Store:     store,
		Total:     godown + store,
		Reserved:  reserved,
		Available: store - reserved,
	}
}

type StockMovement struct {
	ID             string    `db:"id" json:"id"`
	OrganizationID string    `db:"organization_id" json:"organizationId"`
	ProductID      string    `db:"product_id" json:"productId"`
	MovementType   string    `db:"movement_type" json:"type"`
	Location       string    `db:"location" json:"location"`
	TargetLocation *string   `db:"target_location" json:"targetLocation,omitempty"`
	Quantity       int       `db:"quantity" json:"quantity"` // Signed delta for the location
	GodownBefore   int       `db:"godown_before" json:"godownBefore"`
	StoreBefore    int       `db:"store_before" json:"storeBefore"`
	ReservedBefore int       `db:"reserved_before" json:"reservedBefore"`
	GodownAfter    int       `db:"godown_after" json:"godownAfter"`
	StoreAfter     int       `db:"store_after" json:"storeAfter"`
	ReservedAfter  int       `db:"reserved_after" json:"reservedAfter"`
	ReferenceType  *string   `db:"reference_type" json:"referenceType,omitempty"`
	ReferenceID    *string   `db:"reference_id" json:"referenceId,omitempty"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedBy      *string   `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// Batch is a received lot; its quantity lands in the godown.
type Batch struct {
	ID             string     `db:"id" json:"id"`
	OrganizationID string     `db:"organization_id" json:"organizationId"`
	ProductID      string     `db:"product_id" json:"productId"`
	BatchNumber    string     `db:"batch_number" json:"batchNumber"`
	Quantity       int        `db:"quantity" json:"quantity"`
	ExpirationDate *time.Time `db:"expiration_date" json:"expirationDate"`
	ReceivedAt     time.Time  `db:"received_at" json:"receivedAt"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
}
