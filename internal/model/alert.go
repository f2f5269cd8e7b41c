package model

import "time"

const (
	AlertLowStock     = "low_stock"
	AlertOutOfStock   = "out_of_stock"
	AlertExpiringSoon = "expiring_soon"
	AlertExpired      = "expired"
)

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

type Alert struct {
	ID             string     `db:"id" json:"id"`
	OrganizationID string     `db:"organization_id" json:"organizationId"`
	ProductID      string     `db:"product_id" json:"productId"`
	ProductName    string     `db:"product_name" json:"productName"`
	AlertType      string     `db:"alert_type" json:"type"`
	Severity       string     `db:"severity" json:"severity"`
	Message        string     `db:"message" json:"message"`
	IsRead         bool       `db:"is_read" json:"read"`
	ResolvedAt     *time.Time `db:"resolved_at" json:"resolvedAt,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
}
