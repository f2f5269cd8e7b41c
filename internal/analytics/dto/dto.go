package dto

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

type StockTotals struct {
	Godown    int `db:"godown" json:"godown"`
	Store     int `db:"store" json:"store"`
	Reserved  int `db:"reserved" json:"reserved"`
	Total     int `db:"-" json:"total"`
	Available int `db:"-" json:"available"`
}

// Overview is the single-row aggregate over an organization's products.
type Overview struct {
	TotalProducts   int             `db:"total_products" json:"totalProducts"`
	ActiveProducts  int             `db:"active_products" json:"activeProducts"`
	LowStockCount   int             `db:"low_stock" json:"lowStockCount"`
	OutOfStockCount int             `db:"out_of_stock" json:"outOfStockCount"`
	StockValue      decimal.Decimal `db:"stock_value" json:"stockValue"`
	CostValue       decimal.Decimal `db:"cost_value" json:"costValue"`
	StockTotals     `json:"-"`
}

type CategoryBreakdown struct {
	CategoryID *string         `db:"category_id" json:"categoryId"`
	Name       string          `db:"name" json:"name"`
	Products   int             `db:"products" json:"products"`
	Units      int             `db:"units" json:"units"`
	Value      decimal.Decimal `db:"value" json:"value"`
}

type RecentMovement struct {
	model.StockMovement
	ProductName string `db:"product_name" json:"productName"`
}

type Dashboard struct {
	Overview
	Stock           StockTotals         `json:"stock"`
	UnreadAlerts    int                 `json:"unreadAlerts"`
	PendingOrders   int                 `json:"pendingOrders"`
	Categories      []CategoryBreakdown `json:"categories"`
	TopSellers      []model.SalesLine   `json:"topSellers"`
	RecentMovements []RecentMovement    `json:"recentMovements"`
	GeneratedAt     time.Time           `json:"generatedAt"`
}
