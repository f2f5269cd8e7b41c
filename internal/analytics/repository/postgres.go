package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/analytics/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// Products without a stock_levels row still count their legacy quantity as store stock.
const totalExpr = `COALESCE(sl.godown + sl.store, p.quantity)`

func (r *PGRepository) Overview(ctx context.Context, orgID string) (*dto.Overview, error) {
	var o dto.Overview
	query := `
        SELECT count(*) AS total_products,
               count(*) FILTER (WHERE p.is_active) AS active_products,
               count(*) FILTER (WHERE p.is_active AND ` + totalExpr + ` = 0) AS out_of_stock,
               count(*) FILTER (WHERE p.is_active AND ` + totalExpr + ` > 0
                                  AND ` + totalExpr + ` <= p.low_stock_threshold) AS low_stock,
               COALESCE(sum(p.price * ` + totalExpr + `), 0) AS stock_value,
               COALESCE(sum(COALESCE(p.cost_price, 0) * ` + totalExpr + `), 0) AS cost_value,
               COALESCE(sum(COALESCE(sl.godown, 0)), 0) AS godown,
               COALESCE(sum(COALESCE(sl.store, p.quantity)), 0) AS store,
               COALESCE(sum(COALESCE(sl.reserved, 0)), 0) AS reserved
        FROM products p
        LEFT JOIN stock_levels sl ON sl.product_id = p.id
        WHERE p.organization_id = $1
    `
	if err := r.DB.GetContext(ctx, &o, query, orgID); err != nil {
		return nil, fmt.Errorf("inventory overview: %w", err)
	}
	return &o, nil
}

func (r *PGRepository) CategoryBreakdown(ctx context.Context, orgID string) ([]dto.CategoryBreakdown, error) {
	rows := []dto.CategoryBreakdown{}
	query := `
        SELECT c.id AS category_id, COALESCE(c.name, 'Uncategorized') AS name,
               count(p.id) AS products,
               COALESCE(sum(` + totalExpr + `), 0) AS units,
               COALESCE(sum(p.price * ` + totalExpr + `), 0) AS value
        FROM products p
        LEFT JOIN stock_levels sl ON sl.product_id = p.id
        LEFT JOIN categories c ON c.id = p.category_id
        WHERE p.organization_id = $1
        GROUP BY c.id, c.name
        ORDER BY value DESC
    `
	if err := r.DB.SelectContext(ctx, &rows, query, orgID); err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	return rows, nil
}

func (r *PGRepository) CountUnreadAlerts(ctx context.Context, orgID string) (int, error) {
	var n int
	query := `SELECT count(*) FROM alerts WHERE organization_id = $1 AND NOT is_read AND resolved_at IS NULL`
	if err := r.DB.GetContext(ctx, &n, query, orgID); err != nil {
		return 0, fmt.Errorf("count unread alerts: %w", err)
	}
	return n, nil
}

func (r *PGRepository) CountPendingOrders(ctx context.Context, orgID string) (int, error) {
	var n int
	query := `SELECT count(*) FROM orders WHERE organization_id = $1 AND status IN ('pending', 'confirmed')`
	if err := r.DB.GetContext(ctx, &n, query, orgID); err != nil {
		return 0, fmt.Errorf("count pending orders: %w", err)
	}
	return n, nil
}

func (r *PGRepository) TopSellers(ctx context.Context, orgID string, since time.Time, limit int) ([]model.SalesLine, error) {
	lines := []model.SalesLine{}
	query := `
        SELECT oi.product_id, max(oi.product_name) AS product_name,
               sum(oi.quantity) AS quantity, sum(oi.line_total) AS revenue
        FROM order_items oi
        JOIN orders o ON o.id = oi.order_id
        WHERE o.organization_id = $1 AND o.status = 'fulfilled' AND o.fulfilled_at >= $2
        GROUP BY oi.product_id
        ORDER BY quantity DESC
        LIMIT $3
    `
	if err := r.DB.SelectContext(ctx, &lines, query, orgID, since, limit); err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}
	return lines, nil
}

func (r *PGRepository) RecentMovements(ctx context.Context, orgID string, limit int) ([]dto.RecentMovement, error) {
	movements := []dto.RecentMovement{}
	query := `
        SELECT m.*, p.name AS product_name
        FROM stock_movements m
        JOIN products p ON p.id = m.product_id
        WHERE m.organization_id = $1
        ORDER BY m.created_at DESC
        LIMIT $2
    `
	if err := r.DB.SelectContext(ctx, &movements, query, orgID, limit); err != nil {
		return nil, fmt.Errorf("recent movements: %w", err)
	}
	return movements, nil
}
