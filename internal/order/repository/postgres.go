package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/order/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// PriceProducts returns the products with the largest promotion discount
// running right now, product-specific or organization-wide.
func (r *PGRepository) PriceProducts(ctx context.Context, orgID string, productIDs []string) ([]dto.PricedProduct, error) {
	if len(productIDs) == 0 {
		return []dto.PricedProduct{}, nil
	}
	query, args, err := sqlx.In(`
        SELECT p.id, p.name, p.price, p.is_active,
               COALESCE((
                   SELECT max(pr.discount_percent) FROM promotions pr
                   WHERE pr.organization_id = p.organization_id
                     AND pr.is_active
                     AND now() >= pr.starts_at AND now() < pr.ends_at
                     AND (pr.product_id = p.id OR pr.product_id IS NULL)
               ), 0) AS discount_percent
        FROM products p
        WHERE p.organization_id = ? AND p.id IN (?)`, orgID, productIDs)
	if err != nil {
		return nil, err
	}
	products := []dto.PricedProduct{}
	if err := r.DB.SelectContext(ctx, &products, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("price products: %w", err)
	}
	return products, nil
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO orders (id, organization_id, order_number, customer_name, customer_phone, status, total, notes, created_by, created_at, updated_at)
        VALUES (:id, :organization_id, :order_number, :customer_name, :customer_phone, :status, :total, :notes, :created_by, :created_at, :updated_at)
    `
	if _, err := tx.NamedExecContext(ctx, query, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
        INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, line_total)
        VALUES (:id, :order_id, :product_id, :product_name, :quantity, :unit_price, :line_total)
    `
	for i := range o.Items {
		if _, err := tx.NamedExecContext(ctx, itemQuery, &o.Items[i]); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, orgID, id string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	o.Items = []model.OrderItem{}
	err = r.DB.SelectContext(ctx, &o.Items, `SELECT * FROM order_items WHERE order_id = $1 ORDER BY product_name`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	return &o, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	orders := []model.Order{}
	var count int

	conditions := []string{"organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.Search != "" {
		conditions = append(conditions, "(order_number ILIKE :search OR customer_name ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countStmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM orders"+whereClause)
	if err != nil {
		return nil, 0, fmt.Errorf("prepare count orders: %w", err)
	}
	defer countStmt.Close()
	if err := countStmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args["limit"] = f.PageSize
	args["offset"] = (f.Page - 1) * f.PageSize
	stmt, err := r.DB.PrepareNamedContext(ctx, "SELECT * FROM orders"+whereClause+" ORDER BY created_at DESC LIMIT :limit OFFSET :offset")
	if err != nil {
		return nil, 0, fmt.Errorf("prepare list orders: %w", err)
	}
	defer stmt.Close()
	if err := stmt.SelectContext(ctx, &orders, args); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, count, nil
}

// UpdateStatus writes the new status only while the row still has previous
// status; a lost race surfaces as a Conflict.
func (r *PGRepository) UpdateStatus(ctx context.Context, o *model.Order, previous string) error {
	query := `
        UPDATE orders SET status = :status, fulfilled_at = :fulfilled_at, updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id AND status = :previous
    `
	args := map[string]interface{}{
		"id":              o.ID,
		"organization_id": o.OrganizationID,
		"status":          o.Status,
		"fulfilled_at":    o.FulfilledAt,
		"updated_at":      o.UpdatedAt,
		"previous":        previous,
	}
	res, err := r.DB.NamedExecContext(ctx, query, args)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n == 0 {
		return apperror.Conflict("order is no longer %s", previous)
	}
	return nil
}

func (r *PGRepository) SalesByProduct(ctx context.Context, f *dto.SalesFilters) ([]model.SalesLine, error) {
	lines := []model.SalesLine{}
	query := `
        SELECT oi.product_id, max(oi.product_name) AS product_name,
               sum(oi.quantity) AS quantity, sum(oi.line_total) AS revenue
        FROM order_items oi
        JOIN orders o ON o.id = oi.order_id
        WHERE o.organization_id = $1 AND o.status = 'fulfilled'
          AND o.fulfilled_at >= $2 AND o.fulfilled_at < $3
        GROUP BY oi.product_id
        ORDER BY revenue DESC
    `
	if err := r.DB.SelectContext(ctx, &lines, query, f.OrganizationID, f.From, f.To); err != nil {
		return nil, fmt.Errorf("sales by product: %w", err)
	}
	return lines, nil
}
