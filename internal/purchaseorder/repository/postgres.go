package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/purchaseorder/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, po *model.PurchaseOrder) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO purchase_orders (id, organization_id, supplier_id, po_number, status, total, expected_at, notes, created_by, created_at, updated_at)
        VALUES (:id, :organization_id, :supplier_id, :po_number, :status, :total, :expected_at, :notes, :created_by, :created_at, :updated_at)
    `
	if _, err := tx.NamedExecContext(ctx, query, po); err != nil {
		return fmt.Errorf("insert purchase order: %w", err)
	}

	itemQuery := `
        INSERT INTO purchase_order_items (id, purchase_order_id, product_id, quantity, unit_cost)
        VALUES (:id, :purchase_order_id, :product_id, :quantity, :unit_cost)
    `
	for i := range po.Items {
		if _, err := tx.NamedExecContext(ctx, itemQuery, &po.Items[i]); err != nil {
			return fmt.Errorf("insert purchase order item: %w", err)
		}
	}
	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, orgID, id string) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.DB.GetContext(ctx, &po, `SELECT * FROM purchase_orders WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}

	po.Items = []model.PurchaseOrderItem{}
	if err := r.DB.SelectContext(ctx, &po.Items, `SELECT * FROM purchase_order_items WHERE purchase_order_id = $1`, po.ID); err != nil {
		return nil, fmt.Errorf("get purchase order items: %w", err)
	}
	return &po, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.PurchaseOrderFilters) ([]model.PurchaseOrder, int, error) {
	orders := []model.PurchaseOrder{}
	var count int

	conditions := []string{"organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}
	if f.SupplierID != "" {
		conditions = append(conditions, "supplier_id = :supplier_id")
		args["supplier_id"] = f.SupplierID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countStmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM purchase_orders"+whereClause)
	if err != nil {
		return nil, 0, fmt.Errorf("prepare count purchase orders: %w", err)
	}
	defer countStmt.Close()
	if err := countStmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, fmt.Errorf("count purchase orders: %w", err)
	}

	args["limit"] = f.PageSize
	args["offset"] = (f.Page - 1) * f.PageSize
	stmt, err := r.DB.PrepareNamedContext(ctx, "SELECT * FROM purchase_orders"+whereClause+" ORDER BY created_at DESC LIMIT :limit OFFSET :offset")
	if err != nil {
		return nil, 0, fmt.Errorf("prepare list purchase orders: %w", err)
	}
	defer stmt.Close()
	if err := stmt.SelectContext(ctx, &orders, args); err != nil {
		return nil, 0, fmt.Errorf("list purchase orders: %w", err)
	}
	return orders, count, nil
}

// UpdateStatus writes the new status only while the row still has previous
// status; a lost race surfaces as a Conflict.
func (r *PGRepository) UpdateStatus(ctx context.Context, po *model.PurchaseOrder, previous string) error {
	query := `
        UPDATE purchase_orders SET status = :status, received_at = :received_at, updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id AND status = :previous
    `
	args := map[string]interface{}{
		"id":              po.ID,
		"organization_id": po.OrganizationID,
		"status":          po.Status,
		"received_at":     po.ReceivedAt,
		"updated_at":      po.UpdatedAt,
		"previous":        previous,
	}
	res, err := r.DB.NamedExecContext(ctx, query, args)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	if n == 0 {
		return apperror.Conflict("purchase order is no longer %s", previous)
	}
	return nil
}
