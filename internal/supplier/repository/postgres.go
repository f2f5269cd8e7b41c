package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/supplier/dto"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, s *model.Supplier) error {
	query := `
        INSERT INTO suppliers (id, organization_id, name, contact_name, email, phone, address, is_active, created_at, updated_at)
        VALUES (:id, :organization_id, :name, :contact_name, :email, :phone, :address, :is_active, :created_at, :updated_at)
    `
	if _, err := r.DB.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, orgID, id string) (*model.Supplier, error) {
	var s model.Supplier
	err := r.DB.GetContext(ctx, &s, `SELECT * FROM suppliers WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.SupplierFilters) ([]model.Supplier, int, error) {
	suppliers := []model.Supplier{}
	var count int

	conditions := []string{"organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}
	if f.Search != "" {
		conditions = append(conditions, "(name ILIKE :search OR contact_name ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countStmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM suppliers"+whereClause)
	if err != nil {
		return nil, 0, fmt.Errorf("prepare count suppliers: %w", err)
	}
	defer countStmt.Close()
	if err := countStmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, fmt.Errorf("count suppliers: %w", err)
	}

	args["limit"] = f.PageSize
	args["offset"] = (f.Page - 1) * f.PageSize
	stmt, err := r.DB.PrepareNamedContext(ctx, "SELECT * FROM suppliers"+whereClause+" ORDER BY name LIMIT :limit OFFSET :offset")
	if err != nil {
		return nil, 0, fmt.Errorf("prepare list suppliers: %w", err)
	}
	defer stmt.Close()
	if err := stmt.SelectContext(ctx, &suppliers, args); err != nil {
		return nil, 0, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, count, nil
}

func (r *PGRepository) Update(ctx context.Context, s *model.Supplier) error {
	query := `
        UPDATE suppliers SET name = :name, contact_name = :contact_name, email = :email, phone = :phone,
            address = :address, is_active = :is_active, updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id
    `
	if _, err := r.DB.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, orgID, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM suppliers WHERE id = $1 AND organization_id = $2`, id, orgID); err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	return nil
}

func (r *PGRepository) HasPurchaseOrders(ctx context.Context, orgID, id string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM purchase_orders WHERE supplier_id = $1 AND organization_id = $2)`
	if err := r.DB.GetContext(ctx, &exists, query, id, orgID); err != nil {
		return false, fmt.Errorf("check supplier purchase orders: %w", err)
	}
	return exists, nil
}
