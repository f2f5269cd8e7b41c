package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/promotion/dto"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Promotion) error {
	query := `
        INSERT INTO promotions (id, organization_id, name, product_id, discount_percent, starts_at, ends_at, is_active, created_at, updated_at)
        VALUES (:id, :organization_id, :name, :product_id, :discount_percent, :starts_at, :ends_at, :is_active, :created_at, :updated_at)
    `
	if _, err := r.DB.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("insert promotion: %w", err)
	}
	return nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.PromotionFilters) ([]model.Promotion, int, error) {
	promotions := []model.Promotion{}
	var count int

	conditions := []string{"organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}
	if f.ProductID != "" {
		conditions = append(conditions, "(product_id = :product_id OR product_id IS NULL)")
		args["product_id"] = f.ProductID
	}
	if f.ActiveAt != nil {
		conditions = append(conditions, "is_active AND starts_at <= :at AND ends_at > :at")
		args["at"] = *f.ActiveAt
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countStmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM promotions"+whereClause)
	if err != nil {
		return nil, 0, fmt.Errorf("prepare count promotions: %w", err)
	}
	defer countStmt.Close()
	if err := countStmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, fmt.Errorf("count promotions: %w", err)
	}

	args["limit"] = f.PageSize
	args["offset"] = (f.Page - 1) * f.PageSize
	stmt, err := r.DB.PrepareNamedContext(ctx, "SELECT * FROM promotions"+whereClause+" ORDER BY starts_at DESC LIMIT :limit OFFSET :offset")
	if err != nil {
		return nil, 0, fmt.Errorf("prepare list promotions: %w", err)
	}
	defer stmt.Close()
	if err := stmt.SelectContext(ctx, &promotions, args); err != nil {
		return nil, 0, fmt.Errorf("list promotions: %w", err)
	}
	return promotions, count, nil
}

func (r *PGRepository) Delete(ctx context.Context, orgID, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM promotions WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return false, fmt.Errorf("delete promotion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete promotion: %w", err)
	}
	return n > 0, nil
}

func (r *PGRepository) ProductExists(ctx context.Context, orgID, productID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1 AND organization_id = $2)`
	if err := r.DB.GetContext(ctx, &exists, query, productID, orgID); err != nil {
		return false, fmt.Errorf("check product: %w", err)
	}
	return exists, nil
}
