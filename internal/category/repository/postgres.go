package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/category/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// product_count is computed on read so it never drifts from the products table.
const selectCategory = `
    SELECT c.id, c.organization_id, c.parent_id, c.name, c.description, c.icon,
           c.sort_order, c.is_active, c.created_at, c.updated_at,
           (SELECT count(*) FROM products p WHERE p.category_id = c.id) AS product_count
    FROM categories c`

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, organization_id, parent_id, name, description, icon, sort_order, is_active, created_at, updated_at)
        VALUES (:id, :organization_id, :parent_id, :name, :description, :icon, :sort_order, :is_active, :created_at, :updated_at)
    `
	if _, err := r.DB.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, orgID, id string) (*model.Category, error) {
	var category model.Category
	query := selectCategory + ` WHERE c.id = $1 AND c.organization_id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &category, query, id, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &category, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	categories := []model.Category{}
	var count int

	conditions := []string{"c.organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}

	if f.ParentID != nil {
		if *f.ParentID == "" {
			conditions = append(conditions, "c.parent_id IS NULL")
		} else {
			conditions = append(conditions, "c.parent_id = :parent_id")
			args["parent_id"] = *f.ParentID
		}
	}
	if f.IsActive != nil {
		conditions = append(conditions, "c.is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.Search != "" {
		conditions = append(conditions, "c.name ILIKE :search")
		args["search"] = "%" + f.Search + "%"
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countStmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM categories c"+whereClause)
	if err != nil {
		return nil, 0, fmt.Errorf("prepare count categories: %w", err)
	}
	defer countStmt.Close()
	if err := countStmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	query := selectCategory + whereClause + " ORDER BY c.sort_order ASC, c.name ASC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("prepare list categories: %w", err)
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &categories, args); err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return categories, count, nil
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET parent_id = :parent_id,
            name = :name,
            description = :description,
            icon = :icon,
            sort_order = :sort_order,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id
    `
	if _, err := r.DB.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete relies on ON DELETE SET NULL to move children and products to root.
func (r *PGRepository) Delete(ctx context.Context, orgID, id string) error {
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id = $1 AND organization_id = $2", id, orgID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
