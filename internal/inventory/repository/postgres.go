package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetLevel(ctx context.Context, orgID, productID string) (*model.StockLevel, error) {
	var level model.StockLevel
	query := `
        SELECT p.id AS product_id, p.organization_id,
               COALESCE(s.godown, 0) AS godown,
               COALESCE(s.store, p.quantity) AS store,
               COALESCE(s.reserved, 0) AS reserved,
               COALESCE(s.updated_at, p.updated_at) AS updated_at
        FROM products p
        LEFT JOIN stock_levels s ON s.product_id = p.id
        WHERE p.id = $1 AND p.organization_id = $2
    `
	if err := r.DB.GetContext(ctx, &level, query, productID, orgID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return &level, nil
}

func (r *PGRepository) ListLevels(ctx context.Context, f *dto.LevelFilters) ([]dto.LevelView, int, error) {
	items := []dto.LevelView{}
	var count int

	conditions := []string{"p.organization_id = :organization_id", "p.is_active"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}
	if f.CategoryID != "" {
		conditions = append(conditions, "p.category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.Search != "" {
		conditions = append(conditions, "(p.name ILIKE :search OR p.sku ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}
	if f.LowStock {
		conditions = append(conditions, "COALESCE(s.godown + s.store, p.quantity) <= p.low_stock_threshold")
	}
	from := " FROM products p LEFT JOIN stock_levels s ON s.product_id = p.id WHERE " + strings.Join(conditions, " AND ")

	countStmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*)"+from)
	if err != nil {
		return nil, 0, err
	}
	defer countStmt.Close()
	if err := countStmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, fmt.Errorf("count stock levels: %w", err)
	}

	query := `
        SELECT p.id AS product_id, p.name AS product_name, p.sku, p.category_id, p.low_stock_threshold,
               COALESCE(s.godown, 0) AS godown,
               COALESCE(s.store, p.quantity) AS store,
               COALESCE(s.reserved, 0) AS reserved,
               COALESCE(s.godown + s.store, p.quantity) AS total,
               COALESCE(s.store - s.reserved, p.quantity) AS available,
               COALESCE(s.updated_at, p.updated_at) AS updated_at` + from + " ORDER BY p.name ASC"
	if f.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (f.Page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()
	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, fmt.Errorf("list stock levels: %w", err)
	}
	return items, count, nil
}

const upsertLevel = `
    INSERT INTO stock_levels (product_id, organization_id, godown, store, reserved, updated_at)
    VALUES (:product_id, :organization_id, :godown, :store, :reserved, :updated_at)
    ON CONFLICT (product_id)
    DO UPDATE SET
        godown = EXCLUDED.godown,
        store = EXCLUDED.store,
        reserved = EXCLUDED.reserved,
        updated_at = EXCLUDED.updated_at
`

const insertMovement = `
    INSERT INTO stock_movements (
        id, organization_id, product_id, movement_type, location, target_location, quantity,
        godown_before, store_before, reserved_before, godown_after, store_after, reserved_after,
        reference_type, reference_id, notes, created_by, created_at
    )
    VALUES (
        :id, :organization_id, :product_id, :movement_type, :location, :target_location, :quantity,
        :godown_before, :store_before, :reserved_before, :godown_after, :store_after, :reserved_after,
        :reference_type, :reference_id, :notes, :created_by, :created_at
    )
`

func writeLevel(ctx context.Context, tx *sqlx.Tx, level *model.StockLevel, m *model.StockMovement) error {
	if _, err := tx.NamedExecContext(ctx, upsertLevel, level); err != nil {
		return fmt.Errorf("failed to update stock level: %w", err)
	}
	// Keep the legacy flat quantity in step for older readers.
	if _, err := tx.ExecContext(ctx, `UPDATE products SET quantity = $1 WHERE id = $2`, level.Total(), level.ProductID); err != nil {
		return fmt.Errorf("failed to sync product quantity: %w", err)
	}
	if _, err := tx.NamedExecContext(ctx, insertMovement, m); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}
	return nil
}

func (r *PGRepository) ApplyMovement(ctx context.Context, level *model.StockLevel, m *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := writeLevel(ctx, tx, level, m); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	items := []model.StockMovement{}
	var count int

	conditions := []string{"organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}
	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at < :end_date")
		args["end_date"] = *f.EndDate
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countStmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM stock_movements"+whereClause)
	if err != nil {
		return nil, 0, err
	}
	defer countStmt.Close()
	if err := countStmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (f.Page-1)*f.PageSize)
	}
	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()
	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	return items, count, nil
}

func (r *PGRepository) ListReferenceMovements(ctx context.Context, orgID, productID, refType, refID string) ([]model.StockMovement, error) {
	items := []model.StockMovement{}
	query := `
        SELECT * FROM stock_movements
        WHERE organization_id = $1 AND product_id = $2 AND reference_type = $3 AND reference_id = $4
        ORDER BY created_at ASC
    `
	if err := r.DB.SelectContext(ctx, &items, query, orgID, productID, refType, refID); err != nil {
		return nil, fmt.Errorf("list reference movements: %w", err)
	}
	return items, nil
}

func (r *PGRepository) CreateBatch(ctx context.Context, b *model.Batch, level *model.StockLevel, m *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO batches (id, organization_id, product_id, batch_number, quantity, expiration_date, received_at, created_at)
        VALUES (:id, :organization_id, :product_id, :batch_number, :quantity, :expiration_date, :received_at, :created_at)
    `
	if _, err := tx.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}
	if err := writeLevel(ctx, tx, level, m); err != nil {
		return err
	}
	// The product expiry tracks its earliest batch.
	if b.ExpirationDate != nil {
		_, err := tx.ExecContext(ctx, `
            UPDATE products SET expiration_date = $1
            WHERE id = $2 AND (expiration_date IS NULL OR expiration_date > $1)`, *b.ExpirationDate, b.ProductID)
		if err != nil {
			return fmt.Errorf("failed to update product expiry: %w", err)
		}
	}
	return tx.Commit()
}

func (r *PGRepository) ListBatches(ctx context.Context, orgID, productID string) ([]model.Batch, error) {
	batches := []model.Batch{}
	query := `SELECT * FROM batches WHERE organization_id = $1`
	args := []interface{}{orgID}
	if productID != "" {
		query += ` AND product_id = $2`
		args = append(args, productID)
	}
	query += ` ORDER BY expiration_date ASC NULLS LAST, received_at DESC`
	if err := r.DB.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}
