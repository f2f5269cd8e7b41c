package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const selectProduct = `
    SELECT p.*, s.godown, s.store, s.reserved
    FROM products p
    LEFT JOIN stock_levels s ON s.product_id = p.id`

func (r *PGRepository) Create(ctx context.Context, p *model.Product, initial *model.StockLevel) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO products (
            id, organization_id, category_id, sku, qr_code, name, description,
            price, cost_price, unit, quantity, low_stock_threshold, reorder_quantity,
            expiration_date, image_url, is_active, created_at, updated_at
        )
        VALUES (
            :id, :organization_id, :category_id, :sku, :qr_code, :name, :description,
            :price, :cost_price, :unit, :quantity, :low_stock_threshold, :reorder_quantity,
            :expiration_date, :image_url, :is_active, :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	if initial != nil {
		levelQuery := `
            INSERT INTO stock_levels (product_id, organization_id, godown, store, reserved, updated_at)
            VALUES (:product_id, :organization_id, :godown, :store, :reserved, :updated_at)
        `
		if _, err := tx.NamedExecContext(ctx, levelQuery, initial); err != nil {
			return fmt.Errorf("insert stock level: %w", err)
		}

		for _, loc := range []string{model.LocationGodown, model.LocationStore} {
			qty := initial.At(loc)
			if qty <= 0 {
				continue
			}
			if err := insertInitialMovement(ctx, tx, p, loc, qty, initial); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func insertInitialMovement(ctx context.Context, tx *sqlx.Tx, p *model.Product, loc string, qty int, level *model.StockLevel) error {
	godownBefore, storeBefore := 0, 0
	if loc == model.LocationStore {
		godownBefore = level.Godown
	}
	godownAfter, storeAfter := level.Godown, 0
	if loc == model.LocationStore {
		storeAfter = level.Store
	}
	m := &model.StockMovement{
		ID:             uuid.New().String(),
		OrganizationID: p.OrganizationID,
		ProductID:      p.ID,
		MovementType:   model.MovementIn,
		Location:       loc,
		Quantity:       qty,
		GodownBefore:   godownBefore,
		StoreBefore:    storeBefore,
		GodownAfter:    godownAfter,
		StoreAfter:     storeAfter,
		Notes:          "Initial stock",
		CreatedAt:      p.CreatedAt,
	}
	query := `
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
	if _, err := tx.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("insert initial movement: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, orgID, id string) (*model.Product, error) {
	var row model.ProductRow
	query := selectProduct + ` WHERE p.id = $1 AND p.organization_id = $2 LIMIT 1`
	if err := r.DB.GetContext(ctx, &row, query, id, orgID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	p := row.ToProduct()
	return &p, nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, orgID string, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	query, args, err := sqlx.In(selectProduct+` WHERE p.organization_id = ? AND p.id IN (?)`, orgID, ids)
	if err != nil {
		return nil, err
	}
	var rows []model.ProductRow
	if err := r.DB.SelectContext(ctx, &rows, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}

	// Keep the caller's order (search relevance).
	byID := make(map[string]model.Product, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.ToProduct()
	}
	products := make([]model.Product, 0, len(rows))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// FindByCode prefers an exact qr_code match, then case-insensitive qr_code, then SKU.
func (r *PGRepository) FindByCode(ctx context.Context, orgID, code string) (*model.Product, error) {
	var row model.ProductRow
	query := selectProduct + `
        WHERE p.organization_id = $1
          AND (lower(p.qr_code) = lower($2) OR lower(p.sku) = lower($2))
        ORDER BY (p.qr_code = $2) DESC, (lower(p.qr_code) = lower($2)) DESC
        LIMIT 1`
	if err := r.DB.GetContext(ctx, &row, query, orgID, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}
	p := row.ToProduct()
	return &p, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var count int

	conditions := []string{"p.organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}

	if f.CategoryID != "" {
		conditions = append(conditions, "p.category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "p.is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(p.name ILIKE :search OR p.sku ILIKE :search OR p.qr_code ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}
	if f.LowStock {
		conditions = append(conditions, "COALESCE(s.godown + s.store, p.quantity) <= p.low_stock_threshold")
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countStmt, err := r.DB.PrepareNamedContext(ctx,
		"SELECT count(*) FROM products p LEFT JOIN stock_levels s ON s.product_id = p.id"+whereClause)
	if err != nil {
		return nil, 0, fmt.Errorf("prepare count products: %w", err)
	}
	defer countStmt.Close()
	if err := countStmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf("%s%s ORDER BY %s", selectProduct, whereClause, orderBy(f.SortBy, f.SortOrder))
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("prepare list products: %w", err)
	}
	defer nstmt.Close()

	var rows []model.ProductRow
	if err := nstmt.SelectContext(ctx, &rows, args); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	products := make([]model.Product, len(rows))
	for i, row := range rows {
		products[i] = row.ToProduct()
	}
	return products, count, nil
}

// orderBy whitelists sortable columns.
func orderBy(sortBy, sortOrder string) string {
	col := "p.created_at"
	switch sortBy {
	case "name":
		col = "p.name"
	case "price":
		col = "p.price"
	case "sku":
		col = "p.sku"
	case "stock", "quantity":
		col = "COALESCE(s.godown + s.store, p.quantity)"
	case "expirationDate":
		col = "p.expiration_date"
	}
	dir := "DESC"
	if strings.ToLower(sortOrder) == "asc" {
		dir = "ASC"
	}
	return col + " " + dir + ", p.id " + dir
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET category_id = :category_id,
            sku = :sku,
            qr_code = :qr_code,
            name = :name,
            description = :description,
            price = :price,
            cost_price = :cost_price,
            unit = :unit,
            low_stock_threshold = :low_stock_threshold,
            reorder_quantity = :reorder_quantity,
            expiration_date = :expiration_date,
            image_url = :image_url,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id
    `
	if _, err := r.DB.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, orgID, id string) error {
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id = $1 AND organization_id = $2", id, orgID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (r *PGRepository) IsSKUUnique(ctx context.Context, orgID, sku, excludeID string) (bool, error) {
	return r.isUnique(ctx, "sku", orgID, sku, excludeID)
}

func (r *PGRepository) IsQRCodeUnique(ctx context.Context, orgID, qrCode, excludeID string) (bool, error) {
	return r.isUnique(ctx, "qr_code", orgID, qrCode, excludeID)
}

func (r *PGRepository) isUnique(ctx context.Context, column, orgID, value, excludeID string) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`
        SELECT EXISTS (
            SELECT 1 FROM products
            WHERE organization_id = $1 AND lower(%s) = lower($2) AND ($3 = '' OR id::text <> $3)
        )`, column)
	if err := r.DB.GetContext(ctx, &exists, query, orgID, value, excludeID); err != nil {
		return false, fmt.Errorf("check %s: %w", column, err)
	}
	return !exists, nil
}
