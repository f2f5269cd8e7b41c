package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/alert/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const selectSubject = `
    SELECT p.organization_id, p.id AS product_id, p.name AS product_name,
           COALESCE(s.godown + s.store, p.quantity) AS total_stock,
           p.low_stock_threshold, p.expiration_date, p.is_active
    FROM products p
    LEFT JOIN stock_levels s ON s.product_id = p.id`

func (r *PGRepository) GetSubject(ctx context.Context, orgID, productID string) (*dto.Subject, error) {
	var s dto.Subject
	err := r.DB.GetContext(ctx, &s, selectSubject+` WHERE p.id = $1 AND p.organization_id = $2`, productID, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert subject: %w", err)
	}
	return &s, nil
}

func (r *PGRepository) ListExpiringSubjects(ctx context.Context, cutoff time.Time) ([]dto.Subject, error) {
	var out []dto.Subject
	err := r.DB.SelectContext(ctx, &out,
		selectSubject+` WHERE p.is_active AND p.expiration_date IS NOT NULL AND p.expiration_date <= $1`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expiring products: %w", err)
	}
	return out, nil
}

func (r *PGRepository) ListOpen(ctx context.Context, orgID, productID string) ([]model.Alert, error) {
	var out []model.Alert
	err := r.DB.SelectContext(ctx, &out,
		`SELECT * FROM alerts WHERE organization_id = $1 AND product_id = $2 AND resolved_at IS NULL`, orgID, productID)
	if err != nil {
		return nil, fmt.Errorf("list open alerts: %w", err)
	}
	return out, nil
}

// Create is a no-op when an open alert of the same type already exists.
func (r *PGRepository) Create(ctx context.Context, a *model.Alert) error {
	query := `
        INSERT INTO alerts (id, organization_id, product_id, product_name, alert_type, severity, message, is_read, created_at)
        VALUES (:id, :organization_id, :product_id, :product_name, :alert_type, :severity, :message, :is_read, :created_at)
        ON CONFLICT (product_id, alert_type) WHERE resolved_at IS NULL DO NOTHING
    `
	if _, err := r.DB.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (r *PGRepository) Resolve(ctx context.Context, ids []string, at time.Time) error {
	query, args, err := sqlx.In(`UPDATE alerts SET resolved_at = ? WHERE id IN (?)`, at, ids)
	if err != nil {
		return err
	}
	if _, err := r.DB.ExecContext(ctx, r.DB.Rebind(query), args...); err != nil {
		return fmt.Errorf("resolve alerts: %w", err)
	}
	return nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.AlertFilters) ([]model.Alert, int, error) {
	alerts := []model.Alert{}
	var count int

	conditions := []string{"organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}
	if !f.IncludeClosed {
		conditions = append(conditions, "resolved_at IS NULL")
	}
	if f.Type != "" {
		conditions = append(conditions, "alert_type = :alert_type")
		args["alert_type"] = f.Type
	}
	if f.UnreadOnly {
		conditions = append(conditions, "NOT is_read")
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countStmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM alerts"+whereClause)
	if err != nil {
		return nil, 0, err
	}
	defer countStmt.Close()
	if err := countStmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, fmt.Errorf("count alerts: %w", err)
	}

	query := "SELECT * FROM alerts" + whereClause +
		" ORDER BY CASE severity WHEN 'critical' THEN 0 WHEN 'warning' THEN 1 ELSE 2 END, created_at DESC"
	if f.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (f.Page-1)*f.PageSize)
	}
	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()
	if err := nstmt.SelectContext(ctx, &alerts, args); err != nil {
		return nil, 0, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, count, nil
}

func (r *PGRepository) CountUnread(ctx context.Context, orgID string) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n,
		`SELECT count(*) FROM alerts WHERE organization_id = $1 AND resolved_at IS NULL AND NOT is_read`, orgID)
	return n, err
}

func (r *PGRepository) MarkRead(ctx context.Context, orgID, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE alerts SET is_read = TRUE WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return false, fmt.Errorf("mark alert read: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PGRepository) MarkAllRead(ctx context.Context, orgID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE alerts SET is_read = TRUE WHERE organization_id = $1 AND NOT is_read AND resolved_at IS NULL`, orgID)
	if err != nil {
		return 0, fmt.Errorf("mark all alerts read: %w", err)
	}
	return res.RowsAffected()
}

func (r *PGRepository) Delete(ctx context.Context, orgID, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return false, fmt.Errorf("delete alert: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
