package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/user/dto"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertUser = `
    INSERT INTO users (id, organization_id, email, name, password_hash, role, is_active, created_at, updated_at)
    VALUES (:id, :organization_id, :email, :name, :password_hash, :role, :is_active, :created_at, :updated_at)
`

func (r *PGRepository) CreateOrganization(ctx context.Context, org *model.Organization, admin *model.User) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO organizations (id, name, subscription_status, trial_ends_at, subscription_ends_at, created_at, updated_at)
        VALUES (:id, :name, :subscription_status, :trial_ends_at, :subscription_ends_at, :created_at, :updated_at)
    `
	if _, err := tx.NamedExecContext(ctx, query, org); err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	if _, err := tx.NamedExecContext(ctx, insertUser, admin); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	return tx.Commit()
}

func (r *PGRepository) GetOrganization(ctx context.Context, id string) (*model.Organization, error) {
	var org model.Organization
	if err := r.DB.GetContext(ctx, &org, `SELECT * FROM organizations WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &org, nil
}

func (r *PGRepository) Create(ctx context.Context, u *model.User) error {
	if _, err := r.DB.NamedExecContext(ctx, insertUser, u); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.DB.GetContext(ctx, &u, `SELECT * FROM users WHERE lower(email) = lower($1)`, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (r *PGRepository) FindByID(ctx context.Context, orgID, id string) (*model.User, error) {
	var u model.User
	if err := r.DB.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1 AND organization_id = $2`, id, orgID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.UserFilters) ([]model.User, int, error) {
	users := []model.User{}
	var count int

	conditions := []string{"organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}
	if f.Search != "" {
		conditions = append(conditions, "(name ILIKE :search OR email ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}
	if f.Role != "" {
		conditions = append(conditions, "role = :role")
		args["role"] = f.Role
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countStmt, err := r.DB.PrepareNamedContext(ctx, "SELECT count(*) FROM users"+whereClause)
	if err != nil {
		return nil, 0, fmt.Errorf("prepare count users: %w", err)
	}
	defer countStmt.Close()
	if err := countStmt.GetContext(ctx, &count, args); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	args["limit"] = f.PageSize
	args["offset"] = (f.Page - 1) * f.PageSize
	stmt, err := r.DB.PrepareNamedContext(ctx, "SELECT * FROM users"+whereClause+" ORDER BY name LIMIT :limit OFFSET :offset")
	if err != nil {
		return nil, 0, fmt.Errorf("prepare list users: %w", err)
	}
	defer stmt.Close()
	if err := stmt.SelectContext(ctx, &users, args); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, count, nil
}

func (r *PGRepository) Update(ctx context.Context, u *model.User) error {
	query := `
        UPDATE users SET name = :name, password_hash = :password_hash, role = :role,
            is_active = :is_active, updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id
    `
	if _, err := r.DB.NamedExecContext(ctx, query, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, orgID, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1 AND organization_id = $2`, id, orgID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *PGRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("touch user login: %w", err)
	}
	return nil
}

func (r *PGRepository) CountActiveAdmins(ctx context.Context, orgID string) (int, error) {
	var n int
	query := `SELECT count(*) FROM users WHERE organization_id = $1 AND role = 'admin' AND is_active`
	if err := r.DB.GetContext(ctx, &n, query, orgID); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}
