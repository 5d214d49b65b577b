package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sorchess/picaton-rbac/internal/permission"
	"github.com/Sorchess/picaton-rbac/internal/role/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a role repository that uses the given db for
// persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const roleColumns = `id, company_id, name, color, priority, permissions, kind, is_default, created_at, updated_at`

// Create persists the role. The role must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, role *domain.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roles (`+roleColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		role.ID, role.CompanyID, role.Name, role.Color, int(role.Priority),
		encodePermissions(role.Permissions), string(role.Kind), role.IsDefault,
		role.CreatedAt, role.UpdatedAt)
	return err
}

// GetByID returns the role with the given id within the company, or nil if it
// does not exist or belongs to another company. It returns an error only for
// database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, companyID, id string) (*domain.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE company_id = $1 AND id = $2`, companyID, id)
}

// GetByCompany returns the company's roles ordered by ascending priority.
func (r *PostgresRepository) GetByCompany(ctx context.Context, companyID string) ([]*domain.Role, error) {
	return r.getMany(ctx, `SELECT `+roleColumns+` FROM roles WHERE company_id = $1 ORDER BY priority, created_at`, companyID)
}

// GetByCompanyAndName returns the company role with the given name, or nil.
func (r *PostgresRepository) GetByCompanyAndName(ctx context.Context, companyID, name string) (*domain.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE company_id = $1 AND name = $2`, companyID, name)
}

// GetCustomRoles returns the company's non-system roles ordered by priority.
func (r *PostgresRepository) GetCustomRoles(ctx context.Context, companyID string) ([]*domain.Role, error) {
	return r.getMany(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE company_id = $1 AND kind = 'custom' ORDER BY priority, created_at`,
		companyID)
}

// GetOwnerRole returns the company's Owner role, or nil if the company has
// not been initialized.
func (r *PostgresRepository) GetOwnerRole(ctx context.Context, companyID string) (*domain.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE company_id = $1 AND kind = 'owner'`, companyID)
}

// GetDefaultRole returns the role flagged as the company default, or nil.
func (r *PostgresRepository) GetDefaultRole(ctx context.Context, companyID string) (*domain.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE company_id = $1 AND is_default`, companyID)
}

// GetNextPriority returns a priority strictly below every existing role of
// the company, never at or above the reserved admin rank.
func (r *PostgresRepository) GetNextPriority(ctx context.Context, companyID string) (domain.Priority, error) {
	var max int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(priority), $2) FROM roles WHERE company_id = $1`,
		companyID, int(domain.AdminPriority)).Scan(&max)
	if err != nil {
		return 0, err
	}
	next := domain.Priority(max + 1)
	if next <= domain.AdminPriority {
		next = domain.AdminPriority + 1
	}
	return next, nil
}

// Update rewrites the role's mutable fields (name, color, permissions,
// default flag, priority).
func (r *PostgresRepository) Update(ctx context.Context, role *domain.Role) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE roles
		 SET name = $3, color = $4, priority = $5, permissions = $6, is_default = $7, updated_at = $8
		 WHERE company_id = $1 AND id = $2`,
		role.CompanyID, role.ID, role.Name, role.Color, int(role.Priority),
		encodePermissions(role.Permissions), role.IsDefault, role.UpdatedAt)
	return err
}

// Delete removes the role row. Deleting an already-deleted role is a no-op.
func (r *PostgresRepository) Delete(ctx context.Context, companyID, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE company_id = $1 AND id = $2`, companyID, id)
	return err
}

// ReorderRoles applies the given priorities in one transaction.
func (r *PostgresRepository) ReorderRoles(ctx context.Context, companyID string, priorities map[string]domain.Priority) error {
	if len(priorities) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for id, p := range priorities {
		if _, err := tx.ExecContext(ctx,
			`UPDATE roles SET priority = $3, updated_at = $4 WHERE company_id = $1 AND id = $2`,
			companyID, id, int(p), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CreateSystemRoles creates the Owner and Admin roles for the company in one
// transaction. When the pair already exists, the existing roles are returned
// unchanged.
func (r *PostgresRepository) CreateSystemRoles(ctx context.Context, companyID string) (*domain.Role, *domain.Role, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	owner, err := scanOne(tx.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE company_id = $1 AND kind = 'owner'`, companyID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, err
	}
	admin, err := scanOne(tx.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE company_id = $1 AND kind = 'admin'`, companyID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, err
	}
	if owner != nil && admin != nil {
		return owner, admin, tx.Commit()
	}

	now := time.Now().UTC()
	if owner == nil {
		owner = &domain.Role{
			ID:          uuid.New().String(),
			CompanyID:   companyID,
			Name:        "Owner",
			Color:       "#e5a50a",
			Priority:    domain.OwnerPriority,
			Permissions: permission.FullCatalog(),
			Kind:        domain.KindOwner,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := insertRole(ctx, tx, owner); err != nil {
			return nil, nil, err
		}
	}
	if admin == nil {
		admin = &domain.Role{
			ID:          uuid.New().String(),
			CompanyID:   companyID,
			Name:        "Admin",
			Color:       "#3584e4",
			Priority:    domain.AdminPriority,
			Permissions: permission.AdminBaseline(),
			Kind:        domain.KindAdmin,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := insertRole(ctx, tx, admin); err != nil {
			return nil, nil, err
		}
	}
	return owner, admin, tx.Commit()
}

func insertRole(ctx context.Context, tx *sql.Tx, role *domain.Role) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO roles (`+roleColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		role.ID, role.CompanyID, role.Name, role.Color, int(role.Priority),
		encodePermissions(role.Permissions), string(role.Kind), role.IsDefault,
		role.CreatedAt, role.UpdatedAt)
	return err
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Role, error) {
	role, err := scanOne(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}

func (r *PostgresRepository) getMany(ctx context.Context, query string, args ...any) ([]*domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Role
	for rows.Next() {
		role, err := scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(row rowScanner) (*domain.Role, error) {
	var role domain.Role
	var priority int
	var perms, kind string
	err := row.Scan(&role.ID, &role.CompanyID, &role.Name, &role.Color, &priority,
		&perms, &kind, &role.IsDefault, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	role.Priority = domain.Priority(priority)
	role.Permissions = decodePermissions(perms)
	role.Kind = domain.Kind(kind)
	return &role, nil
}

// Permissions persist as a comma-joined sorted tag list in a text column.
func encodePermissions(set permission.Set) string {
	tags := set.Slice()
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

func decodePermissions(s string) permission.Set {
	if s == "" {
		return permission.NewSet()
	}
	parts := strings.Split(s, ",")
	set := make(permission.Set, len(parts))
	for _, p := range parts {
		if p != "" {
			set[permission.Permission(p)] = struct{}{}
		}
	}
	return set
}
