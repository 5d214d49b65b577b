package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Sorchess/picaton-rbac/internal/member/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a member repository that uses the given db
// for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const memberColumns = `id, company_id, user_id, role_id, position, department, selected_card_id, joined_at, updated_at`

// Create inserts a new membership row. An empty RoleID is stored as NULL.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Member) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO members (`+memberColumns+`)
		 VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7, $8, $9)`,
		m.ID, m.CompanyID, m.UserID, m.RoleID, m.Position, m.Department, m.SelectedCardID, m.JoinedAt, m.UpdatedAt)
	return err
}

// GetByCompanyAndUser returns the membership for the given company and user,
// or nil if the user is not a member. It returns an error only for database
// failures, not for missing rows.
func (r *PostgresRepository) GetByCompanyAndUser(ctx context.Context, companyID, userID string) (*domain.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE company_id = $1 AND user_id = $2`,
		companyID, userID)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// GetByCompany returns all members of the given company ordered by join time.
func (r *PostgresRepository) GetByCompany(ctx context.Context, companyID string) ([]*domain.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE company_id = $1 ORDER BY joined_at`,
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update updates the member record; only role and informational fields change.
func (r *PostgresRepository) Update(ctx context.Context, m *domain.Member) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE members
		 SET role_id = NULLIF($3, '')::uuid, position = $4, department = $5, selected_card_id = $6, updated_at = $7
		 WHERE company_id = $1 AND id = $2`,
		m.CompanyID, m.ID, m.RoleID, m.Position, m.Department, m.SelectedCardID, m.UpdatedAt)
	return err
}

// CountByRole returns how many members of the company currently hold roleID.
func (r *PostgresRepository) CountByRole(ctx context.Context, companyID, roleID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE company_id = $1 AND role_id = $2`,
		companyID, roleID).Scan(&n)
	return n, err
}

// ReassignRole moves every member on fromRoleID to toRoleID in a single
// UPDATE and returns the number of rows changed. A re-run after a partial
// failure matches only the members not yet moved, so it is idempotent.
func (r *PostgresRepository) ReassignRole(ctx context.Context, companyID, fromRoleID, toRoleID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE members SET role_id = $3, updated_at = $4
		 WHERE company_id = $1 AND role_id = $2`,
		companyID, fromRoleID, toRoleID, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*domain.Member, error) {
	var m domain.Member
	var roleID, position, department, selectedCard sql.NullString
	err := row.Scan(&m.ID, &m.CompanyID, &m.UserID, &roleID, &position, &department, &selectedCard, &m.JoinedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.RoleID = roleID.String
	m.Position = position.String
	m.Department = department.String
	m.SelectedCardID = selectedCard.String
	return &m, nil
}
