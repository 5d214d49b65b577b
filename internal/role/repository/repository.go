package repository

import (
	"context"

	"github.com/Sorchess/picaton-rbac/internal/role/domain"
)

// Repository defines persistence for company roles. Every lookup is scoped to
// a company; a role id belonging to a different company behaves as missing,
// so tenants can never observe each other's roles.
type Repository interface {
	Create(ctx context.Context, r *domain.Role) error
	GetByID(ctx context.Context, companyID, id string) (*domain.Role, error)
	// GetByCompany returns the company's roles ordered by ascending priority
	// (highest authority first).
	GetByCompany(ctx context.Context, companyID string) ([]*domain.Role, error)
	GetByCompanyAndName(ctx context.Context, companyID, name string) (*domain.Role, error)
	GetCustomRoles(ctx context.Context, companyID string) ([]*domain.Role, error)
	GetOwnerRole(ctx context.Context, companyID string) (*domain.Role, error)
	// GetDefaultRole returns the role flagged as the company default, or nil
	// when none is designated.
	GetDefaultRole(ctx context.Context, companyID string) (*domain.Role, error)
	// GetNextPriority returns a priority strictly below every existing role
	// of the company (numerically greater), never at or above AdminPriority.
	GetNextPriority(ctx context.Context, companyID string) (domain.Priority, error)
	Update(ctx context.Context, r *domain.Role) error
	Delete(ctx context.Context, companyID, id string) error
	// ReorderRoles applies the given priorities atomically: either every
	// entry is written or none is.
	ReorderRoles(ctx context.Context, companyID string, priorities map[string]domain.Priority) error
	// CreateSystemRoles creates the Owner and Admin roles for a new company.
	// Idempotent: when they already exist the existing pair is returned.
	CreateSystemRoles(ctx context.Context, companyID string) (owner, admin *domain.Role, err error)
}
