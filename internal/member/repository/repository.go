package repository

import (
	"context"

	"github.com/Sorchess/picaton-rbac/internal/member/domain"
)

// Repository defines persistence for company members.
type Repository interface {
	Create(ctx context.Context, m *domain.Member) error
	GetByCompanyAndUser(ctx context.Context, companyID, userID string) (*domain.Member, error)
	GetByCompany(ctx context.Context, companyID string) ([]*domain.Member, error)
	Update(ctx context.Context, m *domain.Member) error
	CountByRole(ctx context.Context, companyID, roleID string) (int64, error)
	// ReassignRole moves every member on fromRoleID to toRoleID in one write
	// and returns the number of members moved. Re-running after a partial
	// failure is safe: already-moved members are not matched again.
	ReassignRole(ctx context.Context, companyID, fromRoleID, toRoleID string) (int64, error)
}
