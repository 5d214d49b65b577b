package repository

import (
	"context"

	"github.com/Sorchess/picaton-rbac/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int32) ([]*domain.AuditLog, error)
}
