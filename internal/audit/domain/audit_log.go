package domain

import "time"

// AuditLog represents one authorization audit event: a permission denial or a
// role/member mutation performed through the engine.
type AuditLog struct {
	ID        string
	CompanyID string
	UserID    string
	Action    string
	Resource  string
	// Metadata carries action-specific detail, e.g. the missing permissions
	// of a denial or the replacement role of a delete.
	Metadata  string
	CreatedAt time.Time
}
