// Package domain defines the Member entity: the per-company binding of a
// user to exactly one role.
package domain

import "time"

// Member links a user to a company. RoleID references a role of the same
// company; it is empty only for records migrated from the legacy scheme, in
// which case the member holds no permissions.
type Member struct {
	ID        string
	CompanyID string
	UserID    string
	RoleID    string
	// Position, Department and SelectedCardID are informational and carry no
	// authorization meaning.
	Position       string
	Department     string
	SelectedCardID string
	JoinedAt       time.Time
	UpdatedAt      time.Time
}

// HasRole reports whether the member currently references a role.
func (m *Member) HasRole() bool {
	return m.RoleID != ""
}
