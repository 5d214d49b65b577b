// Package domain defines the Role entity and the priority-based rank order
// that drives every hierarchy decision in the engine.
package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/Sorchess/picaton-rbac/internal/permission"
)

// Priority is a role's integer rank. Lower value means higher authority.
// Every comparison goes through Dominates/AtOrAbove so the direction of the
// convention cannot be inverted at a call site.
type Priority int

const (
	// OwnerPriority is the reserved rank of the Owner system role. Exactly
	// one role per company holds it.
	OwnerPriority Priority = 0
	// AdminPriority is the reserved rank of the Admin system role. Custom
	// roles must rank strictly below it (numerically greater).
	AdminPriority Priority = 1
)

// Dominates reports whether p strictly outranks other. A priority never
// dominates itself; equal priorities dominate neither way.
func (p Priority) Dominates(other Priority) bool {
	return p < other
}

// AtOrAbove reports whether p ranks at least as high as other. Used for the
// assignment rule: an assigner may hand out roles at or below their own rank.
func (p Priority) AtOrAbove(other Priority) bool {
	return p <= other
}

// Kind tags a role as one of the two system roles or a custom role. The
// variant, not a boolean flag, is what the mutation guards dispatch on.
type Kind string

const (
	KindOwner  Kind = "owner"
	KindAdmin  Kind = "admin"
	KindCustom Kind = "custom"
)

// Role is a named, colored, ranked bundle of permissions scoped to one company.
type Role struct {
	ID          string
	CompanyID   string
	Name        string
	Color       string
	Priority    Priority
	Permissions permission.Set
	Kind        Kind
	// IsDefault marks the company's designated replacement role, used by
	// delete-with-reassignment when no explicit replacement is supplied.
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsSystem reports whether the role is one of the two auto-created system
// roles (Owner or Admin).
func (r *Role) IsSystem() bool {
	return r.Kind == KindOwner || r.Kind == KindAdmin
}

// IsOwner reports whether the role is the company's Owner role.
func (r *Role) IsOwner() bool {
	return r.Kind == KindOwner
}

// Dominates reports whether r strictly outranks other. A role never dominates
// itself, even when compared by id rather than pointer.
func (r *Role) Dominates(other *Role) bool {
	if other == nil {
		return false
	}
	return r.Priority.Dominates(other.Priority)
}

// Baseline returns the fixed permission baseline of a system role: the full
// catalog for Owner, the admin bundle for Admin. Custom roles have no
// baseline and get nil.
func (r *Role) Baseline() permission.Set {
	switch r.Kind {
	case KindOwner:
		return permission.FullCatalog()
	case KindAdmin:
		return permission.AdminBaseline()
	default:
		return nil
	}
}

const MaxNameLength = 50

var (
	ErrInvalidName  = errors.New("role name must be 1-50 characters without surrounding whitespace")
	ErrInvalidColor = errors.New("role color must be a hex value like #RRGGBB")
)

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateName checks a role name for persistence: non-empty, at most
// MaxNameLength characters, no leading or trailing whitespace.
func ValidateName(name string) error {
	if name == "" || len(name) > MaxNameLength {
		return ErrInvalidName
	}
	if strings.TrimSpace(name) != name {
		return ErrInvalidName
	}
	return nil
}

// ValidateColor checks a display color. Colors are cosmetic only and carry no
// authorization meaning.
func ValidateColor(color string) error {
	if !colorPattern.MatchString(color) {
		return ErrInvalidColor
	}
	return nil
}

// Validate checks the role for persistence. Returns the first validation
// failure.
func (r *Role) Validate() error {
	if err := ValidateName(r.Name); err != nil {
		return err
	}
	if err := ValidateColor(r.Color); err != nil {
		return err
	}
	switch r.Kind {
	case KindOwner:
		if r.Priority != OwnerPriority {
			return errors.New("owner role must have the reserved owner priority")
		}
	case KindAdmin:
		if r.Priority != AdminPriority {
			return errors.New("admin role must have the reserved admin priority")
		}
	case KindCustom:
		if r.Priority <= AdminPriority {
			return errors.New("custom role priority must rank below the admin role")
		}
	default:
		return errors.New("unknown role kind")
	}
	return nil
}
