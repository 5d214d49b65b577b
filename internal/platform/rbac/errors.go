package rbac

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sorchess/picaton-rbac/internal/permission"
)

// ErrNotAMember is returned when no membership resolves for the user in the
// company.
var ErrNotAMember = errors.New("not a member of this company")

// PermissionDeniedError is returned when a membership resolves but the
// required permissions are absent. Missing names the permissions the caller
// lacks so handlers can render an actionable message.
type PermissionDeniedError struct {
	Missing []permission.Permission
}

func (e *PermissionDeniedError) Error() string {
	if len(e.Missing) == 0 {
		return "permission denied"
	}
	parts := make([]string, len(e.Missing))
	for i, p := range e.Missing {
		parts[i] = string(p)
	}
	return fmt.Sprintf("permission denied: missing %s", strings.Join(parts, ", "))
}

// Denied returns a PermissionDeniedError naming the given permissions.
func Denied(missing ...permission.Permission) *PermissionDeniedError {
	return &PermissionDeniedError{Missing: missing}
}

// IsPermissionDenied reports whether err is a PermissionDeniedError.
func IsPermissionDenied(err error) bool {
	var pd *PermissionDeniedError
	return errors.As(err, &pd)
}
