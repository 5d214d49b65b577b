package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the role service; handlers map them to transport codes.
var (
	ErrRoleNotFound        = errors.New("role not found")
	ErrRoleAlreadyExists   = errors.New("a role with this name already exists")
	ErrRoleLimitExceeded   = errors.New("custom role limit reached for this company")
	ErrHierarchyViolation  = errors.New("role does not rank below the acting member")
	ErrSystemRoleProtected = errors.New("system roles cannot be renamed, narrowed, or deleted")
	ErrUnknownPermission   = errors.New("unknown permission")
)

// RoleInUseError is returned when a role cannot be deleted because members
// still hold it and no replacement role is available.
type RoleInUseError struct {
	// Members is the number of members still referencing the role.
	Members int64
}

func (e *RoleInUseError) Error() string {
	return fmt.Sprintf("role is held by %d member(s) and no replacement role is available", e.Members)
}

// IsRoleInUse reports whether err is a RoleInUseError.
func IsRoleInUse(err error) bool {
	var riu *RoleInUseError
	return errors.As(err, &riu)
}
