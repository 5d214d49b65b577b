// Package rbac resolves "what can this user do" queries for a company. The
// checker mutates no state; its only observable side effect is an audit
// record for each denial.
package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sorchess/picaton-rbac/internal/audit"
	memberdomain "github.com/Sorchess/picaton-rbac/internal/member/domain"
	"github.com/Sorchess/picaton-rbac/internal/permission"
	roledomain "github.com/Sorchess/picaton-rbac/internal/role/domain"
)

// MemberGetter resolves a user's membership in a company.
type MemberGetter interface {
	GetByCompanyAndUser(ctx context.Context, companyID, userID string) (*memberdomain.Member, error)
}

// RoleGetter resolves a role within a company. Ids from other companies must
// behave as missing.
type RoleGetter interface {
	GetByID(ctx context.Context, companyID, id string) (*roledomain.Role, error)
}

// Checker is the stateless permission decision engine.
type Checker struct {
	members MemberGetter
	roles   RoleGetter
	audit   audit.Recorder
}

// NewChecker returns a Checker backed by the given repositories. recorder may
// be nil; denials are then not audited.
func NewChecker(members MemberGetter, roles RoleGetter, recorder audit.Recorder) *Checker {
	return &Checker{members: members, roles: roles, audit: recorder}
}

// UserRole resolves the user's role in the company. Returns nil when the user
// is not a member or the membership has no role.
func (c *Checker) UserRole(ctx context.Context, companyID, userID string) (*roledomain.Role, error) {
	_, role, err := c.resolve(ctx, companyID, userID)
	return role, err
}

// HasPermission reports whether the user's role grants p. False when no role
// resolves.
func (c *Checker) HasPermission(ctx context.Context, companyID, userID string, p permission.Permission) (bool, error) {
	role, err := c.UserRole(ctx, companyID, userID)
	if err != nil {
		return false, err
	}
	return role != nil && role.Permissions.Has(p), nil
}

// HasAnyPermission reports whether the user's role grants at least one of
// perms.
func (c *Checker) HasAnyPermission(ctx context.Context, companyID, userID string, perms ...permission.Permission) (bool, error) {
	role, err := c.UserRole(ctx, companyID, userID)
	if err != nil {
		return false, err
	}
	return role != nil && role.Permissions.HasAny(perms...), nil
}

// HasAllPermissions reports whether the user's role grants every permission
// in perms.
func (c *Checker) HasAllPermissions(ctx context.Context, companyID, userID string, perms ...permission.Permission) (bool, error) {
	role, err := c.UserRole(ctx, companyID, userID)
	if err != nil {
		return false, err
	}
	return role != nil && role.Permissions.HasAll(perms...), nil
}

// RequirePermission returns the user's role when it grants p. Fails with
// ErrNotAMember when no membership exists, or PermissionDeniedError (naming
// p) when the membership lacks the permission. Denials are audited.
func (c *Checker) RequirePermission(ctx context.Context, companyID, userID string, p permission.Permission) (*roledomain.Role, error) {
	member, role, err := c.resolve(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotAMember
	}
	if role == nil || !role.Permissions.Has(p) {
		c.logDenial(ctx, companyID, userID, role, p)
		return nil, Denied(p)
	}
	return role, nil
}

// RequireAnyPermission returns the user's role when it grants at least one of
// perms. Failure semantics match RequirePermission; the denial names every
// permission that would have satisfied the check.
func (c *Checker) RequireAnyPermission(ctx context.Context, companyID, userID string, perms ...permission.Permission) (*roledomain.Role, error) {
	member, role, err := c.resolve(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotAMember
	}
	if role == nil || !role.Permissions.HasAny(perms...) {
		c.logDenial(ctx, companyID, userID, role, perms...)
		return nil, Denied(perms...)
	}
	return role, nil
}

// RequireMembership fails with ErrNotAMember when the user is not a member;
// otherwise returns the member's role regardless of permissions. The role is
// nil for legacy roleless memberships.
func (c *Checker) RequireMembership(ctx context.Context, companyID, userID string) (*roledomain.Role, error) {
	member, role, err := c.resolve(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotAMember
	}
	return role, nil
}

// IsOwner reports whether the user holds the company's Owner role.
func (c *Checker) IsOwner(ctx context.Context, companyID, userID string) (bool, error) {
	role, err := c.UserRole(ctx, companyID, userID)
	if err != nil {
		return false, err
	}
	return role != nil && role.IsOwner(), nil
}

// IsAdminOrHigher reports whether the user's role ranks at or above the
// reserved admin priority.
func (c *Checker) IsAdminOrHigher(ctx context.Context, companyID, userID string) (bool, error) {
	role, err := c.UserRole(ctx, companyID, userID)
	if err != nil {
		return false, err
	}
	return role != nil && role.Priority.AtOrAbove(roledomain.AdminPriority), nil
}

// CanManageRole reports whether the manager holds MANAGE_ROLES and strictly
// dominates the target role. A role never dominates itself, so a manager can
// never manage a role at or above their own rank.
func (c *Checker) CanManageRole(ctx context.Context, companyID, managerUserID, targetRoleID string) (bool, error) {
	managerRole, err := c.UserRole(ctx, companyID, managerUserID)
	if err != nil {
		return false, err
	}
	if managerRole == nil || !managerRole.Permissions.Has(permission.ManageRoles) {
		return false, nil
	}
	target, err := c.roles.GetByID(ctx, companyID, targetRoleID)
	if err != nil {
		return false, err
	}
	return target != nil && managerRole.Dominates(target), nil
}

// CanAssignRole reports whether the assigner holds ASSIGN_ROLES and ranks at
// or above the role being handed out. An assigner may never grant a role
// ranked above their own.
func (c *Checker) CanAssignRole(ctx context.Context, companyID, assignerUserID, roleID string) (bool, error) {
	assignerRole, err := c.UserRole(ctx, companyID, assignerUserID)
	if err != nil {
		return false, err
	}
	if assignerRole == nil || !assignerRole.Permissions.Has(permission.AssignRoles) {
		return false, nil
	}
	role, err := c.roles.GetByID(ctx, companyID, roleID)
	if err != nil {
		return false, err
	}
	return role != nil && assignerRole.Priority.AtOrAbove(role.Priority), nil
}

// CanManageMember reports whether the manager's role strictly dominates the
// target member's role. Always false for self.
func (c *Checker) CanManageMember(ctx context.Context, companyID, managerUserID, targetUserID string) (bool, error) {
	if managerUserID == targetUserID {
		return false, nil
	}
	managerRole, err := c.UserRole(ctx, companyID, managerUserID)
	if err != nil {
		return false, err
	}
	if managerRole == nil {
		return false, nil
	}
	targetRole, err := c.UserRole(ctx, companyID, targetUserID)
	if err != nil {
		return false, err
	}
	return targetRole != nil && managerRole.Dominates(targetRole), nil
}

// resolve returns the user's membership and role. member is nil when the user
// is not a member; role is nil when additionally the membership has no role.
func (c *Checker) resolve(ctx context.Context, companyID, userID string) (*memberdomain.Member, *roledomain.Role, error) {
	member, err := c.members.GetByCompanyAndUser(ctx, companyID, userID)
	if err != nil {
		return nil, nil, err
	}
	if member == nil || !member.HasRole() {
		return member, nil, nil
	}
	role, err := c.roles.GetByID(ctx, companyID, member.RoleID)
	if err != nil {
		return nil, nil, err
	}
	return member, role, nil
}

func (c *Checker) logDenial(ctx context.Context, companyID, userID string, role *roledomain.Role, missing ...permission.Permission) {
	if c.audit == nil {
		return
	}
	roleName := "none"
	if role != nil {
		roleName = role.Name
	}
	parts := make([]string, len(missing))
	for i, p := range missing {
		parts[i] = string(p)
	}
	meta := fmt.Sprintf("role=%s missing=%s", roleName, strings.Join(parts, ","))
	c.audit.LogEvent(ctx, companyID, userID, "permission_denied", "roles", meta)
}
