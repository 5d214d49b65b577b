// Package service implements the company role service: role lifecycle,
// hierarchy enforcement, and role assignment. Low-level yes/no decisions are
// delegated to the permission checker.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Sorchess/picaton-rbac/internal/audit"
	memberdomain "github.com/Sorchess/picaton-rbac/internal/member/domain"
	"github.com/Sorchess/picaton-rbac/internal/permission"
	"github.com/Sorchess/picaton-rbac/internal/platform/rbac"
	"github.com/Sorchess/picaton-rbac/internal/role/domain"
)

// DefaultMaxCustomRoles bounds how many custom roles a company may define
// when no limit is configured.
const DefaultMaxCustomRoles = 15

// defaultRoleColor is used when a role is created without a color.
const defaultRoleColor = "#99aab5"

// RoleRepo is the role repository surface needed by the service.
type RoleRepo interface {
	Create(ctx context.Context, r *domain.Role) error
	GetByID(ctx context.Context, companyID, id string) (*domain.Role, error)
	GetByCompany(ctx context.Context, companyID string) ([]*domain.Role, error)
	GetByCompanyAndName(ctx context.Context, companyID, name string) (*domain.Role, error)
	GetCustomRoles(ctx context.Context, companyID string) ([]*domain.Role, error)
	GetDefaultRole(ctx context.Context, companyID string) (*domain.Role, error)
	GetNextPriority(ctx context.Context, companyID string) (domain.Priority, error)
	Update(ctx context.Context, r *domain.Role) error
	Delete(ctx context.Context, companyID, id string) error
	ReorderRoles(ctx context.Context, companyID string, priorities map[string]domain.Priority) error
	CreateSystemRoles(ctx context.Context, companyID string) (owner, admin *domain.Role, err error)
}

// MemberRepo is the member repository surface needed by the service.
type MemberRepo interface {
	GetByCompanyAndUser(ctx context.Context, companyID, userID string) (*memberdomain.Member, error)
	Update(ctx context.Context, m *memberdomain.Member) error
	CountByRole(ctx context.Context, companyID, roleID string) (int64, error)
	ReassignRole(ctx context.Context, companyID, fromRoleID, toRoleID string) (int64, error)
}

// Service orchestrates role lifecycle for a company.
type Service struct {
	roles          RoleRepo
	members        MemberRepo
	checker        *rbac.Checker
	audit          audit.Recorder
	maxCustomRoles int
}

// NewService returns a Service with the given dependencies. recorder may be
// nil; mutations are then not audited. maxCustomRoles <= 0 selects
// DefaultMaxCustomRoles.
func NewService(roles RoleRepo, members MemberRepo, checker *rbac.Checker, recorder audit.Recorder, maxCustomRoles int) *Service {
	if maxCustomRoles <= 0 {
		maxCustomRoles = DefaultMaxCustomRoles
	}
	return &Service{
		roles:          roles,
		members:        members,
		checker:        checker,
		audit:          recorder,
		maxCustomRoles: maxCustomRoles,
	}
}

// InitializeCompanyRoles creates the Owner and Admin system roles for a newly
// created company. Idempotent: when the company already has its system roles
// the existing pair is returned unchanged.
func (s *Service) InitializeCompanyRoles(ctx context.Context, companyID string) (owner, admin *domain.Role, err error) {
	return s.roles.CreateSystemRoles(ctx, companyID)
}

// ListRoles returns the company's roles ordered by ascending priority
// (highest authority first). Requires VIEW_ROLES.
func (s *Service) ListRoles(ctx context.Context, companyID, actorUserID string) ([]*domain.Role, error) {
	if _, err := s.checker.RequirePermission(ctx, companyID, actorUserID, permission.ViewRoles); err != nil {
		return nil, err
	}
	return s.roles.GetByCompany(ctx, companyID)
}

// GetRole returns one role of the company. Requires VIEW_ROLES. Ids that do
// not belong to the company report not-found.
func (s *Service) GetRole(ctx context.Context, companyID, actorUserID, roleID string) (*domain.Role, error) {
	if _, err := s.checker.RequirePermission(ctx, companyID, actorUserID, permission.ViewRoles); err != nil {
		return nil, err
	}
	role, err := s.roles.GetByID(ctx, companyID, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

// CreateRoleInput describes a new custom role. A nil Priority selects the
// next rank below every existing role; nil Permissions selects the member
// default bundle.
type CreateRoleInput struct {
	Name        string
	Color       string
	Priority    *domain.Priority
	Permissions []permission.Permission
	// Default marks the new role as the company's designated replacement
	// role for deletions.
	Default bool
}

// CreateRole creates a custom role. Requires MANAGE_ROLES. A non-owner
// creator cannot include permissions absent from their own role.
func (s *Service) CreateRole(ctx context.Context, companyID, actorUserID string, in CreateRoleInput) (*domain.Role, error) {
	actorRole, err := s.checker.RequirePermission(ctx, companyID, actorUserID, permission.ManageRoles)
	if err != nil {
		return nil, err
	}

	custom, err := s.roles.GetCustomRoles(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(custom) >= s.maxCustomRoles {
		return nil, ErrRoleLimitExceeded
	}

	existing, err := s.roles.GetByCompanyAndName(ctx, companyID, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRoleAlreadyExists
	}

	if err := domain.ValidateName(in.Name); err != nil {
		return nil, err
	}
	color := in.Color
	if color == "" {
		color = defaultRoleColor
	}
	if err := domain.ValidateColor(color); err != nil {
		return nil, err
	}

	var priority domain.Priority
	if in.Priority != nil {
		priority = *in.Priority
		// Custom roles must rank strictly below the admin role.
		if !domain.AdminPriority.Dominates(priority) {
			return nil, ErrHierarchyViolation
		}
	} else {
		priority, err = s.roles.GetNextPriority(ctx, companyID)
		if err != nil {
			return nil, err
		}
	}

	perms, err := resolvePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}
	if err := s.enforceDelegationLimit(actorRole, perms); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	role := &domain.Role{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Name:        in.Name,
		Color:       color,
		Priority:    priority,
		Permissions: perms,
		Kind:        domain.KindCustom,
		IsDefault:   in.Default,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := role.Validate(); err != nil {
		return nil, err
	}
	if in.Default {
		if err := s.clearDefaultRole(ctx, companyID, ""); err != nil {
			return nil, err
		}
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	s.logMutation(ctx, companyID, actorUserID, "role_created", fmt.Sprintf("role=%s priority=%d", role.Name, role.Priority))
	return role, nil
}

// UpdateRoleInput describes a role change. Nil fields are left unchanged;
// non-nil Permissions replaces the whole set.
type UpdateRoleInput struct {
	Name        *string
	Color       *string
	Permissions []permission.Permission
	Default     *bool
}

// UpdateRole changes a role's name, color, permission set, or default flag.
// Requires MANAGE_ROLES and that the actor's role strictly dominates the
// target. System roles accept color changes only, plus permission additions
// that keep their fixed baseline intact.
func (s *Service) UpdateRole(ctx context.Context, companyID, actorUserID, roleID string, in UpdateRoleInput) (*domain.Role, error) {
	actorRole, err := s.checker.RequirePermission(ctx, companyID, actorUserID, permission.ManageRoles)
	if err != nil {
		return nil, err
	}
	target, err := s.roles.GetByID(ctx, companyID, roleID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrRoleNotFound
	}
	if !actorRole.Dominates(target) {
		return nil, ErrHierarchyViolation
	}

	if target.IsSystem() {
		if in.Name != nil && *in.Name != target.Name {
			return nil, ErrSystemRoleProtected
		}
	}

	if in.Name != nil && *in.Name != target.Name {
		if err := domain.ValidateName(*in.Name); err != nil {
			return nil, err
		}
		existing, err := s.roles.GetByCompanyAndName(ctx, companyID, *in.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != target.ID {
			return nil, ErrRoleAlreadyExists
		}
		target.Name = *in.Name
	}

	if in.Color != nil {
		if err := domain.ValidateColor(*in.Color); err != nil {
			return nil, err
		}
		target.Color = *in.Color
	}

	if in.Permissions != nil {
		perms, err := resolvePermissions(in.Permissions)
		if err != nil {
			return nil, err
		}
		if baseline := target.Baseline(); baseline != nil && !perms.Contains(baseline) {
			return nil, ErrSystemRoleProtected
		}
		if err := s.enforceDelegationLimit(actorRole, perms); err != nil {
			return nil, err
		}
		target.Permissions = perms
	}

	if in.Default != nil && *in.Default != target.IsDefault {
		if *in.Default {
			if err := s.clearDefaultRole(ctx, companyID, target.ID); err != nil {
				return nil, err
			}
		}
		target.IsDefault = *in.Default
	}

	target.UpdatedAt = time.Now().UTC()
	if err := s.roles.Update(ctx, target); err != nil {
		return nil, err
	}
	s.logMutation(ctx, companyID, actorUserID, "role_updated", "role="+target.Name)
	return target, nil
}

// DeleteRole removes a custom role, reassigning its members first. Requires
// MANAGE_ROLES and dominance over the target. When members still hold the
// role, replacementRoleID (or the company default role) receives them; with
// neither available the deletion fails and no member changes.
//
// The operation is a two-phase sequence: every member is moved off the role
// before the role row is removed, so no member ever references a missing
// role, even when interrupted between phases. Re-running after a crash finds
// zero members on the role and proceeds to deletion, or finds the role gone
// and reports not-found.
func (s *Service) DeleteRole(ctx context.Context, companyID, actorUserID, roleID, replacementRoleID string) error {
	actorRole, err := s.checker.RequirePermission(ctx, companyID, actorUserID, permission.ManageRoles)
	if err != nil {
		return err
	}
	target, err := s.roles.GetByID(ctx, companyID, roleID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrRoleNotFound
	}
	if target.IsSystem() {
		return ErrSystemRoleProtected
	}
	if !actorRole.Dominates(target) {
		return ErrHierarchyViolation
	}

	held, err := s.members.CountByRole(ctx, companyID, target.ID)
	if err != nil {
		return err
	}
	reassigned := int64(0)
	if held > 0 {
		replacement, err := s.resolveReplacement(ctx, companyID, target, replacementRoleID)
		if err != nil {
			return err
		}
		if replacement == nil {
			return &RoleInUseError{Members: held}
		}
		reassigned, err = s.members.ReassignRole(ctx, companyID, target.ID, replacement.ID)
		if err != nil {
			return err
		}
	}

	if err := s.roles.Delete(ctx, companyID, target.ID); err != nil {
		return err
	}
	s.logMutation(ctx, companyID, actorUserID, "role_deleted",
		fmt.Sprintf("role=%s reassigned=%d", target.Name, reassigned))
	return nil
}

// resolveReplacement picks the role that receives the deleted role's members:
// the explicit replacement when given, else the company default role. Returns
// nil when no usable replacement exists. An explicit id that resolves to no
// role is a not-found failure.
func (s *Service) resolveReplacement(ctx context.Context, companyID string, target *domain.Role, replacementRoleID string) (*domain.Role, error) {
	if replacementRoleID != "" {
		replacement, err := s.roles.GetByID(ctx, companyID, replacementRoleID)
		if err != nil {
			return nil, err
		}
		if replacement == nil {
			return nil, ErrRoleNotFound
		}
		if replacement.ID == target.ID {
			return nil, nil
		}
		return replacement, nil
	}
	fallback, err := s.roles.GetDefaultRole(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if fallback == nil || fallback.ID == target.ID {
		return nil, nil
	}
	return fallback, nil
}

// ReorderRoles applies a bulk priority reassignment. Requires MANAGE_ROLES;
// every submitted priority must rank below the admin role, the actor must
// dominate every role being moved, and system roles are outside the input
// domain. Validation completes before any write, so the batch applies
// entirely or not at all.
func (s *Service) ReorderRoles(ctx context.Context, companyID, actorUserID string, priorities map[string]domain.Priority) error {
	actorRole, err := s.checker.RequirePermission(ctx, companyID, actorUserID, permission.ManageRoles)
	if err != nil {
		return err
	}
	if len(priorities) == 0 {
		return nil
	}

	all, err := s.roles.GetByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	byID := make(map[string]*domain.Role, len(all))
	for _, r := range all {
		byID[r.ID] = r
	}

	for id, p := range priorities {
		role, ok := byID[id]
		if !ok {
			return ErrRoleNotFound
		}
		if role.IsSystem() {
			return ErrSystemRoleProtected
		}
		if !domain.AdminPriority.Dominates(p) {
			return ErrHierarchyViolation
		}
		if !actorRole.Dominates(role) {
			return ErrHierarchyViolation
		}
	}

	if err := s.roles.ReorderRoles(ctx, companyID, priorities); err != nil {
		return err
	}
	s.logMutation(ctx, companyID, actorUserID, "roles_reordered", fmt.Sprintf("count=%d", len(priorities)))
	return nil
}

// AssignRole sets a member's role. Requires ASSIGN_ROLES and that the actor
// ranks at or above the role being handed out. When the target member already
// holds a role, the actor must additionally dominate that current role,
// unless the actor is the Owner or is assigning to themselves.
func (s *Service) AssignRole(ctx context.Context, companyID, actorUserID, targetUserID, roleID string) (*memberdomain.Member, error) {
	actorRole, err := s.checker.RequirePermission(ctx, companyID, actorUserID, permission.AssignRoles)
	if err != nil {
		return nil, err
	}
	role, err := s.roles.GetByID(ctx, companyID, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	if !actorRole.Priority.AtOrAbove(role.Priority) {
		return nil, ErrHierarchyViolation
	}

	target, err := s.members.GetByCompanyAndUser(ctx, companyID, targetUserID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, rbac.ErrNotAMember
	}

	if target.HasRole() && targetUserID != actorUserID && !actorRole.IsOwner() {
		current, err := s.roles.GetByID(ctx, companyID, target.RoleID)
		if err != nil {
			return nil, err
		}
		if current != nil && !actorRole.Dominates(current) {
			return nil, ErrHierarchyViolation
		}
	}

	target.RoleID = role.ID
	target.UpdatedAt = time.Now().UTC()
	if err := s.members.Update(ctx, target); err != nil {
		return nil, err
	}
	s.logMutation(ctx, companyID, actorUserID, "role_assigned",
		fmt.Sprintf("user=%s role=%s", targetUserID, role.Name))
	return target, nil
}

// enforceDelegationLimit rejects permission sets that exceed the actor's own.
// The Owner's set is the full catalog, so owners are never limited.
func (s *Service) enforceDelegationLimit(actorRole *domain.Role, perms permission.Set) error {
	if actorRole.IsOwner() {
		return nil
	}
	if missing := actorRole.Permissions.Diff(perms); len(missing) > 0 {
		return rbac.Denied(missing...)
	}
	return nil
}

// clearDefaultRole unsets the company's current default role, if any, so a
// new one can take its place. keepID skips the role about to become default.
func (s *Service) clearDefaultRole(ctx context.Context, companyID, keepID string) error {
	current, err := s.roles.GetDefaultRole(ctx, companyID)
	if err != nil {
		return err
	}
	if current == nil || current.ID == keepID {
		return nil
	}
	current.IsDefault = false
	current.UpdatedAt = time.Now().UTC()
	return s.roles.Update(ctx, current)
}

func (s *Service) logMutation(ctx context.Context, companyID, userID, action, metadata string) {
	if s.audit == nil {
		return
	}
	s.audit.LogEvent(ctx, companyID, userID, action, "roles", metadata)
}

// resolvePermissions turns the supplied tags into a set, rejecting tags
// outside the catalog. Nil selects the member default bundle; an explicit
// empty slice yields an empty set.
func resolvePermissions(perms []permission.Permission) (permission.Set, error) {
	if perms == nil {
		return permission.MemberDefaults(), nil
	}
	set := permission.NewSet()
	for _, p := range perms {
		if !permission.IsValid(p) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, p)
		}
		set[p] = struct{}{}
	}
	return set, nil
}
