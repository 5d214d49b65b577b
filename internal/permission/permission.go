// Package permission defines the closed catalog of capability tags and the
// named default bundles used when roles are created.
package permission

// Permission is an opaque, stable capability tag. The catalog is fixed at
// compile time; the engine never invents permissions at runtime.
type Permission string

const (
	ManageCompany  Permission = "MANAGE_COMPANY"
	ManageBilling  Permission = "MANAGE_BILLING"
	ManageRoles    Permission = "MANAGE_ROLES"
	AssignRoles    Permission = "ASSIGN_ROLES"
	ViewRoles      Permission = "VIEW_ROLES"
	InviteMembers  Permission = "INVITE_MEMBERS"
	RemoveMembers  Permission = "REMOVE_MEMBERS"
	ViewMembers    Permission = "VIEW_MEMBERS"
	ManageCards    Permission = "MANAGE_CARDS"
	ViewCards      Permission = "VIEW_CARDS"
	ManageIdeas    Permission = "MANAGE_IDEAS"
	ViewIdeas      Permission = "VIEW_IDEAS"
	SendMessages   Permission = "SEND_MESSAGES"
	ViewAnalytics  Permission = "VIEW_ANALYTICS"
)

// catalog lists every permission in declaration order.
var catalog = []Permission{
	ManageCompany,
	ManageBilling,
	ManageRoles,
	AssignRoles,
	ViewRoles,
	InviteMembers,
	RemoveMembers,
	ViewMembers,
	ManageCards,
	ViewCards,
	ManageIdeas,
	ViewIdeas,
	SendMessages,
	ViewAnalytics,
}

// Catalog returns every known permission in declaration order. The returned
// slice is a copy; callers may mutate it.
func Catalog() []Permission {
	out := make([]Permission, len(catalog))
	copy(out, catalog)
	return out
}

// IsValid reports whether p is part of the catalog.
func IsValid(p Permission) bool {
	for _, c := range catalog {
		if c == p {
			return true
		}
	}
	return false
}

// FullCatalog returns the Owner baseline: every permission in the catalog.
func FullCatalog() Set {
	return NewSet(catalog...)
}

// AdminBaseline returns the Admin system role baseline: everything except
// company administration and billing.
func AdminBaseline() Set {
	s := NewSet(catalog...)
	delete(s, ManageCompany)
	delete(s, ManageBilling)
	return s
}

// MemberDefaults returns the initial permission set for newly created custom
// roles: read access plus day-to-day collaboration.
func MemberDefaults() Set {
	return NewSet(ViewRoles, ViewMembers, ViewCards, ViewIdeas, SendMessages)
}
