package permission

import "sort"

// Set is an unordered set of permissions.
type Set map[Permission]struct{}

// NewSet returns a Set containing the given permissions.
func NewSet(perms ...Permission) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether p is in the set.
func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// HasAll reports whether every permission in perms is in the set.
// Vacuously true for an empty perms.
func (s Set) HasAll(perms ...Permission) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one permission in perms is in the set.
func (s Set) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// Missing returns the permissions in perms that are not in the set, sorted.
func (s Set) Missing(perms ...Permission) []Permission {
	var out []Permission
	for _, p := range perms {
		if !s.Has(p) {
			out = append(out, p)
		}
	}
	sortPermissions(out)
	return out
}

// Contains reports whether other is a subset of s.
func (s Set) Contains(other Set) bool {
	for p := range other {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// Diff returns the permissions in other that are not in s, sorted.
func (s Set) Diff(other Set) []Permission {
	var out []Permission
	for p := range other {
		if !s.Has(p) {
			out = append(out, p)
		}
	}
	sortPermissions(out)
	return out
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// Slice returns the set's permissions as a sorted slice. Used for persistence
// and for stable error messages.
func (s Set) Slice() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sortPermissions(out)
	return out
}

func sortPermissions(perms []Permission) {
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
}
