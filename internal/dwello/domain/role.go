package domain

import (
	"slices"
	"strings"
)

type Role string

const (
	RoleAnonymous     Role = "anonymous"
	RoleAuthenticated Role = "authenticated"
	RoleAdmin         Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAnonymous, RoleAuthenticated, RoleAdmin:
		return true
	}
	return false
}

// Roles is a set of roles, kept sorted and free of duplicates.
type Roles []Role

// DefaultRoles is what a self-registered user gets.
func DefaultRoles() Roles { return Roles{RoleAuthenticated} }

// NewRoles normalises rs into a sorted set.
func NewRoles(rs ...Role) Roles {
	out := slices.Clone(rs)
	slices.Sort(out)
	return slices.Compact(out)
}

func (rs Roles) Has(r Role) bool { return slices.Contains(rs, r) }

// String joins the roles with commas, which is also the storage format.
func (rs Roles) String() string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// ParseRoles reads the comma separated storage format. Blank entries are
// skipped and unknown names are kept as-is so Valid can report them.
func ParseRoles(s string) Roles {
	var rs []Role
	for part := range strings.SplitSeq(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			rs = append(rs, Role(part))
		}
	}
	return NewRoles(rs...)
}
