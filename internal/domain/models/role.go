package models

import (
	"strings"
)

// Role is a project-scoped role. The numeric values are persisted as
// project_members.role_id and travel over the wire as roleId.
type Role int

const (
	RoleInvalid        Role = -1
	RoleProjectManager Role = 1
	RoleTeamMember     Role = 2
	RoleViewer         Role = 3
)

// Canonical role names, as used in token claims and allowedRoles queries.
const (
	RoleNameProjectManager = "ProjectManager"
	RoleNameTeamMember     = "TeamMember"
	RoleNameViewer         = "Viewer"
	RoleNameUnknown        = "Unknown"
)

// AllRoles lists the assignable roles in id order.
var AllRoles = []Role{RoleProjectManager, RoleTeamMember, RoleViewer}

// RoleName maps a role id to its canonical name. Ids outside the
// enumeration map to "Unknown"; it never fails.
func RoleName(id int) string {
	switch Role(id) {
	case RoleProjectManager:
		return RoleNameProjectManager
	case RoleTeamMember:
		return RoleNameTeamMember
	case RoleViewer:
		return RoleNameViewer
	default:
		return RoleNameUnknown
	}
}

// Name returns the canonical name of r.
func (r Role) Name() string {
	return RoleName(int(r))
}

func (r Role) String() string {
	return r.Name()
}

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleProjectManager, RoleTeamMember, RoleViewer:
		return true
	default:
		return false
	}
}

// ParseRole converts a canonical role name to a Role. Unknown names yield
// RoleInvalid, which is never a member of any RoleSet.
func ParseRole(name string) Role {
	switch name {
	case RoleNameProjectManager:
		return RoleProjectManager
	case RoleNameTeamMember:
		return RoleTeamMember
	case RoleNameViewer:
		return RoleViewer
	default:
		return RoleInvalid
	}
}

// RoleSet is an explicit set of allowed roles. No role implies another.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles. RoleInvalid is dropped.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r.Valid() {
			set[r] = struct{}{}
		}
	}
	return set
}

// ParseRoleSet parses a comma-separated list of role names, e.g. the
// allowedRoles query parameter. Unknown names contribute nothing.
func ParseRoleSet(csv string) RoleSet {
	if csv == "" {
		return RoleSet{}
	}
	parts := strings.Split(csv, ",")
	roles := make([]Role, 0, len(parts))
	for _, p := range parts {
		roles = append(roles, ParseRole(p))
	}
	return NewRoleSet(roles...)
}

// Contains reports whether r is in the set.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// Roles returns the members in id order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range AllRoles {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

// String renders the set in the allowedRoles wire format.
func (s RoleSet) String() string {
	roles := s.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name()
	}
	return strings.Join(names, ",")
}

// IsAuthorized reports whether memberRole is an element of allowed.
func IsAuthorized(memberRole Role, allowed RoleSet) bool {
	return allowed.Contains(memberRole)
}
