package domain

// Role is the coarse-grained authorization claim carried by a session.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleEmployee   Role = "employee"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is one of the roles the backend issues.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleSuperAdmin:
		return true
	}
	return false
}

// RoleSet is the set of roles a route admits. An empty set admits any
// authenticated session.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether r is a member of the set.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Landing pages per role.
const (
	PathAdmin    = "/admin"
	PathEmployee = "/employee"
	PathProfile  = "/profile"
)

// HomePath returns the landing page for a role after login. Every path it
// returns must be one the gate admits for that role: super_admin has no
// dashboard of its own and lands on the profile page.
func HomePath(r Role) string {
	switch r {
	case RoleAdmin:
		return PathAdmin
	case RoleEmployee:
		return PathEmployee
	case RoleSuperAdmin:
		return PathProfile
	default:
		return PathHome
	}
}
