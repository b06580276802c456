package domain

// Role is the authority tier of a tenant member. Values outside the closed set
// below are representable (they usually come straight from a token claim) but
// hold no permissions.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleOwner      Role = "OWNER"
	RoleManager    Role = "MANAGER"
	RoleAccountant Role = "ACCOUNTANT"
	RoleUser       Role = "USER"
)

var roles = []Role{RoleSuperAdmin, RoleOwner, RoleManager, RoleAccountant, RoleUser}

// Roles returns every known role, most privileged first.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole converts an untrusted string into a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}
