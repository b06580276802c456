// Package access answers authorisation questions against the static role to
// permission matrix.
//
// Every function accepts any Role or Permission value, including ones decoded
// from untrusted session data. Unknown inputs yield false, an empty slice, or
// an empty description; nothing here panics, logs or performs I/O, and the
// matrix is never mutated after init, so all functions are safe for concurrent
// use.
package access

import "github.com/garagecrm/access-api/internal/core/domain"

// HasPermission reports whether role holds permission.
func HasPermission(role domain.Role, permission domain.Permission) bool {
	_, ok := matrix[role].set[permission]
	return ok
}

// HasAnyPermission reports whether role holds at least one of permissions.
// An empty list is never satisfied.
func HasAnyPermission(role domain.Role, permissions []domain.Permission) bool {
	for _, p := range permissions {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether role holds every one of permissions.
// An empty list is always satisfied.
func HasAllPermissions(role domain.Role, permissions []domain.Permission) bool {
	for _, p := range permissions {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}

// MissingPermissions returns the entries of permissions that role does not
// hold, in input order.
func MissingPermissions(role domain.Role, permissions []domain.Permission) []domain.Permission {
	missing := make([]domain.Permission, 0)
	for _, p := range permissions {
		if !HasPermission(role, p) {
			missing = append(missing, p)
		}
	}
	return missing
}

// RolePermissions returns a copy of the permissions held by role, in
// vocabulary order. Unknown roles get an empty slice.
func RolePermissions(role domain.Role) []domain.Permission {
	g := matrix[role]
	out := make([]domain.Permission, len(g.ordered))
	copy(out, g.ordered)
	return out
}

// RoleLabel returns the display name of role. Unknown roles are echoed back
// verbatim so a bad value stays visible in the UI.
func RoleLabel(role domain.Role) string {
	if label, ok := labels[role]; ok {
		return label
	}
	return string(role)
}

// RoleDescription returns the display description of role, or "" for unknown
// roles.
func RoleDescription(role domain.Role) string {
	return descriptions[role]
}
