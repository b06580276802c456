// Package policy maps HTTP routes to the access requirement that guards them.
//
// A Table is immutable once built. Requirements are evaluated through the
// access package, so a route guarded by a single permission is allowed exactly
// when access.HasPermission would allow it.
package policy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/garagecrm/access-api/internal/core/access"
	"github.com/garagecrm/access-api/internal/core/domain"
)

// Mode selects how a Requirement is evaluated.
type Mode string

const (
	ModePublic        Mode = "public"
	ModeAuthenticated Mode = "authenticated"
	ModeAllOf         Mode = "all_of"
	ModeAnyOf         Mode = "any_of"
	ModeRoles         Mode = "roles"
)

// Requirement is what a caller must satisfy to use a route.
type Requirement struct {
	Mode        Mode                `json:"mode" yaml:"mode"`
	Permissions []domain.Permission `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Roles       []domain.Role       `json:"roles,omitempty" yaml:"roles,omitempty"`
}

func Public() Requirement        { return Requirement{Mode: ModePublic} }
func Authenticated() Requirement { return Requirement{Mode: ModeAuthenticated} }

// Permission requires a single permission.
func Permission(p domain.Permission) Requirement {
	return Requirement{Mode: ModeAllOf, Permissions: []domain.Permission{p}}
}

func AllOf(perms ...domain.Permission) Requirement {
	return Requirement{Mode: ModeAllOf, Permissions: perms}
}

func AnyOf(perms ...domain.Permission) Requirement {
	return Requirement{Mode: ModeAnyOf, Permissions: perms}
}

// RoleIn restricts a route to explicit roles instead of permissions.
func RoleIn(roles ...domain.Role) Requirement {
	return Requirement{Mode: ModeRoles, Roles: roles}
}

// NeedsAuthentication reports whether a caller must present a valid session.
func (r Requirement) NeedsAuthentication() bool {
	return r.Mode != ModePublic
}

// Allows reports whether an authenticated caller holding role satisfies r.
func (r Requirement) Allows(role domain.Role) bool {
	switch r.Mode {
	case ModePublic, ModeAuthenticated:
		return true
	case ModeAllOf:
		return access.HasAllPermissions(role, r.Permissions)
	case ModeAnyOf:
		return access.HasAnyPermission(role, r.Permissions)
	case ModeRoles:
		return slices.Contains(r.Roles, role)
	default:
		return false
	}
}

func (r Requirement) String() string {
	switch r.Mode {
	case ModeAllOf:
		if len(r.Permissions) == 1 {
			return string(r.Permissions[0])
		}
		return "all(" + joinPermissions(r.Permissions) + ")"
	case ModeAnyOf:
		return "any(" + joinPermissions(r.Permissions) + ")"
	case ModeRoles:
		names := make([]string, len(r.Roles))
		for i, role := range r.Roles {
			names[i] = string(role)
		}
		return "roles(" + strings.Join(names, ",") + ")"
	default:
		return string(r.Mode)
	}
}

func joinPermissions(perms []domain.Permission) string {
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}

// Entry binds a route pattern to its requirement. Paths use Echo syntax:
// ":name" matches one segment, a trailing "*" matches the remainder.
type Entry struct {
	Method      string      `json:"method" yaml:"method"`
	Path        string      `json:"path" yaml:"path"`
	Requirement Requirement `json:"requirement" yaml:"requirement"`
}

// Table is an immutable set of route entries.
type Table struct {
	entries []Entry
	byRoute map[string]int
	paths   map[string]struct{}
}

// NewTable validates entries and indexes them. Duplicate routes and unknown
// permissions or roles are rejected.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		byRoute: make(map[string]int, len(entries)),
		paths:   make(map[string]struct{}, len(entries)),
	}
	for _, e := range entries {
		e.Method = strings.ToUpper(e.Method)
		key := routeKey(e.Method, e.Path)
		if _, dup := t.byRoute[key]; dup {
			return nil, fmt.Errorf("policy: duplicate route %s", key)
		}
		for _, p := range e.Requirement.Permissions {
			if !p.Valid() {
				return nil, fmt.Errorf("policy: %s: unknown permission %q", key, p)
			}
		}
		for _, r := range e.Requirement.Roles {
			if !r.Valid() {
				return nil, fmt.Errorf("policy: %s: unknown role %q", key, r)
			}
		}
		t.byRoute[key] = len(t.entries)
		t.paths[e.Path] = struct{}{}
		t.entries = append(t.entries, e)
	}
	return t, nil
}

func mustTable(entries []Entry) *Table {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the requirement registered for an exact route pattern.
func (t *Table) Lookup(method, pattern string) (Requirement, bool) {
	i, ok := t.byRoute[routeKey(strings.ToUpper(method), pattern)]
	if !ok {
		return Requirement{}, false
	}
	return t.entries[i].Requirement, true
}

// HasPath reports whether any method is registered for pattern.
func (t *Table) HasPath(pattern string) bool {
	_, ok := t.paths[pattern]
	return ok
}

// Entries returns a copy of the table in declaration order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Match resolves a concrete request path (e.g. /api/contacts/42) to the most
// specific entry for method. Literal segments win over parameters, which win
// over wildcards.
func (t *Table) Match(method, path string) (Entry, bool) {
	method = strings.ToUpper(method)
	segments := splitPath(path)

	best, bestScore := -1, -1
	for i, e := range t.entries {
		if e.Method != method {
			continue
		}
		score, ok := matchSegments(splitPath(e.Path), segments)
		if ok && score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return Entry{}, false
	}
	return t.entries[best], true
}

func matchSegments(pattern, path []string) (int, bool) {
	score := 0
	for i, seg := range pattern {
		if seg == "*" && i == len(pattern)-1 {
			return score, true
		}
		if i >= len(path) {
			return 0, false
		}
		switch {
		case strings.HasPrefix(seg, ":"):
			score++
		case seg == path[i]:
			score += 2
		default:
			return 0, false
		}
	}
	return score, len(pattern) == len(path)
}

func splitPath(p string) []string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func routeKey(method, path string) string {
	return method + " " + path
}
