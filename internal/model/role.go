package model

import "fmt"

// Role is an authorization role held by an account.
type Role string

// Wire values are case-sensitive; nothing outside this set is accepted.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known wire values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRoles converts wire values into roles. It rejects an empty set and
// any value outside the role enum.
func ParseRoles(values []string) ([]Role, error) {
	if len(values) == 0 {
		return nil, &ValidationError{Field: "roles", Message: "roles must not be empty"}
	}

	roles := make([]Role, 0, len(values))
	for _, v := range values {
		role := Role(v)
		if !role.Valid() {
			return nil, &ValidationError{Field: "roles", Message: fmt.Sprintf("unknown role %q", v)}
		}
		roles = append(roles, role)
	}

	return roles, nil
}

// RolesToStrings converts roles to their wire values.
func RolesToStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
