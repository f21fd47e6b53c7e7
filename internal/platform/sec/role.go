// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package sec

// # User Roles

// Role represents the authorization level granted to an account.
//
// It is a closed set: anything other than [RoleAdmin] or [RoleMember] is
// invalid and must be rejected at the boundary, never stored or compared
// as a free-form string.
type Role string

const (
	// Unrestricted access, including user management
	RoleAdmin Role = "admin"

	// Default role for standard registered users
	RoleMember Role = "member"
)

// Valid reports whether the role is one of the closed set of known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// In reports whether the role is a member of the allowed set.
func (r Role) In(allowed ...Role) bool {
	for _, candidate := range allowed {
		if r == candidate {
			return true
		}
	}
	return false
}
