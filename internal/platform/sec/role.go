// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted platform access, including system tags and tenant admin
	RoleAdmin UserRole = "admin"

	// Can manage taxonomy, run bulk operations, and inspect audit logs
	RoleOperator UserRole = "operator"

	// Default role for registered tenant users
	RoleMember UserRole = "member"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-30) leaves room for intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleOperator:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}
