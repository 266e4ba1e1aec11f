// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access, including granting admin.
	RoleSuperuser UserRole = "superuser"

	// Can change roles and delete accounts below admin.
	RoleAdmin UserRole = "admin"

	// Can ban and unban members and read the admin console.
	RoleModerator UserRole = "moderator"

	// Default role for registered members
	RoleMember UserRole = "member"
)

// Roles lists every assignable role from lowest to highest.
var Roles = []UserRole{RoleMember, RoleModerator, RoleAdmin, RoleSuperuser}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.Level() >= target.Level()
}

// Outranks reports whether r is strictly above target. Managing another
// account requires outranking it.
func (r UserRole) Outranks(target UserRole) bool {
	return r.Level() > target.Level()
}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r.Level() >= 0
}

// Level maps a role to its position in the hierarchy. Unknown roles return -1.
func (r UserRole) Level() int {
	switch r {
	case RoleSuperuser:
		return 3
	case RoleAdmin:
		return 2
	case RoleModerator:
		return 1
	case RoleMember:
		return 0
	default:
		return -1
	}
}
