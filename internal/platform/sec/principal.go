// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package sec

// Principal is the verified caller attached to a request.
//
// It is built from a valid access token plus the live account record, so
// Role and Username reflect the current state, not the state at issuance.
type Principal struct {
	UserID   string
	Email    string
	Username string
	Role     UserRole
	Version  int
}
