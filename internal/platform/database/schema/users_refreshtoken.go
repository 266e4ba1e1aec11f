// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package schema

// UserRefreshTokenTable represents the 'users.refreshtoken' table
type UserRefreshTokenTable struct {
	Table     string
	TokenHash string
	AccountID string
	DeviceID  string
	CreatedAt string
	ExpiresAt string
}

// UserRefreshToken is the schema definition for users.refreshtoken
var UserRefreshToken = UserRefreshTokenTable{
	Table:     "users.refreshtoken",
	TokenHash: "tokenhash",
	AccountID: "accountid",
	DeviceID:  "deviceid",
	CreatedAt: "createdat",
	ExpiresAt: "expiresat",
}

// Columns returns all standard column names
func (t UserRefreshTokenTable) Columns() []string {
	return []string{t.TokenHash, t.AccountID, t.DeviceID, t.CreatedAt, t.ExpiresAt}
}
