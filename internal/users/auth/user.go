// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package auth implements the member identity and session management layer.

It defines the core domain entities (Account, RefreshToken) and the logic for
signup, login, refresh-token rotation, revocation, and password recovery.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no
storage dependencies; repositories ([UserRepository], [SessionRepository])
are injected, with PostgreSQL and in-memory implementations.
*/
package auth

import (
	"time"

	"github.com/wayneaws/studenthub/internal/platform/sec"
)

// # Account Status

// Status is the moderation state of an account.
type Status string

const (
	StatusActive    Status = "active"
	StatusBanned    Status = "banned"
	StatusSuspended Status = "suspended"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusBanned || s == StatusSuspended
}

// Account origin. Social accounts have no local password.
const (
	ProviderLocal  = "local"
	ProviderSocial = "social"
)

// # Domain Entities

// Account represents a registered club member.
type Account struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	PasswordHash string `json:"-"` // Explicitly omitted from JSON for security.
	Provider     string `json:"provider"`
	ExternalID   string `json:"-"`

	Role      sec.UserRole `json:"role"`
	Status    Status       `json:"status"`
	BannedAt  *time.Time   `json:"bannedAt,omitempty"`
	BannedBy  *BanActor    `json:"bannedBy,omitempty"`
	BanReason string       `json:"banReason,omitempty"`

	// TokenVersion is the revocation epoch embedded in every access token.
	TokenVersion int `json:"-"`

	ResetCodeHash      string     `json:"-"`
	ResetCodeExpiresAt *time.Time `json:"-"`

	Profile

	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Profile holds the owner-editable, non-security fields.
type Profile struct {
	Bio                   string   `json:"bio"`
	Major                 string   `json:"major"`
	Grade                 string   `json:"grade"`
	ProgrammingLanguages  []string `json:"programmingLanguages"`
	ProfilePicture        string   `json:"profilePicture"`
	WantsEmails           bool     `json:"wantsEmails"`
	ProfileSetupCompleted bool     `json:"profileSetupCompleted"`
}

// BanActor is a weak reference to the moderator who banned an account. The
// referenced account may since have been deleted.
type BanActor struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// IsActive reports whether the account may authenticate.
func (account *Account) IsActive() bool {
	return account.Status == StatusActive
}

// HasPassword reports whether the account can log in with a local password.
func (account *Account) HasPassword() bool {
	return account.PasswordHash != ""
}

// RefreshToken is one device-bound session. Only the SHA-256 hash of the
// bearer value is stored.
type RefreshToken struct {
	TokenHash string
	AccountID string
	DeviceID  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is dead at now.
func (token *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(token.ExpiresAt)
}

// Session is the client-facing view of a [RefreshToken].
type Session struct {
	DeviceID  string    `json:"deviceId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenPair is the result of signup, login, and refresh.
type TokenPair struct {
	AccessToken          string    `json:"accessToken"`
	RefreshToken         string    `json:"refreshToken"`
	DeviceID             string    `json:"deviceId"`
	AccessTokenExpiresAt time.Time `json:"accessTokenExpiresAt"`
	User                 *Account  `json:"user"`
}

// # Field Identifiers

// Field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldIdentifier   = "identifier"
	FieldPassword     = "password"
	FieldNewPassword  = "newPassword"
	FieldFullName     = "fullName"
	FieldRefreshToken = "refreshToken"
	FieldDeviceID     = "deviceId"
	FieldCode         = "code"
	FieldState        = "state"
)
