// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for member accounts.
//
// Lookups return dberr.ErrNotFound when no account matches. Email lookups
// are case-insensitive.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity
		  - error: dberr.ErrNotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the account with the given email (case-insensitive).

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Account: Hydrated entity
		  - error: dberr.ErrNotFound or retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *Account: Hydrated entity
		  - error: dberr.ErrNotFound or retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*Account, error)

	/*
		FindByExternalID returns the account linked to an identity provider subject.

		Parameters:
		  - context: context.Context
		  - externalID: string

		Returns:
		  - *Account: Hydrated entity
		  - error: dberr.ErrNotFound or retrieval failures
	*/
	FindByExternalID(context context.Context, externalID string) (*Account, error)

	/*
		UsernameTaken reports whether another account already uses username.

		Parameters:
		  - context: context.Context
		  - username: string
		  - excludeID: string (account to ignore, "" for none)

		Returns:
		  - bool: true when taken
		  - error: Retrieval failures
	*/
	UsernameTaken(context context.Context, username, excludeID string) (bool, error)

	/*
		Create persists a brand-new account.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: ErrDuplicateAccount on email/username collision, or persistence failures
	*/
	Create(context context.Context, account *Account) error

	/*
		UpdatePassword replaces the password hash and clears any reset code.

		Parameters:
		  - context: context.Context
		  - id: string
		  - passwordHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, id, passwordHash string) error

	/*
		SetResetCode stores the hash of a reset code and its expiry.

		Parameters:
		  - context: context.Context
		  - id: string
		  - codeHash: string
		  - expiresAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	SetResetCode(context context.Context, id, codeHash string, expiresAt time.Time) error

	/*
		TouchLastLogin records the time of the latest successful authentication.

		Parameters:
		  - context: context.Context
		  - id: string
		  - at: time.Time

		Returns:
		  - error: Persistence failures
	*/
	TouchLastLogin(context context.Context, id string, at time.Time) error

	/*
		LinkExternalID binds an identity provider subject to an existing account.

		Parameters:
		  - context: context.Context
		  - id: string
		  - externalID: string

		Returns:
		  - error: Persistence failures
	*/
	LinkExternalID(context context.Context, id, externalID string) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh tokens and
// the revocation epoch.
//
// Implementations must make [SessionRepository.Rotate] atomic: of two
// concurrent calls presenting the same token, exactly one succeeds.
type SessionRepository interface {

	/*
		Register stores a new refresh token.

		Description: In one step, removes the account's expired tokens and any
		token for the same device, inserts the new one, and evicts the oldest
		by creation time until at most limit remain.

		Parameters:
		  - context: context.Context
		  - token: *RefreshToken (CreatedAt doubles as "now")
		  - limit: int

		Returns:
		  - error: Persistence failures
	*/
	Register(context context.Context, token *RefreshToken, limit int) error

	/*
		Rotate consumes a presented refresh token and registers its replacement.

		Description: The presented token must exist for deviceID and be
		unexpired at next.CreatedAt. On success next.AccountID is filled in.

		Parameters:
		  - context: context.Context
		  - presentedHash: string
		  - deviceID: string
		  - next: *RefreshToken
		  - limit: int

		Returns:
		  - error: ErrInvalidRefreshToken or persistence failures
	*/
	Rotate(context context.Context, presentedHash, deviceID string, next *RefreshToken, limit int) error

	/*
		Delete removes one token of the account. Missing tokens are not an error.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - tokenHash: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, accountID, tokenHash string) error

	/*
		DeleteDevice removes the account's token for one device.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - deviceID: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteDevice(context context.Context, accountID, deviceID string) error

	/*
		RevokeAll removes every token of the account and increments its
		revocation epoch in the same step.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - int: The new epoch
		  - error: dberr.ErrNotFound or persistence failures
	*/
	RevokeAll(context context.Context, accountID string) (int, error)

	/*
		List returns the account's live tokens, newest first.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - now: time.Time

		Returns:
		  - []RefreshToken: Live tokens
		  - error: Retrieval failures
	*/
	List(context context.Context, accountID string, now time.Time) ([]RefreshToken, error)

	/*
		DeleteExpired physically removes tokens that expired before now.

		Parameters:
		  - context: context.Context
		  - now: time.Time

		Returns:
		  - int64: Number of removed tokens
		  - error: Cleanup failures
	*/
	DeleteExpired(context context.Context, now time.Time) (int64, error)
}

// # Volatile Data Access

// StateStore keeps single-use OAuth state values.
type StateStore interface {

	/*
		Save stores state for ttl.

		Parameters:
		  - context: context.Context
		  - state: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Save(context context.Context, state string, ttl time.Duration) error

	/*
		Consume deletes state and reports whether it existed.

		Parameters:
		  - context: context.Context
		  - state: string

		Returns:
		  - bool: true if the state was present and unexpired
		  - error: Retrieval failures
	*/
	Consume(context context.Context, state string) (bool, error)
}
