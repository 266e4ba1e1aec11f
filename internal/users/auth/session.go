// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
	"github.com/wayneaws/studenthub/internal/platform/constants"
	"github.com/wayneaws/studenthub/internal/platform/ctxutil"
	"github.com/wayneaws/studenthub/internal/platform/dberr"
	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/pkg/slice"
)

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Identifier string // Email (contains '@') or username
	Password   string
	DeviceID   string
}

/*
Login validates credentials and issues a token pair for one device.

Description: Unknown identifiers and wrong passwords yield the same
ErrInvalidCredentials, and both cost one bcrypt comparison. The account
lookup is bounded; a store that does not answer in time yields
ErrServiceUnavailable. lastLogin is written in the background.

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - *TokenPair: Access token, refresh token, and device ID
  - error: ErrInvalidCredentials, ErrAccountNotActive, ErrServiceUnavailable
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	lookupCtx, cancel := context.WithTimeout(ctx, service.options.LoginLookupTimeout)
	account, err := service.findByIdentifier(lookupCtx, identifier)
	cancel()

	if err != nil {
		switch {
		case errors.Is(err, dberr.ErrNotFound):
			service.hasher.Burn(input.Password)
			return nil, ErrInvalidCredentials
		case errors.Is(lookupCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
			return nil, ErrServiceUnavailable.WithCause(err)
		default:
			return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
		}
	}

	if !service.hasher.Verify(input.Password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	// Status is only revealed to a caller who proved the password.
	if !account.IsActive() {
		return nil, ErrAccountNotActive
	}

	pair, err := service.issuer.Issue(ctx, account, input.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_issue_failed: %w", err)
	}

	service.touchLastLogin(ctx, account)
	return pair, nil
}

/*
Refresh exchanges a refresh token for a new pair on the same device.

Description: The presented token is consumed atomically; presenting it
again, or on another device, fails with ErrInvalidRefreshToken.

Parameters:
  - ctx: context.Context
  - refreshToken: string
  - deviceID: string

Returns:
  - *TokenPair: Rotated tokens
  - error: ErrInvalidRefreshToken, ErrAccountNotActive, or storage failures
*/
func (service *Service) Refresh(ctx context.Context, refreshToken, deviceID string) (*TokenPair, error) {
	if refreshToken == "" || deviceID == "" {
		return nil, ErrInvalidRefreshToken
	}

	nextToken, next, err := service.issuer.newRefreshToken(deviceID)
	if err != nil {
		return nil, err
	}

	if err := service.sessions.Rotate(ctx, sec.HashToken(refreshToken), deviceID, next, service.options.SessionCap); err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("auth_service_refresh_rotate_failed: %w", err)
	}

	account, err := service.users.FindByID(ctx, next.AccountID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("auth_service_refresh_account_failed: %w", err)
	}

	if !account.IsActive() {
		if err := service.sessions.Delete(ctx, account.ID, next.TokenHash); err != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "auth_inactive_session_cleanup_failed",
				slog.String("account_id", account.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, ErrAccountNotActive
	}

	pair, err := service.issuer.pair(account, nextToken, deviceID)
	if err != nil {
		return nil, err
	}

	service.touchLastLogin(ctx, account)
	return pair, nil
}

// LogoutInput selects which sessions to end. AllDevices wins over the others.
type LogoutInput struct {
	RefreshToken string
	DeviceID     string
	AllDevices   bool
}

/*
Logout ends one session, one device, or every session of the account.

Description: AllDevices also bumps the revocation epoch so outstanding
access tokens stop working immediately. Ending a session that does not
exist is not an error.

Parameters:
  - ctx: context.Context
  - accountID: string
  - input: LogoutInput

Returns:
  - error: Storage failures
*/
func (service *Service) Logout(ctx context.Context, accountID string, input LogoutInput) error {
	if input.AllDevices {
		_, err := service.RevokeEverywhere(ctx, accountID)
		return err
	}

	if input.RefreshToken != "" {
		if err := service.sessions.Delete(ctx, accountID, sec.HashToken(input.RefreshToken)); err != nil {
			return fmt.Errorf("auth_service_logout_failed: %w", err)
		}
	}

	if input.DeviceID != "" {
		if err := service.sessions.DeleteDevice(ctx, accountID, input.DeviceID); err != nil {
			return fmt.Errorf("auth_service_logout_device_failed: %w", err)
		}
	}

	return nil
}

// # Access Token Verification

/*
VerifyAccessToken authenticates a bearer access token against the live account.

Description: Checks run in order: signature and expiry, then the revocation
epoch, then account status. Role and username in the returned principal
come from the live record.

Parameters:
  - ctx: context.Context
  - token: string

Returns:
  - *sec.Principal: The verified caller
  - error: ErrTokenExpired, ErrTokenMalformed, ErrTokenRevoked, ErrAccountNotActive
*/
func (service *Service) VerifyAccessToken(ctx context.Context, token string) (*sec.Principal, error) {
	claims, err := service.tokens.VerifyToken(token)
	if err != nil {
		if errors.Is(err, sec.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	account, err := service.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, fmt.Errorf("auth_service_verify_lookup_failed: %w", err)
	}

	if claims.Version != account.TokenVersion {
		return nil, ErrTokenRevoked
	}

	if !account.IsActive() {
		return nil, ErrAccountNotActive
	}

	return &sec.Principal{
		UserID:   account.ID,
		Email:    account.Email,
		Username: account.Username,
		Role:     account.Role,
		Version:  account.TokenVersion,
	}, nil
}

// # Revocation

/*
RevokeEverywhere removes every refresh token of the account and bumps its
revocation epoch, invalidating all outstanding access tokens.

Parameters:
  - ctx: context.Context
  - accountID: string

Returns:
  - int: The new epoch
  - error: NotFound or storage failures
*/
func (service *Service) RevokeEverywhere(ctx context.Context, accountID string) (int, error) {
	epoch, err := service.sessions.RevokeAll(ctx, accountID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return 0, apperr.NotFound("User")
		}
		return 0, fmt.Errorf("auth_service_revoke_all_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "auth_sessions_revoked",
		slog.String("account_id", accountID),
		slog.Int("epoch", epoch),
	)
	return epoch, nil
}

// ListSessions returns the caller's live device sessions, newest first.
func (service *Service) ListSessions(ctx context.Context, accountID string) ([]Session, error) {
	tokens, err := service.sessions.List(ctx, accountID, service.now())
	if err != nil {
		return nil, fmt.Errorf("auth_service_list_sessions_failed: %w", err)
	}

	return slice.Map(tokens, func(token RefreshToken) Session {
		return Session{DeviceID: token.DeviceID, CreatedAt: token.CreatedAt, ExpiresAt: token.ExpiresAt}
	}), nil
}

// SweepExpired physically deletes dead refresh tokens of every account.
func (service *Service) SweepExpired(ctx context.Context) (int64, error) {
	removed, err := service.sessions.DeleteExpired(ctx, service.now())
	if err != nil {
		return 0, fmt.Errorf("auth_service_sweep_failed: %w", err)
	}
	return removed, nil
}

// # Helpers

// findByIdentifier resolves an email (contains '@') or a username.
func (service *Service) findByIdentifier(ctx context.Context, identifier string) (*Account, error) {
	if strings.Contains(identifier, "@") {
		return service.users.FindByEmail(ctx, strings.ToLower(identifier))
	}
	return service.users.FindByUsername(ctx, identifier)
}

// touchLastLogin records the login time off the request path. Failures are
// logged only.
func (service *Service) touchLastLogin(ctx context.Context, account *Account) {
	now := service.now()
	account.LastLogin = &now

	logger := ctxutil.GetLogger(ctx)
	writeCtx, cancel := ctxutil.Detach(ctx, constants.BackgroundWriteTimeout)
	accountID := account.ID

	go func() {
		defer cancel()

		if err := service.users.TouchLastLogin(writeCtx, accountID, now); err != nil {
			logger.WarnContext(writeCtx, "auth_last_login_write_failed",
				slog.String("account_id", accountID),
				slog.String("error", err.Error()),
			)
		}
	}()
}
