// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/wayneaws/studenthub/internal/platform/constants"
	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/pkg/uuid"
)

// Issuer mints access/refresh token pairs and registers the refresh half.
type Issuer struct {
	tokens     *sec.TokenService
	sessions   SessionRepository
	refreshTTL time.Duration
	sessionCap int
	now        func() time.Time
}

// NewIssuer constructs an [Issuer]. now may be nil (defaults to time.Now).
func NewIssuer(tokens *sec.TokenService, sessions SessionRepository, refreshTTL time.Duration, sessionCap int, now func() time.Time) *Issuer {
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		tokens:     tokens,
		sessions:   sessions,
		refreshTTL: refreshTTL,
		sessionCap: sessionCap,
		now:        now,
	}
}

/*
Issue mints a token pair for the account on one device.

Description: An empty deviceID is replaced by a server-generated one, which
the caller must echo back on refresh. Registering the refresh token
supersedes the device's previous token and enforces the session cap.

Parameters:
  - context: context.Context
  - account: *Account
  - deviceID: string

Returns:
  - *TokenPair: Access token, refresh token, and effective device ID
  - error: Signing or persistence failures
*/
func (issuer *Issuer) Issue(context context.Context, account *Account, deviceID string) (*TokenPair, error) {
	if deviceID == "" {
		deviceID = uuid.New()
	}

	refreshToken, record, err := issuer.newRefreshToken(deviceID)
	if err != nil {
		return nil, err
	}
	record.AccountID = account.ID

	if err := issuer.sessions.Register(context, record, issuer.sessionCap); err != nil {
		return nil, fmt.Errorf("auth_issuer_register_failed: %w", err)
	}

	return issuer.pair(account, refreshToken, deviceID)
}

// newRefreshToken returns a fresh bearer value and its unsaved record.
func (issuer *Issuer) newRefreshToken(deviceID string) (string, *RefreshToken, error) {
	refreshToken, err := sec.GenerateSecureToken(constants.RefreshTokenBytes)
	if err != nil {
		return "", nil, fmt.Errorf("auth_issuer_refresh_token_failed: %w", err)
	}

	now := issuer.now()
	return refreshToken, &RefreshToken{
		TokenHash: sec.HashToken(refreshToken),
		DeviceID:  deviceID,
		CreatedAt: now,
		ExpiresAt: now.Add(issuer.refreshTTL),
	}, nil
}

// pair signs an access token at the account's current epoch.
func (issuer *Issuer) pair(account *Account, refreshToken, deviceID string) (*TokenPair, error) {
	accessToken, expiresAt, err := issuer.tokens.GenerateAccessToken(account.ID, account.Email, account.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("auth_issuer_access_token_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:          accessToken,
		RefreshToken:         refreshToken,
		DeviceID:             deviceID,
		AccessTokenExpiresAt: expiresAt,
		User:                 account,
	}, nil
}
