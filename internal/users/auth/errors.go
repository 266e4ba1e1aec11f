// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package auth

import (
	"net/http"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
)

// Error codes returned by the authentication domain.
const (
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeTokenMalformed      = "TOKEN_MALFORMED"
	CodeTokenRevoked        = "TOKEN_REVOKED"
	CodeAccountNotActive    = "ACCOUNT_NOT_ACTIVE"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeInvalidOrExpired    = "INVALID_OR_EXPIRED_CODE"
	CodeDuplicateAccount    = "DUPLICATE_ACCOUNT"
	CodeInvalidState        = "INVALID_STATE"
	CodeSocialLoginFailed   = "SOCIAL_LOGIN_FAILED"
	CodeSocialNotConfigured = "SOCIAL_LOGIN_DISABLED"
)

// Sentinels. Match with errors.Is; the code is what clients see.
var (
	// Same error for unknown identifier and wrong password.
	ErrInvalidCredentials = apperr.New(CodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)

	// The credential lookup did not answer within the login bound.
	ErrServiceUnavailable = apperr.ServiceUnavailable("Service temporarily unavailable, please try again")

	// Signature valid, expiry passed: the client should refresh.
	ErrTokenExpired = apperr.New(CodeTokenExpired, "Access token expired", http.StatusUnauthorized)

	// Signature or structure invalid: the client must log in again.
	ErrTokenMalformed = apperr.New(CodeTokenMalformed, "Access token is invalid", http.StatusUnauthorized)

	// Embedded epoch no longer matches the account.
	ErrTokenRevoked = apperr.New(CodeTokenRevoked, "Access token has been revoked", http.StatusUnauthorized)

	ErrAccountNotActive = apperr.New(CodeAccountNotActive, "Account is not active", http.StatusForbidden)

	ErrInvalidRefreshToken = apperr.New(CodeInvalidRefreshToken, "Invalid or expired refresh token", http.StatusUnauthorized)

	ErrInvalidOrExpiredCode = apperr.New(CodeInvalidOrExpired, "Invalid or expired reset code", http.StatusBadRequest)

	ErrDuplicateAccount = apperr.New(CodeDuplicateAccount, "An account with these details already exists", http.StatusBadRequest)

	// Social login: unknown, reused or expired state value.
	ErrInvalidState = apperr.New(CodeInvalidState, "Invalid or expired login state", http.StatusBadRequest)

	ErrSocialLoginFailed = apperr.New(CodeSocialLoginFailed, "Social login failed", http.StatusUnauthorized)

	ErrSocialNotConfigured = apperr.New(CodeSocialNotConfigured, "Social login is not configured", http.StatusNotFound)
)
