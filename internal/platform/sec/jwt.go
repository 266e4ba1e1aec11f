// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, JWT signing,
// random secrets) from the domain logic. Domain services depend on it through
// small interfaces so tests can swap the clock or the bcrypt cost.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wayneaws/studenthub/internal/platform/constants"
)

var (
	// ErrTokenExpired is returned for a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenMalformed is returned for anything that does not parse or verify.
	ErrTokenMalformed = errors.New("sec: token malformed")
)

// AccessClaims is the payload embedded inside an access token.
//
// The revocation epoch travels as "ver". A token is only honored while it
// equals the account's current epoch.
type AccessClaims struct {
	jwt.RegisteredClaims

	UserID  string `json:"uid"`
	Email   string `json:"eml"`
	Version int    `json:"ver"`
}

// TokenService signs and verifies HS256 access tokens.
type TokenService struct {
	secret     []byte
	issuer     string
	timeToLive time.Duration
	now        func() time.Time
}

// NewTokenService creates a TokenService. An empty issuer, a non-positive
// lifetime and a nil clock fall back to the platform defaults.
func NewTokenService(secret, issuer string, timeToLive time.Duration, now func() time.Time) (*TokenService, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("sec: signing secret must be at least 32 bytes")
	}
	if issuer == "" {
		issuer = constants.AuthIssuer
	}
	if timeToLive <= 0 {
		timeToLive = constants.DefaultAccessTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		timeToLive: timeToLive,
		now:        now,
	}, nil
}

// TimeToLive returns the configured access-token lifetime.
func (service *TokenService) TimeToLive() time.Duration {
	return service.timeToLive
}

// GenerateAccessToken creates a signed access token for the account at the given epoch.
func (service *TokenService) GenerateAccessToken(userID, email string, version int) (string, time.Time, error) {
	issuedAt := service.now()
	expiresAt := issuedAt.Add(service.timeToLive)

	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:  userID,
		Email:   email,
		Version: version,
	}

	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

// VerifyToken checks signature, issuer, and expiry.
//
// Returns [ErrTokenExpired] only for tokens whose signature verified, and
// [ErrTokenMalformed] for everything else.
func (service *TokenService) VerifyToken(tokenString string) (*AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)

	claims := &AccessClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return service.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
