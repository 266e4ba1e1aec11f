// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package constants provides centralized, immutable values for the entire platform.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Global per-IP buckets and the per-route auth windows.
  - Security: token lifetimes, code lengths and the session cap.
  - Headers, schemas and Redis prefixes.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "studenthub"
	AppVersion = "1.0.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Profile picture uploads (5 MiB) set the floor.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 20 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 15 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// BackgroundWriteTimeout bounds fire-and-forget writes such as lastLogin.
	BackgroundWriteTimeout = 5 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 60

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in access tokens.
	AuthIssuer = "studenthub.api"

	// DefaultAccessTokenTTL is the lifetime of an access token.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the lifetime of a refresh token.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultSessionCap is the maximum number of live device sessions per account.
	DefaultSessionCap = 5

	// DefaultResetCodeTTL is how long a password reset code stays valid.
	DefaultResetCodeTTL = 10 * time.Minute

	// DefaultLoginLookupTimeout bounds the credential-store lookup during login.
	DefaultLoginLookupTimeout = 5 * time.Second

	// RefreshTokenBytes is the entropy of a refresh token (256 bits).
	RefreshTokenBytes = 32

	// ResetCodeDigits is the length of a password reset code.
	ResetCodeDigits = 6

	// OAuthStateTTL is how long a social-login state value is honored.
	OAuthStateTTL = 5 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderOrigin        = "Origin"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderRetryAfter    = "Retry-After"
	HeaderAdminToken    = "X-Admin-Token"
)

// # Redis Prefixes

const (
	RedisPrefixRateLimit  = "ratelimit:"
	RedisPrefixOAuthState = "auth:oauth_state:"
)
