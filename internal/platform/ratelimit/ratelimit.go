// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

/*
Package ratelimit enforces per-route, per-IP request budgets backed by Redis.

Each [Policy] is a fixed window: the first hit creates a counter with the
window as its TTL, later hits increment it. Because counters live in Redis,
every API replica shares the same budget.

Redis failures fail open: the request proceeds and the error is logged.
*/
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
	"github.com/wayneaws/studenthub/internal/platform/constants"
	"github.com/wayneaws/studenthub/internal/platform/ctxutil"
	"github.com/wayneaws/studenthub/internal/platform/respond"
)

// Policy is a named budget of Limit requests per Window.
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Budgets for the public auth and newsletter routes.
var (
	Login      = Policy{Name: "login", Limit: 5, Window: 15 * time.Minute}
	Auth       = Policy{Name: "auth", Limit: 10, Window: 15 * time.Minute}
	Reset      = Policy{Name: "reset", Limit: 3, Window: time.Hour}
	Signup     = Policy{Name: "signup", Limit: 3, Window: time.Hour}
	Newsletter = Policy{Name: "newsletter", Limit: 5, Window: 15 * time.Minute}
)

// Decision is the outcome of one [Limiter.Allow] call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// KeyFunc extracts the identity a budget is charged to (usually the client IP).
type KeyFunc func(request *http.Request) string

// Limiter charges requests against Redis counters.
type Limiter struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// New creates a [Limiter].
func New(client redis.UniversalClient, logger *slog.Logger) *Limiter {
	return &Limiter{client: client, logger: logger}
}

// fixedWindowLua counts a hit and returns {count, ttl_ms}. The window TTL is
// set in the same atomic step as the first hit, and a key found without a TTL
// gets one, so a counter can never outlive its window.
var fixedWindowLua = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// Allow charges one hit to key under policy.
func (limiter *Limiter) Allow(context context.Context, policy Policy, key string) (Decision, error) {
	redisKey := fmt.Sprintf("%s%s:%s", constants.RedisPrefixRateLimit, policy.Name, key)

	result, err := fixedWindowLua.Run(context, limiter.client, []string{redisKey}, policy.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{Allowed: true}, fmt.Errorf("ratelimit_script_failed: %w", err)
	}
	if len(result) != 2 {
		return Decision{Allowed: true}, fmt.Errorf("ratelimit_script_failed: unexpected reply %v", result)
	}

	count, ttl := result[0], time.Duration(result[1])*time.Millisecond
	if count <= int64(policy.Limit) {
		return Decision{Allowed: true, Remaining: policy.Limit - int(count)}, nil
	}

	retryAfter := ttl
	if retryAfter <= 0 {
		retryAfter = policy.Window
	}

	return Decision{Allowed: false, RetryAfter: retryAfter}, nil
}

// Middleware rejects requests over budget with 429 and a Retry-After header.
func (limiter *Limiter) Middleware(policy Policy, keyFunc KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			decision, err := limiter.Allow(request.Context(), policy, keyFunc(request))
			if err != nil {
				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "ratelimit_unavailable",
					slog.String("policy", policy.Name),
					slog.Any("error", err),
				)
				next.ServeHTTP(writer, request)
				return
			}

			writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(policy.Limit))

			if !decision.Allowed {
				seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
				writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(seconds))
				respond.Error(writer, request, apperr.RateLimited(seconds))
				return
			}

			writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			next.ServeHTTP(writer, request)
		})
	}
}
