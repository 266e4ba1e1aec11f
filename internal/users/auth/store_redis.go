// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wayneaws/studenthub/internal/platform/constants"
)

// RedisStateStore implements [StateStore] using Redis keys with a TTL.
type RedisStateStore struct {
	client redis.UniversalClient
}

// NewRedisStateStore creates a new Redis-backed [StateStore].
func NewRedisStateStore(client redis.UniversalClient) *RedisStateStore {
	return &RedisStateStore{client: client}
}

/*
Save stores an OAuth state value for ttl.

Parameters:
  - context: context.Context
  - state: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisStateStore) Save(context context.Context, state string, ttl time.Duration) error {
	if err := repository.client.Set(context, constants.RedisPrefixOAuthState+state, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis_oauth_state_set_failed: %w", err)
	}
	return nil
}

/*
Consume atomically reads and deletes a state value.

Description: GETDEL makes the value single-use even under concurrent
callbacks.

Parameters:
  - context: context.Context
  - state: string

Returns:
  - bool: true if the state existed and had not expired
  - error: Connectivity errors
*/
func (repository *RedisStateStore) Consume(context context.Context, state string) (bool, error) {
	err := repository.client.GetDel(context, constants.RedisPrefixOAuthState+state).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis_oauth_state_consume_failed: %w", err)
	}
	return true, nil
}
