// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/anirate/internal/platform/apperr"
	"github.com/taibuivan/anirate/internal/platform/constants"
)

// linkStoreName is the client-facing name of the link store in error messages.
const linkStoreName = "Login link store"

var _ LinkStore = (*RedisLinkStore)(nil)

// RedisLinkStore implements [LinkStore] using Redis key expiry.
type RedisLinkStore struct {
	client *redis.Client
}

// NewRedisLinkStore creates a new Redis-backed [LinkStore].
func NewRedisLinkStore(client *redis.Client) *RedisLinkStore {
	return &RedisLinkStore{client: client}
}

/*
SaveLink stores the email under the token digest until ttl elapses.

Parameters:
  - context: context.Context
  - tokenHash: string
  - email: string
  - ttl: time.Duration

Returns:
  - error: Connectivity failures
*/
func (store *RedisLinkStore) SaveLink(context context.Context, tokenHash, email string, ttl time.Duration) error {
	key := constants.RedisPrefixLoginLink + tokenHash

	if err := store.client.Set(context, key, email, ttl).Err(); err != nil {
		return apperr.Upstream(linkStoreName, fmt.Errorf("redis_login_link_set_failed: %w", err))
	}

	return nil
}

/*
ConsumeLink redeems a login link exactly once.

Description: GETDEL reads and deletes in one round trip, so two concurrent
redemptions of the same link cannot both succeed.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - string: The email the link was issued to
  - error: apperr.NotFound or connectivity errors
*/
func (store *RedisLinkStore) ConsumeLink(context context.Context, tokenHash string) (string, error) {
	key := constants.RedisPrefixLoginLink + tokenHash

	email, err := store.client.GetDel(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Login link")
		}
		return "", apperr.Upstream(linkStoreName, fmt.Errorf("redis_login_link_getdel_failed: %w", err))
	}

	return email, nil
}
