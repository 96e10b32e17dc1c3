// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/certrix/internal/platform/constants"
)

// RedisStore keeps session entries in Redis, namespaced per operator. Used
// on shared consoles (bastion hosts) where local files are undesirable.
//
// Keys follow the platform cache taxonomy: console:session:<owner>:<key>.
type RedisStore struct {
	client *redis.Client
	owner  string
}

// NewRedisStore wraps an existing client. owner disambiguates operators
// sharing one Redis (typically the OS username).
func NewRedisStore(client *redis.Client, owner string) *RedisStore {
	return &RedisStore{client: client, owner: owner}
}

// Get reads one entry. redis.Nil maps to (value "", ok false, err nil).
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("auth: redis get %s failed: %w", key, err)
	}
	return value, true, nil
}

// Set writes one entry. Sessions carry no client-side TTL; expiry is the
// backend token's job and the 401 path clears stale entries.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("auth: redis set %s failed: %w", key, err)
	}
	return nil
}

// Delete removes one entry; deleting an absent entry is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("auth: redis delete %s failed: %w", key, err)
	}
	return nil
}

func (s *RedisStore) redisKey(key string) string {
	return constants.RedisPrefixSession + s.owner + ":" + key
}
