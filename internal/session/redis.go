// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// redisKeyPrefix namespaces every key written by RedisStorage.
const redisKeyPrefix = "authdemo:session:"

// RedisStorage stores session values in Redis. Every write refreshes the
// key's TTL, so abandoned browser sessions expire on their own.
type RedisStorage struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStorage creates a RedisStorage. A zero ttl stores keys without expiry.
func NewRedisStorage(client redis.UniversalClient, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and returns a client for it.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, oops.Code("SESSION_REDIS_CONFIG").With("operation", "parse redis url").Wrap(err)
	}
	return redis.NewClient(opts), nil
}

func redisKey(scope, key string) string {
	return redisKeyPrefix + scope + ":" + key
}

// Get implements Storage.
func (s *RedisStorage) Get(ctx context.Context, scope, key string) (string, error) {
	v, err := s.client.Get(ctx, redisKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", oops.Code("SESSION_STORAGE_READ").
			With("backend", "redis").
			With("scope", scope).
			Wrap(err)
	}
	return v, nil
}

// Set implements Storage.
func (s *RedisStorage) Set(ctx context.Context, scope, key, value string) error {
	if err := s.client.Set(ctx, redisKey(scope, key), value, s.ttl).Err(); err != nil {
		return oops.Code("SESSION_STORAGE_WRITE").
			With("backend", "redis").
			With("scope", scope).
			Wrap(err)
	}
	return nil
}

// Delete implements Storage.
func (s *RedisStorage) Delete(ctx context.Context, scope, key string) error {
	if err := s.client.Del(ctx, redisKey(scope, key)).Err(); err != nil {
		return oops.Code("SESSION_STORAGE_DELETE").
			With("backend", "redis").
			With("scope", scope).
			Wrap(err)
	}
	return nil
}

// Ping checks connectivity.
func (s *RedisStorage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return oops.Code("SESSION_REDIS_UNAVAILABLE").Wrap(err)
	}
	return nil
}
