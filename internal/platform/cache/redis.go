// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements [Cache] on top of a go-redis client.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an established Redis client as a [Cache].
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get retrieves a value, reporting redis.Nil as a plain miss.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("cache: redis get failed: %w", err)
	}

	return value, true, nil
}

// Set stores a value with the provided TTL.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set failed: %w", err)
	}
	return nil
}

// Del removes the given keys.
func (r *Redis) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: redis del failed: %w", err)
	}
	return nil
}

// DeleteByPattern removes all keys matching a wildcard pattern.
//
// It iterates with SCAN rather than KEYS so large namespaces do not block
// the Redis event loop, deleting in batches as the cursor advances.
func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	const scanBatch = 256

	iter := r.client.Scan(ctx, 0, pattern, scanBatch).Iterator()

	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := r.Del(ctx, batch...); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache: redis scan failed: %w", err)
	}

	return r.Del(ctx, batch...)
}
