// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/souqly/souqly-api/internal/platform/apperr"
)

// RedisSessionRepository stores refresh sessions as hashed-token keys with
// a TTL, so expiry and revocation need no background sweeper.
type RedisSessionRepository struct {
	client *redis.Client
}

func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionKey(tokenHash string) string {
	return fmt.Sprintf("auth:refresh_token:%s", tokenHash)
}

func (repository *RedisSessionRepository) Set(context context.Context, tokenHash, userID string, ttl time.Duration) error {
	if err := repository.client.Set(context, sessionKey(tokenHash), userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

func (repository *RedisSessionRepository) Get(context context.Context, tokenHash string) (string, error) {
	userID, err := repository.client.Get(context, sessionKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.Unauthorized("Invalid or expired refresh token")
		}
		return "", fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return userID, nil
}

func (repository *RedisSessionRepository) Delete(context context.Context, tokenHash string) error {
	if err := repository.client.Del(context, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
