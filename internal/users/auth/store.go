// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package auth

import (
	"context"
	"time"
)

// AccountRepository is the persistence contract for user accounts.
type AccountRepository interface {
	FindByID(context context.Context, id string) (*Account, error)
	FindByEmail(context context.Context, email string) (*Account, error)
	Create(context context.Context, account *Account) error
	UpdatePassword(context context.Context, id, passwordHash string) error
	SetActive(context context.Context, id string, active bool) error
}

// SessionRepository tracks refresh tokens by hash. Implemented on Redis:
// expiry falls out of the key TTL and revocation is a delete.
type SessionRepository interface {
	Set(context context.Context, tokenHash, userID string, ttl time.Duration) error
	Get(context context.Context, tokenHash string) (string, error)
	Delete(context context.Context, tokenHash string) error
}
