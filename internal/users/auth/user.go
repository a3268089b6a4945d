// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

/*
Package auth implements identity for the admin platform: account
registration, credential verification, and session lifecycle.

Access tokens are short-lived RSA-signed JWTs carrying the caller's role
and tenant binding; refresh tokens are opaque, stored hashed in Redis, and
rotated on every use.
*/
package auth

import (
	"time"

	"github.com/souqly/souqly-api/internal/platform/sec"
)

// Account is an administrative user of the platform or of one tenant.
type Account struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	Password    string       `json:"-"`
	DisplayName string       `json:"display_name"`
	Role        sec.UserRole `json:"role"`

	// TenantID binds the account to one tenant; nil accounts act in the
	// platform scope.
	TenantID *string `json:"tenant_id,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Token Lifetimes

const (
	// RefreshTokenTTL bounds how long an idle session stays resumable.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// refreshTokenBytes is the refresh token entropy.
	refreshTokenBytes = 32
)
