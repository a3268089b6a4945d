// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

// Package ctxkey defines the private key types used for context values.
//
// Using a dedicated unexported type prevents collisions with keys defined
// by other packages or third-party middleware.
package ctxkey

type contextKey string

const (
	// KeyRequestID stores the per-request correlation ID.
	KeyRequestID contextKey = "request_id"

	// KeyLogger stores the request-scoped *slog.Logger.
	KeyLogger contextKey = "logger"

	// KeyUser stores the authenticated *sec.AuthClaims.
	KeyUser contextKey = "user_claims"
)
