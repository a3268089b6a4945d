// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

/*
Package constants provides centralized, immutable values for the platform.

It defines default timeouts, rate limits, taxonomy bounds, and cross-cutting
keys shared between layers.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Taxonomy: Hierarchy depth bound and cache namespaces.
  - Security: JWT issuer configuration.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "souqly-admin-api"
	AppVersion = "0.3.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out response writes.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long in-flight requests get to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often idle IP entries are purged from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Taxonomy

const (
	// MaxNestingDepth bounds tag hierarchy depth. The cycle guard's ancestor
	// walk and the tree builder's recursion both terminate within this bound.
	MaxNestingDepth = 10

	// TagCacheTTL is how long cached tag list results stay fresh.
	TagCacheTTL = 5 * time.Minute

	// TenantCacheTTL is how long cached tenant list results stay fresh.
	TenantCacheTTL = 10 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "souqly.app"

	// AccessTokenTTL is the lifetime of an issued access token.
	AccessTokenTTL = 15 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData   = "data"
	FieldMeta   = "meta"
	FieldError  = "error"
	FieldCode   = "code"
	FieldStatus = "status"
)

// # Cache Namespaces (scope segment of derived cache keys)

const (
	// CacheScopePlatform is the scope segment for shared-catalog keys.
	// Tenant-scoped keys use the tenant's own ID as the segment instead,
	// so one pattern delete clears exactly one tenant's entries.
	CacheScopePlatform = "platform"

	CacheCollectionTags    = "tags"
	CacheCollectionTenants = "tenants"
)
