// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

/*
Package cache implements the cache-aside layer for list queries.

It provides deterministic cache-key derivation from filter values, a
read-through wrapper with TTL semantics, and coarse pattern-based
invalidation of a collection's entire cache namespace after writes.

Architecture:

  - Cache: A small injected interface (Get/Set/Del/DeleteByPattern), so the
    Redis backend can be swapped for the in-memory [Memory] fake in tests
    and connection lifecycle stays explicit.
  - Source of truth: Always PostgreSQL. A cache backend failure is logged
    and treated as a miss on reads, and skipped silently on writes; it
    never fails the overall operation.
  - Consistency: Last write wins. There is no cross-store transaction
    between cache and database; callers invalidate the collection namespace
    after every mutation and accept one TTL window of staleness at most.
*/
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/souqly/souqly-api/internal/platform/ctxutil"
)

// Cache is the minimal key-value contract the read-through layer needs.
//
// Get reports a miss via found=false; an error indicates the backend is
// unreachable (which callers must treat as non-fatal).
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// GetOrCompute implements the read-through contract:
// attempt a cache read; on hit, decode and return without invoking compute.
// On miss, invoke compute, cache its JSON form with the given TTL, and
// return it.
//
// # Failure Semantics
//
// Cache unavailability must never fail the operation: a read error logs a
// warning and falls through to compute; a write error logs a warning and
// returns the computed value uncached. A hit that fails to decode (stale
// shape after a deploy) is treated as a miss.
func GetOrCompute[T any](ctx context.Context, c Cache, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	logger := ctxutil.GetLogger(ctx)

	raw, found, err := c.Get(ctx, key)
	if err != nil {
		logger.Warn("cache_read_failed", slog.String("key", key), slog.Any("error", err))
	} else if found {
		var cached T
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		logger.Warn("cache_decode_failed", slog.String("key", key))
	}

	computed, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	encoded, err := json.Marshal(computed)
	if err != nil {
		logger.Warn("cache_encode_failed", slog.String("key", key), slog.Any("error", err))
		return computed, nil
	}

	if err := c.Set(ctx, key, string(encoded), ttl); err != nil {
		logger.Warn("cache_write_failed", slog.String("key", key), slog.Any("error", err))
	}

	return computed, nil
}

// Invalidate deletes every key in a collection's namespace. Callers invoke
// it after any create/update/delete affecting the underlying collection so
// subsequent reads recompute fresh data. Failures are logged, not returned:
// the worst case is serving a stale entry until its TTL expires.
func Invalidate(ctx context.Context, c Cache, scope, collection string) {
	pattern := Pattern(scope, collection)
	if err := c.DeleteByPattern(ctx, pattern); err != nil {
		ctxutil.GetLogger(ctx).Warn("cache_invalidate_failed",
			slog.String("pattern", pattern),
			slog.Any("error", err),
		)
	}
}
