// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqly/souqly-api/internal/platform/cache"
)

type catalogRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

/*
TestGetOrCompute_MissThenHit verifies the read-through contract: the compute
function runs exactly once for repeated identical reads.
*/
func TestGetOrCompute_MissThenHit(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemory()
	key := cache.Key("tenant", "tags", "list", map[string]any{"category": "industry"})

	fetchCount := 0
	fetch := func(context.Context) ([]catalogRow, error) {
		fetchCount++
		return []catalogRow{{ID: "t1", Name: "Industry"}}, nil
	}

	first, err := cache.GetOrCompute(ctx, backend, key, time.Minute, fetch)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := cache.GetOrCompute(ctx, backend, key, time.Minute, fetch)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetchCount, "underlying fetch must be invoked exactly once")
}

/*
TestGetOrCompute_BackendDownFallsThrough verifies graceful degradation:
an unreachable backend never fails the operation, it only disables caching.
*/
func TestGetOrCompute_BackendDownFallsThrough(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemory()
	backend.Unavailable = true

	fetchCount := 0
	fetch := func(context.Context) (string, error) {
		fetchCount++
		return "fresh", nil
	}

	for i := 0; i < 2; i++ {
		value, err := cache.GetOrCompute(ctx, backend, "cache:t:x:y:abc", time.Minute, fetch)
		require.NoError(t, err)
		assert.Equal(t, "fresh", value)
	}

	assert.Equal(t, 2, fetchCount, "every read recomputes while the cache is down")
}

/*
TestGetOrCompute_TTLExpiry verifies that an expired entry triggers recompute.
*/
func TestGetOrCompute_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemory()

	fetchCount := 0
	fetch := func(context.Context) (int, error) {
		fetchCount++
		return 42, nil
	}

	_, err := cache.GetOrCompute(ctx, backend, "cache:t:n:k:1", time.Nanosecond, fetch)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = cache.GetOrCompute(ctx, backend, "cache:t:n:k:1", time.Nanosecond, fetch)
	require.NoError(t, err)

	assert.Equal(t, 2, fetchCount)
}

/*
TestGetOrCompute_ComputeErrorPropagates verifies that source-of-truth errors
are returned untouched and nothing is cached.
*/
func TestGetOrCompute_ComputeErrorPropagates(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemory()

	fetch := func(context.Context) (string, error) {
		return "", assert.AnError
	}

	_, err := cache.GetOrCompute(ctx, backend, "cache:t:n:k:2", time.Minute, fetch)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, backend.Len())
}

/*
TestInvalidate_PatternRemovesCollectionNamespace verifies coarse
invalidation: every key under the collection prefix is deleted, keys of
other collections survive.
*/
func TestInvalidate_PatternRemovesCollectionNamespace(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemory()

	require.NoError(t, backend.Set(ctx, cache.Key("tenant", "tags", "list", 1), "a", 0))
	require.NoError(t, backend.Set(ctx, cache.Key("tenant", "tags", "tree", 2), "b", 0))
	require.NoError(t, backend.Set(ctx, cache.Key("platform", "tenants", "list", 3), "c", 0))

	cache.Invalidate(ctx, backend, "tenant", "tags")

	_, found, err := backend.Get(ctx, cache.Key("tenant", "tags", "list", 1))
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = backend.Get(ctx, cache.Key("platform", "tenants", "list", 3))
	require.NoError(t, err)
	assert.True(t, found, "other collections must be untouched")
}

/*
TestInvalidate_BackendDownIsSilent verifies that invalidation failures are
swallowed — staleness until TTL is the accepted worst case.
*/
func TestInvalidate_BackendDownIsSilent(t *testing.T) {
	backend := cache.NewMemory()
	backend.Unavailable = true

	assert.NotPanics(t, func() {
		cache.Invalidate(context.Background(), backend, "tenant", "tags")
	})
}
