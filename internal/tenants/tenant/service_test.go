// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package tenant_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqly/souqly-api/internal/platform/apperr"
	"github.com/souqly/souqly-api/internal/platform/cache"
	"github.com/souqly/souqly-api/internal/tenants/tenant"
)

type fakeRepo struct {
	tenants   map[string]*tenant.Tenant
	tagCounts map[string]int
	listCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tenants:   make(map[string]*tenant.Tenant),
		tagCounts: make(map[string]int),
	}
}

func (r *fakeRepo) List(_ context.Context, filter tenant.ListFilter) ([]*tenant.Tenant, error) {
	r.listCalls++
	var out []*tenant.Tenant
	for _, t := range r.tenants {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Plan != nil && t.Plan != *filter.Plan {
			continue
		}
		if filter.Search != nil && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(*filter.Search)) {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*tenant.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok {
		return nil, apperr.NotFound("Tenant")
	}
	copied := *t
	return &copied, nil
}

func (r *fakeRepo) GetBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	for _, t := range r.tenants {
		if t.Slug == slug {
			copied := *t
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Tenant")
}

func (r *fakeRepo) Create(_ context.Context, t *tenant.Tenant) error {
	copied := *t
	r.tenants[t.ID] = &copied
	return nil
}

func (r *fakeRepo) Update(_ context.Context, t *tenant.Tenant) error {
	if _, ok := r.tenants[t.ID]; !ok {
		return apperr.NotFound("Tenant")
	}
	copied := *t
	r.tenants[t.ID] = &copied
	return nil
}

func (r *fakeRepo) SetStatus(_ context.Context, id string, status tenant.Status) error {
	t, ok := r.tenants[id]
	if !ok {
		return apperr.NotFound("Tenant")
	}
	t.Status = status
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tenants[id]; !ok {
		return apperr.NotFound("Tenant")
	}
	delete(r.tenants, id)
	return nil
}

func (r *fakeRepo) CountTags(_ context.Context, id string) (int, error) {
	return r.tagCounts[id], nil
}

func newTestService(repo *fakeRepo) *tenant.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return tenant.NewService(repo, cache.NewMemory(), nil, logger)
}

/*
TestService_Create verifies registration defaults and slug conflicts.
*/
func TestService_Create(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(repo)
	ctx := context.Background()

	// 1. Plan defaults to free, status to active, slug derived from name
	created, err := service.Create(ctx, tenant.CreateInput{Name: "Acme Market"})
	require.NoError(t, err)
	assert.Equal(t, "acme-market", created.Slug)
	assert.Equal(t, tenant.StatusActive, created.Status)
	assert.Equal(t, tenant.PlanFree, created.Plan)

	// 2. Names collapsing to the same slug conflict
	_, err = service.Create(ctx, tenant.CreateInput{Name: "ACME market", Plan: tenant.PlanPro})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	// 3. Unknown plans are rejected
	_, err = service.Create(ctx, tenant.CreateInput{Name: "Other", Plan: "platinum"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestService_List_Caching verifies the read-through cache and its
invalidation on mutation.
*/
func TestService_List_Caching(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(repo)
	ctx := context.Background()

	_, err := service.Create(ctx, tenant.CreateInput{Name: "Acme"})
	require.NoError(t, err)
	repo.listCalls = 0

	// 1. First list computes, second identical list hits the cache
	_, err = service.List(ctx, tenant.ListFilter{})
	require.NoError(t, err)
	_, err = service.List(ctx, tenant.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	// 2. Different filters get their own entries
	active := tenant.StatusActive
	_, err = service.List(ctx, tenant.ListFilter{Status: &active})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)

	// 3. A mutation invalidates the namespace
	_, err = service.Create(ctx, tenant.CreateInput{Name: "Beta"})
	require.NoError(t, err)

	tenants, err := service.List(ctx, tenant.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, tenants, 2)
}

/*
TestService_SuspendReinstate verifies the status toggles and their
idempotency guards.
*/
func TestService_SuspendReinstate(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, tenant.CreateInput{Name: "Acme"})
	require.NoError(t, err)

	// 1. Suspend flips the status
	suspended, err := service.Suspend(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusSuspended, suspended.Status)

	// 2. Suspending twice is a conflict, not a no-op
	_, err = service.Suspend(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	// 3. Reinstate brings it back
	reinstated, err := service.Reinstate(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusActive, reinstated.Status)
}

/*
TestService_Delete_GuardedByTags verifies that tenants owning taxonomy
data cannot be deleted.
*/
func TestService_Delete_GuardedByTags(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, tenant.CreateInput{Name: "Acme"})
	require.NoError(t, err)
	repo.tagCounts[created.ID] = 12

	// 1. Live tags block deletion
	err = service.Delete(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, "IN_USE", apperr.As(err).Code)

	// 2. Once the data is gone, deletion proceeds
	repo.tagCounts[created.ID] = 0
	require.NoError(t, service.Delete(ctx, created.ID))

	_, err = service.Get(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
