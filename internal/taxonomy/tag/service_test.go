// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package tag_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqly/souqly-api/internal/platform/apperr"
	"github.com/souqly/souqly-api/internal/platform/cache"
	"github.com/souqly/souqly-api/internal/taxonomy/tag"
)

// fakeRepo is an in-memory Repository used to exercise service rules
// without a database.
type fakeRepo struct {
	tags     map[string]*tag.Tag
	adopted  map[string]map[string]bool // tenantID -> tagID -> adopted
	listOwns int
}

func newFakeRepo(seed ...*tag.Tag) *fakeRepo {
	repo := &fakeRepo{
		tags:    make(map[string]*tag.Tag),
		adopted: make(map[string]map[string]bool),
	}
	for _, t := range seed {
		copied := *t
		repo.tags[t.ID] = &copied
	}
	return repo
}

func (r *fakeRepo) ListOwn(_ context.Context, scope tag.Scope, tenantID *string) ([]*tag.Tag, error) {
	r.listOwns++
	var out []*tag.Tag
	for _, t := range r.tags {
		if t.Scope != scope {
			continue
		}
		if scope == tag.ScopeTenant && (t.TenantID == nil || *t.TenantID != *tenantID) {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeRepo) ListAdopted(_ context.Context, tenantID string) ([]*tag.Tag, error) {
	var out []*tag.Tag
	for tagID := range r.adopted[tenantID] {
		if t, ok := r.tags[tagID]; ok {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*tag.Tag, error) {
	t, ok := r.tags[id]
	if !ok {
		return nil, apperr.NotFound("Tag")
	}
	copied := *t
	return &copied, nil
}

func (r *fakeRepo) GetBySlug(_ context.Context, scope tag.Scope, tenantID *string, slug string) (*tag.Tag, error) {
	for _, t := range r.tags {
		if t.Scope != scope || t.Slug != slug {
			continue
		}
		if scope == tag.ScopeTenant && (t.TenantID == nil || *t.TenantID != *tenantID) {
			continue
		}
		copied := *t
		return &copied, nil
	}
	return nil, apperr.NotFound("Tag")
}

func (r *fakeRepo) Create(_ context.Context, t *tag.Tag) error {
	copied := *t
	r.tags[t.ID] = &copied
	return nil
}

func (r *fakeRepo) Update(_ context.Context, t *tag.Tag) error {
	if _, ok := r.tags[t.ID]; !ok {
		return apperr.NotFound("Tag")
	}
	copied := *t
	r.tags[t.ID] = &copied
	return nil
}

func (r *fakeRepo) UpdateParent(_ context.Context, id string, parentID *string) error {
	t, ok := r.tags[id]
	if !ok {
		return apperr.NotFound("Tag")
	}
	t.ParentID = parentID
	return nil
}

func (r *fakeRepo) SetActive(_ context.Context, id string, active bool) error {
	t, ok := r.tags[id]
	if !ok {
		return apperr.NotFound("Tag")
	}
	t.IsActive = active
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tags[id]; !ok {
		return apperr.NotFound("Tag")
	}
	delete(r.tags, id)
	return nil
}

func (r *fakeRepo) CountChildren(_ context.Context, id string) (int, error) {
	count := 0
	for _, t := range r.tags {
		if t.ParentID != nil && *t.ParentID == id {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) IsAdopted(_ context.Context, tagID, tenantID string) (bool, error) {
	return r.adopted[tenantID][tagID], nil
}

func (r *fakeRepo) Adopt(_ context.Context, _, tagID, tenantID string) error {
	if r.adopted[tenantID] == nil {
		r.adopted[tenantID] = make(map[string]bool)
	}
	if r.adopted[tenantID][tagID] {
		return apperr.Conflict("Tag is already inherited by this tenant")
	}
	r.adopted[tenantID][tagID] = true
	return nil
}

func (r *fakeRepo) Unadopt(_ context.Context, tagID, tenantID string) error {
	if !r.adopted[tenantID][tagID] {
		return apperr.NotFound("Inheritance marker")
	}
	delete(r.adopted[tenantID], tagID)
	return nil
}

func (r *fakeRepo) AttachEntity(_ context.Context, link *tag.EntityTag) error {
	t, ok := r.tags[link.TagID]
	if !ok {
		return apperr.NotFound("Tag")
	}
	t.UsageCount++
	return nil
}

func (r *fakeRepo) DetachEntity(_ context.Context, tagID, _, _ string) error {
	t, ok := r.tags[tagID]
	if !ok {
		return apperr.NotFound("Tag association")
	}
	if t.UsageCount > 0 {
		t.UsageCount--
	}
	return nil
}

func newTestService(repo tag.Repository) (*tag.Service, *cache.Memory) {
	memory := cache.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return tag.NewService(repo, memory, nil, logger), memory
}

/*
TestService_Create verifies slug derivation and the duplicate-slug
conflict within a scope.
*/
func TestService_Create(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	ctx := context.Background()

	// 1. Slug is derived from the name
	created, err := service.Create(ctx, tag.PlatformScope(), tag.CreateInput{Name: "Home & Garden"})
	require.NoError(t, err)
	assert.Equal(t, "home-garden", created.Slug)
	assert.True(t, created.IsActive)
	assert.Equal(t, tag.ScopePlatform, created.Scope)

	// 2. A name collapsing to the same slug is a conflict, not a suffix
	_, err = service.Create(ctx, tag.PlatformScope(), tag.CreateInput{Name: "home garden"})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	// 3. The same slug in a different scope is fine
	_, err = service.Create(ctx, tag.TenantScope("tenant-1"), tag.CreateInput{Name: "Home & Garden"})
	assert.NoError(t, err)
}

/*
TestService_Create_Validation verifies name requirements.
*/
func TestService_Create_Validation(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)

	_, err := service.Create(context.Background(), tag.PlatformScope(), tag.CreateInput{Name: "   "})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	_, err = service.Create(context.Background(), tag.PlatformScope(), tag.CreateInput{Name: "!!!"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestService_Move_CycleRejected verifies that a reparenting which would
make a tag its own ancestor fails with CYCLE_DETECTED and leaves the
hierarchy untouched.
*/
func TestService_Move_CycleRejected(t *testing.T) {
	repo := newFakeRepo(
		&tag.Tag{ID: "a", Name: "A", Slug: "a", Scope: tag.ScopePlatform},
		&tag.Tag{ID: "b", Name: "B", Slug: "b", Scope: tag.ScopePlatform, ParentID: strptr("a")},
		&tag.Tag{ID: "c", Name: "C", Slug: "c", Scope: tag.ScopePlatform, ParentID: strptr("b")},
	)
	service, _ := newTestService(repo)
	ctx := context.Background()

	// 1. Moving the root under its grandchild is a cycle
	_, err := service.Move(ctx, tag.PlatformScope(), "a", strptr("c"))
	require.Error(t, err)
	assert.Equal(t, "CYCLE_DETECTED", apperr.As(err).Code)

	// 2. The tree is unchanged
	stored, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, stored.ParentID)

	// 3. A safe move in the other direction succeeds
	moved, err := service.Move(ctx, tag.PlatformScope(), "c", strptr("a"))
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, "a", *moved.ParentID)
}

/*
TestService_Move_DepthBound verifies that the nesting bound accounts for
the moved tag's descendants, not just the tag itself.
*/
func TestService_Move_DepthBound(t *testing.T) {
	// 1. Target chain d0 → ... → d7, so a child of d7 sits at depth 8
	seed := []*tag.Tag{{ID: "d0", Name: "D0", Slug: "d0", Scope: tag.ScopePlatform}}
	for i := 1; i <= 7; i++ {
		seed = append(seed, &tag.Tag{
			ID:       fmt.Sprintf("d%d", i),
			Name:     fmt.Sprintf("D%d", i),
			Slug:     fmt.Sprintf("d%d", i),
			Scope:    tag.ScopePlatform,
			ParentID: strptr(fmt.Sprintf("d%d", i-1)),
		})
	}
	// 2. m carries a two-level subtree: m → x → y
	seed = append(seed,
		&tag.Tag{ID: "m", Name: "M", Slug: "m", Scope: tag.ScopePlatform},
		&tag.Tag{ID: "x", Name: "X", Slug: "x", Scope: tag.ScopePlatform, ParentID: strptr("m")},
		&tag.Tag{ID: "y", Name: "Y", Slug: "y", Scope: tag.ScopePlatform, ParentID: strptr("x")},
	)
	repo := newFakeRepo(seed...)
	service, _ := newTestService(repo)
	ctx := context.Background()

	// 3. The subtree would push y past the bound even though m itself fits
	_, err := service.Move(ctx, tag.PlatformScope(), "m", strptr("d7"))
	require.Error(t, err)
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)

	// 4. The leaf alone still fits under the same parent
	_, err = service.Move(ctx, tag.PlatformScope(), "y", strptr("d7"))
	assert.NoError(t, err)
}

/*
TestService_Delete_Protections verifies the three deletion guards:
system tags, tags in use, and tags with children.
*/
func TestService_Delete_Protections(t *testing.T) {
	repo := newFakeRepo(
		&tag.Tag{ID: "sys", Name: "Verified", Slug: "verified", Scope: tag.ScopePlatform, IsSystem: true},
		&tag.Tag{ID: "used", Name: "Popular", Slug: "popular", Scope: tag.ScopePlatform, UsageCount: 3},
		&tag.Tag{ID: "parent", Name: "Parent", Slug: "parent", Scope: tag.ScopePlatform},
		&tag.Tag{ID: "child", Name: "Child", Slug: "child", Scope: tag.ScopePlatform, ParentID: strptr("parent")},
	)
	service, _ := newTestService(repo)
	ctx := context.Background()

	t.Run("system tag is protected", func(t *testing.T) {
		err := service.Delete(ctx, tag.PlatformScope(), "sys")
		require.Error(t, err)
		assert.Equal(t, "PROTECTED_RESOURCE", apperr.As(err).Code)
	})

	t.Run("tag in use is blocked", func(t *testing.T) {
		err := service.Delete(ctx, tag.PlatformScope(), "used")
		require.Error(t, err)
		assert.Equal(t, "IN_USE", apperr.As(err).Code)
	})

	t.Run("tag with children is blocked", func(t *testing.T) {
		err := service.Delete(ctx, tag.PlatformScope(), "parent")
		require.Error(t, err)
		assert.Equal(t, "IN_USE", apperr.As(err).Code)
	})

	t.Run("leaf without usage deletes", func(t *testing.T) {
		require.NoError(t, service.Delete(ctx, tag.PlatformScope(), "child"))
	})

	t.Run("in-use tag can still be deactivated", func(t *testing.T) {
		deactivated, err := service.SetActive(ctx, tag.PlatformScope(), "used", false)
		require.NoError(t, err)
		assert.False(t, deactivated.IsActive)
	})
}

/*
TestService_Visibility verifies strict scope isolation on direct ID
lookups: foreign tenant tags and unadopted platform tags both read as
NOT_FOUND.
*/
func TestService_Visibility(t *testing.T) {
	tenantA := "tenant-a"
	tenantB := "tenant-b"
	repo := newFakeRepo(
		&tag.Tag{ID: "plat", Name: "Shared", Slug: "shared", Scope: tag.ScopePlatform},
		&tag.Tag{ID: "mine", Name: "Mine", Slug: "mine", Scope: tag.ScopeTenant, TenantID: &tenantA},
		&tag.Tag{ID: "theirs", Name: "Theirs", Slug: "theirs", Scope: tag.ScopeTenant, TenantID: &tenantB},
	)
	service, _ := newTestService(repo)
	ctx := context.Background()

	// 1. Own tag resolves
	got, err := service.Get(ctx, tag.TenantScope(tenantA), "mine")
	require.NoError(t, err)
	assert.Nil(t, got.InheritedFrom)

	// 2. Another tenant's tag is NOT_FOUND, not FORBIDDEN
	_, err = service.Get(ctx, tag.TenantScope(tenantA), "theirs")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	// 3. An unadopted platform tag is invisible even by ID
	_, err = service.Get(ctx, tag.TenantScope(tenantA), "plat")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	// 4. After adoption it resolves, annotated with provenance
	require.NoError(t, service.Adopt(ctx, "plat", tenantA))
	got, err = service.Get(ctx, tag.TenantScope(tenantA), "plat")
	require.NoError(t, err)
	require.NotNil(t, got.InheritedFrom)
	assert.Equal(t, tag.ScopePlatform, *got.InheritedFrom)

	// 5. Platform callers see everything
	_, err = service.Get(ctx, tag.PlatformScope(), "theirs")
	assert.NoError(t, err)
}

/*
TestService_Resolve_MergesInherited verifies the merged result set for a
tenant opting into inherited tags.
*/
func TestService_Resolve_MergesInherited(t *testing.T) {
	tenantA := "tenant-a"
	repo := newFakeRepo(
		&tag.Tag{ID: "plat-1", Name: "Shared", Slug: "shared", Scope: tag.ScopePlatform},
		&tag.Tag{ID: "plat-2", Name: "Unadopted", Slug: "unadopted", Scope: tag.ScopePlatform},
		&tag.Tag{ID: "own-1", Name: "Local", Slug: "local", Scope: tag.ScopeTenant, TenantID: &tenantA},
	)
	require.NoError(t, repo.Adopt(context.Background(), "m1", "plat-1", tenantA))
	service, _ := newTestService(repo)
	ctx := context.Background()

	// 1. Without the flag only own tags appear
	tags, err := service.Resolve(ctx, tag.TenantScope(tenantA), tag.ResolveOptions{})
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "own-1", tags[0].ID)

	// 2. With the flag the adopted platform tag joins, annotated; the
	// unadopted one stays invisible
	tags, err = service.Resolve(ctx, tag.TenantScope(tenantA), tag.ResolveOptions{IncludeInherited: true})
	require.NoError(t, err)
	require.Len(t, tags, 2)

	byID := make(map[string]*tag.Tag, 2)
	for _, rt := range tags {
		byID[rt.ID] = rt
	}
	require.Contains(t, byID, "plat-1")
	require.NotNil(t, byID["plat-1"].InheritedFrom)
	assert.Nil(t, byID["own-1"].InheritedFrom)
	assert.NotContains(t, byID, "plat-2")
}

/*
TestService_Resolve_CacheLifecycle verifies the read-through behavior: a
repeat query is served from cache, and a mutation invalidates it.
*/
func TestService_Resolve_CacheLifecycle(t *testing.T) {
	repo := newFakeRepo(
		&tag.Tag{ID: "t1", Name: "One", Slug: "one", Scope: tag.ScopePlatform},
	)
	service, _ := newTestService(repo)
	ctx := context.Background()

	// 1. First resolve hits the repository
	_, err := service.Resolve(ctx, tag.PlatformScope(), tag.ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listOwns)

	// 2. Second identical resolve is a cache hit
	_, err = service.Resolve(ctx, tag.PlatformScope(), tag.ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listOwns)

	// 3. A mutation invalidates the namespace; the next resolve recomputes
	_, err = service.Create(ctx, tag.PlatformScope(), tag.CreateInput{Name: "Two"})
	require.NoError(t, err)

	tags, err := service.Resolve(ctx, tag.PlatformScope(), tag.ResolveOptions{})
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

/*
TestService_Resolve_CacheDegradation verifies that a dead cache backend
degrades to direct repository reads instead of failing requests.
*/
func TestService_Resolve_CacheDegradation(t *testing.T) {
	repo := newFakeRepo(
		&tag.Tag{ID: "t1", Name: "One", Slug: "one", Scope: tag.ScopePlatform},
	)
	service, memory := newTestService(repo)
	memory.Unavailable = true
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		tags, err := service.Resolve(ctx, tag.PlatformScope(), tag.ResolveOptions{})
		require.NoError(t, err)
		assert.Len(t, tags, 1)
	}

	// Every read went to the repository while the backend was down
	assert.Equal(t, 2, repo.listOwns)
}

/*
TestService_Adopt verifies inheritance marker rules.
*/
func TestService_Adopt(t *testing.T) {
	tenantA := "tenant-a"
	repo := newFakeRepo(
		&tag.Tag{ID: "plat", Name: "Shared", Slug: "shared", Scope: tag.ScopePlatform},
		&tag.Tag{ID: "own", Name: "Local", Slug: "local", Scope: tag.ScopeTenant, TenantID: &tenantA},
	)
	service, _ := newTestService(repo)
	ctx := context.Background()

	// 1. Only platform tags can be inherited
	err := service.Adopt(ctx, "own", tenantA)
	require.Error(t, err)
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)

	// 2. First adoption succeeds, repeat is a conflict
	require.NoError(t, service.Adopt(ctx, "plat", tenantA))
	err = service.Adopt(ctx, "plat", tenantA)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	// 3. Unadopt removes visibility again
	require.NoError(t, service.Unadopt(ctx, "plat", tenantA))
	_, err = service.Get(ctx, tag.TenantScope(tenantA), "plat")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestService_MutationGuards verifies that tenant callers cannot mutate
inherited platform tags and nobody mutates system tags.
*/
func TestService_MutationGuards(t *testing.T) {
	tenantA := "tenant-a"
	repo := newFakeRepo(
		&tag.Tag{ID: "plat", Name: "Shared", Slug: "shared", Scope: tag.ScopePlatform},
		&tag.Tag{ID: "sys", Name: "Verified", Slug: "verified", Scope: tag.ScopePlatform, IsSystem: true},
	)
	require.NoError(t, repo.Adopt(context.Background(), "m1", "plat", tenantA))
	service, _ := newTestService(repo)
	ctx := context.Background()

	// 1. Adopted tags are readable but not writable by the tenant
	newName := "Renamed"
	_, err := service.Update(ctx, tag.TenantScope(tenantA), "plat", tag.UpdateInput{Name: &newName})
	require.Error(t, err)
	assert.Equal(t, "PROTECTED_RESOURCE", apperr.As(err).Code)

	// 2. System tags reject updates even from the platform
	_, err = service.Update(ctx, tag.PlatformScope(), "sys", tag.UpdateInput{Name: &newName})
	require.Error(t, err)
	assert.Equal(t, "PROTECTED_RESOURCE", apperr.As(err).Code)
}

/*
TestService_EntityAssociations verifies attach/detach and the usage count
denormalization.
*/
func TestService_EntityAssociations(t *testing.T) {
	repo := newFakeRepo(
		&tag.Tag{ID: "t1", Name: "One", Slug: "one", Scope: tag.ScopePlatform, IsActive: true},
	)
	service, _ := newTestService(repo)
	ctx := context.Background()

	// 1. Attach bumps usage
	link, err := service.AttachEntity(ctx, tag.PlatformScope(), "t1", "product", "prod-9")
	require.NoError(t, err)
	assert.Equal(t, "t1", link.TagID)

	stored, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)

	// 2. Detach drops it back
	require.NoError(t, service.DetachEntity(ctx, tag.PlatformScope(), "t1", "product", "prod-9"))
	stored, err = repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.UsageCount)

	// 3. Missing fields are rejected up front
	_, err = service.AttachEntity(ctx, tag.PlatformScope(), "t1", "", "")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestService_AttachEntity_InvalidatesOwningScope verifies that a tenant
attaching through an adopted platform tag refreshes the platform's cached
lists, not just the tenant's: usage counts live on the owning scope.
*/
func TestService_AttachEntity_InvalidatesOwningScope(t *testing.T) {
	tenantA := "tenant-a"
	repo := newFakeRepo(
		&tag.Tag{ID: "plat", Name: "Shared", Slug: "shared", Scope: tag.ScopePlatform, IsActive: true},
	)
	require.NoError(t, repo.Adopt(context.Background(), "m1", "plat", tenantA))
	service, _ := newTestService(repo)
	ctx := context.Background()

	// 1. Warm the platform-scope cache with usage at zero
	tags, err := service.Resolve(ctx, tag.PlatformScope(), tag.ResolveOptions{})
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, 0, tags[0].UsageCount)

	// 2. A tenant attaches an entity through the adopted tag
	_, err = service.AttachEntity(ctx, tag.TenantScope(tenantA), "plat", "product", "prod-1")
	require.NoError(t, err)

	// 3. The platform resolve reflects the bump instead of the stale entry
	tags, err = service.Resolve(ctx, tag.PlatformScope(), tag.ResolveOptions{})
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, 1, tags[0].UsageCount)

	// 4. Detaching through the tenant refreshes it the same way
	require.NoError(t, service.DetachEntity(ctx, tag.TenantScope(tenantA), "plat", "product", "prod-1"))
	tags, err = service.Resolve(ctx, tag.PlatformScope(), tag.ResolveOptions{})
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, 0, tags[0].UsageCount)
}
