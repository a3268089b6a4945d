// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package tag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/souqly/souqly-api/internal/platform/apperr"
	"github.com/souqly/souqly-api/internal/platform/cache"
	"github.com/souqly/souqly-api/internal/platform/constants"
	"github.com/souqly/souqly-api/internal/platform/validate"
	"github.com/souqly/souqly-api/pkg/slug"
	"github.com/souqly/souqly-api/pkg/uuidv7"
)

// ScopeRef identifies the scope a caller operates in: the shared platform
// catalog, or one tenant's private set. TenantID is non-nil exactly when
// Scope is [ScopeTenant].
type ScopeRef struct {
	Scope    Scope
	TenantID *string
}

// PlatformScope returns the reference for the shared catalog.
func PlatformScope() ScopeRef {
	return ScopeRef{Scope: ScopePlatform}
}

// TenantScope returns the reference for one tenant's private set.
func TenantScope(tenantID string) ScopeRef {
	return ScopeRef{Scope: ScopeTenant, TenantID: &tenantID}
}

// Auditor records administrative mutations. Satisfied by the audit service;
// declared here so the taxonomy does not import it.
type Auditor interface {
	Record(context context.Context, action, resourceType, resourceID string, detail map[string]any)
}

// CreateInput carries the client-supplied fields for a new tag.
type CreateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
	IsFeatured  bool    `json:"is_featured"`
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsFeatured  *bool   `json:"is_featured,omitempty"`
}

type Service struct {
	repo    Repository
	cache   cache.Cache
	auditor Auditor
	logger  *slog.Logger
}

func NewService(repo Repository, c cache.Cache, auditor Auditor, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   c,
		auditor: auditor,
		logger:  logger,
	}
}

// # Reads

// Resolve returns the tags visible in the given scope, filtered by opts.
//
// For a tenant scope with IncludeInherited set, the result merges the
// tenant's own tags with the platform tags it has adopted, annotated with
// provenance. Results are served through the read-through cache; two calls
// with deeply equal options share one cache entry.
func (service *Service) Resolve(ctx context.Context, ref ScopeRef, opts ResolveOptions) ([]*Tag, error) {
	key := cache.Key(cacheScope(ref), constants.CacheCollectionTags, "list", opts)

	return cache.GetOrCompute(ctx, service.cache, key, constants.TagCacheTTL,
		func(ctx context.Context) ([]*Tag, error) {
			merged, err := service.visibleSet(ctx, ref, opts.IncludeInherited)
			if err != nil {
				return nil, err
			}
			return Filter(merged, opts), nil
		})
}

// Tree returns the scope's visible tags as a nested hierarchy.
func (service *Service) Tree(ctx context.Context, ref ScopeRef, includeInherited bool) ([]*TreeNode, error) {
	filter := struct {
		IncludeInherited bool `json:"include_inherited"`
	}{IncludeInherited: includeInherited}
	key := cache.Key(cacheScope(ref), constants.CacheCollectionTags, "tree", filter)

	return cache.GetOrCompute(ctx, service.cache, key, constants.TagCacheTTL,
		func(ctx context.Context) ([]*TreeNode, error) {
			merged, err := service.visibleSet(ctx, ref, includeInherited)
			if err != nil {
				return nil, err
			}
			return BuildTree(merged), nil
		})
}

// Get fetches a single tag by ID, enforcing scope visibility.
//
// A tenant caller asking for another tenant's tag, or for a platform tag it
// has not adopted, gets NOT_FOUND rather than FORBIDDEN so the lookup does
// not confirm the tag exists.
func (service *Service) Get(context context.Context, ref ScopeRef, id string) (*Tag, error) {
	t, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	visible, err := service.isVisible(context, ref, t)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, apperr.NotFound("Tag")
	}

	if ref.Scope == ScopeTenant && t.Scope == ScopePlatform {
		platform := ScopePlatform
		annotated := *t
		annotated.InheritedFrom = &platform
		return &annotated, nil
	}
	return t, nil
}

// # Mutations

// Create adds a tag to the caller's scope. The slug is derived from the
// name; a collision within the scope is a conflict, not a silent suffix.
func (service *Service) Create(context context.Context, ref ScopeRef, input CreateInput) (*Tag, error) {
	v := &validate.Validator{}
	v.Required("name", input.Name).MaxLen("name", input.Name, 100)
	if input.Category != nil {
		v.MaxLen("category", *input.Category, 50)
	}
	if input.ParentID != nil {
		v.UUID("parent_id", *input.ParentID)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	tagSlug := slug.From(input.Name)
	if tagSlug == "" {
		return nil, apperr.ValidationError("Name must contain at least one alphanumeric character")
	}

	if _, err := service.repo.GetBySlug(context, ref.Scope, ref.TenantID, tagSlug); err == nil {
		return nil, apperr.Conflict("A tag with this slug already exists in this scope")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	if input.ParentID != nil {
		if err := service.checkParent(context, ref, *input.ParentID); err != nil {
			return nil, err
		}

		snapshot, err := service.repo.ListOwn(context, ref.Scope, ref.TenantID)
		if err != nil {
			return nil, err
		}
		if Depth(*input.ParentID, ParentLookupFrom(snapshot))+1 >= constants.MaxNestingDepth {
			return nil, apperr.Unprocessable(
				fmt.Sprintf("Maximum nesting depth of %d exceeded", constants.MaxNestingDepth))
		}
	}

	t := &Tag{
		ID:          uuidv7.New(),
		Scope:       ref.Scope,
		TenantID:    ref.TenantID,
		ParentID:    input.ParentID,
		Name:        input.Name,
		Slug:        tagSlug,
		Description: input.Description,
		Category:    input.Category,
		IsActive:    true,
		IsFeatured:  input.IsFeatured,
	}

	if err := service.repo.Create(context, t); err != nil {
		return nil, err
	}

	service.invalidate(context, ref)
	service.audit(context, "tag.create", t.ID, map[string]any{"name": t.Name, "scope": string(t.Scope)})
	return t, nil
}

// Update applies a partial update. System tags and inherited platform tags
// are rejected outright rather than silently skipped.
func (service *Service) Update(context context.Context, ref ScopeRef, id string, input UpdateInput) (*Tag, error) {
	t, err := service.mutableTag(context, ref, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		v := &validate.Validator{}
		if err := v.Required("name", *input.Name).MaxLen("name", *input.Name, 100).Err(); err != nil {
			return nil, err
		}

		newSlug := slug.From(*input.Name)
		if newSlug == "" {
			return nil, apperr.ValidationError("Name must contain at least one alphanumeric character")
		}
		if newSlug != t.Slug {
			if _, err := service.repo.GetBySlug(context, t.Scope, t.TenantID, newSlug); err == nil {
				return nil, apperr.Conflict("A tag with this slug already exists in this scope")
			} else if !apperr.IsNotFound(err) {
				return nil, err
			}
		}
		t.Name = *input.Name
		t.Slug = newSlug
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.Category != nil {
		if err := (&validate.Validator{}).MaxLen("category", *input.Category, 50).Err(); err != nil {
			return nil, err
		}
		t.Category = input.Category
	}
	if input.IsActive != nil {
		t.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		t.IsFeatured = *input.IsFeatured
	}

	if err := service.repo.Update(context, t); err != nil {
		return nil, err
	}

	service.invalidate(context, scopeOf(t))
	service.audit(context, "tag.update", t.ID, nil)
	return t, nil
}

// Move reassigns a tag's parent (nil promotes it to a root).
//
// The cycle guard runs against the pre-move snapshot of the tag's ownership
// set; a rejected move leaves the hierarchy untouched.
func (service *Service) Move(context context.Context, ref ScopeRef, id string, newParentID *string) (*Tag, error) {
	t, err := service.mutableTag(context, ref, id)
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		if err := service.checkParent(context, ref, *newParentID); err != nil {
			return nil, err
		}

		snapshot, err := service.repo.ListOwn(context, t.Scope, t.TenantID)
		if err != nil {
			return nil, err
		}
		lookup := ParentLookupFrom(snapshot)

		if WouldCreateCycle(id, *newParentID, lookup) {
			return nil, apperr.CycleDetected("Moving this tag here would make it its own ancestor")
		}
		// The whole subtree rides along, so the bound applies to the moved
		// tag's deepest descendant.
		if Depth(*newParentID, lookup)+1+Height(id, snapshot) >= constants.MaxNestingDepth {
			return nil, apperr.Unprocessable(
				fmt.Sprintf("Maximum nesting depth of %d exceeded", constants.MaxNestingDepth))
		}
	}

	if err := service.repo.UpdateParent(context, id, newParentID); err != nil {
		return nil, err
	}

	t.ParentID = newParentID
	service.invalidate(context, scopeOf(t))
	service.audit(context, "tag.move", t.ID, nil)
	return t, nil
}

// Delete hard-deletes a tag. System tags, tags with live usage, and tags
// with children are protected; the latter two surface IN_USE so the client
// can offer deactivation instead.
func (service *Service) Delete(context context.Context, ref ScopeRef, id string) error {
	t, err := service.mutableTag(context, ref, id)
	if err != nil {
		return err
	}

	if t.UsageCount > 0 {
		return apperr.InUse(
			fmt.Sprintf("Tag is attached to %d entities; detach them or deactivate the tag instead", t.UsageCount))
	}

	children, err := service.repo.CountChildren(context, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return apperr.InUse("Tag has child tags; move or delete them first")
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.invalidate(context, scopeOf(t))
	service.audit(context, "tag.delete", id, map[string]any{"name": t.Name})
	return nil
}

// SetActive toggles the soft-visibility flag. Deactivation is the
// reversible alternative to deletion for in-use tags.
func (service *Service) SetActive(context context.Context, ref ScopeRef, id string, active bool) (*Tag, error) {
	t, err := service.mutableTag(context, ref, id)
	if err != nil {
		return nil, err
	}

	if err := service.repo.SetActive(context, id, active); err != nil {
		return nil, err
	}

	t.IsActive = active
	service.invalidate(context, scopeOf(t))
	action := "tag.deactivate"
	if active {
		action = "tag.activate"
	}
	service.audit(context, action, id, nil)
	return t, nil
}

// # Inheritance

// Adopt grants a tenant visibility into a platform tag by writing the
// explicit inheritance marker.
func (service *Service) Adopt(context context.Context, tagID, tenantID string) error {
	t, err := service.repo.GetByID(context, tagID)
	if err != nil {
		return err
	}
	if t.Scope != ScopePlatform {
		return apperr.Unprocessable("Only platform tags can be inherited")
	}

	if err := service.repo.Adopt(context, uuidv7.New(), tagID, tenantID); err != nil {
		return err
	}

	service.invalidate(context, TenantScope(tenantID))
	service.audit(context, "tag.inherit", tagID, map[string]any{"tenant_id": tenantID})
	return nil
}

// Unadopt removes the inheritance marker; the platform tag becomes
// invisible to the tenant again.
func (service *Service) Unadopt(context context.Context, tagID, tenantID string) error {
	if err := service.repo.Unadopt(context, tagID, tenantID); err != nil {
		return err
	}

	service.invalidate(context, TenantScope(tenantID))
	service.audit(context, "tag.uninherit", tagID, map[string]any{"tenant_id": tenantID})
	return nil
}

// # Entity Associations

// AttachEntity links a tag to an external entity and bumps its usage count.
func (service *Service) AttachEntity(context context.Context, ref ScopeRef, tagID, entityType, entityID string) (*EntityTag, error) {
	v := &validate.Validator{}
	v.Required("entity_type", entityType).MaxLen("entity_type", entityType, 50)
	v.Required("entity_id", entityID).MaxLen("entity_id", entityID, 100)
	if err := v.Err(); err != nil {
		return nil, err
	}

	t, err := service.Get(context, ref, tagID)
	if err != nil {
		return nil, err
	}

	link := &EntityTag{
		ID:         uuidv7.New(),
		TagID:      tagID,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if err := service.repo.AttachEntity(context, link); err != nil {
		return nil, err
	}

	// The usage count lives on the tag's owning scope, which for an adopted
	// platform tag is not the caller's scope.
	service.invalidate(context, scopeOf(t))
	service.audit(context, "tag.attach", tagID, map[string]any{"entity_type": entityType, "entity_id": entityID})
	return link, nil
}

// DetachEntity removes the link and drops the usage count.
func (service *Service) DetachEntity(context context.Context, ref ScopeRef, tagID, entityType, entityID string) error {
	t, err := service.Get(context, ref, tagID)
	if err != nil {
		return err
	}

	if err := service.repo.DetachEntity(context, tagID, entityType, entityID); err != nil {
		return err
	}

	service.invalidate(context, scopeOf(t))
	service.audit(context, "tag.detach", tagID, map[string]any{"entity_type": entityType, "entity_id": entityID})
	return nil
}

// # Internals

// visibleSet assembles the scope's raw visible tag set (own plus, for
// tenants opting in, adopted platform tags) with provenance annotations.
func (service *Service) visibleSet(context context.Context, ref ScopeRef, includeInherited bool) ([]*Tag, error) {
	own, err := service.repo.ListOwn(context, ref.Scope, ref.TenantID)
	if err != nil {
		return nil, err
	}

	var adopted []*Tag
	if ref.Scope == ScopeTenant && includeInherited {
		adopted, err = service.repo.ListAdopted(context, *ref.TenantID)
		if err != nil {
			return nil, err
		}
	}

	return MergeScopes(own, adopted), nil
}

// isVisible applies the scope visibility rule to a fetched tag.
func (service *Service) isVisible(context context.Context, ref ScopeRef, t *Tag) (bool, error) {
	if ref.Scope == ScopePlatform {
		return true, nil
	}

	switch t.Scope {
	case ScopeTenant:
		return t.TenantID != nil && *t.TenantID == *ref.TenantID, nil
	case ScopePlatform:
		return service.repo.IsAdopted(context, t.ID, *ref.TenantID)
	default:
		return false, nil
	}
}

// mutableTag fetches a tag and verifies the caller may mutate it: it must
// be visible, not system-managed, and owned (not merely inherited).
func (service *Service) mutableTag(context context.Context, ref ScopeRef, id string) (*Tag, error) {
	t, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	visible, err := service.isVisible(context, ref, t)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, apperr.NotFound("Tag")
	}

	if t.IsSystem {
		return nil, apperr.Protected("System tags cannot be modified")
	}
	if ref.Scope == ScopeTenant && t.Scope == ScopePlatform {
		return nil, apperr.Protected("Inherited tags can only be modified by the platform")
	}

	return t, nil
}

// checkParent verifies a proposed parent exists and shares the caller's
// ownership set. Cross-scope nesting (a tenant tag under a platform tag or
// vice versa) is rejected; the two sets have different lifecycles.
func (service *Service) checkParent(context context.Context, ref ScopeRef, parentID string) error {
	parent, err := service.repo.GetByID(context, parentID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return apperr.ValidationError("Parent tag does not exist")
		}
		return err
	}

	if parent.Scope != ref.Scope {
		return apperr.ValidationError("Parent tag must belong to the same scope")
	}
	if ref.Scope == ScopeTenant && (parent.TenantID == nil || *parent.TenantID != *ref.TenantID) {
		return apperr.NotFound("Parent tag")
	}
	return nil
}

// invalidate drops the cached result sets a mutation may have stalled.
//
// A platform mutation is visible in every tenant's merged view through
// adopted tags, so it clears the whole tag namespace; a tenant mutation
// only clears that tenant's segment.
func (service *Service) invalidate(context context.Context, ref ScopeRef) {
	if ref.Scope == ScopePlatform {
		pattern := "cache:*:" + constants.CacheCollectionTags + ":*"
		if err := service.cache.DeleteByPattern(context, pattern); err != nil {
			service.logger.Warn("cache_invalidate_failed", slog.String("pattern", pattern), slog.Any("error", err))
		}
		return
	}
	cache.Invalidate(context, service.cache, cacheScope(ref), constants.CacheCollectionTags)
}

// audit records the mutation without ever failing the operation.
func (service *Service) audit(context context.Context, action, resourceID string, detail map[string]any) {
	if service.auditor == nil {
		return
	}
	service.auditor.Record(context, action, "tag", resourceID, detail)
}

// cacheScope maps a scope reference onto the key's scope segment: the
// shared platform namespace, or the tenant's own ID.
func cacheScope(ref ScopeRef) string {
	if ref.Scope == ScopePlatform {
		return constants.CacheScopePlatform
	}
	return *ref.TenantID
}

// scopeOf rebuilds the owning scope reference from a persisted tag.
func scopeOf(t *Tag) ScopeRef {
	if t.Scope == ScopePlatform {
		return PlatformScope()
	}
	return ScopeRef{Scope: ScopeTenant, TenantID: t.TenantID}
}
