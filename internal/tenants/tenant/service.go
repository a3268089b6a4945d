// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package tenant

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

// Auditor records administrative mutations; satisfied by the audit service.
type Auditor interface {
	Record(context context.Context, action, resourceType, resourceID string, detail map[string]any)
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

// List returns the tenant directory for the given filter, served through
// the read-through cache.
func (service *Service) List(ctx context.Context, filter ListFilter) ([]*Tenant, error) {
	key := cache.Key(constants.CacheScopePlatform, constants.CacheCollectionTenants, "list", filter)

	return cache.GetOrCompute(ctx, service.cache, key, constants.TenantCacheTTL,
		func(ctx context.Context) ([]*Tenant, error) {
			return service.repo.List(ctx, filter)
		})
}

func (service *Service) Get(context context.Context, id string) (*Tenant, error) {
	return service.repo.GetByID(context, id)
}

func (service *Service) GetBySlug(context context.Context, slugStr string) (*Tenant, error) {
	return service.repo.GetBySlug(context, slugStr)
}

// Create registers a tenant. The slug is derived from the name and must be
// globally unique.
func (service *Service) Create(context context.Context, input CreateInput) (*Tenant, error) {
	if input.Plan == "" {
		input.Plan = PlanFree
	}

	v := &validate.Validator{}
	v.Required("name", input.Name).MaxLen("name", input.Name, 100)
	v.OneOf("plan", string(input.Plan), string(PlanFree), string(PlanPro), string(PlanEnterprise))
	if err := v.Err(); err != nil {
		return nil, err
	}

	tenantSlug := slug.From(input.Name)
	if tenantSlug == "" {
		return nil, apperr.ValidationError("Name must contain at least one alphanumeric character")
	}

	if _, err := service.repo.GetBySlug(context, tenantSlug); err == nil {
		return nil, apperr.Conflict("A tenant with this slug already exists")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	t := &Tenant{
		ID:     uuidv7.New(),
		Name:   input.Name,
		Slug:   tenantSlug,
		Status: StatusActive,
		Plan:   input.Plan,
	}

	if err := service.repo.Create(context, t); err != nil {
		return nil, err
	}

	service.invalidate(context)
	service.audit(context, "tenant.create", t.ID, map[string]any{"name": t.Name, "plan": string(t.Plan)})
	return t, nil
}

// Update applies a partial update; a rename re-derives the slug.
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*Tenant, error) {
	t, err := service.repo.GetByID(context, id)
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
			if _, err := service.repo.GetBySlug(context, newSlug); err == nil {
				return nil, apperr.Conflict("A tenant with this slug already exists")
			} else if !apperr.IsNotFound(err) {
				return nil, err
			}
		}
		t.Name = *input.Name
		t.Slug = newSlug
	}
	if input.Plan != nil {
		v := &validate.Validator{}
		if err := v.OneOf("plan", string(*input.Plan), string(PlanFree), string(PlanPro), string(PlanEnterprise)).Err(); err != nil {
			return nil, err
		}
		t.Plan = *input.Plan
	}

	if err := service.repo.Update(context, t); err != nil {
		return nil, err
	}

	service.invalidate(context)
	service.audit(context, "tenant.update", t.ID, nil)
	return t, nil
}

// Suspend halts a tenant without touching its data.
func (service *Service) Suspend(context context.Context, id string) (*Tenant, error) {
	return service.setStatus(context, id, StatusSuspended, "tenant.suspend")
}

// Reinstate returns a suspended tenant to active.
func (service *Service) Reinstate(context context.Context, id string) (*Tenant, error) {
	return service.setStatus(context, id, StatusActive, "tenant.reinstate")
}

func (service *Service) setStatus(context context.Context, id string, status Status, action string) (*Tenant, error) {
	t, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}
	if t.Status == status {
		return nil, apperr.Conflict(fmt.Sprintf("Tenant is already %s", status))
	}

	if err := service.repo.SetStatus(context, id, status); err != nil {
		return nil, err
	}

	t.Status = status
	service.invalidate(context)
	service.audit(context, action, id, nil)
	return t, nil
}

// Delete removes a tenant. Tenants still owning taxonomy data are blocked;
// suspension is the reversible path.
func (service *Service) Delete(context context.Context, id string) error {
	if _, err := service.repo.GetByID(context, id); err != nil {
		return err
	}

	tagCount, err := service.repo.CountTags(context, id)
	if err != nil {
		return err
	}
	if tagCount > 0 {
		return apperr.InUse(
			fmt.Sprintf("Tenant owns %d tags; remove them or suspend the tenant instead", tagCount))
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.invalidate(context)
	service.audit(context, "tenant.delete", id, nil)
	return nil
}

func (service *Service) invalidate(context context.Context) {
	cache.Invalidate(context, service.cache, constants.CacheScopePlatform, constants.CacheCollectionTenants)
}

func (service *Service) audit(context context.Context, action, resourceID string, detail map[string]any) {
	if service.auditor == nil {
		return
	}
	service.auditor.Record(context, action, "tenant", resourceID, detail)
}
