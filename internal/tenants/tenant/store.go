// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package tenant

import "context"

type Repository interface {
	List(context context.Context, filter ListFilter) ([]*Tenant, error)
	GetByID(context context.Context, id string) (*Tenant, error)
	GetBySlug(context context.Context, slug string) (*Tenant, error)
	Create(context context.Context, tenant *Tenant) error
	Update(context context.Context, tenant *Tenant) error
	SetStatus(context context.Context, id string, status Status) error
	Delete(context context.Context, id string) error

	// CountTags reports how many taxonomy tags the tenant owns, guarding
	// deletion of tenants with live data.
	CountTags(context context.Context, id string) (int, error)
}
