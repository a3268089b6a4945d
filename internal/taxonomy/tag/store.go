// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package tag

import "context"

// Repository is the persistence contract for the taxonomy.
//
// Visibility rules (which tags a caller may see) are enforced in the
// service layer; the repository answers raw ownership questions only.
type Repository interface {
	// ListOwn returns every tag directly owned by the given scope. For the
	// platform scope tenantID is ignored.
	ListOwn(context context.Context, scope Scope, tenantID *string) ([]*Tag, error)

	// ListAdopted returns the platform tags the tenant has inheritance
	// markers for.
	ListAdopted(context context.Context, tenantID string) ([]*Tag, error)

	GetByID(context context.Context, id string) (*Tag, error)
	GetBySlug(context context.Context, scope Scope, tenantID *string, slug string) (*Tag, error)

	Create(context context.Context, tag *Tag) error
	Update(context context.Context, tag *Tag) error
	UpdateParent(context context.Context, id string, parentID *string) error
	SetActive(context context.Context, id string, active bool) error
	Delete(context context.Context, id string) error

	CountChildren(context context.Context, id string) (int, error)

	// IsAdopted reports whether the tenant holds an inheritance marker for
	// the tag.
	IsAdopted(context context.Context, tagID, tenantID string) (bool, error)
	Adopt(context context.Context, markerID, tagID, tenantID string) error
	Unadopt(context context.Context, tagID, tenantID string) error

	// AttachEntity inserts the association and bumps the tag's usage count
	// in one transaction; DetachEntity is the inverse.
	AttachEntity(context context.Context, link *EntityTag) error
	DetachEntity(context context.Context, tagID, entityType, entityID string) error
}
