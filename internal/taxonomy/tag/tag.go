// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

/*
Package tag implements the scoped, hierarchical tag taxonomy at the heart of
the Souqly admin platform.

Tags live in one of two visibility scopes: platform-owned tags form a shared
catalog, and tenant-owned tags are private to a single marketplace tenant. A
tenant sees a platform tag only after explicitly opting in via an
inheritance marker; an unadopted platform tag is invisible to that tenant
even by direct ID lookup.

The hierarchy is stored flat (parent-id adjacency) and the nested view is
reconstructed on demand by [BuildTree]. Client-supplied nested structures
are never trusted as the source of truth; every parent reassignment runs
[WouldCreateCycle] against the pre-move state first.
*/
package tag

import "time"

// Scope is the visibility boundary of a tag.
type Scope string

const (
	// ScopePlatform tags form the shared catalog visible to opted-in tenants.
	ScopePlatform Scope = "platform"
	// ScopeTenant tags are private to a single tenant.
	ScopeTenant Scope = "tenant"
)

// Valid reports whether the scope is one of the two known tiers.
//
// The inheritance model assumes exactly these two tiers; adding a third
// (e.g. per-account) is a new design decision, not a parameter change.
func (s Scope) Valid() bool {
	return s == ScopePlatform || s == ScopeTenant
}

// Tag is the central taxonomy entity.
type Tag struct {
	ID          string  `json:"id"`
	Scope       Scope   `json:"scope"`
	TenantID    *string `json:"tenant_id,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`

	// UsageCount is the denormalized count of entity associations. Tags
	// with live usages cannot be hard-deleted, only deactivated.
	UsageCount int `json:"usage_count"`

	IsActive bool `json:"is_active"`

	// IsSystem marks platform-seeded tags that are immutable and
	// non-deletable through the standard operations.
	IsSystem   bool `json:"is_system"`
	IsFeatured bool `json:"is_featured"`

	// InheritedFrom records provenance on resolved result sets: "platform"
	// when the tag reached a tenant via an inheritance marker, nil when it
	// is directly owned. Populated by [MergeScopes], not persisted.
	InheritedFrom *Scope `json:"inherited_from"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TreeNode is a tag embedded in the materialized hierarchy view.
//
// Level and Path are derived during tree construction and never persisted.
// Children is nil (absent in JSON) for leaves so "has children" checks stay
// unambiguous on the client.
type TreeNode struct {
	Tag

	// Level is 0 for roots, parent's level + 1 otherwise.
	Level int `json:"level"`

	// Path is the ordered list of ancestor names including this node.
	Path []string `json:"path"`

	Children []*TreeNode `json:"children,omitempty"`
}

// EntityTag links a tag to an arbitrary external entity. Its existence is
// what the tag's UsageCount denormalization tracks.
type EntityTag struct {
	ID         string    `json:"id"`
	TagID      string    `json:"tag_id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	AddedAt    time.Time `json:"added_at"`
}

// ResolveOptions is the closed filter shape for taxonomy list queries.
//
// Using an explicit struct (rather than a loose filter bag) gives the
// cache-key derivation a normalizable shape: two logically equal queries
// always serialize to the same canonical JSON.
type ResolveOptions struct {
	// Search matches case-insensitively against name, slug, and description.
	Search *string `json:"search,omitempty"`

	// Category filters by exact category match.
	Category *string `json:"category,omitempty"`

	// IncludeInherited adds platform tags the tenant has opted into.
	// Ignored when resolving the platform scope itself.
	IncludeInherited bool `json:"include_inherited"`
}
