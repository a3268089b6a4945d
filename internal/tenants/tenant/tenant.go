// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

/*
Package tenant manages the marketplace tenants administered by the
platform: registration, plan assignment, suspension, and the cached
directory listings the admin UI works from.
*/
package tenant

import "time"

// Status is a tenant's operational state.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Plan is the subscription tier a tenant is on.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Tenant is one marketplace under platform administration.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Status    Status    `json:"status"`
	Plan      Plan      `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilter is the closed filter shape for tenant directory queries; its
// canonical JSON form keys the list cache.
type ListFilter struct {
	Search *string `json:"search,omitempty"`
	Status *Status `json:"status,omitempty"`
	Plan   *Plan   `json:"plan,omitempty"`
}

// CreateInput carries the fields for registering a tenant.
type CreateInput struct {
	Name string `json:"name"`
	Plan Plan   `json:"plan"`
}

// UpdateInput carries a partial tenant update; nil fields are untouched.
type UpdateInput struct {
	Name *string `json:"name,omitempty"`
	Plan *Plan   `json:"plan,omitempty"`
}
