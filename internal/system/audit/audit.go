// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

// Package audit records administrative mutations as an append-only trail.
//
// # Overview
//
// Every write that changes platform or tenant state — tag mutations, tenant
// lifecycle changes, bulk operations — lands here as one immutable entry.
// The trail is write-once: entries are never updated or deleted through the
// API, and recording is fire-and-forget so a logging failure can never fail
// the mutation it describes.
package audit

import "time"

// Entry is one recorded administrative action.
type Entry struct {
	ID           string         `json:"id"`
	ActorID      *string        `json:"actor_id,omitempty"`
	TenantID     *string        `json:"tenant_id,omitempty"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Detail       map[string]any `json:"detail,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ListFilter narrows the trail query. All fields are optional and combine
// with AND semantics.
type ListFilter struct {
	ActorID      *string
	TenantID     *string
	Action       *string
	ResourceType *string
	ResourceID   *string
}
