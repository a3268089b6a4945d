// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

/*
Package bulkop implements asynchronous bulk operations over the tag
taxonomy: activate, deactivate, or delete many tags as one tracked job.

An operation is accepted immediately (202) and executed by a background
runner. Progress is persisted per item, so a job survives inspection,
pausing, and retrying without the client holding any state. The lifecycle
is a strict state machine; every transition is validated against the
table in [Status.CanTransitionTo] and invalid requests are rejected, never
silently coerced.
*/
package bulkop

import "time"

// Status is the lifecycle state of a bulk operation.
type Status string

const (
	// StatusPending: accepted and queued, no item processed yet.
	StatusPending Status = "pending"
	// StatusRunning: a worker is applying items.
	StatusRunning Status = "running"
	// StatusCompleted: every item succeeded. Terminal.
	StatusCompleted Status = "completed"
	// StatusFailed: the run finished with at least one failed item. The
	// failed subset can be retried.
	StatusFailed Status = "failed"
	// StatusPaused: execution stopped between items on request; remaining
	// items stay pending until resumed.
	StatusPaused Status = "paused"
)

// transitions is the full lifecycle table. Absent pairs are invalid.
// pending may fail directly when the job cannot be handed to the runner.
var transitions = map[Status][]Status{
	StatusPending: {StatusRunning, StatusFailed},
	StatusRunning: {StatusCompleted, StatusFailed, StatusPaused},
	StatusPaused:  {StatusRunning},
	StatusFailed:  {StatusRunning},
}

// CanTransitionTo reports whether the lifecycle permits moving from s to
// target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition exists from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Kind is the action a bulk operation applies to each tag.
type Kind string

const (
	KindActivate   Kind = "activate"
	KindDeactivate Kind = "deactivate"
	KindDelete     Kind = "delete"
)

// Valid reports whether the kind is a known bulk action.
func (k Kind) Valid() bool {
	return k == KindActivate || k == KindDeactivate || k == KindDelete
}

// ItemStatus is the per-tag outcome within an operation.
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemSucceeded ItemStatus = "succeeded"
	ItemFailed    ItemStatus = "failed"
)

// Operation is one tracked bulk job.
type Operation struct {
	ID     string `json:"id"`
	Kind   Kind   `json:"kind"`
	Status Status `json:"status"`

	// Scope/TenantID pin which taxonomy scope the items are applied in,
	// mirroring the visibility rules of single-tag operations.
	Scope    string  `json:"scope"`
	TenantID *string `json:"tenant_id,omitempty"`

	TotalItems     int `json:"total_items"`
	ProcessedItems int `json:"processed_items"`
	FailedItems    int `json:"failed_items"`

	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Items is populated on single-operation fetches only.
	Items []*Item `json:"items,omitempty"`
}

// SucceededItems derives the success count from the persisted counters.
func (op *Operation) SucceededItems() int {
	return op.ProcessedItems - op.FailedItems
}

// Item is the per-tag progress record of an operation.
type Item struct {
	ID          string     `json:"id"`
	OperationID string     `json:"operation_id"`
	TagID       string     `json:"tag_id"`
	Status      ItemStatus `json:"status"`

	// Error holds the client-safe failure message for failed items.
	Error *string `json:"error,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
