// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package bulkop

import "context"

// Repository is the persistence contract for bulk operations and their
// per-item progress.
type Repository interface {
	// CreateOperation inserts the operation and all items in one
	// transaction; a job is never visible half-created.
	CreateOperation(context context.Context, op *Operation, items []*Item) error

	// GetOperation returns the operation with its items attached.
	GetOperation(context context.Context, id string) (*Operation, error)

	// GetStatus is the cheap status poll workers use between items to
	// detect pause requests.
	GetStatus(context context.Context, id string) (Status, error)

	ListOperations(context context.Context, scope string, tenantID *string) ([]*Operation, error)

	// SetStatus moves the operation's lifecycle state, stamping StartedAt
	// on the first transition to running and FinishedAt on completion or
	// failure.
	SetStatus(context context.Context, id string, status Status) error

	ListItems(context context.Context, operationID string, status *ItemStatus) ([]*Item, error)

	// SetItemResult records one item's outcome and bumps the operation's
	// processed/failed counters in the same transaction.
	SetItemResult(context context.Context, itemID, operationID string, status ItemStatus, errMsg *string) error

	// ResetFailedItems returns failed items to pending and rolls the
	// operation counters back, preparing a retry of the failed subset only.
	ResetFailedItems(context context.Context, operationID string) (int, error)
}
