// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package bulkop

import (
	"context"
	"log/slog"

	"github.com/souqly/souqly-api/internal/platform/apperr"
	"github.com/souqly/souqly-api/internal/platform/validate"
	"github.com/souqly/souqly-api/internal/taxonomy/tag"
	"github.com/souqly/souqly-api/pkg/slice"
	"github.com/souqly/souqly-api/pkg/uuidv7"
)

// maxBulkItems bounds one operation's size. Larger selections should be
// split client-side so individual jobs stay inspectable and retryable.
const maxBulkItems = 500

// StartInput is the request body for launching a bulk operation.
type StartInput struct {
	Kind   Kind     `json:"kind"`
	TagIDs []string `json:"tag_ids"`
}

type Service struct {
	repo    Repository
	runner  *Runner // nil when the orchestrator is disabled
	auditor tag.Auditor
	logger  *slog.Logger
}

func NewService(repo Repository, runner *Runner, auditor tag.Auditor, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		runner:  runner,
		auditor: auditor,
		logger:  logger,
	}
}

// Start validates and accepts a bulk operation for asynchronous execution.
//
// With the runner disabled (zero workers configured) the request is
// refused up front with SERVICE_UNAVAILABLE; a job that can never run is
// worse than an honest error.
func (service *Service) Start(context context.Context, ref tag.ScopeRef, actorID string, input StartInput) (*Operation, error) {
	if service.runner == nil {
		return nil, apperr.ServiceUnavailable("Bulk operation orchestrator is unavailable")
	}

	v := &validate.Validator{}
	v.OneOf("kind", string(input.Kind), string(KindActivate), string(KindDeactivate), string(KindDelete))
	v.Custom("tag_ids", len(input.TagIDs) == 0, "At least one tag is required")
	v.Custom("tag_ids", len(input.TagIDs) > maxBulkItems, "Too many tags for one operation")
	for _, tagID := range input.TagIDs {
		v.UUID("tag_ids", tagID)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	op := &Operation{
		ID:         uuidv7.New(),
		Kind:       input.Kind,
		Status:     StatusPending,
		Scope:      string(ref.Scope),
		TenantID:   ref.TenantID,
		TotalItems: len(input.TagIDs),
		CreatedBy:  actorID,
	}

	items := slice.Map(input.TagIDs, func(tagID string) *Item {
		return &Item{
			ID:          uuidv7.New(),
			OperationID: op.ID,
			TagID:       tagID,
			Status:      ItemPending,
		}
	})

	if err := service.repo.CreateOperation(context, op, items); err != nil {
		return nil, err
	}

	if err := service.runner.Enqueue(op.ID); err != nil {
		// The job can never start; settle it as failed rather than
		// leaving a pending row nobody will pick up.
		if setErr := service.repo.SetStatus(context, op.ID, StatusFailed); setErr != nil {
			service.logger.Error("bulk_operation_settle_failed",
				slog.String("operation_id", op.ID), slog.Any("error", setErr))
		}
		return nil, err
	}

	service.audit(context, "bulkop.start", op.ID, map[string]any{
		"kind":  string(op.Kind),
		"total": op.TotalItems,
	})
	return op, nil
}

// Get fetches an operation with its items, enforcing scope visibility.
func (service *Service) Get(context context.Context, ref tag.ScopeRef, id string) (*Operation, error) {
	op, err := service.repo.GetOperation(context, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(ref, op) {
		return nil, apperr.NotFound("Bulk operation")
	}
	return op, nil
}

// List returns the caller scope's operations, newest first, without items.
func (service *Service) List(context context.Context, ref tag.ScopeRef) ([]*Operation, error) {
	return service.repo.ListOperations(context, string(ref.Scope), ref.TenantID)
}

// Pause requests a stop at the next item boundary. Only running
// operations can be paused.
func (service *Service) Pause(context context.Context, ref tag.ScopeRef, id string) (*Operation, error) {
	return service.transition(context, ref, id, StatusPaused, "bulkop.pause", nil)
}

// Resume re-queues a paused operation; remaining pending items are
// processed where the run left off.
func (service *Service) Resume(context context.Context, ref tag.ScopeRef, id string) (*Operation, error) {
	if service.runner == nil {
		return nil, apperr.ServiceUnavailable("Bulk operation orchestrator is unavailable")
	}

	op, err := service.Get(context, ref, id)
	if err != nil {
		return nil, err
	}
	if op.Status != StatusPaused {
		return nil, apperr.Conflict("Only paused operations can be resumed")
	}

	if err := service.runner.Enqueue(id); err != nil {
		return nil, err
	}

	service.audit(context, "bulkop.resume", id, nil)
	return op, nil
}

// Retry re-runs the failed subset of a failed operation. Succeeded items
// are never re-applied.
func (service *Service) Retry(context context.Context, ref tag.ScopeRef, id string) (*Operation, error) {
	if service.runner == nil {
		return nil, apperr.ServiceUnavailable("Bulk operation orchestrator is unavailable")
	}

	op, err := service.Get(context, ref, id)
	if err != nil {
		return nil, err
	}
	if op.Status != StatusFailed {
		return nil, apperr.Conflict("Only failed operations can be retried")
	}

	resetCount, err := service.repo.ResetFailedItems(context, id)
	if err != nil {
		return nil, err
	}

	if err := service.runner.Enqueue(id); err != nil {
		return nil, err
	}

	service.audit(context, "bulkop.retry", id, map[string]any{"reset_items": resetCount})
	return service.repo.GetOperation(context, id)
}

// transition applies a guarded status change requested over the API.
func (service *Service) transition(context context.Context, ref tag.ScopeRef, id string, target Status, action string, detail map[string]any) (*Operation, error) {
	op, err := service.Get(context, ref, id)
	if err != nil {
		return nil, err
	}

	if !op.Status.CanTransitionTo(target) {
		return nil, apperr.Conflict(
			"Cannot move operation from '" + string(op.Status) + "' to '" + string(target) + "'")
	}

	if err := service.repo.SetStatus(context, id, target); err != nil {
		return nil, err
	}

	op.Status = target
	service.audit(context, action, id, detail)
	return op, nil
}

func (service *Service) audit(context context.Context, action, resourceID string, detail map[string]any) {
	if service.auditor == nil {
		return
	}
	service.auditor.Record(context, action, "bulk_operation", resourceID, detail)
}

// visibleTo mirrors the taxonomy visibility rule: platform callers see
// every operation, tenant callers only their own.
func visibleTo(ref tag.ScopeRef, op *Operation) bool {
	if ref.Scope == tag.ScopePlatform {
		return true
	}
	return op.TenantID != nil && ref.TenantID != nil && *op.TenantID == *ref.TenantID
}
