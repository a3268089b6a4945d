// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package bulkop

import (
	"context"
	"log/slog"
	"sync"

	"github.com/souqly/souqly-api/internal/platform/apperr"
	"github.com/souqly/souqly-api/internal/taxonomy/tag"
)

// Executor applies one bulk action to one tag. Satisfied by [TagExecutor];
// tests substitute a fake.
type Executor interface {
	Apply(context context.Context, ref tag.ScopeRef, kind Kind, tagID string) error
}

// TagExecutor adapts the taxonomy service to the runner's per-item contract.
type TagExecutor struct {
	Tags *tag.Service
}

func (executor *TagExecutor) Apply(context context.Context, ref tag.ScopeRef, kind Kind, tagID string) error {
	switch kind {
	case KindActivate:
		_, err := executor.Tags.SetActive(context, ref, tagID, true)
		return err
	case KindDeactivate:
		_, err := executor.Tags.SetActive(context, ref, tagID, false)
		return err
	case KindDelete:
		return executor.Tags.Delete(context, ref, tagID)
	default:
		return apperr.Unprocessable("Unknown bulk action")
	}
}

// queueCapacity bounds how many accepted-but-unstarted operations the
// runner will hold before refusing new ones.
const queueCapacity = 64

// Runner executes bulk operations on a fixed pool of workers.
//
// Operations are processed item by item; the operation status is re-read
// between items so a pause request takes effect at the next item boundary,
// leaving unprocessed items pending. On shutdown an in-flight operation is
// parked as paused so it can be resumed after restart.
type Runner struct {
	repo    Repository
	exec    Executor
	logger  *slog.Logger
	workers int

	queue chan string
	wg    sync.WaitGroup
}

func NewRunner(repo Repository, exec Executor, workers int, logger *slog.Logger) *Runner {
	return &Runner{
		repo:    repo,
		exec:    exec,
		logger:  logger,
		workers: workers,
		queue:   make(chan string, queueCapacity),
	}
}

// Start launches the worker pool. Workers exit when ctx is cancelled;
// Stop waits for them to drain their current operation.
func (runner *Runner) Start(ctx context.Context) {
	for i := 0; i < runner.workers; i++ {
		runner.wg.Add(1)
		go func() {
			defer runner.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case operationID := <-runner.queue:
					runner.process(ctx, operationID)
				}
			}
		}()
	}
}

// Stop blocks until every worker has finished its current operation.
func (runner *Runner) Stop() {
	runner.wg.Wait()
}

// Enqueue hands an operation to the pool without blocking. A full queue is
// reported as orchestrator overload rather than stalling the HTTP request.
func (runner *Runner) Enqueue(operationID string) error {
	select {
	case runner.queue <- operationID:
		return nil
	default:
		return apperr.ServiceUnavailable("Bulk operation queue is full; try again later")
	}
}

// process runs one operation to a terminal or paused state.
func (runner *Runner) process(ctx context.Context, operationID string) {
	logger := runner.logger.With(slog.String("operation_id", operationID))

	op, err := runner.repo.GetOperation(ctx, operationID)
	if err != nil {
		logger.Error("bulk_operation_load_failed", slog.Any("error", err))
		return
	}
	if !op.Status.CanTransitionTo(StatusRunning) {
		logger.Warn("bulk_operation_not_runnable", slog.String("status", string(op.Status)))
		return
	}
	if err := runner.repo.SetStatus(ctx, operationID, StatusRunning); err != nil {
		logger.Error("bulk_operation_start_failed", slog.Any("error", err))
		return
	}

	pending := ItemPending
	items, err := runner.repo.ListItems(ctx, operationID, &pending)
	if err != nil {
		logger.Error("bulk_operation_items_failed", slog.Any("error", err))
		return
	}

	ref := tag.PlatformScope()
	if op.TenantID != nil {
		ref = tag.TenantScope(*op.TenantID)
	}

	for _, item := range items {
		select {
		case <-ctx.Done():
			// Shutdown mid-run: park the operation so it resumes later.
			runner.park(operationID, logger)
			return
		default:
		}

		status, err := runner.repo.GetStatus(ctx, operationID)
		if err != nil {
			logger.Error("bulk_operation_poll_failed", slog.Any("error", err))
			return
		}
		if status == StatusPaused {
			logger.Info("bulk_operation_paused")
			return
		}

		runner.applyItem(ctx, ref, op.Kind, item, logger)
	}

	runner.finish(ctx, operationID, logger)
}

// applyItem executes one item and records its outcome.
func (runner *Runner) applyItem(ctx context.Context, ref tag.ScopeRef, kind Kind, item *Item, logger *slog.Logger) {
	err := runner.exec.Apply(ctx, ref, kind, item.TagID)
	if err == nil {
		if err := runner.repo.SetItemResult(ctx, item.ID, item.OperationID, ItemSucceeded, nil); err != nil {
			logger.Error("bulk_item_record_failed", slog.String("item_id", item.ID), slog.Any("error", err))
		}
		return
	}

	// Only the client-safe message is persisted; internals stay in logs.
	message := "Operation failed"
	if ae := apperr.As(err); ae != nil {
		message = ae.Message
	}
	logger.Warn("bulk_item_failed",
		slog.String("item_id", item.ID),
		slog.String("tag_id", item.TagID),
		slog.Any("error", err),
	)
	if err := runner.repo.SetItemResult(ctx, item.ID, item.OperationID, ItemFailed, &message); err != nil {
		logger.Error("bulk_item_record_failed", slog.String("item_id", item.ID), slog.Any("error", err))
	}
}

// finish settles the operation's terminal status from its counters.
func (runner *Runner) finish(ctx context.Context, operationID string, logger *slog.Logger) {
	op, err := runner.repo.GetOperation(ctx, operationID)
	if err != nil {
		logger.Error("bulk_operation_reload_failed", slog.Any("error", err))
		return
	}

	final := StatusCompleted
	if op.FailedItems > 0 {
		final = StatusFailed
	}
	if err := runner.repo.SetStatus(ctx, operationID, final); err != nil {
		logger.Error("bulk_operation_finish_failed", slog.Any("error", err))
		return
	}

	logger.Info("bulk_operation_finished",
		slog.String("status", string(final)),
		slog.Int("processed", op.ProcessedItems),
		slog.Int("failed", op.FailedItems),
	)
}

// park moves an interrupted operation to paused using a fresh context,
// since the worker's own context is already cancelled.
func (runner *Runner) park(operationID string, logger *slog.Logger) {
	if err := runner.repo.SetStatus(context.Background(), operationID, StatusPaused); err != nil {
		logger.Error("bulk_operation_park_failed", slog.Any("error", err))
		return
	}
	logger.Info("bulk_operation_parked")
}
