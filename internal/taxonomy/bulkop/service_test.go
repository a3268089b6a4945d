// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package bulkop_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqly/souqly-api/internal/platform/apperr"
	"github.com/souqly/souqly-api/internal/taxonomy/bulkop"
	"github.com/souqly/souqly-api/internal/taxonomy/tag"
	"github.com/souqly/souqly-api/pkg/uuidv7"
)

// memRepo is a mutex-guarded in-memory Repository shared between the test
// goroutine and the runner's workers.
type memRepo struct {
	mu         sync.Mutex
	operations map[string]*bulkop.Operation
	items      map[string][]*bulkop.Item // operationID -> items
}

func newMemRepo() *memRepo {
	return &memRepo{
		operations: make(map[string]*bulkop.Operation),
		items:      make(map[string][]*bulkop.Item),
	}
}

func (r *memRepo) CreateOperation(_ context.Context, op *bulkop.Operation, items []*bulkop.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *op
	r.operations[op.ID] = &copied
	for _, item := range items {
		itemCopy := *item
		r.items[op.ID] = append(r.items[op.ID], &itemCopy)
	}
	return nil
}

func (r *memRepo) GetOperation(_ context.Context, id string) (*bulkop.Operation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.operations[id]
	if !ok {
		return nil, apperr.NotFound("Bulk operation")
	}
	copied := *op
	for _, item := range r.items[id] {
		itemCopy := *item
		copied.Items = append(copied.Items, &itemCopy)
	}
	return &copied, nil
}

func (r *memRepo) GetStatus(_ context.Context, id string) (bulkop.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.operations[id]
	if !ok {
		return "", apperr.NotFound("Bulk operation")
	}
	return op.Status, nil
}

func (r *memRepo) ListOperations(_ context.Context, scope string, tenantID *string) ([]*bulkop.Operation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*bulkop.Operation
	for _, op := range r.operations {
		if op.Scope != scope {
			continue
		}
		if tenantID != nil && (op.TenantID == nil || *op.TenantID != *tenantID) {
			continue
		}
		copied := *op
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memRepo) SetStatus(_ context.Context, id string, status bulkop.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, ok := r.operations[id]
	if !ok {
		return apperr.NotFound("Bulk operation")
	}
	op.Status = status
	now := time.Now()
	if status == bulkop.StatusRunning && op.StartedAt == nil {
		op.StartedAt = &now
	}
	if status == bulkop.StatusCompleted || status == bulkop.StatusFailed {
		op.FinishedAt = &now
	}
	return nil
}

func (r *memRepo) ListItems(_ context.Context, operationID string, status *bulkop.ItemStatus) ([]*bulkop.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*bulkop.Item
	for _, item := range r.items[operationID] {
		if status != nil && item.Status != *status {
			continue
		}
		copied := *item
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memRepo) SetItemResult(_ context.Context, itemID, operationID string, status bulkop.ItemStatus, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items[operationID] {
		if item.ID != itemID {
			continue
		}
		item.Status = status
		item.Error = errMsg
		op := r.operations[operationID]
		op.ProcessedItems++
		if status == bulkop.ItemFailed {
			op.FailedItems++
		}
		return nil
	}
	return apperr.NotFound("Bulk operation item")
}

func (r *memRepo) ResetFailedItems(_ context.Context, operationID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reset := 0
	for _, item := range r.items[operationID] {
		if item.Status == bulkop.ItemFailed {
			item.Status = bulkop.ItemPending
			item.Error = nil
			reset++
		}
	}
	op := r.operations[operationID]
	op.ProcessedItems -= reset
	op.FailedItems -= reset
	return reset, nil
}

// flakyExecutor fails configured tags until cured, counting every apply.
type flakyExecutor struct {
	mu      sync.Mutex
	failing map[string]bool
	applies map[string]int
}

func newFlakyExecutor(failing ...string) *flakyExecutor {
	e := &flakyExecutor{
		failing: make(map[string]bool),
		applies: make(map[string]int),
	}
	for _, id := range failing {
		e.failing[id] = true
	}
	return e
}

func (e *flakyExecutor) Apply(_ context.Context, _ tag.ScopeRef, _ bulkop.Kind, tagID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.applies[tagID]++
	if e.failing[tagID] {
		return apperr.InUse("Tag is attached to entities")
	}
	return nil
}

func (e *flakyExecutor) cure(tagID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failing[tagID] = false
}

func (e *flakyExecutor) applyCount(tagID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applies[tagID]
}

func newTestHarness(t *testing.T, exec bulkop.Executor) (*bulkop.Service, *memRepo) {
	t.Helper()

	repo := newMemRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := bulkop.NewRunner(repo, exec, 1, logger)

	ctx, cancel := context.WithCancel(context.Background())
	runner.Start(ctx)
	t.Cleanup(func() {
		cancel()
		runner.Stop()
	})

	return bulkop.NewService(repo, runner, nil, logger), repo
}

func waitForStatus(t *testing.T, service *bulkop.Service, id string, want bulkop.Status) *bulkop.Operation {
	t.Helper()

	var op *bulkop.Operation
	require.Eventually(t, func() bool {
		var err error
		op, err = service.Get(context.Background(), tag.PlatformScope(), id)
		return err == nil && op.Status == want
	}, 2*time.Second, 5*time.Millisecond, "operation never reached %s", want)
	return op
}

/*
TestService_Start_Validation verifies input checks and the disabled
orchestrator path.
*/
func TestService_Start_Validation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("disabled runner is service unavailable", func(t *testing.T) {
		service := bulkop.NewService(newMemRepo(), nil, nil, logger)

		_, err := service.Start(ctx, tag.PlatformScope(), "admin-1", bulkop.StartInput{
			Kind:   bulkop.KindDeactivate,
			TagIDs: []string{uuidv7.New()},
		})
		require.Error(t, err)
		assert.Equal(t, "SERVICE_UNAVAILABLE", apperr.As(err).Code)
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		service, _ := newTestHarness(t, newFlakyExecutor())

		_, err := service.Start(ctx, tag.PlatformScope(), "admin-1", bulkop.StartInput{
			Kind:   "rename",
			TagIDs: []string{uuidv7.New()},
		})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("empty selection is rejected", func(t *testing.T) {
		service, _ := newTestHarness(t, newFlakyExecutor())

		_, err := service.Start(ctx, tag.PlatformScope(), "admin-1", bulkop.StartInput{
			Kind: bulkop.KindActivate,
		})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}

/*
TestLifecycle_CompleteRun verifies the happy path: pending through running
to completed, with every counter accounted for.
*/
func TestLifecycle_CompleteRun(t *testing.T) {
	exec := newFlakyExecutor()
	service, _ := newTestHarness(t, exec)
	tagIDs := []string{uuidv7.New(), uuidv7.New(), uuidv7.New()}

	op, err := service.Start(context.Background(), tag.PlatformScope(), "admin-1", bulkop.StartInput{
		Kind:   bulkop.KindDeactivate,
		TagIDs: tagIDs,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, op.TotalItems)

	done := waitForStatus(t, service, op.ID, bulkop.StatusCompleted)
	assert.Equal(t, 3, done.ProcessedItems)
	assert.Equal(t, 0, done.FailedItems)
	assert.Equal(t, 3, done.SucceededItems())
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.FinishedAt)

	for _, item := range done.Items {
		assert.Equal(t, bulkop.ItemSucceeded, item.Status)
		assert.Nil(t, item.Error)
	}
}

/*
TestLifecycle_FailureAndRetry verifies that a partial failure lands in
failed, and that retrying re-runs only the failed subset.
*/
func TestLifecycle_FailureAndRetry(t *testing.T) {
	goodID, badID := uuidv7.New(), uuidv7.New()
	exec := newFlakyExecutor(badID)
	service, _ := newTestHarness(t, exec)
	ctx := context.Background()

	// 1. One of two items fails; the run settles as failed
	op, err := service.Start(ctx, tag.PlatformScope(), "admin-1", bulkop.StartInput{
		Kind:   bulkop.KindDelete,
		TagIDs: []string{goodID, badID},
	})
	require.NoError(t, err)

	failed := waitForStatus(t, service, op.ID, bulkop.StatusFailed)
	assert.Equal(t, 2, failed.ProcessedItems)
	assert.Equal(t, 1, failed.FailedItems)

	// 2. The failed item carries its client-safe error message
	var failedItem *bulkop.Item
	for _, item := range failed.Items {
		if item.Status == bulkop.ItemFailed {
			failedItem = item
		}
	}
	require.NotNil(t, failedItem)
	assert.Equal(t, badID, failedItem.TagID)
	require.NotNil(t, failedItem.Error)
	assert.Contains(t, *failedItem.Error, "attached")

	// 3. Retrying a completed-in-failure op only replays the failed subset
	exec.cure(badID)
	_, err = service.Retry(ctx, tag.PlatformScope(), op.ID)
	require.NoError(t, err)

	done := waitForStatus(t, service, op.ID, bulkop.StatusCompleted)
	assert.Equal(t, 2, done.ProcessedItems)
	assert.Equal(t, 0, done.FailedItems)

	// The succeeded item ran once, the cured one twice
	assert.Equal(t, 1, exec.applyCount(goodID))
	assert.Equal(t, 2, exec.applyCount(badID))
}

/*
TestService_PauseResume verifies the paused leg of the lifecycle: a
running operation can be paused, a paused one resumed to completion.
*/
func TestService_PauseResume(t *testing.T) {
	exec := newFlakyExecutor()
	service, repo := newTestHarness(t, exec)
	ctx := context.Background()

	// 1. Seed a running operation with pending items directly, so the
	// pause request races nothing
	opID := uuidv7.New()
	tagID := uuidv7.New()
	require.NoError(t, repo.CreateOperation(ctx, &bulkop.Operation{
		ID:         opID,
		Kind:       bulkop.KindActivate,
		Status:     bulkop.StatusRunning,
		Scope:      string(tag.ScopePlatform),
		TotalItems: 1,
		CreatedBy:  "admin-1",
	}, []*bulkop.Item{
		{ID: uuidv7.New(), OperationID: opID, TagID: tagID, Status: bulkop.ItemPending},
	}))

	paused, err := service.Pause(ctx, tag.PlatformScope(), opID)
	require.NoError(t, err)
	assert.Equal(t, bulkop.StatusPaused, paused.Status)

	// 2. Pausing anything but a running operation is a conflict
	_, err = service.Pause(ctx, tag.PlatformScope(), opID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	// 3. Resume picks the pending item back up and completes
	_, err = service.Resume(ctx, tag.PlatformScope(), opID)
	require.NoError(t, err)

	done := waitForStatus(t, service, opID, bulkop.StatusCompleted)
	assert.Equal(t, 1, done.ProcessedItems)
	assert.Equal(t, 1, exec.applyCount(tagID))
}

/*
TestService_Retry_Guards verifies retry is only valid from failed.
*/
func TestService_Retry_Guards(t *testing.T) {
	service, repo := newTestHarness(t, newFlakyExecutor())
	ctx := context.Background()

	opID := uuidv7.New()
	require.NoError(t, repo.CreateOperation(ctx, &bulkop.Operation{
		ID:     opID,
		Kind:   bulkop.KindActivate,
		Status: bulkop.StatusCompleted,
		Scope:  string(tag.ScopePlatform),
	}, nil))

	_, err := service.Retry(ctx, tag.PlatformScope(), opID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

/*
TestService_Visibility verifies tenant isolation on operation lookups.
*/
func TestService_Visibility(t *testing.T) {
	service, repo := newTestHarness(t, newFlakyExecutor())
	ctx := context.Background()

	tenantB := "tenant-b"
	opID := uuidv7.New()
	require.NoError(t, repo.CreateOperation(ctx, &bulkop.Operation{
		ID:       opID,
		Kind:     bulkop.KindActivate,
		Status:   bulkop.StatusCompleted,
		Scope:    string(tag.ScopeTenant),
		TenantID: &tenantB,
	}, nil))

	// Another tenant cannot see the operation; the platform can
	_, err := service.Get(ctx, tag.TenantScope("tenant-a"), opID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	_, err = service.Get(ctx, tag.PlatformScope(), opID)
	assert.NoError(t, err)
}
