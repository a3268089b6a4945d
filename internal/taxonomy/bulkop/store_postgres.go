// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package bulkop

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqly/souqly-api/internal/platform/apperr"
	"github.com/souqly/souqly-api/internal/platform/database/schema"
	"github.com/souqly/souqly-api/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func operationColumns() string {
	o := schema.BulkOperation
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		o.ID, o.Kind, o.Status, o.TenantID, o.Scope,
		o.TotalItems, o.ProcessedItems, o.FailedItems,
		o.CreatedBy, o.CreatedAt, o.UpdatedAt, o.StartedAt, o.FinishedAt)
}

func scanOperation(row pgx.Row) (*Operation, error) {
	op := &Operation{}
	err := row.Scan(
		&op.ID, &op.Kind, &op.Status, &op.TenantID, &op.Scope,
		&op.TotalItems, &op.ProcessedItems, &op.FailedItems,
		&op.CreatedBy, &op.CreatedAt, &op.UpdatedAt, &op.StartedAt, &op.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return op, nil
}

func (repository *PostgresRepository) CreateOperation(context context.Context, op *Operation, items []*Item) error {
	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_create_operation")
	}
	defer tx.Rollback(context)

	insertOp := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s, %s
	`,
		schema.BulkOperation.Table,
		schema.BulkOperation.ID, schema.BulkOperation.Kind, schema.BulkOperation.Status,
		schema.BulkOperation.TenantID, schema.BulkOperation.Scope,
		schema.BulkOperation.TotalItems, schema.BulkOperation.ProcessedItems,
		schema.BulkOperation.FailedItems, schema.BulkOperation.CreatedBy,
		schema.BulkOperation.CreatedAt, schema.BulkOperation.UpdatedAt,
	)

	err = tx.QueryRow(context, insertOp,
		op.ID, string(op.Kind), string(op.Status), op.TenantID, op.Scope,
		op.TotalItems, op.ProcessedItems, op.FailedItems, op.CreatedBy,
	).Scan(&op.CreatedAt, &op.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_operation")
	}

	insertItem := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)`,
		schema.BulkOperationItem.Table,
		schema.BulkOperationItem.ID, schema.BulkOperationItem.OperationID,
		schema.BulkOperationItem.TagID, schema.BulkOperationItem.Status,
	)
	for _, item := range items {
		if _, err := tx.Exec(context, insertItem, item.ID, item.OperationID, item.TagID, string(item.Status)); err != nil {
			return dberr.Wrap(err, "create_operation_item")
		}
	}

	if err := tx.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_create_operation")
	}
	return nil
}

func (repository *PostgresRepository) GetOperation(context context.Context, id string) (*Operation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		operationColumns(), schema.BulkOperation.Table, schema.BulkOperation.ID)

	op, err := scanOperation(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_operation")
	}

	op.Items, err = repository.ListItems(context, id, nil)
	if err != nil {
		return nil, err
	}
	return op, nil
}

func (repository *PostgresRepository) GetStatus(context context.Context, id string) (Status, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.BulkOperation.Status, schema.BulkOperation.Table, schema.BulkOperation.ID)

	var status Status
	if err := repository.db.QueryRow(context, query, id).Scan(&status); err != nil {
		return "", dberr.Wrap(err, "get_operation_status")
	}
	return status, nil
}

func (repository *PostgresRepository) ListOperations(context context.Context, scope string, tenantID *string) ([]*Operation, error) {
	var query string
	var args []any

	if tenantID == nil {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC`,
			operationColumns(), schema.BulkOperation.Table,
			schema.BulkOperation.Scope, schema.BulkOperation.CreatedAt)
		args = []any{scope}
	} else {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s DESC`,
			operationColumns(), schema.BulkOperation.Table,
			schema.BulkOperation.Scope, schema.BulkOperation.TenantID, schema.BulkOperation.CreatedAt)
		args = []any{scope, tenantID}
	}

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_operations")
	}
	defer rows.Close()

	operations := make([]*Operation, 0)
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_operation")
		}
		operations = append(operations, op)
	}
	return operations, rows.Err()
}

func (repository *PostgresRepository) SetStatus(context context.Context, id string, status Status) error {
	o := schema.BulkOperation
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2,
		    %s = NOW(),
		    %s = CASE WHEN $2 = 'running' THEN COALESCE(%s, NOW()) ELSE %s END,
		    %s = CASE WHEN $2 IN ('completed', 'failed') THEN NOW() ELSE NULL END
		WHERE %s = $1
	`,
		o.Table, o.Status, o.UpdatedAt,
		o.StartedAt, o.StartedAt, o.StartedAt,
		o.FinishedAt, o.ID,
	)

	cmd, err := repository.db.Exec(context, query, id, string(status))
	if err != nil {
		return dberr.Wrap(err, "set_operation_status")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Bulk operation")
	}
	return nil
}

func (repository *PostgresRepository) ListItems(context context.Context, operationID string, status *ItemStatus) ([]*Item, error) {
	i := schema.BulkOperationItem
	columns := fmt.Sprintf("%s, %s, %s, %s, %s, %s",
		i.ID, i.OperationID, i.TagID, i.Status, i.Error, i.UpdatedAt)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		columns, i.Table, i.OperationID, i.ID)
	args := []any{operationID}

	if status != nil {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s ASC`,
			columns, i.Table, i.OperationID, i.Status, i.ID)
		args = append(args, string(*status))
	}

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_operation_items")
	}
	defer rows.Close()

	items := make([]*Item, 0)
	for rows.Next() {
		item := &Item{}
		if err := rows.Scan(&item.ID, &item.OperationID, &item.TagID, &item.Status, &item.Error, &item.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_operation_item")
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (repository *PostgresRepository) SetItemResult(context context.Context, itemID, operationID string, status ItemStatus, errMsg *string) error {
	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_item_result")
	}
	defer tx.Rollback(context)

	i := schema.BulkOperationItem
	updateItem := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = NOW() WHERE %s = $1`,
		i.Table, i.Status, i.Error, i.UpdatedAt, i.ID)
	if _, err := tx.Exec(context, updateItem, itemID, string(status), errMsg); err != nil {
		return dberr.Wrap(err, "set_item_result")
	}

	failedDelta := 0
	if status == ItemFailed {
		failedDelta = 1
	}

	o := schema.BulkOperation
	updateOp := fmt.Sprintf(`
		UPDATE %s SET %s = %s + 1, %s = %s + $2, %s = NOW() WHERE %s = $1
	`,
		o.Table,
		o.ProcessedItems, o.ProcessedItems,
		o.FailedItems, o.FailedItems,
		o.UpdatedAt, o.ID,
	)
	if _, err := tx.Exec(context, updateOp, operationID, failedDelta); err != nil {
		return dberr.Wrap(err, "bump_operation_counters")
	}

	if err := tx.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_item_result")
	}
	return nil
}

func (repository *PostgresRepository) ResetFailedItems(context context.Context, operationID string) (int, error) {
	tx, err := repository.db.Begin(context)
	if err != nil {
		return 0, dberr.Wrap(err, "begin_reset_failed")
	}
	defer tx.Rollback(context)

	i := schema.BulkOperationItem
	reset := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NULL, %s = NOW() WHERE %s = $1 AND %s = $3`,
		i.Table, i.Status, i.Error, i.UpdatedAt, i.OperationID, i.Status)

	cmd, err := tx.Exec(context, reset, operationID, string(ItemPending), string(ItemFailed))
	if err != nil {
		return 0, dberr.Wrap(err, "reset_failed_items")
	}
	resetCount := int(cmd.RowsAffected())

	// Roll the counters back so the retry only re-accounts the failed
	// subset; succeeded items keep their contribution.
	o := schema.BulkOperation
	rollback := fmt.Sprintf(`
		UPDATE %s SET %s = %s - $2, %s = %s - $2, %s = NOW() WHERE %s = $1
	`,
		o.Table,
		o.ProcessedItems, o.ProcessedItems,
		o.FailedItems, o.FailedItems,
		o.UpdatedAt, o.ID,
	)
	if _, err := tx.Exec(context, rollback, operationID, resetCount); err != nil {
		return 0, dberr.Wrap(err, "rollback_operation_counters")
	}

	if err := tx.Commit(context); err != nil {
		return 0, dberr.Wrap(err, "commit_reset_failed")
	}
	return resetCount, nil
}
