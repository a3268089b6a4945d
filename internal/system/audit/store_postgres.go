// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqly/souqly-api/internal/platform/database/schema"
	"github.com/souqly/souqly-api/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func auditColumns() string {
	return strings.Join(schema.AuditLog.Columns(), ", ")
}

func scanEntry(row pgx.Row) (*Entry, error) {
	entry := &Entry{}
	var detail []byte

	err := row.Scan(
		&entry.ID, &entry.ActorID, &entry.TenantID, &entry.Action,
		&entry.ResourceType, &entry.ResourceID, &detail, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(detail) > 0 {
		if err := json.Unmarshal(detail, &entry.Detail); err != nil {
			return nil, fmt.Errorf("audit_detail_decode_failed: %w", err)
		}
	}
	return entry, nil
}

func (repository *PostgresRepository) Insert(context context.Context, entry *Entry) error {
	s := schema.AuditLog

	var detail []byte
	if entry.Detail != nil {
		encoded, err := json.Marshal(entry.Detail)
		if err != nil {
			return fmt.Errorf("audit_detail_encode_failed: %w", err)
		}
		detail = encoded
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`,
		s.Table,
		s.ID, s.ActorID, s.TenantID, s.Action, s.ResourceType, s.ResourceID, s.Detail,
		s.CreatedAt,
	)

	err := repository.db.QueryRow(context, query,
		entry.ID, entry.ActorID, entry.TenantID, entry.Action,
		entry.ResourceType, entry.ResourceID, detail,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_audit_entry")
	}
	return nil
}

// List pages through the trail newest-first. Unlike the other list
// endpoints the paging happens in SQL: the trail grows without bound, so
// loading it whole is never an option.
func (repository *PostgresRepository) List(context context.Context, filter ListFilter, limit, offset int) ([]*Entry, int, error) {
	s := schema.AuditLog

	conditions := make([]string, 0, 5)
	args := make([]any, 0, 7)

	appendCondition := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	appendCondition(s.ActorID, filter.ActorID)
	appendCondition(s.TenantID, filter.TenantID)
	appendCondition(s.Action, filter.Action)
	appendCondition(s.ResourceType, filter.ResourceType)
	appendCondition(s.ResourceID, filter.ResourceID)

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.Table) + where
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_audit_entries")
	}

	args = append(args, limit)
	limitArg := len(args)
	args = append(args, offset)
	offsetArg := len(args)

	query := fmt.Sprintf(`SELECT %s FROM %s`, auditColumns(), s.Table) + where +
		fmt.Sprintf(" ORDER BY %s DESC LIMIT $%d OFFSET $%d", s.CreatedAt, limitArg, offsetArg)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_audit_entries")
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_audit_entry")
		}
		entries = append(entries, entry)
	}
	return entries, total, rows.Err()
}
