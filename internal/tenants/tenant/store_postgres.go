// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package tenant

import (
	"context"
	"fmt"
	"strings"

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

func tenantColumns() string {
	return strings.Join(schema.Tenant.Columns(), ", ")
}

func scanTenant(row pgx.Row) (*Tenant, error) {
	t := &Tenant{}
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Status, &t.Plan, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (repository *PostgresRepository) List(context context.Context, filter ListFilter) ([]*Tenant, error) {
	s := schema.Tenant

	conditions := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if filter.Search != nil {
		args = append(args, "%"+strings.ToLower(*filter.Search)+"%")
		conditions = append(conditions,
			fmt.Sprintf("(LOWER(%s) LIKE $%d OR %s LIKE $%d)", s.Name, len(args), s.Slug, len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("%s = $%d", s.Status, len(args)))
	}
	if filter.Plan != nil {
		args = append(args, string(*filter.Plan))
		conditions = append(conditions, fmt.Sprintf("%s = $%d", s.Plan, len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, tenantColumns(), s.Table)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s ASC", s.Name)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_tenants")
	}
	defer rows.Close()

	tenants := make([]*Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_tenant")
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		tenantColumns(), schema.Tenant.Table, schema.Tenant.ID)

	t, err := scanTenant(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_tenant_by_id")
	}
	return t, nil
}

func (repository *PostgresRepository) GetBySlug(context context.Context, slug string) (*Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		tenantColumns(), schema.Tenant.Table, schema.Tenant.Slug)

	t, err := scanTenant(repository.db.QueryRow(context, query, slug))
	if err != nil {
		return nil, dberr.Wrap(err, "get_tenant_by_slug")
	}
	return t, nil
}

func (repository *PostgresRepository) Create(context context.Context, tenant *Tenant) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s
	`,
		schema.Tenant.Table,
		schema.Tenant.ID, schema.Tenant.Name, schema.Tenant.Slug,
		schema.Tenant.Status, schema.Tenant.Plan,
		schema.Tenant.CreatedAt, schema.Tenant.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		tenant.ID, tenant.Name, tenant.Slug, string(tenant.Status), string(tenant.Plan),
	).Scan(&tenant.CreatedAt, &tenant.UpdatedAt)

	if dberr.IsUniqueViolation(err, "") {
		return apperr.Conflict("A tenant with this slug already exists")
	}
	if err != nil {
		return dberr.Wrap(err, "create_tenant")
	}
	return nil
}

func (repository *PostgresRepository) Update(context context.Context, tenant *Tenant) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.Tenant.Table,
		schema.Tenant.Name, schema.Tenant.Slug, schema.Tenant.Plan, schema.Tenant.UpdatedAt,
		schema.Tenant.ID, schema.Tenant.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		tenant.ID, tenant.Name, tenant.Slug, string(tenant.Plan),
	).Scan(&tenant.UpdatedAt)

	if dberr.IsUniqueViolation(err, "") {
		return apperr.Conflict("A tenant with this slug already exists")
	}
	if err != nil {
		return dberr.Wrap(err, "update_tenant")
	}
	return nil
}

func (repository *PostgresRepository) SetStatus(context context.Context, id string, status Status) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.Tenant.Table, schema.Tenant.Status, schema.Tenant.UpdatedAt, schema.Tenant.ID)

	cmd, err := repository.db.Exec(context, query, id, string(status))
	if err != nil {
		return dberr.Wrap(err, "set_tenant_status")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Tenant")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.Tenant.Table, schema.Tenant.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_tenant")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Tenant")
	}
	return nil
}

func (repository *PostgresRepository) CountTags(context context.Context, id string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.Tag.Table, schema.Tag.TenantID)

	var count int
	if err := repository.db.QueryRow(context, query, id).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count_tenant_tags")
	}
	return count, nil
}
