// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package tag

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

// tagColumns is the SELECT column list shared by every tag query. The
// order matches scanTag's destination order.
func tagColumns(alias string) string {
	columns := schema.Tag.Columns()
	if alias == "" {
		return strings.Join(columns, ", ")
	}

	prefixed := make([]string, len(columns))
	for i, column := range columns {
		prefixed[i] = alias + column
	}
	return strings.Join(prefixed, ", ")
}

// scanTag populates a Tag from a row produced with tagColumns ordering.
func scanTag(row pgx.Row) (*Tag, error) {
	t := &Tag{}
	err := row.Scan(
		&t.ID, &t.TenantID, &t.Scope, &t.ParentID, &t.Name, &t.Slug, &t.Description,
		&t.Category, &t.UsageCount, &t.IsActive, &t.IsSystem, &t.IsFeatured,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (repository *PostgresRepository) ListOwn(context context.Context, scope Scope, tenantID *string) ([]*Tag, error) {
	var query string
	var args []any

	if scope == ScopePlatform {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
			tagColumns(""), schema.Tag.Table, schema.Tag.Scope, schema.Tag.Name)
		args = []any{string(ScopePlatform)}
	} else {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s ASC`,
			tagColumns(""), schema.Tag.Table, schema.Tag.Scope, schema.Tag.TenantID, schema.Tag.Name)
		args = []any{string(ScopeTenant), tenantID}
	}

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_own_tags")
	}
	defer rows.Close()

	tags := make([]*Tag, 0)
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_tag")
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}

func (repository *PostgresRepository) ListAdopted(context context.Context, tenantID string) ([]*Tag, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s t
		JOIN %s i ON i.%s = t.%s
		WHERE i.%s = $1
		ORDER BY t.%s ASC
	`,
		tagColumns("t."),
		schema.Tag.Table, schema.TagInheritance.Table,
		schema.TagInheritance.TagID, schema.Tag.ID,
		schema.TagInheritance.TenantID, schema.Tag.Name,
	)

	rows, err := repository.db.Query(context, query, tenantID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_adopted_tags")
	}
	defer rows.Close()

	tags := make([]*Tag, 0)
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_adopted_tag")
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}

func (repository *PostgresRepository) GetByID(context context.Context, id string) (*Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		tagColumns(""), schema.Tag.Table, schema.Tag.ID)

	t, err := scanTag(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_tag_by_id")
	}
	return t, nil
}

func (repository *PostgresRepository) GetBySlug(context context.Context, scope Scope, tenantID *string, slug string) (*Tag, error) {
	var query string
	var args []any

	if scope == ScopePlatform {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
			tagColumns(""), schema.Tag.Table, schema.Tag.Scope, schema.Tag.Slug)
		args = []any{string(ScopePlatform), slug}
	} else {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
			tagColumns(""), schema.Tag.Table, schema.Tag.Scope, schema.Tag.TenantID, schema.Tag.Slug)
		args = []any{string(ScopeTenant), tenantID, slug}
	}

	t, err := scanTag(repository.db.QueryRow(context, query, args...))
	if err != nil {
		return nil, dberr.Wrap(err, "get_tag_by_slug")
	}
	return t, nil
}

func (repository *PostgresRepository) Create(context context.Context, tag *Tag) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s, %s
	`,
		schema.Tag.Table,
		schema.Tag.ID, schema.Tag.TenantID, schema.Tag.Scope, schema.Tag.ParentID,
		schema.Tag.Name, schema.Tag.Slug, schema.Tag.Description, schema.Tag.Category,
		schema.Tag.UsageCount, schema.Tag.IsActive, schema.Tag.IsSystem, schema.Tag.IsFeatured,
		schema.Tag.CreatedAt, schema.Tag.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		tag.ID, tag.TenantID, string(tag.Scope), tag.ParentID,
		tag.Name, tag.Slug, tag.Description, tag.Category,
		tag.UsageCount, tag.IsActive, tag.IsSystem, tag.IsFeatured,
	).Scan(&tag.CreatedAt, &tag.UpdatedAt)

	if dberr.IsUniqueViolation(err, "") {
		return apperr.Conflict("A tag with this slug already exists in this scope")
	}
	if err != nil {
		return dberr.Wrap(err, "create_tag")
	}
	return nil
}

func (repository *PostgresRepository) Update(context context.Context, tag *Tag) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.Tag.Table,
		schema.Tag.Name, schema.Tag.Slug, schema.Tag.Description, schema.Tag.Category,
		schema.Tag.IsActive, schema.Tag.IsFeatured, schema.Tag.UpdatedAt,
		schema.Tag.ID, schema.Tag.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		tag.ID, tag.Name, tag.Slug, tag.Description, tag.Category,
		tag.IsActive, tag.IsFeatured,
	).Scan(&tag.UpdatedAt)

	if dberr.IsUniqueViolation(err, "") {
		return apperr.Conflict("A tag with this slug already exists in this scope")
	}
	if err != nil {
		return dberr.Wrap(err, "update_tag")
	}
	return nil
}

func (repository *PostgresRepository) UpdateParent(context context.Context, id string, parentID *string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.Tag.Table, schema.Tag.ParentID, schema.Tag.UpdatedAt, schema.Tag.ID)

	cmd, err := repository.db.Exec(context, query, id, parentID)
	if err != nil {
		return dberr.Wrap(err, "update_tag_parent")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Tag")
	}
	return nil
}

func (repository *PostgresRepository) SetActive(context context.Context, id string, active bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.Tag.Table, schema.Tag.IsActive, schema.Tag.UpdatedAt, schema.Tag.ID)

	cmd, err := repository.db.Exec(context, query, id, active)
	if err != nil {
		return dberr.Wrap(err, "set_tag_active")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Tag")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.Tag.Table, schema.Tag.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_tag")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Tag")
	}
	return nil
}

func (repository *PostgresRepository) CountChildren(context context.Context, id string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.Tag.Table, schema.Tag.ParentID)

	var count int
	if err := repository.db.QueryRow(context, query, id).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count_tag_children")
	}
	return count, nil
}

func (repository *PostgresRepository) IsAdopted(context context.Context, tagID, tenantID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.TagInheritance.Table, schema.TagInheritance.TagID, schema.TagInheritance.TenantID)

	var adopted bool
	if err := repository.db.QueryRow(context, query, tagID, tenantID).Scan(&adopted); err != nil {
		return false, dberr.Wrap(err, "check_tag_adoption")
	}
	return adopted, nil
}

func (repository *PostgresRepository) Adopt(context context.Context, markerID, tagID, tenantID string) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)`,
		schema.TagInheritance.Table,
		schema.TagInheritance.ID, schema.TagInheritance.TagID, schema.TagInheritance.TenantID)

	_, err := repository.db.Exec(context, query, markerID, tagID, tenantID)
	if dberr.IsUniqueViolation(err, "") {
		return apperr.Conflict("Tag is already inherited by this tenant")
	}
	if err != nil {
		return dberr.Wrap(err, "adopt_tag")
	}
	return nil
}

func (repository *PostgresRepository) Unadopt(context context.Context, tagID, tenantID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.TagInheritance.Table, schema.TagInheritance.TagID, schema.TagInheritance.TenantID)

	cmd, err := repository.db.Exec(context, query, tagID, tenantID)
	if err != nil {
		return dberr.Wrap(err, "unadopt_tag")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Inheritance marker")
	}
	return nil
}

func (repository *PostgresRepository) AttachEntity(context context.Context, link *EntityTag) error {
	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_attach_entity")
	}
	defer tx.Rollback(context)

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s
	`,
		schema.EntityTag.Table,
		schema.EntityTag.ID, schema.EntityTag.TagID, schema.EntityTag.EntityType, schema.EntityTag.EntityID,
		schema.EntityTag.AddedAt,
	)

	err = tx.QueryRow(context, insert, link.ID, link.TagID, link.EntityType, link.EntityID).Scan(&link.AddedAt)
	if dberr.IsUniqueViolation(err, "") {
		return apperr.Conflict("Entity is already tagged with this tag")
	}
	if err != nil {
		return dberr.Wrap(err, "attach_entity")
	}

	bump := fmt.Sprintf(`UPDATE %s SET %s = %s + 1, %s = NOW() WHERE %s = $1`,
		schema.Tag.Table, schema.Tag.UsageCount, schema.Tag.UsageCount, schema.Tag.UpdatedAt, schema.Tag.ID)
	if _, err := tx.Exec(context, bump, link.TagID); err != nil {
		return dberr.Wrap(err, "bump_usage_count")
	}

	if err := tx.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_attach_entity")
	}
	return nil
}

func (repository *PostgresRepository) DetachEntity(context context.Context, tagID, entityType, entityID string) error {
	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_detach_entity")
	}
	defer tx.Rollback(context)

	remove := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		schema.EntityTag.Table,
		schema.EntityTag.TagID, schema.EntityTag.EntityType, schema.EntityTag.EntityID)

	cmd, err := tx.Exec(context, remove, tagID, entityType, entityID)
	if err != nil {
		return dberr.Wrap(err, "detach_entity")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Tag association")
	}

	// GREATEST guards the denormalized counter against drifting negative.
	drop := fmt.Sprintf(`UPDATE %s SET %s = GREATEST(%s - 1, 0), %s = NOW() WHERE %s = $1`,
		schema.Tag.Table, schema.Tag.UsageCount, schema.Tag.UsageCount, schema.Tag.UpdatedAt, schema.Tag.ID)
	if _, err := tx.Exec(context, drop, tagID); err != nil {
		return dberr.Wrap(err, "drop_usage_count")
	}

	if err := tx.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_detach_entity")
	}
	return nil
}
