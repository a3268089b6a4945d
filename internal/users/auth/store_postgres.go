// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package auth

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

type PostgresAccountRepository struct {
	db *pgxpool.Pool
}

func NewPostgresAccountRepository(db *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func accountColumns() string {
	return strings.Join(schema.UserAccount.Columns(), ", ")
}

func scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID, &account.Email, &account.Password, &account.DisplayName,
		&account.Role, &account.TenantID, &account.IsActive,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		accountColumns(), schema.UserAccount.Table, schema.UserAccount.ID)

	account, err := scanAccount(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_account_by_id")
	}
	return account, nil
}

func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE LOWER(%s) = LOWER($1)`,
		accountColumns(), schema.UserAccount.Table, schema.UserAccount.Email)

	account, err := scanAccount(repository.db.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "find_account_by_email")
	}
	return account, nil
}

func (repository *PostgresAccountRepository) Create(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s
	`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Email, schema.UserAccount.Password,
		schema.UserAccount.DisplayName, schema.UserAccount.Role,
		schema.UserAccount.TenantID, schema.UserAccount.IsActive,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		account.ID, account.Email, account.Password, account.DisplayName,
		string(account.Role), account.TenantID, account.IsActive,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	if dberr.IsUniqueViolation(err, "") {
		return apperr.Conflict("Email is already registered")
	}
	if err != nil {
		return dberr.Wrap(err, "create_account")
	}
	return nil
}

func (repository *PostgresAccountRepository) UpdatePassword(context context.Context, id, passwordHash string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.Password,
		schema.UserAccount.UpdatedAt, schema.UserAccount.ID)

	cmd, err := repository.db.Exec(context, query, id, passwordHash)
	if err != nil {
		return dberr.Wrap(err, "update_account_password")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}
	return nil
}

func (repository *PostgresAccountRepository) SetActive(context context.Context, id string, active bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.IsActive,
		schema.UserAccount.UpdatedAt, schema.UserAccount.ID)

	cmd, err := repository.db.Exec(context, query, id, active)
	if err != nil {
		return dberr.Wrap(err, "set_account_active")
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}
	return nil
}
