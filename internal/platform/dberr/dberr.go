// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// It classifies pgx errors by SQLSTATE so that storage code can stay free
// of HTTP-level concerns while services still receive precise [apperr]
// codes (not-found, unique-constraint conflict, FK violation).
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/souqly/souqly-api/internal/platform/apperr"
)

// PostgreSQL SQLSTATE classes this API cares about.
const (
	sqlstateUniqueViolation     = "23505"
	sqlstateForeignKeyViolation = "23503"
)

// Wrap inspects a database error and converts it into a meaningful
// [apperr.AppError]. Internal database details never reach the client.
//
// The action string names the failed operation for server-side logs.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Resource")
	}

	// 2. Constraint violations carry a SQLSTATE we can classify.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateUniqueViolation:
			return apperr.Conflict("A resource with the same unique value already exists")
		case sqlstateForeignKeyViolation:
			return apperr.InUse("The resource is referenced by other records")
		}
	}

	// 3. Anything else is an internal server error.
	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation, optionally matching a specific constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != sqlstateUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
