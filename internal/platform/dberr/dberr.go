// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wayneaws/studenthub/internal/platform/apperr"
)

// ErrNotFound is returned when a queried row doesn't exist.
var ErrNotFound = apperr.NotFound("Resource")

// IsUniqueViolation reports whether err is a SQLSTATE 23505, optionally on
// a specific constraint (pass "" to match any).
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// Wrap inspects a database error and classifies it.
//
//   - pgx.ErrNoRows becomes [ErrNotFound].
//   - Unique violations become a CONFLICT naming the action.
//   - Everything else is wrapped as "<action>_failed" for the caller to
//     surface as an internal error.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	if IsUniqueViolation(err, "") {
		return apperr.Conflict("Duplicate value").WithCause(err)
	}

	return fmt.Errorf("%s_failed: %w", action, err)
}
