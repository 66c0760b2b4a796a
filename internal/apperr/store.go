// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package apperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// PostgreSQL SQLSTATE codes for integrity violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ConstraintKind identifies the integrity rule a store error violated.
type ConstraintKind int

const (
	ConstraintNone ConstraintKind = iota
	ConstraintUnique
	ConstraintForeignKey
)

// Constraint inspects a driver error and reports which integrity rule it
// violated. Both supported drivers (pgx, sqlite3) are recognised.
func Constraint(err error) ConstraintKind {
	if err == nil {
		return ConstraintNone
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ConstraintUnique
		case pgForeignKeyViolation:
			return ConstraintForeignKey
		}
		return ConstraintNone
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ConstraintUnique
		case sqlite3.ErrConstraintForeignKey:
			return ConstraintForeignKey
		}
	}
	return ConstraintNone
}

// FromStore translates integrity violations into CONFLICT or
// VALIDATION_ERROR using the given client-safe messages. Other errors are
// returned unchanged so callers can keep wrapping them.
func FromStore(err error, conflictMsg, foreignKeyMsg string) error {
	switch Constraint(err) {
	case ConstraintUnique:
		return Wrap(err, KindConflict, conflictMsg)
	case ConstraintForeignKey:
		return Wrap(err, KindValidation, foreignKeyMsg)
	}
	return err
}
