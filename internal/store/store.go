// Package store provides database access methods for all blog entities.
// Each store struct wraps a *sql.DB together with its SQL dialect and
// exposes typed query methods. Lookups that find nothing return nil, nil;
// integrity violations are translated into apperr kinds here so services
// never see driver-specific errors.
package store

import (
	"context"
	"database/sql"
	"time"

	"blogql/internal/database"
)

// conn is the handle every store embeds. Queries are written with $N
// placeholders and rebound for the dialect on the way out.
type conn struct {
	db      *sql.DB
	dialect database.Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, c.dialect.Rebind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, c.dialect.Rebind(query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, c.dialect.Rebind(query), args...)
}

// now returns the current UTC time at the precision PostgreSQL keeps, so a
// value written and read back compares equal.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// affected reports whether a write touched at least one row.
func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
