// Package database handles SQL connection management and migration
// execution using goose. It provides a Connect function that returns a
// ready-to-use *sql.DB pool and a Migrate function for schema management.
// PostgreSQL (pgx) is the production driver; SQLite serves local
// development and the store tests.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// sqliteDriver is go-sqlite3 with a Unicode-aware fold() registered on
// every connection. SQLite's built-in LOWER() only folds ASCII.
const sqliteDriver = "sqlite3_blogql"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", strings.ToLower, true)
		},
	})
}

//go:embed migrations
var embedMigrations embed.FS

// Dialect names a supported SQL backend.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect validates a DB_DRIVER value.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case Postgres, SQLite:
		return Dialect(s), nil
	}
	return "", fmt.Errorf("unsupported database driver %q (want postgres or sqlite)", s)
}

// driverName returns the database/sql driver registered for the dialect.
func (d Dialect) driverName() string {
	if d == SQLite {
		return sqliteDriver
	}
	return "pgx"
}

// LowerFunc names the SQL function that lower-cases text with Unicode
// rules: LOWER on PostgreSQL, the registered fold() on SQLite.
func (d Dialect) LowerFunc() string {
	if d == SQLite {
		return "fold"
	}
	return "LOWER"
}

// gooseDialect returns the goose dialect name.
func (d Dialect) gooseDialect() string {
	if d == SQLite {
		return "sqlite3"
	}
	return "postgres"
}

// numberedParam matches PostgreSQL-style positional parameters.
var numberedParam = regexp.MustCompile(`\$(\d+)`)

// Rebind rewrites $N placeholders for the dialect. Queries are written
// with $N; SQLite treats $N as a named parameter indexed by first
// appearance, so it gets ?N instead, which binds by number.
func (d Dialect) Rebind(query string) string {
	if d != SQLite {
		return query
	}
	return numberedParam.ReplaceAllString(query, "?$1")
}

// Connect opens a connection pool for the dialect using the provided DSN.
// It verifies the connection with a ping before returning.
func Connect(dialect Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	if dialect == SQLite {
		// One connection keeps in-memory databases shared and serialises
		// writers, which SQLite requires anyway.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected", "driver", dialect)
	return db, nil
}

// Migrate runs all pending goose migrations for the dialect from the
// embedded SQL files. Migrations are embedded at compile time so no
// external files are needed at runtime.
func Migrate(db *sql.DB, dialect Dialect) error {
	goose.SetBaseFS(embedMigrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect.gooseDialect()); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations/"+string(dialect)); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied", "driver", dialect)
	return nil
}

// MemoryDSN returns a DSN for a named, shared in-memory SQLite database
// with foreign keys enforced. Each distinct name is an isolated database.
func MemoryDSN(name string) string {
	name = strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(name)
	return "file:" + name + "?mode=memory&cache=shared&_foreign_keys=1"
}
