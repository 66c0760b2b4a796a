package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"blogql/internal/models"
)

// PasswordHasher hashes plaintext passwords for seeded accounts.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// SeedRoles makes sure every canonical role exists. Each role is a single
// conditional insert keyed on the unique name, so concurrent instances
// starting at the same time cannot create duplicates or fail.
func SeedRoles(ctx context.Context, db *sql.DB, dialect Dialect) error {
	query := dialect.Rebind(`
		INSERT INTO roles (id, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
	`)

	now := time.Now().UTC()
	for _, name := range models.CanonicalRoles {
		res, err := db.ExecContext(ctx, query, uuid.New(), string(name), now)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			slog.Info("role seeded", "role", name)
		}
	}
	return nil
}

// SeedAdmin creates an Admin account for the given email unless one with
// that email already exists. Used in development and by the seed command.
func SeedAdmin(ctx context.Context, db *sql.DB, dialect Dialect, hasher PasswordHasher, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return fmt.Errorf("seed admin: email and password are required")
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("seed admin hash: %w", err)
	}

	now := time.Now().UTC()
	res, err := db.ExecContext(ctx, dialect.Rebind(`
		INSERT INTO users (id, email, password_hash, name, role_id, totp_enabled, created_at, updated_at)
		SELECT $1, $2, $3, $4, r.id, FALSE, $5, $5
		FROM roles r WHERE r.name = $6
		ON CONFLICT (email) DO NOTHING
	`), uuid.New(), email, hash, "Admin", now, string(models.RoleAdmin))
	if err != nil {
		return fmt.Errorf("seed admin insert: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		slog.Info("admin account already present, skipping", "email", email)
		return nil
	}

	slog.Info("database seeded with admin account", "email", email)
	return nil
}
