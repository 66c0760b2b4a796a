// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache_log.go keeps the audit trail of cache evictions caused by content
// writes. Rows are append-only; Prune trims old history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"blogql/internal/database"
)

// Invalidation is one recorded eviction: which entity changed, and the
// write that caused it (create, update, delete, assign_category).
type Invalidation struct {
	ID            int64
	EntityType    string
	EntityID      uuid.UUID
	Action        string
	InvalidatedAt time.Time
}

// CacheLogStore persists Invalidation rows.
type CacheLogStore struct {
	conn
}

// NewCacheLogStore creates a new CacheLogStore.
func NewCacheLogStore(db *sql.DB, dialect database.Dialect) *CacheLogStore {
	return &CacheLogStore{conn{db: db, dialect: dialect}}
}

// Log appends an invalidation. Failures are logged and swallowed so a
// broken audit table never fails the content write that triggered it.
func (s *CacheLogStore) Log(ctx context.Context, entityType string, entityID uuid.UUID, action string) {
	attrs := []any{"entity_type", entityType, "entity_id", entityID, "action", action}
	if _, err := s.exec(ctx, `
		INSERT INTO cache_invalidation_log (entity_type, entity_id, action, invalidated_at)
		VALUES ($1, $2, $3, $4)
	`, entityType, entityID, action, now()); err != nil {
		slog.Warn("cache invalidation not recorded", append(attrs, "error", err)...)
		return
	}
	slog.Debug("cache invalidation recorded", attrs...)
}

// RecentEntries returns up to limit invalidations, newest first.
func (s *CacheLogStore) RecentEntries(ctx context.Context, limit int) ([]Invalidation, error) {
	return s.list(ctx, `
		SELECT id, entity_type, entity_id, action, invalidated_at
		FROM cache_invalidation_log
		ORDER BY invalidated_at DESC, id DESC
		LIMIT $1
	`, limit)
}

// History returns every invalidation recorded for one entity, oldest first.
func (s *CacheLogStore) History(ctx context.Context, entityType string, entityID uuid.UUID) ([]Invalidation, error) {
	return s.list(ctx, `
		SELECT id, entity_type, entity_id, action, invalidated_at
		FROM cache_invalidation_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY invalidated_at, id
	`, entityType, entityID)
}

// Prune deletes entries recorded before cutoff and reports how many went.
func (s *CacheLogStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM cache_invalidation_log WHERE invalidated_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune cache log: %w", err)
	}
	return res.RowsAffected()
}

func (s *CacheLogStore) list(ctx context.Context, query string, args ...any) ([]Invalidation, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cache log: %w", err)
	}
	defer rows.Close()

	var out []Invalidation
	for rows.Next() {
		var e Invalidation
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.InvalidatedAt); err != nil {
			return nil, fmt.Errorf("scan cache log: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
