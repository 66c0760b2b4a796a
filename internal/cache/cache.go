// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache provides the side cache used by the content and auth
// services. Two backends implement Store: Valkey (shared across instances)
// and an in-process ristretto cache. Entries are advisory; the database is
// always the system of record.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"blogql/internal/metrics"
)

// Store is a key/value cache with per-key TTL.
type Store interface {
	// Get returns the value and true on a hit, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value that expires after ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Incr increments an integer counter and restarts its TTL, returning
	// the new value. A missing key counts from zero.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Close releases the backend.
	Close() error
}

// PatternDeleter is implemented by stores that can delete every key
// matching a glob pattern, such as Valkey via SCAN.
type PatternDeleter interface {
	DeletePattern(ctx context.Context, pattern string) (int, error)
}

// ErrClosed is returned by a store used after Close.
var ErrClosed = errors.New("cache: store closed")

// GetJSON reads and decodes a cached value. Failures are logged and
// reported as a miss so callers fall through to the database.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool) {
	var zero T
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		slog.Warn("cache get error", "key", key, "error", err)
		return zero, false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return zero, false
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		slog.Warn("cache decode error", "key", key, "error", err)
		return zero, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	slog.Debug("cache hit", "key", key)
	return v, true
}

// SetJSON encodes and stores a value. Failures are logged and swallowed.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cache encode error", "key", key, "error", err)
		return
	}
	if err := s.Set(ctx, key, raw, ttl); err != nil {
		slog.Warn("cache set error", "key", key, "error", err)
	}
}

// Invalidate deletes keys, logging rather than returning failures.
func Invalidate(ctx context.Context, s Store, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.Delete(ctx, keys...); err != nil {
		slog.Warn("cache invalidate error", "keys", keys, "error", err)
		return
	}
	metrics.CacheInvalidations.Add(float64(len(keys)))
	slog.Debug("cache invalidated", "keys", keys)
}
