// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// DefaultMemoryBytes bounds the in-process cache.
const DefaultMemoryBytes = 64 << 20

// MemoryStore is an in-process Store on ristretto. It suits single-instance
// deployments and tests; state is lost on restart and is not shared.
type MemoryStore struct {
	cache *ristretto.Cache[string, []byte]

	// incrMu serialises read-modify-write counters.
	incrMu sync.Mutex
	closed atomic.Bool
}

// NewMemoryStore creates a cache holding at most maxBytes of values.
func NewMemoryStore(maxBytes int64) (*MemoryStore, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMemoryBytes
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        1e5,
		MaxCost:            maxBytes,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("ristretto: %w", err)
	}
	return &MemoryStore{cache: c}, nil
}

// Get returns the value stored at key.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrClosed
	}
	v, ok := s.cache.Get(key)
	return v, ok, nil
}

// Set stores value at key. The write is flushed before returning so a
// following Get observes it.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.cache.SetWithTTL(key, value, int64(len(value))+1, ttl)
	s.cache.Wait()
	return nil
}

// Delete removes keys.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	for _, k := range keys {
		s.cache.Del(k)
	}
	s.cache.Wait()
	return nil
}

// Incr increments the decimal counter at key and restarts its TTL.
func (s *MemoryStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.incrMu.Lock()
	defer s.incrMu.Unlock()

	var n int64
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if ok {
		if n, err = strconv.ParseInt(string(raw), 10, 64); err != nil {
			return 0, fmt.Errorf("incr %s: value is not an integer", key)
		}
	}
	n++
	if err := s.Set(ctx, key, []byte(strconv.FormatInt(n, 10)), ttl); err != nil {
		return 0, err
	}
	return n, nil
}

// Close stops ristretto's background goroutines.
func (s *MemoryStore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.cache.Close()
	}
	return nil
}
