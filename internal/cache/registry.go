package cache

import (
	"context"
	"log/slog"
	"sync"
)

// KeyRegistry tracks the live keys of each invalidation class so a whole
// class can be dropped without pattern deletes. When the store also
// implements PatternDeleter, the class patterns are swept as well, which
// clears keys written by other instances or before a restart.
type KeyRegistry struct {
	store Store

	mu       sync.Mutex
	keys     map[string]map[string]struct{}
	patterns map[string][]string
}

// NewKeyRegistry creates an empty registry over store.
func NewKeyRegistry(store Store) *KeyRegistry {
	return &KeyRegistry{
		store:    store,
		keys:     make(map[string]map[string]struct{}),
		patterns: make(map[string][]string),
	}
}

// Register declares the glob patterns that cover a class.
func (r *KeyRegistry) Register(class string, patterns ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns[class] = append(r.patterns[class], patterns...)
}

// Track records key as a member of class.
func (r *KeyRegistry) Track(class, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.keys[class]
	if !ok {
		set = make(map[string]struct{})
		r.keys[class] = set
	}
	set[key] = struct{}{}
}

// Keys returns the tracked members of class.
func (r *KeyRegistry) Keys(class string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.keys[class]))
	for k := range r.keys[class] {
		out = append(out, k)
	}
	return out
}

// Invalidate deletes every key of class from the store and forgets them.
func (r *KeyRegistry) Invalidate(ctx context.Context, class string) {
	r.mu.Lock()
	set := r.keys[class]
	delete(r.keys, class)
	patterns := r.patterns[class]
	r.mu.Unlock()

	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	Invalidate(ctx, r.store, keys...)

	pd, ok := r.store.(PatternDeleter)
	if !ok {
		return
	}
	for _, p := range patterns {
		if n, err := pd.DeletePattern(ctx, p); err != nil {
			slog.Warn("cache pattern invalidate error", "pattern", p, "error", err)
		} else if n > 0 {
			slog.Debug("cache pattern invalidated", "pattern", p, "deleted", n)
		}
	}
}
