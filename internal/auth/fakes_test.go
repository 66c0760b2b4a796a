package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"blogql/internal/models"
)

// clockCache is an in-memory cache.Store whose expiry follows a manual clock.
type clockCache struct {
	mu      sync.Mutex
	now     time.Time
	entries map[string]clockEntry
}

type clockEntry struct {
	val     []byte
	expires time.Time
}

func newClockCache() *clockCache {
	return &clockCache{now: time.Unix(1_700_000_000, 0), entries: map[string]clockEntry{}}
}

func (c *clockCache) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *clockCache) getLocked(key string) ([]byte, bool) {
	e, ok := c.entries[key]
	if !ok || !c.now.Before(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.val, true
}

func (c *clockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.getLocked(key)
	return v, ok, nil
}

func (c *clockCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = clockEntry{val: value, expires: c.now.Add(ttl)}
	return nil
}

func (c *clockCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *clockCache) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	if v, ok := c.getLocked(key); ok {
		n, _ = strconv.ParseInt(string(v), 10, 64)
	}
	n++
	c.entries[key] = clockEntry{val: []byte(strconv.FormatInt(n, 10)), expires: c.now.Add(ttl)}
	return n, nil
}

func (c *clockCache) Close() error { return nil }

// brokenCache fails every operation.
type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errCacheDown
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error { return errCacheDown }
func (brokenCache) Delete(context.Context, ...string) error                 { return errCacheDown }
func (brokenCache) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errCacheDown
}
func (brokenCache) Close() error { return nil }

// userMap is a UserLookup over a map keyed by email.
type userMap map[string]*models.User

func (m userMap) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return m[email], nil
}

var testHasher = BcryptHasher{Cost: bcrypt.MinCost}

func mustHash(p string) string {
	h, err := testHasher.Hash(p)
	if err != nil {
		panic(err)
	}
	return h
}
