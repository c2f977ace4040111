// Package memory provides the in-process response cache.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure ResponseCache implements the interface.
var _ driven.ResponseCache = (*ResponseCache)(nil)

// ResponseCache is an in-memory implementation of driven.ResponseCache.
// Entries expire after the TTL and are evicted when looked up.
type ResponseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]domain.CacheEntry
}

// Option configures a ResponseCache.
type Option func(*ResponseCache)

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *ResponseCache) {
		c.now = now
	}
}

// NewResponseCache creates an empty cache. A non-positive ttl uses the default of one hour.
func NewResponseCache(ttl time.Duration, opts ...Option) *ResponseCache {
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	c := &ResponseCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]domain.CacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the response for key unless it is missing or expired.
func (c *ResponseCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if entry.Expired(c.now(), c.ttl) {
		delete(c.entries, key)
		return "", false, nil
	}
	return entry.Response, true, nil
}

// Put stores a response.
func (c *ResponseCache) Put(_ context.Context, key, response string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = domain.CacheEntry{Response: response, CreatedAt: c.now()}
	return nil
}

// Clear removes every entry.
func (c *ResponseCache) Clear(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]domain.CacheEntry)
	return n, nil
}

// Len returns the number of stored entries.
func (c *ResponseCache) Len(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), nil
}
