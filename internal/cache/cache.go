// ABOUTME: Two-tier cache: in-process memory map over an optional persistent backend.
// ABOUTME: Entries carry tags; invalidation is by exact tag, never by key substring.
package cache

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/tribe/internal/metrics"
)

// DefaultTTL applies when Set is called without an explicit TTL.
const DefaultTTL = 5 * time.Minute

// Backend is the persistent tier. Values are opaque envelopes produced by Cache.
type Backend interface {
	Get(ctx context.Context, key string) (data []byte, ttl time.Duration, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration, tags []string) error
	Delete(ctx context.Context, key string) error
	InvalidateTag(ctx context.Context, tag string) error
}

type entry struct {
	value   []byte
	expires time.Time
	tags    []string
}

// envelope is what the backend stores, so promoted entries keep their tags.
type envelope struct {
	Value []byte   `json:"v"`
	Tags  []string `json:"t,omitempty"`
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	logger  *log.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithBackend layers a persistent tier under the memory map.
func WithBackend(b Backend) Option {
	return func(c *Cache) { c.backend = b }
}

// WithTTL sets the default time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger used for backend failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// New creates a cache. Without a backend it is memory-only.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key, checking memory then the backend.
// Backend hits are promoted into memory with their remaining TTL.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && c.now().Before(e.expires) {
		c.mu.Unlock()
		metrics.CacheRequests.WithLabelValues("memory", "hit").Inc()
		return e.value, true
	}
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	metrics.CacheRequests.WithLabelValues("memory", "miss").Inc()

	if c.backend == nil {
		return nil, false
	}

	data, ttl, found, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache backend get failed", "key", key, "err", err)
		return nil, false
	}
	if !found {
		metrics.CacheRequests.WithLabelValues("backend", "miss").Inc()
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("cache backend entry unreadable", "key", key, "err", err)
		return nil, false
	}
	metrics.CacheRequests.WithLabelValues("backend", "hit").Inc()

	if ttl <= 0 || ttl > c.ttl {
		ttl = c.ttl
	}
	c.mu.Lock()
	c.entries[key] = entry{value: env.Value, expires: c.now().Add(ttl), tags: env.Tags}
	c.mu.Unlock()

	return env.Value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, tags ...string) {
	c.SetWithTTL(ctx, key, value, c.ttl, tags...)
}

// SetWithTTL stores value under key in both tiers.
func (c *Cache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	tags = slices.Clone(tags)

	c.mu.Lock()
	c.entries[key] = entry{value: value, expires: c.now().Add(ttl), tags: tags}
	c.mu.Unlock()

	if c.backend == nil {
		return
	}
	data, err := json.Marshal(envelope{Value: value, Tags: tags})
	if err != nil {
		c.logger.Warn("cache envelope encode failed", "key", key, "err", err)
		return
	}
	if err := c.backend.Set(ctx, key, data, ttl, tags); err != nil {
		c.logger.Warn("cache backend set failed", "key", key, "err", err)
	}
}

// Delete removes key from both tiers.
func (c *Cache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if c.backend == nil {
		return
	}
	if err := c.backend.Delete(ctx, key); err != nil {
		c.logger.Warn("cache backend delete failed", "key", key, "err", err)
	}
}

// InvalidateTag removes every entry carrying tag from both tiers.
func (c *Cache) InvalidateTag(ctx context.Context, tag string) {
	c.mu.Lock()
	for key, e := range c.entries {
		if slices.Contains(e.tags, tag) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()

	if c.backend == nil {
		return
	}
	if err := c.backend.InvalidateTag(ctx, tag); err != nil {
		c.logger.Warn("cache backend invalidate failed", "tag", tag, "err", err)
	}
}

// Len returns the number of live entries in the memory tier.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for _, e := range c.entries {
		if now.Before(e.expires) {
			n++
		}
	}
	return n
}

// GetJSON decodes a cached JSON value into T.
func GetJSON[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var v T
	data, ok := c.Get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false
	}
	return v, true
}

// SetJSON encodes v as JSON and caches it.
func SetJSON(ctx context.Context, c *Cache, key string, v any, tags ...string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.Set(ctx, key, data, tags...)
	return nil
}
