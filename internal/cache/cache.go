package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/nao1215/a11yscan/internal/model"
)

// ResultCache holds finished reports keyed by normalized site URL for a
// fixed TTL. Entries are stored as JSON envelopes in a bigcache instance;
// expiry is checked against the envelope timestamp so that a clock can be
// injected.
type ResultCache struct {
	store *bigcache.BigCache
	ttl   time.Duration
	now   func() time.Time
}

// envelope is the stored form of a cache entry.
type envelope struct {
	StoredAt time.Time         `json:"stored_at"`
	Report   *model.ScanReport `json:"report"`
}

// Option configures a ResultCache.
type Option func(*ResultCache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a ResultCache with the given TTL.
func New(ctx context.Context, ttl time.Duration, opts ...Option) (*ResultCache, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache TTL must be positive, got %v", ttl)
	}
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 16
	cfg.CleanWindow = ttl
	cfg.MaxEntriesInWindow = 1024
	cfg.MaxEntrySize = 16 * 1024
	cfg.HardMaxCacheSize = 64 // MB
	cfg.Verbose = false

	store, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}

	c := &ResultCache{store: store, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the entry lifetime.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the report cached for key if it is younger than the TTL.
func (c *ResultCache) Get(key string) (*model.ScanReport, bool) {
	data, err := c.store.Get(key)
	if err != nil {
		return nil, false
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Report == nil {
		_ = c.store.Delete(key) //nolint:errcheck // best effort
		return nil, false
	}
	if c.now().Sub(env.StoredAt) >= c.ttl {
		_ = c.store.Delete(key) //nolint:errcheck // best effort
		return nil, false
	}
	return env.Report, true
}

// Set caches report under key.
func (c *ResultCache) Set(key string, report *model.ScanReport) error {
	data, err := json.Marshal(envelope{StoredAt: c.now(), Report: report})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := c.store.Set(key, data); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Delete removes key. Removing a missing key is not an error.
func (c *ResultCache) Delete(key string) error {
	if err := c.store.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *ResultCache) Len() int {
	return c.store.Len()
}

// Close stops the background cleanup of the cache.
func (c *ResultCache) Close() error {
	return c.store.Close()
}
