// Package cache provides a bounded in-process cache with absolute per-entry
// expiry and an optional remote mirror tier.
package cache

import (
	"context"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/ontoforge/ontology-core/pkg/logger"
	"github.com/ontoforge/ontology-core/pkg/metrics"
)

// Remote is a second cache tier, typically shared between processes. All
// calls are best-effort from the cache's point of view: failures are logged
// and never surfaced to callers.
type Remote interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Keys lists the stored keys matching a glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
	Flush(ctx context.Context) error
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Options configures a Cache.
type Options struct {
	// MaxEntries bounds the local tier. At capacity the entry with the
	// earliest expiry is evicted to make room.
	MaxEntries int
	// SweepInterval is how often expired entries are removed in the
	// background. Zero disables the sweeper.
	SweepInterval time.Duration
	// DefaultTTL applies when repopulating the local tier from the remote
	// tier, where the remaining remote lifetime is unknown.
	DefaultTTL time.Duration
	// Remote, when set, mirrors writes and serves local misses.
	Remote Remote
}

// Cache is a bounded expiring key-value map. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	max        int
	defaultTTL time.Duration
	remote     Remote
	log        *slog.Logger
	stop       chan struct{}
	stopOnce   sync.Once
}

func New(opts Options, log *slog.Logger) *Cache {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 10000
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = time.Minute
	}
	c := &Cache{
		entries:    make(map[string]entry),
		max:        opts.MaxEntries,
		defaultTTL: opts.DefaultTTL,
		remote:     opts.Remote,
		log:        log.With(logger.Scope("cache")),
		stop:       make(chan struct{}),
	}
	if opts.SweepInterval > 0 {
		go c.sweep(opts.SweepInterval)
	}
	return c
}

// Get returns the cached value, consulting the remote tier on a local miss
// and repopulating the local tier from it.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && time.Now().Before(e.expiresAt) {
		c.mu.Unlock()
		metrics.CacheHits.WithLabelValues("local").Inc()
		return e.value, true
	}
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if c.remote != nil {
		value, err := c.remote.Get(ctx, key)
		if err != nil {
			c.log.Warn("remote get failed", logger.Error(err), slog.String("key", key))
		} else if value != nil {
			c.setLocal(key, value, c.defaultTTL)
			metrics.CacheHits.WithLabelValues("remote").Inc()
			return value, true
		}
	}
	metrics.CacheMisses.Inc()
	return nil, false
}

// Set stores the value for ttl, mirroring to the remote tier best-effort.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.setLocal(key, value, ttl)
	if c.remote != nil {
		if err := c.remote.Set(ctx, key, value, ttl); err != nil {
			c.log.Warn("remote set failed", logger.Error(err), slog.String("key", key))
		}
	}
}

func (c *Cache) setLocal(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		c.evictEarliest()
	}
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	metrics.CacheSize.Set(float64(len(c.entries)))
}

// evictEarliest removes the entry closest to expiry. Called with the lock
// held.
func (c *Cache) evictEarliest() {
	var victim string
	var earliest time.Time
	for k, e := range c.entries {
		if victim == "" || e.expiresAt.Before(earliest) {
			victim = k
			earliest = e.expiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
		metrics.CacheEvictions.Inc()
	}
}

// Delete removes the keys from both tiers.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	metrics.CacheSize.Set(float64(len(c.entries)))
	c.mu.Unlock()

	if c.remote != nil && len(keys) > 0 {
		if err := c.remote.Delete(ctx, keys...); err != nil {
			c.log.Warn("remote delete failed", logger.Error(err))
		}
	}
}

// DeletePattern removes every key matching a glob pattern, e.g.
// "query:Project:*".
func (c *Cache) DeletePattern(ctx context.Context, pattern string) {
	c.mu.Lock()
	for k := range c.entries {
		if matched, _ := path.Match(pattern, k); matched {
			delete(c.entries, k)
		}
	}
	metrics.CacheSize.Set(float64(len(c.entries)))
	c.mu.Unlock()

	if c.remote != nil {
		keys, err := c.remote.Keys(ctx, pattern)
		if err != nil {
			c.log.Warn("remote keys failed", logger.Error(err), slog.String("pattern", pattern))
			return
		}
		if len(keys) > 0 {
			if err := c.remote.Delete(ctx, keys...); err != nil {
				c.log.Warn("remote delete failed", logger.Error(err))
			}
		}
	}
}

// Clear empties both tiers.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	metrics.CacheSize.Set(0)
	c.mu.Unlock()

	if c.remote != nil {
		if err := c.remote.Flush(ctx); err != nil {
			c.log.Warn("remote flush failed", logger.Error(err))
		}
	}
}

// Len reports the number of live local entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	now := time.Now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

// Close stops the background sweeper.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for k, e := range c.entries {
				if !now.Before(e.expiresAt) {
					delete(c.entries, k)
				}
			}
			metrics.CacheSize.Set(float64(len(c.entries)))
			c.mu.Unlock()
		}
	}
}
