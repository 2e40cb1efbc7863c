// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package cache

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/tomtom215/tactica/internal/metrics"
)

// Cache is a TTL cache of values of type V keyed by string. A nil *Cache
// is valid and caches nothing.
type Cache[V any] struct {
	name  string
	ttl   time.Duration
	store *ristretto.Cache[string, V]

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats is a snapshot of hit and miss counts.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// New creates a cache holding up to maxEntries values for ttl each. name
// labels the hit and miss metrics.
func New[V any](name string, maxEntries int64, ttl time.Duration) (*Cache[V], error) {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	store, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		// MaxCost counts entries, not bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s cache: %w", name, err)
	}
	return &Cache[V]{name: name, ttl: ttl, store: store}, nil
}

// Get returns the cached value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	v, ok := c.store.Get(key)
	if !ok {
		c.misses.Add(1)
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return zero, false
	}
	c.hits.Add(1)
	metrics.CacheHits.WithLabelValues(c.name).Inc()
	return v, true
}

// Set stores value under key with the cache TTL. Each entry costs one slot.
func (c *Cache[V]) Set(key string, value V) {
	if c == nil {
		return
	}
	c.store.SetWithTTL(key, value, 1, c.ttl)
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	if c == nil {
		return
	}
	c.store.Del(key)
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	if c == nil {
		return
	}
	c.store.Clear()
}

// Wait blocks until buffered writes are applied.
func (c *Cache[V]) Wait() {
	if c == nil {
		return
	}
	c.store.Wait()
}

// Stats returns hit and miss counts since creation.
func (c *Cache[V]) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Close stops the cache's background goroutines.
func (c *Cache[V]) Close() {
	if c == nil {
		return
	}
	c.store.Close()
}
