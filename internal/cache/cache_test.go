// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package cache

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/tactica/internal/metrics"
)

func newTestCache[V any](t *testing.T, name string, ttl time.Duration) *Cache[V] {
	t.Helper()
	c, err := New[V](name, 100, ttl)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestCacheSetGet(t *testing.T) {
	c := newTestCache[string](t, "test_set_get", time.Minute)

	c.Set("key1", "value1")
	c.Wait()

	v, ok := c.Get("key1")
	if !ok || v != "value1" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	if _, ok := c.Get("key2"); ok {
		t.Error("key2 should be absent")
	}
	if s := c.Stats(); s.Hits != 1 || s.Misses != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestCacheExpiration(t *testing.T) {
	c := newTestCache[int](t, "test_expiry", 50*time.Millisecond)

	c.Set("k", 1)
	c.Wait()
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry missing right after set")
	}

	time.Sleep(100 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should have expired")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := newTestCache[string](t, "test_clear", time.Minute)

	for _, k := range []string{"a", "b", "c"} {
		c.Set(k, k)
	}
	c.Wait()

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be deleted")
	}

	c.Clear()
	for _, k := range []string{"b", "c"} {
		if _, ok := c.Get(k); ok {
			t.Errorf("%s should be cleared", k)
		}
	}
}

func TestCacheMetrics(t *testing.T) {
	const name = "test_metrics"
	c := newTestCache[string](t, name, time.Minute)

	hitsBefore := testutil.ToFloat64(metrics.CacheHits.WithLabelValues(name))
	missesBefore := testutil.ToFloat64(metrics.CacheMisses.WithLabelValues(name))

	c.Set("k", "v")
	c.Wait()
	c.Get("k")
	c.Get("missing")

	if got := testutil.ToFloat64(metrics.CacheHits.WithLabelValues(name)) - hitsBefore; got != 1 {
		t.Errorf("hits delta = %v", got)
	}
	if got := testutil.ToFloat64(metrics.CacheMisses.WithLabelValues(name)) - missesBefore; got != 1 {
		t.Errorf("misses delta = %v", got)
	}
}

func TestNilCache(t *testing.T) {
	var c *Cache[string]
	c.Set("k", "v")
	if _, ok := c.Get("k"); ok {
		t.Error("nil cache returned a value")
	}
	c.Clear()
	c.Delete("k")
	c.Close()
	if s := c.Stats(); s != (Stats{}) {
		t.Errorf("stats = %+v", s)
	}
}
