// Package cache memoizes enriched collections.
//
// A Cache is created once per process and handed to the enrichers. Entries
// are whole collections and are never mutated after they are stored; a miss
// recomputes the collection from scratch.
package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/eventcatalog/catalog-engine/internal/metrics"
)

// Key identifies a cached collection computed with a given flag set.
type Key struct {
	Collection string
	Variant    string
}

func (k Key) String() string {
	return k.Collection + ":" + k.Variant
}

type Cache struct {
	enabled bool

	mu      sync.RWMutex
	entries map[Key]any
	gen     uint64

	group singleflight.Group
}

// New returns a cache. A disabled cache computes on every call.
func New(enabled bool) *Cache {
	return &Cache{
		enabled: enabled,
		entries: make(map[Key]any),
	}
}

// Enabled reports whether values are retained between calls.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

func (c *Cache) Get(key Key) (any, bool) {
	if !c.Enabled() {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache) Set(key Key, v any) {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = v
}

// Reset drops every entry. Computations already in flight finish but their
// results are not stored.
func (c *Cache) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]any)
	c.gen++
}

// Invalidate drops every variant of collection.
func (c *Cache) Invalidate(collection string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.entries {
		if k.Collection == collection {
			delete(c.entries, k)
		}
	}
	c.gen++
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func (c *Cache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// setIfCurrent stores v unless the cache was reset since gen was read.
func (c *Cache) setIfCurrent(key Key, v any, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return
	}
	c.entries[key] = v
}

// Load returns the cached value for key, computing it on a miss. Concurrent
// misses for the same key share one computation. Errors are never cached.
func Load[T any](ctx context.Context, c *Cache, key Key, compute func(context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return compute(ctx)
	}

	logger := log.FromContext(ctx).WithValues("cache", key.String())

	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			metrics.CacheHitsTotal.WithLabelValues(key.Collection).Inc()
			logger.V(1).Info("cache hit")
			return typed, nil
		}
	}
	metrics.CacheMissesTotal.WithLabelValues(key.Collection).Inc()

	gen := c.generation()
	v, err, shared := c.group.Do(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		out, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.setIfCurrent(key, out, gen)
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: %s holds %T", key, v)
	}
	if shared {
		logger.V(1).Info("shared in-flight computation")
	}
	return typed, nil
}
