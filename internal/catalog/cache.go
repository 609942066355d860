package catalog

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	value   any
	expires time.Time
}

// CachedSource serves repeated reads from memory until they go stale.
type CachedSource struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	flight  singleflight.Group
}

var _ Source = (*CachedSource)(nil)

// NewCachedSource wraps src. A non-positive ttl disables caching.
func NewCachedSource(src Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		src:     src,
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]cacheEntry{},
	}
}

func (c *CachedSource) FetchAllProducts(ctx context.Context) ([]Product, error) {
	out, err := cached(c, "products", func() ([]Product, error) { return c.src.FetchAllProducts(ctx) })
	return slices.Clone(out), err
}

func (c *CachedSource) FetchCategories(ctx context.Context) ([]string, error) {
	out, err := cached(c, "categories", func() ([]string, error) { return c.src.FetchCategories(ctx) })
	return slices.Clone(out), err
}

func (c *CachedSource) FetchProductByID(ctx context.Context, id int) (Product, error) {
	return cached(c, "product:"+strconv.Itoa(id), func() (Product, error) { return c.src.FetchProductByID(ctx, id) })
}

func (c *CachedSource) FetchProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	key := "category:" + strings.ToLower(strings.TrimSpace(category))
	out, err := cached(c, key, func() ([]Product, error) { return c.src.FetchProductsByCategory(ctx, category) })
	return slices.Clone(out), err
}

// Invalidate drops every cached entry.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	c.entries = map[string]cacheEntry{}
	c.mu.Unlock()
}

// Errors are never cached. Concurrent misses on one key share a single upstream call.
func cached[T any](c *CachedSource, key string, fetch func() (T, error)) (T, error) {
	if c.ttl > 0 {
		c.mu.RLock()
		entry, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && c.now().Before(entry.expires) {
			if v, ok := entry.value.(T); ok {
				return v, nil
			}
		}
	}

	shared, err, _ := c.flight.Do(key, func() (any, error) {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			c.entries[key] = cacheEntry{value: v, expires: c.now().Add(c.ttl)}
			c.mu.Unlock()
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return shared.(T), nil
}
