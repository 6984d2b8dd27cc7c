package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache is a TTL cache of decoded API responses keyed by request URL
type Cache[T any] struct {
	impl *ristretto.Cache[string, T]
	ttl  time.Duration
	name string
}

// New creates a cache bounded by maxCost. costFunc weighs each value.
func New[T any](name string, maxCost int64, ttl time.Duration, costFunc func(T) int64) (*Cache[T], error) {
	impl, err := ristretto.NewCache(&ristretto.Config[string, T]{
		NumCounters: 1e4,
		MaxCost:     maxCost,
		BufferItems: 64,
		Metrics:     true,
		Cost:        costFunc,
	})
	if err != nil {
		return nil, err
	}

	return &Cache[T]{
		impl: impl,
		ttl:  ttl,
		name: name,
	}, nil
}

// Name identifies the cache in logs
func (c *Cache[T]) Name() string {
	return c.name
}

// Get retrieves a value from the cache
func (c *Cache[T]) Get(key string) (T, bool) {
	return c.impl.Get(key)
}

// Set stores a value with the cache's TTL; the cost comes from the cost function
func (c *Cache[T]) Set(key string, value T) bool {
	return c.impl.SetWithTTL(key, value, 0, c.ttl)
}

// Wait blocks until buffered writes are applied
func (c *Cache[T]) Wait() {
	c.impl.Wait()
}

// Clear removes all items from the cache
func (c *Cache[T]) Clear() {
	c.impl.Clear()
}

// Close stops the cache's background goroutines
func (c *Cache[T]) Close() {
	c.impl.Close()
}

// Stats is a snapshot of hit/miss counters
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Keys   uint64 `json:"keys"`
}

// Stats returns cache statistics
func (c *Cache[T]) Stats() Stats {
	m := c.impl.Metrics
	return Stats{
		Hits:   m.Hits(),
		Misses: m.Misses(),
		Keys:   m.KeysAdded() - m.KeysEvicted(),
	}
}
