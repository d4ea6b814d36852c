// Package cache holds bounded in-memory caches for query results.
package cache

import (
	"slices"
	"sync"
)

// SliceCache maps string keys to slices. Values are copied on the way in and
// out so callers never share backing arrays with the cache.
type SliceCache[T any] struct {
	mu       sync.RWMutex
	data     map[string][]T
	order    []string
	capacity int
}

// NewSliceCache returns a cache holding at most capacity entries. When full,
// the oldest entry is evicted. capacity <= 0 disables caching.
func NewSliceCache[T any](capacity int) *SliceCache[T] {
	return &SliceCache[T]{
		data:     make(map[string][]T),
		capacity: capacity,
	}
}

func (c *SliceCache[T]) Get(key string) ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.data[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

func (c *SliceCache[T]) Put(key string, v []T) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[key]; !ok {
		if len(c.order) == c.capacity {
			delete(c.data, c.order[0])
			c.order = c.order[1:]
		}
		c.order = append(c.order, key)
	}
	c.data[key] = slices.Clone(v)
}

func (c *SliceCache[T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
