/*
Copyright 2026 Vimeo Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package clock implements a fixed-capacity cache using the CLOCK
// (second chance) replacement policy.
package clock // import "github.com/vimeo/kcache/clock"

import (
	"sync"

	"go.uber.org/atomic"
)

// maxTouches caps how many sweeps a frequently read entry can survive.
const maxTouches = 3

type slot[K comparable, V any] struct {
	key   K
	value V
}

// Cache is a cache based on the CLOCK cache policy.
// It stores elements in a ring buffer, and stores a
// touch count for each element in the cache which
// is uses to determine whether or not a given element
// should be evicted (lower touches means more likely
// to be evicted). It is safe for concurrent access; Get only
// takes a read lock.
type Cache[K comparable, V any] struct {
	// OnEvicted optionally specifies a callback run when an entry is
	// swept out to make room. It runs after the lock is released.
	OnEvicted func(key K, val V)

	maxEntries int

	mu      sync.RWMutex
	indices map[K]int
	buf     []slot[K, V]
	touches []atomic.Int32
	free    []int
	hand    int
}

// New creates a Cache holding at most maxEntries entries. If maxEntries
// is zero or negative, Put is a no-op.
func New[K comparable, V any](maxEntries int) *Cache[K, V] {
	n := max(maxEntries, 0)
	return &Cache[K, V]{
		maxEntries: maxEntries,
		indices:    make(map[K]int, n),
		buf:        make([]slot[K, V], 0, n),
		touches:    make([]atomic.Int32, n),
	}
}

// Put inserts a given key-value pair into the cache,
// evicting a previous entry if necessary. Updating a resident key
// counts as a touch.
func (c *Cache[K, V]) Put(key K, val V) {
	if c.maxEntries <= 0 {
		return
	}
	evicted, ok := c.put(key, val)
	if ok && c.OnEvicted != nil {
		c.OnEvicted(evicted.key, evicted.value)
	}
}

func (c *Cache[K, V]) put(key K, val V) (evicted slot[K, V], didEvict bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index, hit := c.indices[key]; hit {
		c.buf[index].value = val
		c.touch(index)
		return evicted, false
	}
	var index int
	switch {
	case len(c.free) > 0:
		index = c.free[len(c.free)-1]
		c.free = c.free[:len(c.free)-1]
	case len(c.buf) < c.maxEntries:
		c.buf = append(c.buf, slot[K, V]{})
		index = len(c.buf) - 1
	default:
		// Full, evict by reference count then replace
		for c.touches[c.hand].Load() > 0 {
			c.touches[c.hand].Dec()
			c.hand = (c.hand + 1) % len(c.buf)
		}
		index = c.hand
		evicted, didEvict = c.buf[index], true
		delete(c.indices, evicted.key)
		c.hand = (c.hand + 1) % len(c.buf)
	}
	c.buf[index] = slot[K, V]{key: key, value: val}
	c.touches[index].Store(0)
	c.indices[key] = index
	return evicted, didEvict
}

// Get returns the value for a given key, if present.
// ok bool will be false if the key does not exist
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index, hit := c.indices[key]; hit {
		c.touch(index)
		return c.buf[index].value, true
	}
	return
}

// touch may overshoot maxTouches by a few under concurrent readers;
// the sweep tolerates that.
func (c *Cache[K, V]) touch(index int) {
	if c.touches[index].Load() < maxTouches {
		c.touches[index].Inc()
	}
}

// Remove will remove the given key, if present, from
// the cache
func (c *Cache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	index, ok := c.indices[key]
	if !ok {
		return
	}
	delete(c.indices, key)
	c.buf[index] = slot[K, V]{}
	c.touches[index].Store(0)
	c.free = append(c.free, index)
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.indices)
}

// IsFull returns whether or not the cache is at capacity,
// as defined by the cache's max entries
func (c *Cache[K, V]) IsFull() bool {
	return c.Len() >= c.maxEntries
}
