/*
Copyright 2013 Google Inc.
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

// Package lru implements a fixed-capacity LRU cache.
package lru // import "github.com/vimeo/kcache/lru"

import "sync"

// maxPrealloc bounds the up-front allocation for very large capacities.
const maxPrealloc = 1 << 16

// TypedCache is an LRU cache with a fixed capacity. It is safe for
// concurrent access: every method holds the cache's lock for its full
// duration, and no method calls out to other code while holding it.
type TypedCache[K comparable, V any] struct {
	// OnEvicted optionally specifies a callback function to be
	// executed when an entry is evicted to make room for another.
	// It is not called for Remove or Clear. It runs after the cache's
	// lock has been released, on the goroutine whose Put caused the
	// eviction. Set it before the cache is shared.
	OnEvicted func(key K, value V)

	mu       sync.Mutex
	capacity int

	// cache comes first so the GC enqueues marking the map-contents first
	cache map[K]int
	ll    linkedList[typedEntry[K, V]]
}

type typedEntry[K comparable, V any] struct {
	key         K
	value       V
	accessCount uint64
}

// TypedNew creates a new TypedCache holding at most capacity entries.
// If capacity is zero or negative, Put is a no-op and the cache never
// holds anything.
func TypedNew[K comparable, V any](capacity int) *TypedCache[K, V] {
	hint := min(max(capacity, 0), maxPrealloc)
	return &TypedCache[K, V]{
		capacity: capacity,
		cache:    make(map[K]int, hint),
		ll:       newLinkedList[typedEntry[K, V]](hint),
	}
}

// Put adds or updates a value in the cache. Updating an existing key
// counts as an access.
func (c *TypedCache[K, V]) Put(key K, value V) {
	if c.capacity <= 0 {
		return
	}
	evicted, ok := c.put(key, value)
	if ok && c.OnEvicted != nil {
		c.OnEvicted(evicted.key, evicted.value)
	}
}

func (c *TypedCache[K, V]) put(key K, value V) (evicted typedEntry[K, V], didEvict bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx, hit := c.cache[key]; hit {
		ent := c.ll.Value(idx)
		ent.value = value
		ent.accessCount++
		c.ll.MoveToBack(idx)
		return evicted, false
	}
	if c.ll.Len() >= c.capacity {
		evicted, didEvict = c.removeOldestLocked()
	}
	c.cache[key] = c.ll.PushBack(typedEntry[K, V]{key: key, value: value, accessCount: 1})
	return evicted, didEvict
}

// Get looks up a key's value from the cache. A hit marks the key as most
// recently used.
func (c *TypedCache[K, V]) Get(key K) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, hit := c.cache[key]
	if !hit {
		return
	}
	ent := c.ll.Value(idx)
	ent.accessCount++
	c.ll.MoveToBack(idx)
	return ent.value, true
}

// Peek returns a key's value without touching its recency.
func (c *TypedCache[K, V]) Peek(key K) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx, hit := c.cache[key]; hit {
		return c.ll.Value(idx).value, true
	}
	return
}

// Contains reports whether key is resident, without touching its recency.
func (c *TypedCache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, hit := c.cache[key]
	return hit
}

// AccessCount returns how many times key has been inserted, updated or
// read since it last entered the cache.
func (c *TypedCache[K, V]) AccessCount(key K) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx, hit := c.cache[key]; hit {
		return c.ll.Value(idx).accessCount, true
	}
	return 0, false
}

// MostRecent returns the most recently used entry
func (c *TypedCache[K, V]) MostRecent() (key K, value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok := c.ll.Back()
	if !ok {
		return
	}
	ent := c.ll.Value(idx)
	return ent.key, ent.value, true
}

// LeastRecent returns the least recently used entry, the next one to be
// evicted.
func (c *TypedCache[K, V]) LeastRecent() (key K, value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok := c.ll.Front()
	if !ok {
		return
	}
	ent := c.ll.Value(idx)
	return ent.key, ent.value, true
}

// Remove removes the provided key from the cache. Removing an absent key
// is a no-op.
func (c *TypedCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx, hit := c.cache[key]; hit {
		c.ll.Remove(idx)
		delete(c.cache, key)
	}
}

// RemoveOldest removes the least recently used entry and returns it.
func (c *TypedCache[K, V]) RemoveOldest() (key K, value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.removeOldestLocked()
	return ent.key, ent.value, ok
}

func (c *TypedCache[K, V]) removeOldestLocked() (typedEntry[K, V], bool) {
	idx, ok := c.ll.Front()
	if !ok {
		return typedEntry[K, V]{}, false
	}
	ent := c.ll.Remove(idx)
	delete(c.cache, ent.key)
	return ent, true
}

// Len returns the number of items in the cache.
func (c *TypedCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Cap returns the capacity the cache was created with.
func (c *TypedCache[K, V]) Cap() int {
	return c.capacity
}

// Clear purges all stored items from the cache.
func (c *TypedCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	hint := min(max(c.capacity, 0), maxPrealloc)
	c.cache = make(map[K]int, hint)
	c.ll = newLinkedList[typedEntry[K, V]](hint)
}
