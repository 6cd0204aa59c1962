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

package kcache

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/vimeo/kcache/consistenthash"
)

const defaultShardSegments = 64

// Sharded spreads keys over several independent Caches, each with its own
// lock, picking a key's shard from a consistent-hash ring. A key always
// maps to the same shard, so per-key semantics are those of Cache.
type Sharded[K comparable, V any] struct {
	name    string
	hashKey func(K) []byte
	ring    *consistenthash.Map
	shards  []*Cache[K, V]
}

// StringKey is a key hasher for string keys.
func StringKey(key string) []byte {
	return []byte(key)
}

// IntKey is a key hasher for int keys.
func IntKey(key int) []byte {
	return strconv.AppendInt(nil, int64(key), 10)
}

// NewSharded creates a Sharded cache of the given number of shards.
// Each shard gets ceil(capacity/shards) main entries and
// ceil(historyCapacity/shards) history entries, and evicts on its own.
// The bounds hold per shard, not in total: 3 shards with capacity 10 can
// hold 12 entries between them, while a shard that receives few keys
// leaves the rest unused. k applies to each shard. hashKey turns a key
// into the bytes hashed onto the ring.
func NewSharded[K comparable, V any](shards int, hashKey func(K) []byte, capacity, historyCapacity, k int, opts ...Option) (*Sharded[K, V], error) {
	if shards < 1 {
		return nil, errors.Wrapf(ErrInvalidShardCount, "must be >= 1 but %d was requested", shards)
	}
	if hashKey == nil {
		return nil, ErrNoKeyHasher
	}
	o := buildOpts(opts)
	segs := o.shardSegments
	if segs < 1 {
		segs = defaultShardSegments
	}

	s := &Sharded[K, V]{
		name:    o.name,
		hashKey: hashKey,
		ring:    consistenthash.New(segs, nil),
		shards:  make([]*Cache[K, V], shards),
	}
	shardCap := ceilDiv(capacity, shards)
	shardHist := ceilDiv(historyCapacity, shards)
	for i := range s.shards {
		c, err := New[K, V](shardCap, shardHist, k, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "kcache: creating shard %d", i)
		}
		s.shards[i] = c
		s.ring.Add(i)
	}
	return s, nil
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return n
	}
	return (n + d - 1) / d
}

func (s *Sharded[K, V]) shard(key K) *Cache[K, V] {
	id, _ := s.ring.Get(s.hashKey(key))
	return s.shards[id]
}

// Name returns the name shared by every shard.
func (s *Sharded[K, V]) Name() string {
	return s.name
}

// Put writes value for key on key's shard.
func (s *Sharded[K, V]) Put(key K, value V) {
	s.shard(key).Put(key, value)
}

// Get looks key up on its shard.
func (s *Sharded[K, V]) Get(key K) (V, bool) {
	return s.shard(key).Get(key)
}

// Remove drops key from its shard.
func (s *Sharded[K, V]) Remove(key K) {
	s.shard(key).Remove(key)
}

// Contains reports whether key has been admitted on its shard.
func (s *Sharded[K, V]) Contains(key K) bool {
	return s.shard(key).Contains(key)
}

// Load runs Cache.Load on key's shard.
func (s *Sharded[K, V]) Load(ctx context.Context, key K, fetch LoaderFunc[K, V]) (V, error) {
	return s.shard(key).Load(ctx, key, fetch)
}

// Len returns the number of admitted entries across all shards.
func (s *Sharded[K, V]) Len() int {
	n := 0
	for _, c := range s.shards {
		n += c.Len()
	}
	return n
}

// Purge empties every shard.
func (s *Sharded[K, V]) Purge() {
	for _, c := range s.shards {
		c.Purge()
	}
}

// Stats sums the stats of every shard. Shards are read one after the
// other, so the sum is not an atomic snapshot.
func (s *Sharded[K, V]) Stats() CacheStats {
	var total CacheStats
	for _, c := range s.shards {
		total = total.add(c.Stats())
	}
	return total
}

// ShardStats returns each shard's stats, indexed by shard id.
func (s *Sharded[K, V]) ShardStats() []CacheStats {
	out := make([]CacheStats, len(s.shards))
	for i, c := range s.shards {
		out[i] = c.Stats()
	}
	return out
}
