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

// Package consistenthash provides a ring hash mapping keys onto a set of
// integer shard ids.
package consistenthash // import "github.com/vimeo/kcache/consistenthash"

import (
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Hash maps the data to a uint32 hash-ring
type Hash func(data []byte) uint32

// XXHash is the default Hash: the low 32 bits of xxhash64.
func XXHash(data []byte) uint32 {
	return uint32(xxhash.Sum64(data))
}

// Map tracks segments in a hash-ring, mapped to shard ids.
// It is not safe for concurrent mutation; Get may be called concurrently
// once all shards have been added.
type Map struct {
	hash          Hash
	segsPerShard  int
	segmentHashes []uint32 // Sorted
	hashMap       map[uint32]int
	shards        map[int]struct{}
}

// New constructs a new consistenthash hashring, with segsPerShard segments
// per added shard. A nil fn selects XXHash.
func New(segsPerShard int, fn Hash) *Map {
	m := &Map{
		segsPerShard: segsPerShard,
		hash:         fn,
		hashMap:      make(map[uint32]int),
		shards:       make(map[int]struct{}),
	}
	if m.hash == nil {
		m.hash = XXHash
	}
	return m
}

// IsEmpty returns true if there are no items available.
func (m *Map) IsEmpty() bool {
	return len(m.segmentHashes) == 0
}

// Add adds shards to the hashring, establishing ownership of segsPerShard
// segments each. When two segments collide, the lower shard id owns the
// hash, so the ring does not depend on insertion order.
func (m *Map) Add(ids ...int) {
	for _, id := range ids {
		if _, dup := m.shards[id]; dup {
			continue
		}
		m.shards[id] = struct{}{}
		for i := 0; i < m.segsPerShard; i++ {
			hash := m.hash(segmentKey(id, i))
			if owner, taken := m.hashMap[hash]; taken {
				if id < owner {
					m.hashMap[hash] = id
				}
				continue
			}
			m.segmentHashes = append(m.segmentHashes, hash)
			m.hashMap[hash] = id
		}
	}
	sort.Slice(m.segmentHashes, func(i, j int) bool { return m.segmentHashes[i] < m.segmentHashes[j] })
}

// Get gets the shard owning the closest segment at or after key's hash.
// It returns false if the ring is empty.
func (m *Map) Get(key []byte) (int, bool) {
	if m.IsEmpty() {
		return 0, false
	}

	hash := m.hash(key)

	// Binary search for appropriate replica.
	idx := sort.Search(len(m.segmentHashes), func(i int) bool { return m.segmentHashes[i] >= hash })

	// Means we have cycled back to the first replica.
	if idx == len(m.segmentHashes) {
		idx = 0
	}

	return m.hashMap[m.segmentHashes[idx]], true
}

// segmentKey is the ring input for shard id's i-th segment.
func segmentKey(id, i int) []byte {
	return []byte(strconv.Itoa(i) + "-" + strconv.Itoa(id))
}
