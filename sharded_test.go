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
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestNewShardedValidation(t *testing.T) {
	if _, err := NewSharded[string, int](0, StringKey, 8, 8, 2); !errors.Is(err, ErrInvalidShardCount) {
		t.Errorf("zero shards: got %v; want ErrInvalidShardCount", err)
	}
	if _, err := NewSharded[string, int](2, nil, 8, 8, 2); !errors.Is(err, ErrNoKeyHasher) {
		t.Errorf("nil hasher: got %v; want ErrNoKeyHasher", err)
	}
	if _, err := NewSharded[string, int](2, StringKey, 8, 8, 0); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("k=0: got %v; want ErrInvalidThreshold", err)
	}
}

func TestShardedCapacitySplit(t *testing.T) {
	s, err := NewSharded[int, int](3, IntKey, 10, 7, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range s.shards {
		if c.main.Cap() != 4 {
			t.Errorf("shard %d main capacity %d; want 4", i, c.main.Cap())
		}
		if c.history.Cap() != 3 {
			t.Errorf("shard %d history capacity %d; want 3", i, c.history.Cap())
		}
	}
}

func TestShardedCapacityIsPerShard(t *testing.T) {
	s, err := NewSharded[int, int](3, IntKey, 10, 10, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 300; i++ {
		s.Put(i, i)
	}
	// every shard fills to ceil(10/3), overshooting the total
	if n := s.Len(); n != 12 {
		t.Errorf("Len = %d; want 12", n)
	}
	for i, st := range s.ShardStats() {
		if st.Items != 4 {
			t.Errorf("shard %d holds %d items; want 4", i, st.Items)
		}
	}
}

func TestShardedRoutingIsStable(t *testing.T) {
	s, err := NewSharded[string, int](4, StringKey, 400, 400, 1, WithShardSegments(16))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		key := "key-" + strconv.Itoa(i)
		if s.shard(key) != s.shard(key) {
			t.Fatalf("key %q routed to different shards", key)
		}
		s.Put(key, i)
	}
	for i := 0; i < 100; i++ {
		key := "key-" + strconv.Itoa(i)
		if v, ok := s.Get(key); !ok || v != i {
			t.Errorf("Get(%q) = %d, %t; want %d, true", key, v, ok, i)
		}
	}
	if s.Len() != 100 {
		t.Errorf("Len() = %d; want 100", s.Len())
	}
	used := 0
	for _, st := range s.ShardStats() {
		if st.Items > 0 {
			used++
		}
	}
	if used < 2 {
		t.Errorf("100 keys landed on %d of 4 shards", used)
	}
}

func TestShardedOperations(t *testing.T) {
	s, err := NewSharded[string, int](2, StringKey, 8, 8, 2, WithName("sharded"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Name() != "sharded" {
		t.Errorf("Name() = %q", s.Name())
	}

	s.Put("a", 1)
	if s.Contains("a") {
		t.Fatal("a admitted below threshold")
	}
	v, err := s.Load(context.Background(), "a", func(context.Context, string) (int, error) {
		t.Error("fetch called for a staged key at its threshold")
		return 0, nil
	})
	if err != nil || v != 1 {
		t.Errorf("Load(a) = %d, %v; want 1, nil", v, err)
	}
	s.Remove("a")
	if s.Contains("a") {
		t.Error("a present after Remove")
	}

	s.Put("b", 2)
	s.Put("b", 2)
	s.Purge()
	if s.Len() != 0 {
		t.Errorf("Len() = %d after Purge", s.Len())
	}

	st := s.Stats()
	if st.Puts != 3 || st.Promotions != 2 || st.Gets != 1 {
		t.Errorf("summed stats %+v", st)
	}
}

func TestShardedConcurrent(t *testing.T) {
	s, err := NewSharded[int, int](8, IntKey, 256, 128, 2)
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				key := (i*7 + w) % 300
				s.Put(key, key)
				if v, ok := s.Get(key); ok && v != key {
					t.Errorf("Get(%d) = %d", key, v)
				}
			}
		}(w)
	}
	wg.Wait()
	if st := s.Stats(); st.Gets != 8000 || st.Puts != 8000 {
		t.Errorf("gets=%d puts=%d; want 8000 each", st.Gets, st.Puts)
	}
}
