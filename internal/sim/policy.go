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

package sim

import (
	"github.com/cockroachdb/errors"
	"github.com/hashicorp/golang-lru/arc/v2"

	"github.com/vimeo/kcache"
	"github.com/vimeo/kcache/clock"
	"github.com/vimeo/kcache/lru"
)

// Policy names accepted by NewPolicy
const (
	PolicyLRU     = "lru"
	PolicyLRUK    = "lruk"
	PolicyClock   = "clock"
	PolicyARC     = "arc"
	PolicySharded = "sharded"
)

func knownPolicy(name string) bool {
	switch name {
	case PolicyLRU, PolicyLRUK, PolicyClock, PolicyARC, PolicySharded:
		return true
	}
	return false
}

// arcPolicy adapts hashicorp's ARC cache, used as a reference point.
type arcPolicy struct {
	*arc.ARCCache[int, int]
}

func (a arcPolicy) Put(key, value int) { a.Add(key, value) }

// NewPolicy builds the named policy sized by cfg. opts are passed to the
// lruk and sharded policies.
func NewPolicy(name string, cfg Config, opts ...kcache.Option) (kcache.Policy[int, int], error) {
	switch name {
	case PolicyLRU:
		return lru.TypedNew[int, int](cfg.Capacity), nil
	case PolicyClock:
		return clock.New[int, int](cfg.Capacity), nil
	case PolicyLRUK:
		c, err := kcache.New[int, int](cfg.Capacity, cfg.HistoryCapacity, cfg.K, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case PolicySharded:
		s, err := kcache.NewSharded[int, int](cfg.Shards, kcache.IntKey, cfg.Capacity, cfg.HistoryCapacity, cfg.K, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case PolicyARC:
		c, err := arc.NewARC[int, int](cfg.Capacity)
		if err != nil {
			return nil, errors.Wrap(err, "creating ARC cache")
		}
		return arcPolicy{ARCCache: c}, nil
	}
	return nil, errors.Newf("unknown policy %q", name)
}
