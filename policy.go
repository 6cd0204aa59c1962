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
	"github.com/vimeo/kcache/clock"
	"github.com/vimeo/kcache/lru"
)

// Policy is the capability every cache in this module provides. Code that
// only stores and looks up values can be written against Policy and handed
// a plain LRU, a CLOCK cache, a Cache or a Sharded cache.
type Policy[K comparable, V any] interface {
	Put(key K, value V)
	Get(key K) (V, bool)
}

// Remover is implemented by policies that support explicit removal.
type Remover[K comparable] interface {
	Remove(key K)
}

var (
	_ Policy[string, int] = (*lru.TypedCache[string, int])(nil)
	_ Policy[string, int] = (*clock.Cache[string, int])(nil)
	_ Policy[string, int] = (*Cache[string, int])(nil)
	_ Policy[string, int] = (*Sharded[string, int])(nil)

	_ Remover[string] = (*lru.TypedCache[string, int])(nil)
	_ Remover[string] = (*clock.Cache[string, int])(nil)
	_ Remover[string] = (*Cache[string, int])(nil)
	_ Remover[string] = (*Sharded[string, int])(nil)
)
