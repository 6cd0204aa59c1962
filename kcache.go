/*
Copyright 2012 Google Inc.
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

// Package kcache provides an in-memory LRU-K cache: a fixed-capacity LRU
// that only admits a key once it has been seen k times.
//
// Observations of keys that are not yet admitted are counted in a second,
// smaller LRU (the history cache), and values written for them wait in a
// staging area. When a key's count reaches k it is promoted: its staged
// value moves into the main LRU and its history is dropped. Because the
// history cache is itself an LRU, keys that are rarely repeated age out of
// it under pressure and never displace anything in the main cache.
package kcache // import "github.com/vimeo/kcache"

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"go.uber.org/zap"

	"github.com/vimeo/kcache/lru"
	"github.com/vimeo/kcache/promoter"
	"github.com/vimeo/kcache/singleflight"
)

const defaultName = "default"

// Cache is an LRU-K cache. It is safe for concurrent use.
//
// Lock discipline: mu is taken once at the start of every composite
// operation and held while calling into main and history, each of which
// takes and releases its own lock. Neither of them ever calls back into
// Cache while holding its lock (their OnEvicted callbacks run after they
// release it, on the goroutine that already holds mu), so no two cache
// locks are ever acquired in opposite orders.
type Cache[K comparable, V any] struct {
	name string
	k    int
	opts cacheOpts

	mu      sync.Mutex
	main    *lru.TypedCache[K, V]
	history *lru.TypedCache[K, int]
	staged  map[K]V // guarded by mu; every key is also in history

	// loadGroup ensures that each key is only fetched once
	// regardless of the number of concurrent Load callers.
	loadGroup singleflight.TypedGroup[K, V]

	statsCtx context.Context
	counters counters
}

// Option is an interface for implementing functional cache options
type Option interface {
	apply(*cacheOpts)
}

// cacheOpts contains optional fields for the cache (each with a default
// value if not set)
type cacheOpts struct {
	name          string
	logger        *zap.Logger
	promoter      promoter.Interface
	recorder      stats.Recorder
	shardSegments int
}

type funcOption struct {
	f func(*cacheOpts)
}

func (fo *funcOption) apply(o *cacheOpts) {
	fo.f(o)
}

func newFuncOption(f func(*cacheOpts)) *funcOption {
	return &funcOption{f: f}
}

// WithName names the cache in logs and in the CacheNameKey tag of its
// opencensus measurements; defaults to "default"
func WithName(name string) Option {
	return newFuncOption(func(o *cacheOpts) {
		o.name = name
	})
}

// WithLogger sets the logger promotions and evictions are reported to at
// debug level; defaults to a no-op logger
func WithLogger(l *zap.Logger) Option {
	return newFuncOption(func(o *cacheOpts) {
		o.logger = l
	})
}

// WithPromoter allows the client to specify how a tracked key is admitted
// to the main cache; defaults to promoter.ThresholdPromoter
func WithPromoter(p promoter.Interface) Option {
	return newFuncOption(func(o *cacheOpts) {
		o.promoter = p
	})
}

// WithRecorder sends the cache's opencensus measurements to recorder
// instead of the global default (useful with view.NewMeter)
func WithRecorder(recorder stats.Recorder) Option {
	return newFuncOption(func(o *cacheOpts) {
		o.recorder = recorder
	})
}

// WithShardSegments sets how many ring segments each shard of a Sharded
// cache owns; defaults to 64. Ignored by New.
func WithShardSegments(n int) Option {
	return newFuncOption(func(o *cacheOpts) {
		o.shardSegments = n
	})
}

func buildOpts(opts []Option) cacheOpts {
	o := cacheOpts{
		name:          defaultName,
		logger:        zap.NewNop(),
		promoter:      promoter.ThresholdPromoter{},
		shardSegments: defaultShardSegments,
	}
	for _, opt := range opts {
		opt.apply(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.promoter == nil {
		o.promoter = promoter.ThresholdPromoter{}
	}
	return o
}

// New creates a Cache whose main LRU holds capacity entries, whose
// history LRU tracks up to historyCapacity not-yet-admitted keys, and
// which admits a key on its k-th observation.
//
// A capacity of zero or less gives a cache that never retains anything.
// k must be at least 1 and historyCapacity at least 1.
func New[K comparable, V any](capacity, historyCapacity, k int, opts ...Option) (*Cache[K, V], error) {
	if k < 1 {
		return nil, errors.Wrapf(ErrInvalidThreshold, "k must be >= 1 but %d was requested", k)
	}
	if historyCapacity < 1 {
		return nil, errors.Wrapf(ErrInvalidHistoryCapacity, "must be >= 1 but %d was requested", historyCapacity)
	}
	o := buildOpts(opts)
	statsCtx, err := tag.New(context.Background(), tag.Upsert(CacheNameKey, o.name))
	if err != nil {
		return nil, errors.Wrapf(err, "kcache: invalid cache name %q", o.name)
	}

	c := &Cache[K, V]{
		name:     o.name,
		k:        k,
		opts:     o,
		main:     lru.TypedNew[K, V](capacity),
		history:  lru.TypedNew[K, int](historyCapacity),
		staged:   make(map[K]V),
		statsCtx: statsCtx,
	}
	c.main.OnEvicted = c.onMainEvicted
	c.history.OnEvicted = c.onHistoryEvicted
	return c, nil
}

// Name returns the name of the cache.
func (c *Cache[K, V]) Name() string {
	return c.name
}

// Get returns the value for key if it is in the main cache, or if this
// observation promotes a staged value. Every Get counts as an observation
// of key, hit or miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters.gets.Inc()
	c.record(MGets.M(1))

	value, hit := c.main.Get(key)
	count := c.observeLocked(key)
	if hit {
		c.recordHit()
		return value, true
	}
	if c.shouldPromoteLocked(count) {
		if staged, ok := c.staged[key]; ok {
			c.promoteLocked(key, staged)
			c.recordHit()
			return staged, true
		}
	}
	c.counters.misses.Inc()
	c.record(MMisses.M(1))
	var zero V
	return zero, false
}

// Put writes value for key. Keys already in the main cache are updated in
// place. Otherwise the value is staged and the observation counted, and
// the key is promoted if this observation reaches the threshold.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters.puts.Inc()
	c.record(MPuts.M(1))

	if c.main.Contains(key) {
		c.main.Put(key, value)
		return
	}
	count := c.observeLocked(key)
	c.staged[key] = value
	if c.shouldPromoteLocked(count) {
		c.promoteLocked(key, value)
	}
}

// Remove drops key from the main cache and forgets its history and any
// staged value. Loads of key that start after Remove fetch afresh rather
// than waiting on one already in flight. Removing an absent key is a
// no-op.
func (c *Cache[K, V]) Remove(key K) {
	c.loadGroup.Forget(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.main.Remove(key)
	c.history.Remove(key)
	delete(c.staged, key)
}

// Contains reports whether key has been admitted to the main cache,
// without counting as an observation or touching its recency.
func (c *Cache[K, V]) Contains(key K) bool {
	return c.main.Contains(key)
}

// Len returns the number of entries in the main cache.
func (c *Cache[K, V]) Len() int {
	return c.main.Len()
}

// Purge drops every entry, all history and all staged values. Counters
// are kept.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.main.Clear()
	c.history.Clear()
	c.staged = make(map[K]V)
}

// Stats returns a snapshot of the cache's counters and sizes.
func (c *Cache[K, V]) Stats() CacheStats {
	c.mu.Lock()
	staged := len(c.staged)
	c.mu.Unlock()
	s := c.counters.snapshot()
	s.Items = int64(c.main.Len())
	s.Tracked = int64(c.history.Len())
	s.Staged = int64(staged)
	return s
}

// observeLocked bumps key's history count and returns the new count.
func (c *Cache[K, V]) observeLocked(key K) int {
	count, _ := c.history.Get(key)
	count++
	c.history.Put(key, count)
	return count
}

func (c *Cache[K, V]) shouldPromoteLocked(count int) bool {
	return c.opts.promoter.ShouldPromote(promoter.Stats{
		Observations:    count,
		Threshold:       c.k,
		Tracked:         c.history.Len(),
		TrackedCapacity: c.history.Cap(),
	})
}

func (c *Cache[K, V]) promoteLocked(key K, value V) {
	delete(c.staged, key)
	c.history.Remove(key)
	c.main.Put(key, value)
	c.counters.promotions.Inc()
	c.record(MPromotions.M(1))
	c.opts.logger.Debug("promoted key to main cache",
		zap.String("cache", c.name), zap.Any("key", key))
}

func (c *Cache[K, V]) record(ms ...stats.Measurement) {
	if c.opts.recorder == nil {
		stats.Record(c.statsCtx, ms...)
		return
	}
	// Only fails for measurements carrying attachments, which these never do.
	_ = stats.RecordWithOptions(c.statsCtx, stats.WithRecorder(c.opts.recorder), stats.WithMeasurements(ms...))
}

func (c *Cache[K, V]) recordHit() {
	c.counters.hits.Inc()
	c.record(MHits.M(1))
}

// onMainEvicted runs with mu held. Dropping the key's history makes its
// next access start over at the first observation.
func (c *Cache[K, V]) onMainEvicted(key K, _ V) {
	c.history.Remove(key)
	c.counters.evictions.Inc()
	c.record(MEvictions.M(1))
	c.opts.logger.Debug("evicted key from main cache",
		zap.String("cache", c.name), zap.Any("key", key))
}

// onHistoryEvicted runs inside observeLocked, with mu held.
func (c *Cache[K, V]) onHistoryEvicted(key K, _ int) {
	delete(c.staged, key)
	c.counters.historyEvictions.Inc()
	c.record(MHistoryEvictions.M(1))
}
