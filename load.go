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

package kcache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.opencensus.io/trace"
)

// A LoaderFunc fetches the value for a key that missed the cache.
type LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Load returns the cached value for key, calling fetch on a miss and
// writing its result back with Put. Concurrent Loads of the same key share
// a single call to fetch. A failed fetch caches nothing.
//
// Load counts toward key's admission like a Get followed, on a miss, by a
// Put, so a loaded value is only retained once key reaches the threshold.
func (c *Cache[K, V]) Load(ctx context.Context, key K, fetch LoaderFunc[K, V]) (V, error) {
	ctx, span := trace.StartSpan(ctx, "kcache.(*Cache).Load on "+c.name)
	startTime := time.Now()
	defer func() {
		c.record(MLoadLatencyMilliseconds.M(sinceInMilliseconds(startTime)))
		span.End()
	}()

	var zero V
	if fetch == nil {
		span.SetStatus(trace.Status{Code: trace.StatusCodeInvalidArgument, Message: "no LoaderFunc was provided"})
		return zero, ErrNoLoader
	}

	if value, ok := c.Get(key); ok {
		span.Annotatef(nil, "Cache hit")
		return value, nil
	}
	span.Annotatef(nil, "Cache miss")
	c.counters.loads.Inc()
	c.record(MLoads.M(1))

	value, err, joined := c.loadGroup.Do(key, func() (V, error) {
		// A Load that finished just before this one may have
		// promoted key; don't fetch it twice.
		if v, ok := c.main.Peek(key); ok {
			return v, nil
		}
		v, err := fetch(ctx, key)
		if err != nil {
			return v, err
		}
		c.Put(key, v)
		return v, nil
	})
	if joined {
		c.counters.loadsDups.Inc()
		c.record(MLoadsDeduped.M(1))
	}
	if err != nil {
		if !joined {
			c.counters.loadErrors.Inc()
			c.record(MLoadErrors.M(1))
		}
		span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: "Failed to load key: " + err.Error()})
		return zero, errors.Wrapf(err, "kcache: loading key %v", key)
	}
	return value, nil
}
