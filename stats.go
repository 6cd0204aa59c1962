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

import "go.uber.org/atomic"

// CacheStats are returned by stats accessors on Cache and Sharded.
type CacheStats struct {
	Items   int64 // resident in the main cache
	Tracked int64 // in the history cache
	Staged  int64 // values waiting for promotion

	Gets             int64
	Hits             int64 // main cache hits and promoting Gets
	Misses           int64
	Puts             int64
	Promotions       int64
	Evictions        int64 // main cache
	HistoryEvictions int64
	Loads            int64 // Loads that missed the cache
	LoadErrors       int64
	LoadsDeduped     int64 // after singleflight
}

func (s CacheStats) add(o CacheStats) CacheStats {
	return CacheStats{
		Items:            s.Items + o.Items,
		Tracked:          s.Tracked + o.Tracked,
		Staged:           s.Staged + o.Staged,
		Gets:             s.Gets + o.Gets,
		Hits:             s.Hits + o.Hits,
		Misses:           s.Misses + o.Misses,
		Puts:             s.Puts + o.Puts,
		Promotions:       s.Promotions + o.Promotions,
		Evictions:        s.Evictions + o.Evictions,
		HistoryEvictions: s.HistoryEvictions + o.HistoryEvictions,
		Loads:            s.Loads + o.Loads,
		LoadErrors:       s.LoadErrors + o.LoadErrors,
		LoadsDeduped:     s.LoadsDeduped + o.LoadsDeduped,
	}
}

// HitRatio returns Hits/Gets, or 0 before the first Get.
func (s CacheStats) HitRatio() float64 {
	if s.Gets == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Gets)
}

type counters struct {
	gets, hits, misses, puts     atomic.Int64
	promotions                   atomic.Int64
	evictions, historyEvictions  atomic.Int64
	loads, loadErrors, loadsDups atomic.Int64
}

func (c *counters) snapshot() CacheStats {
	return CacheStats{
		Gets:             c.gets.Load(),
		Hits:             c.hits.Load(),
		Misses:           c.misses.Load(),
		Puts:             c.puts.Load(),
		Promotions:       c.promotions.Load(),
		Evictions:        c.evictions.Load(),
		HistoryEvictions: c.historyEvictions.Load(),
		Loads:            c.loads.Load(),
		LoadErrors:       c.loadErrors.Load(),
		LoadsDeduped:     c.loadsDups.Load(),
	}
}
