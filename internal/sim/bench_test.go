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
	"fmt"
	"testing"
)

func BenchmarkPolicies(b *testing.B) {
	patterns := []WorkloadConfig{
		{Pattern: PatternZipf, Universe: 16384, Length: 1 << 16, Skew: 1.2, Bias: 1, Seed: 1},
		{Pattern: PatternLoop, Universe: 8192, Length: 1 << 16, HotRatio: 0.9, Seed: 1},
		{Pattern: PatternSequential, Universe: 1 << 16, Length: 1 << 15},
	}
	policies := []string{PolicyLRU, PolicyLRUK, PolicyClock, PolicyARC, PolicySharded}
	for _, w := range patterns {
		for _, capacity := range []int{128, 2048} {
			seq, err := Generate(w, capacity)
			if err != nil {
				b.Fatal(err)
			}
			cfg := Config{Capacity: capacity, HistoryCapacity: capacity, K: 2, Shards: 4}
			for _, name := range policies {
				b.Run(fmt.Sprintf("%s/Cap%d/%s", w.Pattern, capacity, name), func(b *testing.B) {
					p, err := NewPolicy(name, cfg)
					if err != nil {
						b.Fatal(err)
					}
					b.ReportAllocs()
					b.ResetTimer()
					var hits, gets int64
					for i := 0; i < b.N; i++ {
						key := seq[i%len(seq)]
						gets++
						if _, ok := p.Get(key); ok {
							hits++
							continue
						}
						p.Put(key, key)
					}
					b.StopTimer()
					b.ReportMetric(float64(hits)/float64(gets)*100, "hit_rate_pct")
				})
			}
		}
	}
}
