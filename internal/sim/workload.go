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

import "math/rand"

// Workload patterns
const (
	PatternZipf       = "zipf"
	PatternLoop       = "loop"
	PatternSequential = "sequential"
	PatternUniform    = "uniform"
)

// Generate returns the key sequence described by w. The same
// configuration always yields the same sequence. capacity sizes the hot
// set of the loop pattern.
func Generate(w WorkloadConfig, capacity int) ([]int, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(w.Seed))
	seq := make([]int, w.Length)
	switch w.Pattern {
	case PatternZipf:
		zipf := rand.NewZipf(rng, w.Skew, w.Bias, uint64(max(w.Universe, 2)-1))
		for i := range seq {
			seq[i] = int(zipf.Uint64())
		}
	case PatternLoop:
		hot := max(1, min(capacity, w.Universe))
		cold := max(1, w.Universe-hot)
		for i := range seq {
			if rng.Float64() < w.HotRatio {
				seq[i] = rng.Intn(hot)
			} else {
				seq[i] = hot + rng.Intn(cold)
			}
		}
	case PatternSequential:
		for i := range seq {
			seq[i] = i % w.Universe
		}
	case PatternUniform:
		for i := range seq {
			seq[i] = rng.Intn(w.Universe)
		}
	}
	return seq, nil
}
