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

// Package promoter decides when a key that is being tracked in a history
// cache has been seen often enough to be admitted to the main cache.
package promoter // import "github.com/vimeo/kcache/promoter"

import (
	"math/rand"
	"sync"
)

// Interface is implemented by admission policies. ShouldPromote is called
// once per observation of a key that is not yet in the main cache, after
// the observation has been counted.
type Interface interface {
	ShouldPromote(stats Stats) bool
}

// Stats describes a tracked key and the history cache tracking it.
type Stats struct {
	// Observations counts Gets and Puts of the key, including the
	// current one, since it entered the history cache.
	Observations int
	// Threshold is the cache's configured k.
	Threshold int

	Tracked         int
	TrackedCapacity int
}

// ThresholdPromoter admits a key on the observation that makes its count
// reach the threshold. It is the default.
type ThresholdPromoter struct{}

func (ThresholdPromoter) ShouldPromote(stats Stats) bool {
	return stats.Observations >= stats.Threshold
}

// ProbabilisticPromoter admits at the threshold like ThresholdPromoter,
// and additionally admits early with probability 1/ProbDenominator.
type ProbabilisticPromoter struct {
	ProbDenominator int

	mu   sync.Mutex
	rand *rand.Rand
}

// NewProbabilisticPromoter returns a ProbabilisticPromoter using its own
// random source seeded with seed.
func NewProbabilisticPromoter(probDenominator int, seed int64) *ProbabilisticPromoter {
	return &ProbabilisticPromoter{
		ProbDenominator: probDenominator,
		rand:            rand.New(rand.NewSource(seed)),
	}
}

func (p *ProbabilisticPromoter) ShouldPromote(stats Stats) bool {
	if stats.Observations >= stats.Threshold {
		return true
	}
	if p.ProbDenominator <= 0 {
		return false
	}
	if p.rand == nil {
		return rand.Intn(p.ProbDenominator) == 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rand.Intn(p.ProbDenominator) == 0
}
