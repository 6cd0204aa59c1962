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
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/vimeo/kcache"
	"github.com/vimeo/kcache/promoter"
)

// how many accesses to replay between context checks
const ctxCheckInterval = 4096

// Result is the outcome of replaying a sequence against one policy.
type Result struct {
	Policy  string
	Gets    int64
	Hits    int64
	Elapsed time.Duration

	// CacheStats is set for policies that keep their own counters.
	CacheStats *kcache.CacheStats
}

// HitRatio returns Hits/Gets, or 0 for an empty run.
func (r Result) HitRatio() float64 {
	if r.Gets == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Gets)
}

type statser interface {
	Stats() kcache.CacheStats
}

// Replay looks up every key of seq in p, writing the key back on a miss.
func Replay(ctx context.Context, name string, p kcache.Policy[int, int], seq []int) (Result, error) {
	res := Result{Policy: name}
	start := time.Now()
	for i, key := range seq {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, errors.Wrapf(err, "replaying %s", name)
			}
		}
		res.Gets++
		if _, ok := p.Get(key); ok {
			res.Hits++
			continue
		}
		p.Put(key, key)
	}
	res.Elapsed = time.Since(start)
	if s, ok := p.(statser); ok {
		st := s.Stats()
		res.CacheStats = &st
	}
	return res, nil
}

// Run generates cfg's workload and replays it against each of cfg's
// policies in turn.
func Run(ctx context.Context, cfg Config, logger *zap.Logger, opts ...kcache.Option) ([]Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seq, err := Generate(cfg.Workload, cfg.Capacity)
	if err != nil {
		return nil, err
	}
	logger.Info("generated workload",
		zap.String("pattern", cfg.Workload.Pattern),
		zap.Int("universe", cfg.Workload.Universe),
		zap.Int("length", len(seq)))

	results := make([]Result, 0, len(cfg.Policies))
	for _, name := range cfg.Policies {
		policyOpts := []kcache.Option{
			kcache.WithName(name),
			kcache.WithLogger(logger),
			kcache.WithShardSegments(cfg.ShardSegments),
		}
		if cfg.PromoteDenominator > 0 {
			policyOpts = append(policyOpts, kcache.WithPromoter(
				promoter.NewProbabilisticPromoter(cfg.PromoteDenominator, cfg.Workload.Seed)))
		}
		policyOpts = append(policyOpts, opts...)
		p, err := NewPolicy(name, cfg, policyOpts...)
		if err != nil {
			return results, errors.Wrapf(err, "creating policy %s", name)
		}
		res, err := Replay(ctx, name, p, seq)
		if err != nil {
			return results, err
		}
		logger.Info("replayed workload",
			zap.String("policy", name),
			zap.Int64("gets", res.Gets),
			zap.Int64("hits", res.Hits),
			zap.Float64("hit_ratio", res.HitRatio()),
			zap.Duration("elapsed", res.Elapsed))
		results = append(results, res)
	}
	return results, nil
}
