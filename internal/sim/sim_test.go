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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vimeo/kcache"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, []string{PolicyLRU, PolicyLRUK, PolicyClock, PolicyARC}, cfg.Policies)
	assert.Equal(t, 1024, cfg.Capacity)
	assert.Equal(t, 2, cfg.K)
	assert.Equal(t, PatternZipf, cfg.Workload.Pattern)
	assert.Equal(t, 1.2, cfg.Workload.Skew)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	yaml := []byte(`
policies: [lruk, sharded]
capacity: 64
history_capacity: 32
k: 3
shards: 2
workload:
  pattern: loop
  universe: 512
  length: 2048
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))
	t.Setenv("KCACHESIM_WORKLOAD_HOT_RATIO", "0.5")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{PolicyLRUK, PolicySharded}, cfg.Policies)
	assert.Equal(t, 64, cfg.Capacity)
	assert.Equal(t, 32, cfg.HistoryCapacity)
	assert.Equal(t, 3, cfg.K)
	assert.Equal(t, PatternLoop, cfg.Workload.Pattern)
	assert.Equal(t, 512, cfg.Workload.Universe)
	assert.Equal(t, 0.5, cfg.Workload.HotRatio)
	// untouched keys keep their defaults
	assert.Equal(t, int64(1), cfg.Workload.Seed)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("KCACHESIM_WORKLOAD_PATTERN", "bursty")
	_, err = LoadConfig("")
	assert.ErrorContains(t, err, "bursty")
}

func TestGenerate(t *testing.T) {
	for _, pattern := range []string{PatternZipf, PatternLoop, PatternSequential, PatternUniform} {
		t.Run(pattern, func(t *testing.T) {
			w := WorkloadConfig{Pattern: pattern, Universe: 100, Length: 1000, Skew: 1.1, Bias: 1, HotRatio: 0.8, Seed: 7}
			seq, err := Generate(w, 10)
			require.NoError(t, err)
			require.Len(t, seq, 1000)
			for _, key := range seq {
				assert.GreaterOrEqual(t, key, 0)
				assert.Less(t, key, 100)
			}
			again, err := Generate(w, 10)
			require.NoError(t, err)
			assert.Equal(t, seq, again, "same seed should give the same sequence")
		})
	}
}

func TestGenerateRejectsBadWorkload(t *testing.T) {
	_, err := Generate(WorkloadConfig{Pattern: PatternZipf, Universe: 10, Length: 10, Skew: 0.5, Bias: 1}, 4)
	assert.Error(t, err)
	_, err = Generate(WorkloadConfig{Pattern: PatternUniform, Universe: 0, Length: 10}, 4)
	assert.Error(t, err)
}

func TestNewPolicy(t *testing.T) {
	cfg := Config{Capacity: 8, HistoryCapacity: 8, K: 2, Shards: 2}
	for _, name := range []string{PolicyLRU, PolicyLRUK, PolicyClock, PolicyARC, PolicySharded} {
		p, err := NewPolicy(name, cfg)
		require.NoError(t, err, name)
		require.NotNil(t, p, name)
	}
	_, err := NewPolicy("mru", cfg)
	assert.ErrorContains(t, err, "mru")

	_, err = NewPolicy(PolicyLRUK, Config{Capacity: 8, HistoryCapacity: 8, K: 0})
	assert.ErrorIs(t, err, kcache.ErrInvalidThreshold)
}

func TestReplaySequentialScan(t *testing.T) {
	// a scan larger than the cache never hits under LRU
	seq, err := Generate(WorkloadConfig{Pattern: PatternSequential, Universe: 64, Length: 640}, 0)
	require.NoError(t, err)
	p, err := NewPolicy(PolicyLRU, Config{Capacity: 32})
	require.NoError(t, err)

	res, err := Replay(context.Background(), PolicyLRU, p, seq)
	require.NoError(t, err)
	assert.Equal(t, int64(640), res.Gets)
	assert.Zero(t, res.Hits)
	assert.Nil(t, res.CacheStats)
}

func TestReplayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, err := NewPolicy(PolicyLRU, Config{Capacity: 4})
	require.NoError(t, err)
	_, err = Replay(ctx, PolicyLRU, p, []int{1, 2, 3})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun(t *testing.T) {
	cfg := Config{
		Policies:        []string{PolicyLRU, PolicyLRUK, PolicyClock, PolicyARC, PolicySharded},
		Capacity:        128,
		HistoryCapacity: 128,
		K:               2,
		Shards:          4,
		Workload: WorkloadConfig{
			Pattern: PatternZipf, Universe: 4096, Length: 1 << 14,
			Skew: 1.2, Bias: 1, Seed: 1,
		},
	}
	results, err := Run(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, results, len(cfg.Policies))

	for _, res := range results {
		assert.Equal(t, int64(1<<14), res.Gets, res.Policy)
		// a skewed workload gives every policy some hits
		assert.Greater(t, res.HitRatio(), 0.0, res.Policy)
		assert.LessOrEqual(t, res.HitRatio(), 1.0, res.Policy)
	}
	lruk := results[1]
	require.NotNil(t, lruk.CacheStats)
	assert.Equal(t, lruk.Hits, lruk.CacheStats.Hits)
	assert.LessOrEqual(t, lruk.CacheStats.Items, int64(128))
}

func TestRunWithProbabilisticPromoter(t *testing.T) {
	cfg := Config{
		Policies:           []string{PolicyLRUK},
		Capacity:           64,
		HistoryCapacity:    64,
		K:                  1000,
		PromoteDenominator: 1,
		Workload:           WorkloadConfig{Pattern: PatternSequential, Universe: 32, Length: 256},
	}
	results, err := Run(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, results, 1)

	// a denominator of 1 admits every key on its first Put, so after the
	// first pass over the 32 keys every lookup hits
	st := results[0].CacheStats
	require.NotNil(t, st)
	assert.Equal(t, int64(32), st.Promotions)
	assert.Equal(t, int64(256-32), results[0].Hits)
}
