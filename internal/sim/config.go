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

// Package sim replays synthetic access patterns against the cache
// policies in this module and reports their hit ratios.
package sim

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key looked up in the
// environment: workload.skew is read from KCACHESIM_WORKLOAD_SKEW.
const EnvPrefix = "KCACHESIM"

// Config describes one simulation run.
type Config struct {
	// Policies are the names of the policies to compare, see NewPolicy.
	Policies        []string `mapstructure:"policies"`
	Capacity        int      `mapstructure:"capacity"`
	HistoryCapacity int      `mapstructure:"history_capacity"`
	K               int      `mapstructure:"k"`
	Shards          int      `mapstructure:"shards"`
	ShardSegments   int      `mapstructure:"shard_segments"`

	// PromoteDenominator, when positive, lets lruk admit a key before the
	// threshold with probability 1/PromoteDenominator.
	PromoteDenominator int `mapstructure:"promote_denominator"`

	Workload WorkloadConfig `mapstructure:"workload"`
}

// WorkloadConfig describes the generated key sequence.
type WorkloadConfig struct {
	Pattern  string  `mapstructure:"pattern"`
	Universe int     `mapstructure:"universe"`
	Length   int     `mapstructure:"length"`
	Skew     float64 `mapstructure:"skew"`
	Bias     float64 `mapstructure:"bias"`
	HotRatio float64 `mapstructure:"hot_ratio"`
	Seed     int64   `mapstructure:"seed"`
}

var defaults = map[string]any{
	"policies":            []string{PolicyLRU, PolicyLRUK, PolicyClock, PolicyARC},
	"capacity":            1024,
	"history_capacity":    1024,
	"k":                   2,
	"shards":              4,
	"shard_segments":      64,
	"promote_denominator": 0,
	"workload.pattern":    PatternZipf,
	"workload.universe":   16384,
	"workload.length":     1 << 16,
	"workload.skew":       1.2,
	"workload.bias":       1.0,
	"workload.hot_ratio":  0.9,
	"workload.seed":       1,
}

// LoadConfig reads the YAML file at path, if path is not empty, over the
// built-in defaults, then applies KCACHESIM_* environment overrides.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "reading config %q", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	return cfg, cfg.Validate()
}

// Validate reports the first setting that cannot be simulated.
func (c Config) Validate() error {
	if len(c.Policies) == 0 {
		return errors.New("no policies to simulate")
	}
	for _, p := range c.Policies {
		if !knownPolicy(p) {
			return errors.Newf("unknown policy %q", p)
		}
	}
	if c.Capacity < 1 {
		return errors.Newf("capacity must be >= 1, got %d", c.Capacity)
	}
	return c.Workload.Validate()
}

// Validate reports the first workload setting that cannot be generated.
func (w WorkloadConfig) Validate() error {
	switch w.Pattern {
	case PatternZipf:
		if w.Skew <= 1 || w.Bias < 1 {
			return errors.Newf("zipf needs skew > 1 and bias >= 1, got %g and %g", w.Skew, w.Bias)
		}
	case PatternLoop:
		if w.HotRatio < 0 || w.HotRatio > 1 {
			return errors.Newf("hot_ratio must be within [0, 1], got %g", w.HotRatio)
		}
	case PatternSequential, PatternUniform:
	default:
		return errors.Newf("unknown workload pattern %q", w.Pattern)
	}
	if w.Universe < 1 || w.Length < 1 {
		return errors.Newf("universe and length must be >= 1, got %d and %d", w.Universe, w.Length)
	}
	return nil
}
