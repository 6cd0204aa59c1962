/*
Copyright 2018 Google LLC.
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
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

const (
	unitDimensionless = "1"
	unitMillisecond   = "ms"
)

var (
	// Copied from https://github.com/census-instrumentation/opencensus-go/blob/ff7de98412e5c010eb978f11056f90c00561637f/plugin/ocgrpc/stats_common.go#L55
	defaultMillisecondsDistribution = view.Distribution(0, 0.01, 0.05, 0.1, 0.3, 0.6, 0.8, 1, 2, 3, 4, 5, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500, 650, 800, 1000, 2000, 5000, 10000, 20000, 50000, 100000)
)

// Opencensus stats
var (
	MGets             = stats.Int64("gets", "The number of Get requests", unitDimensionless)
	MHits             = stats.Int64("hits", "The number of Gets that found a value", unitDimensionless)
	MMisses           = stats.Int64("misses", "The number of Gets that found no value", unitDimensionless)
	MPuts             = stats.Int64("puts", "The number of Put requests", unitDimensionless)
	MPromotions       = stats.Int64("promotions", "The number of keys admitted to the main cache", unitDimensionless)
	MEvictions        = stats.Int64("evictions", "The number of main cache evictions", unitDimensionless)
	MHistoryEvictions = stats.Int64("history_evictions", "The number of keys that aged out of the history cache", unitDimensionless)
	MLoads            = stats.Int64("loads", "The number of Loads that missed the cache", unitDimensionless)
	MLoadErrors       = stats.Int64("load_errors", "The number of Loads whose fetch failed", unitDimensionless)
	MLoadsDeduped     = stats.Int64("loads_deduped", "The number of Loads that shared another caller's fetch", unitDimensionless)

	MLoadLatencyMilliseconds = stats.Float64("load_latency", "Load latency in milliseconds", unitMillisecond)
)

// CacheNameKey tags measurements with the name of the cache
var CacheNameKey = tag.MustNewKey("cache")

// AllViews is a slice of default views for people to use
var AllViews = []*view.View{
	{Name: "kcache/gets", Description: "The number of Get requests", TagKeys: []tag.Key{CacheNameKey}, Measure: MGets, Aggregation: view.Count()},
	{Name: "kcache/hits", Description: "The number of Gets that found a value", TagKeys: []tag.Key{CacheNameKey}, Measure: MHits, Aggregation: view.Count()},
	{Name: "kcache/misses", Description: "The number of Gets that found no value", TagKeys: []tag.Key{CacheNameKey}, Measure: MMisses, Aggregation: view.Count()},
	{Name: "kcache/puts", Description: "The number of Put requests", TagKeys: []tag.Key{CacheNameKey}, Measure: MPuts, Aggregation: view.Count()},
	{Name: "kcache/promotions", Description: "The number of keys admitted to the main cache", TagKeys: []tag.Key{CacheNameKey}, Measure: MPromotions, Aggregation: view.Count()},
	{Name: "kcache/evictions", Description: "The number of main cache evictions", TagKeys: []tag.Key{CacheNameKey}, Measure: MEvictions, Aggregation: view.Count()},
	{Name: "kcache/history_evictions", Description: "The number of keys that aged out of the history cache", TagKeys: []tag.Key{CacheNameKey}, Measure: MHistoryEvictions, Aggregation: view.Count()},
	{Name: "kcache/loads", Description: "The number of Loads that missed the cache", TagKeys: []tag.Key{CacheNameKey}, Measure: MLoads, Aggregation: view.Count()},
	{Name: "kcache/load_errors", Description: "The number of Loads whose fetch failed", TagKeys: []tag.Key{CacheNameKey}, Measure: MLoadErrors, Aggregation: view.Count()},
	{Name: "kcache/loads_deduped", Description: "The number of Loads that shared another caller's fetch", TagKeys: []tag.Key{CacheNameKey}, Measure: MLoadsDeduped, Aggregation: view.Count()},
	{Name: "kcache/load_latency", Description: "The latency of Loads", TagKeys: []tag.Key{CacheNameKey}, Measure: MLoadLatencyMilliseconds, Aggregation: defaultMillisecondsDistribution},
}

func sinceInMilliseconds(start time.Time) float64 {
	d := time.Since(start)
	return float64(d.Nanoseconds()) / 1e6
}
