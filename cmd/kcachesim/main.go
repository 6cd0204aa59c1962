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

// Command kcachesim compares cache policies on a synthetic workload.
//
//	kcachesim -config sim.yaml -policies lru,lruk,arc -capacity 2048
//
// Settings come from the optional YAML file, then KCACHESIM_* environment
// variables, then flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"go.opencensus.io/stats/view"
	"go.uber.org/zap"

	"github.com/vimeo/kcache"
	"github.com/vimeo/kcache/internal/sim"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "kcachesim:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("kcachesim", flag.ContinueOnError)
	configPath := flags.String("config", "", "path to a YAML config file")
	policies := flags.String("policies", "", "comma-separated policies to compare (lru, lruk, clock, arc, sharded)")
	capacity := flags.Int("capacity", 0, "entries per policy")
	historyCapacity := flags.Int("history-capacity", 0, "history entries for lruk and sharded")
	k := flags.Int("k", 0, "observations before lruk admits a key")
	pattern := flags.String("pattern", "", "workload pattern (zipf, loop, sequential, uniform)")
	verbose := flags.Bool("verbose", false, "log at debug level in development format")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := sim.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "policies":
			cfg.Policies = strings.Split(*policies, ",")
		case "capacity":
			cfg.Capacity = *capacity
		case "history-capacity":
			cfg.HistoryCapacity = *historyCapacity
		case "k":
			cfg.K = *k
		case "pattern":
			cfg.Workload.Pattern = *pattern
		}
	})

	logger, err := newLogger(*verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := view.Register(kcache.AllViews...); err != nil {
		return err
	}
	defer view.Unregister(kcache.AllViews...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := sim.Run(ctx, cfg, logger)
	if err != nil {
		return err
	}
	printResults(out, results)
	logPromotions(logger)
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func printResults(out io.Writer, results []sim.Result) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POLICY\tGETS\tHITS\tHIT RATIO\tPROMOTIONS\tELAPSED")
	for _, r := range results {
		promotions := "-"
		if r.CacheStats != nil {
			promotions = fmt.Sprint(r.CacheStats.Promotions)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.4f\t%s\t%s\n", r.Policy, r.Gets, r.Hits, r.HitRatio(), promotions, r.Elapsed)
	}
	w.Flush()
}

// logPromotions reports the promotion counts gathered by the registered
// opencensus views, tagged by cache name.
func logPromotions(logger *zap.Logger) {
	rows, err := view.RetrieveData("kcache/promotions")
	if err != nil {
		logger.Warn("failed to read promotion view", zap.Error(err))
		return
	}
	for _, row := range rows {
		count, ok := row.Data.(*view.CountData)
		if !ok {
			continue
		}
		fields := []zap.Field{zap.Int64("promotions", count.Value)}
		for _, t := range row.Tags {
			fields = append(fields, zap.String(t.Key.Name(), t.Value))
		}
		logger.Info("opencensus promotions", fields...)
	}
}
