// Copyright 2026 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/tokenbucket"
	"github.com/google/btreemap"
	btreemetrics "github.com/google/btreemap/metrics"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

const (
	minLatency = 10 * time.Nanosecond
	maxLatency = 10 * time.Second

	// scanLength is the number of entries visited by each scan operation.
	scanLength = 100
)

var benchConfig struct {
	keys        int
	seed        uint64
	compare     bool
	metricsAddr string
	rate        float64
	plot        bool
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "run insert/get/scan/delete workloads and report latencies",
	Long: `
Runs four workloads in sequence against a fresh map: inserting every key in a
random order, looking every key up in another random order, scanning runs of
100 entries from random start keys and deleting every key. Each operation's
latency is recorded in a histogram; the summary table reports percentiles and
throughput per store and workload.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBench(cmd.OutOrStdout(), defaultLogger{})
	},
}

// benchOp is one of the workloads run by the bench command.
type benchOp struct {
	name string
	// keys returns the key each operation acts on.
	keys func(rng *rand.Rand, n int) []int
	run  func(s kvStore, k int) error
}

var benchOps = []benchOp{
	{
		name: "insert",
		keys: func(rng *rand.Rand, n int) []int { return rng.Perm(n) },
		run:  func(s kvStore, k int) error { return s.Put(k, k) },
	},
	{
		name: "get",
		keys: func(rng *rand.Rand, n int) []int { return rng.Perm(n) },
		run: func(s kvStore, k int) error {
			s.Get(k)
			return nil
		},
	},
	{
		name: "scan",
		keys: func(rng *rand.Rand, n int) []int {
			out := make([]int, max(n/scanLength, 1))
			for i := range out {
				out[i] = rng.Intn(n)
			}
			return out
		},
		run: func(s kvStore, k int) error {
			s.Scan(k, scanLength)
			return nil
		},
	},
	{
		name: "delete",
		keys: func(rng *rand.Rand, n int) []int { return rng.Perm(n) },
		run: func(s kvStore, k int) error {
			s.Delete(k)
			return nil
		},
	},
}

// benchResult summarizes one workload run against one store.
type benchResult struct {
	store   string
	op      string
	hist    *hdrhistogram.Histogram
	elapsed time.Duration
}

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 2)
}

func clampLatency(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}

func benchStores(degree int) []kvStore {
	stores := []kvStore{newMapStore(degree)}
	if benchConfig.compare {
		stores = append(stores,
			newGoogleBTreeStore(degree),
			newLLRBStore(),
			newSwissStore(benchConfig.keys),
		)
	}
	return stores
}

func runBench(w io.Writer, logger Logger) error {
	if benchConfig.keys <= 0 {
		return errors.Newf("--keys must be positive, got %d", benchConfig.keys)
	}
	// The baselines are built with the resolved order, never 0.
	opts := btreemap.Options[int, int]{Order: order}
	if err := opts.Validate(); err != nil {
		return err
	}
	degree := opts.EnsureDefaults().Order
	fmt.Fprintf(w, "order %d\nkeys %d\nseed %d\n\n", degree, benchConfig.keys, benchConfig.seed)

	stores := benchStores(degree)
	var stats atomic.Pointer[btreemap.Stats]
	stats.Store(&btreemap.Stats{Order: degree})
	latency := btreemetrics.NewOpLatency("bench")
	if benchConfig.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			latency.Collector(),
			btreemetrics.NewCollector("bench", nil, func() btreemap.Stats { return *stats.Load() }),
		)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		logger.Infof("serving metrics on http://%s/metrics", benchConfig.metricsAddr)
		go func() {
			if err := http.ListenAndServe(benchConfig.metricsAddr, mux); err != nil {
				logger.Fatalf("metrics server: %v", err)
			}
		}()
	}

	var results []benchResult
	for _, s := range stores {
		// Every store sees the same keys in the same order.
		rng := rand.New(rand.NewSource(benchConfig.seed))
		var limiter *tokenbucket.TokenBucket
		if benchConfig.rate > 0 {
			limiter = &tokenbucket.TokenBucket{}
			limiter.Init(tokenbucket.TokensPerSecond(benchConfig.rate), tokenbucket.Tokens(benchConfig.rate))
		}
		ms, isMap := s.(*mapStore)
		for _, op := range benchOps {
			if op.name == "scan" && !s.Ordered() {
				continue
			}
			r := benchResult{store: s.Name(), op: op.name, hist: newHistogram()}
			for _, k := range op.keys(rng, benchConfig.keys) {
				if limiter != nil {
					pace(limiter)
				}
				start := crtime.NowMono()
				err := op.run(s, k)
				elapsed := start.Elapsed()
				if err != nil {
					return errors.Wrapf(err, "%s: %s %d", s.Name(), op.name, k)
				}
				r.elapsed += elapsed
				if err := r.hist.RecordValue(clampLatency(elapsed, minLatency, maxLatency).Nanoseconds()); err != nil {
					// Values are clamped to the histogram's range.
					panic(fmt.Sprintf("%s: recording value: %s", op.name, err))
				}
				if isMap {
					latency.Observe(op.name, elapsed)
				}
			}
			if isMap {
				st := ms.m.Stats()
				stats.Store(&st)
				logger.Infof("%s after %s: %s", s.Name(), op.name, st)
			}
			results = append(results, r)
		}
		if n := s.Len(); n != 0 {
			return errors.AssertionFailedf("%s: %d keys left after deleting every key", s.Name(), n)
		}
	}

	writeResults(w, results)
	if benchConfig.plot {
		for _, r := range results {
			if r.store == stores[0].Name() {
				fmt.Fprintln(w)
				fmt.Fprintln(w, plotLatency(r))
			}
		}
	}
	return nil
}

// pace blocks until the limiter grants one operation.
func pace(limiter *tokenbucket.TokenBucket) {
	for {
		ok, d := limiter.TryToFulfill(1)
		if ok {
			return
		}
		time.Sleep(d)
	}
}

func writeResults(w io.Writer, results []benchResult) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"store", "op", "ops", "ops/sec", "p50(ns)", "p99(ns)", "max(ns)"})
	tbl.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, r := range results {
		h := r.hist
		opsPerSec := 0.0
		if r.elapsed > 0 {
			opsPerSec = float64(h.TotalCount()) / r.elapsed.Seconds()
		}
		tbl.Append([]string{
			r.store,
			r.op,
			fmt.Sprintf("%d", h.TotalCount()),
			fmt.Sprintf("%.0f", opsPerSec),
			fmt.Sprintf("%d", h.ValueAtQuantile(50)),
			fmt.Sprintf("%d", h.ValueAtQuantile(99)),
			fmt.Sprintf("%d", h.Max()),
		})
	}
	tbl.Render()
}

// plotLatency draws the latency at each percentile from p1 to p99.
func plotLatency(r benchResult) string {
	values := make([]float64, 0, 99)
	for q := 1; q <= 99; q++ {
		values = append(values, float64(r.hist.ValueAtQuantile(float64(q))))
	}
	return asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Caption(fmt.Sprintf("%s %s latency (ns) by percentile", r.store, r.op)))
}
