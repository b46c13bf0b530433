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
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/btreemap"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

type testLogger struct {
	t *testing.T
}

func (l testLogger) Infof(format string, args ...interface{}) {
	l.t.Logf(format, args...)
}

func (l testLogger) Fatalf(format string, args ...interface{}) {
	l.t.Fatalf(format, args...)
}

// TestStoresAgree drives every store through the same operations and checks
// that the ordered ones return identical results.
func TestStoresAgree(t *testing.T) {
	const n = 2000
	stores := []kvStore{newMapStore(3), newGoogleBTreeStore(3), newLLRBStore(), newSwissStore(n)}
	type result struct {
		gets, deletes []bool
		scans         []int
	}
	results := make([]result, len(stores))
	var g errgroup.Group
	for i, s := range stores {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(uint64(7)))
			r := &results[i]
			for _, k := range rng.Perm(n) {
				if err := s.Put(k*2, k); err != nil {
					return err
				}
			}
			for i := 0; i < n; i++ {
				r.gets = append(r.gets, s.Get(rng.Intn(2*n)))
			}
			for i := 0; i < 100; i++ {
				r.scans = append(r.scans, s.Scan(rng.Intn(2*n+10)-5, 1+rng.Intn(50)))
			}
			for _, k := range rng.Perm(2 * n) {
				r.deletes = append(r.deletes, s.Delete(k))
			}
			if s.Len() != 0 {
				return errors.Newf("%s: %d keys left", s.Name(), s.Len())
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for i := 1; i < len(stores); i++ {
		want, got := results[0], results[i]
		if !stores[i].Ordered() {
			want.scans, got.scans = nil, nil
		}
		if diff := pretty.Diff(want, got); diff != nil {
			t.Fatalf("%s disagrees with %s:\n%s", stores[i].Name(), stores[0].Name(), strings.Join(diff, "\n"))
		}
	}
}

func TestRunBench(t *testing.T) {
	savedOrder, savedConfig := order, benchConfig
	defer func() { order, benchConfig = savedOrder, savedConfig }()
	order = 4
	benchConfig.keys = 500
	benchConfig.seed = 3
	benchConfig.compare = true
	benchConfig.plot = true
	benchConfig.rate = 0
	benchConfig.metricsAddr = ""

	var buf strings.Builder
	require.NoError(t, runBench(&buf, testLogger{t}))
	out := buf.String()
	for _, s := range []string{"btreemap", "google/btree", "GoLLRB", "swiss (unordered)", "P99(NS)"} {
		require.Contains(t, out, s)
	}
	require.Contains(t, out, "btreemap scan latency (ns) by percentile")
	require.NotContains(t, out, "swiss (unordered) scan latency")
}

func TestRunBenchDefaultOrder(t *testing.T) {
	savedOrder, savedConfig := order, benchConfig
	defer func() { order, benchConfig = savedOrder, savedConfig }()
	order = 0
	benchConfig.keys = 200
	benchConfig.seed = 1
	benchConfig.compare = true
	benchConfig.plot = false
	benchConfig.rate = 0
	benchConfig.metricsAddr = ""

	var buf strings.Builder
	require.NoError(t, runBench(&buf, testLogger{t}))
	require.Contains(t, buf.String(), fmt.Sprintf("order %d\n", btreemap.DefaultOrder))
	require.Contains(t, buf.String(), "google/btree")
}

func TestRunBenchRejectsBadOrder(t *testing.T) {
	savedOrder, savedConfig := order, benchConfig
	defer func() { order, benchConfig = savedOrder, savedConfig }()
	order = 1
	benchConfig.keys = 10
	require.Error(t, runBench(&strings.Builder{}, testLogger{t}))
}

func TestMapStorePutReportsErrors(t *testing.T) {
	failing := func(a, b int) (int, error) { return 0, errors.New("unordered") }
	s := &mapStore{m: btreemap.New[int, int](2, failing)}
	require.NoError(t, s.Put(1, 1))
	err := benchOps[0].run(s, 2)
	require.True(t, errors.Is(err, btreemap.ErrComparison), "%v", err)
	require.Equal(t, 1, s.Len())
}
