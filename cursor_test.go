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

package btreemap

import (
	"cmp"
	"fmt"
	"slices"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/btreemap/internal/invariants"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func collect[K, V any](t *testing.T, c *Cursor[K, V]) []K {
	t.Helper()
	var out []K
	for c.Next() {
		out = append(out, c.Key())
	}
	require.NoError(t, c.Err())
	return out
}

func rangeKeys(t *testing.T, m *Map[int, int], lo, hi Bound[int]) []int {
	t.Helper()
	c, err := m.Range(lo, hi)
	require.NoError(t, err)
	return collect(t, c)
}

func TestRangeScenario(t *testing.T) {
	m := NewOrdered[int, int](3)
	for i := 0; i < 100; i++ {
		m.ReplaceOrInsert(i, i)
	}
	require.Equal(t, intRange(100, false)[20:30], rangeKeys(t, m, Inclusive(20), Exclusive(30)))
	require.Equal(t, intRange(100, false)[20:31], rangeKeys(t, m, Inclusive(20), Inclusive(30)))
	require.Equal(t, intRange(100, false)[21:30], rangeKeys(t, m, Exclusive(20), Exclusive(30)))
	require.Equal(t, intRange(100, false)[:5], rangeKeys(t, m, Unbounded[int](), Exclusive(5)))
	require.Equal(t, intRange(100, false)[95:], rangeKeys(t, m, Inclusive(95), Unbounded[int]()))
	require.Equal(t, intRange(100, false), rangeKeys(t, m, Unbounded[int](), Unbounded[int]()))
	require.Empty(t, rangeKeys(t, m, Inclusive(30), Exclusive(20)))
	require.Empty(t, rangeKeys(t, m, Exclusive(99), Unbounded[int]()))
	require.Empty(t, rangeKeys(t, m, Unbounded[int](), Exclusive(0)))
	require.Equal(t, []int{0}, rangeKeys(t, m, Inclusive(-5), Inclusive(0)))
}

// inBounds reports whether k lies within lo and hi.
func inBounds(k int, lo, hi Bound[int]) bool {
	if key, ok := lo.Key(); ok {
		if c := cmp.Compare(k, key); c < 0 || (c == 0 && !lo.IsInclusive()) {
			return false
		}
	}
	if key, ok := hi.Key(); ok {
		if c := cmp.Compare(k, key); c > 0 || (c == 0 && !hi.IsInclusive()) {
			return false
		}
	}
	return true
}

func TestRangeMatchesFilteredAscend(t *testing.T) {
	rng := rand.New(rand.NewSource(uint64(42)))
	for _, order := range []int{2, 3, 5} {
		for _, size := range []int{0, 1, 7, 50, 500} {
			t.Run(fmt.Sprintf("order=%d/size=%d", order, size), func(t *testing.T) {
				m := NewOrdered[int, int](order)
				// Even keys only, so that bounds fall both on and between keys.
				for _, k := range rng.Perm(size) {
					m.ReplaceOrInsert(k*2, k)
				}
				all := m.Keys()
				bound := func() Bound[int] {
					switch k := rng.Intn(2*size+4) - 2; rng.Intn(5) {
					case 0:
						return Unbounded[int]()
					case 1, 2:
						return Inclusive(k)
					default:
						return Exclusive(k)
					}
				}
				for i := 0; i < 200; i++ {
					lo, hi := bound(), bound()
					var want []int
					for _, k := range all {
						if inBounds(k, lo, hi) {
							want = append(want, k)
						}
					}
					require.Equal(t, want, rangeKeys(t, m, lo, hi), "lo=%+v hi=%+v", lo, hi)
				}
			})
		}
	}
}

func TestDescendIsReverseOfAscend(t *testing.T) {
	for _, order := range []int{2, 4, 32} {
		m := NewOrdered[int, string](order)
		for _, k := range rand.Perm(777) {
			m.ReplaceOrInsert(k, fmt.Sprint(k))
		}
		asc := collect(t, m.Ascend())
		desc := collect(t, m.Descend())
		require.Len(t, asc, 777)
		slices.Reverse(desc)
		require.Equal(t, asc, desc)
	}
}

func TestCursorValues(t *testing.T) {
	m := NewOrdered[string, int](2)
	for i, k := range []string{"d", "b", "a", "e", "c"} {
		m.ReplaceOrInsert(k, i)
	}
	c := m.Descend()
	var got []string
	for c.Next() {
		got = append(got, fmt.Sprintf("%s=%d", c.Key(), c.Value()))
	}
	require.Equal(t, []string{"e=3", "d=0", "c=4", "b=1", "a=2"}, got)
	// An exhausted cursor stays exhausted.
	require.False(t, c.Next())
	require.Equal(t, "", c.Key())
}

func TestCursorRemaining(t *testing.T) {
	m := NewOrdered[int, int](2)
	for i := 0; i < 20; i++ {
		m.ReplaceOrInsert(i, i)
	}
	for _, c := range []*Cursor[int, int]{m.Ascend(), m.Descend()} {
		require.Equal(t, 20, c.Remaining())
		for i := 19; i >= 0; i-- {
			require.True(t, c.Next())
			require.Equal(t, i, c.Remaining())
		}
		require.False(t, c.Next())
		require.Equal(t, 0, c.Remaining())
	}
	c, err := m.Range(Inclusive(3), Exclusive(5))
	require.NoError(t, err)
	require.Equal(t, -1, c.Remaining())
}

func TestAllBackward(t *testing.T) {
	m := NewOrdered[int, int](2)
	for i := 0; i < 10; i++ {
		m.ReplaceOrInsert(i, i*i)
	}
	var got []int
	for k, v := range m.All() {
		if k == 4 {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, []int{0, 1, 4, 9}, got)
	got = got[:0]
	for k := range m.Backward() {
		if k < 7 {
			break
		}
		got = append(got, k)
	}
	require.Equal(t, []int{9, 8, 7}, got)
}

func TestRangeComparisonFailure(t *testing.T) {
	m := New[any, int](3, DynamicCompare)
	for i := 0; i < 50; i++ {
		m.ReplaceOrInsert(i, i)
	}
	_, err := m.Range(Inclusive[any]("x"), Unbounded[any]())
	require.True(t, errors.Is(err, ErrComparison), "%v", err)

	c, err := m.Range(Inclusive[any](10), Exclusive[any]("x"))
	require.NoError(t, err)
	require.False(t, c.Next())
	require.True(t, errors.Is(c.Err(), ErrComparison), "%v", c.Err())
}

func TestParseInclusivity(t *testing.T) {
	for _, tc := range []struct {
		notation       string
		incMin, incMax bool
	}{
		{"[)", true, false},
		{"[]", true, true},
		{"()", false, false},
		{"(]", false, true},
	} {
		incMin, incMax, err := ParseInclusivity(tc.notation)
		require.NoError(t, err)
		require.Equal(t, tc.incMin, incMin, tc.notation)
		require.Equal(t, tc.incMax, incMax, tc.notation)
	}
	for _, notation := range []string{"", "[", "[[", ")(", "[))", "<>"} {
		_, _, err := ParseInclusivity(notation)
		require.True(t, errors.Is(err, ErrInvalidArgument), "%q: %v", notation, err)
	}
	require.Equal(t, Inclusive(3), NewBound(3, true))
	require.Equal(t, Exclusive(3), NewBound(3, false))
}

func TestCursorDetectsMutation(t *testing.T) {
	if !invariants.Enabled {
		t.Skip("mutation detection requires the invariants build tag")
	}
	m := NewOrdered[int, int](2)
	for i := 0; i < 10; i++ {
		m.ReplaceOrInsert(i, i)
	}
	c := m.Ascend()
	require.True(t, c.Next())
	// Overwriting a value is not a structural change.
	m.ReplaceOrInsert(5, 50)
	require.True(t, c.Next())
	m.ReplaceOrInsert(10, 10)
	require.Panics(t, func() { c.Next() })
}
