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
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

func TestItemsHelpers(t *testing.T) {
	s := make(items[int], 0, 5)
	s.insertAt(0, 2)
	s.insertAt(0, 1)
	s.insertAt(2, 4)
	s.insertAt(2, 3)
	require.Equal(t, items[int]{1, 2, 3, 4}, s)
	require.Equal(t, 2, s.removeAt(1))
	require.Equal(t, 4, s.pop())
	require.Equal(t, items[int]{1, 3}, s)
	// Vacated slots are cleared.
	require.Equal(t, []int{1, 3, 0, 0}, []int(s[:4]))
	s.truncate(0)
	require.Empty(t, s)
	require.Equal(t, []int{0, 0}, []int(s[:2]))
	require.Equal(t, 5, cap(s))
}

func TestNodeFind(t *testing.T) {
	n := &node[int, int]{keys: items[int]{10, 20, 30}}
	for _, tc := range []struct {
		key   int
		index int
		found bool
	}{
		{5, 0, false},
		{10, 0, true},
		{15, 1, false},
		{30, 2, true},
		{35, 3, false},
	} {
		i, found, err := n.find(tc.key, Compare[int]())
		require.NoError(t, err)
		require.Equal(t, tc.index, i, "key %d", tc.key)
		require.Equal(t, tc.found, found, "key %d", tc.key)
	}
}

func TestSplitMovesUpperHalf(t *testing.T) {
	f := NewFreeList[int, string](0)
	n := f.newNode(5, false)
	for i := 1; i <= 5; i++ {
		n.insertEntry(i-1, i, "v")
	}
	k, v, next := n.split(2, f)
	require.Equal(t, 3, k)
	require.Equal(t, "v", v)
	require.Equal(t, items[int]{1, 2}, n.keys)
	require.Equal(t, items[int]{4, 5}, next.keys)
	require.Equal(t, items[string]{"v", "v"}, next.values)
	require.Equal(t, 5, cap(next.keys))
	require.True(t, next.leaf())
	// The moved slots of the source are cleared.
	require.Equal(t, []int{1, 2, 0, 0, 0}, []int(n.keys[:5]))
}

func TestFreeListReuse(t *testing.T) {
	f := NewFreeList[int, int](2)
	n := f.newNode(3, true)
	require.Equal(t, 3, cap(n.keys))
	require.Equal(t, 4, cap(n.children))
	require.True(t, f.freeNode(n))
	require.Same(t, n, f.newNode(3, false))
	require.Nil(t, n.children)

	// A node of a different order is never reused.
	require.True(t, f.freeNode(n))
	m := f.newNode(5, false)
	require.NotSame(t, n, m)
	require.Equal(t, 5, cap(m.keys))

	a, b, c := f.newNode(3, false), f.newNode(3, false), f.newNode(3, false)
	require.True(t, f.freeNode(a))
	require.True(t, f.freeNode(b))
	require.False(t, f.freeNode(c))
}

func TestSharedFreeListConcurrentWriters(t *testing.T) {
	f := NewFreeList[int, int](64)
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(uint64(w)))
			for round := 0; round < 5; round++ {
				m, err := NewWithOptions(Compare[int](), Options[int, int]{Order: 2 + w%3, FreeList: f})
				if err != nil {
					return err
				}
				for _, k := range rng.Perm(500) {
					if _, _, err := m.ReplaceOrInsert(k, w); err != nil {
						return err
					}
				}
				for _, k := range rng.Perm(250) {
					if _, err := m.Delete(k); err != nil {
						return err
					}
				}
				if err := m.check(); err != nil {
					return err
				}
				m.Clear(true)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
