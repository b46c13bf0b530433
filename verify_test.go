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
)

func TestCheckDetectsCorruption(t *testing.T) {
	build := func() *Map[int, int] {
		m := NewOrdered[int, int](2)
		for i := 1; i <= 10; i++ {
			m.ReplaceOrInsert(i, i)
		}
		require.NoError(t, m.check())
		return m
	}
	leftLeaf := func(m *Map[int, int]) *node[int, int] {
		n := m.root
		for !n.leaf() {
			n = n.children[0]
		}
		return n
	}

	for name, corrupt := range map[string]func(m *Map[int, int]){
		"length": func(m *Map[int, int]) { m.length++ },
		"unsorted leaf": func(m *Map[int, int]) {
			n := m.root.children[1].children[2]
			n.keys[0], n.keys[1] = n.keys[1], n.keys[0]
		},
		"key outside parent bounds": func(m *Map[int, int]) {
			leftLeaf(m).keys[0] = 100
		},
		"underfull node": func(m *Map[int, int]) {
			n := leftLeaf(m)
			n.keys.truncate(0)
			n.values.truncate(0)
			m.length--
		},
		"values out of step": func(m *Map[int, int]) {
			n := leftLeaf(m)
			n.values = append(n.values, 0)
		},
		"uneven leaves": func(m *Map[int, int]) {
			m.root.children[0] = m.root.children[0].children[0]
		},
	} {
		t.Run(name, func(t *testing.T) {
			m := build()
			corrupt(m)
			require.Error(t, m.check())
		})
	}
}
