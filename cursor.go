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
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/google/btreemap/internal/invariants"
)

type boundKind int8

const (
	unbounded boundKind = iota
	inclusive
	exclusive
)

// Bound is one end of a key range passed to Map.Range.
type Bound[K any] struct {
	key  K
	kind boundKind
}

// Unbounded returns a bound that places no limit on its end of a range.
func Unbounded[K any]() Bound[K] {
	return Bound[K]{}
}

// Inclusive returns a bound that admits key itself.
func Inclusive[K any](key K) Bound[K] {
	return Bound[K]{key: key, kind: inclusive}
}

// Exclusive returns a bound that stops short of key.
func Exclusive[K any](key K) Bound[K] {
	return Bound[K]{key: key, kind: exclusive}
}

// NewBound returns Inclusive(key) or Exclusive(key).
func NewBound[K any](key K, inclusive bool) Bound[K] {
	if inclusive {
		return Inclusive(key)
	}
	return Exclusive(key)
}

// Key returns the bounding key, or false if b is unbounded.
func (b Bound[K]) Key() (K, bool) {
	return b.key, b.kind != unbounded
}

// IsInclusive reports whether the bounding key itself is part of the range.
func (b Bound[K]) IsInclusive() bool {
	return b.kind == inclusive
}

// ParseInclusivity parses interval notation for the two ends of a range:
// "[)" (the default for half-open ranges), "[]", "()" or "(]". Anything else
// returns an error marked with ErrInvalidArgument.
func ParseInclusivity(notation string) (incMin, incMax bool, _ error) {
	switch notation {
	case "[)":
		return true, false, nil
	case "[]":
		return true, true, nil
	case "()":
		return false, false, nil
	case "(]":
		return false, true, nil
	}
	return false, false, errors.Mark(
		errors.Newf("btreemap: inclusivity %q is not one of [) [] () (]", notation),
		ErrInvalidArgument)
}

// frame is a node being traversed and a position within it. Ascending
// cursors store the index of the next key to emit; descending cursors store
// the number of keys still to emit.
type frame[K, V any] struct {
	n   *node[K, V]
	pos int
}

// Cursor is a forward-only traversal over a Map in ascending, descending or
// bounded ascending order. A cursor keeps an explicit stack of nodes no
// deeper than the tree, and each call to Next costs O(1) amortized.
//
// A cursor reads the map's nodes directly. It must not be used after the map
// is modified by any operation other than ReplaceOrInsert on an existing key.
// Once Next returns false the cursor is exhausted; open a new one to traverse
// again.
//
//	c := m.Ascend()
//	for c.Next() {
//		fmt.Println(c.Key(), c.Value())
//	}
type Cursor[K, V any] struct {
	m         *Map[K, V]
	stack     []frame[K, V]
	desc      bool
	hi        Bound[K]
	remaining int
	key       K
	value     V
	err       error
	seq       uint64
}

func (m *Map[K, V]) newCursor(desc bool, hi Bound[K], remaining int) *Cursor[K, V] {
	c := &Cursor[K, V]{
		m:         m,
		stack:     make([]frame[K, V], 0, max(m.Height(), 1)),
		desc:      desc,
		hi:        hi,
		remaining: remaining,
	}
	if invariants.Enabled {
		c.seq = m.seq.Get()
	}
	return c
}

// Ascend returns a cursor over every entry in ascending key order.
func (m *Map[K, V]) Ascend() *Cursor[K, V] {
	c := m.newCursor(false, Unbounded[K](), m.length)
	c.pushLeft(m.root)
	return c
}

// Descend returns a cursor over every entry in descending key order.
func (m *Map[K, V]) Descend() *Cursor[K, V] {
	c := m.newCursor(true, Unbounded[K](), m.length)
	c.pushRight(m.root)
	return c
}

// Range returns a cursor over the entries with keys between lo and hi, in
// ascending order. Subtrees entirely below lo are never visited, and the
// cursor stops at the first key beyond hi. If lo is above hi the cursor is
// empty.
//
// Range returns an error marked with ErrComparison if lo cannot be compared
// with the keys in the map. Failures comparing against hi surface later,
// through Cursor.Err.
func (m *Map[K, V]) Range(lo, hi Bound[K]) (*Cursor[K, V], error) {
	c := m.newCursor(false, hi, -1)
	if lo.kind == unbounded {
		c.pushLeft(m.root)
		return c, nil
	}
	for n := m.root; ; {
		i, found, err := n.find(lo.key, m.cmp)
		if err != nil {
			return nil, comparisonFailed(err)
		}
		switch {
		case found && lo.kind == inclusive:
			c.push(n, i)
			return c, nil
		case found:
			c.push(n, i+1)
			if !n.leaf() {
				c.pushLeft(n.children[i+1])
			}
			return c, nil
		}
		c.push(n, i)
		if n.leaf() {
			return c, nil
		}
		n = n.children[i]
	}
}

func (c *Cursor[K, V]) push(n *node[K, V], pos int) {
	c.stack = append(c.stack, frame[K, V]{n: n, pos: pos})
}

// pushLeft pushes n and the leftmost spine below it.
func (c *Cursor[K, V]) pushLeft(n *node[K, V]) {
	for {
		c.push(n, 0)
		if n.leaf() {
			return
		}
		n = n.children[0]
	}
}

// pushRight pushes n and the rightmost spine below it.
func (c *Cursor[K, V]) pushRight(n *node[K, V]) {
	for {
		c.push(n, len(n.keys))
		if n.leaf() {
			return
		}
		n = n.children[len(n.children)-1]
	}
}

// Next advances the cursor to the next entry, returning false when the
// traversal is complete or a comparison failed.
func (c *Cursor[K, V]) Next() bool {
	if invariants.Enabled && len(c.stack) > 0 && c.seq != c.m.seq.Get() {
		panic(errors.AssertionFailedf("btreemap: map modified during iteration"))
	}
	for len(c.stack) > 0 {
		top := len(c.stack) - 1
		n, pos := c.stack[top].n, c.stack[top].pos
		if c.desc {
			if pos == 0 {
				c.stack = c.stack[:top]
				continue
			}
			pos--
			c.stack[top].pos = pos
			c.key, c.value = n.keys[pos], n.values[pos]
			if !n.leaf() {
				c.pushRight(n.children[pos])
			}
		} else {
			if pos >= len(n.keys) {
				c.stack = c.stack[:top]
				continue
			}
			c.stack[top].pos = pos + 1
			c.key, c.value = n.keys[pos], n.values[pos]
			if !n.leaf() {
				c.pushLeft(n.children[pos+1])
			}
		}
		if c.hi.kind != unbounded && !c.belowHi() {
			c.finish()
			return false
		}
		if c.remaining > 0 {
			c.remaining--
		}
		return true
	}
	c.finish()
	return false
}

// belowHi reports whether the current key is within the upper bound.
func (c *Cursor[K, V]) belowHi() bool {
	r, err := c.m.cmp(c.key, c.hi.key)
	if err != nil {
		c.err = comparisonFailed(err)
		return false
	}
	return r < 0 || (r == 0 && c.hi.kind == inclusive)
}

func (c *Cursor[K, V]) finish() {
	var k K
	var v V
	c.key, c.value = k, v
	c.stack = c.stack[:0]
	if c.remaining > 0 {
		c.remaining = 0
	}
}

// Key returns the key at the cursor's position.
func (c *Cursor[K, V]) Key() K {
	return c.key
}

// Value returns the value at the cursor's position.
func (c *Cursor[K, V]) Value() V {
	return c.value
}

// Err returns the comparison failure that ended a range traversal, if any.
func (c *Cursor[K, V]) Err() error {
	return c.err
}

// Remaining returns the number of entries still to be produced by an Ascend
// or Descend cursor. Range cursors cannot tell cheaply and return -1.
func (c *Cursor[K, V]) Remaining() int {
	return c.remaining
}

// All returns an iterator over the entries of m in ascending key order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for c := m.Ascend(); c.Next(); {
			if !yield(c.Key(), c.Value()) {
				return
			}
		}
	}
}

// Backward returns an iterator over the entries of m in descending key order.
func (m *Map[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for c := m.Descend(); c.Next(); {
			if !yield(c.Key(), c.Value()) {
				return
			}
		}
	}
}
