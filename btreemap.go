// Copyright 2014-2022 Google Inc.
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

// Package btreemap implements an ordered in-memory key/value map on top of a
// B-Tree of arbitrary order.
//
// btreemap is an in-memory B-Tree for use as an ordered dictionary. It is not
// meant for persistent storage solutions.
//
// It has a flatter structure than an equivalent red-black or other binary tree,
// which in some cases yields better memory usage and/or performance.
// See some discussion on the matter here:
//
//	http://google-opensource.blogspot.com/2013/01/c-containers-that-save-memory-and-time.html
//
// Every node stores its keys and values in slices sized once, when the node
// is allocated, to the maximum the tree order allows. Nodes own their
// children exclusively and never point back at their parents.
//
// Keys are ordered by a CompareFunc, which may fail. A call whose comparison
// fails returns an error marked with ErrComparison and leaves the map exactly
// as it was: inserts and deletes first locate their target with a read-only
// search, and only then restructure the tree without comparing again.
//
// Only the first and last entries are addressable by position (PeekItem,
// PopItem); arbitrary positions would cost O(n) and are rejected with
// ErrUnsupportedIndex.
//
// A Map is not safe for concurrent use. Cursors reference the tree's nodes
// directly and become invalid as soon as the map is modified through
// anything but a value overwrite; callers must hold exclusive access for the
// lifetime of every cursor they open.
package btreemap

import (
	"cmp"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/google/btreemap/internal/invariants"
)

const (
	// MinOrder is the smallest order a tree can have: a 2-3-4 tree.
	MinOrder = 2
	// DefaultOrder is used when no order, or one below MinOrder, is given to
	// New.
	DefaultOrder = 64
)

// Entry is a key/value pair stored in a Map.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Options holds the optional parameters for NewWithOptions.
type Options[K, V any] struct {
	// Order is the minimum degree t of the tree: every node other than the
	// root holds between t-1 and 2t-1 entries. Zero selects DefaultOrder.
	Order int

	// FreeList recycles nodes between maps. Maps sharing a FreeList may be
	// written concurrently. A private list of DefaultFreeListSize nodes is
	// used when unset.
	FreeList *FreeList[K, V]
}

// EnsureDefaults ensures that the default values for all options are set if a
// valid value was not already specified. Returns the new options.
func (o *Options[K, V]) EnsureDefaults() *Options[K, V] {
	if o.Order < MinOrder {
		o.Order = DefaultOrder
	}
	if o.FreeList == nil {
		o.FreeList = NewFreeList[K, V](DefaultFreeListSize)
	}
	return o
}

// Validate verifies that the options are mutually consistent. Unlike New,
// which silently substitutes DefaultOrder, an explicit order below MinOrder
// is rejected.
func (o *Options[K, V]) Validate() error {
	if o.Order < 0 || (o.Order > 0 && o.Order < MinOrder) {
		return errors.Mark(
			errors.Newf("btreemap: order %d is below the minimum of %d", o.Order, MinOrder),
			ErrInvalidArgument)
	}
	return nil
}

// Map is an ordered key/value map backed by a B-Tree.
//
// Write operations are not safe for concurrent mutation by multiple
// goroutines.
type Map[K, V any] struct {
	degree   int
	length   int
	root     *node[K, V]
	freelist *FreeList[K, V]
	cmp      CompareFunc[K]
	// path is scratch space recording the slot chosen at each level by the
	// search that precedes every insert and delete.
	path []int
	// seq counts structural changes so that invariant builds can catch
	// cursors that outlive them.
	seq invariants.Value[uint64]
}

// New creates a new Map with the given order, ordering keys with cmp.
//
// New(2, cmp), for example, will create a 2-3-4 tree (each node contains 1-3
// entries and 2-4 children). An order below MinOrder selects DefaultOrder.
func New[K, V any](order int, cmp CompareFunc[K]) *Map[K, V] {
	if order < MinOrder {
		order = DefaultOrder
	}
	return newMap(order, cmp, NewFreeList[K, V](DefaultFreeListSize))
}

// NewOrdered creates a new Map for key types supporting the '<' operator.
func NewOrdered[K cmp.Ordered, V any](order int) *Map[K, V] {
	return New[K, V](order, Compare[K]())
}

// NewWithOptions creates a new Map configured by opts. It returns an error
// marked with ErrInvalidArgument if the options are invalid.
func NewWithOptions[K, V any](cmp CompareFunc[K], opts Options[K, V]) (*Map[K, V], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.EnsureDefaults()
	return newMap(opts.Order, cmp, opts.FreeList), nil
}

func newMap[K, V any](order int, cmp CompareFunc[K], f *FreeList[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		degree:   order,
		freelist: f,
		cmp:      cmp,
	}
	m.root = f.newNode(m.maxKeys(), false)
	return m
}

// maxKeys returns the max number of entries to allow per node.
func (m *Map[K, V]) maxKeys() int {
	return m.degree*2 - 1
}

// Order returns the minimum degree of the tree.
func (m *Map[K, V]) Order() int {
	return m.degree
}

// Len returns the number of entries currently in the map.
func (m *Map[K, V]) Len() int {
	return m.length
}

// Height returns the number of node levels in the tree, 0 for an empty map.
func (m *Map[K, V]) Height() int {
	if m.length == 0 {
		return 0
	}
	h := 1
	for n := m.root; !n.leaf(); n = n.children[0] {
		h++
	}
	return h
}

// seek descends from the root looking for key, appending the slot chosen at
// each level to path. It stops at the node holding the key or at the leaf
// where the key would be inserted. It is the only step of a write that
// compares keys.
func (m *Map[K, V]) seek(path []int, key K) ([]int, *node[K, V], bool, error) {
	n := m.root
	for {
		i, found, err := n.find(key, m.cmp)
		if err != nil {
			return path, nil, false, comparisonFailed(err)
		}
		path = append(path, i)
		if found || n.leaf() {
			return path, n, found, nil
		}
		n = n.children[i]
	}
}

// ReplaceOrInsert adds the given entry to the map. If the map already holds an
// equal key, its value is overwritten in place and the previous value is
// returned with true. Otherwise it returns (zeroValue, false, nil).
func (m *Map[K, V]) ReplaceOrInsert(key K, value V) (_ V, _ bool, err error) {
	// Slot 0 is reserved for the new root should the current one split.
	path, n, found, err := m.seek(append(m.path[:0], 0), key)
	m.path = path
	if err != nil {
		return
	}
	if found {
		i := path[len(path)-1]
		out := n.values[i]
		n.values[i] = value
		return out, true, nil
	}
	if maxKeys := m.maxKeys(); len(m.root.keys) >= maxKeys {
		oldroot := m.root
		m.root = m.freelist.newNode(maxKeys, true)
		m.root.children = append(m.root.children, oldroot)
		m.root.splitChild(0, m.freelist)
		if mid := maxKeys / 2; path[1] > mid {
			path[0] = 1
			path[1] -= mid + 1
		}
	} else {
		path = path[1:]
	}
	m.root.insert(path, key, value, m.freelist)
	m.length++
	m.mutated()
	return
}

// SetDefault returns the value stored for key, first inserting def if the key
// is absent.
func (m *Map[K, V]) SetDefault(key K, def V) (V, error) {
	v, found, err := m.root.get(key, m.cmp)
	if err != nil {
		return v, comparisonFailed(err)
	}
	if found {
		return v, nil
	}
	if _, _, err := m.ReplaceOrInsert(key, def); err != nil {
		return v, err
	}
	return def, nil
}

// Get looks for key in the map, returning its value. It returns an error
// marked with ErrKeyNotFound if the key is absent.
func (m *Map[K, V]) Get(key K) (V, error) {
	v, found, err := m.root.get(key, m.cmp)
	switch {
	case err != nil:
		return v, comparisonFailed(err)
	case !found:
		return v, keyNotFound(key)
	}
	return v, nil
}

// GetOr looks for key in the map, returning def if it is absent.
func (m *Map[K, V]) GetOr(key K, def V) (V, error) {
	v, found, err := m.root.get(key, m.cmp)
	switch {
	case err != nil:
		return v, comparisonFailed(err)
	case !found:
		return def, nil
	}
	return v, nil
}

// Has returns true if the given key is in the map.
func (m *Map[K, V]) Has(key K) (bool, error) {
	_, found, err := m.root.get(key, m.cmp)
	if err != nil {
		return false, comparisonFailed(err)
	}
	return found, nil
}

// Delete removes the entry with the given key from the map, returning its
// value. If no such entry exists it returns an error marked with
// ErrKeyNotFound and the map is left untouched.
func (m *Map[K, V]) Delete(key K) (out V, err error) {
	path, _, found, err := m.seek(m.path[:0], key)
	m.path = path
	if err != nil {
		return
	}
	if !found {
		return out, keyNotFound(key)
	}
	_, out = m.root.remove(path, removeItem, m.freelist)
	m.removed()
	return out, nil
}

// DeleteOr removes the entry with the given key from the map, returning its
// value, or def if the key is absent.
func (m *Map[K, V]) DeleteOr(key K, def V) (V, error) {
	v, err := m.Delete(key)
	if errors.Is(err, ErrKeyNotFound) {
		return def, nil
	}
	return v, err
}

// removed finishes a removal: the root is replaced by its only child once it
// runs out of entries, shrinking the tree by one level.
func (m *Map[K, V]) removed() {
	if len(m.root.keys) == 0 && !m.root.leaf() {
		oldroot := m.root
		m.root = m.root.children[0]
		m.freelist.freeNode(oldroot)
	}
	m.length--
	m.mutated()
}

// Min returns the smallest key in the map, or (zeroValue, false) if the map
// is empty.
func (m *Map[K, V]) Min() (K, bool) {
	k, _, ok := first(m.root)
	return k, ok
}

// Max returns the largest key in the map, or (zeroValue, false) if the map is
// empty.
func (m *Map[K, V]) Max() (K, bool) {
	k, _, ok := last(m.root)
	return k, ok
}

// PeekFirst returns the entry with the smallest key without removing it.
func (m *Map[K, V]) PeekFirst() (K, V, bool) {
	return first(m.root)
}

// PeekLast returns the entry with the largest key without removing it.
func (m *Map[K, V]) PeekLast() (K, V, bool) {
	return last(m.root)
}

// PopFirst removes the entry with the smallest key and returns it.
// If the map is empty, returns (zeroValue, zeroValue, false).
func (m *Map[K, V]) PopFirst() (K, V, bool) {
	return m.deleteEndpoint(removeMin)
}

// PopLast removes the entry with the largest key and returns it.
// If the map is empty, returns (zeroValue, zeroValue, false).
func (m *Map[K, V]) PopLast() (K, V, bool) {
	return m.deleteEndpoint(removeMax)
}

func (m *Map[K, V]) deleteEndpoint(typ toRemove) (_ K, _ V, _ bool) {
	if m.length == 0 {
		return
	}
	k, v := m.root.remove(nil, typ, m.freelist)
	m.removed()
	return k, v, true
}

// PeekItem returns the entry at the given position without removing it.
// Only the first (0) and last (-1 or Len()-1) positions are supported; any
// other index returns an error marked with ErrUnsupportedIndex. An empty map
// returns an error marked with ErrKeyNotFound.
func (m *Map[K, V]) PeekItem(index int) (K, V, error) {
	fromFront, err := m.endpoint(index)
	if err != nil {
		var k K
		var v V
		return k, v, err
	}
	if fromFront {
		k, v, _ := m.PeekFirst()
		return k, v, nil
	}
	k, v, _ := m.PeekLast()
	return k, v, nil
}

// PopItem removes and returns the entry at the given position. It accepts
// the same positions as PeekItem.
func (m *Map[K, V]) PopItem(index int) (K, V, error) {
	fromFront, err := m.endpoint(index)
	if err != nil {
		var k K
		var v V
		return k, v, err
	}
	if fromFront {
		k, v, _ := m.PopFirst()
		return k, v, nil
	}
	k, v, _ := m.PopLast()
	return k, v, nil
}

// endpoint resolves a positional index to the first or last entry.
func (m *Map[K, V]) endpoint(index int) (fromFront bool, _ error) {
	if m.length == 0 {
		return false, errors.Mark(errors.New("btreemap: map is empty"), ErrKeyNotFound)
	}
	switch index {
	case 0:
		return true, nil
	case -1, m.length - 1:
		return false, nil
	}
	return false, errors.Mark(
		errors.Newf("btreemap: index %d is neither the first nor the last entry", index),
		ErrUnsupportedIndex)
}

// Clear removes all entries from the map. If addNodesToFreelist is true,
// m's nodes are added to its freelist as part of this call, until the freelist
// is full. Otherwise, the root node is simply dereferenced and the subtree
// left to Go's normal GC processes.
//
// This can be much faster than calling Delete on all elements, because that
// requires finding/removing each element in the tree and updating the tree
// accordingly. It also is somewhat faster than creating a new map to replace
// the old one, because nodes from the old tree are reclaimed into the
// freelist for use by the new one, instead of being lost to the garbage
// collector.
//
// This call takes:
//
//	O(1): when addNodesToFreelist is false, this is a single operation.
//	O(1): when the freelist is already full, it breaks out immediately
//	O(freelist size):  when the freelist is empty, nodes are added to the
//	    freelist until full.
func (m *Map[K, V]) Clear(addNodesToFreelist bool) {
	if addNodesToFreelist {
		m.root.reset(m.freelist)
	}
	m.root, m.length = m.freelist.newNode(m.maxKeys(), false), 0
	m.mutated()
}

// mutated records a structural change.
func (m *Map[K, V]) mutated() {
	if invariants.Enabled {
		m.seq.Set(m.seq.Get() + 1)
		if invariants.Sometimes(5) {
			if err := m.check(); err != nil && !errors.Is(err, ErrComparison) {
				panic(err)
			}
		}
	}
}

// Stats describes the shape of a tree.
type Stats struct {
	Order  int
	Len    int
	Height int
	Nodes  int
	Leaves int
}

// SafeFormat implements redact.SafeFormatter.
func (s Stats) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("order=%d len=%d height=%d nodes=%d leaves=%d",
		redact.Safe(s.Order), redact.Safe(s.Len), redact.Safe(s.Height),
		redact.Safe(s.Nodes), redact.Safe(s.Leaves))
}

// String implements fmt.Stringer.
func (s Stats) String() string {
	return redact.StringWithoutMarkers(s)
}

// Stats walks the tree and reports its shape. It takes O(nodes).
func (m *Map[K, V]) Stats() Stats {
	s := Stats{Order: m.degree, Len: m.length, Height: m.Height()}
	if m.length > 0 {
		m.root.stats(&s)
	}
	return s
}

func (n *node[K, V]) stats(s *Stats) {
	s.Nodes++
	if n.leaf() {
		s.Leaves++
	}
	for _, c := range n.children {
		c.stats(s)
	}
}

// SafeFormat implements redact.SafeFormatter. Keys and values are never
// printed.
func (m *Map[K, V]) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("btreemap.Map(order=%d, size=%d)", redact.Safe(m.degree), redact.Safe(m.length))
}

// String implements fmt.Stringer.
func (m *Map[K, V]) String() string {
	return redact.StringWithoutMarkers(m)
}

// Dump writes the tree to w, one node per line, indented by depth.
func (m *Map[K, V]) Dump(w io.Writer) {
	m.root.print(w, 0)
}
