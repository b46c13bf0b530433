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

package btreemap

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	// DefaultFreeListSize is the number of nodes a Map's own free list keeps.
	DefaultFreeListSize = 32
)

// FreeList represents a free list of btree nodes. By default each Map has
// its own FreeList, but multiple Maps can share the same FreeList, in
// particular when they're created with Copy. Maps of different orders can
// share a FreeList; nodes whose capacity does not fit are dropped instead of
// being reused.
//
// Two Maps using the same freelist are safe for concurrent write access.
type FreeList[K, V any] struct {
	mu       sync.Mutex
	freelist []*node[K, V]
}

// NewFreeList creates a new free list.
// size is the maximum size of the returned free list.
func NewFreeList[K, V any](size int) *FreeList[K, V] {
	return &FreeList[K, V]{freelist: make([]*node[K, V], 0, size)}
}

// newNode returns an empty node able to hold maxKeys entries, and maxKeys+1
// children when internal is set. All storage is sized here, once.
func (f *FreeList[K, V]) newNode(maxKeys int, internal bool) (n *node[K, V]) {
	f.mu.Lock()
	index := len(f.freelist) - 1
	if index >= 0 {
		n = f.freelist[index]
		f.freelist[index] = nil
		f.freelist = f.freelist[:index]
	}
	f.mu.Unlock()
	if n == nil || cap(n.keys) != maxKeys {
		n = &node[K, V]{
			keys:   make(items[K], 0, maxKeys),
			values: make(items[V], 0, maxKeys),
		}
	}
	switch {
	case !internal:
		n.children = nil
	case cap(n.children) != maxKeys+1:
		n.children = make(items[*node[K, V]], 0, maxKeys+1)
	}
	return n
}

// freeNode clears n and hands it to the free list. It reports whether the
// list had room for it.
func (f *FreeList[K, V]) freeNode(n *node[K, V]) (out bool) {
	n.keys.truncate(0)
	n.values.truncate(0)
	n.children.truncate(0)
	f.mu.Lock()
	if len(f.freelist) < cap(f.freelist) {
		f.freelist = append(f.freelist, n)
		out = true
	}
	f.mu.Unlock()
	return
}

// items stores keys, values or children in a node. The backing array is
// allocated with the node and never grows.
type items[T any] []T

// insertAt inserts a value into the given index, pushing all subsequent values
// forward.
func (s *items[T]) insertAt(index int, item T) {
	var zero T
	*s = append(*s, zero)
	if index < len(*s) {
		copy((*s)[index+1:], (*s)[index:])
	}
	(*s)[index] = item
}

// removeAt removes a value at a given index, pulling all subsequent values
// back.
func (s *items[T]) removeAt(index int) T {
	item := (*s)[index]
	copy((*s)[index:], (*s)[index+1:])
	var zero T
	(*s)[len(*s)-1] = zero
	*s = (*s)[:len(*s)-1]
	return item
}

// pop removes and returns the last element in the list.
func (s *items[T]) pop() (out T) {
	index := len(*s) - 1
	out = (*s)[index]
	var zero T
	(*s)[index] = zero
	*s = (*s)[:index]
	return
}

// truncate truncates this instance at index so that it contains only the
// first index items. index must be less than or equal to length.
func (s *items[T]) truncate(index int) {
	var toClear items[T]
	*s, toClear = (*s)[:index], (*s)[index:]
	clear(toClear)
}

// node is an internal node in a tree.
//
// It must at all times maintain the invariant that either
//   - len(children) == 0, len(keys) unconstrained
//   - len(children) == len(keys) + 1
//
// and len(values) == len(keys). A node exclusively owns its children; there
// are no parent pointers.
type node[K, V any] struct {
	keys     items[K]
	values   items[V]
	children items[*node[K, V]]
}

func (n *node[K, V]) leaf() bool {
	return len(n.children) == 0
}

// find returns the index where the given key should be inserted into this
// node. 'found' is true if the key already exists at the given index.
func (n *node[K, V]) find(key K, cmp CompareFunc[K]) (index int, found bool, err error) {
	i, j := 0, len(n.keys)
	for i < j {
		h := int(uint(i+j) >> 1) // avoid overflow when computing h
		c, err := cmp(key, n.keys[h])
		if err != nil {
			return 0, false, err
		}
		switch {
		case c == 0:
			return h, true, nil
		case c > 0:
			i = h + 1
		default:
			j = h
		}
	}
	return i, false, nil
}

func (n *node[K, V]) insertEntry(i int, key K, value V) {
	n.keys.insertAt(i, key)
	n.values.insertAt(i, value)
}

func (n *node[K, V]) removeEntry(i int) (K, V) {
	return n.keys.removeAt(i), n.values.removeAt(i)
}

func (n *node[K, V]) popEntry() (K, V) {
	return n.keys.pop(), n.values.pop()
}

// split splits the given node at the given index. The current node shrinks,
// and this function returns the entry that existed at that index and a new
// node containing all entries/children after it.
//
// The new node is allocated before n is touched.
func (n *node[K, V]) split(i int, f *FreeList[K, V]) (K, V, *node[K, V]) {
	next := f.newNode(cap(n.keys), !n.leaf())
	key, value := n.keys[i], n.values[i]
	next.keys = append(next.keys, n.keys[i+1:]...)
	next.values = append(next.values, n.values[i+1:]...)
	n.keys.truncate(i)
	n.values.truncate(i)
	if !n.leaf() {
		next.children = append(next.children, n.children[i+1:]...)
		n.children.truncate(i + 1)
	}
	return key, value, next
}

// splitChild splits the full child i around its middle entry, which moves up
// into n between the two halves.
func (n *node[K, V]) splitChild(i int, f *FreeList[K, V]) {
	key, value, next := n.children[i].split(cap(n.keys)/2, f)
	n.insertEntry(i, key, value)
	n.children.insertAt(i+1, next)
}

// insert inserts an entry into the subtree rooted at this node, making sure
// no nodes in the subtree exceed their capacity. path holds the insertion
// position at this node and each node below it, as located by a prior search
// that did not find the key, so no comparisons happen here.
func (n *node[K, V]) insert(path []int, key K, value V, f *FreeList[K, V]) {
	i := path[0]
	if n.leaf() {
		n.insertEntry(i, key, value)
		return
	}
	if maxKeys := cap(n.keys); len(n.children[i].keys) >= maxKeys {
		n.splitChild(i, f)
		// The key was not found in the child, so its position there is never
		// the promoted slot itself: it falls at or before it (left half) or
		// after it (right half).
		if mid := maxKeys / 2; path[1] > mid {
			i++
			path[1] -= mid + 1
		}
	}
	n.children[i].insert(path[1:], key, value, f)
}

// get finds the given key in the subtree and returns its value.
func (n *node[K, V]) get(key K, cmp CompareFunc[K]) (V, bool, error) {
	var zero V
	for {
		i, found, err := n.find(key, cmp)
		switch {
		case err != nil:
			return zero, false, err
		case found:
			return n.values[i], true, nil
		case n.leaf():
			return zero, false, nil
		}
		n = n.children[i]
	}
}

// first returns the smallest entry in the subtree.
func first[K, V any](n *node[K, V]) (_ K, _ V, found bool) {
	for !n.leaf() {
		n = n.children[0]
	}
	if len(n.keys) == 0 {
		return
	}
	return n.keys[0], n.values[0], true
}

// last returns the largest entry in the subtree.
func last[K, V any](n *node[K, V]) (_ K, _ V, found bool) {
	for !n.leaf() {
		n = n.children[len(n.children)-1]
	}
	if len(n.keys) == 0 {
		return
	}
	return n.keys[len(n.keys)-1], n.values[len(n.values)-1], true
}

// toRemove details what entry to remove in a node.remove call.
type toRemove int

const (
	removeItem toRemove = iota // removes the entry located by path
	removeMin                  // removes smallest entry in the subtree
	removeMax                  // removes largest entry in the subtree
)

// remove removes an entry from the subtree rooted at this node and returns
// it. For removeItem, path holds the slot chosen at this node and each node
// below it by a prior search that found the key; its last element indexes the
// entry in the node holding it. Removal never compares keys.
func (n *node[K, V]) remove(path []int, typ toRemove, f *FreeList[K, V]) (K, V) {
	minKeys := cap(n.keys) / 2
	var i int
	switch typ {
	case removeMax:
		if n.leaf() {
			return n.popEntry()
		}
		i = len(n.keys)
	case removeMin:
		if n.leaf() {
			return n.removeEntry(0)
		}
		i = 0
	case removeItem:
		i = path[0]
		if n.leaf() {
			return n.removeEntry(i)
		}
		if len(path) == 1 {
			return n.removeInternal(path, f)
		}
	default:
		panic("invalid type")
	}
	// If we get to here, we have children and the entry is below child i.
	if len(n.children[i].keys) <= minKeys {
		var pos *int
		if typ == removeItem {
			pos = &path[1]
		}
		i = n.growChild(i, pos, f)
	}
	if typ == removeItem {
		return n.children[i].remove(path[1:], typ, f)
	}
	return n.children[i].remove(nil, typ, f)
}

// removeInternal removes the entry at path[0], which lives in this internal
// node, replacing it with its predecessor or successor when a neighbouring
// child can spare one, or merging both children around it otherwise.
func (n *node[K, V]) removeInternal(path []int, f *FreeList[K, V]) (K, V) {
	minKeys := cap(n.keys) / 2
	i := path[0]
	key, value := n.keys[i], n.values[i]
	switch {
	case len(n.children[i].keys) > minKeys:
		// Pull the predecessor (the rightmost leaf entry of our immediate
		// left child) into the slot we are emptying.
		n.keys[i], n.values[i] = n.children[i].remove(nil, removeMax, f)
		return key, value
	case len(n.children[i+1].keys) > minKeys:
		n.keys[i], n.values[i] = n.children[i+1].remove(nil, removeMin, f)
		return key, value
	default:
		n.mergeChildren(i, f)
		// The merged child holds minKeys entries from the left, then ours.
		path[0] = minKeys
		return n.children[i].remove(path, removeItem, f)
	}
}

// growChild grows child 'i' so that it holds more than minKeys entries,
// making it possible to remove an entry from it. It returns the index of the
// child now covering the same keys. pos, when set, is a slot position inside
// that child and is shifted to stay on the same entry.
//
// If a sibling has entries to spare we rotate one through n (stealing),
// otherwise the child is merged with a sibling and the separating entry.
func (n *node[K, V]) growChild(i int, pos *int, f *FreeList[K, V]) int {
	minKeys := cap(n.keys) / 2
	switch {
	case i > 0 && len(n.children[i-1].keys) > minKeys:
		n.borrowFromLeft(i)
		if pos != nil {
			*pos++
		}
	case i < len(n.keys) && len(n.children[i+1].keys) > minKeys:
		n.borrowFromRight(i)
	default:
		if i >= len(n.keys) {
			i--
			if pos != nil {
				*pos += len(n.children[i].keys) + 1
			}
		}
		n.mergeChildren(i, f)
	}
	return i
}

// borrowFromLeft moves the separator between children i-1 and i down to the
// front of child i, and the last entry of child i-1 up into its place.
func (n *node[K, V]) borrowFromLeft(i int) {
	child, stealFrom := n.children[i], n.children[i-1]
	key, value := stealFrom.popEntry()
	child.insertEntry(0, n.keys[i-1], n.values[i-1])
	n.keys[i-1], n.values[i-1] = key, value
	if !stealFrom.leaf() {
		child.children.insertAt(0, stealFrom.children.pop())
	}
}

// borrowFromRight moves the separator between children i and i+1 down to the
// end of child i, and the first entry of child i+1 up into its place.
func (n *node[K, V]) borrowFromRight(i int) {
	child, stealFrom := n.children[i], n.children[i+1]
	key, value := stealFrom.removeEntry(0)
	child.keys = append(child.keys, n.keys[i])
	child.values = append(child.values, n.values[i])
	n.keys[i], n.values[i] = key, value
	if !stealFrom.leaf() {
		child.children = append(child.children, stealFrom.children.removeAt(0))
	}
}

// mergeChildren concatenates child i, the separator at i and child i+1 into
// child i. Child i+1 is released to the free list.
func (n *node[K, V]) mergeChildren(i int, f *FreeList[K, V]) {
	child := n.children[i]
	key, value := n.removeEntry(i)
	mergeChild := n.children.removeAt(i + 1)
	child.keys = append(child.keys, key)
	child.values = append(child.values, value)
	child.keys = append(child.keys, mergeChild.keys...)
	child.values = append(child.values, mergeChild.values...)
	child.children = append(child.children, mergeChild.children...)
	f.freeNode(mergeChild)
}

// reset returns a subtree to the freelist. It breaks out immediately if the
// freelist is full, since the only benefit of iterating is to fill that
// freelist up. Returns true if parent reset call should continue.
func (n *node[K, V]) reset(f *FreeList[K, V]) bool {
	for _, child := range n.children {
		if !child.reset(f) {
			return false
		}
	}
	return f.freeNode(n)
}

// print is used for testing/debugging purposes.
func (n *node[K, V]) print(w io.Writer, level int) {
	fmt.Fprintf(w, "%sNODE:%v\n", strings.Repeat("  ", level), []K(n.keys))
	for _, c := range n.children {
		c.print(w, level+1)
	}
}
