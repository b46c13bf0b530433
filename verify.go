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

import "github.com/cockroachdb/errors"

// check verifies the structural invariants of the tree: keys strictly
// increase in order, every node but the root holds between order-1 and
// 2*order-1 entries, internal nodes have one more child than keys, all leaves
// sit at the same depth and Len matches the number of stored entries.
func (m *Map[K, V]) check() error {
	if m.root == nil {
		return errors.AssertionFailedf("btreemap: nil root")
	}
	v := verifier[K, V]{
		cmp:       m.cmp,
		maxKeys:   m.maxKeys(),
		leafDepth: -1,
	}
	if err := v.visit(m.root, 0, nil, nil); err != nil {
		return err
	}
	if v.count != m.length {
		return errors.AssertionFailedf("btreemap: length is %d but the tree holds %d entries",
			m.length, v.count)
	}
	if m.length == 0 && !m.root.leaf() {
		return errors.AssertionFailedf("btreemap: empty map has an internal root")
	}
	return nil
}

type verifier[K, V any] struct {
	cmp       CompareFunc[K]
	maxKeys   int
	leafDepth int
	count     int
}

// visit checks the subtree rooted at n, whose keys must all fall strictly
// between lo and hi when those are set.
func (v *verifier[K, V]) visit(n *node[K, V], depth int, lo, hi *K) error {
	minKeys := v.maxKeys / 2
	switch {
	case cap(n.keys) != v.maxKeys || cap(n.values) != v.maxKeys:
		return errors.AssertionFailedf("btreemap: node at depth %d has capacity %d, want %d",
			depth, cap(n.keys), v.maxKeys)
	case len(n.values) != len(n.keys):
		return errors.AssertionFailedf("btreemap: node at depth %d has %d keys but %d values",
			depth, len(n.keys), len(n.values))
	case len(n.keys) > v.maxKeys:
		return errors.AssertionFailedf("btreemap: node at depth %d holds %d keys, more than %d",
			depth, len(n.keys), v.maxKeys)
	case depth > 0 && len(n.keys) < minKeys:
		return errors.AssertionFailedf("btreemap: node at depth %d holds %d keys, fewer than %d",
			depth, len(n.keys), minKeys)
	}
	for i := range n.keys {
		if i > 0 {
			if err := v.less(depth, n.keys[i-1], n.keys[i]); err != nil {
				return err
			}
		}
		if lo != nil {
			if err := v.less(depth, *lo, n.keys[i]); err != nil {
				return err
			}
		}
		if hi != nil {
			if err := v.less(depth, n.keys[i], *hi); err != nil {
				return err
			}
		}
	}
	v.count += len(n.keys)
	if n.leaf() {
		if v.leafDepth < 0 {
			v.leafDepth = depth
		} else if v.leafDepth != depth {
			return errors.AssertionFailedf("btreemap: leaves at depths %d and %d", v.leafDepth, depth)
		}
		return nil
	}
	if len(n.children) != len(n.keys)+1 || cap(n.children) != v.maxKeys+1 {
		return errors.AssertionFailedf("btreemap: node at depth %d has %d keys and %d children (capacity %d)",
			depth, len(n.keys), len(n.children), cap(n.children))
	}
	for i, c := range n.children {
		clo, chi := lo, hi
		if i > 0 {
			clo = &n.keys[i-1]
		}
		if i < len(n.keys) {
			chi = &n.keys[i]
		}
		if err := v.visit(c, depth+1, clo, chi); err != nil {
			return err
		}
	}
	return nil
}

func (v *verifier[K, V]) less(depth int, a, b K) error {
	c, err := v.cmp(a, b)
	if err != nil {
		return errors.Wrapf(comparisonFailed(err), "btreemap: verifying depth %d", depth)
	}
	if c >= 0 {
		return errors.AssertionFailedf("btreemap: keys out of order at depth %d", depth)
	}
	return nil
}
