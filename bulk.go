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
)

// Keys returns every key in the map in ascending order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, 0, m.length)
	for c := m.Ascend(); c.Next(); {
		out = append(out, c.Key())
	}
	return out
}

// Values returns every value in the map in ascending key order.
func (m *Map[K, V]) Values() []V {
	out := make([]V, 0, m.length)
	for c := m.Ascend(); c.Next(); {
		out = append(out, c.Value())
	}
	return out
}

// Items returns every entry in the map in ascending key order.
func (m *Map[K, V]) Items() []Entry[K, V] {
	out := make([]Entry[K, V], 0, m.length)
	for c := m.Ascend(); c.Next(); {
		out = append(out, Entry[K, V]{Key: c.Key(), Value: c.Value()})
	}
	return out
}

// Copy returns a new map with the same order, comparator and entries as m.
// The copy shares m's freelist. Entries are re-inserted one by one, so Copy
// costs O(n log n).
func (m *Map[K, V]) Copy() (*Map[K, V], error) {
	out := newMap(m.degree, m.cmp, m.freelist)
	if err := out.MergeSeq(m.All()); err != nil {
		return nil, err
	}
	return out, nil
}

// EqualFunc reports whether m and other hold the same keys, as judged by m's
// comparator, with values equal according to eq. Maps of different sizes are
// rejected without comparing any entries.
func (m *Map[K, V]) EqualFunc(other *Map[K, V], eq func(a, b V) bool) (bool, error) {
	if m.length != other.length {
		return false, nil
	}
	a, b := m.Ascend(), other.Ascend()
	for a.Next() && b.Next() {
		c, err := m.cmp(a.Key(), b.Key())
		if err != nil {
			return false, comparisonFailed(err)
		}
		if c != 0 || !eq(a.Value(), b.Value()) {
			return false, nil
		}
	}
	return true, nil
}

// Equal reports whether two maps hold the same entries.
func Equal[K any, V comparable](a, b *Map[K, V]) (bool, error) {
	return a.EqualFunc(b, func(x, y V) bool { return x == y })
}

// Merge inserts every entry of src into m, overwriting the values of keys
// that are already present. On error, the entries merged so far remain in m.
func (m *Map[K, V]) Merge(src *Map[K, V]) error {
	if src == m {
		return nil
	}
	return m.MergeSeq(src.All())
}

// MergeSeq inserts every pair produced by seq into m, overwriting the values
// of keys that are already present.
func (m *Map[K, V]) MergeSeq(seq iter.Seq2[K, V]) (err error) {
	for k, v := range seq {
		if _, _, err = m.ReplaceOrInsert(k, v); err != nil {
			return err
		}
	}
	return nil
}

// MergeMap inserts every entry of src into m. Go maps are unordered, so when
// keys of src compare equal under m's comparator the surviving value is
// unspecified. It is a function rather than a method because Go map keys must
// be comparable.
func MergeMap[K comparable, V any](m *Map[K, V], src map[K]V) error {
	for k, v := range src {
		if _, _, err := m.ReplaceOrInsert(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Mapping is a key-enumerable source of entries for MergeMapping.
type Mapping[K, V any] interface {
	Keys() []K
	Get(key K) (V, bool)
}

// MergeMapping inserts every entry of src into m, enumerating src through
// its Keys. Keys that src reports but cannot Get are skipped.
func (m *Map[K, V]) MergeMapping(src Mapping[K, V]) error {
	for _, k := range src.Keys() {
		v, ok := src.Get(k)
		if !ok {
			continue
		}
		if _, _, err := m.ReplaceOrInsert(k, v); err != nil {
			return err
		}
	}
	return nil
}

// MergePairs inserts untyped [key, value] pairs into m. An element that is
// not exactly two long, or whose members are not a K and a V, stops the merge
// with an error marked with ErrInvalidArgument naming its position. A nil
// value stores the zero V.
func (m *Map[K, V]) MergePairs(pairs [][]any) error {
	for i, p := range pairs {
		if len(p) != 2 {
			return errors.Mark(
				errors.Newf("btreemap: merge element #%d has length %d; 2 is required", i, len(p)),
				ErrInvalidArgument)
		}
		k, ok := p[0].(K)
		if !ok {
			return errors.Mark(
				errors.Newf("btreemap: merge element #%d has key of type %T", i, p[0]),
				ErrInvalidArgument)
		}
		v, ok := p[1].(V)
		if !ok && p[1] != nil {
			return errors.Mark(
				errors.Newf("btreemap: merge element #%d has value of type %T", i, p[1]),
				ErrInvalidArgument)
		}
		if _, _, err := m.ReplaceOrInsert(k, v); err != nil {
			return errors.Wrapf(err, "merge element #%d", i)
		}
	}
	return nil
}
