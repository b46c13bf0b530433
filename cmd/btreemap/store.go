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
	"github.com/cockroachdb/swiss"
	"github.com/google/btree"
	"github.com/google/btreemap"
	"github.com/petar/GoLLRB/llrb"
)

// kvStore is the common surface the benchmark drives. Keys and values are
// ints so every implementation pays the same per-entry cost.
type kvStore interface {
	Name() string
	Put(k, v int) error
	Get(k int) bool
	Delete(k int) bool
	// Scan visits up to n entries starting at the first key >= lo and
	// returns how many it saw. Unordered stores return -1.
	Scan(lo, n int) int
	Len() int
	Ordered() bool
}

type mapStore struct {
	m *btreemap.Map[int, int]
}

func newMapStore(order int) *mapStore {
	return &mapStore{m: btreemap.NewOrdered[int, int](order)}
}

func (s *mapStore) Name() string { return "btreemap" }

func (s *mapStore) Put(k, v int) error {
	_, _, err := s.m.ReplaceOrInsert(k, v)
	return err
}

func (s *mapStore) Get(k int) bool {
	_, err := s.m.Get(k)
	return err == nil
}

func (s *mapStore) Delete(k int) bool {
	_, err := s.m.Delete(k)
	return err == nil
}

func (s *mapStore) Scan(lo, n int) int {
	c, err := s.m.Range(btreemap.Inclusive(lo), btreemap.Unbounded[int]())
	if err != nil {
		return 0
	}
	i := 0
	for ; i < n && c.Next(); i++ {
	}
	return i
}

func (s *mapStore) Ordered() bool { return true }

func (s *mapStore) Len() int { return s.m.Len() }

type btreeEntry struct {
	k, v int
}

type googleBTreeStore struct {
	t *btree.BTreeG[btreeEntry]
}

func newGoogleBTreeStore(degree int) *googleBTreeStore {
	return &googleBTreeStore{
		t: btree.NewG(degree, func(a, b btreeEntry) bool { return a.k < b.k }),
	}
}

func (s *googleBTreeStore) Name() string { return "google/btree" }

func (s *googleBTreeStore) Put(k, v int) error {
	s.t.ReplaceOrInsert(btreeEntry{k, v})
	return nil
}

func (s *googleBTreeStore) Get(k int) bool {
	_, ok := s.t.Get(btreeEntry{k: k})
	return ok
}

func (s *googleBTreeStore) Delete(k int) bool {
	_, ok := s.t.Delete(btreeEntry{k: k})
	return ok
}

func (s *googleBTreeStore) Scan(lo, n int) int {
	i := 0
	s.t.AscendGreaterOrEqual(btreeEntry{k: lo}, func(btreeEntry) bool {
		i++
		return i < n
	})
	return i
}

func (s *googleBTreeStore) Ordered() bool { return true }

func (s *googleBTreeStore) Len() int { return s.t.Len() }

// llrbEntry orders GoLLRB items by key.
type llrbEntry struct {
	k, v int
}

func (e llrbEntry) Less(than llrb.Item) bool {
	return e.k < than.(llrbEntry).k
}

type llrbStore struct {
	t *llrb.LLRB
}

func newLLRBStore() *llrbStore {
	return &llrbStore{t: llrb.New()}
}

func (s *llrbStore) Name() string { return "GoLLRB" }

func (s *llrbStore) Put(k, v int) error {
	s.t.ReplaceOrInsert(llrbEntry{k, v})
	return nil
}

func (s *llrbStore) Get(k int) bool {
	return s.t.Get(llrbEntry{k: k}) != nil
}

func (s *llrbStore) Delete(k int) bool {
	return s.t.Delete(llrbEntry{k: k}) != nil
}

func (s *llrbStore) Scan(lo, n int) int {
	i := 0
	s.t.AscendGreaterOrEqual(llrbEntry{k: lo}, func(llrb.Item) bool {
		i++
		return i < n
	})
	return i
}

func (s *llrbStore) Ordered() bool { return true }

func (s *llrbStore) Len() int { return s.t.Len() }

// swissStore is an unordered baseline for point operations.
type swissStore struct {
	m swiss.Map[int, int]
}

func newSwissStore(capacity int) *swissStore {
	s := &swissStore{}
	s.m.Init(capacity)
	return s
}

func (s *swissStore) Name() string { return "swiss (unordered)" }

func (s *swissStore) Put(k, v int) error {
	s.m.Put(k, v)
	return nil
}

func (s *swissStore) Get(k int) bool {
	_, ok := s.m.Get(k)
	return ok
}

func (s *swissStore) Delete(k int) bool {
	if _, ok := s.m.Get(k); !ok {
		return false
	}
	s.m.Delete(k)
	return true
}

func (s *swissStore) Scan(lo, n int) int { return -1 }

func (s *swissStore) Len() int { return s.m.Len() }

func (s *swissStore) Ordered() bool { return false }
