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

//go:build invariants || race

package invariants

import "math/rand/v2"

// Enabled is true if we were built with the "invariants" or "race" build tags.
const Enabled = true

// Sometimes returns true percent% of the time if we were built with the
// "invariants" or "race" build tags.
func Sometimes(percent int) bool {
	return rand.Uint32N(100) < uint32(percent)
}

// Value is a generic container for a value that should only exist in invariant
// builds. In non-invariant builds, storing a value is a no-op, retrieving a
// value returns the type parameter's zero value, and the Value struct takes up
// no space.
type Value[V any] struct {
	v V
}

// Get the current value, or the zero value if invariants are disabled.
func (v *Value[V]) Get() V {
	return v.v
}

// Set the value; no-op in non-invariant builds.
func (v *Value[V]) Set(inner V) {
	v.v = inner
}
