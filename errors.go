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

var (
	// ErrKeyNotFound is returned when a lookup, delete or endpoint removal
	// finds no matching entry.
	ErrKeyNotFound = errors.New("btreemap: key not found")

	// ErrInvalidArgument is returned for malformed caller input: an order
	// below the minimum degree, a bad range inclusivity notation or a merge
	// element that is not a key/value pair.
	ErrInvalidArgument = errors.New("btreemap: invalid argument")

	// ErrComparison is returned when the comparator cannot order two keys.
	// The map is never modified by a call that fails this way.
	ErrComparison = errors.New("btreemap: keys are not comparable")

	// ErrUnsupportedIndex is returned by PeekItem and PopItem for any index
	// other than the first or last entry.
	ErrUnsupportedIndex = errors.New("btreemap: only the first and last entries are addressable")
)

// comparisonFailed marks err as a comparator failure.
func comparisonFailed(err error) error {
	if errors.Is(err, ErrComparison) {
		return err
	}
	return errors.Mark(errors.Wrap(err, "btreemap: comparing keys"), ErrComparison)
}

func keyNotFound(key any) error {
	return errors.Mark(errors.Newf("btreemap: key %v not found", key), ErrKeyNotFound)
}
