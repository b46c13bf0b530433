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
	"bytes"
	"cmp"
	"math"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// CompareFunc determines how to order keys of type K. It returns a negative
// number when a < b, zero when a == b and a positive number when a > b, and
// must describe a total order over every key stored in a Map.
//
// A CompareFunc that cannot order two keys returns an error instead; the
// error is reported to the caller marked with ErrComparison and is never
// treated as equality.
type CompareFunc[K any] func(a, b K) (int, error)

// Compare returns a CompareFunc for types that support the '<' operator.
// Floating point NaNs sort before every other value.
func Compare[K cmp.Ordered]() CompareFunc[K] {
	return func(a, b K) (int, error) {
		return cmp.Compare(a, b), nil
	}
}

// CompareOf adapts a strict weak ordering. If !less(a, b) && !less(b, a) the
// keys are treated as equal, so a Map holds only one of them.
func CompareOf[K any](less func(a, b K) bool) CompareFunc[K] {
	return func(a, b K) (int, error) {
		switch {
		case less(a, b):
			return -1, nil
		case less(b, a):
			return 1, nil
		}
		return 0, nil
	}
}

// Comparer is implemented by key types that know how to order themselves
// for DynamicCompare.
type Comparer interface {
	CompareTo(other any) (int, error)
}

// DynamicCompare orders heterogeneous keys held in an `any`. Strings and byte
// slices compare lexically and false sorts before true. Numbers of any
// integer or floating point kind compare by value (an int and a float can be
// compared exactly). Other types are ordered through Comparer. Anything else,
// including NaN or a bool against a number, fails with ErrComparison.
func DynamicCompare(a, b any) (int, error) {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case []byte:
		if y, ok := b.([]byte); ok {
			return bytes.Compare(x, y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			return compareBool(x, y), nil
		}
	}
	if x, ok := toNumber(a); ok {
		if y, ok := toNumber(b); ok {
			return x.compare(y)
		}
	}
	if c, ok := a.(Comparer); ok {
		r, err := c.CompareTo(b)
		if err != nil {
			return 0, comparisonFailed(err)
		}
		return r, nil
	}
	if c, ok := b.(Comparer); ok {
		r, err := c.CompareTo(a)
		if err != nil {
			return 0, comparisonFailed(err)
		}
		return -r, nil
	}
	return 0, errors.Mark(errors.Newf("btreemap: cannot compare %T with %T", a, b), ErrComparison)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case b:
		return -1
	}
	return 1
}

type numberKind int8

const (
	signedKind numberKind = iota
	unsignedKind
	floatKind
)

type number struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
}

func toNumber(v any) (number, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{kind: signedKind, i: rv.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{kind: unsignedKind, u: rv.Uint()}, true
	case reflect.Float32, reflect.Float64:
		return number{kind: floatKind, f: rv.Float()}, true
	}
	return number{}, false
}

func (x number) compare(y number) (int, error) {
	if (x.kind == floatKind && math.IsNaN(x.f)) || (y.kind == floatKind && math.IsNaN(y.f)) {
		return 0, errors.Mark(errors.New("btreemap: NaN has no place in a total order"), ErrComparison)
	}
	switch {
	case x.kind == floatKind && y.kind == floatKind:
		return cmp.Compare(x.f, y.f), nil
	case y.kind == floatKind:
		return x.compareFloat(y.f), nil
	case x.kind == floatKind:
		return -y.compareFloat(x.f), nil
	case x.kind == signedKind && y.kind == signedKind:
		return cmp.Compare(x.i, y.i), nil
	case x.kind == unsignedKind && y.kind == unsignedKind:
		return cmp.Compare(x.u, y.u), nil
	case x.kind == signedKind:
		if x.i < 0 {
			return -1, nil
		}
		return cmp.Compare(uint64(x.i), y.u), nil
	default:
		if y.i < 0 {
			return 1, nil
		}
		return cmp.Compare(x.u, uint64(y.i)), nil
	}
}

// compareFloat compares an integer number against f exactly, without
// rounding the integer to the nearest float.
func (x number) compareFloat(f float64) int {
	const twoTo63, twoTo64 = 1 << 63, 1 << 64
	t := math.Trunc(f)
	if x.kind == signedKind {
		switch {
		case f >= twoTo63:
			return -1
		case f < -twoTo63:
			return 1
		}
		if c := cmp.Compare(x.i, int64(t)); c != 0 {
			return c
		}
	} else {
		switch {
		case f < 0:
			return 1
		case f >= twoTo64:
			return -1
		}
		if c := cmp.Compare(x.u, uint64(t)); c != 0 {
			return c
		}
	}
	// The integer equals the truncated float; the fraction decides.
	return cmp.Compare(t, f)
}
