/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Tabula Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package columns

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/google/tabula/core/cells"
)

// Compare compares two field values.
// Returns -1 if a < b, 0 if equal, 1 if a > b.
// Missing values sort after everything else. Values of different kinds fall
// back to comparing their string forms.
func Compare(a, b any) int {
	aNil, bNil := cells.IsNil(a), cells.IsNil(b)
	if aNil || bNil {
		return compareMissing(aNil, bNil)
	}
	a, b = indirect(a), indirect(b)

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			return compareBools(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return compareTimes(x, y)
		}
	case time.Duration:
		if y, ok := b.(time.Duration); ok {
			return compareDurations(x, y)
		}
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case isInt(av) && isInt(bv):
		return compareOrdered(av.Int(), bv.Int())
	case isUint(av) && isUint(bv):
		return compareOrdered(av.Uint(), bv.Uint())
	case isNumber(av) && isNumber(bv):
		return compareFloat64s(toFloat(av), toFloat(bv))
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// indirect dereferences non-nil pointers.
func indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv.Interface()
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isNumber(v reflect.Value) bool {
	return isInt(v) || isUint(v) || v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isInt(v):
		return float64(v.Int())
	case isUint(v):
		return float64(v.Uint())
	}
	return v.Float()
}

func compareOrdered[N int64 | uint64](a, b N) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// compareTimes compares two time.Time values
func compareTimes(a, b time.Time) int {
	if a.Before(b) {
		return -1
	}
	if a.After(b) {
		return 1
	}
	return 0
}

// compareDurations compares two time.Duration values
func compareDurations(a, b time.Duration) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// compareBools compares two bool values (false < true)
func compareBools(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

// compareFloat64s compares two float64 values with NaN handling.
// NaN values are considered greater than all other values (sort to end).
func compareFloat64s(a, b float64) int {
	aNaN := math.IsNaN(a)
	bNaN := math.IsNaN(b)

	if aNaN && bNaN {
		return 0
	}
	if aNaN {
		return 1
	}
	if bNaN {
		return -1
	}

	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// compareMissing orders missing values after present ones.
func compareMissing(aNil, bNil bool) int {
	if aNil && bNil {
		return 0
	}
	if aNil {
		return 1
	}
	return -1
}
