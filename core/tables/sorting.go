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

package tables

import (
	"fmt"
	"slices"

	"github.com/google/tabula/core/cells"
	"github.com/google/tabula/core/columns"
)

// Direction is the sort direction of one column.
type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	}
	return "none"
}

// MarshalText encodes the direction as "asc" or "desc".
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes "asc", "desc" or "none".
func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "asc":
		*d = Ascending
	case "desc":
		*d = Descending
	case "none", "":
		*d = Unsorted
	default:
		return fmt.Errorf("unknown sort direction %q", b)
	}
	return nil
}

// SortKey is one entry of the sort state.
type SortKey struct {
	Column    string    `json:"column"`
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Sorter holds the ordered sort keys of one table. Earlier keys take
// precedence; later keys only break ties.
type Sorter struct {
	keys  []SortKey
	multi bool
}

// NewSorter returns an empty sorter. With multi set, toggling a new column
// appends it as a tie-breaker instead of replacing the current sort.
func NewSorter(multi bool) *Sorter {
	return &Sorter{multi: multi}
}

// Keys returns a copy of the active sort keys in priority order.
func (s *Sorter) Keys() []SortKey {
	return slices.Clone(s.keys)
}

// Set replaces the sort state. Unsorted keys are dropped.
func (s *Sorter) Set(keys []SortKey) {
	s.keys = s.keys[:0]
	for _, k := range keys {
		if k.Direction != Unsorted {
			s.keys = append(s.keys, k)
		}
	}
}

// Clear removes every sort key.
func (s *Sorter) Clear() {
	s.keys = nil
}

// Direction returns the direction of column and its 1-based priority, or
// Unsorted and 0.
func (s *Sorter) Direction(column string) (Direction, int) {
	for i, k := range s.keys {
		if k.Column == column {
			return k.Direction, i + 1
		}
	}
	return Unsorted, 0
}

// Toggle cycles column through ascending, descending and unsorted.
func (s *Sorter) Toggle(column, field string) {
	i := slices.IndexFunc(s.keys, func(k SortKey) bool { return k.Column == column })
	if i < 0 {
		key := SortKey{Column: column, Field: field, Direction: Ascending}
		if s.multi {
			s.keys = append(s.keys, key)
		} else {
			s.keys = []SortKey{key}
		}
		return
	}
	if s.keys[i].Direction == Ascending {
		s.keys[i].Direction = Descending
		if !s.multi {
			s.keys = s.keys[i : i+1]
		}
		return
	}
	s.keys = slices.Delete(s.keys, i, i+1)
	if !s.multi {
		s.keys = nil
	}
}

// Comparator returns a compare function for rows applying the sort keys in
// order. Keys whose field is missing from fields are ignored. Missing values
// sort last in both directions.
func Comparator[T any](keys []SortKey, fields columns.Fields[T]) func(a, b T) int {
	type resolved struct {
		accessor   columns.Accessor[T]
		descending bool
	}
	active := make([]resolved, 0, len(keys))
	for _, k := range keys {
		accessor, ok := fields[k.Field]
		if !ok || k.Direction == Unsorted {
			continue
		}
		active = append(active, resolved{accessor, k.Direction == Descending})
	}
	return func(a, b T) int {
		for _, r := range active {
			va, vb := r.accessor(a), r.accessor(b)
			aNil, bNil := cells.IsNil(va), cells.IsNil(vb)
			switch {
			case aNil && bNil:
				continue
			case aNil:
				return 1
			case bNil:
				return -1
			}
			cmp := columns.Compare(va, vb)
			if cmp == 0 {
				continue
			}
			if r.descending {
				return -cmp
			}
			return cmp
		}
		return 0
	}
}

// SortRows stably sorts rows in place.
func SortRows[T any](rows []T, keys []SortKey, fields columns.Fields[T]) {
	if len(keys) == 0 || len(rows) < 2 {
		return
	}
	slices.SortStableFunc(rows, Comparator(keys, fields))
}
