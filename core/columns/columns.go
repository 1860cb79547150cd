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
	"errors"
	"fmt"
	"strings"

	"github.com/google/tabula/core/cells"
)

// ErrInvalidColumn is returned when a column descriptor is malformed.
var ErrInvalidColumn = errors.New("invalid column descriptor")

// reservedChars may not appear in ids or field names since they are encoded in URLs.
const reservedChars = "&=:,"

// Accessor extracts a value from a row.
type Accessor[T any] func(row T) any

// Fields maps addressable field names to accessors.
type Fields[T any] map[string]Accessor[T]

// Descriptor defines one displayable column of rows of type T.
type Descriptor[T any] struct {
	ID         string // must not contain any of the following characters: & = : ,
	Header     string
	HeaderCell func() cells.Cell // optional, overrides Header
	Accessor   Accessor[T]
	Cell       cells.Renderer[T] // defaults to cells.Text
	Sortable   bool
	SortField  string // sort by this field instead of the column's own value
	Width      int    // optional; layout only
}

// SortKey returns the field the column sorts by.
func (d Descriptor[T]) SortKey() string {
	if d.SortField != "" {
		return d.SortField
	}
	return d.ID
}

// Value returns the column's raw value for row, or nil without an accessor.
func (d Descriptor[T]) Value(row T) any {
	if d.Accessor == nil {
		return nil
	}
	return d.Accessor(row)
}

// Render renders the column's cell for row.
func (d Descriptor[T]) Render(row T) cells.Cell {
	render := d.Cell
	if render == nil {
		render = cells.Text[T]()
	}
	return render(d.Value(row), row)
}

// RenderHeader renders the header label.
func (d Descriptor[T]) RenderHeader() cells.Cell {
	if d.HeaderCell != nil {
		return d.HeaderCell()
	}
	if d.Header == "" {
		return cells.TextCell(d.ID)
	}
	return cells.TextCell(d.Header)
}

// Validate checks descriptors and returns the resolved addressable fields:
// every column with an accessor plus extra. It fails on a missing or
// duplicate id, a column with neither accessor nor cell renderer, and a
// sortable column whose sort key does not resolve.
func Validate[T any](descs []Descriptor[T], extra Fields[T]) (Fields[T], error) {
	fields := make(Fields[T], len(descs)+len(extra))
	for name, accessor := range extra {
		if err := checkName(name); err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidColumn, name, err)
		}
		if accessor == nil {
			return nil, fmt.Errorf("%w: field %q has no accessor", ErrInvalidColumn, name)
		}
		fields[name] = accessor
	}

	seen := make(map[string]bool, len(descs))
	for i, d := range descs {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: column %d has no id", ErrInvalidColumn, i)
		}
		if err := checkName(d.ID); err != nil {
			return nil, fmt.Errorf("%w: column %q: %v", ErrInvalidColumn, d.ID, err)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("%w: duplicate column id %q", ErrInvalidColumn, d.ID)
		}
		seen[d.ID] = true
		if d.Accessor == nil && d.Cell == nil {
			return nil, fmt.Errorf("%w: column %q has neither accessor nor cell renderer", ErrInvalidColumn, d.ID)
		}
		if d.Accessor != nil {
			fields[d.ID] = d.Accessor
		}
	}

	for _, d := range descs {
		if !d.Sortable {
			continue
		}
		if _, ok := fields[d.SortKey()]; !ok {
			return nil, fmt.Errorf("%w: sortable column %q has no resolvable sort field %q", ErrInvalidColumn, d.ID, d.SortKey())
		}
	}
	return fields, nil
}

func checkName(name string) error {
	if name == "" {
		return errors.New("empty name")
	}
	if strings.ContainsAny(name, reservedChars) {
		return fmt.Errorf("name contains one of %q", reservedChars)
	}
	return nil
}
