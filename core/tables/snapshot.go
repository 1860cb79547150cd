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
	"reflect"
	"strconv"
	"time"
)

// Filter kinds that survive a snapshot.
const (
	FilterContains = "contains"
	FilterMatch    = "match"
	FilterRange    = "range"
	FilterEquals   = "equals"
)

// Types of a FilterValue.
const (
	ValueString = "string"
	ValueNumber = "number"
	ValueBool   = "bool"
	ValueTime   = "time"
)

// FilterValue is a typed filter operand. Numbers come back as float64 and
// times as RFC 3339 timestamps.
type FilterValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// FilterSnapshot is the serializable form of a filter. Value holds the text
// of contains and match filters, Equal the operand of equality filters and
// From/To the bounds of ranges.
type FilterSnapshot struct {
	Field string       `json:"field"`
	Kind  string       `json:"kind"`
	Value string       `json:"value,omitempty"`
	Equal *FilterValue `json:"equal,omitempty"`
	From  *FilterValue `json:"from,omitempty"`
	To    *FilterValue `json:"to,omitempty"`
}

// Snapshot is the serializable view state of a table: sort, filters and page
// window. Selection and data are not part of it.
type Snapshot struct {
	Sort      []SortKey        `json:"sort,omitempty"`
	Filters   []FilterSnapshot `json:"filters,omitempty"`
	PageIndex int              `json:"page"`
	PageSize  int              `json:"size"`
}

// Snapshot captures the view state. Predicates and operands other than
// strings, numbers, booleans and times cannot be serialized and are left out.
func (e *Engine[T]) Snapshot() Snapshot {
	p := e.pager.State()
	s := Snapshot{Sort: e.sorter.Keys(), PageIndex: p.PageIndex, PageSize: p.PageSize}
	for _, f := range e.filters.List() {
		if fs, ok := snapshotFilter(f); ok {
			s.Filters = append(s.Filters, fs)
		} else {
			e.log.Debug().Str("field", f.Field).Msgf("filter of type %T is not persisted", f.Value)
		}
	}
	return s
}

func snapshotFilter(f Filter) (FilterSnapshot, bool) {
	fs := FilterSnapshot{Field: f.Field}
	switch v := f.Value.(type) {
	case string:
		fs.Kind, fs.Value = FilterContains, v
	case Match:
		fs.Kind, fs.Value = FilterMatch, string(v)
	case Range:
		fs.Kind = FilterRange
		var ok bool
		if fs.From, ok = encodeValue(v.From); !ok {
			return fs, false
		}
		if fs.To, ok = encodeValue(v.To); !ok {
			return fs, false
		}
	case Predicate, func(any) bool:
		return fs, false
	default:
		fv, ok := encodeValue(v)
		if !ok || fv == nil {
			return fs, false
		}
		fs.Kind, fs.Equal = FilterEquals, fv
	}
	return fs, true
}

// encodeValue returns nil for a nil operand.
func encodeValue(v any) (*FilterValue, bool) {
	if v == nil {
		return nil, true
	}
	switch x := v.(type) {
	case string:
		return &FilterValue{Type: ValueString, Value: x}, true
	case bool:
		return &FilterValue{Type: ValueBool, Value: strconv.FormatBool(x)}, true
	case time.Time:
		return &FilterValue{Type: ValueTime, Value: x.Format(time.RFC3339Nano)}, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &FilterValue{Type: ValueNumber, Value: strconv.FormatInt(rv.Int(), 10)}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &FilterValue{Type: ValueNumber, Value: strconv.FormatUint(rv.Uint(), 10)}, true
	case reflect.Float32, reflect.Float64:
		return &FilterValue{Type: ValueNumber, Value: strconv.FormatFloat(rv.Float(), 'g', -1, 64)}, true
	}
	return nil, false
}

func decodeValue(fv *FilterValue) (any, error) {
	if fv == nil {
		return nil, nil
	}
	switch fv.Type {
	case ValueString:
		return fv.Value, nil
	case ValueBool:
		return strconv.ParseBool(fv.Value)
	case ValueNumber:
		return strconv.ParseFloat(fv.Value, 64)
	case ValueTime:
		return time.Parse(time.RFC3339Nano, fv.Value)
	}
	return nil, fmt.Errorf("unknown filter value type %q", fv.Type)
}

func restoreFilter(f FilterSnapshot) (any, error) {
	switch f.Kind {
	case FilterContains:
		return f.Value, nil
	case FilterMatch:
		return Match(f.Value), nil
	case FilterEquals:
		if f.Equal == nil {
			return nil, fmt.Errorf("equality filter on %q has no operand", f.Field)
		}
		return decodeValue(f.Equal)
	case FilterRange:
		from, err := decodeValue(f.From)
		if err != nil {
			return nil, err
		}
		to, err := decodeValue(f.To)
		if err != nil {
			return nil, err
		}
		return Range{From: from, To: to}, nil
	}
	return nil, fmt.Errorf("unknown filter kind %q for field %q", f.Kind, f.Field)
}

// Restore replaces the view state with s. Nothing is changed when s refers
// to unknown columns or fields. No callbacks are fired. The page index is
// clamped once data is supplied.
func (e *Engine[T]) Restore(s Snapshot) error {
	keys := make([]SortKey, 0, len(s.Sort))
	for _, k := range s.Sort {
		col, ok := e.sortable(k.Column)
		if !ok {
			return fmt.Errorf("%w: %q is not a sortable column", ErrUnknownColumn, k.Column)
		}
		keys = append(keys, SortKey{Column: col.ID, Field: col.SortKey(), Direction: k.Direction})
	}
	if !e.cfg.MultiSort && len(keys) > 1 {
		keys = keys[:1]
	}
	var filters Filters
	for _, f := range s.Filters {
		if !e.HasField(f.Field) {
			return fmt.Errorf("%w: %q", ErrUnknownField, f.Field)
		}
		v, err := restoreFilter(f)
		if err != nil {
			return err
		}
		filters.Set(f.Field, v)
	}
	size := s.PageSize
	if size <= 0 {
		size = e.pager.State().PageSize
	}

	e.sorter.Set(keys)
	e.filters = filters
	e.pager.restore(max(s.PageIndex, 0), size)
	if e.loaded {
		e.refresh()
	}
	return nil
}
