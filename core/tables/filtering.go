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
	"strings"
	"time"

	"github.com/google/tabula/core/cells"
	"github.com/google/tabula/core/columns"
)

// Filter is one active filter.
type Filter struct {
	Field string
	Value any
}

// Range matches values between From and To, both inclusive. A nil bound is open.
// A To date at midnight covers the whole day.
type Range struct {
	From any
	To   any
}

// Match is a filter expression.
//
// Syntax: double quotes mean exact match, single quotes mean contains, a bare
// string is an exact match. ! negates a term, & and | combine terms with &
// binding tighter than |. Parentheses are not supported.
//
// Examples:
//
//	"CLOSED"        exact match
//	'CLOSED'        contains
//	CLOSED          exact match
//	"CLOSED"|"OPEN" exact match CLOSED or OPEN
type Match string

// Predicate is a caller supplied test of a field value.
type Predicate func(value any) bool

// Filters holds the filter state of one table, one filter per field.
type Filters struct {
	list []Filter
}

// Set sets the filter of field, replacing any previous one. Setting an empty
// string clears it.
func (f *Filters) Set(field string, value any) {
	if isEmptyFilter(value) {
		f.Clear(field)
		return
	}
	for i := range f.list {
		if f.list[i].Field == field {
			f.list[i].Value = value
			return
		}
	}
	f.list = append(f.list, Filter{Field: field, Value: value})
}

// Clear removes the filter of field. It reports whether one was set.
func (f *Filters) Clear(field string) bool {
	n := len(f.list)
	f.list = slices.DeleteFunc(f.list, func(x Filter) bool { return x.Field == field })
	return len(f.list) != n
}

// ClearAll removes every filter.
func (f *Filters) ClearAll() {
	f.list = nil
}

// Get returns the filter value of field.
func (f *Filters) Get(field string) (any, bool) {
	for _, x := range f.list {
		if x.Field == field {
			return x.Value, true
		}
	}
	return nil, false
}

// List returns the active filters in the order they were first set.
func (f *Filters) List() []Filter {
	return slices.Clone(f.list)
}

// Len returns the number of active filters.
func (f *Filters) Len() int {
	return len(f.list)
}

func isEmptyFilter(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case Match:
		return strings.TrimSpace(string(v)) == ""
	case Predicate:
		return v == nil
	case Range:
		return v.From == nil && v.To == nil
	}
	return false
}

// Matcher returns an inclusion test for rows: a row passes when it satisfies
// every filter. Filters on fields missing from fields are ignored.
func Matcher[T any](filters []Filter, fields columns.Fields[T]) func(row T) bool {
	type resolved struct {
		accessor columns.Accessor[T]
		test     Predicate
	}
	active := make([]resolved, 0, len(filters))
	for _, f := range filters {
		accessor, ok := fields[f.Field]
		if !ok {
			continue
		}
		active = append(active, resolved{accessor, valueTest(f.Value)})
	}
	return func(row T) bool {
		for _, r := range active {
			if !r.test(r.accessor(row)) {
				return false
			}
		}
		return true
	}
}

// FilterRows returns the rows passing every filter. The input is not modified.
func FilterRows[T any](rows []T, filters []Filter, fields columns.Fields[T]) []T {
	if len(filters) == 0 {
		return slices.Clone(rows)
	}
	matches := Matcher(filters, fields)
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if matches(row) {
			out = append(out, row)
		}
	}
	return out
}

func valueTest(filter any) Predicate {
	switch f := filter.(type) {
	case string:
		needle := strings.ToLower(f)
		return func(v any) bool {
			if cells.IsNil(v) {
				return false
			}
			return strings.Contains(strings.ToLower(valueString(v)), needle)
		}
	case Match:
		return func(v any) bool {
			if cells.IsNil(v) {
				return MatchExpression(string(f), "")
			}
			return MatchExpression(string(f), valueString(v))
		}
	case Predicate:
		return f
	case func(any) bool:
		return f
	case Range:
		return rangeTest(f)
	}
	return func(v any) bool {
		return !cells.IsNil(v) && columns.Compare(v, filter) == 0
	}
}

func rangeTest(r Range) Predicate {
	from, to := rangeBound(r.From), rangeBound(r.To)
	if t, ok := to.(time.Time); ok && isMidnight(t) {
		to = t.Add(24*time.Hour - time.Nanosecond)
	}
	dates := isTime(from) || isTime(to)
	return func(v any) bool {
		if cells.IsNil(v) {
			return false
		}
		if dates {
			if t, ok := cells.AsTime(v); ok {
				v = t
			}
		}
		if from != nil && columns.Compare(v, from) < 0 {
			return false
		}
		if to != nil && columns.Compare(v, to) > 0 {
			return false
		}
		return true
	}
}

// rangeBound normalizes a bound: missing values become nil and date strings
// become times.
func rangeBound(v any) any {
	if cells.IsNil(v) {
		return nil
	}
	switch b := v.(type) {
	case string:
		if t, ok := cells.ParseTime(b); ok {
			return t
		}
	case *time.Time:
		return *b
	}
	return v
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

func isTime(v any) bool {
	_, ok := v.(time.Time)
	return ok
}

func valueString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case *string:
		return *x
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// MatchExpression evaluates a Match expression against value.
func MatchExpression(filter string, value string) bool {
	orMatch := false
	for _, or := range strings.Split(filter, "|") {
		andMatch := true
		for _, and := range strings.Split(or, "&") {
			andMatch = andMatch && matchTerm(strings.TrimSpace(and), value)
		}
		orMatch = orMatch || andMatch
	}
	return orMatch
}

func matchTerm(term, value string) bool {
	not := false
	if strings.HasPrefix(term, "!") {
		not = true
		term = strings.TrimSpace(term[1:])
	}
	match := false
	switch {
	case quoted(term, '"'):
		match = value == term[1:len(term)-1]
	case quoted(term, '\''):
		match = strings.Contains(value, term[1:len(term)-1])
	case term != "":
		match = value == term
	}
	if not {
		match = !match
	}
	return match
}

func quoted(term string, q byte) bool {
	return len(term) >= 2 && term[0] == q && term[len(term)-1] == q
}
