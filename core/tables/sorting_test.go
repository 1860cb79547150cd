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
	"slices"
	"testing"

	"github.com/google/tabula/core/columns"
)

type amountRow struct {
	name   string
	amount int
}

var amountFields = columns.Fields[amountRow]{
	"name":   func(r amountRow) any { return r.name },
	"amount": func(r amountRow) any { return r.amount },
}

func names(rows []amountRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.name
	}
	return out
}

func amounts(rows []amountRow) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.amount
	}
	return out
}

func TestSortAscendingThenDescending(t *testing.T) {
	rows := []amountRow{{"a", 10}, {"b", 30}, {"c", 20}}
	s := NewSorter(false)

	s.Toggle("amount", "amount")
	asc := slices.Clone(rows)
	SortRows(asc, s.Keys(), amountFields)
	if got, want := amounts(asc), []int{10, 20, 30}; !slices.Equal(got, want) {
		t.Errorf("ascending = %v, want %v", got, want)
	}

	s.Toggle("amount", "amount")
	desc := slices.Clone(rows)
	SortRows(desc, s.Keys(), amountFields)
	if got, want := amounts(desc), []int{30, 20, 10}; !slices.Equal(got, want) {
		t.Errorf("descending = %v, want %v", got, want)
	}
}

func TestToggleCycle(t *testing.T) {
	s := NewSorter(false)
	want := []Direction{Ascending, Descending, Unsorted, Ascending}
	for i, w := range want {
		s.Toggle("amount", "amount")
		if got, _ := s.Direction("amount"); got != w {
			t.Errorf("after %d toggles direction = %v, want %v", i+1, got, w)
		}
	}
}

func TestThreeTogglesRestoreOriginalOrder(t *testing.T) {
	rows := []amountRow{{"a", 3}, {"b", 1}, {"c", 2}, {"d", 1}}
	s := NewSorter(false)
	for range 3 {
		s.Toggle("amount", "amount")
	}
	got := slices.Clone(rows)
	SortRows(got, s.Keys(), amountFields)
	if !slices.Equal(names(got), names(rows)) {
		t.Errorf("order = %v, want original %v", names(got), names(rows))
	}
}

func TestSortIdempotent(t *testing.T) {
	rows := []amountRow{{"a", 5}, {"b", 1}, {"c", 5}, {"d", 3}, {"e", 1}}
	keys := []SortKey{{Column: "amount", Field: "amount", Direction: Descending}}

	once := slices.Clone(rows)
	SortRows(once, keys, amountFields)
	twice := slices.Clone(once)
	SortRows(twice, keys, amountFields)

	if !slices.Equal(names(once), names(twice)) {
		t.Errorf("sorting twice = %v, once = %v", names(twice), names(once))
	}
}

func TestSortStable(t *testing.T) {
	rows := []amountRow{{"a", 2}, {"b", 1}, {"c", 2}, {"d", 1}, {"e", 2}}
	for _, dir := range []Direction{Ascending, Descending} {
		got := slices.Clone(rows)
		SortRows(got, []SortKey{{Column: "amount", Field: "amount", Direction: dir}}, amountFields)
		var ones, twos []string
		for _, r := range got {
			if r.amount == 1 {
				ones = append(ones, r.name)
			} else {
				twos = append(twos, r.name)
			}
		}
		if !slices.Equal(ones, []string{"b", "d"}) || !slices.Equal(twos, []string{"a", "c", "e"}) {
			t.Errorf("%v: ties reordered: %v", dir, names(got))
		}
	}
}

func TestMultiSortTieBreak(t *testing.T) {
	rows := []amountRow{{"b", 1}, {"a", 2}, {"c", 1}, {"a", 1}}
	s := NewSorter(true)
	s.Toggle("name", "name")
	s.Toggle("amount", "amount")
	s.Toggle("amount", "amount") // descending, keeps priority 2

	if _, prio := s.Direction("amount"); prio != 2 {
		t.Errorf("amount priority = %d, want 2", prio)
	}
	got := slices.Clone(rows)
	SortRows(got, s.Keys(), amountFields)
	want := []amountRow{{"a", 2}, {"a", 1}, {"b", 1}, {"c", 1}}
	if !slices.Equal(got, want) {
		t.Errorf("multi sort = %v, want %v", got, want)
	}
}

func TestSingleSortReplaces(t *testing.T) {
	s := NewSorter(false)
	s.Toggle("name", "name")
	s.Toggle("amount", "amount")
	keys := s.Keys()
	if len(keys) != 1 || keys[0].Column != "amount" {
		t.Errorf("keys = %v, want only amount", keys)
	}
}

func TestComparatorIgnoresUnknownFields(t *testing.T) {
	cmp := Comparator([]SortKey{{Column: "x", Field: "missing", Direction: Ascending}}, amountFields)
	if got := cmp(amountRow{"a", 1}, amountRow{"b", 2}); got != 0 {
		t.Errorf("cmp = %d, want 0", got)
	}
}

func TestMissingValuesSortLast(t *testing.T) {
	fields := columns.Fields[*string]{"v": func(r *string) any { return r }}
	a, b := "a", "b"
	rows := []*string{&b, nil, &a}
	order := func(dir Direction) []string {
		got := slices.Clone(rows)
		SortRows(got, []SortKey{{Column: "v", Field: "v", Direction: dir}}, fields)
		out := make([]string, len(got))
		for i, r := range got {
			out[i] = "nil"
			if r != nil {
				out[i] = *r
			}
		}
		return out
	}
	if got, want := order(Ascending), []string{"a", "b", "nil"}; !slices.Equal(got, want) {
		t.Errorf("ascending = %v, want %v", got, want)
	}
	if got, want := order(Descending), []string{"b", "a", "nil"}; !slices.Equal(got, want) {
		t.Errorf("descending = %v, want %v", got, want)
	}
}

func TestDirectionText(t *testing.T) {
	for _, d := range []Direction{Unsorted, Ascending, Descending} {
		b, err := d.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got Direction
		if err := got.UnmarshalText(b); err != nil {
			t.Fatal(err)
		}
		if got != d {
			t.Errorf("round trip of %v = %v", d, got)
		}
	}
	var d Direction
	if err := d.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("UnmarshalText(sideways) succeeded, want error")
	}
}
