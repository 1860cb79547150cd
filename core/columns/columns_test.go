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
	"math"
	"testing"
	"time"

	"github.com/google/tabula/core/cells"
)

type invoice struct {
	Number string
	Amount float64
}

func TestValidate(t *testing.T) {
	number := func(i invoice) any { return i.Number }
	amount := func(i invoice) any { return i.Amount }

	fields, err := Validate([]Descriptor[invoice]{
		{ID: "number", Accessor: number, Sortable: true},
		{ID: "total", Accessor: amount, Sortable: true, SortField: "amount_cents"},
		{ID: "actions", Cell: cells.Text[invoice]()},
	}, Fields[invoice]{"amount_cents": func(i invoice) any { return int(i.Amount * 100) }})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	for _, f := range []string{"number", "total", "amount_cents"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("field %q not resolved", f)
		}
	}
	if _, ok := fields["actions"]; ok {
		t.Error("column without accessor resolved as a field")
	}

	bad := [][]Descriptor[invoice]{
		{{Accessor: number}},
		{{ID: "n", Accessor: number}, {ID: "n", Accessor: amount}},
		{{ID: "a=b", Accessor: number}},
		{{ID: "actions", Cell: cells.Text[invoice](), Sortable: true}},
		{{ID: "x"}},
	}
	for i, descs := range bad {
		if _, err := Validate(descs, nil); !errors.Is(err, ErrInvalidColumn) {
			t.Errorf("case %d: Validate() error = %v, want ErrInvalidColumn", i, err)
		}
	}
}

func TestDescriptorRender(t *testing.T) {
	d := Descriptor[invoice]{ID: "number", Accessor: func(i invoice) any { return i.Number }}
	if got := d.Render(invoice{Number: "INV-7"}).Text; got != "INV-7" {
		t.Errorf("Render() = %q, want INV-7", got)
	}
	if got := d.RenderHeader().Text; got != "number" {
		t.Errorf("RenderHeader() = %q, want number", got)
	}
	d.Header = "No."
	if got := d.RenderHeader().Text; got != "No." {
		t.Errorf("RenderHeader() = %q, want No.", got)
	}
	if got := (Descriptor[invoice]{ID: "x", Cell: cells.Text[invoice]()}).Render(invoice{}).Text; got != cells.Placeholder {
		t.Errorf("Render() without accessor = %q, want placeholder", got)
	}
}

type weekday int

func TestCompare(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	var nilPtr *int
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"ints", 10, 30, -1},
		{"mixed ints", int64(5), int32(5), 0},
		{"int and float", 2, 1.5, 1},
		{"large uints", uint64(math.MaxUint64), uint64(math.MaxUint64 - 1), 1},
		{"floats", 1.5, 1.25, 1},
		{"nan last", math.NaN(), 1.0, 1},
		{"strings", "apple", "banana", -1},
		{"bools", false, true, -1},
		{"times", late, early, 1},
		{"durations", time.Second, time.Minute, -1},
		{"pointers", ptr(3), ptr(2), 1},
		{"named int", weekday(2), weekday(5), -1},
		{"nil last", nil, 0, 1},
		{"nil pointer last", 5, nilPtr, -1},
		{"both nil", nil, nilPtr, 0},
		{"mismatched kinds", "10", 9, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
