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

package models

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/tabula/core/tables"
)

func TestParseFilter(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"  acme ", "acme"},
		{"100..500", tables.Range{From: 100.0, To: 500.0}},
		{"..500", tables.Range{To: 500.0}},
		{"2024-01-01..2024-03-31", tables.Range{From: day("2024-01-01"), To: day("2024-03-31")}},
		{"2024-01-01..", tables.Range{From: day("2024-01-01")}},
		{"a..m", tables.Range{From: "a", To: "m"}},
		{`"OPEN"`, tables.Match(`"OPEN"`)},
		{"'late'", tables.Match("'late'")},
		{"!CLOSED", tables.Match("!CLOSED")},
		{"OPEN|LATE", tables.Match("OPEN|LATE")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFilter(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFilter(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
