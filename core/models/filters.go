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
	"strconv"
	"strings"

	"github.com/google/tabula/core/cells"
	"github.com/google/tabula/core/tables"
)

// rangeSeparator splits the bounds of a range filter, as in 10..20.
const rangeSeparator = ".."

// ParseFilter turns a filter value typed into the filter form into an engine
// filter value:
//
//	2024-01-01..2024-03-31  date range, either bound may be left out
//	100..500                numeric range
//	"OPEN"|'late'           match expression
//	acme                    contains
func ParseFilter(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if from, to, ok := strings.Cut(s, rangeSeparator); ok {
		return tables.Range{From: parseBound(from), To: parseBound(to)}
	}
	if strings.ContainsAny(s[:1], `"'!`) || strings.ContainsAny(s, "|&") {
		return tables.Match(s)
	}
	return s
}

func parseBound(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, ok := cells.ParseTime(s); ok {
		return t
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
