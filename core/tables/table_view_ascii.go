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
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// sortIndicators are appended to the labels of sorted headers.
var sortIndicators = map[Direction]string{
	Ascending:  " ▲",
	Descending: " ▼",
}

// ToASCII renders the current page as a text grid followed by a status line.
func (e *Engine[T]) ToASCII() (string, error) {
	return e.Render().ToASCII()
}

// ToASCII renders the view as a text grid followed by a status line.
func (v View[T]) ToASCII() (string, error) {
	var sb strings.Builder
	table := tablewriter.NewTable(&sb,
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)

	header := make([]string, len(v.Headers))
	for i, h := range v.Headers {
		label := h.Label.String()
		if ind, ok := sortIndicators[h.Direction]; ok {
			label += ind
			if h.Priority > 1 {
				label += fmt.Sprint(h.Priority)
			}
		}
		header[i] = label
	}
	table.Header(header)

	if v.Status == StatusPopulated {
		for _, r := range v.Rows {
			line := make([]string, len(r.Cells))
			for i, c := range r.Cells {
				line[i] = c.String()
			}
			if err := table.Append(line); err != nil {
				return "", err
			}
		}
	}
	if err := table.Render(); err != nil {
		return "", err
	}

	switch v.Status {
	case StatusLoading:
		sb.WriteString("loading...\n")
	case StatusEmpty, StatusIdle:
		sb.WriteString("no data\n")
	default:
		p := v.Pagination
		start, end := p.Bounds()
		fmt.Fprintf(&sb, "page %d/%d, rows %d-%d of %d", p.PageIndex+1, p.TotalPages(), start+1, end, p.TotalCount)
		if v.Selection.Count > 0 {
			fmt.Fprintf(&sb, ", %d selected", v.Selection.Count)
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
