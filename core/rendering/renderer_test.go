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

package rendering

import (
	"strings"
	"testing"

	"github.com/google/safehtml"

	"github.com/google/tabula/core/views"
)

func newRenderer(t *testing.T) *TableRenderer {
	t.Helper()
	r, err := NewTableRenderer()
	if err != nil {
		t.Fatalf("NewTableRenderer() error = %v", err)
	}
	return r
}

func TestRender(t *testing.T) {
	vm := views.TableViewModel{
		Title:      "Contracts <beta>",
		Table:      "contracts",
		ColumnSpan: 2,
		Headers: []views.HeaderViewModel{
			{ID: "client", Label: safehtml.HTMLEscaped("Client"), Sortable: true, SortURL: safehtml.URLSanitized("/table?sort=client&table=contracts"), Indicator: "▲", Priority: 2, Width: 120},
		},
		Rows: []views.RowViewModel{
			{ID: "C-1", Selected: true, ToggleURL: safehtml.URLSanitized("/table?select=C-1"), ActivateURL: safehtml.URLSanitized("/table/row?id=C-1"),
				Cells: []views.CellViewModel{{HTML: safehtml.HTMLEscaped("Acme & Co")}}},
		},
		Toolbar: views.ToolbarViewModel{IsSelection: true, Count: 1, Actions: []views.ActionLink{
			{Name: "archive", Label: "Archive", URL: safehtml.URLSanitized("/table/bulk?action=archive")},
		}},
		Selection:  views.SelectionViewModel{Enabled: true, Indeterminate: true},
		Pagination: views.PaginationViewModel{Page: 1, TotalPages: 3, TotalCount: 25, From: 1, To: 10, HasNext: true},
		Filters:    []views.FilterViewModel{{Label: "Client", Value: "<script>"}},
		FilterForm: views.FilterForm{Action: safehtml.URLSanitized("/table"), Table: "contracts"},
	}
	var sb strings.Builder
	if err := newRenderer(t).Render(&sb, vm); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		"Contracts &lt;beta&gt;",
		`<th width="120">`,
		"<sup>2</sup>",
		`<tr class="selected">`,
		"Acme &amp; Co",
		"1 selected",
		`action="/table/bulk?action=archive"`,
		"Page 1 of 3",
		"&lt;script&gt;",
		`<input type="hidden" name="table" value="contracts">`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() output missing %q", want)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	var sb strings.Builder
	vm := views.TableViewModel{Title: "Empty", IsEmpty: true, ColumnSpan: 1, Pagination: views.PaginationViewModel{Page: 1, TotalPages: 1}}
	if err := newRenderer(t).Render(&sb, vm); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(sb.String(), "No records found.") {
		t.Error("empty table should say so")
	}
}

func TestRenderLanding(t *testing.T) {
	vm := views.LandingViewModel{
		Title: "Tabula",
		Users: []views.UserLink{{Name: "admin", Current: true}, {Name: "viewer", URL: safehtml.URLSanitized("/?user=viewer")}},
		Tables: []views.TableInfo{
			{Name: "Contracts", URL: safehtml.URLSanitized("/table?table=contracts"), ColumnCount: 6, Mode: "server"},
		},
	}
	var sb strings.Builder
	if err := newRenderer(t).RenderLanding(&sb, vm); err != nil {
		t.Fatalf("RenderLanding() error = %v", err)
	}
	out := sb.String()
	for _, want := range []string{`href="/table?table=contracts"`, "<strong>admin</strong>", "6 columns | server-side paging"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderLanding() output missing %q", want)
		}
	}
}

func TestRenderRow(t *testing.T) {
	vm := views.DetailViewModel{
		Title:   "Contract",
		RowID:   "C-1",
		BackURL: safehtml.URLSanitized("/table?table=contracts"),
		Fields:  []views.DetailField{{Label: "Client", Value: safehtml.HTMLEscaped("Acme")}},
	}
	var sb strings.Builder
	if err := newRenderer(t).RenderRow(&sb, vm); err != nil {
		t.Fatalf("RenderRow() error = %v", err)
	}
	if !strings.Contains(sb.String(), "<dt>Client</dt><dd>Acme</dd>") {
		t.Errorf("RenderRow() output = %s", sb.String())
	}
}
