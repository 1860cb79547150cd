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

package views

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/tabula/core/cells"
	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/query"
	"github.com/google/tabula/core/tables"
)

type contract struct {
	ID     string
	Client string
	Amount float64
	Status string
}

func newEngine(t *testing.T, can cells.Capability) *tables.Engine[contract] {
	t.Helper()
	cols := []columns.Descriptor[contract]{
		{ID: "client", Header: "Client", Accessor: func(c contract) any { return c.Client }, Sortable: true},
		{ID: "amount", Header: "Amount", Accessor: func(c contract) any { return c.Amount }, Sortable: true, Cell: cells.Format[contract]("%.2f")},
		{ID: "status", Header: "Status", Accessor: func(c contract) any { return c.Status },
			Cell: cells.Status[contract](map[string]cells.StatusStyle{"open": {Label: "Open", Color: "green"}})},
		{ID: "actions", Header: "Actions", Cell: cells.ActionMenu[contract]([]cells.ActionDef{
			{Name: "view", Label: "View"},
			{Name: "delete", Label: "Delete", Permission: "contracts.delete"},
		}, can)},
	}
	e, err := tables.New(cols, tables.Config[contract]{
		RowID:             func(c contract) tables.RowID { return tables.RowID(c.ID) },
		PageSize:          2,
		MultiSort:         true,
		EnableBulkActions: true,
		BulkActions: []tables.BulkAction{
			{Name: "export", Label: "Export"},
			{Name: "archive", Label: "Archive", Permission: "contracts.archive"},
		},
		Capability: can,
	})
	require.NoError(t, err)
	e.SetData([]contract{
		{"C-1", "Acme", 100, "open"},
		{"C-2", "Globex", 250, "closed"},
		{"C-3", "Initech", 75, "open"},
	}, -1)
	return e
}

func newQuery(t *testing.T, raw string) *query.Query {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return query.NewQuery(u)
}

func TestBuildViewModel(t *testing.T) {
	e := newEngine(t, nil)
	e.ToggleSort("amount")
	e.ToggleSort("amount")
	e.ToggleSort("client")
	e.ToggleRow("C-2")

	q := newQuery(t, "/table?table=contracts&user=ana&columns=client,amount:90,actions")
	vm := BuildViewModel(e, q, Options{Title: "Contracts", PageSizes: []int{2, 10}})

	assert.Equal(t, "Contracts", vm.Title)
	assert.Equal(t, "populated", vm.Status)
	require.Len(t, vm.Headers, 3)
	assert.Equal(t, "client", vm.Headers[0].ID)
	assert.Equal(t, "▲", vm.Headers[0].Indicator)
	assert.Equal(t, 2, vm.Headers[0].Priority)
	assert.True(t, vm.Headers[0].ShowPriority())
	assert.Equal(t, "▼", vm.Headers[1].Indicator)
	assert.Equal(t, 90, vm.Headers[1].Width)
	assert.Empty(t, vm.Headers[2].SortURL.String())
	assert.Contains(t, vm.Headers[0].SortURL.String(), "sort=client")

	require.Len(t, vm.AllColumns, 4)
	assert.False(t, vm.AllColumns[2].IsVisible)
	assert.Contains(t, vm.AllColumns[2].ToggleColumnURL.String(), "status")

	require.Len(t, vm.Rows, 2)
	assert.Equal(t, "C-2", vm.Rows[0].ID)
	assert.True(t, vm.Rows[0].Selected)
	require.Len(t, vm.Rows[0].Cells, 3)
	assert.Equal(t, "250.00", vm.Rows[0].Cells[1].HTML.String())
	assert.Contains(t, vm.Rows[0].ActivateURL.String(), "/table/row?")

	actions := vm.Rows[0].Cells[2]
	require.True(t, actions.IsActions())
	require.Len(t, actions.Actions, 1)
	assert.Equal(t, "view", actions.Actions[0].Name)
	assert.Contains(t, actions.Actions[0].URL.String(), "action=view")

	assert.True(t, vm.Toolbar.IsSelection)
	assert.Equal(t, 1, vm.Toolbar.Count)
	require.Len(t, vm.Toolbar.Actions, 1)
	assert.Contains(t, vm.Toolbar.Actions[0].URL.String(), "/table/bulk?action=export")

	assert.True(t, vm.Selection.Enabled)
	assert.True(t, vm.Selection.Indeterminate)
	assert.False(t, vm.Selection.AllSelected)

	p := vm.Pagination
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 1, p.From)
	assert.Equal(t, 2, p.To)
	assert.True(t, p.HasNext)
	assert.Contains(t, p.NextURL.String(), "page=2")
	require.Len(t, p.Sizes, 2)
	assert.True(t, p.Sizes[0].Current)

	assert.Contains(t, vm.TextURL.String(), "format=text")
	assert.Equal(t, "/?user=ana", vm.HomeURL.String())
	assert.Equal(t, "client,amount:90,actions", vm.FilterForm.Columns)
	assert.Len(t, vm.FilterFields, 3)
}

func TestBuildViewModelFilters(t *testing.T) {
	e := newEngine(t, func(p string) bool { return true })
	require.NoError(t, e.SetFilter("status", "open"))
	require.NoError(t, e.SetFilter("amount", tables.Range{From: 50, To: 150}))
	e.ToggleAllVisible()

	vm := BuildViewModel(e, newQuery(t, "/table?table=contracts"), Options{})
	require.Len(t, vm.Filters, 2)
	assert.Equal(t, "Status", vm.Filters[0].Label)
	assert.Equal(t, "open", vm.Filters[0].Value)
	assert.Equal(t, "50 .. 150", vm.Filters[1].Value)
	assert.Contains(t, vm.Filters[0].ClearURL.String(), "filter%3Astatus=")

	assert.True(t, vm.Selection.AllSelected)
	assert.Len(t, vm.Toolbar.Actions, 2)
	assert.Len(t, vm.Rows[0].Cells[3].Actions, 2)
	assert.Equal(t, `<span class="badge badge-green">Open</span>`, vm.Rows[0].Cells[2].HTML.String())
}

func TestBuildViewModelEmpty(t *testing.T) {
	e := newEngine(t, nil)
	require.NoError(t, e.SetFilter("client", "nobody"))
	vm := BuildViewModel(e, newQuery(t, "/table?table=contracts"), Options{})
	assert.True(t, vm.IsEmpty)
	assert.Empty(t, vm.Rows)
	assert.Equal(t, 0, vm.Pagination.From)
	assert.Equal(t, 1, vm.Pagination.TotalPages)
	assert.False(t, vm.Toolbar.IsSelection)
}

func TestFilterText(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in   any
		want string
	}{
		{"acme", "acme"},
		{tables.Match(`"A"|"B"`), `"A"|"B"`},
		{tables.Range{From: day}, "2024-06-01 .. "},
		{tables.Predicate(func(any) bool { return true }), "(custom)"},
		{42, "42"},
	}
	for _, tt := range tests {
		if got := FilterText(tt.in); got != tt.want {
			t.Errorf("FilterText(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildDetailViewModel(t *testing.T) {
	e := newEngine(t, nil)
	q := newQuery(t, "/table/row?table=contracts&id=C-1&user=ana")
	vm := BuildDetailViewModel("Contract", "C-1", e.Columns(), contract{"C-1", "Acme", 100, "open"}, q)
	require.Len(t, vm.Fields, 3)
	assert.Equal(t, "Client", vm.Fields[0].Label)
	assert.Equal(t, "Acme", vm.Fields[0].Value.String())
	assert.True(t, strings.HasPrefix(vm.BackURL.String(), "/table?"))
	assert.NotContains(t, vm.BackURL.String(), "id=")
}
