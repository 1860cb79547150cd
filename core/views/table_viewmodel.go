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

// Package views turns engine output into template-ready view models.
package views

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/safehtml"

	"github.com/google/tabula/core/cells"
	"github.com/google/tabula/core/query"
	"github.com/google/tabula/core/tables"
)

// TableViewModel contains the data of one list screen formatted for
// template consumption.
type TableViewModel struct {
	Title       string
	Description string
	Table       string
	User        string
	Status      string
	IsLoading   bool
	IsEmpty     bool
	Error       string

	Headers    []HeaderViewModel
	ColumnSpan int // visible columns plus the selection column
	Rows       []RowViewModel
	AllColumns []ColumnInfo // All columns with their visibility

	Toolbar    ToolbarViewModel
	Selection  SelectionViewModel
	Pagination PaginationViewModel

	Filters      []FilterViewModel // Active filters
	FilterFields []FieldOption     // Fields offered by the filter form
	FilterForm   FilterForm

	CurrentURL safehtml.URL
	TextURL    safehtml.URL
	HomeURL    safehtml.URL
}

// HeaderViewModel is one column header.
type HeaderViewModel struct {
	ID        string
	Label     safehtml.HTML
	Sortable  bool
	SortURL   safehtml.URL
	Indicator string // ▲, ▼ or empty
	Priority  int    // shown when several columns are sorted
	Width     int
}

// ShowPriority is used by templates.
func (h HeaderViewModel) ShowPriority() bool { return h.Priority > 1 }

// RowViewModel is one visible row.
type RowViewModel struct {
	ID          string
	Selected    bool
	ToggleURL   safehtml.URL
	ActivateURL safehtml.URL
	Cells       []CellViewModel
}

// CellViewModel is one rendered cell. Action menus carry links instead of HTML.
type CellViewModel struct {
	HTML    safehtml.HTML
	Actions []ActionLink
}

// IsActions is used by templates.
func (c CellViewModel) IsActions() bool { return c.Actions != nil }

// ActionLink is a row action offered to the user.
type ActionLink struct {
	Name  string
	Label string
	URL   safehtml.URL
}

// ColumnInfo contains information about a column for UI display.
type ColumnInfo struct {
	Name            string // Column id
	DisplayName     string
	IsVisible       bool
	ToggleColumnURL safehtml.URL // URL to toggle column visibility
}

// ToolbarViewModel is the toolbar above the table.
type ToolbarViewModel struct {
	IsCustom    bool
	IsSelection bool
	Custom      safehtml.HTML
	Count       int
	Actions     []ActionLink // bulk actions, posted as forms
}

// SelectionViewModel drives the selection checkboxes.
type SelectionViewModel struct {
	Enabled       bool // multi-select checkboxes are shown
	Count         int
	AllSelected   bool
	Indeterminate bool
	ToggleAllURL  safehtml.URL
	ClearURL      safehtml.URL
}

// PaginationViewModel drives the pager. Page numbers are 1-based.
type PaginationViewModel struct {
	Page        int
	TotalPages  int
	TotalCount  int
	From        int
	To          int
	HasPrevious bool
	HasNext     bool
	FirstURL    safehtml.URL
	PreviousURL safehtml.URL
	NextURL     safehtml.URL
	LastURL     safehtml.URL
	Sizes       []PageSizeOption
}

// PageSizeOption is one entry of the page size chooser.
type PageSizeOption struct {
	Size    int
	URL     safehtml.URL
	Current bool
}

// FilterViewModel is one active filter.
type FilterViewModel struct {
	Field    string
	Label    string
	Value    string
	ClearURL safehtml.URL
}

// FieldOption is one field of the filter form.
type FieldOption struct {
	Field string
	Label string
}

// FilterForm holds the hidden values of the filter form. The form is a GET
// to the table path with fixed input names.
type FilterForm struct {
	Action  safehtml.URL
	Table   string
	User    string
	Columns string
}

// Options are the screen settings not held by the engine.
type Options struct {
	Title       string
	Description string
	PageSizes   []int
	// Error is shown instead of rows when the last fetch failed.
	Error string
}

// BuildViewModel builds the view model of e for the request q.
func BuildViewModel[T any](e *tables.Engine[T], q *query.Query, opts Options) TableViewModel {
	v := e.Render()
	base := q.Base()

	vm := TableViewModel{
		Title:       opts.Title,
		Description: opts.Description,
		Table:       q.Table,
		User:        q.User,
		Status:      v.Status.String(),
		IsLoading:   v.Status == tables.StatusLoading,
		IsEmpty:     v.Status == tables.StatusEmpty,
		Error:       opts.Error,
		CurrentURL:  base.ToSafeURL(),
		TextURL:     base.WithFormat(query.FormatText),
		HomeURL:     safehtml.URLSanitized(homeURL(q.User)),
		FilterForm: FilterForm{
			Action:  safehtml.URLSanitized(query.TablePath),
			Table:   q.Table,
			User:    q.User,
			Columns: q.ColumnsParam(),
		},
	}

	allIDs := make([]string, len(v.Headers))
	for i, h := range v.Headers {
		allIDs[i] = h.ID
	}

	visible := make([]bool, len(v.Headers))
	for i, h := range v.Headers {
		visible[i] = q.IsColumnVisible(h.ID)
		label := h.Label.String()
		vm.AllColumns = append(vm.AllColumns, ColumnInfo{
			Name:            h.ID,
			DisplayName:     label,
			IsVisible:       visible[i],
			ToggleColumnURL: q.WithColumnToggled(h.ID, allIDs),
		})
		if !visible[i] {
			continue
		}
		hv := HeaderViewModel{
			ID:       h.ID,
			Label:    h.Label.HTML(),
			Sortable: h.Sortable,
			Priority: h.Priority,
			Width:    h.Width,
		}
		if w, ok := q.ColumnWidths[h.ID]; ok {
			hv.Width = w
		}
		if h.Sortable {
			hv.SortURL = q.WithSort(h.ID)
		}
		switch h.Direction {
		case tables.Ascending:
			hv.Indicator = "▲"
		case tables.Descending:
			hv.Indicator = "▼"
		}
		vm.Headers = append(vm.Headers, hv)
	}

	vm.ColumnSpan = len(vm.Headers) + 1

	for _, r := range v.Rows {
		id := string(r.ID)
		rv := RowViewModel{
			ID:          id,
			Selected:    r.Selected,
			ToggleURL:   q.WithSelectToggled(id),
			ActivateURL: q.RowURL(id),
		}
		for i, c := range r.Cells {
			if !visible[i] {
				continue
			}
			rv.Cells = append(rv.Cells, buildCell(c, id, q))
		}
		vm.Rows = append(vm.Rows, rv)
	}

	vm.Toolbar = buildToolbar(v.Toolbar, q)
	vm.Selection = SelectionViewModel{
		Enabled:       v.Selection.Mode == tables.MultiSelect,
		Count:         v.Selection.Count,
		AllSelected:   v.Selection.AllVisibleSelected,
		Indeterminate: v.Selection.AnyVisibleSelected && !v.Selection.AllVisibleSelected,
		ToggleAllURL:  q.WithSelectAllToggled(),
		ClearURL:      q.WithSelectionCleared(),
	}
	vm.Pagination = buildPagination(v.Pagination, opts.PageSizes, q)

	labels := make(map[string]string)
	for _, col := range e.Columns() {
		label := col.RenderHeader().String()
		labels[col.ID] = label
		if col.Accessor != nil {
			vm.FilterFields = append(vm.FilterFields, FieldOption{Field: col.ID, Label: label})
		}
	}
	for _, f := range e.Filters() {
		label, ok := labels[f.Field]
		if !ok {
			label = f.Field
		}
		vm.Filters = append(vm.Filters, FilterViewModel{
			Field:    f.Field,
			Label:    label,
			Value:    FilterText(f.Value),
			ClearURL: q.WithoutFilter(f.Field),
		})
	}
	return vm
}

func homeURL(user string) string {
	if user == "" {
		return "/"
	}
	return "/?" + url.Values{query.ParamUser: {user}}.Encode()
}

func buildCell(c cells.Cell, rowID string, q *query.Query) CellViewModel {
	if c.Kind != cells.KindActions || c.Missing {
		return CellViewModel{HTML: c.HTML()}
	}
	links := make([]ActionLink, 0, len(c.Actions))
	for _, a := range c.Actions {
		links = append(links, ActionLink{Name: a.Name, Label: a.Label, URL: q.RowActionURL(rowID, a.Name)})
	}
	return CellViewModel{Actions: links}
}

func buildToolbar(tb tables.Toolbar, q *query.Query) ToolbarViewModel {
	switch tb.Kind {
	case tables.ToolbarCustom:
		return ToolbarViewModel{IsCustom: true, Custom: tb.Custom.HTML()}
	case tables.ToolbarSelection:
		vm := ToolbarViewModel{IsSelection: true, Count: tb.Count}
		for _, a := range tb.Actions {
			vm.Actions = append(vm.Actions, ActionLink{Name: a.Name, Label: a.Label, URL: q.BulkURL(a.Name)})
		}
		return vm
	}
	return ToolbarViewModel{}
}

func buildPagination(p tables.Pagination, sizes []int, q *query.Query) PaginationViewModel {
	start, end := p.Bounds()
	vm := PaginationViewModel{
		Page:        p.PageIndex + 1,
		TotalPages:  p.TotalPages(),
		TotalCount:  p.TotalCount,
		To:          end,
		HasPrevious: p.HasPrevious(),
		HasNext:     p.HasNext(),
		FirstURL:    q.WithPage(1),
		PreviousURL: q.WithPage(p.PageIndex),
		NextURL:     q.WithPage(p.PageIndex + 2),
		LastURL:     q.WithPage(p.TotalPages()),
	}
	if end > start {
		vm.From = start + 1
	}
	for _, n := range sizes {
		vm.Sizes = append(vm.Sizes, PageSizeOption{Size: n, URL: q.WithSize(n), Current: n == p.PageSize})
	}
	return vm
}

// FilterText returns the display form of a filter value.
func FilterText(v any) string {
	switch f := v.(type) {
	case string:
		return f
	case tables.Match:
		return string(f)
	case tables.Range:
		return boundText(f.From) + " .. " + boundText(f.To)
	case tables.Predicate, func(any) bool:
		return "(custom)"
	}
	return fmt.Sprint(v)
}

func boundText(v any) string {
	switch b := v.(type) {
	case nil:
		return ""
	case time.Time:
		return b.Format(time.DateOnly)
	case int:
		return strconv.Itoa(b)
	}
	return fmt.Sprint(v)
}
