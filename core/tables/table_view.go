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
	"strconv"

	"github.com/rs/zerolog"

	"github.com/google/tabula/core/cells"
	"github.com/google/tabula/core/columns"
)

// Status is the display state of a table.
type Status int

const (
	StatusIdle Status = iota // no data has been supplied yet
	StatusLoading
	StatusPopulated
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusPopulated:
		return "populated"
	case StatusEmpty:
		return "empty"
	}
	return "idle"
}

// Config configures an Engine.
type Config[T any] struct {
	// RowID derives the selection identity of a row. Without it rows are
	// identified by their index in the supplied dataset, which callers must
	// treat as unstable across SetData calls.
	RowID func(row T) RowID
	// Fields adds addressable fields for sorting and filtering on top of the
	// columns' own accessors.
	Fields        columns.Fields[T]
	SelectionMode SelectionMode
	MultiSort     bool
	PageSize      int
	// ServerSide marks the data passed to SetData as the current page of a
	// dataset filtered, sorted and counted by the caller.
	ServerSide  bool
	InitialSort []SortKey

	Toolbar           *cells.Cell
	BulkActions       []BulkAction
	EnableBulkActions bool
	Capability        cells.Capability

	Logger *zerolog.Logger
}

// HeaderView is one rendered column header.
type HeaderView struct {
	ID        string
	Label     cells.Cell
	Sortable  bool
	Direction Direction
	Priority  int // 1-based position in the sort state, 0 when unsorted
	Width     int
}

// RowView is one rendered body row.
type RowView[T any] struct {
	ID       RowID
	Index    int // position in the dataset
	Record   T   // the original record
	Cells    []cells.Cell
	Selected bool
}

// SelectionSummary describes the selection relative to the visible page.
type SelectionSummary struct {
	Mode               SelectionMode
	Count              int
	AllVisibleSelected bool
	AnyVisibleSelected bool
}

// View is everything needed to draw a table.
type View[T any] struct {
	Headers    []HeaderView
	Rows       []RowView[T]
	Status     Status
	Pagination Pagination
	Selection  SelectionSummary
	Toolbar    Toolbar
}

type indexedRow[T any] struct {
	index int
	row   T
}

// Engine composes the sorting, filtering, pagination and selection state of
// one table over a caller supplied dataset. It never modifies the rows it is
// given. An Engine is not safe for concurrent use.
type Engine[T any] struct {
	columns []columns.Descriptor[T]
	byID    map[string]int
	fields  columns.Fields[T]
	cfg     Config[T]
	log     zerolog.Logger

	sorter    *Sorter
	filters   Filters
	pager     *Paginator
	selection *Selection

	rows    []T
	total   int
	loaded  bool
	loading bool
	page    []indexedRow[T]

	onSort      func([]SortKey)
	onFilter    func([]Filter)
	onPage      func(Pagination)
	onSelection func([]RowID)
	onActivate  func(T)
}

// New validates the column descriptors and returns an engine in the idle state.
func New[T any](cols []columns.Descriptor[T], cfg Config[T]) (*Engine[T], error) {
	fields, err := columns.Validate(cols, cfg.Fields)
	if err != nil {
		return nil, err
	}
	e := &Engine[T]{
		columns:   slices.Clone(cols),
		byID:      make(map[string]int, len(cols)),
		fields:    fields,
		cfg:       cfg,
		log:       zerolog.Nop(),
		sorter:    NewSorter(cfg.MultiSort),
		pager:     NewPaginator(cfg.PageSize),
		selection: NewSelection(cfg.SelectionMode),
	}
	if cfg.Logger != nil {
		e.log = *cfg.Logger
	}
	for i, c := range cols {
		e.byID[c.ID] = i
	}
	for _, k := range cfg.InitialSort {
		col, ok := e.sortable(k.Column)
		if !ok {
			return nil, fmt.Errorf("%w: initial sort on %q", ErrUnknownColumn, k.Column)
		}
		k.Field = col.SortKey()
		if k.Direction == Unsorted {
			k.Direction = Ascending
		}
		e.sorter.keys = append(e.sorter.keys, k)
	}
	if !cfg.MultiSort && len(e.sorter.keys) > 1 {
		e.sorter.keys = e.sorter.keys[:1]
	}
	e.refresh()
	return e, nil
}

// Columns returns the column descriptors.
func (e *Engine[T]) Columns() []columns.Descriptor[T] {
	return e.columns
}

// Column returns the descriptor with the given id.
func (e *Engine[T]) Column(id string) (columns.Descriptor[T], bool) {
	i, ok := e.byID[id]
	if !ok {
		return columns.Descriptor[T]{}, false
	}
	return e.columns[i], true
}

// HasField reports whether field can be filtered or sorted on.
func (e *Engine[T]) HasField(field string) bool {
	_, ok := e.fields[field]
	return ok
}

// ServerSide reports whether the engine expects pre-paged data.
func (e *Engine[T]) ServerSide() bool {
	return e.cfg.ServerSide
}

// OnSortChange registers the callback fired after the sort state changes.
func (e *Engine[T]) OnSortChange(fn func(keys []SortKey)) { e.onSort = fn }

// OnFilterChange registers the callback fired after the filter state changes.
func (e *Engine[T]) OnFilterChange(fn func(filters []Filter)) { e.onFilter = fn }

// OnPageChange registers the callback fired after the page index or size
// changes on request. Clamping after a data or filter change does not fire it.
func (e *Engine[T]) OnPageChange(fn func(p Pagination)) { e.onPage = fn }

// OnSelectionChange registers the callback fired after the selection changes.
func (e *Engine[T]) OnSelectionChange(fn func(ids []RowID)) { e.onSelection = fn }

// OnRowActivate registers the callback fired with the original record of an
// activated row.
func (e *Engine[T]) OnRowActivate(fn func(row T)) { e.onActivate = fn }

// SetData replaces the dataset. In server-side mode rows are the current page
// and total is the size of the whole result; a negative total means len(rows).
// In client-side mode total is ignored. The selection is kept.
func (e *Engine[T]) SetData(rows []T, total int) {
	e.rows = rows
	if total < 0 {
		total = len(rows)
	}
	e.total = total
	e.loaded = true
	e.refresh()
}

// SetLoading sets the caller owned loading flag.
func (e *Engine[T]) SetLoading(loading bool) {
	e.loading = loading
}

// Loading reports the loading flag.
func (e *Engine[T]) Loading() bool {
	return e.loading
}

// ToggleSort cycles the sort of a column. Unknown and non-sortable columns
// are ignored.
func (e *Engine[T]) ToggleSort(columnID string) {
	col, ok := e.sortable(columnID)
	if !ok {
		e.log.Debug().Str("column", columnID).Msg("ignoring sort toggle on a column that is not sortable")
		return
	}
	e.sorter.Toggle(col.ID, col.SortKey())
	e.refresh()
	if e.onSort != nil {
		e.onSort(e.sorter.Keys())
	}
}

// SortKeys returns the active sort keys in priority order.
func (e *Engine[T]) SortKeys() []SortKey {
	return e.sorter.Keys()
}

// SetFilter sets the filter of field and moves back to the first page.
func (e *Engine[T]) SetFilter(field string, value any) error {
	if !e.HasField(field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	e.filters.Set(field, value)
	e.filterChanged()
	return nil
}

// ClearFilter removes the filter of field.
func (e *Engine[T]) ClearFilter(field string) {
	if e.filters.Clear(field) {
		e.filterChanged()
	}
}

// ClearFilters removes every filter.
func (e *Engine[T]) ClearFilters() {
	if e.filters.Len() == 0 {
		return
	}
	e.filters.ClearAll()
	e.filterChanged()
}

// Filters returns the active filters.
func (e *Engine[T]) Filters() []Filter {
	return e.filters.List()
}

// Filter returns the filter value of field.
func (e *Engine[T]) Filter(field string) (any, bool) {
	return e.filters.Get(field)
}

func (e *Engine[T]) filterChanged() {
	e.pager.Reset()
	e.refresh()
	if e.onFilter != nil {
		e.onFilter(e.filters.List())
	}
}

// SetPageIndex moves to page i, clamped into range.
func (e *Engine[T]) SetPageIndex(i int) {
	if !e.pager.SetPageIndex(i) {
		return
	}
	e.pageChanged()
}

// SetPageSize changes the page size keeping the first visible row in view.
func (e *Engine[T]) SetPageSize(n int) error {
	changed, err := e.pager.SetPageSize(n)
	if err != nil || !changed {
		return err
	}
	e.pageChanged()
	return nil
}

// Pagination returns the current page window.
func (e *Engine[T]) Pagination() Pagination {
	return e.pager.State()
}

func (e *Engine[T]) pageChanged() {
	e.refresh()
	if e.onPage != nil {
		e.onPage(e.pager.State())
	}
}

// ToggleRow selects or deselects a row.
func (e *Engine[T]) ToggleRow(id RowID) {
	e.selection.Toggle(id)
	e.selectionChanged()
}

// ToggleAllVisible selects every row of the current page, or deselects them
// when they are all selected already.
func (e *Engine[T]) ToggleAllVisible() {
	visible := e.VisibleIDs()
	if e.selection.Mode() == SingleSelect || len(visible) == 0 {
		return
	}
	e.selection.ToggleAll(visible)
	e.selectionChanged()
}

// ClearSelection deselects every row.
func (e *Engine[T]) ClearSelection() {
	if e.selection.Clear() {
		e.selectionChanged()
	}
}

// Selected returns the selected row ids in selection order.
func (e *Engine[T]) Selected() []RowID {
	return e.selection.IDs()
}

// SelectedRows returns the records of the held dataset that are selected.
// Selected rows outside the held data (other server-side pages) are not
// included.
func (e *Engine[T]) SelectedRows() []T {
	var out []T
	for i, row := range e.rows {
		if e.selection.IsSelected(e.rowID(e.datasetIndex(i), row)) {
			out = append(out, row)
		}
	}
	return out
}

func (e *Engine[T]) selectionChanged() {
	if e.onSelection != nil {
		e.onSelection(e.selection.IDs())
	}
}

// VisibleIDs returns the ids of the rows on the current page.
func (e *Engine[T]) VisibleIDs() []RowID {
	ids := make([]RowID, len(e.page))
	for i, r := range e.page {
		ids[i] = e.rowID(r.index, r.row)
	}
	return ids
}

// ActivateRow invokes the activation callback with the record of the visible
// row id. It reports whether a callback was invoked.
func (e *Engine[T]) ActivateRow(id RowID) bool {
	if e.onActivate == nil {
		return false
	}
	for _, r := range e.page {
		if e.rowID(r.index, r.row) == id {
			e.onActivate(r.row)
			return true
		}
	}
	return false
}

// Status returns the display state.
func (e *Engine[T]) Status() Status {
	switch {
	case e.loading:
		return StatusLoading
	case !e.loaded:
		return StatusIdle
	case len(e.page) == 0:
		return StatusEmpty
	}
	return StatusPopulated
}

// Render returns the current view.
func (e *Engine[T]) Render() View[T] {
	v := View[T]{
		Headers:    make([]HeaderView, len(e.columns)),
		Rows:       make([]RowView[T], len(e.page)),
		Status:     e.Status(),
		Pagination: e.pager.State(),
	}
	for i, c := range e.columns {
		dir, prio := e.sorter.Direction(c.ID)
		v.Headers[i] = HeaderView{
			ID:        c.ID,
			Label:     c.RenderHeader(),
			Sortable:  c.Sortable,
			Direction: dir,
			Priority:  prio,
			Width:     c.Width,
		}
	}
	visible := make([]RowID, len(e.page))
	for i, r := range e.page {
		id := e.rowID(r.index, r.row)
		visible[i] = id
		rv := RowView[T]{
			ID:       id,
			Index:    r.index,
			Record:   r.row,
			Cells:    make([]cells.Cell, len(e.columns)),
			Selected: e.selection.IsSelected(id),
		}
		for j, c := range e.columns {
			rv.Cells[j] = c.Render(r.row)
		}
		v.Rows[i] = rv
	}
	v.Selection = SelectionSummary{
		Mode:               e.selection.Mode(),
		Count:              e.selection.Count(),
		AllVisibleSelected: e.selection.AllSelected(visible),
		AnyVisibleSelected: e.selection.AnySelected(visible),
	}
	v.Toolbar = ComposeToolbar(ToolbarOptions{
		Custom:            e.cfg.Toolbar,
		BulkActions:       e.cfg.BulkActions,
		EnableBulkActions: e.cfg.EnableBulkActions,
		Capability:        e.cfg.Capability,
	}, e.selection.Count())
	return v
}

// refresh recomputes the visible page: filter, stable sort, clamp, slice.
func (e *Engine[T]) refresh() {
	if e.cfg.ServerSide {
		e.pager.SetTotal(max(e.total, len(e.rows)))
		e.page = make([]indexedRow[T], len(e.rows))
		for i, row := range e.rows {
			e.page[i] = indexedRow[T]{index: e.datasetIndex(i), row: row}
		}
		return
	}

	matches := Matcher(e.filters.List(), e.fields)
	rows := make([]indexedRow[T], 0, len(e.rows))
	for i, row := range e.rows {
		if matches(row) {
			rows = append(rows, indexedRow[T]{index: i, row: row})
		}
	}
	if keys := e.sorter.Keys(); len(keys) > 0 {
		cmp := Comparator(keys, e.fields)
		slices.SortStableFunc(rows, func(a, b indexedRow[T]) int { return cmp(a.row, b.row) })
	}
	e.pager.SetTotal(len(rows))
	e.page = Page(e.pager.State(), rows)
}

func (e *Engine[T]) datasetIndex(i int) int {
	if e.cfg.ServerSide {
		return e.pager.State().Offset() + i
	}
	return i
}

func (e *Engine[T]) rowID(index int, row T) RowID {
	if e.cfg.RowID != nil {
		return e.cfg.RowID(row)
	}
	return RowID(strconv.Itoa(index))
}

func (e *Engine[T]) sortable(columnID string) (columns.Descriptor[T], bool) {
	col, ok := e.Column(columnID)
	if !ok || !col.Sortable {
		return columns.Descriptor[T]{}, false
	}
	return col, true
}
