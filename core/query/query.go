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

// Package query parses list screen requests and builds the links that drive
// them. A request names a screen and carries at most a few events (toggle a
// sort, set a filter, move a page, change the selection). The view state
// itself lives on the server, so links only encode the event they trigger.
package query

import (
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/google/safehtml"
)

// URL parameter names.
const (
	ParamTable        = "table"
	ParamUser         = "user"
	ParamColumns      = "columns"
	ParamFormat       = "format"
	ParamSort         = "sort"
	ParamFilterPrefix = "filter:"
	ParamFilterField  = "filter_field"
	ParamFilterValue  = "filter_value"
	ParamClearFilters = "clear_filters"
	ParamPage         = "page"
	ParamSize         = "size"
	ParamSelect       = "select"
	ParamSelectAll    = "select_all"
	ParamClear        = "clear"
	ParamID           = "id"
	ParamAction       = "action"
)

// Paths served by the table handlers.
const (
	TablePath = "/table"
	BulkPath  = "/table/bulk"
	RowPath   = "/table/row"
)

// FormatText requests the plain text rendering of a table.
const FormatText = "text"

// FilterEvent sets the filter of a field. An empty value clears it.
type FilterEvent struct {
	Field string
	Value string
}

// Events are the state changes a request asks for.
type Events struct {
	Sort           string
	Filters        []FilterEvent
	ClearFilters   bool
	Page           int // 1-based, 0 when absent
	Size           int
	Select         []string
	SelectAll      bool
	ClearSelection bool
}

// Empty reports whether no event is set.
func (e Events) Empty() bool {
	return e.Sort == "" && len(e.Filters) == 0 && !e.ClearFilters && e.Page == 0 &&
		e.Size == 0 && len(e.Select) == 0 && !e.SelectAll && !e.ClearSelection
}

// Query represents a parsed list screen request.
type Query struct {
	// Base path (e.g., "/table")
	Path string

	Table        string
	User         string
	Format       string
	Columns      []string       // Ordered visible columns, empty for all
	ColumnWidths map[string]int // Column widths in pixels
	Events       Events
}

// NewQuery creates a Query from a URL.
func NewQuery(u *url.URL) *Query {
	q := &Query{
		Path:         u.Path,
		ColumnWidths: make(map[string]int),
	}
	v := u.Query()
	q.Table = v.Get(ParamTable)
	q.User = v.Get(ParamUser)
	q.Format = v.Get(ParamFormat)

	// Format: col1:width,col2,col3:width
	if s := v.Get(ParamColumns); s != "" {
		for _, part := range strings.Split(s, ",") {
			if part == "" {
				continue
			}
			if i := strings.LastIndex(part, ":"); i != -1 {
				if width, err := strconv.Atoi(part[i+1:]); err == nil && width > 0 {
					q.Columns = append(q.Columns, part[:i])
					q.ColumnWidths[part[:i]] = width
					continue
				}
			}
			q.Columns = append(q.Columns, part)
		}
	}

	e := &q.Events
	e.Sort = v.Get(ParamSort)
	for key, values := range v {
		if field, ok := strings.CutPrefix(key, ParamFilterPrefix); ok && field != "" && len(values) > 0 {
			e.Filters = append(e.Filters, FilterEvent{Field: field, Value: values[0]})
		}
	}
	if field := v.Get(ParamFilterField); field != "" {
		e.Filters = append(e.Filters, FilterEvent{Field: field, Value: v.Get(ParamFilterValue)})
	}
	sort.SliceStable(e.Filters, func(i, j int) bool { return e.Filters[i].Field < e.Filters[j].Field })
	e.ClearFilters = flag(v.Get(ParamClearFilters))
	e.Page = positive(v.Get(ParamPage))
	e.Size = positive(v.Get(ParamSize))
	e.Select = v[ParamSelect]
	e.SelectAll = flag(v.Get(ParamSelectAll))
	e.ClearSelection = flag(v.Get(ParamClear))
	return q
}

func flag(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func positive(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Clone creates a deep copy of the Query.
func (s *Query) Clone() *Query {
	clone := *s
	clone.Columns = slices.Clone(s.Columns)
	clone.ColumnWidths = make(map[string]int, len(s.ColumnWidths))
	for col, width := range s.ColumnWidths {
		clone.ColumnWidths[col] = width
	}
	clone.Events.Filters = slices.Clone(s.Events.Filters)
	clone.Events.Select = slices.Clone(s.Events.Select)
	return &clone
}

// Base returns a copy of the query without events.
func (s *Query) Base() *Query {
	b := s.Clone()
	b.Events = Events{}
	return b
}

// IsColumnVisible checks if a column is shown. With no column list every
// column is shown.
func (s *Query) IsColumnVisible(column string) bool {
	return len(s.Columns) == 0 || slices.Contains(s.Columns, column)
}

// ColumnsParam encodes the visible columns with their widths.
func (s *Query) ColumnsParam() string {
	parts := make([]string, 0, len(s.Columns))
	for _, col := range s.Columns {
		if width, ok := s.ColumnWidths[col]; ok {
			parts = append(parts, col+":"+strconv.Itoa(width))
		} else {
			parts = append(parts, col)
		}
	}
	return strings.Join(parts, ",")
}

// values returns the parameters identifying the screen and its layout.
func (s *Query) values() url.Values {
	q := url.Values{}
	if s.Table != "" {
		q.Set(ParamTable, s.Table)
	}
	if s.User != "" {
		q.Set(ParamUser, s.User)
	}
	if len(s.Columns) > 0 {
		q.Set(ParamColumns, s.ColumnsParam())
	}
	if s.Format != "" {
		q.Set(ParamFormat, s.Format)
	}
	return q
}

// ToURL converts the Query back to a URL string.
func (s *Query) ToURL() string {
	q := s.values()
	e := s.Events
	if e.Sort != "" {
		q.Set(ParamSort, e.Sort)
	}
	for _, f := range e.Filters {
		q.Set(ParamFilterPrefix+f.Field, f.Value)
	}
	if e.ClearFilters {
		q.Set(ParamClearFilters, "1")
	}
	if e.Page > 0 {
		q.Set(ParamPage, strconv.Itoa(e.Page))
	}
	if e.Size > 0 {
		q.Set(ParamSize, strconv.Itoa(e.Size))
	}
	for _, id := range e.Select {
		q.Add(ParamSelect, id)
	}
	if e.SelectAll {
		q.Set(ParamSelectAll, "1")
	}
	if e.ClearSelection {
		q.Set(ParamClear, "1")
	}
	return encode(s.path(), q)
}

func (s *Query) path() string {
	if s.Path == "" {
		return TablePath
	}
	return s.Path
}

func encode(path string, q url.Values) string {
	u := &url.URL{Path: path, RawQuery: q.Encode()}
	return u.String()
}

// ToSafeURL converts the Query to a safehtml.URL.
func (s *Query) ToSafeURL() safehtml.URL {
	return safehtml.URLSanitized(s.ToURL())
}

func (s *Query) with(fn func(e *Events)) safehtml.URL {
	b := s.Base()
	fn(&b.Events)
	return b.ToSafeURL()
}

// Self returns the link to the screen without events.
func (s *Query) Self() safehtml.URL {
	return s.Base().ToSafeURL()
}

// WithSort returns the link toggling the sort of column.
func (s *Query) WithSort(column string) safehtml.URL {
	return s.with(func(e *Events) { e.Sort = column })
}

// WithFilter returns the link setting the filter of field to value.
func (s *Query) WithFilter(field, value string) safehtml.URL {
	return s.with(func(e *Events) { e.Filters = []FilterEvent{{Field: field, Value: value}} })
}

// WithoutFilter returns the link clearing the filter of field.
func (s *Query) WithoutFilter(field string) safehtml.URL {
	return s.WithFilter(field, "")
}

// WithoutFilters returns the link clearing every filter.
func (s *Query) WithoutFilters() safehtml.URL {
	return s.with(func(e *Events) { e.ClearFilters = true })
}

// WithPage returns the link to the 1-based page n.
func (s *Query) WithPage(n int) safehtml.URL {
	return s.with(func(e *Events) { e.Page = n })
}

// WithSize returns the link changing the page size.
func (s *Query) WithSize(n int) safehtml.URL {
	return s.with(func(e *Events) { e.Size = n })
}

// WithSelectToggled returns the link toggling the selection of row id.
func (s *Query) WithSelectToggled(id string) safehtml.URL {
	return s.with(func(e *Events) { e.Select = []string{id} })
}

// WithSelectAllToggled returns the link toggling the selection of the
// visible rows.
func (s *Query) WithSelectAllToggled() safehtml.URL {
	return s.with(func(e *Events) { e.SelectAll = true })
}

// WithSelectionCleared returns the link clearing the selection.
func (s *Query) WithSelectionCleared() safehtml.URL {
	return s.with(func(e *Events) { e.ClearSelection = true })
}

// WithFormat returns the link to the screen in another output format.
func (s *Query) WithFormat(format string) safehtml.URL {
	b := s.Base()
	b.Format = format
	return b.ToSafeURL()
}

// WithColumnToggled returns a URL with the column toggled (added if not
// present, removed if present). all lists every column, used when no
// column list is set yet.
func (s *Query) WithColumnToggled(column string, all []string) safehtml.URL {
	b := s.Base()
	if len(b.Columns) == 0 {
		b.Columns = slices.Clone(all)
	}
	if i := slices.Index(b.Columns, column); i >= 0 {
		b.Columns = slices.Delete(b.Columns, i, i+1)
		delete(b.ColumnWidths, column)
	} else {
		b.Columns = append(b.Columns, column)
	}
	return b.ToSafeURL()
}

// RowURL returns the activation link of row id.
func (s *Query) RowURL(id string) safehtml.URL {
	q := s.values()
	q.Del(ParamFormat)
	q.Set(ParamID, id)
	return safehtml.URLSanitized(encode(RowPath, q))
}

// RowActionURL returns the link applying a row action to row id.
func (s *Query) RowActionURL(id, action string) safehtml.URL {
	q := s.values()
	q.Del(ParamFormat)
	q.Set(ParamID, id)
	q.Set(ParamAction, action)
	return safehtml.URLSanitized(encode(RowPath, q))
}

// BulkURL returns the form action applying a bulk action to the selection.
func (s *Query) BulkURL(action string) safehtml.URL {
	q := s.values()
	q.Set(ParamAction, action)
	return safehtml.URLSanitized(encode(BulkPath, q))
}

// TableURL returns the link to a screen.
func TableURL(table, user string) safehtml.URL {
	return (&Query{Path: TablePath, Table: table, User: user}).ToSafeURL()
}
