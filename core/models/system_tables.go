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
	"context"
	"fmt"
	"strings"

	"github.com/google/tabula/core/cells"
	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/fetch"
	"github.com/google/tabula/core/tables"
)

// System screen name constants
const (
	ColumnsTableName = "_columns"

	// SystemPermission is required to open system screens.
	SystemPermission = "system"
)

// ColumnRow is one row of the _columns system screen: a column of some
// registered screen.
type ColumnRow struct {
	Screen   string
	Column   string
	Header   string
	Mode     string
	Sortable bool
	Width    int
	Position int
}

// ColumnRows lists the columns of every non-system screen in dm, ordered by
// screen name then position.
func ColumnRows(dm *DataModel) []ColumnRow {
	var rows []ColumnRow
	for _, s := range dm.GetAllScreens() {
		info := s.Info()
		if isSystemTable(info.Name) {
			continue
		}
		for position, c := range s.Columns() {
			rows = append(rows, ColumnRow{
				Screen:   info.Name,
				Column:   c.ID,
				Header:   c.Header,
				Mode:     info.Mode(),
				Sortable: c.Sortable,
				Width:    c.Width,
				Position: position,
			})
		}
	}
	return rows
}

// BuildColumnsScreen creates the _columns system screen. Its rows are
// computed from dm on every fetch, so screens added later show up.
func BuildColumnsScreen(dm *DataModel) (*ListScreen[ColumnRow], error) {
	provider := fetch.ProviderFunc[ColumnRow](func(ctx context.Context, _ fetch.Params) (fetch.Result[ColumnRow], error) {
		if err := ctx.Err(); err != nil {
			return fetch.Result[ColumnRow]{}, err
		}
		rows := ColumnRows(dm)
		return fetch.Result[ColumnRow]{Content: rows, TotalCount: len(rows)}, nil
	})
	return NewListScreen(Definition[ColumnRow]{
		Info: Info{
			Name:        ColumnsTableName,
			Title:       "Columns",
			Description: "Every column of every screen",
			Categories:  []string{"system"},
			Permission:  SystemPermission,
		},
		Columns: []columns.Descriptor[ColumnRow]{
			{ID: "screen", Header: "Screen", Accessor: func(r ColumnRow) any { return r.Screen }, Sortable: true},
			{ID: "column", Header: "Column", Accessor: func(r ColumnRow) any { return r.Column }, Sortable: true},
			{ID: "header", Header: "Header", Accessor: func(r ColumnRow) any { return r.Header }},
			{ID: "mode", Header: "Mode", Accessor: func(r ColumnRow) any { return r.Mode }, Sortable: true},
			{ID: "sortable", Header: "Sortable", Accessor: func(r ColumnRow) any { return r.Sortable }, Cell: cells.Bool[ColumnRow]()},
			{ID: "position", Header: "Position", Accessor: func(r ColumnRow) any { return r.Position }, Sortable: true},
		},
		RowID: func(r ColumnRow) tables.RowID {
			return tables.RowID(r.Screen + "." + r.Column)
		},
		InitialSort: []tables.SortKey{{Column: "screen"}, {Column: "position"}},
		Provider:    provider,
	})
}

// AddSystemScreens adds all system screens to the data model.
func AddSystemScreens(dm *DataModel) error {
	s, err := BuildColumnsScreen(dm)
	if err != nil {
		return fmt.Errorf("building %s: %w", ColumnsTableName, err)
	}
	return dm.AddScreen(s)
}

// isSystemTable returns true if the name is a system screen (starts with underscore)
func isSystemTable(name string) bool {
	return strings.HasPrefix(name, "_")
}
