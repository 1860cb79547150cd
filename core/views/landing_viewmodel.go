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
	"github.com/google/safehtml"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/query"
)

// LandingViewModel lists the screens available to a user.
type LandingViewModel struct {
	Title    string
	Subtitle string
	User     string
	Users    []UserLink
	Tables   []TableInfo
}

// UserLink switches the landing page to another user.
type UserLink struct {
	Name    string
	URL     safehtml.URL
	Current bool
}

// TableInfo describes one screen on the landing page.
type TableInfo struct {
	Name        string
	Description string
	URL         safehtml.URL
	ColumnCount int
	Categories  string
	Mode        string // "client" or "server"
}

// DetailViewModel shows one activated row.
type DetailViewModel struct {
	Title   string
	RowID   string
	Fields  []DetailField
	BackURL safehtml.URL
	Message string
}

// DetailField is one labelled value of a detail page.
type DetailField struct {
	Label string
	Value safehtml.HTML
}

// BuildDetailViewModel renders every column of row for the detail page.
// Action menu columns are left out.
func BuildDetailViewModel[T any](title, rowID string, cols []columns.Descriptor[T], row T, q *query.Query) DetailViewModel {
	back := q.Base()
	back.Path = query.TablePath
	vm := DetailViewModel{
		Title:   title,
		RowID:   rowID,
		BackURL: back.ToSafeURL(),
	}
	for _, col := range cols {
		c := col.Render(row)
		if c.IsActions() {
			continue
		}
		vm.Fields = append(vm.Fields, DetailField{Label: col.RenderHeader().String(), Value: c.HTML()})
	}
	return vm
}
