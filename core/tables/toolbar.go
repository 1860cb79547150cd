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

import "github.com/google/tabula/core/cells"

// ToolbarKind tells which toolbar a table shows.
type ToolbarKind int

const (
	ToolbarNone ToolbarKind = iota
	ToolbarCustom
	ToolbarSelection
)

func (k ToolbarKind) String() string {
	switch k {
	case ToolbarCustom:
		return "custom"
	case ToolbarSelection:
		return "selection"
	}
	return "none"
}

// BulkAction is an operation on the current selection.
type BulkAction struct {
	Name       string
	Label      string
	Permission string // empty means always offered
}

// Toolbar is the composed toolbar of a table.
type Toolbar struct {
	Kind    ToolbarKind
	Custom  *cells.Cell  // ToolbarCustom only
	Count   int          // ToolbarSelection only
	Actions []BulkAction // ToolbarSelection only; filtered by capability
}

// ToolbarOptions are the caller's toolbar settings.
type ToolbarOptions struct {
	Custom            *cells.Cell
	BulkActions       []BulkAction
	EnableBulkActions bool
	Capability        cells.Capability
}

// ComposeToolbar picks the toolbar for a selection of count rows. Custom
// content always wins; otherwise the selection bar is shown when bulk
// actions are enabled and something is selected. The two are never merged.
func ComposeToolbar(opts ToolbarOptions, count int) Toolbar {
	if opts.Custom != nil {
		return Toolbar{Kind: ToolbarCustom, Custom: opts.Custom}
	}
	if !opts.EnableBulkActions || count == 0 {
		return Toolbar{Kind: ToolbarNone}
	}
	tb := Toolbar{Kind: ToolbarSelection, Count: count}
	for _, a := range opts.BulkActions {
		if cells.Allowed(a.Permission, opts.Capability) {
			tb.Actions = append(tb.Actions, a)
		}
	}
	return tb
}
