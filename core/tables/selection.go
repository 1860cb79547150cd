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

import "slices"

// RowID is the selection identity of a row.
type RowID string

// SelectionMode is either multi or single selection.
type SelectionMode int

const (
	MultiSelect SelectionMode = iota
	SingleSelect
)

// Selection holds the selected row identities of a table. In single mode at
// most one row is selected.
type Selection struct {
	mode  SelectionMode
	ids   []RowID // insertion order
	index map[RowID]struct{}
}

// NewSelection returns an empty selection.
func NewSelection(mode SelectionMode) *Selection {
	return &Selection{mode: mode, index: make(map[RowID]struct{})}
}

// Mode returns the selection mode.
func (s *Selection) Mode() SelectionMode {
	return s.mode
}

// Toggle selects or deselects id. In single mode selecting a row deselects
// any other.
func (s *Selection) Toggle(id RowID) {
	if s.IsSelected(id) {
		s.remove(id)
		return
	}
	if s.mode == SingleSelect {
		s.Clear()
	}
	s.add(id)
}

// ToggleAll selects every visible row unless all of them are already
// selected, in which case it deselects them. Rows that are not visible keep
// their state. It is a no-op in single mode.
func (s *Selection) ToggleAll(visible []RowID) {
	if s.mode == SingleSelect || len(visible) == 0 {
		return
	}
	if s.AllSelected(visible) {
		for _, id := range visible {
			s.remove(id)
		}
		return
	}
	for _, id := range visible {
		if !s.IsSelected(id) {
			s.add(id)
		}
	}
}

// Clear deselects everything. It reports whether anything was selected.
func (s *Selection) Clear() bool {
	if len(s.ids) == 0 {
		return false
	}
	s.ids = nil
	clear(s.index)
	return true
}

// IsSelected reports whether id is selected.
func (s *Selection) IsSelected(id RowID) bool {
	_, ok := s.index[id]
	return ok
}

// Count returns the number of selected rows.
func (s *Selection) Count() int {
	return len(s.ids)
}

// IDs returns the selected ids in the order they were selected.
func (s *Selection) IDs() []RowID {
	return slices.Clone(s.ids)
}

// AllSelected reports whether every visible row is selected. It is false
// when nothing is visible.
func (s *Selection) AllSelected(visible []RowID) bool {
	if len(visible) == 0 {
		return false
	}
	for _, id := range visible {
		if !s.IsSelected(id) {
			return false
		}
	}
	return true
}

// AnySelected reports whether at least one visible row is selected.
func (s *Selection) AnySelected(visible []RowID) bool {
	return slices.ContainsFunc(visible, s.IsSelected)
}

func (s *Selection) add(id RowID) {
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s *Selection) remove(id RowID) {
	if _, ok := s.index[id]; !ok {
		return
	}
	delete(s.index, id)
	s.ids = slices.DeleteFunc(s.ids, func(x RowID) bool { return x == id })
}
