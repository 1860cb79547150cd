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

import "fmt"

// DefaultPageSize is used when a table is configured without a page size.
const DefaultPageSize = 10

// Pagination is the page window of a table.
type Pagination struct {
	PageIndex  int // zero-based
	PageSize   int
	TotalCount int
}

// TotalPages returns max(1, ceil(TotalCount/PageSize)).
func (p Pagination) TotalPages() int {
	if p.PageSize <= 0 || p.TotalCount <= 0 {
		return 1
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// Offset returns the index of the first row of the current page.
func (p Pagination) Offset() int {
	return p.PageIndex * p.PageSize
}

// Bounds returns the half-open range [start, end) of the current page
// within [0, TotalCount].
func (p Pagination) Bounds() (start, end int) {
	start = min(max(p.Offset(), 0), max(p.TotalCount, 0))
	end = min(start+p.PageSize, max(p.TotalCount, 0))
	return start, end
}

// HasPrevious reports whether there is a page before the current one.
func (p Pagination) HasPrevious() bool {
	return p.PageIndex > 0
}

// HasNext reports whether there is a page after the current one.
func (p Pagination) HasNext() bool {
	return p.PageIndex < p.TotalPages()-1
}

// Paginator holds and updates the pagination state. The page index is kept
// within [0, TotalPages()-1] after every operation.
type Paginator struct {
	state Pagination
}

// NewPaginator returns a paginator on the first page. Non-positive sizes
// fall back to DefaultPageSize.
func NewPaginator(pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator{state: Pagination{PageSize: pageSize}}
}

// State returns the current pagination state.
func (p *Paginator) State() Pagination {
	return p.state
}

// SetTotal sets the total row count and clamps the page index.
func (p *Paginator) SetTotal(total int) {
	p.state.TotalCount = max(total, 0)
	p.clamp()
}

// SetPageIndex moves to page i, clamped into range. It reports whether the
// page changed.
func (p *Paginator) SetPageIndex(i int) bool {
	old := p.state.PageIndex
	p.state.PageIndex = i
	p.clamp()
	return p.state.PageIndex != old
}

// SetPageSize changes the page size, keeping the first visible row on the
// new page. It reports whether the state changed.
func (p *Paginator) SetPageSize(n int) (bool, error) {
	if n <= 0 {
		return false, fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	if n == p.state.PageSize {
		return false, nil
	}
	offset := p.state.Offset()
	p.state.PageSize = n
	p.state.PageIndex = offset / n
	p.clamp()
	return true, nil
}

// Reset moves back to the first page. It reports whether the page changed.
func (p *Paginator) Reset() bool {
	changed := p.state.PageIndex != 0
	p.state.PageIndex = 0
	return changed
}

func (p *Paginator) clamp() {
	p.state.PageIndex = min(max(p.state.PageIndex, 0), p.state.TotalPages()-1)
}

// Page returns the rows of the current page of a full dataset.
func Page[T any](p Pagination, rows []T) []T {
	p.TotalCount = len(rows)
	start, end := p.Bounds()
	return rows[start:end]
}

// restore sets the page window without clamping; the next SetTotal clamps.
func (p *Paginator) restore(index, size int) {
	p.state.PageIndex = index
	p.state.PageSize = size
}
