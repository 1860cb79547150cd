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

// Package datasources contains the dataset providers behind list screens:
// an in-memory provider for client-side tables, a MySQL provider for
// server-side tables, and CSV loading of seed data.
package datasources

import (
	"context"
	"slices"
	"sync"

	"github.com/google/tabula/core/fetch"
)

// Memory serves a full dataset held in memory. The engine it feeds filters,
// sorts and pages locally, so request parameters are ignored.
type Memory[T any] struct {
	mu   sync.RWMutex
	rows []T
}

// NewMemory returns a provider serving rows.
func NewMemory[T any](rows []T) *Memory[T] {
	return &Memory[T]{rows: rows}
}

// Fetch returns a copy of the whole dataset.
func (m *Memory[T]) Fetch(ctx context.Context, _ fetch.Params) (fetch.Result[T], error) {
	if err := ctx.Err(); err != nil {
		return fetch.Result[T]{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fetch.Result[T]{Content: slices.Clone(m.rows), TotalCount: len(m.rows)}, nil
}

// Replace swaps the dataset.
func (m *Memory[T]) Replace(rows []T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = rows
}

// Update applies fn to every row and returns how many rows it changed.
func (m *Memory[T]) Update(fn func(row *T) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for i := range m.rows {
		if fn(&m.rows[i]) {
			n++
		}
	}
	return n
}
