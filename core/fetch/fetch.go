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

// Package fetch is the boundary between a table engine and the dataset
// providers that feed it. A Sequencer tags every request with an increasing
// sequence number and only lets the response of the latest request reach
// the engine.
package fetch

//go:generate mockgen -source=fetch.go -destination=provider_mock.go -package=fetch Provider

import (
	"context"

	"github.com/google/tabula/core/tables"
)

// Params describes the page of data requested from a provider.
type Params struct {
	RequestID string
	Sequence  uint64
	PageIndex int
	PageSize  int
	Sort      []tables.SortKey
	Filters   []tables.Filter
}

// Offset returns the index of the first requested row.
func (p Params) Offset() int {
	return p.PageIndex * p.PageSize
}

// Result is a provider response. Content is the requested page, or the full
// dataset for providers feeding a client-side engine. TotalCount is the size
// of the whole filtered result.
type Result[T any] struct {
	Content    []T
	TotalCount int
}

// Provider supplies rows for a set of request parameters.
type Provider[T any] interface {
	Fetch(ctx context.Context, params Params) (Result[T], error)
}

// ProviderFunc adapts a function to a Provider.
type ProviderFunc[T any] func(ctx context.Context, params Params) (Result[T], error)

// Fetch calls f.
func (f ProviderFunc[T]) Fetch(ctx context.Context, params Params) (Result[T], error) {
	return f(ctx, params)
}

// ParamsFor returns the request parameters matching the engine's current
// sort, filter and page state.
func ParamsFor[T any](e *tables.Engine[T]) Params {
	p := e.Pagination()
	return Params{
		PageIndex: p.PageIndex,
		PageSize:  p.PageSize,
		Sort:      e.SortKeys(),
		Filters:   e.Filters(),
	}
}
