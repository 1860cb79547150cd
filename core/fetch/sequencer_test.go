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

package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/time/rate"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/tables"
)

type opportunity struct {
	ID    string
	Stage string
}

func newEngine(t *testing.T) *tables.Engine[opportunity] {
	t.Helper()
	e, err := tables.New([]columns.Descriptor[opportunity]{
		{ID: "id", Accessor: func(o opportunity) any { return o.ID }, Sortable: true},
		{ID: "stage", Accessor: func(o opportunity) any { return o.Stage }},
	}, tables.Config[opportunity]{
		ServerSide: true,
		PageSize:   2,
		RowID:      func(o opportunity) tables.RowID { return tables.RowID(o.ID) },
	})
	require.NoError(t, err)
	return e
}

func visible(e *tables.Engine[opportunity]) []tables.RowID {
	return e.VisibleIDs()
}

func TestLoad(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockProvider[opportunity](ctrl)
	e := newEngine(t)
	require.NoError(t, e.SetFilter("stage", "won"))
	e.ToggleSort("id")

	provider.EXPECT().
		Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p Params) (Result[opportunity], error) {
			assert.Equal(t, uint64(1), p.Sequence)
			assert.NotEmpty(t, p.RequestID)
			assert.Equal(t, 2, p.PageSize)
			assert.Equal(t, []tables.Filter{{Field: "stage", Value: "won"}}, p.Filters)
			assert.Equal(t, "id", p.Sort[0].Field)
			assert.True(t, e.Loading(), "engine is loading while the request is in flight")
			return Result[opportunity]{Content: []opportunity{{"o1", "won"}, {"o2", "won"}}, TotalCount: 7}, nil
		})

	s := NewSequencer(e, provider)
	require.NoError(t, s.Load(context.Background()))

	assert.False(t, e.Loading())
	assert.Equal(t, []tables.RowID{"o1", "o2"}, visible(e))
	assert.Equal(t, 4, e.Pagination().TotalPages())
}

func TestStaleResponseDiscarded(t *testing.T) {
	e := newEngine(t)
	s := NewSequencer[opportunity](e, nil)

	first := s.Begin()
	e.SetPageIndex(1)
	second := s.Begin()
	assert.Equal(t, first.Sequence+1, second.Sequence)

	require.NoError(t, s.Complete(second, Result[opportunity]{Content: []opportunity{{"new", "open"}}, TotalCount: 3}, nil))
	err := s.Complete(first, Result[opportunity]{Content: []opportunity{{"old", "open"}}, TotalCount: 3}, nil)

	assert.ErrorIs(t, err, ErrStaleResponse)
	assert.Equal(t, []tables.RowID{"new"}, visible(e))
	assert.Equal(t, second.Sequence, s.Latest())
}

func TestResponseOvertakenInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockProvider[opportunity](ctrl)
	e := newEngine(t)
	s := NewSequencer(e, provider)

	provider.EXPECT().
		Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, Params) (Result[opportunity], error) {
			s.Begin() // the user changed the sort while this request was in flight
			return Result[opportunity]{Content: []opportunity{{"late", "open"}}, TotalCount: 1}, nil
		})

	assert.ErrorIs(t, s.Load(context.Background()), ErrStaleResponse)
	assert.Empty(t, visible(e))
	assert.True(t, e.Loading(), "the newer request is still pending")
}

func TestFetchErrorShowsEmptyState(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockProvider[opportunity](ctrl)
	e := newEngine(t)
	e.SetData([]opportunity{{"o1", "won"}}, 1)
	boom := errors.New("connection refused")

	provider.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(Result[opportunity]{}, boom)

	s := NewSequencer(e, provider)
	assert.ErrorIs(t, s.Load(context.Background()), boom)
	assert.Equal(t, tables.StatusEmpty, e.Status())
}

func TestRateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockProvider[opportunity](ctrl)
	e := newEngine(t)

	s := NewSequencer(e, provider, WithRateLimit(rate.NewLimiter(0, 0)))
	assert.Error(t, s.Load(context.Background()))
	assert.False(t, e.Loading())
}

func TestProviderFunc(t *testing.T) {
	var p Provider[opportunity] = ProviderFunc[opportunity](func(_ context.Context, p Params) (Result[opportunity], error) {
		return Result[opportunity]{TotalCount: p.Offset()}, nil
	})
	res, err := p.Fetch(context.Background(), Params{PageIndex: 3, PageSize: 25})
	require.NoError(t, err)
	assert.Equal(t, 75, res.TotalCount)
}
