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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/google/tabula/core/cells"
	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/fetch"
	"github.com/google/tabula/core/query"
	"github.com/google/tabula/core/state"
	"github.com/google/tabula/core/tables"
	"github.com/google/tabula/core/users"
	"github.com/google/tabula/core/views"
)

// ActionsColumn is the id of the row action menu column.
const ActionsColumn = "actions"

// ViewAction opens the detail page of a row. It needs no handler.
const ViewAction = "view"

// loadFailed is shown in place of rows when the last fetch failed.
const loadFailed = "The data could not be loaded. Try again later."

// ActionFunc runs a bulk or row action on the rows ids and returns the
// number of rows it affected.
type ActionFunc func(ctx context.Context, ids []tables.RowID) (int, error)

// Definition describes a list screen over rows of type T.
type Definition[T any] struct {
	Info
	Columns       []columns.Descriptor[T]
	Fields        columns.Fields[T]
	RowID         func(row T) tables.RowID
	SelectionMode tables.SelectionMode
	SingleSort    bool
	PageSize      int // overrides the configured default when set
	InitialSort   []tables.SortKey
	Toolbar       *cells.Cell
	// RowActions make up the menu of an extra actions column.
	RowActions  []cells.ActionDef
	BulkActions []tables.BulkAction
	// Actions handles every bulk and row action by name. ViewAction needs
	// no handler.
	Actions  map[string]ActionFunc
	Provider fetch.Provider[T]
}

// InstanceOptions are the per-user settings of a new instance.
type InstanceOptions struct {
	User         *users.Profile
	PageSize     int
	MultiSort    bool
	Limiter      *rate.Limiter
	FetchTimeout time.Duration
}

// ListScreen is a Screen built from a Definition.
type ListScreen[T any] struct {
	def Definition[T]
}

// NewListScreen checks def and returns its screen.
func NewListScreen[T any](def Definition[T]) (*ListScreen[T], error) {
	if def.Name == "" {
		return nil, errors.New("screen has no name")
	}
	if def.Provider == nil {
		return nil, fmt.Errorf("screen %q has no provider", def.Name)
	}
	if def.Title == "" {
		def.Title = def.Name
	}
	if _, err := columns.Validate(def.Columns, def.Fields); err != nil {
		return nil, fmt.Errorf("screen %q: %w", def.Name, err)
	}
	for _, a := range def.BulkActions {
		if def.Actions[a.Name] == nil {
			return nil, fmt.Errorf("screen %q: bulk action %q has no handler", def.Name, a.Name)
		}
	}
	for _, a := range def.RowActions {
		if a.Name != ViewAction && def.Actions[a.Name] == nil {
			return nil, fmt.Errorf("screen %q: row action %q has no handler", def.Name, a.Name)
		}
	}
	return &ListScreen[T]{def: def}, nil
}

// Info returns the screen metadata.
func (s *ListScreen[T]) Info() Info {
	return s.def.Info
}

// Columns returns the metadata of the defined columns.
func (s *ListScreen[T]) Columns() []ColumnMeta {
	metas := make([]ColumnMeta, 0, len(s.def.Columns))
	for _, c := range s.def.Columns {
		metas = append(metas, ColumnMeta{ID: c.ID, Header: c.RenderHeader().String(), Sortable: c.Sortable, Width: c.Width})
	}
	return metas
}

// NewInstance creates the engine of one user. It holds no data until the
// first Refresh.
func (s *ListScreen[T]) NewInstance(opts InstanceOptions) (Instance, error) {
	userName := ""
	if opts.User != nil {
		userName = opts.User.Name
	}
	logger := log.With().Str("screen", s.def.Name).Str("user", userName).Logger()
	can := users.Capability(opts.User)

	cols := s.def.Columns
	if len(s.def.RowActions) > 0 {
		cols = append(cols[:len(cols):len(cols)], columns.Descriptor[T]{
			ID:     ActionsColumn,
			Header: "Actions",
			Cell:   cells.ActionMenu[T](s.def.RowActions, can),
		})
	}
	pageSize := opts.PageSize
	if s.def.PageSize > 0 {
		pageSize = s.def.PageSize
	}

	engine, err := tables.New(cols, tables.Config[T]{
		RowID:             s.def.RowID,
		Fields:            s.def.Fields,
		SelectionMode:     s.def.SelectionMode,
		MultiSort:         opts.MultiSort && !s.def.SingleSort,
		PageSize:          pageSize,
		ServerSide:        s.def.ServerSide,
		InitialSort:       s.def.InitialSort,
		Toolbar:           s.def.Toolbar,
		BulkActions:       s.def.BulkActions,
		EnableBulkActions: len(s.def.BulkActions) > 0,
		Capability:        can,
		Logger:            &logger,
	})
	if err != nil {
		return nil, fmt.Errorf("screen %q: %w", s.def.Name, err)
	}

	var seqOpts []fetch.Option
	if opts.Limiter != nil {
		seqOpts = append(seqOpts, fetch.WithRateLimit(opts.Limiter))
	}
	inst := &listInstance[T]{
		def:     &s.def,
		engine:  engine,
		seq:     fetch.NewSequencer(engine, s.def.Provider, seqOpts...),
		timeout: opts.FetchTimeout,
		log:     logger,
	}
	engine.OnSortChange(func(keys []tables.SortKey) {
		inst.log.Debug().Int("keys", len(keys)).Msg("sort changed")
		inst.markStale()
	})
	engine.OnFilterChange(func(filters []tables.Filter) {
		inst.log.Debug().Int("filters", len(filters)).Msg("filters changed")
		inst.markStale()
	})
	engine.OnPageChange(func(p tables.Pagination) {
		inst.log.Debug().Int("page", p.PageIndex).Int("size", p.PageSize).Msg("page changed")
		inst.markStale()
	})
	engine.OnSelectionChange(func(ids []tables.RowID) {
		inst.log.Debug().Int("selected", len(ids)).Msg("selection changed")
	})
	engine.OnRowActivate(func(row T) {
		inst.activated = &row
	})
	return inst, nil
}

type listInstance[T any] struct {
	def     *Definition[T]
	engine  *tables.Engine[T]
	seq     *fetch.Sequencer[T]
	timeout time.Duration
	log     zerolog.Logger

	loaded    bool
	stale     bool // server-side view state changed since the last fetch
	lastErr   error
	activated *T
}

func (i *listInstance[T]) markStale() {
	if i.def.ServerSide {
		i.stale = true
	}
}

func (i *listInstance[T]) Info() Info {
	return i.def.Info
}

func (i *listInstance[T]) Refresh(ctx context.Context) error {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}
	i.stale = false
	start := time.Now()
	err := i.seq.Load(ctx)
	if errors.Is(err, fetch.ErrStaleResponse) {
		return nil
	}
	i.loaded = true
	i.lastErr = err
	if err != nil {
		return err
	}
	i.log.Debug().Dur("elapsed", time.Since(start)).Int("total", i.engine.Pagination().TotalCount).Msg("data loaded")
	return nil
}

// Apply applies the events of one request. Page and selection events refer
// to the data the user saw, so the first request loads it before applying
// them.
func (i *listInstance[T]) Apply(ctx context.Context, ev query.Events) error {
	if !i.loaded {
		if err := i.Refresh(ctx); err != nil {
			return err
		}
	}
	e := i.engine
	if ev.ClearFilters {
		e.ClearFilters()
	}
	for _, f := range ev.Filters {
		if err := e.SetFilter(f.Field, i.parseFilter(f.Value)); err != nil {
			return err
		}
	}
	if ev.Sort != "" {
		e.ToggleSort(ev.Sort)
	}
	if ev.Size > 0 {
		if err := e.SetPageSize(ev.Size); err != nil {
			return err
		}
	}
	if ev.Page > 0 {
		e.SetPageIndex(ev.Page - 1)
	}
	if i.stale {
		if err := i.Refresh(ctx); err != nil {
			return err
		}
	}

	if len(ev.Select) > 0 {
		visible := make(map[tables.RowID]bool)
		for _, id := range e.VisibleIDs() {
			visible[id] = true
		}
		for _, id := range e.Selected() {
			visible[id] = true
		}
		for _, id := range ev.Select {
			if !visible[tables.RowID(id)] {
				i.log.Debug().Str("row", id).Msg("ignoring selection of a row that is not shown")
				continue
			}
			e.ToggleRow(tables.RowID(id))
		}
	}
	if ev.SelectAll {
		e.ToggleAllVisible()
	}
	if ev.ClearSelection {
		e.ClearSelection()
	}
	return nil
}

// parseFilter parses a filter typed by the user. Server-side providers only
// filter by contains, equality and ranges, so match expressions are taken
// as plain text there.
func (i *listInstance[T]) parseFilter(s string) any {
	v := ParseFilter(s)
	if _, ok := v.(tables.Match); ok && i.def.ServerSide {
		return strings.TrimSpace(s)
	}
	return v
}

func (i *listInstance[T]) ViewModel(q *query.Query, pageSizes []int) views.TableViewModel {
	opts := views.Options{
		Title:       i.def.Title,
		Description: i.def.Description,
		PageSizes:   pageSizes,
	}
	if i.lastErr != nil {
		opts.Error = loadFailed
	}
	return views.BuildViewModel(i.engine, q, opts)
}

func (i *listInstance[T]) Text() (string, error) {
	return i.engine.ToASCII()
}

func (i *listInstance[T]) Snapshot() state.Snapshot {
	return i.engine.Snapshot()
}

func (i *listInstance[T]) Restore(s state.Snapshot) error {
	if err := i.engine.Restore(s); err != nil {
		return err
	}
	i.markStale()
	return nil
}

func (i *listInstance[T]) Activate(id string, q *query.Query) (views.DetailViewModel, bool) {
	i.activated = nil
	if !i.engine.ActivateRow(tables.RowID(id)) || i.activated == nil {
		return views.DetailViewModel{}, false
	}
	return views.BuildDetailViewModel(i.def.Title, id, i.def.Columns, *i.activated, q), true
}

func (i *listInstance[T]) Selected() []tables.RowID {
	return i.engine.Selected()
}

func (i *listInstance[T]) ClearSelection() {
	i.engine.ClearSelection()
}

func (i *listInstance[T]) Permission(action string) (string, bool) {
	for _, a := range i.def.BulkActions {
		if a.Name == action {
			return a.Permission, true
		}
	}
	for _, a := range i.def.RowActions {
		if a.Name == action {
			return a.Permission, true
		}
	}
	return "", false
}

// Run runs the action handler and refetches the data it may have changed.
func (i *listInstance[T]) Run(ctx context.Context, action string, ids []tables.RowID) (int, error) {
	run := i.def.Actions[action]
	if run == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	n, err := run(ctx, ids)
	if err != nil {
		return n, fmt.Errorf("action %q: %w", action, err)
	}
	i.log.Info().Str("action", action).Int("rows", n).Msg("action applied")
	if err := i.Refresh(ctx); err != nil {
		i.log.Error().Err(err).Msg("refresh after action failed")
	}
	return n, nil
}
