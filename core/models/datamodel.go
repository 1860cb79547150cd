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

// Package models holds the list screens served by the application. A Screen
// is a named table definition; every user gets their own Instance of it with
// its own engine, selection and view state.
package models

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/tabula/core/cells"
	"github.com/google/tabula/core/query"
	"github.com/google/tabula/core/state"
	"github.com/google/tabula/core/tables"
	"github.com/google/tabula/core/users"
	"github.com/google/tabula/core/views"
)

var (
	ErrDuplicateScreen = errors.New("duplicate screen")
	ErrUnknownAction   = errors.New("unknown action")
)

// Info is the landing page metadata of a screen.
type Info struct {
	Name        string
	Title       string
	Description string
	Categories  []string
	// Domains limits the screen to users of one of the domains. Empty means
	// every user.
	Domains []string
	// Permission is required to open the screen. Empty means none.
	Permission string
	ServerSide bool
}

// Mode returns "server" for server-side screens and "client" otherwise.
func (i Info) Mode() string {
	if i.ServerSide {
		return "server"
	}
	return "client"
}

// ColumnMeta describes one column of a screen.
type ColumnMeta struct {
	ID       string
	Header   string
	Sortable bool
	Width    int
}

// Screen is a registered list screen.
type Screen interface {
	Info() Info
	Columns() []ColumnMeta
	NewInstance(opts InstanceOptions) (Instance, error)
}

// Instance is one user's live view of a screen. Instances are not safe for
// concurrent use.
type Instance interface {
	Info() Info
	// Refresh fetches data for the current view state.
	Refresh(ctx context.Context) error
	// Apply applies the events of a request and refetches when the view
	// state requires it.
	Apply(ctx context.Context, ev query.Events) error
	ViewModel(q *query.Query, pageSizes []int) views.TableViewModel
	Text() (string, error)
	Snapshot() state.Snapshot
	Restore(s state.Snapshot) error
	// Activate returns the detail page of a visible row.
	Activate(id string, q *query.Query) (views.DetailViewModel, bool)
	Selected() []tables.RowID
	ClearSelection()
	// Permission returns the permission gating action and whether the screen
	// knows the action at all.
	Permission(action string) (string, bool)
	// Run runs action on ids and returns the number of rows affected.
	Run(ctx context.Context, action string, ids []tables.RowID) (int, error)
}

// DataModel is the registry of screens.
type DataModel struct {
	mu      sync.RWMutex
	screens map[string]Screen
}

// NewDataModel creates an empty registry.
func NewDataModel() *DataModel {
	return &DataModel{screens: make(map[string]Screen)}
}

// AddScreen registers s under its name.
func (dm *DataModel) AddScreen(s Screen) error {
	name := s.Info().Name
	if name == "" {
		return errors.New("screen has no name")
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if _, ok := dm.screens[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateScreen, name)
	}
	dm.screens[name] = s
	return nil
}

// GetScreen returns the screen registered under name.
func (dm *DataModel) GetScreen(name string) (Screen, bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	s, ok := dm.screens[name]
	return s, ok
}

// GetAllScreens returns every screen ordered by name.
func (dm *DataModel) GetAllScreens() []Screen {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	all := make([]Screen, 0, len(dm.screens))
	for _, s := range dm.screens {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Info().Name < all[j].Info().Name
	})
	return all
}

// CanOpen reports whether user may open the screen described by info.
func CanOpen(info Info, user *users.Profile) bool {
	return users.HasAnyDomain(user, info.Domains) && cells.Allowed(info.Permission, users.Capability(user))
}

// VisibleScreens returns the screens user may open, ordered by name.
func (dm *DataModel) VisibleScreens(user *users.Profile) []Screen {
	var visible []Screen
	for _, s := range dm.GetAllScreens() {
		if CanOpen(s.Info(), user) {
			visible = append(visible, s)
		}
	}
	return visible
}

// Landing builds the landing page entries of the screens user may open.
func (dm *DataModel) Landing(user *users.Profile) []views.TableInfo {
	name := ""
	if user != nil {
		name = user.Name
	}
	var infos []views.TableInfo
	for _, s := range dm.VisibleScreens(user) {
		info := s.Info()
		infos = append(infos, views.TableInfo{
			Name:        info.Title,
			Description: info.Description,
			URL:         query.TableURL(info.Name, name),
			ColumnCount: len(s.Columns()),
			Categories:  strings.Join(info.Categories, ", "),
			Mode:        info.Mode(),
		})
	}
	return infos
}
