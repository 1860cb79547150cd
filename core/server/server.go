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

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/safehtml"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/google/tabula/config"
	"github.com/google/tabula/core/cells"
	"github.com/google/tabula/core/models"
	"github.com/google/tabula/core/notify"
	"github.com/google/tabula/core/query"
	"github.com/google/tabula/core/rendering"
	"github.com/google/tabula/core/state"
	"github.com/google/tabula/core/tables"
	"github.com/google/tabula/core/users"
	"github.com/google/tabula/core/views"
)

// Server represents the application server with all its dependencies
type Server struct {
	dataModel  *models.DataModel
	renderer   *rendering.TableRenderer
	userStore  users.UserStore
	stateStore state.Store
	sink       notify.Sink

	title       string
	subtitle    string
	defaultUser string
	tables      config.TablesConfig

	mu        sync.Mutex
	instances map[string]*cacheEntry  // user:screen -> instance
	limiters  map[string]*rate.Limiter // screen -> fetch limiter
}

// cacheEntry guards one user's instance of a screen. Instances are not safe
// for concurrent use, so requests for the same user and screen take turns.
type cacheEntry struct {
	mu       sync.Mutex
	instance models.Instance
}

// NewServer creates a new server with the given data model
func NewServer(dataModel *models.DataModel, cfg config.Config) (*Server, error) {
	renderer, err := rendering.NewTableRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	return &Server{
		dataModel:   dataModel,
		renderer:    renderer,
		sink:        notify.Discard{},
		title:       "Tabula",
		subtitle:    "List screens",
		defaultUser: cfg.Users.DefaultUser,
		tables:      cfg.Tables,
		instances:   make(map[string]*cacheEntry),
		limiters:    make(map[string]*rate.Limiter),
	}, nil
}

// SetUserStore sets the user store for authentication
func (s *Server) SetUserStore(store users.UserStore) {
	s.userStore = store
}

// SetStateStore sets the store that persists view state across restarts.
func (s *Server) SetStateStore(store state.Store) {
	s.stateStore = store
}

// SetNotifySink sets the sink told about applied actions.
func (s *Server) SetNotifySink(sink notify.Sink) {
	s.sink = sink
}

// SetTitle sets the landing page headings.
func (s *Server) SetTitle(title, subtitle string) {
	s.title = title
	s.subtitle = subtitle
}

// makeCacheKey creates a cache key combining user and screen name
func (s *Server) makeCacheKey(userName, tableName string) string {
	if userName == "" {
		return tableName
	}
	return userName + ":" + tableName
}

// TableHandlerResult represents the result of handling a request
type TableHandlerResult struct {
	Error      error
	StatusCode int
	Message    string
	Redirect   string
}

func failed(code int, format string, args ...any) *TableHandlerResult {
	return &TableHandlerResult{StatusCode: code, Message: fmt.Sprintf(format, args...)}
}

// TimingCollector collects timing measurements for various operations
type TimingCollector struct {
	entries []timingEntry
	start   time.Time
}

type timingEntry struct {
	operation string
	duration  time.Duration
}

// NewTimingCollector creates a new timing collector
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{start: time.Now()}
}

// Record records a timing entry
func (tc *TimingCollector) Record(operation string, duration time.Duration) {
	tc.entries = append(tc.entries, timingEntry{operation: operation, duration: duration})
}

// Since records the time elapsed since start.
func (tc *TimingCollector) Since(operation string, start time.Time) {
	tc.Record(operation, time.Since(start))
}

// Total returns the time elapsed since the collector was created.
func (tc *TimingCollector) Total() time.Duration {
	return time.Since(tc.start)
}

// Log adds every entry and the total to e.
func (tc *TimingCollector) Log(e *zerolog.Event) *zerolog.Event {
	for _, t := range tc.entries {
		e = e.Dur(t.operation, t.duration)
	}
	return e.Dur("total", tc.Total())
}

// resolveUser returns the profile of name, falling back to the default user.
// Without a user store every name is an anonymous profile without
// permissions.
func (s *Server) resolveUser(name string) (*users.Profile, string) {
	if name == "" {
		name = s.defaultUser
	}
	if s.userStore == nil {
		return &users.Profile{Name: name}, name
	}
	return s.userStore.GetUser(name), name
}

// open resolves the screen and user of q and returns the user's instance
// entry, locked. The caller unlocks it.
func (s *Server) open(ctx context.Context, q *query.Query) (*cacheEntry, *users.Profile, *TableHandlerResult) {
	if q.Table == "" {
		return nil, nil, failed(http.StatusBadRequest, "Table parameter is required")
	}
	screen, ok := s.dataModel.GetScreen(q.Table)
	if !ok {
		return nil, nil, failed(http.StatusNotFound, "Table '%s' not found", q.Table)
	}
	user, name := s.resolveUser(q.User)
	if user == nil {
		return nil, nil, failed(http.StatusForbidden, "Unknown user '%s'", name)
	}
	q.User = name
	if !models.CanOpen(screen.Info(), user) {
		return nil, nil, failed(http.StatusForbidden, "User '%s' may not open '%s'", name, q.Table)
	}

	key := s.makeCacheKey(name, q.Table)
	s.mu.Lock()
	entry, ok := s.instances[key]
	if !ok {
		entry = &cacheEntry{}
		s.instances[key] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	if entry.instance == nil {
		inst, err := s.newInstance(ctx, screen, user)
		if err != nil {
			entry.mu.Unlock()
			return nil, nil, &TableHandlerResult{Error: err, StatusCode: http.StatusInternalServerError, Message: "Could not open table"}
		}
		entry.instance = inst
	}
	return entry, user, nil
}

func (s *Server) newInstance(ctx context.Context, screen models.Screen, user *users.Profile) (models.Instance, error) {
	info := screen.Info()
	inst, err := screen.NewInstance(models.InstanceOptions{
		User:         user,
		PageSize:     s.tables.DefaultPageSize,
		MultiSort:    s.tables.MultiSort,
		Limiter:      s.limiter(info.Name),
		FetchTimeout: s.tables.FetchTimeout,
	})
	if err != nil {
		return nil, err
	}
	if s.stateStore == nil {
		return inst, nil
	}
	snap, err := s.stateStore.Load(ctx, state.Key(user.Name, info.Name))
	switch {
	case errors.Is(err, state.ErrNotFound):
	case err != nil:
		log.Warn().Err(err).Str("screen", info.Name).Str("user", user.Name).Msg("could not load saved state")
	default:
		if err := inst.Restore(snap); err != nil {
			log.Warn().Err(err).Str("screen", info.Name).Str("user", user.Name).Msg("discarding saved state")
		}
	}
	return inst, nil
}

// limiter returns the fetch limiter shared by every instance of a screen.
func (s *Server) limiter(screen string) *rate.Limiter {
	if s.tables.FetchRate <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[screen]
	if !ok {
		burst := max(s.tables.FetchBurst, 1)
		l = rate.NewLimiter(rate.Limit(s.tables.FetchRate), burst)
		s.limiters[screen] = l
	}
	return l
}

func (s *Server) saveState(ctx context.Context, user, screen string, inst models.Instance) {
	if s.stateStore == nil {
		return
	}
	if err := s.stateStore.Save(ctx, state.Key(user, screen), inst.Snapshot()); err != nil {
		log.Warn().Err(err).Str("screen", screen).Str("user", user).Msg("could not save state")
	}
}

// HandleTableRequest processes a table request and writes the response
// Returns an error result if the request is invalid, nil on success
func (s *Server) HandleTableRequest(ctx context.Context, w io.Writer, requestURL *url.URL, setHeader func(key, value string)) *TableHandlerResult {
	timing := NewTimingCollector()

	parseStart := time.Now()
	q := query.NewQuery(requestURL)
	timing.Since("parse", parseStart)

	entry, _, res := s.open(ctx, q)
	if res != nil {
		return res
	}
	defer entry.mu.Unlock()
	inst := entry.instance

	applyStart := time.Now()
	if err := inst.Apply(ctx, q.Events); err != nil {
		if errors.Is(err, tables.ErrUnknownField) || errors.Is(err, tables.ErrInvalidPageSize) {
			return failed(http.StatusBadRequest, "%v", err)
		}
		log.Error().Err(err).Str("screen", q.Table).Str("user", q.User).Msg("loading table data failed")
	}
	timing.Since("apply", applyStart)
	if !q.Events.Empty() {
		s.saveState(ctx, q.User, q.Table, inst)
	}

	if q.Format == query.FormatText {
		text, err := inst.Text()
		if err != nil {
			return &TableHandlerResult{Error: err}
		}
		setHeader("Content-Type", "text/plain; charset=utf-8")
		_, err = io.WriteString(w, text)
		if err != nil {
			return &TableHandlerResult{Error: err}
		}
		return nil
	}

	vmStart := time.Now()
	viewModel := inst.ViewModel(q, s.tables.PageSizes)
	timing.Since("view_model", vmStart)

	renderStart := time.Now()
	setHeader("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, viewModel); err != nil {
		return &TableHandlerResult{Error: err}
	}
	timing.Since("render", renderStart)
	timing.Log(log.Debug()).Str("screen", q.Table).Str("user", q.User).Msg("table request")
	return nil
}

// HandleBulkRequest runs a bulk action on the current selection and
// redirects back to the table.
func (s *Server) HandleBulkRequest(ctx context.Context, requestURL *url.URL) *TableHandlerResult {
	q := query.NewQuery(requestURL)
	action := requestURL.Query().Get(query.ParamAction)
	if action == "" {
		return failed(http.StatusBadRequest, "Action parameter is required")
	}

	var event *notify.Notification
	defer func() { s.notify(ctx, event) }()

	entry, user, res := s.open(ctx, q)
	if res != nil {
		return res
	}
	defer entry.mu.Unlock()
	inst := entry.instance

	if res := s.authorize(inst, user, action); res != nil {
		return res
	}
	ids := inst.Selected()
	if len(ids) == 0 {
		return failed(http.StatusBadRequest, "No rows selected")
	}
	event, res = s.run(ctx, inst, q, action, ids)
	if res != nil {
		return res
	}
	inst.ClearSelection()
	return &TableHandlerResult{Redirect: tableURL(q)}
}

// HandleRowRequest shows the detail page of a visible row, or runs a row
// action on it and redirects back to the table.
func (s *Server) HandleRowRequest(ctx context.Context, w io.Writer, requestURL *url.URL, setHeader func(key, value string)) *TableHandlerResult {
	q := query.NewQuery(requestURL)
	params := requestURL.Query()
	id := params.Get(query.ParamID)
	if id == "" {
		return failed(http.StatusBadRequest, "Id parameter is required")
	}
	action := params.Get(query.ParamAction)

	var event *notify.Notification
	defer func() { s.notify(ctx, event) }()

	entry, user, res := s.open(ctx, q)
	if res != nil {
		return res
	}
	defer entry.mu.Unlock()
	inst := entry.instance

	if action == "" || action == models.ViewAction {
		if err := inst.Apply(ctx, query.Events{}); err != nil {
			log.Error().Err(err).Str("screen", q.Table).Str("user", q.User).Msg("loading table data failed")
		}
		vm, ok := inst.Activate(id, q)
		if !ok {
			return failed(http.StatusNotFound, "Row '%s' is not on the current page", id)
		}
		setHeader("Content-Type", "text/html; charset=utf-8")
		if err := s.renderer.RenderRow(w, vm); err != nil {
			return &TableHandlerResult{Error: err}
		}
		return nil
	}

	if res := s.authorize(inst, user, action); res != nil {
		return res
	}
	event, res = s.run(ctx, inst, q, action, []tables.RowID{tables.RowID(id)})
	if res != nil {
		return res
	}
	return &TableHandlerResult{Redirect: tableURL(q)}
}

func (s *Server) authorize(inst models.Instance, user *users.Profile, action string) *TableHandlerResult {
	permission, ok := inst.Permission(action)
	if !ok {
		return failed(http.StatusBadRequest, "Unknown action '%s'", action)
	}
	if !cells.Allowed(permission, users.Capability(user)) {
		return failed(http.StatusForbidden, "Action '%s' is not allowed", action)
	}
	return nil
}

// run runs action and returns the notification to send once the instance
// is unlocked.
func (s *Server) run(ctx context.Context, inst models.Instance, q *query.Query, action string, ids []tables.RowID) (*notify.Notification, *TableHandlerResult) {
	n, err := inst.Run(ctx, action, ids)
	if err != nil {
		return nil, &TableHandlerResult{Error: err, StatusCode: http.StatusInternalServerError, Message: fmt.Sprintf("Action '%s' failed", action)}
	}
	rowIDs := make([]string, len(ids))
	for i, id := range ids {
		rowIDs[i] = string(id)
	}
	event := notify.NewNotification(q.Table, action, q.User, rowIDs)
	event.Count = n
	return &event, nil
}

func (s *Server) notify(ctx context.Context, event *notify.Notification) {
	if event == nil {
		return
	}
	if err := s.sink.Notify(ctx, *event); err != nil {
		log.Error().Err(err).Str("action", event.Action).Str("screen", event.Screen).Msg("notification failed")
	}
}

func tableURL(q *query.Query) string {
	base := q.Base()
	base.Path = query.TablePath
	return base.ToURL()
}

// HandleLandingRequest renders the list of screens the user may open.
func (s *Server) HandleLandingRequest(w io.Writer, requestURL *url.URL, setHeader func(key, value string)) error {
	setHeader("Content-Type", "text/html; charset=utf-8")

	user, name := s.resolveUser(requestURL.Query().Get(query.ParamUser))
	vm := views.LandingViewModel{
		Title:    s.title,
		Subtitle: s.subtitle,
		User:     name,
		Tables:   s.dataModel.Landing(user),
	}
	if user == nil {
		vm.User = name + " (unknown)"
	}
	if lister, ok := s.userStore.(interface{ Names() []string }); ok {
		for _, n := range lister.Names() {
			vm.Users = append(vm.Users, views.UserLink{Name: n, URL: landingURL(n), Current: n == name})
		}
	}

	if err := s.renderer.RenderLanding(w, vm); err != nil {
		log.Error().Err(err).Msg("landing page rendering failed")
		return err
	}
	return nil
}

func landingURL(user string) safehtml.URL {
	return safehtml.URLSanitized("/?" + url.Values{query.ParamUser: {user}}.Encode())
}

// Handler returns the HTTP handler serving every page.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if err := s.HandleLandingRequest(w, r.URL, w.Header().Set); err != nil {
			log.Error().Err(err).Msg("landing request failed")
		}
	})
	mux.HandleFunc(query.TablePath, func(w http.ResponseWriter, r *http.Request) {
		s.writeResult(w, r, s.HandleTableRequest(r.Context(), w, r.URL, w.Header().Set))
	})
	mux.HandleFunc(query.BulkPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "Bulk actions must be posted", http.StatusMethodNotAllowed)
			return
		}
		s.writeResult(w, r, s.HandleBulkRequest(r.Context(), r.URL))
	})
	mux.HandleFunc(query.RowPath, func(w http.ResponseWriter, r *http.Request) {
		s.writeResult(w, r, s.HandleRowRequest(r.Context(), w, r.URL, w.Header().Set))
	})
	return mux
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res *TableHandlerResult) {
	if res == nil {
		return
	}
	if res.Redirect != "" {
		http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
		return
	}
	if res.Error != nil {
		log.Error().Err(res.Error).Str("path", r.URL.Path).Msg("request failed")
		if res.StatusCode == 0 {
			res.StatusCode = http.StatusInternalServerError
			res.Message = http.StatusText(res.StatusCode)
		}
	}
	if res.StatusCode != 0 {
		http.Error(w, res.Message, res.StatusCode)
	}
}
