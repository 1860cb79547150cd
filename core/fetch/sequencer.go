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
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/google/tabula/core/tables"
)

// ErrStaleResponse is returned by Complete for a response that was overtaken
// by a newer request. The response has been discarded.
var ErrStaleResponse = errors.New("stale response discarded")

type options struct {
	limiter *rate.Limiter
}

// Option configures a Sequencer.
type Option func(*options)

// WithRateLimit throttles Load with l.
func WithRateLimit(l *rate.Limiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}

// Sequencer feeds an engine from a provider so that only the response to the
// most recently issued request updates the engine. It is safe for
// concurrent use; it holds its lock whenever it touches the engine.
type Sequencer[T any] struct {
	mu       sync.Mutex
	engine   *tables.Engine[T]
	provider Provider[T]
	limiter  *rate.Limiter
	latest   uint64
}

// NewSequencer returns a sequencer feeding engine from provider.
func NewSequencer[T any](engine *tables.Engine[T], provider Provider[T], opts ...Option) *Sequencer[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return &Sequencer[T]{engine: engine, provider: provider, limiter: o.limiter}
}

// Begin issues a new request for the engine's current state and marks the
// engine as loading. Any request issued before is now stale.
func (s *Sequencer[T]) Begin() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	p := ParamsFor(s.engine)
	p.Sequence = s.latest
	p.RequestID = uuid.NewString()
	s.engine.SetLoading(true)
	return p
}

// Complete applies the outcome of the request p. Responses to stale requests
// are dropped with ErrStaleResponse. A failed request leaves the engine
// without data and returns err.
func (s *Sequencer[T]) Complete(p Params, res Result[T], err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Sequence != s.latest {
		log.Debug().Str("request_id", p.RequestID).Uint64("sequence", p.Sequence).Uint64("latest", s.latest).Msg("discarding stale response")
		return ErrStaleResponse
	}
	s.engine.SetLoading(false)
	if err != nil {
		s.engine.SetData(nil, 0)
		return err
	}
	s.engine.SetData(res.Content, res.TotalCount)
	return nil
}

// Load fetches data for the engine's current state and applies it.
func (s *Sequencer[T]) Load(ctx context.Context) error {
	p := s.Begin()
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return s.Complete(p, Result[T]{}, err)
		}
	}
	res, err := s.provider.Fetch(ctx, p)
	if err != nil {
		log.Error().Err(err).Str("request_id", p.RequestID).Msg("fetch failed")
	}
	return s.Complete(p, res, err)
}

// Latest returns the sequence number of the most recent request.
func (s *Sequencer[T]) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}
