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

// Package notify publishes the outcome of bulk actions so other systems can
// follow what users did to their records.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notification describes one applied bulk or row action.
type Notification struct {
	ID      string    `json:"id"`
	Screen  string    `json:"screen"`
	Action  string    `json:"action"`
	User    string    `json:"user"`
	RowIDs  []string  `json:"row_ids"`
	Count   int       `json:"count"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// NewNotification returns a notification with a fresh id and the current time.
func NewNotification(screen, action, user string, rowIDs []string) Notification {
	return Notification{
		ID:     uuid.NewString(),
		Screen: screen,
		Action: action,
		User:   user,
		RowIDs: rowIDs,
		Count:  len(rowIDs),
		Time:   time.Now().UTC(),
	}
}

// Sink receives events.
type Sink interface {
	Notify(ctx context.Context, n Notification) error
	Close() error
}

// Sink types.
const (
	TypeNone  = "none"
	TypeLog   = "log"
	TypeKafka = "kafka"
)

// Config selects and configures a sink.
type Config struct {
	Type  string      `yaml:"type"`
	Kafka KafkaConfig `yaml:"kafka"`
}

// Validate checks the settings of the selected sink.
func (c Config) Validate() error {
	switch c.Type {
	case "", TypeNone, TypeLog:
		return nil
	case TypeKafka:
		return c.Kafka.Validate()
	}
	return fmt.Errorf("unsupported notify type: %s", c.Type)
}

// New builds the sink selected by cfg. An empty type logs events.
func New(cfg Config) (Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case TypeNone:
		return Discard{}, nil
	case TypeKafka:
		return NewKafkaSink(cfg.Kafka), nil
	}
	return LogSink{}, nil
}

// LogSink writes events to the global logger.
type LogSink struct{}

func (LogSink) Notify(_ context.Context, n Notification) error {
	log.Info().
		Str("event", n.ID).
		Str("screen", n.Screen).
		Str("action", n.Action).
		Str("user", n.User).
		Int("count", n.Count).
		Msg("bulk action applied")
	return nil
}

func (LogSink) Close() error { return nil }

// Discard drops every event.
type Discard struct{}

func (Discard) Notify(context.Context, Notification) error { return nil }

func (Discard) Close() error { return nil }

// Multi fans an event out to several sinks and joins their errors.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Notify(ctx, n))
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
