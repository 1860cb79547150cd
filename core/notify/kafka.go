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

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// ErrSinkClosed is returned by Notify after Close.
var ErrSinkClosed = errors.New("notify sink is closed")

// KafkaConfig holds the Kafka producer settings.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	BatchSize    int           `yaml:"batch_size"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// RequiredAcks is 0, 1 or -1 for all replicas.
	RequiredAcks int `yaml:"required_acks"`
	// Async returns from Notify before the broker acknowledges the write.
	Async bool `yaml:"async"`
}

// Validate checks the producer settings.
func (c KafkaConfig) Validate() error {
	var errs []error
	if len(c.Brokers) == 0 {
		errs = append(errs, errors.New("at least one Kafka broker is required"))
	}
	if c.Topic == "" {
		errs = append(errs, errors.New("Kafka topic is required"))
	}
	if c.RequiredAcks < -1 || c.RequiredAcks > 1 {
		errs = append(errs, fmt.Errorf("invalid required_acks %d", c.RequiredAcks))
	}
	return errors.Join(errs...)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes events as JSON messages keyed by screen, so the events
// of one screen stay ordered within a partition.
type KafkaSink struct {
	mu     sync.RWMutex
	writer messageWriter
	closed bool
}

// NewKafkaSink returns a sink writing to cfg.Topic.
func NewKafkaSink(cfg KafkaConfig) *KafkaSink {
	log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Bool("async", cfg.Async).Msg("initializing Kafka notify sink")
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		MaxAttempts:  3,
		Async:        cfg.Async,
	}
	if cfg.Async {
		w.Completion = func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Error().Err(err).Int("messages", len(msgs)).Msg("failed to publish bulk action events")
			}
		}
	}
	return &KafkaSink{writer: w}
}

func (k *KafkaSink) Notify(ctx context.Context, n Notification) error {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return ErrSinkClosed
	}
	msg, err := buildMessage(n)
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", n.ID, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (k *KafkaSink) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true
	return k.writer.Close()
}

func buildMessage(n Notification) (kafka.Message, error) {
	value, err := json.Marshal(n)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(n.Screen),
		Value: value,
		Time:  n.Time,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(n.ID)},
			{Key: "action", Value: []byte(n.Action)},
		},
	}, nil
}
