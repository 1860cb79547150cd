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
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewNotification(t *testing.T) {
	e := NewNotification("contracts", "archive", "ana", []string{"C-1", "C-2"})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, 2, e.Count)
	assert.False(t, e.Time.IsZero())
}

func TestKafkaSink(t *testing.T) {
	require := require.New(t)
	w := &recordingWriter{}
	sink := &KafkaSink{writer: w}
	e := NewNotification("contracts", "archive", "ana", []string{"C-1"})

	require.NoError(sink.Notify(context.Background(), e))
	require.Len(w.msgs, 1)
	msg := w.msgs[0]
	require.Equal("contracts", string(msg.Key))
	require.Equal(e.ID, string(msg.Headers[0].Value))
	require.Equal("archive", string(msg.Headers[1].Value))

	var got Notification
	require.NoError(json.Unmarshal(msg.Value, &got))
	require.Equal(e.RowIDs, got.RowIDs)
	require.Equal("ana", got.User)

	w.err = errors.New("broker down")
	require.ErrorContains(sink.Notify(context.Background(), e), "broker down")

	require.NoError(sink.Close())
	require.True(w.closed)
	require.ErrorIs(sink.Notify(context.Background(), e), ErrSinkClosed)
	require.NoError(sink.Close())
}

func TestNew(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, LogSink{}, s)

	s, err = New(Config{Type: TypeNone})
	require.NoError(t, err)
	assert.IsType(t, Discard{}, s)

	_, err = New(Config{Type: TypeKafka})
	assert.ErrorContains(t, err, "broker")
	assert.ErrorContains(t, err, "topic")

	_, err = New(Config{Type: "sqs"})
	assert.Error(t, err)
}

type failingSink struct{ Discard }

func (failingSink) Notify(context.Context, Notification) error { return errors.New("failed") }

func TestMulti(t *testing.T) {
	m := Multi{Discard{}, failingSink{}, LogSink{}}
	assert.EqualError(t, m.Notify(context.Background(), Notification{}), "failed")
	assert.NoError(t, m.Close())
}
