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

package state

import (
	"context"
	"sync"
	"time"
)

// MemoryType is the type name of the in-process store.
const MemoryType = "memory"

func init() {
	RegisterFactory(memoryFactory{})
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps state in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
	closed  bool
}

// NewMemoryStore returns an empty store. A positive ttl expires entries.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Snapshot{}, ErrClosed
	}
	e, ok := m.entries[key]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, key)
		return Snapshot{}, ErrNotFound
	}
	return decode(e.data)
}

func (m *MemoryStore) Save(_ context.Context, key string, s Snapshot) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	e := memoryEntry{data: data}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type memoryFactory struct{}

func (memoryFactory) Type() string { return MemoryType }

func (memoryFactory) Validate(Config) error { return nil }

func (memoryFactory) Create(_ context.Context, cfg Config) (Store, error) {
	return NewMemoryStore(cfg.TTL), nil
}
