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

// Package state persists the view state of list screens per user, so sort,
// filter and page choices survive restarts and reach every server replica.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/tabula/core/tables"
)

// ErrNotFound is returned by Load when no state is stored under a key.
var ErrNotFound = errors.New("state not found")

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("state store is closed")

// Snapshot is the persisted view state of one screen.
type Snapshot = tables.Snapshot

// Store loads and saves snapshots by key.
type Store interface {
	Load(ctx context.Context, key string) (Snapshot, error)
	Save(ctx context.Context, key string, s Snapshot) error
	Close() error
}

// KeyPrefix namespaces keys in shared backends.
const KeyPrefix = "tabula:state:"

// Key returns the storage key of a user's state on a screen.
func Key(user, screen string) string {
	if user == "" {
		user = "anonymous"
	}
	return KeyPrefix + strings.ReplaceAll(user, ":", "_") + ":" + screen
}

func encode(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return data, nil
}

func decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode state: %w", err)
	}
	return s, nil
}
