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
	"fmt"
	"sort"
	"sync"
	"time"
)

// Config selects and configures a state store.
type Config struct {
	// Type is a registered store type: memory, redis or dynamodb.
	Type string `yaml:"type"`
	// TTL expires state not saved for this long. Zero keeps it forever.
	TTL      time.Duration  `yaml:"ttl"`
	Redis    RedisConfig    `yaml:"redis"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
}

// Factory builds one type of store.
type Factory interface {
	Type() string
	Validate(cfg Config) error
	Create(ctx context.Context, cfg Config) (Store, error)
}

var (
	factories   = make(map[string]Factory)
	factoriesMu sync.RWMutex
)

// RegisterFactory registers a store factory. It panics on duplicates.
func RegisterFactory(f Factory) {
	if f == nil || f.Type() == "" {
		panic("state: factory must have a type")
	}
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, exists := factories[f.Type()]; exists {
		panic(fmt.Sprintf("state: factory for type %q is already registered", f.Type()))
	}
	factories[f.Type()] = f
}

// Create validates cfg and builds the store of its type. An empty type
// selects the memory store.
func Create(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Type == "" {
		cfg.Type = MemoryType
	}
	factoriesMu.RLock()
	f, ok := factories[cfg.Type]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported state store type: %s", cfg.Type)
	}
	if err := f.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", cfg.Type, err)
	}
	return f.Create(ctx, cfg)
}

// RegisteredTypes returns the sorted registered store types.
func RegisteredTypes() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	types := make([]string, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
