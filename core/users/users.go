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

// Package users holds user profiles and the permission checks that gate
// screens, row actions and bulk actions.
package users

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/google/tabula/core/cells"
)

// Wildcard grants every permission.
const Wildcard = "*"

// ProfileFileName is the name of the profile file in each user directory.
const ProfileFileName = "profile.yaml"

// Profile describes one user.
type Profile struct {
	Name        string   `yaml:"name"`
	DisplayName string   `yaml:"display_name"`
	Domains     []string `yaml:"domains"`
	Permissions []string `yaml:"permissions"`
}

// UserStore defines the interface for accessing user profiles.
type UserStore interface {
	// GetUser returns a user profile by name, or nil if not found.
	GetUser(name string) *Profile
}

// HasPermission reports whether user holds permission.
func HasPermission(user *Profile, permission string) bool {
	if user == nil {
		return false
	}
	for _, p := range user.Permissions {
		if p == permission || p == Wildcard {
			return true
		}
	}
	return false
}

// Capability returns the permission check of user for cell and toolbar
// action gating. A nil user holds no permissions.
func Capability(user *Profile) cells.Capability {
	return func(permission string) bool {
		return HasPermission(user, permission)
	}
}

// HasDomain checks if a user has access to a given domain.
func HasDomain(user *Profile, domain string) bool {
	if user == nil {
		return false
	}
	return slices.Contains(user.Domains, domain) || slices.Contains(user.Domains, Wildcard)
}

// HasAnyDomain checks if a user has access to any of the given domains. An
// empty domain list is open to everyone.
func HasAnyDomain(user *Profile, domains []string) bool {
	if len(domains) == 0 {
		return true
	}
	for _, d := range domains {
		if HasDomain(user, d) {
			return true
		}
	}
	return false
}

// FileStore manages user profiles loaded from YAML files.
type FileStore struct {
	mu    sync.RWMutex
	users map[string]*Profile
}

// NewFileStore creates a new empty FileStore.
func NewFileStore() *FileStore {
	return &FileStore{users: make(map[string]*Profile)}
}

// Add registers profile under its name.
func (s *FileStore) Add(profile *Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[profile.Name] = profile
}

// GetUser returns a user profile by name, or nil if not found.
func (s *FileStore) GetUser(name string) *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[name]
}

// Names returns the sorted user names.
func (s *FileStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.users))
	for n := range s.users {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadFile loads a YAML file holding a list of profiles under "users".
func (s *FileStore) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read users file: %w", err)
	}
	return s.Parse(data)
}

// Parse loads profiles from YAML data.
func (s *FileStore) Parse(data []byte) error {
	var doc struct {
		Users []*Profile `yaml:"users"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse users: %w", err)
	}
	for i, p := range doc.Users {
		if p == nil || p.Name == "" {
			return fmt.Errorf("user %d has no name", i)
		}
		s.Add(p)
	}
	return nil
}

// LoadFromDirectory loads user profiles from subdirectories. Each
// subdirectory holding a profile.yaml file is one user, named after the
// directory.
func (s *FileStore) LoadFromDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read users directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name(), ProfileFileName)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read user profile %s: %w", entry.Name(), err)
		}
		profile := &Profile{}
		if err := yaml.Unmarshal(data, profile); err != nil {
			return fmt.Errorf("failed to parse user profile %s: %w", entry.Name(), err)
		}
		profile.Name = entry.Name()
		s.Add(profile)
	}
	return nil
}
