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

package demo

import (
	_ "embed"

	"github.com/rs/zerolog/log"

	"github.com/google/tabula/config"
	"github.com/google/tabula/core/users"
)

//go:embed users.yaml
var defaultUsers []byte

// LoadUsers loads the user profiles named by cfg: a profiles file, a
// directory of profile folders, or the bundled demo users when neither is
// set.
func LoadUsers(cfg config.UsersConfig) (*users.FileStore, error) {
	store := users.NewFileStore()
	var err error
	switch {
	case cfg.File != "":
		err = store.LoadFile(cfg.File)
	case cfg.Directory != "":
		err = store.LoadFromDirectory(cfg.Directory)
	default:
		err = store.Parse(defaultUsers)
	}
	if err != nil {
		return nil, err
	}
	log.Info().Strs("users", store.Names()).Msg("loaded user profiles")
	return store, nil
}
