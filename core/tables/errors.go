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

package tables

import (
	"errors"

	"github.com/google/tabula/core/columns"
)

var (
	// ErrInvalidColumn is returned by New for malformed column descriptors.
	ErrInvalidColumn = columns.ErrInvalidColumn
	// ErrUnknownField is returned when a filter names a field the table does not expose.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownColumn is returned when a snapshot names a column the table does not have.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrInvalidPageSize is returned for page sizes below 1.
	ErrInvalidPageSize = errors.New("page size must be positive")
)
