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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToASCII(t *testing.T) {
	e := newEngine(t, Config[employee]{PageSize: 2})
	e.SetData(employees(3), -1)
	e.ToggleSort("salary")
	e.ToggleRow("e00")

	out, err := e.ToASCII()
	require.NoError(t, err)
	t.Log("\n" + out)

	assert.Contains(t, out, "Salary ▲")
	assert.Contains(t, out, "Employee 00")
	assert.Contains(t, out, "Employee 01")
	assert.NotContains(t, out, "Employee 02")
	assert.Contains(t, out, "✓")
	assert.True(t, strings.HasSuffix(out, "page 1/2, rows 1-2 of 3, 1 selected\n"), out)
}

func TestToASCIIStates(t *testing.T) {
	e := newEngine(t, Config[employee]{})
	out, err := e.ToASCII()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "no data\n"))

	e.SetLoading(true)
	out, err = e.ToASCII()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "loading...\n"))
}
