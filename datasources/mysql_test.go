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

package datasources

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/tabula/core/fetch"
	"github.com/google/tabula/core/tables"
)

type contractRow struct {
	ID     string
	Client string
}

func contractTable() Table[contractRow] {
	return Table[contractRow]{
		Name:    "contracts",
		Key:     "id",
		Columns: map[string]string{"id": "id", "client": "client_name", "amount": "amount", "start": "start_date", "status": "status"},
		Select:  []string{"id", "client_name"},
		Scan: func(scan func(dest ...any) error) (contractRow, error) {
			var r contractRow
			err := scan(&r.ID, &r.Client)
			return r, err
		},
	}
}

func TestBuildQuery(t *testing.T) {
	require := require.New(t)
	day := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	q, err := contractTable().buildQuery(fetch.Params{
		PageIndex: 2,
		PageSize:  10,
		Sort: []tables.SortKey{
			{Column: "client", Field: "client", Direction: tables.Descending},
			{Column: "amount", Field: "amount", Direction: tables.Ascending},
		},
		Filters: []tables.Filter{
			{Field: "client", Value: "Acme_%"},
			{Field: "start", Value: tables.Range{From: "2024-01-01", To: day}},
			{Field: "status", Value: 3},
		},
	})
	require.NoError(err)

	where := " WHERE LOWER(client_name) LIKE ? AND start_date >= ? AND start_date < ? AND status = ?"
	assert.Equal(t, "SELECT COUNT(*) FROM contracts"+where, q.count)
	assert.Equal(t, "SELECT id, client_name FROM contracts"+where+" ORDER BY client_name IS NULL, client_name DESC, amount IS NULL, amount ASC, id ASC LIMIT ? OFFSET ?", q.page)
	assert.Equal(t, []any{`%acme\_\%%`, "2024-01-01", day.AddDate(0, 0, 1), 3}, q.args)
}

func TestBuildQueryDefaultOrder(t *testing.T) {
	q, err := contractTable().buildQuery(fetch.Params{PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, client_name FROM contracts ORDER BY id ASC LIMIT ? OFFSET ?", q.page)
	assert.Empty(t, q.args)

	q, err = contractTable().buildQuery(fetch.Params{Sort: []tables.SortKey{{Field: "id", Direction: tables.Descending}}})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(q.page, "ORDER BY id DESC LIMIT ? OFFSET ?"), q.page)
}

func TestBuildQueryRejects(t *testing.T) {
	_, err := contractTable().buildQuery(fetch.Params{Filters: []tables.Filter{{Field: "client", Value: tables.Match(`"Acme"`)}}})
	assert.ErrorIs(t, err, ErrUnsupportedFilter)

	_, err = contractTable().buildQuery(fetch.Params{Filters: []tables.Filter{{Field: "nope", Value: "x"}}})
	assert.ErrorIs(t, err, tables.ErrUnknownField)

	_, err = contractTable().buildQuery(fetch.Params{Sort: []tables.SortKey{{Field: "nope", Direction: tables.Ascending}}})
	assert.ErrorIs(t, err, tables.ErrUnknownField)
}

func TestNewMySQLValidatesIdentifiers(t *testing.T) {
	table := contractTable()
	table.Columns = map[string]string{"client": "client; DROP TABLE x"}
	_, err := NewMySQL(nil, table)
	assert.ErrorIs(t, err, ErrInvalidTable)

	table = contractTable()
	table.Scan = nil
	_, err = NewMySQL(nil, table)
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestMySQLConfigDSN(t *testing.T) {
	c := MySQLConfig{Host: "db", Database: "crm", User: "app", Password: "pw", Timeout: 2 * time.Second}
	assert.True(t, c.Enabled())
	assert.Equal(t, "app:pw@tcp(db:3306)/crm?parseTime=true&timeout=2s", c.DSN())
	assert.False(t, MySQLConfig{}.Enabled())
}

func TestMemory(t *testing.T) {
	m := NewMemory([]contractRow{{ID: "1"}, {ID: "2"}})
	res, err := m.Fetch(context.Background(), fetch.Params{PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)
	assert.Len(t, res.Content, 2)

	n := m.Update(func(r *contractRow) bool {
		if r.ID == "2" {
			r.Client = "Acme"
			return true
		}
		return false
	})
	assert.Equal(t, 1, n)
	res, _ = m.Fetch(context.Background(), fetch.Params{})
	assert.Equal(t, "Acme", res.Content[1].Client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Fetch(ctx, fetch.Params{})
	assert.ErrorIs(t, err, context.Canceled)
}
