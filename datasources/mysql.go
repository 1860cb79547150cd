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
	"database/sql"
	"errors"
	"fmt"
	"net"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/google/tabula/core/fetch"
	"github.com/google/tabula/core/tables"
)

var (
	// ErrUnsupportedFilter is returned for filters that cannot be expressed in SQL.
	ErrUnsupportedFilter = errors.New("filter not supported by SQL source")
	// ErrInvalidTable is returned for table definitions with bad identifiers.
	ErrInvalidTable = errors.New("invalid SQL table definition")
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// MySQLConfig holds the connection settings of a MySQL database.
type MySQLConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	Timeout         time.Duration `yaml:"timeout"`
}

// Enabled reports whether a database is configured.
func (c MySQLConfig) Enabled() bool {
	return c.Host != "" && c.Database != ""
}

// DSN returns the driver connection string.
func (c MySQLConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	port := c.Port
	if port == 0 {
		port = 3306
	}
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.Timeout = c.Timeout
	return cfg.FormatDSN()
}

// OpenMySQL opens a connection pool and checks it with a ping.
func OpenMySQL(ctx context.Context, c MySQLConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(c.ConnMaxLifetime)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Str("addr", net.JoinHostPort(c.Host, strconv.Itoa(c.Port))).Str("database", c.Database).Msg("connected to MySQL")
	return db, nil
}

// Table maps a record type onto a SQL table.
type Table[T any] struct {
	Name string
	// Key is the unique column used to break sort ties and address rows.
	Key string
	// Columns maps engine field names to SQL columns.
	Columns map[string]string
	// Select lists the SQL columns read for each row, in Scan order.
	Select []string
	Scan   func(scan func(dest ...any) error) (T, error)
}

func (t Table[T]) validate() error {
	names := append([]string{t.Name, t.Key}, t.Select...)
	for _, c := range t.Columns {
		names = append(names, c)
	}
	for _, n := range names {
		if !identifier.MatchString(n) {
			return fmt.Errorf("%w: bad identifier %q", ErrInvalidTable, n)
		}
	}
	if len(t.Select) == 0 || t.Scan == nil {
		return fmt.Errorf("%w: %s needs Select and Scan", ErrInvalidTable, t.Name)
	}
	return nil
}

// MySQL serves server-side pages of a table. Filtering, sorting and paging
// run in the database.
type MySQL[T any] struct {
	db    *sql.DB
	table Table[T]
}

// NewMySQL returns a provider reading table from db.
func NewMySQL[T any](db *sql.DB, table Table[T]) (*MySQL[T], error) {
	if err := table.validate(); err != nil {
		return nil, err
	}
	return &MySQL[T]{db: db, table: table}, nil
}

// Fetch runs a count query and a page query for p.
func (m *MySQL[T]) Fetch(ctx context.Context, p fetch.Params) (fetch.Result[T], error) {
	q, err := m.table.buildQuery(p)
	if err != nil {
		return fetch.Result[T]{}, err
	}

	var total int
	if err := m.db.QueryRowContext(ctx, q.count, q.args...).Scan(&total); err != nil {
		return fetch.Result[T]{}, fmt.Errorf("failed to count %s: %w", m.table.Name, err)
	}

	args := append(slices.Clone(q.args), p.PageSize, p.Offset())
	rows, err := m.db.QueryContext(ctx, q.page, args...)
	if err != nil {
		return fetch.Result[T]{}, fmt.Errorf("failed to query %s: %w", m.table.Name, err)
	}
	defer rows.Close()

	content := make([]T, 0, p.PageSize)
	for rows.Next() {
		rec, err := m.table.Scan(rows.Scan)
		if err != nil {
			return fetch.Result[T]{}, fmt.Errorf("failed to scan %s row: %w", m.table.Name, err)
		}
		content = append(content, rec)
	}
	if err := rows.Err(); err != nil {
		return fetch.Result[T]{}, fmt.Errorf("error iterating %s rows: %w", m.table.Name, err)
	}
	log.Debug().Str("table", m.table.Name).Uint64("seq", p.Sequence).Int("rows", len(content)).Int("total", total).Msg("fetched page")
	return fetch.Result[T]{Content: content, TotalCount: total}, nil
}

// SetColumn sets column to value on the rows whose key is in keys and returns
// the number of rows changed.
func (m *MySQL[T]) SetColumn(ctx context.Context, column string, value any, keys []string) (int64, error) {
	if !identifier.MatchString(column) {
		return 0, fmt.Errorf("%w: bad identifier %q", ErrInvalidTable, column)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ")
	stmt := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s IN (%s)", m.table.Name, column, m.table.Key, placeholders)
	args := make([]any, 0, len(keys)+1)
	args = append(args, value)
	for _, k := range keys {
		args = append(args, k)
	}
	res, err := m.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", m.table.Name, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type query struct {
	count string
	page  string
	args  []any
}

// buildQuery renders the count and page statements for p. The page statement
// ends with LIMIT ? OFFSET ? placeholders not covered by args.
func (t Table[T]) buildQuery(p fetch.Params) (query, error) {
	where, args, err := t.where(p.Filters)
	if err != nil {
		return query{}, err
	}
	order, err := t.orderBy(p.Sort)
	if err != nil {
		return query{}, err
	}
	return query{
		count: fmt.Sprintf("SELECT COUNT(*) FROM %s%s", t.Name, where),
		page:  fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT ? OFFSET ?", strings.Join(t.Select, ", "), t.Name, where, order),
		args:  args,
	}, nil
}

func (t Table[T]) column(field string) (string, error) {
	c, ok := t.Columns[field]
	if !ok {
		return "", fmt.Errorf("%w: field %q", tables.ErrUnknownField, field)
	}
	return c, nil
}

func (t Table[T]) where(filters []tables.Filter) (string, []any, error) {
	var conds []string
	var args []any
	for _, f := range filters {
		col, err := t.column(f.Field)
		if err != nil {
			return "", nil, err
		}
		switch v := f.Value.(type) {
		case string:
			conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ?", col))
			args = append(args, "%"+escapeLike(strings.ToLower(v))+"%")
		case tables.Range:
			if v.From != nil {
				conds = append(conds, fmt.Sprintf("%s >= ?", col))
				args = append(args, v.From)
			}
			if v.To != nil {
				if to, ok := v.To.(time.Time); ok && midnight(to) {
					conds = append(conds, fmt.Sprintf("%s < ?", col))
					args = append(args, to.AddDate(0, 0, 1))
				} else {
					conds = append(conds, fmt.Sprintf("%s <= ?", col))
					args = append(args, v.To)
				}
			}
		case tables.Match, tables.Predicate, func(any) bool:
			return "", nil, fmt.Errorf("%w: %T on %q", ErrUnsupportedFilter, v, f.Field)
		default:
			conds = append(conds, fmt.Sprintf("%s = ?", col))
			args = append(args, v)
		}
	}
	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// orderBy keeps NULLs last in both directions, as the in-memory sort does.
func (t Table[T]) orderBy(keys []tables.SortKey) (string, error) {
	var parts []string
	keyed := false
	for _, k := range keys {
		if k.Direction == tables.Unsorted {
			continue
		}
		col, err := t.column(k.Field)
		if err != nil {
			return "", err
		}
		dir := "ASC"
		if k.Direction == tables.Descending {
			dir = "DESC"
		}
		if col != t.Key {
			parts = append(parts, col+" IS NULL")
		}
		parts = append(parts, col+" "+dir)
		keyed = keyed || col == t.Key
	}
	if !keyed {
		parts = append(parts, t.Key+" ASC")
	}
	return strings.Join(parts, ", "), nil
}

func midnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
