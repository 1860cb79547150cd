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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/tabula/core/cells"
)

// CSVOptions configure CSV decoding.
type CSVOptions struct {
	// HasHeader reports whether the first row names the columns. Without a
	// header the columns are named col_0, col_1 and so on.
	HasHeader bool
	Delimiter rune
}

// DefaultCSVOptions returns comma separated input with a header row.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{HasHeader: true, Delimiter: ','}
}

// CSVOptionsFromConfig reads the has_header and delimiter keys of a source
// config, falling back to the defaults.
func CSVOptionsFromConfig(config map[string]string) CSVOptions {
	opts := DefaultCSVOptions()
	if h := config["has_header"]; h == "false" {
		opts.HasHeader = false
	}
	if d := config["delimiter"]; d != "" {
		opts.Delimiter = []rune(d)[0]
	}
	return opts
}

// Record is one CSV row with typed accessors by column name.
type Record struct {
	line   int
	names  map[string]int
	values []string
}

// Line returns the 1-based line number of the record.
func (r Record) Line() int {
	return r.line
}

// String returns the trimmed value of column, or "" if the column is absent.
func (r Record) String(column string) string {
	i, ok := r.names[column]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

// Int parses column as an integer.
func (r Record) Int(column string) (int, error) {
	v, err := strconv.Atoi(r.String(column))
	if err != nil {
		return 0, r.errorf(column, err)
	}
	return v, nil
}

// Float parses column as a float.
func (r Record) Float(column string) (float64, error) {
	v, err := strconv.ParseFloat(r.String(column), 64)
	if err != nil {
		return 0, r.errorf(column, err)
	}
	return v, nil
}

// Bool parses column as a boolean.
func (r Record) Bool(column string) (bool, error) {
	v, err := strconv.ParseBool(r.String(column))
	if err != nil {
		return false, r.errorf(column, err)
	}
	return v, nil
}

// Time parses column as a date or timestamp. An empty value is a missing date.
func (r Record) Time(column string) (*time.Time, error) {
	s := r.String(column)
	if s == "" {
		return nil, nil
	}
	t, ok := cells.ParseTime(s)
	if !ok {
		return nil, r.errorf(column, fmt.Errorf("invalid date %q", s))
	}
	return &t, nil
}

// OptionalString returns nil for an empty value.
func (r Record) OptionalString(column string) *string {
	s := r.String(column)
	if s == "" {
		return nil
	}
	return &s
}

func (r Record) errorf(column string, err error) error {
	return fmt.Errorf("line %d, column %s: %w", r.line, column, err)
}

// LoadCSV decodes every row of in with decode.
func LoadCSV[T any](in io.Reader, opts CSVOptions, decode func(Record) (T, error)) ([]T, error) {
	reader := csv.NewReader(in)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = 0

	var names map[string]int
	var out []T
	line := 0
	for {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line++
		if names == nil {
			names = make(map[string]int, len(values))
			if opts.HasHeader {
				for i, name := range values {
					names[strings.TrimSpace(name)] = i
				}
				continue
			}
			for i := range values {
				names[fmt.Sprintf("col_%d", i)] = i
			}
		}
		row, err := decode(Record{line: line, names: names, values: values})
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// LoadCSVFile opens path and decodes it with LoadCSV.
func LoadCSVFile[T any](path string, opts CSVOptions, decode func(Record) (T, error)) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()
	return LoadCSV(file, opts, decode)
}
