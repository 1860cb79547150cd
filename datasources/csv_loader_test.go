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
	"strings"
	"testing"
	"time"
)

type employee struct {
	Name   string
	Age    int
	Active bool
	Hired  *time.Time
}

func decodeEmployee(r Record) (employee, error) {
	age, err := r.Int("age")
	if err != nil {
		return employee{}, err
	}
	active, err := r.Bool("active")
	if err != nil {
		return employee{}, err
	}
	hired, err := r.Time("hired")
	if err != nil {
		return employee{}, err
	}
	return employee{Name: r.String("name"), Age: age, Active: active, Hired: hired}, nil
}

func TestLoadCSV(t *testing.T) {
	in := "name,age,active,hired\nAda, 36,true,2024-03-01\nLin,41,false,\n"
	got, err := LoadCSV(strings.NewReader(in), DefaultCSVOptions(), decodeEmployee)
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LoadCSV() returned %d rows, want 2", len(got))
	}
	if got[0].Name != "Ada" || got[0].Age != 36 || !got[0].Active {
		t.Errorf("row 0 = %+v", got[0])
	}
	if got[0].Hired == nil || got[0].Hired.Format(time.DateOnly) != "2024-03-01" {
		t.Errorf("row 0 hired = %v, want 2024-03-01", got[0].Hired)
	}
	if got[1].Hired != nil {
		t.Errorf("row 1 hired = %v, want nil", got[1].Hired)
	}
}

func TestLoadCSVWithoutHeader(t *testing.T) {
	opts := CSVOptionsFromConfig(map[string]string{"has_header": "false", "delimiter": ";"})
	got, err := LoadCSV(strings.NewReader("a;1\nb;2\n"), opts, func(r Record) (string, error) {
		return r.String("col_0") + r.String("col_1"), nil
	})
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if strings.Join(got, ",") != "a1,b2" {
		t.Errorf("LoadCSV() = %v, want [a1 b2]", got)
	}
}

func TestLoadCSVReportsLine(t *testing.T) {
	in := "name,age,active,hired\nAda,x,true,\n"
	_, err := LoadCSV(strings.NewReader(in), DefaultCSVOptions(), decodeEmployee)
	if err == nil {
		t.Fatal("LoadCSV() error = nil, want parse error")
	}
	if !strings.Contains(err.Error(), "line 2, column age") {
		t.Errorf("LoadCSV() error = %v, want line and column", err)
	}
}

func TestRecordMissingColumn(t *testing.T) {
	r := Record{names: map[string]int{"a": 0}, values: []string{"x"}}
	if got := r.String("b"); got != "" {
		t.Errorf("String(b) = %q, want empty", got)
	}
	if got := r.OptionalString("b"); got != nil {
		t.Errorf("OptionalString(b) = %v, want nil", *got)
	}
}
