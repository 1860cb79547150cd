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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/tabula/datasources"
)

//go:embed data/contracts.csv
var contractsCSV string

//go:embed data/employees.csv
var employeesCSV string

//go:embed data/payment_terms.csv
var paymentTermsCSV string

// Contract is a customer contract.
type Contract struct {
	ID        string
	Client    string
	Type      string
	Amount    float64
	Status    string
	Start     time.Time
	End       *time.Time // open-ended when nil
	AutoRenew bool
}

// Employee is an HR record.
type Employee struct {
	ID         string
	Name       string
	Department string
	Title      string
	Email      *string
	Hired      time.Time
	Active     bool
}

// PaymentTerm is a billing term offered to clients.
type PaymentTerm struct {
	Code        string
	Description string
	Days        int
	Discount    *float64 // percent
}

// KPI is a tracked business indicator.
type KPI struct {
	Name   string
	Owner  string
	Unit   string
	Value  float64
	Target float64
	Period time.Time
	// LowerIsBetter flips the target test, as for churn.
	LowerIsBetter bool
}

// OnTrack reports whether the indicator meets its target.
func (k KPI) OnTrack() bool {
	if k.LowerIsBetter {
		return k.Value <= k.Target
	}
	return k.Value >= k.Target
}

func loadEmbedded[T any](name, data string, decode func(datasources.Record) (T, error)) ([]T, error) {
	rows, err := datasources.LoadCSV(strings.NewReader(data), datasources.DefaultCSVOptions(), decode)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return rows, nil
}

// LoadContracts returns the bundled contracts.
func LoadContracts() ([]Contract, error) {
	return loadEmbedded("contracts", contractsCSV, func(r datasources.Record) (Contract, error) {
		c := Contract{ID: r.String("id"), Client: r.String("client"), Type: r.String("type"), Status: r.String("status")}
		var err error
		if c.Amount, err = r.Float("amount"); err != nil {
			return c, err
		}
		start, err := r.Time("start_date")
		if err != nil {
			return c, err
		}
		if start == nil {
			return c, fmt.Errorf("line %d: contract %s has no start date", r.Line(), c.ID)
		}
		c.Start = *start
		if c.End, err = r.Time("end_date"); err != nil {
			return c, err
		}
		c.AutoRenew, err = r.Bool("auto_renew")
		return c, err
	})
}

// LoadEmployees returns the bundled employee records.
func LoadEmployees() ([]Employee, error) {
	return loadEmbedded("employees", employeesCSV, func(r datasources.Record) (Employee, error) {
		e := Employee{
			ID:         r.String("id"),
			Name:       r.String("name"),
			Department: r.String("department"),
			Title:      r.String("title"),
			Email:      r.OptionalString("email"),
		}
		hired, err := r.Time("hired")
		if err != nil {
			return e, err
		}
		if hired != nil {
			e.Hired = *hired
		}
		e.Active, err = r.Bool("active")
		return e, err
	})
}

// LoadPaymentTerms returns the bundled payment terms.
func LoadPaymentTerms() ([]PaymentTerm, error) {
	return loadEmbedded("payment terms", paymentTermsCSV, func(r datasources.Record) (PaymentTerm, error) {
		p := PaymentTerm{Code: r.String("code"), Description: r.String("description")}
		var err error
		if p.Days, err = r.Int("days"); err != nil {
			return p, err
		}
		if s := r.OptionalString("discount_percent"); s != nil {
			d, err := strconv.ParseFloat(*s, 64)
			if err != nil {
				return p, fmt.Errorf("line %d, column discount_percent: %w", r.Line(), err)
			}
			p.Discount = &d
		}
		return p, nil
	})
}

// KPIs returns the indicators of the current and previous quarter.
func KPIs() []KPI {
	q3 := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	q2 := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	return []KPI{
		{Name: "Revenue", Owner: "Finance", Unit: "EUR k", Value: 1840, Target: 1750, Period: q3},
		{Name: "Revenue", Owner: "Finance", Unit: "EUR k", Value: 1610, Target: 1700, Period: q2},
		{Name: "New contracts", Owner: "Sales", Unit: "count", Value: 14, Target: 12, Period: q3},
		{Name: "New contracts", Owner: "Sales", Unit: "count", Value: 9, Target: 12, Period: q2},
		{Name: "Churn", Owner: "Sales", Unit: "%", Value: 2.1, Target: 3, Period: q3, LowerIsBetter: true},
		{Name: "Headcount", Owner: "HR", Unit: "people", Value: 15, Target: 18, Period: q3},
		{Name: "Time to hire", Owner: "HR", Unit: "days", Value: 41, Target: 30, Period: q3, LowerIsBetter: true},
		{Name: "Days sales outstanding", Owner: "Finance", Unit: "days", Value: 38, Target: 45, Period: q3, LowerIsBetter: true},
	}
}
