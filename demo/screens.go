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
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/google/tabula/core/cells"
	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/models"
	"github.com/google/tabula/core/tables"
	"github.com/google/tabula/datasources"
)

var contractStatuses = map[string]cells.StatusStyle{
	"active":     {Label: "Active", Color: "green"},
	"pending":    {Label: "Pending", Color: "orange"},
	"expired":    {Label: "Expired"},
	"terminated": {Label: "Terminated", Color: "red"},
}

var opportunityStagesStyle = map[string]cells.StatusStyle{
	"prospecting":   {Label: "Prospecting", Color: "blue"},
	"qualification": {Label: "Qualification", Color: "blue"},
	"proposal":      {Label: "Proposal", Color: "orange"},
	"negotiation":   {Label: "Negotiation", Color: "orange"},
	"won":           {Label: "Won", Color: "green"},
	"lost":          {Label: "Lost", Color: "red"},
}

// updateRows returns an action applying fn to the rows of data named by ids.
func updateRows[T any](data *datasources.Memory[T], rowID func(T) tables.RowID, fn func(*T)) models.ActionFunc {
	return func(_ context.Context, ids []tables.RowID) (int, error) {
		want := make(map[tables.RowID]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}
		return data.Update(func(row *T) bool {
			if !want[rowID(*row)] {
				return false
			}
			fn(row)
			return true
		}), nil
	}
}

// exportRows hands the rows to the notification sink, which carries them to
// the export pipeline.
func exportRows(screen string) models.ActionFunc {
	return func(_ context.Context, ids []tables.RowID) (int, error) {
		log.Info().Str("screen", screen).Int("rows", len(ids)).Msg("export requested")
		return len(ids), nil
	}
}

func contractID(c Contract) tables.RowID { return tables.RowID(c.ID) }

func contractsDefinition() models.Definition[Contract] {
	return models.Definition[Contract]{
		Info: models.Info{
			Name:        "contracts",
			Title:       "Contracts",
			Description: "Customer contracts with value, term and renewal status.",
			Categories:  []string{"Sales", "Legal"},
			Domains:     []string{"sales", "finance"},
		},
		Columns: []columns.Descriptor[Contract]{
			{ID: "id", Header: "Contract", Accessor: func(c Contract) any { return c.ID }, Sortable: true, Width: 90},
			{ID: "client", Header: "Client", Accessor: func(c Contract) any { return c.Client }, Sortable: true},
			{ID: "type", Header: "Type", Accessor: func(c Contract) any { return c.Type }, Sortable: true},
			{ID: "amount", Header: "Amount", Accessor: func(c Contract) any { return c.Amount }, Cell: cells.Format[Contract]("%.2f"), Sortable: true},
			{ID: "status", Header: "Status", Accessor: func(c Contract) any { return c.Status }, Cell: cells.Status[Contract](contractStatuses), Sortable: true},
			{ID: "start", Header: "Start", Accessor: func(c Contract) any { return c.Start }, Cell: cells.Date[Contract](""), Sortable: true},
			{ID: "end", Header: "End", Accessor: func(c Contract) any { return c.End }, Cell: cells.Date[Contract](""), Sortable: true},
			{ID: "term", Header: "Term", Accessor: contractTerm, Cell: cells.Duration[Contract](cells.DurationVerbose)},
			{ID: "auto_renew", Header: "Auto renew", Accessor: func(c Contract) any { return c.AutoRenew }, Cell: cells.Bool[Contract]()},
		},
		RowID:         contractID,
		SelectionMode: tables.MultiSelect,
		InitialSort:   []tables.SortKey{{Column: "start", Direction: tables.Descending}},
		RowActions: []cells.ActionDef{
			{Name: models.ViewAction, Label: "View"},
			{Name: "terminate", Label: "Terminate", Permission: "contracts.terminate"},
		},
		BulkActions: []tables.BulkAction{
			{Name: "export", Label: "Export"},
			{Name: "renew", Label: "Renew", Permission: "contracts.renew"},
		},
	}
}

// contractTerm is the contract length, missing for open-ended contracts.
func contractTerm(c Contract) any {
	if c.End == nil {
		return nil
	}
	return c.End.Sub(c.Start)
}

// ContractsScreen serves contracts from memory with client-side paging.
func ContractsScreen(rows []Contract) (*models.ListScreen[Contract], error) {
	data := datasources.NewMemory(rows)
	def := contractsDefinition()
	def.Provider = data
	def.Actions = map[string]models.ActionFunc{
		"export": exportRows(def.Name),
		"renew": updateRows(data, contractID, func(c *Contract) {
			c.Status = "active"
			c.AutoRenew = true
		}),
		"terminate": updateRows(data, contractID, func(c *Contract) { c.Status = "terminated" }),
	}
	return models.NewListScreen(def)
}

// contractsTable maps contracts onto the contracts SQL table.
var contractsTable = datasources.Table[Contract]{
	Name: "contracts",
	Key:  "id",
	Columns: map[string]string{
		"id":         "id",
		"client":     "client",
		"type":       "contract_type",
		"amount":     "amount",
		"status":     "status",
		"start":      "start_date",
		"end":        "end_date",
		"auto_renew": "auto_renew",
	},
	Select: []string{"id", "client", "contract_type", "amount", "status", "start_date", "end_date", "auto_renew"},
	Scan: func(scan func(dest ...any) error) (Contract, error) {
		var c Contract
		var end sql.NullTime
		if err := scan(&c.ID, &c.Client, &c.Type, &c.Amount, &c.Status, &c.Start, &end, &c.AutoRenew); err != nil {
			return c, err
		}
		if end.Valid {
			c.End = &end.Time
		}
		return c, nil
	},
}

// ContractsSQLScreen serves contracts from MySQL with server-side paging.
func ContractsSQLScreen(db *sql.DB) (*models.ListScreen[Contract], error) {
	provider, err := datasources.NewMySQL(db, contractsTable)
	if err != nil {
		return nil, err
	}
	setStatus := func(status string) models.ActionFunc {
		return func(ctx context.Context, ids []tables.RowID) (int, error) {
			keys := make([]string, len(ids))
			for i, id := range ids {
				keys[i] = string(id)
			}
			n, err := provider.SetColumn(ctx, "status", status, keys)
			return int(n), err
		}
	}
	def := contractsDefinition()
	def.ServerSide = true
	def.Provider = provider
	def.Actions = map[string]models.ActionFunc{
		"export":    exportRows(def.Name),
		"renew":     setStatus("active"),
		"terminate": setStatus("terminated"),
	}
	return models.NewListScreen(def)
}

// EmployeesScreen lists employee records.
func EmployeesScreen(rows []Employee) (*models.ListScreen[Employee], error) {
	data := datasources.NewMemory(rows)
	rowID := func(e Employee) tables.RowID { return tables.RowID(e.ID) }
	return models.NewListScreen(models.Definition[Employee]{
		Info: models.Info{
			Name:        "employees",
			Title:       "Employees",
			Description: "Staff directory with department, role and employment status.",
			Categories:  []string{"HR"},
			Domains:     []string{"hr"},
		},
		Columns: []columns.Descriptor[Employee]{
			{ID: "id", Header: "ID", Accessor: func(e Employee) any { return e.ID }, Width: 70},
			{ID: "name", Header: "Name", Accessor: func(e Employee) any { return e.Name }, Sortable: true},
			{ID: "department", Header: "Department", Accessor: func(e Employee) any { return e.Department }, Sortable: true},
			{ID: "title", Header: "Title", Accessor: func(e Employee) any { return e.Title }},
			{ID: "email", Header: "Email", Accessor: func(e Employee) any { return e.Email }},
			{ID: "hired", Header: "Hired", Accessor: func(e Employee) any { return e.Hired }, Cell: cells.Date[Employee](""), Sortable: true},
			{ID: "active", Header: "Active", Accessor: func(e Employee) any { return e.Active }, Cell: cells.Bool[Employee]()},
		},
		RowID:       rowID,
		InitialSort: []tables.SortKey{{Column: "name"}},
		RowActions:  []cells.ActionDef{{Name: models.ViewAction, Label: "View"}},
		BulkActions: []tables.BulkAction{{Name: "deactivate", Label: "Deactivate", Permission: "employees.deactivate"}},
		Actions: map[string]models.ActionFunc{
			"deactivate": updateRows(data, rowID, func(e *Employee) { e.Active = false }),
		},
		Provider: data,
	})
}

// OpportunitiesScreen lists the sales pipeline.
func OpportunitiesScreen(rows []Opportunity) (*models.ListScreen[Opportunity], error) {
	data := datasources.NewMemory(rows)
	rowID := func(o Opportunity) tables.RowID { return tables.RowID(o.ID) }
	return models.NewListScreen(models.Definition[Opportunity]{
		Info: models.Info{
			Name:        "opportunities",
			Title:       "Opportunities",
			Description: fmt.Sprintf("Sales pipeline of %d opportunities by stage, owner and expected close.", len(rows)),
			Categories:  []string{"Sales"},
			Domains:     []string{"sales"},
		},
		Columns: []columns.Descriptor[Opportunity]{
			{ID: "id", Header: "Opportunity", Accessor: func(o Opportunity) any { return o.ID }, Sortable: true},
			{ID: "account", Header: "Account", Accessor: func(o Opportunity) any { return o.Account }, Sortable: true},
			{ID: "stage", Header: "Stage", Accessor: func(o Opportunity) any { return o.Stage }, Cell: cells.Status[Opportunity](opportunityStagesStyle), Sortable: true, SortField: "probability"},
			{ID: "owner", Header: "Owner", Accessor: func(o Opportunity) any { return o.Owner }, Sortable: true},
			{ID: "value", Header: "Value", Accessor: func(o Opportunity) any { return o.Value }, Cell: cells.Format[Opportunity]("%.0f"), Sortable: true},
			{ID: "close", Header: "Close date", Accessor: func(o Opportunity) any { return o.CloseDate }, Cell: cells.Date[Opportunity](""), Sortable: true},
		},
		Fields: columns.Fields[Opportunity]{
			"probability": func(o Opportunity) any { return o.Probability },
		},
		RowID:       rowID,
		PageSize:    25,
		InitialSort: []tables.SortKey{{Column: "close"}},
		RowActions:  []cells.ActionDef{{Name: models.ViewAction, Label: "View"}},
		BulkActions: []tables.BulkAction{
			{Name: "export", Label: "Export", Permission: "opportunities.export"},
			{Name: "close_lost", Label: "Close as lost", Permission: "opportunities.close"},
		},
		Actions: map[string]models.ActionFunc{
			"export": exportRows("opportunities"),
			"close_lost": updateRows(data, rowID, func(o *Opportunity) {
				o.Stage = "lost"
				o.Probability = 0
			}),
		},
		Provider: data,
	})
}

// PaymentTermsScreen lists billing terms. Terms are picked one at a time and
// the toolbar only carries a notice.
func PaymentTermsScreen(rows []PaymentTerm) (*models.ListScreen[PaymentTerm], error) {
	notice := cells.TextCell("Payment terms are maintained by Finance.")
	return models.NewListScreen(models.Definition[PaymentTerm]{
		Info: models.Info{
			Name:        "payment_terms",
			Title:       "Payment terms",
			Description: "Billing terms and early payment discounts.",
			Categories:  []string{"Finance"},
			Domains:     []string{"finance"},
		},
		Columns: []columns.Descriptor[PaymentTerm]{
			{ID: "code", Header: "Code", Accessor: func(p PaymentTerm) any { return p.Code }, Sortable: true},
			{ID: "description", Header: "Description", Accessor: func(p PaymentTerm) any { return p.Description }},
			{ID: "days", Header: "Days", Accessor: func(p PaymentTerm) any { return p.Days }, Sortable: true},
			{ID: "discount", Header: "Discount", Accessor: func(p PaymentTerm) any { return p.Discount }, Cell: cells.Format[PaymentTerm]("%.1f%%"), Sortable: true},
		},
		RowID:         func(p PaymentTerm) tables.RowID { return tables.RowID(p.Code) },
		SelectionMode: tables.SingleSelect,
		InitialSort:   []tables.SortKey{{Column: "days"}},
		Toolbar:       &notice,
		RowActions:    []cells.ActionDef{{Name: models.ViewAction, Label: "View"}},
		Provider:      datasources.NewMemory(rows),
	})
}

// KPIsScreen lists business indicators. Rows have no stable identity, so
// selection falls back to row positions.
func KPIsScreen(rows []KPI) (*models.ListScreen[KPI], error) {
	return models.NewListScreen(models.Definition[KPI]{
		Info: models.Info{
			Name:        "kpis",
			Title:       "KPIs",
			Description: "Quarterly indicators against their targets.",
			Categories:  []string{"Management"},
		},
		Columns: []columns.Descriptor[KPI]{
			{ID: "name", Header: "Indicator", Accessor: func(k KPI) any { return k.Name }, Sortable: true},
			{ID: "owner", Header: "Owner", Accessor: func(k KPI) any { return k.Owner }, Sortable: true},
			{ID: "period", Header: "Quarter", Accessor: func(k KPI) any { return k.Period }, Cell: cells.Date[KPI]("2006-01"), Sortable: true},
			{ID: "value", Header: "Value", Accessor: func(k KPI) any { return k.Value }, Cell: cells.Format[KPI]("%g"), Sortable: true},
			{ID: "target", Header: "Target", Accessor: func(k KPI) any { return k.Target }, Cell: cells.Format[KPI]("%g")},
			{ID: "unit", Header: "Unit", Accessor: func(k KPI) any { return k.Unit }},
			{ID: "on_track", Header: "On track", Accessor: func(k KPI) any { return k.OnTrack() }, Cell: cells.Bool[KPI]()},
		},
		InitialSort: []tables.SortKey{{Column: "period", Direction: tables.Descending}, {Column: "name"}},
		Provider:    datasources.NewMemory(rows),
	})
}
