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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/tabula/config"
	"github.com/google/tabula/core/models"
	"github.com/google/tabula/core/query"
	"github.com/google/tabula/core/users"
)

func TestLoadBundledData(t *testing.T) {
	contracts, err := LoadContracts()
	require.NoError(t, err)
	require.Len(t, contracts, 12)
	assert.Equal(t, "C-1001", contracts[0].ID)
	assert.NotNil(t, contracts[0].End)
	assert.Nil(t, contracts[1].End, "pending contracts are open-ended")

	employees, err := LoadEmployees()
	require.NoError(t, err)
	require.Len(t, employees, 15)
	assert.Nil(t, employees[14].Email)
	assert.False(t, employees[5].Active)

	terms, err := LoadPaymentTerms()
	require.NoError(t, err)
	require.Len(t, terms, 6)
	require.NotNil(t, terms[4].Discount)
	assert.Equal(t, 2.0, *terms[4].Discount)
	assert.Nil(t, terms[5].Discount)
}

func TestContractTerm(t *testing.T) {
	contracts, err := LoadContracts()
	require.NoError(t, err)
	assert.Equal(t, 1095*24*time.Hour, contractTerm(contracts[0]))
	assert.Nil(t, contractTerm(contracts[1]))
}

func TestGenerateOpportunities(t *testing.T) {
	a := GenerateOpportunities(100)
	b := GenerateOpportunities(100)
	require.Len(t, a, 100)
	assert.Equal(t, a, b)
	assert.Equal(t, "OPP-00001", a[0].ID)
	assert.Equal(t, "prospecting", a[0].Stage)
	for _, o := range a {
		assert.Equal(t, stageProbability[o.Stage], o.Probability, o.ID)
	}
}

func TestKPIOnTrack(t *testing.T) {
	tests := []struct {
		kpi  KPI
		want bool
	}{
		{KPI{Value: 10, Target: 8}, true},
		{KPI{Value: 7, Target: 8}, false},
		{KPI{Value: 2, Target: 3, LowerIsBetter: true}, true},
		{KPI{Value: 4, Target: 3, LowerIsBetter: true}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kpi.OnTrack(), "%+v", tt.kpi)
	}
}

func TestLoadUsers(t *testing.T) {
	store, err := LoadUsers(config.UsersConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "hr", "sales", "viewer"}, store.Names())
	assert.True(t, users.HasPermission(store.GetUser("hr"), "employees.deactivate"))
	assert.False(t, users.HasPermission(store.GetUser("viewer"), "contracts.renew"))
}

func TestBuildDataModel(t *testing.T) {
	dm, err := BuildDataModel(nil)
	require.NoError(t, err)

	var names []string
	for _, s := range dm.GetAllScreens() {
		names = append(names, s.Info().Name)
	}
	assert.Equal(t, []string{"_columns", "contracts", "employees", "kpis", "opportunities", "payment_terms"}, names)

	store, err := LoadUsers(config.UsersConfig{})
	require.NoError(t, err)
	admin := store.GetUser("admin")
	for _, s := range dm.GetAllScreens() {
		t.Run(s.Info().Name, func(t *testing.T) {
			inst, err := s.NewInstance(models.InstanceOptions{User: admin, PageSize: 10})
			require.NoError(t, err)
			require.NoError(t, inst.Apply(context.Background(), query.Events{}))
			text, err := inst.Text()
			require.NoError(t, err)
			assert.NotEmpty(t, text)
		})
	}

	hr := store.GetUser("hr")
	var visible []string
	for _, s := range dm.VisibleScreens(hr) {
		visible = append(visible, s.Info().Name)
	}
	assert.Equal(t, []string{"employees", "kpis"}, visible)
}
