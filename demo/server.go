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
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/google/tabula/config"
	"github.com/google/tabula/core/models"
	"github.com/google/tabula/core/server"
)

// BuildDataModel registers the demo screens. Contracts come from MySQL when
// db is set and from the bundled CSV otherwise.
func BuildDataModel(db *sql.DB) (*models.DataModel, error) {
	dataModel := models.NewDataModel()

	var screens []models.Screen
	if db != nil {
		s, err := ContractsSQLScreen(db)
		if err != nil {
			return nil, fmt.Errorf("contracts: %w", err)
		}
		screens = append(screens, s)
	} else {
		contracts, err := LoadContracts()
		if err != nil {
			return nil, err
		}
		s, err := ContractsScreen(contracts)
		if err != nil {
			return nil, fmt.Errorf("contracts: %w", err)
		}
		screens = append(screens, s)
	}

	employees, err := LoadEmployees()
	if err != nil {
		return nil, err
	}
	employeesScreen, err := EmployeesScreen(employees)
	if err != nil {
		return nil, fmt.Errorf("employees: %w", err)
	}

	terms, err := LoadPaymentTerms()
	if err != nil {
		return nil, err
	}
	termsScreen, err := PaymentTermsScreen(terms)
	if err != nil {
		return nil, fmt.Errorf("payment terms: %w", err)
	}

	opportunitiesScreen, err := OpportunitiesScreen(GenerateOpportunities(NumOpportunities))
	if err != nil {
		return nil, fmt.Errorf("opportunities: %w", err)
	}

	kpisScreen, err := KPIsScreen(KPIs())
	if err != nil {
		return nil, fmt.Errorf("kpis: %w", err)
	}

	screens = append(screens, employeesScreen, termsScreen, opportunitiesScreen, kpisScreen)
	for _, s := range screens {
		if err := dataModel.AddScreen(s); err != nil {
			return nil, err
		}
		log.Info().Str("screen", s.Info().Name).Str("mode", s.Info().Mode()).Int("columns", len(s.Columns())).Msg("registered screen")
	}

	// System screens list the screens above, so they go last.
	if err := models.AddSystemScreens(dataModel); err != nil {
		return nil, err
	}
	return dataModel, nil
}

// SetupDemoServer creates and configures a server with the demo screens and
// users. The caller sets the state store and notification sink.
func SetupDemoServer(cfg config.Config, db *sql.DB) (*server.Server, error) {
	log.Info().Msg("Starting Tabula...")

	dataModel, err := BuildDataModel(db)
	if err != nil {
		return nil, err
	}

	srv, err := server.NewServer(dataModel, cfg)
	if err != nil {
		return nil, err
	}
	srv.SetTitle("Tabula Demo", "Contracts, people, pipeline and indicators")

	userStore, err := LoadUsers(cfg.Users)
	if err != nil {
		return nil, fmt.Errorf("failed to load user profiles: %w", err)
	}
	srv.SetUserStore(userStore)
	return srv, nil
}
