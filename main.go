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

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/google/tabula/config"
	"github.com/google/tabula/core/notify"
	"github.com/google/tabula/core/state"
	"github.com/google/tabula/datasources"
	"github.com/google/tabula/demo"
)

func main() {
	configPath := flag.String("config", config.DefaultFileName, "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("invalid configuration")
	}
	cfg.Logging.Apply()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.MySQL.Enabled() {
		db, err = datasources.OpenMySQL(ctx, cfg.MySQL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MySQL")
		}
		defer db.Close()
	}

	srv, err := demo.SetupDemoServer(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up server")
	}

	store, err := state.Create(ctx, cfg.State)
	if err != nil {
		log.Fatal().Err(err).Str("type", cfg.State.Type).Msg("failed to create state store")
	}
	defer store.Close()
	srv.SetStateStore(store)

	sink, err := notify.New(cfg.Notify)
	if err != nil {
		log.Fatal().Err(err).Str("type", cfg.Notify.Type).Msg("failed to create notification sink")
	}
	defer sink.Close()
	srv.SetNotifySink(sink)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Msgf("Server starting on http://%s", cfg.Server.Address())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}
