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

// Package config loads the tabula.yaml configuration file.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/google/tabula/core/notify"
	"github.com/google/tabula/core/state"
	"github.com/google/tabula/datasources"
)

// DefaultFileName is the configuration file read when none is given.
const DefaultFileName = "tabula.yaml"

// Config is the process configuration.
type Config struct {
	Server  ServerConfig            `yaml:"server"`
	Logging LoggingConfig           `yaml:"logging"`
	Tables  TablesConfig            `yaml:"tables"`
	State   state.Config            `yaml:"state"`
	Notify  notify.Config           `yaml:"notify"`
	Users   UsersConfig             `yaml:"users"`
	MySQL   datasources.MySQLConfig `yaml:"mysql"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Address returns the host:port listen address.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig holds the logger settings.
type LoggingConfig struct {
	Level  string `yaml:"log_level"`
	Pretty bool   `yaml:"log_pretty"`
}

// TablesConfig holds the defaults shared by every list screen.
type TablesConfig struct {
	DefaultPageSize int   `yaml:"default_page_size"`
	PageSizes       []int `yaml:"page_sizes"`
	MultiSort       bool  `yaml:"multi_sort"`
	// FetchRate limits provider fetches per second per screen. Zero disables
	// the limit.
	FetchRate  float64 `yaml:"fetch_rate"`
	FetchBurst int     `yaml:"fetch_burst"`
	// FetchTimeout bounds one provider fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// UsersConfig locates the user profiles.
type UsersConfig struct {
	// File is a YAML file listing profiles under "users".
	File string `yaml:"file"`
	// Directory holds one <user>/profile.yaml per user.
	Directory string `yaml:"directory"`
	// DefaultUser is used for requests that name no user.
	DefaultUser string `yaml:"default_user"`
}

// Default returns the configuration used for unset keys.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8097,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
		Tables: TablesConfig{
			DefaultPageSize: 10,
			PageSizes:       []int{10, 25, 50, 100},
			MultiSort:       true,
			FetchTimeout:    5 * time.Second,
		},
		State:  state.Config{Type: state.MemoryType, TTL: 30 * 24 * time.Hour},
		Notify: notify.Config{Type: notify.TypeLog, Kafka: notify.KafkaConfig{Async: true}},
		Users:  UsersConfig{DefaultUser: "admin"},
		MySQL: datasources.MySQLConfig{
			Port:            3306,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			Timeout:         5 * time.Second,
		},
	}
}

// Load reads and validates the file at path. A missing file yields the
// defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Msg("config file not found, using defaults")
		cfg := Default()
		return cfg, cfg.Validate()
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		errs = append(errs, fmt.Errorf("logging.log_level: %w", err))
	}
	if c.Tables.DefaultPageSize <= 0 {
		errs = append(errs, errors.New("tables.default_page_size must be positive"))
	}
	for _, n := range c.Tables.PageSizes {
		if n <= 0 {
			errs = append(errs, fmt.Errorf("tables.page_sizes: %d is not positive", n))
		}
	}
	if len(c.Tables.PageSizes) > 0 && !slices.Contains(c.Tables.PageSizes, c.Tables.DefaultPageSize) {
		errs = append(errs, fmt.Errorf("tables.page_sizes must include the default page size %d", c.Tables.DefaultPageSize))
	}
	if c.Tables.FetchRate < 0 {
		errs = append(errs, errors.New("tables.fetch_rate must not be negative"))
	}
	if !slices.Contains(state.RegisteredTypes(), c.State.Type) {
		errs = append(errs, fmt.Errorf("state.type %q is not one of %v", c.State.Type, state.RegisteredTypes()))
	}
	if err := c.Notify.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("notify: %w", err))
	}
	if c.MySQL.Enabled() && c.MySQL.User == "" {
		errs = append(errs, errors.New("mysql.user is required when mysql.host is set"))
	}
	return errors.Join(errs...)
}

// Apply configures the global logger.
func (l LoggingConfig) Apply() {
	level, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if l.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
