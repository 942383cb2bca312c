// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Environment variable names for the upstream provider credentials.
// Handlers report these names verbatim when configuration is incomplete.
const (
	EnvSupabaseURL    = "SUPABASE_URL"
	EnvServiceRoleKey = "SUPABASE_SERVICE_ROLE_KEY"
	EnvAnonKey        = "SUPABASE_ANON_KEY"
	EnvAdminEmails    = "ADMIN_EMAILS"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	SupabaseURL    string `env:"SUPABASE_URL"`
	ServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`
	AnonKey        string `env:"SUPABASE_ANON_KEY"`
	AdminEmails    string `env:"ADMIN_EMAILS"`
	StorageBucket  string `env:"SUPABASE_STORAGE_BUCKET" envDefault:"site-assets"`

	ServerHost string `env:"KMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"KMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"KMS_ENV" envDefault:"development"`
	LogLevel   string `env:"KMS_LOG_LEVEL" envDefault:"info"`
}

// Requirement describes which optional credentials an endpoint needs
// on top of the always-required URL and service role key.
type Requirement struct {
	AnonKey     bool
	AdminEmails bool
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.SupabaseURL = strings.TrimRight(strings.TrimSpace(cfg.SupabaseURL), "/")
	cfg.ServiceRoleKey = strings.TrimSpace(cfg.ServiceRoleKey)
	cfg.AnonKey = strings.TrimSpace(cfg.AnonKey)

	return cfg, nil
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// AdminEmailSet parses the admin allow-list into a set of
// trimmed, lower-cased email addresses.
func (c *Config) AdminEmailSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, raw := range strings.Split(c.AdminEmails, ",") {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email != "" {
			set[email] = struct{}{}
		}
	}
	return set
}

// MissingFor returns the names of required environment variables that are
// not set, for the given endpoint requirement profile. An empty result
// means the configuration is complete for that profile.
func (c *Config) MissingFor(req Requirement) []string {
	var missing []string
	if c.SupabaseURL == "" {
		missing = append(missing, EnvSupabaseURL)
	}
	if c.ServiceRoleKey == "" {
		missing = append(missing, EnvServiceRoleKey)
	}
	if req.AnonKey && c.AnonKey == "" {
		missing = append(missing, EnvAnonKey)
	}
	if req.AdminEmails && len(c.AdminEmailSet()) == 0 {
		missing = append(missing, EnvAdminEmails)
	}
	return missing
}
