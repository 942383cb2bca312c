// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"reflect"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.StorageBucket != "site-assets" {
		t.Errorf("StorageBucket = %q, want %q", cfg.StorageBucket, "site-assets")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false for default env")
	}
}

func TestLoad_TrimsCredentials(t *testing.T) {
	os.Clearenv()
	setEnv(t, "SUPABASE_URL", " https://proj.supabase.co/ ")
	setEnv(t, "SUPABASE_SERVICE_ROLE_KEY", " service-key ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.SupabaseURL != "https://proj.supabase.co" {
		t.Errorf("SupabaseURL = %q, want trimmed without trailing slash", cfg.SupabaseURL)
	}
	if cfg.ServiceRoleKey != "service-key" {
		t.Errorf("ServiceRoleKey = %q, want trimmed", cfg.ServiceRoleKey)
	}
}

func TestServerAddr(t *testing.T) {
	cfg := &Config{ServerHost: "0.0.0.0", ServerPort: 3000}
	if got := cfg.ServerAddr(); got != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q", got)
	}
}

func TestAdminEmailSet(t *testing.T) {
	cfg := &Config{AdminEmails: " Admin@Example.com , second@example.com ,, "}
	set := cfg.AdminEmailSet()

	want := map[string]struct{}{
		"admin@example.com":  {},
		"second@example.com": {},
	}
	if !reflect.DeepEqual(set, want) {
		t.Errorf("AdminEmailSet() = %v, want %v", set, want)
	}
}

func TestAdminEmailSet_Empty(t *testing.T) {
	cfg := &Config{}
	if set := cfg.AdminEmailSet(); len(set) != 0 {
		t.Errorf("AdminEmailSet() = %v, want empty", set)
	}
}

func TestMissingFor(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		req  Requirement
		want []string
	}{
		{
			name: "all_missing_full_profile",
			cfg:  Config{},
			req:  Requirement{AnonKey: true, AdminEmails: true},
			want: []string{EnvSupabaseURL, EnvServiceRoleKey, EnvAnonKey, EnvAdminEmails},
		},
		{
			name: "base_profile_ignores_optionals",
			cfg:  Config{SupabaseURL: "https://x", ServiceRoleKey: "k"},
			req:  Requirement{},
			want: nil,
		},
		{
			name: "anon_key_missing",
			cfg:  Config{SupabaseURL: "https://x", ServiceRoleKey: "k"},
			req:  Requirement{AnonKey: true},
			want: []string{EnvAnonKey},
		},
		{
			name: "admin_emails_all_blank",
			cfg:  Config{SupabaseURL: "https://x", ServiceRoleKey: "k", AdminEmails: " , ,"},
			req:  Requirement{AdminEmails: true},
			want: []string{EnvAdminEmails},
		},
		{
			name: "complete",
			cfg:  Config{SupabaseURL: "https://x", ServiceRoleKey: "k", AnonKey: "a", AdminEmails: "a@b.c"},
			req:  Requirement{AnonKey: true, AdminEmails: true},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.MissingFor(tt.req)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MissingFor() = %v, want %v", got, tt.want)
			}
		})
	}
}
