// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/kmscorp/kms-site/internal/auth"
	"github.com/kmscorp/kms-site/internal/config"
	"github.com/kmscorp/kms-site/internal/handler"
	"github.com/kmscorp/kms-site/internal/logging"
	"github.com/kmscorp/kms-site/internal/service"
	"github.com/kmscorp/kms-site/internal/store"
	"github.com/kmscorp/kms-site/internal/supabase"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "kms-site - corporate site backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SUPABASE_URL               Provider project URL (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SUPABASE_SERVICE_ROLE_KEY  Service role credential (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SUPABASE_ANON_KEY          Anonymous credential for login and direct uploads\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SUPABASE_STORAGE_BUCKET    Asset bucket (default: site-assets)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ADMIN_EMAILS               Comma-separated admin allow-list\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KMS_SERVER_PORT            Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KMS_ENV                    Environment: development|production (default: development)\n")
	}

	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("kms-site %s (commit: %s)\n", appVersion, appGitCommit)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logging.Setup(cfg.LogLevel, cfg.IsDevelopment())

	if missing := cfg.MissingFor(config.Requirement{}); len(missing) > 0 {
		// Individual endpoints also report missing optional credentials,
		// but without the provider basics nothing can work.
		slog.Warn("provider configuration incomplete", "missing", missing)
	}

	client := supabase.New(cfg.SupabaseURL, cfg.ServiceRoleKey, nil)
	verifier := auth.NewVerifier(client, cfg.AnonKey, cfg.AdminEmailSet())

	content := store.NewFallbackContentRepo(
		store.NewTableContentRepo(client),
		store.NewStorageContentRepo(client, cfg.StorageBucket),
	)
	board := store.NewBoardStore(client)
	assets := service.NewAssetService(client, cfg.StorageBucket)

	h := handler.New(cfg, verifier, content, board, assets, client)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Mount("/", h.Routes())

	server := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
