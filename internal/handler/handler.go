// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler exposes the site's HTTP endpoints: admin auth, the
// site content document, the notice board, asset upload and the public
// upload configuration.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kmscorp/kms-site/internal/auth"
	"github.com/kmscorp/kms-site/internal/config"
	"github.com/kmscorp/kms-site/internal/middleware"
	"github.com/kmscorp/kms-site/internal/service"
	"github.com/kmscorp/kms-site/internal/store"
	"github.com/kmscorp/kms-site/internal/supabase"
)

// Handler holds the shared dependencies of all endpoints.
type Handler struct {
	cfg      *config.Config
	verifier *auth.Verifier
	content  store.ContentRepository
	board    *store.BoardStore
	assets   *service.AssetService
	storage  *supabase.Client
}

// New creates a handler with its dependencies.
func New(
	cfg *config.Config,
	verifier *auth.Verifier,
	content store.ContentRepository,
	board *store.BoardStore,
	assets *service.AssetService,
	storage *supabase.Client,
) *Handler {
	return &Handler{
		cfg:      cfg,
		verifier: verifier,
		content:  content,
		board:    board,
		assets:   assets,
		storage:  storage,
	}
}

// Routes returns the router for all endpoints. Admin-gated routes are
// wrapped with the bearer-token middleware; everything else is public.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	requireAdmin := middleware.RequireAdmin(h.cfg, h.verifier)

	r.Post("/admin-login", h.AdminLogin)
	r.Get("/admin-session", h.AdminSession)

	r.Get("/site-content", h.GetSiteContent)
	r.With(requireAdmin).Post("/site-content", h.SaveSiteContent)

	r.Get("/board-posts", h.ListBoardPosts)
	r.With(requireAdmin).Post("/board-posts", h.CreateBoardPost)
	r.With(requireAdmin).Delete("/board-posts", h.DeleteBoardPost)

	r.With(requireAdmin).Post("/upload-asset", h.UploadAsset)

	r.Get("/public-config", h.PublicConfig)

	return r
}

// requireConfig checks configuration completeness for the endpoint's
// requirement profile and writes a 500 enumerating the missing keys.
// Returns false when the response has been written.
func (h *Handler) requireConfig(w http.ResponseWriter, req config.Requirement) bool {
	if missing := h.cfg.MissingFor(req); len(missing) > 0 {
		writeError(w, http.StatusInternalServerError, "환경변수 누락: "+strings.Join(missing, ", "), "")
		return false
	}
	return true
}

// writeAuthError maps a verifier failure to its response.
func writeAuthError(w http.ResponseWriter, err error) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		writeError(w, authErr.Status, authErr.Message, authErr.Detail)
		return
	}
	writeError(w, http.StatusBadGateway, "인증 서버 연결에 실패했습니다.", "")
}

// upstreamDetail extracts upstream diagnostic text for the detail field.
func upstreamDetail(err error) string {
	var apiErr *supabase.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}
