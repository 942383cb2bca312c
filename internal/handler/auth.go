// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/kmscorp/kms-site/internal/config"
	"github.com/kmscorp/kms-site/internal/middleware"
)

// loginRequest is the POST /admin-login body.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the successful POST /admin-login body.
type loginResponse struct {
	AccessToken string `json:"accessToken"`
	Email       string `json:"email"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// AdminLogin handles POST /admin-login: password grant at the identity
// provider plus the admin allow-list check on the issued token.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	if !h.requireConfig(w, config.Requirement{AnonKey: true, AdminEmails: true}) {
		return
	}

	var req loginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "요청 본문(JSON) 형식이 올바르지 않습니다.", "")
		return
	}

	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)
	if email == "" || password == "" {
		writeError(w, http.StatusBadRequest, "이메일과 비밀번호를 입력해 주세요.", "")
		return
	}

	result, err := h.verifier.Login(r.Context(), email, password)
	if err != nil {
		slog.Debug("admin login rejected", "error", err)
		writeAuthError(w, err)
		return
	}

	noStore(w)
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		Email:       result.Email,
		ExpiresIn:   result.ExpiresIn,
	})
}

// AdminSession handles GET /admin-session: verifies the bearer token and
// returns the provider-confirmed email.
func (h *Handler) AdminSession(w http.ResponseWriter, r *http.Request) {
	if !h.requireConfig(w, config.Requirement{AdminEmails: true}) {
		return
	}

	email, err := h.verifier.VerifyToken(r.Context(), middleware.BearerToken(r))
	if err != nil {
		writeAuthError(w, err)
		return
	}

	noStore(w)
	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}
