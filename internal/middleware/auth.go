// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the admin bearer-token gate for
// admin-only endpoints.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kmscorp/kms-site/internal/auth"
	"github.com/kmscorp/kms-site/internal/config"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyAdminEmail carries the verified admin email.
const ContextKeyAdminEmail ContextKey = "admin_email"

// BearerToken extracts the bearer token from the Authorization header.
// The Bearer prefix is matched case-insensitively.
func BearerToken(r *http.Request) string {
	authorization := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authorization) < 7 || !strings.EqualFold(authorization[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authorization[7:])
}

// AdminEmail returns the verified admin email stored by RequireAdmin,
// or "" when the request did not pass through it.
func AdminEmail(r *http.Request) string {
	email, _ := r.Context().Value(ContextKeyAdminEmail).(string)
	return email
}

// RequireAdmin verifies the request's bearer token against the identity
// provider and the admin allow-list before letting the request through.
// The verified email is stored in the request context.
func RequireAdmin(cfg *config.Config, verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if missing := cfg.MissingFor(config.Requirement{AdminEmails: true}); len(missing) > 0 {
				writeError(w, http.StatusInternalServerError, "환경변수 누락: "+strings.Join(missing, ", "), "")
				return
			}

			email, err := verifier.VerifyToken(r.Context(), BearerToken(r))
			if err != nil {
				var authErr *auth.Error
				if errors.As(err, &authErr) {
					writeError(w, authErr.Status, authErr.Message, authErr.Detail)
					return
				}
				writeError(w, http.StatusBadGateway, "인증 서버 연결에 실패했습니다.", "")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAdminEmail, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeError mirrors the handler package's error body shape.
func writeError(w http.ResponseWriter, statusCode int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	body := map[string]string{"message": message}
	if detail != "" {
		body["detail"] = detail
	}
	_ = json.NewEncoder(w).Encode(body)
}
