// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"testing"

	"github.com/kmscorp/kms-site/internal/config"
)

func TestAdminLogin_Success(t *testing.T) {
	env := newTestEnv(t, nil)

	status, resp, raw := env.do(t, http.MethodPost, "/admin-login", "",
		`{"email":"admin@example.com","password":"secret"}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %s", status, raw)
	}
	if resp.Header.Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", resp.Header.Get("Cache-Control"))
	}

	_, body := env.doJSON(t, http.MethodPost, "/admin-login", "",
		`{"email":"admin@example.com","password":"secret"}`)
	if body["accessToken"] != testAdminToken {
		t.Errorf("accessToken = %v", body["accessToken"])
	}
	if body["email"] != testAdminEmail {
		t.Errorf("email = %v", body["email"])
	}
	if body["expiresIn"] != float64(3600) {
		t.Errorf("expiresIn = %v", body["expiresIn"])
	}
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.doJSON(t, http.MethodPost, "/admin-login", "",
		`{"email":"admin@example.com","password":"wrong"}`)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d", status)
	}
	if body["message"] != "이메일 또는 비밀번호가 올바르지 않습니다." {
		t.Errorf("message = %v", body["message"])
	}
}

func TestAdminLogin_EmptyCredentials(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []string{
		`{"email":"","password":"secret"}`,
		`{"email":"admin@example.com","password":""}`,
		`{"email":"  ","password":"  "}`,
		`{}`,
	}
	for _, body := range tests {
		status, decoded := env.doJSON(t, http.MethodPost, "/admin-login", "", body)
		if status != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, status)
		}
		if decoded["message"] != "이메일과 비밀번호를 입력해 주세요." {
			t.Errorf("body %s: message = %v", body, decoded["message"])
		}
	}
}

func TestAdminLogin_MalformedJSON(t *testing.T) {
	env := newTestEnv(t, nil)

	status, _ := env.doJSON(t, http.MethodPost, "/admin-login", "", `{not json`)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestAdminLogin_MissingConfig(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.AnonKey = ""
		cfg.AdminEmails = ""
	})

	status, body := env.doJSON(t, http.MethodPost, "/admin-login", "",
		`{"email":"admin@example.com","password":"secret"}`)
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if body["message"] != "환경변수 누락: SUPABASE_ANON_KEY, ADMIN_EMAILS" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestAdminSession_ValidToken(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.doJSON(t, http.MethodGet, "/admin-session", testAdminToken, "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["email"] != testAdminEmail {
		t.Errorf("email = %v", body["email"])
	}
}

func TestAdminSession_NoToken(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.doJSON(t, http.MethodGet, "/admin-session", "", "")
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if body["message"] != "관리자 로그인이 필요합니다." {
		t.Errorf("message = %v", body["message"])
	}
}

func TestAdminSession_OutsiderToken(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.doJSON(t, http.MethodGet, "/admin-session", testOutsiderToken, "")
	if status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
	if body["message"] != "관리자 권한이 없는 계정입니다." {
		t.Errorf("message = %v", body["message"])
	}
}

func TestAdminSession_ExpiredToken(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.doJSON(t, http.MethodGet, "/admin-session", "stale-token", "")
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if body["message"] != "로그인이 만료되었습니다." {
		t.Errorf("message = %v", body["message"])
	}
}
