// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// LoginError is a rejected login with a user-facing message.
type LoginError struct {
	StatusCode int
	Message    string
}

func (e *LoginError) Error() string {
	return e.Message
}

// Login exchanges credentials for an admin session and stores it in the
// session manager on success.
func (m *SessionManager) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return &LoginError{Message: "이메일과 비밀번호를 입력해 주세요."}
	}

	resp, err := m.api.request(ctx, http.MethodPost, EndpointAdminLogin, "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return &LoginError{Message: "로그인 처리 중 연결 오류가 발생했습니다."}
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return &LoginError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp, "로그인에 실패했습니다."),
		}
	}

	var payload struct {
		AccessToken string `json:"accessToken"`
		Email       string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return &LoginError{Message: "로그인 응답이 올바르지 않습니다."}
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return &LoginError{Message: "로그인 토큰을 발급받지 못했습니다."}
	}

	m.SetAuth(payload.AccessToken, payload.Email)
	return nil
}
