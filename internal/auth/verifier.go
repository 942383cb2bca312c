// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth verifies admin access tokens against the identity
// provider and the configured admin allow-list.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kmscorp/kms-site/internal/supabase"
)

// Error is an authentication or authorization failure with the HTTP
// status the caller should surface.
type Error struct {
	Status  int
	Message string
	Detail  string
}

func (e *Error) Error() string {
	return e.Message
}

// IdentityClient is the slice of the provider client the verifier needs.
type IdentityClient interface {
	UserByToken(ctx context.Context, accessToken string) (supabase.User, error)
	SignInWithPassword(ctx context.Context, anonKey, email, password string) (supabase.Session, error)
}

// Verifier checks bearer tokens. It is stateless: every call pays one
// upstream round trip, nothing is cached.
type Verifier struct {
	client      IdentityClient
	anonKey     string
	adminEmails map[string]struct{}
}

// NewVerifier creates a verifier for the given allow-list. Keys of
// adminEmails must already be trimmed and lower-cased.
func NewVerifier(client IdentityClient, anonKey string, adminEmails map[string]struct{}) *Verifier {
	return &Verifier{
		client:      client,
		anonKey:     anonKey,
		adminEmails: adminEmails,
	}
}

// VerifyToken resolves the identity behind the token and checks its email
// against the allow-list. An empty token fails locally without any
// network call. Returns the provider-confirmed email on success.
func (v *Verifier) VerifyToken(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", &Error{Status: http.StatusUnauthorized, Message: "관리자 로그인이 필요합니다."}
	}

	user, err := v.client.UserByToken(ctx, token)
	if err != nil {
		var apiErr *supabase.APIError
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode == http.StatusUnauthorized {
				return "", &Error{Status: http.StatusUnauthorized, Message: "로그인이 만료되었습니다.", Detail: apiErr.Detail}
			}
			return "", &Error{Status: http.StatusBadGateway, Message: "관리자 사용자 조회에 실패했습니다.", Detail: apiErr.Detail}
		}
		return "", &Error{Status: http.StatusBadGateway, Message: "인증 서버 연결에 실패했습니다."}
	}

	if user.Email == "" {
		return "", &Error{Status: http.StatusUnauthorized, Message: "유효한 관리자 계정이 아닙니다."}
	}

	if _, ok := v.adminEmails[strings.ToLower(user.Email)]; !ok {
		return "", &Error{Status: http.StatusForbidden, Message: "관리자 권한이 없는 계정입니다."}
	}

	return user.Email, nil
}

// LoginResult is an issued admin session.
type LoginResult struct {
	AccessToken string
	Email       string
	ExpiresIn   int64
}

// Login exchanges credentials for an access token, then runs the same
// allow-list verification on the issued token. A valid identity that is
// not on the allow-list never receives a usable session.
func (v *Verifier) Login(ctx context.Context, email, password string) (LoginResult, error) {
	session, err := v.client.SignInWithPassword(ctx, v.anonKey, email, password)
	if err != nil {
		var apiErr *supabase.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return LoginResult{}, &Error{Status: http.StatusUnauthorized, Message: "이메일 또는 비밀번호가 올바르지 않습니다.", Detail: apiErr.Detail}
		}
		return LoginResult{}, &Error{Status: http.StatusBadGateway, Message: "로그인 처리 중 서버 오류가 발생했습니다."}
	}

	if session.AccessToken == "" {
		return LoginResult{}, &Error{Status: http.StatusUnauthorized, Message: "로그인 토큰을 발급받지 못했습니다."}
	}

	verifiedEmail, err := v.VerifyToken(ctx, session.AccessToken)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		AccessToken: session.AccessToken,
		Email:       verifiedEmail,
		ExpiresIn:   session.ExpiresIn,
	}, nil
}
