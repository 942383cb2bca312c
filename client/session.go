// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
)

// Storage keys for the persisted admin session, shared by both tiers.
const (
	TokenStorageKey = "kms_admin_access_token"
	EmailStorageKey = "kms_admin_email"
)

// AuthChange is the payload delivered to session observers.
type AuthChange struct {
	LoggedIn bool
	Email    string
}

// SessionManager owns the admin token and email. State lives in memory
// and is mirrored into two persistence tiers: a short-lived one and a
// long-lived one, so a session survives reloads within a tier but can be
// cleared independently from either. Storage failures are swallowed; the
// session then behaves as memory-only.
type SessionManager struct {
	api *Client

	mu        sync.Mutex
	token     string
	email     string
	loggedIn  bool
	observers []func(AuthChange)

	sessionTier CredentialStore
	localTier   CredentialStore
}

// NewSessionManager creates a session manager over the two tiers.
func NewSessionManager(api *Client, sessionTier, localTier CredentialStore) *SessionManager {
	return &SessionManager{
		api:         api,
		sessionTier: sessionTier,
		localTier:   localTier,
	}
}

// SetAuth stores the credentials, mirrors them into both tiers and
// notifies every observer. Logged-in means both values are non-empty
// after trimming.
func (m *SessionManager) SetAuth(token, email string) {
	m.mu.Lock()
	m.token = strings.TrimSpace(token)
	m.email = strings.TrimSpace(email)
	m.loggedIn = m.token != "" && m.email != ""

	m.persist(m.sessionTier)
	m.persist(m.localTier)

	change := AuthChange{LoggedIn: m.loggedIn, Email: m.email}
	observers := make([]func(AuthChange), len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, observer := range observers {
		observer(change)
	}
}

// persist mirrors the current state into one tier, swallowing failures.
// Caller holds the lock. Empty values remove the key.
func (m *SessionManager) persist(tier CredentialStore) {
	if tier == nil {
		return
	}
	_ = tier.Set(TokenStorageKey, m.token)
	_ = tier.Set(EmailStorageKey, m.email)
}

// ClearAuth drops the session from memory and both tiers.
func (m *SessionManager) ClearAuth() {
	m.SetAuth("", "")
}

// Invalidate is ClearAuth under its failure-path name: called when any
// admin-gated request comes back 401/403 so stale state does not keep
// offering admin actions.
func (m *SessionManager) Invalidate() {
	m.ClearAuth()
}

// IsLoggedIn reports whether a token and email are both present.
func (m *SessionManager) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loggedIn
}

// Token returns the current access token, or "".
func (m *SessionManager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Email returns the current admin email, or "".
func (m *SessionManager) Email() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.email
}

// Subscribe registers an observer for auth changes. The observer is
// invoked immediately with the current state, so admin-gated surfaces
// are correct from registration time.
func (m *SessionManager) Subscribe(observer func(AuthChange)) {
	m.mu.Lock()
	m.observers = append(m.observers, observer)
	change := AuthChange{LoggedIn: m.loggedIn, Email: m.email}
	m.mu.Unlock()

	observer(change)
}

// readTier reads a key preferring the short-lived tier, swallowing
// storage failures.
func (m *SessionManager) readTier(key string) string {
	for _, tier := range []CredentialStore{m.sessionTier, m.localTier} {
		if tier == nil {
			continue
		}
		if value, err := tier.Get(key); err == nil && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// Bootstrap restores the session from storage at startup: it reads the
// persisted token, verifies it with the backend and adopts the
// server-confirmed email. Any failure (no token, network error, rejected
// token, missing email) resolves to a cleared session. Returns the
// resulting state.
func (m *SessionManager) Bootstrap(ctx context.Context) AuthChange {
	token := m.readTier(TokenStorageKey)
	if token == "" {
		m.ClearAuth()
		return AuthChange{}
	}

	email, err := m.verify(ctx, token)
	if err != nil {
		m.ClearAuth()
		return AuthChange{}
	}

	m.SetAuth(token, email)
	return AuthChange{LoggedIn: m.IsLoggedIn(), Email: m.Email()}
}

// verify asks the backend whether the token still maps to an admin.
func (m *SessionManager) verify(ctx context.Context, token string) (string, error) {
	resp, err := m.api.request(ctx, http.MethodGet, EndpointAdminSession, token, nil)
	if err != nil {
		return "", err
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return "", &SessionError{Message: readErrorMessage(resp, "관리자 세션 확인에 실패했습니다.")}
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &SessionError{Message: "관리자 세션 응답이 올바르지 않습니다."}
	}

	email := strings.TrimSpace(payload.Email)
	if email == "" {
		return "", &SessionError{Message: "유효한 관리자 계정이 아닙니다."}
	}
	return email, nil
}

// SessionError is a session verification failure with a user-facing
// message.
type SessionError struct {
	Message string
}

func (e *SessionError) Error() string {
	return e.Message
}
