// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// User is the provider's identity record, reduced to what we use.
type User struct {
	Email string `json:"email"`
}

// Session is an issued access token from a password grant.
type Session struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// UserByToken resolves the identity behind an access token. The service
// key authenticates the lookup; the user token rides in the bearer header.
func (c *Client) UserByToken(ctx context.Context, accessToken string) (User, error) {
	body, err := c.do(ctx, http.MethodGet, "/auth/v1/user", map[string]string{
		"Authorization": "Bearer " + accessToken,
	}, nil)
	if err != nil {
		return User{}, err
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return User{}, fmt.Errorf("decoding user: %w", err)
	}
	user.Email = strings.TrimSpace(user.Email)
	return user, nil
}

// SignInWithPassword performs a password grant using the anon key and
// returns the issued session.
func (c *Client) SignInWithPassword(ctx context.Context, anonKey, email, password string) (Session, error) {
	payload, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return Session{}, fmt.Errorf("encoding credentials: %w", err)
	}

	// The password grant authenticates with the anon key, not the
	// service role key.
	body, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", map[string]string{
		"apikey":        anonKey,
		"Authorization": "Bearer " + anonKey,
		"Content-Type":  "application/json",
	}, payload)
	if err != nil {
		return Session{}, err
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return Session{}, fmt.Errorf("decoding session: %w", err)
	}
	session.AccessToken = strings.TrimSpace(session.AccessToken)
	return session, nil
}
