// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package client is the site's admin SDK: session lifecycle, content
// patching, asset upload and the notice board, speaking to the backend
// endpoints and, for direct uploads, to the storage provider itself.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Endpoint paths on the backend.
const (
	EndpointAdminLogin   = "/admin-login"
	EndpointAdminSession = "/admin-session"
	EndpointSiteContent  = "/site-content"
	EndpointBoardPosts   = "/board-posts"
	EndpointUploadAsset  = "/upload-asset"
	EndpointPublicConfig = "/public-config"
)

// Client issues requests against one backend deployment.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given backend base URL. A nil httpClient
// falls back to http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// request issues one JSON API request. A non-nil body is JSON-encoded;
// a non-empty token rides as a bearer header.
func (c *Client) request(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

// readErrorMessage extracts a user-facing message from an error
// response. The upstream detail is appended in parentheses only when the
// message reports a failure ("실패"), matching the site's status lines.
func readErrorMessage(resp *http.Response, fallback string) string {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fallback
	}

	message := strings.TrimSpace(payload.Message)
	detail := strings.TrimSpace(payload.Detail)
	if message == "" {
		if detail != "" {
			return detail
		}
		return fallback
	}
	if detail != "" && strings.Contains(message, "실패") {
		return message + " (" + detail + ")"
	}
	return message
}

// drainAndClose releases a response body so the connection can be reused.
func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4*1024))
	_ = resp.Body.Close()
}
