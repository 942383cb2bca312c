// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package supabase is a typed client for the hosted provider's REST
// surface: identity lookup and password grant (auth), table CRUD (rest)
// and object storage. Every method performs exactly one upstream round
// trip; nothing is cached or retried.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// Client talks to one provider project using a fixed credential.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the given project base URL and API key.
// A nil httpClient falls back to http.DefaultClient; no request timeout
// is imposed beyond what the caller's context carries.
func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// BaseURL returns the project base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Detail)
}

// missingTablePattern recognizes the provider's "relation/table does not
// exist" error shapes (PostgREST PGRST205, Postgres 42P01). Matching is
// isolated here; callers only see IsMissingTableError.
var missingTablePattern = regexp.MustCompile(`(?i)PGRST205|42P01|(relation|table|schema).*(does not exist|not found)|could not find the table`)

// IsMissingTableError reports whether the error is the provider telling
// us the backing table has not been provisioned.
func IsMissingTableError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return missingTablePattern.MatchString(apiErr.Detail)
}

// IsNotFound reports whether the error is an upstream 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// readErrorPayload extracts a human-readable detail string from an error
// response body: the JSON "message" field when present, otherwise the
// whole payload, otherwise the raw text.
func readErrorPayload(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		return "UNKNOWN_ERROR"
	}

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && strings.TrimSpace(payload.Message) != "" {
		return strings.TrimSpace(payload.Message)
	}
	return string(bytes.TrimSpace(body))
}

// do issues a request and returns the response body for 2xx statuses.
// Non-2xx statuses become an *APIError carrying the upstream detail.
func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: readErrorPayload(resp)}
	}

	return io.ReadAll(resp.Body)
}

// EncodeObjectPath URL-encodes each segment of an object path while
// keeping the slashes.
func EncodeObjectPath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
