// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/kmscorp/kms-site/internal/model"
)

// ErrLoginRequired reports an admin action attempted without a session.
// It fails locally, before any network call.
var ErrLoginRequired = errors.New("관리자 로그인 후 저장할 수 있습니다.")

// SaveError is a content save failure with a user-facing message.
type SaveError struct {
	StatusCode int
	Message    string
}

func (e *SaveError) Error() string {
	return e.Message
}

// ContentClient loads the site content document and merges partial edits
// back into it on save.
type ContentClient struct {
	api     *Client
	session *SessionManager

	mu  sync.Mutex
	doc model.ContentDocument
}

// NewContentClient creates a content client bound to the session.
func NewContentClient(api *Client, session *SessionManager) *ContentClient {
	return &ContentClient{
		api:     api,
		session: session,
		doc:     model.ContentDocument{},
	}
}

// Load fetches the current content document. It never fails: any
// network or decode problem leaves an empty document, because rendering
// must not break when saved overrides are unavailable. Returns the
// loaded document.
func (c *ContentClient) Load(ctx context.Context) model.ContentDocument {
	doc := model.ContentDocument{}

	resp, err := c.api.request(ctx, http.MethodGet, EndpointSiteContent, "", nil)
	if err == nil {
		func() {
			defer drainAndClose(resp)
			if resp.StatusCode != http.StatusOK {
				return
			}
			var payload struct {
				Content json.RawMessage `json:"content"`
			}
			if json.NewDecoder(resp.Body).Decode(&payload) != nil {
				return
			}
			if decoded, decodeErr := model.DecodeContentDocument(payload.Content); decodeErr == nil {
				doc = decoded
			}
		}()
	}

	c.mu.Lock()
	c.doc = doc
	c.mu.Unlock()
	return doc.Clone()
}

// Document returns the cached document.
func (c *ContentClient) Document() model.ContentDocument {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Clone()
}

// SavePatch shallow-merges the patch into the cached document and saves
// the entire merged document, so fields the editor never touched are
// preserved. On success the cache adopts the server's authoritative
// copy, or the local merge when the server echoes nothing usable. A
// 401/403 response invalidates the session.
func (c *ContentClient) SavePatch(ctx context.Context, patch model.ContentDocument) error {
	if !c.session.IsLoggedIn() {
		return ErrLoginRequired
	}

	c.mu.Lock()
	merged := model.Merge(c.doc, patch)
	c.mu.Unlock()

	resp, err := c.api.request(ctx, http.MethodPost, EndpointSiteContent, c.session.Token(), map[string]any{
		"content": merged,
	})
	if err != nil {
		return &SaveError{Message: "사이트 콘텐츠 저장 중 연결 오류가 발생했습니다."}
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			c.session.Invalidate()
		}
		return &SaveError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp, "사이트 콘텐츠 저장에 실패했습니다."),
		}
	}

	next := merged
	var payload struct {
		Content json.RawMessage `json:"content"`
	}
	if json.NewDecoder(resp.Body).Decode(&payload) == nil {
		if stored, decodeErr := model.DecodeContentDocument(payload.Content); decodeErr == nil {
			next = stored
		}
	}

	c.mu.Lock()
	c.doc = next
	c.mu.Unlock()
	return nil
}
