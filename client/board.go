// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kmscorp/kms-site/internal/model"
)

// ErrBoardLoginRequired reports a board mutation attempted without a
// session.
var ErrBoardLoginRequired = errors.New("관리자 로그인이 필요합니다.")

// BoardError is a board request failure with a user-facing message.
type BoardError struct {
	StatusCode int
	Message    string
}

func (e *BoardError) Error() string {
	return e.Message
}

// BoardClient reads and administers the notice board.
type BoardClient struct {
	api     *Client
	session *SessionManager
}

// NewBoardClient creates a board client bound to the session.
func NewBoardClient(api *Client, session *SessionManager) *BoardClient {
	return &BoardClient{api: api, session: session}
}

// List fetches up to limit posts, newest first. A non-positive limit
// lets the server apply its default.
func (c *BoardClient) List(ctx context.Context, limit int) ([]model.BoardPost, error) {
	path := EndpointBoardPosts
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", EndpointBoardPosts, limit)
	}

	resp, err := c.api.request(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, &BoardError{Message: "공지 조회 중 연결 오류가 발생했습니다."}
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, &BoardError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp, "공지 조회에 실패했습니다."),
		}
	}

	var posts []model.BoardPost
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, &BoardError{Message: "공지 목록 응답이 올바르지 않습니다."}
	}
	return posts, nil
}

// Create submits a new post. Requires a session; a 401/403 response
// invalidates it.
func (c *BoardClient) Create(ctx context.Context, input model.BoardPostInput) (model.BoardPost, error) {
	if !c.session.IsLoggedIn() {
		return model.BoardPost{}, ErrBoardLoginRequired
	}

	resp, err := c.api.request(ctx, http.MethodPost, EndpointBoardPosts, c.session.Token(), input)
	if err != nil {
		return model.BoardPost{}, &BoardError{Message: "공지 등록 중 연결 오류가 발생했습니다."}
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusCreated {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			c.session.Invalidate()
		}
		return model.BoardPost{}, &BoardError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp, "공지 등록에 실패했습니다."),
		}
	}

	var post model.BoardPost
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return model.BoardPost{}, &BoardError{Message: "공지 등록 응답이 올바르지 않습니다."}
	}
	return post, nil
}

// Delete removes a post by id. Requires a session; a 401/403 response
// invalidates it.
func (c *BoardClient) Delete(ctx context.Context, id int64) error {
	if !c.session.IsLoggedIn() {
		return ErrBoardLoginRequired
	}

	path := fmt.Sprintf("%s?id=%d", EndpointBoardPosts, id)
	resp, err := c.api.request(ctx, http.MethodDelete, path, c.session.Token(), nil)
	if err != nil {
		return &BoardError{Message: "공지 삭제 중 연결 오류가 발생했습니다."}
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			c.session.Invalidate()
		}
		return &BoardError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp, "공지 삭제에 실패했습니다."),
		}
	}
	return nil
}
