// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"github.com/kmscorp/kms-site/internal/model"
	"github.com/kmscorp/kms-site/internal/supabase"
)

// BoardTable is the table backing the notice board.
const BoardTable = "board_posts"

// ErrPostNotFound reports a delete whose target row does not exist.
type ErrPostNotFound struct {
	ID int64
}

func (e *ErrPostNotFound) Error() string {
	return fmt.Sprintf("board post %d not found", e.ID)
}

// BoardStore lists, creates and deletes board posts.
type BoardStore struct {
	client *supabase.Client
}

// NewBoardStore creates a board store.
func NewBoardStore(client *supabase.Client) *BoardStore {
	return &BoardStore{client: client}
}

// ClampLimit normalizes a requested page size to 1..BoardMaxLimit,
// defaulting when the request carries none.
func ClampLimit(requested int, hasValue bool) int {
	if !hasValue {
		return model.BoardDefaultLimit
	}
	if requested < 1 {
		return 1
	}
	if requested > model.BoardMaxLimit {
		return model.BoardMaxLimit
	}
	return requested
}

// List returns up to limit posts, newest first.
func (s *BoardStore) List(ctx context.Context, limit int) ([]model.BoardPost, error) {
	var posts []model.BoardPost
	err := s.client.SelectRows(ctx, BoardTable,
		"id,title,author,content,attachment_url,attachment_name,created_at",
		"created_at.desc", limit, &posts)
	if err != nil {
		return nil, fmt.Errorf("listing board posts: %w", err)
	}
	if posts == nil {
		posts = []model.BoardPost{}
	}
	return posts, nil
}

// boardRow is the insert payload; empty optional fields become NULLs.
type boardRow struct {
	Author         *string `json:"author"`
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	AttachmentURL  *string `json:"attachment_url"`
	AttachmentName *string `json:"attachment_name"`
}

// Create sanitizes and validates the input, then inserts the post and
// returns the stored row. Validation failures are *model.ValidationError.
func (s *BoardStore) Create(ctx context.Context, input model.BoardPostInput) (model.BoardPost, error) {
	input.Sanitize()
	if verr := input.Validate(); verr != nil {
		return model.BoardPost{}, verr
	}

	row := boardRow{
		Title:   input.Title,
		Content: input.Content,
	}
	if input.Author != "" {
		row.Author = &input.Author
	}
	if input.AttachmentURL != "" {
		row.AttachmentURL = &input.AttachmentURL
	}
	if input.AttachmentName != "" {
		row.AttachmentName = &input.AttachmentName
	}

	var post model.BoardPost
	if err := s.client.InsertRow(ctx, BoardTable, row, &post); err != nil {
		return model.BoardPost{}, fmt.Errorf("inserting board post: %w", err)
	}
	return post, nil
}

// Delete removes a post by id. Deleting a row that does not exist
// returns *ErrPostNotFound instead of silently succeeding.
func (s *BoardStore) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return &model.ValidationError{Message: "삭제할 게시글 ID가 올바르지 않습니다."}
	}

	deleted, err := s.client.DeleteRowByID(ctx, BoardTable, id)
	if err != nil {
		return fmt.Errorf("deleting board post: %w", err)
	}
	if deleted == 0 {
		return &ErrPostNotFound{ID: id}
	}
	return nil
}
