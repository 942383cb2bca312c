// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// Board post field limits, enforced server-side.
const (
	BoardTitleMaxLen          = 120
	BoardContentMaxLen        = 2000
	BoardAuthorMaxLen         = 30
	BoardAttachmentURLMaxLen  = 2048
	BoardAttachmentNameMaxLen = 255
)

// Board listing limits.
const (
	BoardDefaultLimit = 20
	BoardMaxLimit     = 50
)

// BoardPost is a notice board entry. Posts are immutable once created
// except for deletion.
type BoardPost struct {
	ID             int64     `json:"id"`
	Author         *string   `json:"author"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	AttachmentURL  *string   `json:"attachment_url,omitempty"`
	AttachmentName *string   `json:"attachment_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// BoardPostInput carries a board post submission before validation.
type BoardPostInput struct {
	Author         string `json:"author"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	AttachmentURL  string `json:"attachmentUrl"`
	AttachmentName string `json:"attachmentName"`
}

// boardTextPolicy strips all HTML from user-submitted board text.
var boardTextPolicy = bluemonday.StrictPolicy()

// Sanitize trims every field and strips HTML markup from the free-text
// fields. Length limits are checked afterwards, on the cleaned values.
func (in *BoardPostInput) Sanitize() {
	in.Author = strings.TrimSpace(boardTextPolicy.Sanitize(in.Author))
	in.Title = strings.TrimSpace(boardTextPolicy.Sanitize(in.Title))
	in.Content = strings.TrimSpace(boardTextPolicy.Sanitize(in.Content))
	in.AttachmentURL = strings.TrimSpace(in.AttachmentURL)
	in.AttachmentName = strings.TrimSpace(boardTextPolicy.Sanitize(in.AttachmentName))
}

// Validate checks required fields and length bounds. The returned
// ValidationError message is user-facing.
func (in *BoardPostInput) Validate() *ValidationError {
	if in.Title == "" || in.Content == "" {
		return &ValidationError{Message: "제목과 내용은 필수 입력입니다."}
	}
	if len([]rune(in.Title)) > BoardTitleMaxLen {
		return &ValidationError{Message: "제목은 120자 이하여야 합니다."}
	}
	if len([]rune(in.Content)) > BoardContentMaxLen {
		return &ValidationError{Message: "내용은 2000자 이하여야 합니다."}
	}
	if len([]rune(in.Author)) > BoardAuthorMaxLen {
		return &ValidationError{Message: "작성자는 30자 이하여야 합니다."}
	}
	if in.AttachmentName != "" && in.AttachmentURL == "" {
		return &ValidationError{Message: "첨부파일 URL이 누락되었습니다."}
	}
	if len(in.AttachmentURL) > BoardAttachmentURLMaxLen {
		return &ValidationError{Message: "첨부파일 URL이 너무 깁니다."}
	}
	if len([]rune(in.AttachmentName)) > BoardAttachmentNameMaxLen {
		return &ValidationError{Message: "첨부파일 이름이 너무 깁니다."}
	}
	return nil
}

// ValidationError reports malformed or out-of-bounds user input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
