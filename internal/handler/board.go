// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kmscorp/kms-site/internal/config"
	"github.com/kmscorp/kms-site/internal/middleware"
	"github.com/kmscorp/kms-site/internal/model"
	"github.com/kmscorp/kms-site/internal/store"
)

// ListBoardPosts handles GET /board-posts?limit=N. Public.
func (h *Handler) ListBoardPosts(w http.ResponseWriter, r *http.Request) {
	if !h.requireConfig(w, config.Requirement{}) {
		return
	}

	limit := model.BoardDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = store.ClampLimit(parsed, true)
		}
	}

	posts, err := h.board.List(r.Context(), limit)
	if err != nil {
		slog.Error("board list failed", "error", err)
		writeError(w, http.StatusBadGateway, "공지 조회에 실패했습니다.", upstreamDetail(err))
		return
	}

	noStore(w)
	writeJSON(w, http.StatusOK, posts)
}

// CreateBoardPost handles POST /board-posts (admin-gated).
func (h *Handler) CreateBoardPost(w http.ResponseWriter, r *http.Request) {
	var input model.BoardPostInput
	if err := decodeJSONBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "요청 본문(JSON) 형식이 올바르지 않습니다.", "")
		return
	}

	post, err := h.board.Create(r.Context(), input)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message, "")
			return
		}
		slog.Error("board create failed", "error", err, "admin", middleware.AdminEmail(r))
		writeError(w, http.StatusBadGateway, "공지 등록에 실패했습니다.", upstreamDetail(err))
		return
	}

	noStore(w)
	writeJSON(w, http.StatusCreated, post)
}

// deleteRequest is the optional DELETE /board-posts body.
type deleteRequest struct {
	ID int64 `json:"id"`
}

// DeleteBoardPost handles DELETE /board-posts (admin-gated). The id
// comes from the query string or, failing that, the JSON body.
func (h *Handler) DeleteBoardPost(w http.ResponseWriter, r *http.Request) {
	var id int64
	if raw := r.URL.Query().Get("id"); raw != "" {
		id, _ = strconv.ParseInt(raw, 10, 64)
	} else {
		var req deleteRequest
		if err := decodeJSONBody(r, &req); err == nil {
			id = req.ID
		}
	}

	if id <= 0 {
		writeError(w, http.StatusBadRequest, "삭제할 게시글 ID가 올바르지 않습니다.", "")
		return
	}

	if err := h.board.Delete(r.Context(), id); err != nil {
		var notFound *store.ErrPostNotFound
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, "삭제할 게시글을 찾을 수 없습니다.", "")
			return
		}
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message, "")
			return
		}
		slog.Error("board delete failed", "error", err, "id", id, "admin", middleware.AdminEmail(r))
		writeError(w, http.StatusBadGateway, "공지 삭제에 실패했습니다.", upstreamDetail(err))
		return
	}

	noStore(w)
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}
