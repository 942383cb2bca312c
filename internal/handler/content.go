// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/kmscorp/kms-site/internal/config"
	"github.com/kmscorp/kms-site/internal/middleware"
	"github.com/kmscorp/kms-site/internal/model"
)

// contentResponse is the GET/POST /site-content body.
type contentResponse struct {
	Content   model.ContentDocument `json:"content"`
	UpdatedAt *time.Time            `json:"updatedAt"`
}

// GetSiteContent handles GET /site-content. An absent document is an
// empty object; only an upstream failure surfaces an error.
func (h *Handler) GetSiteContent(w http.ResponseWriter, r *http.Request) {
	if !h.requireConfig(w, config.Requirement{}) {
		return
	}

	doc, updatedAt, err := h.content.Get(r.Context())
	if err != nil {
		slog.Error("site content read failed", "error", err)
		writeError(w, http.StatusBadGateway, "사이트 콘텐츠 조회에 실패했습니다.", upstreamDetail(err))
		return
	}

	writeJSON(w, http.StatusOK, contentResponse{Content: doc, UpdatedAt: updatedAt})
}

// saveContentRequest is the POST /site-content body. Content stays raw
// until the object check below.
type saveContentRequest struct {
	Content json.RawMessage `json:"content"`
}

// SaveSiteContent handles POST /site-content (admin-gated). The client
// already merged its patch; the document is replaced wholesale.
func (h *Handler) SaveSiteContent(w http.ResponseWriter, r *http.Request) {
	var req saveContentRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "요청 본문(JSON) 형식이 올바르지 않습니다.", "")
		return
	}

	doc, err := model.DecodeContentDocument(req.Content)
	if err != nil {
		writeError(w, http.StatusBadRequest, "content 객체를 전달해 주세요.", "")
		return
	}

	stored, updatedAt, err := h.content.Put(r.Context(), doc)
	if err != nil {
		slog.Error("site content write failed", "error", err, "admin", middleware.AdminEmail(r))
		writeError(w, http.StatusBadGateway, "사이트 콘텐츠 저장에 실패했습니다.", upstreamDetail(err))
		return
	}

	slog.Info("site content saved", "admin", middleware.AdminEmail(r), "sections", len(stored))
	noStore(w)
	writeJSON(w, http.StatusOK, contentResponse{Content: stored, UpdatedAt: updatedAt})
}
