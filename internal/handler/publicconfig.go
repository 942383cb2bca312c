// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
)

// publicConfigResponse is the GET /public-config body: the anonymous
// credential set the browser uses for direct-to-storage uploads.
type publicConfigResponse struct {
	SupabaseURL     string `json:"supabaseUrl"`
	SupabaseAnonKey string `json:"supabaseAnonKey"`
	StorageBucket   string `json:"storageBucket"`
}

// PublicConfig handles GET /public-config. The bucket is created on
// demand so a fresh project can accept direct uploads immediately.
func (h *Handler) PublicConfig(w http.ResponseWriter, r *http.Request) {
	if h.cfg.SupabaseURL == "" || h.cfg.AnonKey == "" {
		writeError(w, http.StatusInternalServerError,
			"공개 업로드 설정(SUPABASE_URL / SUPABASE_ANON_KEY)이 누락되었습니다.", "")
		return
	}

	if err := h.storage.EnsureBucket(r.Context(), h.cfg.StorageBucket); err != nil {
		slog.Error("bucket self-heal failed", "error", err, "bucket", h.cfg.StorageBucket)
		writeError(w, http.StatusInternalServerError, "스토리지 버킷 생성에 실패했습니다.", upstreamDetail(err))
		return
	}

	noStore(w)
	writeJSON(w, http.StatusOK, publicConfigResponse{
		SupabaseURL:     h.cfg.SupabaseURL,
		SupabaseAnonKey: h.cfg.AnonKey,
		StorageBucket:   h.cfg.StorageBucket,
	})
}
