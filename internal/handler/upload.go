// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/kmscorp/kms-site/internal/middleware"
	"github.com/kmscorp/kms-site/internal/model"
	"github.com/kmscorp/kms-site/internal/service"
)

// Raw upload header names.
const (
	HeaderFileName     = "X-File-Name"
	HeaderUploadFolder = "X-Upload-Folder"
)

// maxUploadBody bounds the request body read: the base64 encoding of a
// maximum-size payload plus JSON framing headroom.
const maxUploadBody = model.MaxUploadSize*2 + 64*1024

// uploadRequest is the JSON POST /upload-asset body.
type uploadRequest struct {
	FileName string `json:"fileName"`
	DataURL  string `json:"dataUrl"`
	Folder   string `json:"folder"`
}

// UploadAsset handles POST /upload-asset (admin-gated). Accepts either a
// JSON body with a base64 data URL, or a raw binary body with the file
// name and folder supplied via headers.
func (h *Handler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	contentType := r.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)

	var input service.UploadInput
	if mediaType == "application/json" {
		var req uploadRequest
		if err := decodeJSONBody(r, &req); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeError(w, http.StatusRequestEntityTooLarge, "파일은 4.3MB 이하만 업로드할 수 있습니다.", "")
				return
			}
			writeError(w, http.StatusBadRequest, "요청 본문(JSON) 형식이 올바르지 않습니다.", "")
			return
		}

		dataMime, data, ok := service.DecodeDataURL(req.DataURL)
		if !ok {
			writeError(w, http.StatusBadRequest, "파일 데이터(dataUrl)가 올바르지 않습니다.", "")
			return
		}
		input = service.UploadInput{
			FileName: req.FileName,
			Folder:   req.Folder,
			Mime:     dataMime,
			Data:     data,
		}
	} else {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "파일은 4.3MB 이하만 업로드할 수 있습니다.", "")
			return
		}

		fileName := strings.TrimSpace(r.Header.Get(HeaderFileName))
		uploadMime := mediaType
		if uploadMime == "" || uploadMime == "application/octet-stream" {
			// No declared type: infer from the filename suffix.
			if byExt := mime.TypeByExtension(filepath.Ext(fileName)); byExt != "" {
				uploadMime, _, _ = mime.ParseMediaType(byExt)
			}
		}
		input = service.UploadInput{
			FileName: fileName,
			Folder:   strings.TrimSpace(r.Header.Get(HeaderUploadFolder)),
			Mime:     uploadMime,
			Data:     data,
		}
	}

	asset, err := h.assets.Upload(r.Context(), input)
	if err != nil {
		var uploadErr *service.UploadError
		if errors.As(err, &uploadErr) {
			if uploadErr.Status >= http.StatusInternalServerError {
				slog.Error("asset upload failed", "error", err, "admin", middleware.AdminEmail(r))
			}
			writeError(w, uploadErr.Status, uploadErr.Message, uploadErr.Detail)
			return
		}
		writeError(w, http.StatusBadGateway, "파일 업로드 중 서버 오류가 발생했습니다.", "")
		return
	}

	slog.Info("asset uploaded", "path", asset.Path, "size", asset.Size, "admin", middleware.AdminEmail(r))
	noStore(w)
	writeJSON(w, http.StatusOK, asset)
}
