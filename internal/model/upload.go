// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"path/filepath"
	"strings"
)

// Upload size limits.
const (
	// MaxUploadSize is the backend ceiling for JSON/base64 and raw binary
	// uploads: 4.3MB.
	MaxUploadSize = int64(43 * 1024 * 1024 / 10)
	// ClientFallbackMaxSize is the largest file the client retries through
	// the backend after a failed direct-to-storage upload: 2.8MB.
	ClientFallbackMaxSize = int64(28 * 1024 * 1024 / 10)
	// ClientDirectMaxSize is the client-side ceiling for direct uploads.
	ClientDirectMaxSize = int64(50 * 1024 * 1024)
)

// Document MIME types allowed in addition to image/* and video/*.
var allowedDocumentMimes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-powerpoint":                                     true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/haansoft-hwp": true,
	"application/zip":          true,
	"text/plain":               true,
	"text/csv":                 true,
}

// mimeExtensions maps MIME types to file extensions for stored objects.
var mimeExtensions = map[string]string{
	"image/jpeg":         "jpg",
	"image/png":          "png",
	"image/webp":         "webp",
	"image/gif":          "gif",
	"image/svg+xml":      "svg",
	"video/mp4":          "mp4",
	"video/webm":         "webm",
	"video/quicktime":    "mov",
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/vnd.ms-excel": "xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": "xlsx",
	"application/vnd.ms-powerpoint":                                     "ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
	"application/haansoft-hwp": "hwp",
	"application/zip":          "zip",
	"text/plain":               "txt",
	"text/csv":                 "csv",
}

// IsAllowedUploadMime reports whether the MIME type may be uploaded:
// any image or video type, or one of the allow-listed document types.
func IsAllowedUploadMime(mime string) bool {
	normalized := strings.ToLower(strings.TrimSpace(mime))
	if normalized == "" {
		return false
	}
	if strings.HasPrefix(normalized, "image/") || strings.HasPrefix(normalized, "video/") {
		return true
	}
	return allowedDocumentMimes[normalized]
}

// ExtensionForMime derives a file extension from the MIME type, falling
// back to the file name's own suffix, then to "bin".
func ExtensionForMime(mime, fileName string) string {
	if ext, ok := mimeExtensions[strings.ToLower(strings.TrimSpace(mime))]; ok {
		return ext
	}
	if ext := strings.TrimPrefix(filepath.Ext(fileName), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return "bin"
}

// UploadedAsset describes a stored object. Assets are not persisted as
// records; the public URL is the only durable reference.
type UploadedAsset struct {
	URL    string `json:"url"`
	Path   string `json:"path"`
	Bucket string `json:"bucket"`
	Mime   string `json:"mime"`
	Size   int64  `json:"size"`
}
