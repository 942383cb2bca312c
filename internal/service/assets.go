// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service owns the asset upload flow: validation, object naming
// and the write to object storage.
package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kmscorp/kms-site/internal/model"
	"github.com/kmscorp/kms-site/internal/supabase"
)

// DefaultUploadFolder receives assets when the caller names no folder.
const DefaultUploadFolder = "cms-assets"

var (
	unsafeSegmentChars = regexp.MustCompile(`[^a-zA-Z0-9/_-]`)
	repeatedSlashes    = regexp.MustCompile(`/+`)
	dataURLPattern     = regexp.MustCompile(`(?i)^data:([^;]+);base64,(.+)$`)
)

// UploadError carries the HTTP status an upload failure maps to.
type UploadError struct {
	Status  int
	Message string
	Detail  string
}

func (e *UploadError) Error() string {
	return e.Message
}

// UploadInput is a validated-on-entry upload request.
type UploadInput struct {
	FileName string
	Folder   string
	Mime     string
	Data     []byte
}

// AssetService validates and stores uploaded assets.
type AssetService struct {
	client *supabase.Client
	bucket string
}

// NewAssetService creates an asset service targeting one bucket.
func NewAssetService(client *supabase.Client, bucket string) *AssetService {
	return &AssetService{client: client, bucket: bucket}
}

// SanitizeFolder strips characters outside [a-zA-Z0-9/_-], collapses
// slashes and trims edge slashes. An empty result falls back to the
// default folder.
func SanitizeFolder(folder string) string {
	cleaned := unsafeSegmentChars.ReplaceAllString(strings.TrimSpace(folder), "-")
	cleaned = repeatedSlashes.ReplaceAllString(cleaned, "/")
	cleaned = strings.Trim(cleaned, "/")
	if cleaned == "" {
		return DefaultUploadFolder
	}
	return cleaned
}

// DecodeDataURL parses a base64 data URL into its MIME type and decoded
// bytes. Returns false when the value is not a well-formed data URL.
func DecodeDataURL(dataURL string) (mime string, data []byte, ok bool) {
	match := dataURLPattern.FindStringSubmatch(strings.TrimSpace(dataURL))
	if match == nil {
		return "", nil, false
	}

	mime = strings.ToLower(strings.TrimSpace(match[1]))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(match[2]))
	if err != nil || len(decoded) == 0 {
		return "", nil, false
	}
	return mime, decoded, true
}

// objectName builds a collision-resistant object name: millisecond
// timestamp plus a random suffix plus the derived extension.
func objectName(mime, fileName string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	ext := model.ExtensionForMime(mime, fileName)
	return fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), suffix, ext)
}

// Upload validates the payload and writes it to object storage,
// returning the stored asset's public location. All validation happens
// before any storage call.
func (s *AssetService) Upload(ctx context.Context, input UploadInput) (model.UploadedAsset, error) {
	if len(input.Data) == 0 {
		return model.UploadedAsset{}, &UploadError{Status: 400, Message: "업로드할 파일 데이터가 비어 있습니다."}
	}
	if int64(len(input.Data)) > model.MaxUploadSize {
		return model.UploadedAsset{}, &UploadError{Status: 413, Message: "파일은 4.3MB 이하만 업로드할 수 있습니다."}
	}

	mime := strings.ToLower(strings.TrimSpace(input.Mime))
	if !model.IsAllowedUploadMime(mime) {
		return model.UploadedAsset{}, &UploadError{Status: 400, Message: "허용되지 않는 파일 형식입니다."}
	}

	folder := SanitizeFolder(input.Folder)
	objectPath := folder + "/" + objectName(mime, input.FileName)

	if err := s.client.EnsureBucket(ctx, s.bucket); err != nil {
		return model.UploadedAsset{}, &UploadError{Status: 502, Message: "스토리지 버킷 생성에 실패했습니다.", Detail: err.Error()}
	}
	if err := s.client.UploadObject(ctx, s.bucket, objectPath, mime, input.Data); err != nil {
		return model.UploadedAsset{}, &UploadError{Status: 502, Message: "파일 업로드에 실패했습니다. Storage 버킷 설정을 확인해 주세요.", Detail: err.Error()}
	}

	return model.UploadedAsset{
		URL:    s.client.PublicObjectURL(s.bucket, objectPath),
		Path:   objectPath,
		Bucket: s.bucket,
		Mime:   mime,
		Size:   int64(len(input.Data)),
	}, nil
}
