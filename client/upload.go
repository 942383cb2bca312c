// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kmscorp/kms-site/internal/model"
	"github.com/kmscorp/kms-site/internal/supabase"
)

// ErrUploadLoginRequired reports an upload attempted without a session.
var ErrUploadLoginRequired = errors.New("관리자 로그인 후 업로드할 수 있습니다.")

// UploadError is an upload failure with a user-facing message.
type UploadError struct {
	StatusCode int
	Message    string
}

func (e *UploadError) Error() string {
	return e.Message
}

// publicUploadConfig is the GET /public-config payload.
type publicUploadConfig struct {
	SupabaseURL     string `json:"supabaseUrl"`
	SupabaseAnonKey string `json:"supabaseAnonKey"`
	StorageBucket   string `json:"storageBucket"`
}

var unsafePathSegment = regexp.MustCompile(`[^a-zA-Z0-9/_-]`)

// sanitizeSegment mirrors the folder/name cleanup the backend applies.
func sanitizeSegment(value string) string {
	cleaned := unsafePathSegment.ReplaceAllString(strings.TrimSpace(value), "-")
	cleaned = regexp.MustCompile(`/+`).ReplaceAllString(cleaned, "/")
	return strings.Trim(cleaned, "/")
}

// splitFileName splits a file name into base and extension, without dots.
func splitFileName(fileName string) (base, ext string) {
	name := strings.TrimSpace(fileName)
	if idx := strings.LastIndex(name, "."); idx > 0 && idx < len(name)-1 {
		return name[:idx], strings.ToLower(name[idx+1:])
	}
	return name, ""
}

// Uploader stores assets, preferring a direct upload to the storage
// provider (using the anonymous credential plus the admin bearer token)
// and falling back to the backend's JSON path for smaller files.
type Uploader struct {
	api        *Client
	session    *SessionManager
	httpClient *http.Client

	mu     sync.Mutex
	config *publicUploadConfig
}

// NewUploader creates an uploader bound to the session. A nil httpClient
// falls back to http.DefaultClient for the direct storage calls.
func NewUploader(api *Client, session *SessionManager, httpClient *http.Client) *Uploader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Uploader{api: api, session: session, httpClient: httpClient}
}

// publicConfig fetches the direct-upload credentials, caching them
// across uploads. A failed fetch clears the cache so the next attempt
// retries.
func (u *Uploader) publicConfig(ctx context.Context) (*publicUploadConfig, error) {
	u.mu.Lock()
	cached := u.config
	u.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	resp, err := u.api.request(ctx, http.MethodGet, EndpointPublicConfig, "", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching public config: %w", err)
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, &UploadError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp, "공개 업로드 설정을 불러오지 못했습니다."),
		}
	}

	var config publicUploadConfig
	if err := json.NewDecoder(resp.Body).Decode(&config); err != nil {
		return nil, &UploadError{Message: "업로드 설정이 올바르지 않습니다."}
	}
	config.SupabaseURL = strings.TrimRight(strings.TrimSpace(config.SupabaseURL), "/")
	if config.SupabaseURL == "" || config.SupabaseAnonKey == "" || config.StorageBucket == "" {
		return nil, &UploadError{Message: "업로드 설정이 올바르지 않습니다."}
	}

	u.mu.Lock()
	u.config = &config
	u.mu.Unlock()
	return &config, nil
}

// invalidateConfig drops the cached credentials after a failure.
func (u *Uploader) invalidateConfig() {
	u.mu.Lock()
	u.config = nil
	u.mu.Unlock()
}

// objectPath builds the destination path for a direct upload.
func objectPath(fileName, folder string) string {
	safeFolder := sanitizeSegment(folder)
	if safeFolder == "" {
		safeFolder = "cms-assets"
	}
	base, ext := splitFileName(fileName)
	safeBase := sanitizeSegment(base)
	if safeBase == "" {
		safeBase = "asset"
	}
	safeExt := sanitizeSegment(ext)
	if safeExt == "" {
		safeExt = "bin"
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
	return fmt.Sprintf("%s/%d-%s-%s.%s", safeFolder, time.Now().UnixMilli(), random, safeBase, safeExt)
}

// uploadDirect sends the bytes straight to the storage provider.
// Returns the resulting public URL.
func (u *Uploader) uploadDirect(ctx context.Context, fileName, mime string, data []byte, folder string) (string, error) {
	config, err := u.publicConfig(ctx)
	if err != nil {
		u.invalidateConfig()
		return "", err
	}

	if mime == "" {
		mime = "application/octet-stream"
	}
	encodedPath := supabase.EncodeObjectPath(objectPath(fileName, folder))
	uploadURL := config.SupabaseURL + "/storage/v1/object/" + config.StorageBucket + "/" + encodedPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("apikey", config.SupabaseAnonKey)
	req.Header.Set("Authorization", "Bearer "+u.session.Token())
	req.Header.Set("Content-Type", mime)
	req.Header.Set("x-upsert", "true")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("direct upload: %w", err)
	}
	defer drainAndClose(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UploadError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp, "스토리지 직접 업로드에 실패했습니다."),
		}
	}

	return config.SupabaseURL + "/storage/v1/object/public/" + config.StorageBucket + "/" + encodedPath, nil
}

// uploadViaBackend sends the file through POST /upload-asset as a base64
// data URL. Returns the stored asset's public URL.
func (u *Uploader) uploadViaBackend(ctx context.Context, fileName, mime string, data []byte, folder string) (string, error) {
	if mime == "" {
		mime = "application/octet-stream"
	}
	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)

	if folder == "" {
		folder = "cms-assets"
	}
	resp, err := u.api.request(ctx, http.MethodPost, EndpointUploadAsset, u.session.Token(), map[string]string{
		"fileName": fileName,
		"dataUrl":  dataURL,
		"folder":   folder,
	})
	if err != nil {
		return "", fmt.Errorf("backend upload: %w", err)
	}
	defer drainAndClose(resp)

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			u.session.Invalidate()
		}
		return "", &UploadError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp, "파일 업로드에 실패했습니다."),
		}
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.URL) == "" {
		return "", &UploadError{Message: "업로드 URL을 받지 못했습니다."}
	}
	return strings.TrimSpace(payload.URL), nil
}

// Upload stores a file and returns its public URL. The direct storage
// path is tried first; when it fails, files at or under the fallback
// threshold retry through the backend, larger files surface the direct
// error as-is.
func (u *Uploader) Upload(ctx context.Context, fileName, mime string, data []byte, folder string) (string, error) {
	if !u.session.IsLoggedIn() {
		return "", ErrUploadLoginRequired
	}
	if int64(len(data)) > model.ClientDirectMaxSize {
		return "", &UploadError{Message: "파일은 50MB 이하만 업로드할 수 있습니다."}
	}

	url, directErr := u.uploadDirect(ctx, fileName, mime, data, folder)
	if directErr == nil {
		return url, nil
	}

	if int64(len(data)) > model.ClientFallbackMaxSize {
		return "", directErr
	}
	return u.uploadViaBackend(ctx, fileName, mime, data, folder)
}
