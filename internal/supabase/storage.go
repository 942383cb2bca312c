// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
)

var bucketExistsPattern = regexp.MustCompile(`(?i)already exists|resource already exists|duplicate`)

// EnsureBucket makes sure the public bucket exists, creating it when
// absent. Creation races are tolerated: a 409 or an "already exists"
// detail counts as success.
func (c *Client) EnsureBucket(ctx context.Context, bucket string) error {
	_, err := c.do(ctx, http.MethodGet, "/storage/v1/bucket/"+url.PathEscape(bucket), nil, nil)
	if err == nil {
		return nil
	}

	payload, err := json.Marshal(map[string]any{
		"id":     bucket,
		"name":   bucket,
		"public": true,
	})
	if err != nil {
		return fmt.Errorf("encoding bucket: %w", err)
	}

	_, err = c.do(ctx, http.MethodPost, "/storage/v1/bucket", map[string]string{
		"Content-Type": "application/json",
	}, payload)
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusConflict || bucketExistsPattern.MatchString(apiErr.Detail) {
			return nil
		}
	}
	return err
}

// UploadObject stores an object, overwriting any existing one at the path.
func (c *Client) UploadObject(ctx context.Context, bucket, path, mime string, data []byte) error {
	if mime == "" {
		mime = "application/octet-stream"
	}
	_, err := c.do(ctx, http.MethodPost,
		"/storage/v1/object/"+url.PathEscape(bucket)+"/"+EncodeObjectPath(path),
		map[string]string{
			"Content-Type": mime,
			"x-upsert":     "true",
		}, data)
	return err
}

// DownloadObject fetches an object's bytes. Callers can distinguish a
// missing object with IsNotFound.
func (c *Client) DownloadObject(ctx context.Context, bucket, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet,
		"/storage/v1/object/"+url.PathEscape(bucket)+"/"+EncodeObjectPath(path), nil, nil)
}

// PublicObjectURL returns the public URL for an object in a public bucket.
func (c *Client) PublicObjectURL(bucket, path string) string {
	return c.baseURL + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + EncodeObjectPath(path)
}
