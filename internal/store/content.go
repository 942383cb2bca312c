// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store persists the site content document and board posts
// through the hosted provider.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kmscorp/kms-site/internal/model"
	"github.com/kmscorp/kms-site/internal/supabase"
)

// ContentTable is the primary table backing the content document.
const ContentTable = "site_content"

// ContentObjectPath is where the storage tier keeps the document blob.
const ContentObjectPath = "cms/site-content.json"

// ContentRepository reads and writes the single site content document.
type ContentRepository interface {
	// Get returns the current document, defaulting to an empty document
	// when none has been stored yet.
	Get(ctx context.Context) (model.ContentDocument, *time.Time, error)
	// Put replaces the stored document wholesale and returns the
	// authoritative stored copy with a fresh update timestamp.
	Put(ctx context.Context, doc model.ContentDocument) (model.ContentDocument, *time.Time, error)
}

// TableContentRepo persists the document as one row in the content table.
type TableContentRepo struct {
	client *supabase.Client
}

// NewTableContentRepo creates the table-backed repository.
func NewTableContentRepo(client *supabase.Client) *TableContentRepo {
	return &TableContentRepo{client: client}
}

// Get implements ContentRepository. Absent or malformed rows degrade to
// an empty document rather than an error.
func (r *TableContentRepo) Get(ctx context.Context) (model.ContentDocument, *time.Time, error) {
	row, err := r.client.SelectContentRow(ctx, ContentTable, model.ContentRowID)
	if err != nil {
		return nil, nil, fmt.Errorf("selecting content row: %w", err)
	}
	if row == nil {
		return model.ContentDocument{}, nil, nil
	}

	doc, decodeErr := model.DecodeContentDocument(row.Content)
	if decodeErr != nil {
		slog.Warn("stored content row is not an object, serving empty document", "error", decodeErr)
		return model.ContentDocument{}, row.UpdatedAt, nil
	}
	return doc, row.UpdatedAt, nil
}

// Put implements ContentRepository.
func (r *TableContentRepo) Put(ctx context.Context, doc model.ContentDocument) (model.ContentDocument, *time.Time, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding content document: %w", err)
	}

	row, err := r.client.UpsertContentRow(ctx, ContentTable, model.ContentRowID, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("upserting content row: %w", err)
	}
	if row == nil {
		// Provider echoed nothing usable; the local document is what was
		// written.
		return doc, nil, nil
	}

	stored, decodeErr := model.DecodeContentDocument(row.Content)
	if decodeErr != nil {
		return doc, row.UpdatedAt, nil
	}
	return stored, row.UpdatedAt, nil
}

// storedBlob is the JSON shape of the storage-tier document blob.
type storedBlob struct {
	Content   model.ContentDocument `json:"content"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// StorageContentRepo persists the document as a JSON blob in the object
// storage bucket. Used when the content table is not provisioned.
type StorageContentRepo struct {
	client *supabase.Client
	bucket string
}

// NewStorageContentRepo creates the storage-backed repository.
func NewStorageContentRepo(client *supabase.Client, bucket string) *StorageContentRepo {
	return &StorageContentRepo{client: client, bucket: bucket}
}

// Get implements ContentRepository. A missing blob is an empty document.
func (r *StorageContentRepo) Get(ctx context.Context) (model.ContentDocument, *time.Time, error) {
	if err := r.client.EnsureBucket(ctx, r.bucket); err != nil {
		return nil, nil, fmt.Errorf("ensuring bucket: %w", err)
	}

	raw, err := r.client.DownloadObject(ctx, r.bucket, ContentObjectPath)
	if err != nil {
		if supabase.IsNotFound(err) {
			return model.ContentDocument{}, nil, nil
		}
		return nil, nil, fmt.Errorf("downloading content blob: %w", err)
	}

	var blob storedBlob
	if err := json.Unmarshal(raw, &blob); err != nil || blob.Content == nil {
		slog.Warn("content blob is malformed, serving empty document")
		return model.ContentDocument{}, nil, nil
	}
	return blob.Content, &blob.UpdatedAt, nil
}

// Put implements ContentRepository.
func (r *StorageContentRepo) Put(ctx context.Context, doc model.ContentDocument) (model.ContentDocument, *time.Time, error) {
	if err := r.client.EnsureBucket(ctx, r.bucket); err != nil {
		return nil, nil, fmt.Errorf("ensuring bucket: %w", err)
	}

	now := time.Now().UTC()
	raw, err := json.Marshal(storedBlob{Content: doc, UpdatedAt: now})
	if err != nil {
		return nil, nil, fmt.Errorf("encoding content blob: %w", err)
	}

	if err := r.client.UploadObject(ctx, r.bucket, ContentObjectPath, "application/json", raw); err != nil {
		return nil, nil, fmt.Errorf("uploading content blob: %w", err)
	}
	return doc, &now, nil
}

// FallbackContentRepo serves from the primary table tier until the
// provider reports the table as missing, then switches to the storage
// tier for the rest of the process lifetime. The capability flag only
// ever flips one way, so concurrent probes are safe.
type FallbackContentRepo struct {
	primary      ContentRepository
	fallback     ContentRepository
	tableMissing atomic.Bool
}

// NewFallbackContentRepo combines the two tiers.
func NewFallbackContentRepo(primary, fallback ContentRepository) *FallbackContentRepo {
	return &FallbackContentRepo{primary: primary, fallback: fallback}
}

// Get implements ContentRepository.
func (r *FallbackContentRepo) Get(ctx context.Context) (model.ContentDocument, *time.Time, error) {
	if r.tableMissing.Load() {
		return r.fallback.Get(ctx)
	}

	doc, updatedAt, err := r.primary.Get(ctx)
	if err != nil && supabase.IsMissingTableError(err) {
		r.markTableMissing()
		return r.fallback.Get(ctx)
	}
	return doc, updatedAt, err
}

// Put implements ContentRepository.
func (r *FallbackContentRepo) Put(ctx context.Context, doc model.ContentDocument) (model.ContentDocument, *time.Time, error) {
	if r.tableMissing.Load() {
		return r.fallback.Put(ctx, doc)
	}

	stored, updatedAt, err := r.primary.Put(ctx, doc)
	if err != nil && supabase.IsMissingTableError(err) {
		r.markTableMissing()
		return r.fallback.Put(ctx, doc)
	}
	return stored, updatedAt, err
}

func (r *FallbackContentRepo) markTableMissing() {
	if r.tableMissing.CompareAndSwap(false, true) {
		slog.Warn("content table not provisioned, falling back to storage blob",
			"table", ContentTable, "object", ContentObjectPath)
	}
}
