// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ContentRow is a row of the site content table.
type ContentRow struct {
	ID        string          `json:"id"`
	Content   json.RawMessage `json:"content"`
	UpdatedAt *time.Time      `json:"updated_at"`
}

// SelectContentRow fetches the content row with the given id.
// A missing row returns (nil, nil).
func (c *Client) SelectContentRow(ctx context.Context, table, id string) (*ContentRow, error) {
	path := fmt.Sprintf("/rest/v1/%s?select=id,content,updated_at&id=eq.%s&limit=1",
		url.PathEscape(table), url.QueryEscape(id))

	body, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var rows []ContentRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decoding content rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpsertContentRow writes the content row wholesale, merging on id
// conflict and stamping a fresh updated_at. Returns the stored row.
func (c *Client) UpsertContentRow(ctx context.Context, table, id string, content json.RawMessage) (*ContentRow, error) {
	now := time.Now().UTC()
	payload, err := json.Marshal(ContentRow{ID: id, Content: content, UpdatedAt: &now})
	if err != nil {
		return nil, fmt.Errorf("encoding content row: %w", err)
	}

	path := fmt.Sprintf("/rest/v1/%s?on_conflict=id", url.PathEscape(table))
	body, err := c.do(ctx, http.MethodPost, path, map[string]string{
		"Content-Type": "application/json",
		"Prefer":       "resolution=merge-duplicates,return=representation",
	}, payload)
	if err != nil {
		return nil, err
	}

	var rows []ContentRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decoding upserted row: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// SelectRows fetches rows from a table with an ordering and limit,
// decoding them into dst (a pointer to a slice).
func (c *Client) SelectRows(ctx context.Context, table, selectCols, order string, limit int, dst any) error {
	path := fmt.Sprintf("/rest/v1/%s?select=%s&order=%s&limit=%d",
		url.PathEscape(table), url.QueryEscape(selectCols), url.QueryEscape(order), limit)

	body, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decoding rows: %w", err)
	}
	return nil
}

// InsertRow inserts one row and decodes the stored representation into dst.
func (c *Client) InsertRow(ctx context.Context, table string, row any, dst any) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encoding row: %w", err)
	}

	path := fmt.Sprintf("/rest/v1/%s", url.PathEscape(table))
	body, err := c.do(ctx, http.MethodPost, path, map[string]string{
		"Content-Type": "application/json",
		"Prefer":       "return=representation",
	}, payload)
	if err != nil {
		return err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return fmt.Errorf("decoding inserted row: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("insert returned no representation")
	}
	if err := json.Unmarshal(rows[0], dst); err != nil {
		return fmt.Errorf("decoding inserted row: %w", err)
	}
	return nil
}

// DeleteRowByID deletes a row by integer id and returns how many rows
// the provider reports as deleted.
func (c *Client) DeleteRowByID(ctx context.Context, table string, id int64) (int, error) {
	path := fmt.Sprintf("/rest/v1/%s?id=eq.%d", url.PathEscape(table), id)
	body, err := c.do(ctx, http.MethodDelete, path, map[string]string{
		"Prefer": "return=representation",
	}, nil)
	if err != nil {
		return 0, err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("decoding deleted rows: %w", err)
	}
	return len(rows), nil
}
