// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kmscorp/kms-site/internal/model"
	"github.com/kmscorp/kms-site/internal/supabase"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		hasValue  bool
		want      int
	}{
		{"absent_uses_default", 0, false, model.BoardDefaultLimit},
		{"zero_clamps_to_one", 0, true, 1},
		{"negative_clamps_to_one", -5, true, 1},
		{"in_range", 35, true, 35},
		{"over_max", 500, true, model.BoardMaxLimit},
		{"at_max", 50, true, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampLimit(tt.requested, tt.hasValue); got != tt.want {
				t.Errorf("ClampLimit(%d, %v) = %d, want %d", tt.requested, tt.hasValue, got, tt.want)
			}
		})
	}
}

func TestBoardStore_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("order") != "created_at.desc" {
			t.Errorf("order = %q", r.URL.Query().Get("order"))
		}
		if r.URL.Query().Get("limit") != "20" {
			t.Errorf("limit = %q", r.URL.Query().Get("limit"))
		}
		w.Write([]byte(`[{"id":2,"title":"둘","content":"b","created_at":"2026-08-02T00:00:00Z"},{"id":1,"title":"하나","content":"a","created_at":"2026-08-01T00:00:00Z"}]`))
	}))
	defer srv.Close()

	store := NewBoardStore(supabase.New(srv.URL, "key", srv.Client()))
	posts, err := store.List(context.Background(), 20)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != 2 {
		t.Errorf("posts = %+v", posts)
	}
}

func TestBoardStore_ListEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	store := NewBoardStore(supabase.New(srv.URL, "key", srv.Client()))
	posts, err := store.List(context.Background(), 20)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if posts == nil {
		t.Fatal("List() returned nil, want empty slice")
	}
}

func TestBoardStore_Create(t *testing.T) {
	var inserted map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&inserted)
		w.Write([]byte(`[{"id":7,"author":"관리자","title":"공지","content":"내용","created_at":"2026-08-29T00:00:00Z"}]`))
	}))
	defer srv.Close()

	store := NewBoardStore(supabase.New(srv.URL, "key", srv.Client()))
	post, err := store.Create(context.Background(), model.BoardPostInput{
		Author:  " 관리자 ",
		Title:   "공지",
		Content: "내용",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if post.ID != 7 {
		t.Errorf("ID = %d", post.ID)
	}

	// Empty optionals become JSON nulls, set ones carry their value.
	if inserted["author"] != "관리자" {
		t.Errorf("inserted author = %v", inserted["author"])
	}
	if inserted["attachment_url"] != nil {
		t.Errorf("inserted attachment_url = %v, want null", inserted["attachment_url"])
	}
}

func TestBoardStore_CreateValidationShortCircuits(t *testing.T) {
	var upstreamCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
	}))
	defer srv.Close()

	store := NewBoardStore(supabase.New(srv.URL, "key", srv.Client()))
	_, err := store.Create(context.Background(), model.BoardPostInput{Title: "", Content: ""})

	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if upstreamCalls != 0 {
		t.Errorf("invalid input reached the provider %d times", upstreamCalls)
	}
}

func TestBoardStore_Delete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "id=eq.7" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"id":7}]`))
	}))
	defer srv.Close()

	store := NewBoardStore(supabase.New(srv.URL, "key", srv.Client()))
	if err := store.Delete(context.Background(), 7); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
}

func TestBoardStore_DeleteMissingRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	store := NewBoardStore(supabase.New(srv.URL, "key", srv.Client()))
	err := store.Delete(context.Background(), 99)

	var notFound *ErrPostNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want ErrPostNotFound", err)
	}
	if notFound.ID != 99 {
		t.Errorf("ID = %d", notFound.ID)
	}
}

func TestBoardStore_DeleteInvalidID(t *testing.T) {
	store := NewBoardStore(supabase.New("http://unused", "key", nil))
	for _, id := range []int64{0, -1} {
		err := store.Delete(context.Background(), id)
		var verr *model.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Delete(%d) error = %v, want ValidationError", id, err)
		}
	}
}
