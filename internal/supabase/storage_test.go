// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnsureBucket_AlreadyExists(t *testing.T) {
	var createCalled bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/storage/v1/bucket/site-assets":
			w.Write([]byte(`{"id":"site-assets"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/storage/v1/bucket":
			createCalled = true
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := New(srv.URL, "key", srv.Client())
	if err := client.EnsureBucket(context.Background(), "site-assets"); err != nil {
		t.Fatalf("EnsureBucket() error: %v", err)
	}
	if createCalled {
		t.Error("existing bucket should not trigger creation")
	}
}

func TestEnsureBucket_CreatesWhenAbsent(t *testing.T) {
	var created bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Bucket not found"}`))
		case r.Method == http.MethodPost:
			created = true
			w.Write([]byte(`{"name":"site-assets"}`))
		}
	}))
	defer srv.Close()

	client := New(srv.URL, "key", srv.Client())
	if err := client.EnsureBucket(context.Background(), "site-assets"); err != nil {
		t.Fatalf("EnsureBucket() error: %v", err)
	}
	if !created {
		t.Error("missing bucket should have been created")
	}
}

func TestEnsureBucket_ToleratesCreationRace(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"conflict_409", http.StatusConflict, `{"message":"Duplicate"}`},
		{"already_exists_detail", http.StatusBadRequest, `{"message":"The resource already exists"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodGet {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := New(srv.URL, "key", srv.Client())
			if err := client.EnsureBucket(context.Background(), "site-assets"); err != nil {
				t.Errorf("EnsureBucket() error: %v, want race tolerated", err)
			}
		})
	}
}

func TestUploadObject_SetsUpsertHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storage/v1/object/site-assets/cms/file.png" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-upsert") != "true" {
			t.Errorf("x-upsert = %q", r.Header.Get("x-upsert"))
		}
		if r.Header.Get("Content-Type") != "image/png" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "key", srv.Client())
	if err := client.UploadObject(context.Background(), "site-assets", "cms/file.png", "image/png", []byte("data")); err != nil {
		t.Fatalf("UploadObject() error: %v", err)
	}
}

func TestPublicObjectURL(t *testing.T) {
	client := New("https://proj.supabase.co", "key", nil)
	want := "https://proj.supabase.co/storage/v1/object/public/site-assets/cms/file.png"
	if got := client.PublicObjectURL("site-assets", "cms/file.png"); got != want {
		t.Errorf("PublicObjectURL() = %q, want %q", got, want)
	}
}
