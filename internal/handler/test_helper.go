// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kmscorp/kms-site/internal/auth"
	"github.com/kmscorp/kms-site/internal/config"
	"github.com/kmscorp/kms-site/internal/service"
	"github.com/kmscorp/kms-site/internal/store"
	"github.com/kmscorp/kms-site/internal/supabase"
)

// Test fixtures shared by the endpoint tests.
const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "secret"
	testAdminToken    = "admin-token"
	testOutsiderToken = "outsider-token"
	testBucket        = "site-assets"
)

// fakeProvider scripts the hosted provider: identity, the content and
// board tables, and object storage, all in memory.
type fakeProvider struct {
	mu sync.Mutex

	contentTableMissing bool
	contentRow          json.RawMessage

	boardRows   []json.RawMessage
	nextBoardID int64

	objects map[string][]byte
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		nextBoardID: 1,
		objects:     map[string][]byte{},
	}
}

func (p *fakeProvider) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/user", p.handleUser)
	mux.HandleFunc("/auth/v1/token", p.handleToken)
	mux.HandleFunc("/rest/v1/site_content", p.handleContentTable)
	mux.HandleFunc("/rest/v1/board_posts", p.handleBoardTable)
	mux.HandleFunc("/storage/v1/bucket/", p.handleBucketGet)
	mux.HandleFunc("/storage/v1/bucket", p.handleBucketCreate)
	mux.HandleFunc("/storage/v1/object/", p.handleObject)
	return mux
}

func (p *fakeProvider) handleUser(w http.ResponseWriter, r *http.Request) {
	switch r.Header.Get("Authorization") {
	case "Bearer " + testAdminToken:
		json.NewEncoder(w).Encode(map[string]string{"email": testAdminEmail})
	case "Bearer " + testOutsiderToken:
		json.NewEncoder(w).Encode(map[string]string{"email": "outsider@example.com"})
	default:
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid JWT"})
	}
}

func (p *fakeProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	var creds map[string]string
	json.NewDecoder(r.Body).Decode(&creds)
	if creds["email"] == testAdminEmail && creds["password"] == testAdminPassword {
		json.NewEncoder(w).Encode(map[string]any{"access_token": testAdminToken, "expires_in": 3600})
		return
	}
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"message": "invalid login credentials"})
}

func (p *fakeProvider) handleContentTable(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.contentTableMissing {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "PGRST205",
			"message": "Could not find the table 'public.site_content' in the schema cache",
		})
		return
	}

	switch r.Method {
	case http.MethodGet:
		if p.contentRow == nil {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte("[" + string(p.contentRow) + "]"))
	case http.MethodPost:
		var row map[string]json.RawMessage
		json.NewDecoder(r.Body).Decode(&row)
		stored, _ := json.Marshal(row)
		p.contentRow = stored
		w.Write([]byte("[" + string(stored) + "]"))
	}
}

func (p *fakeProvider) handleBoardTable(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		encoded, _ := json.Marshal(p.boardRows)
		w.Write(encoded)
	case http.MethodPost:
		var row map[string]any
		json.NewDecoder(r.Body).Decode(&row)
		row["id"] = p.nextBoardID
		row["created_at"] = time.Now().UTC().Format(time.RFC3339)
		p.nextBoardID++
		stored, _ := json.Marshal(row)
		p.boardRows = append([]json.RawMessage{stored}, p.boardRows...)
		w.Write([]byte("[" + string(stored) + "]"))
	case http.MethodDelete:
		target := strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")
		var kept []json.RawMessage
		var deleted []json.RawMessage
		for _, row := range p.boardRows {
			var decoded struct {
				ID int64 `json:"id"`
			}
			json.Unmarshal(row, &decoded)
			if fmt.Sprintf("%d", decoded.ID) == target {
				deleted = append(deleted, row)
			} else {
				kept = append(kept, row)
			}
		}
		p.boardRows = kept
		encoded, _ := json.Marshal(deleted)
		if deleted == nil {
			encoded = []byte(`[]`)
		}
		w.Write(encoded)
	}
}

func (p *fakeProvider) handleBucketGet(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"id": testBucket})
}

func (p *fakeProvider) handleBucketCreate(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"name": testBucket})
}

func (p *fakeProvider) handleObject(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/storage/v1/object/")

	p.mu.Lock()
	defer p.mu.Unlock()

	switch r.Method {
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		p.objects[path] = body
		w.Write([]byte(`{}`))
	case http.MethodGet:
		data, ok := p.objects[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "Object not found"})
			return
		}
		w.Write(data)
	}
}

// testEnv is a fully wired backend over the fake provider.
type testEnv struct {
	provider *fakeProvider
	server   *httptest.Server
}

// newTestEnv builds the real stack (config, verifier, stores, services,
// handler) against the fake provider and serves it over httptest.
func newTestEnv(t *testing.T, mutate func(cfg *config.Config)) *testEnv {
	t.Helper()

	provider := newFakeProvider()
	upstream := httptest.NewServer(provider.handler())
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		SupabaseURL:    upstream.URL,
		ServiceRoleKey: "service-key",
		AnonKey:        "anon-key",
		AdminEmails:    testAdminEmail,
		StorageBucket:  testBucket,
	}
	if mutate != nil {
		mutate(cfg)
	}

	client := supabase.New(cfg.SupabaseURL, cfg.ServiceRoleKey, upstream.Client())
	verifier := auth.NewVerifier(client, cfg.AnonKey, cfg.AdminEmailSet())
	content := store.NewFallbackContentRepo(
		store.NewTableContentRepo(client),
		store.NewStorageContentRepo(client, cfg.StorageBucket),
	)
	h := New(cfg, verifier, content, store.NewBoardStore(client), service.NewAssetService(client, cfg.StorageBucket), client)

	server := httptest.NewServer(h.Routes())
	t.Cleanup(server.Close)

	return &testEnv{provider: provider, server: server}
}

// do issues a request with an optional JSON body and bearer token,
// returning the status and the raw response.
func (e *testEnv) do(t *testing.T, method, path, token, body string) (int, *http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}
	return resp.StatusCode, resp, raw
}

// doJSON issues a request and decodes the JSON object response.
func (e *testEnv) doJSON(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()

	status, _, raw := e.do(t, method, path, token, body)
	var decoded map[string]any
	json.Unmarshal(raw, &decoded)
	return status, decoded
}
