// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kmscorp/kms-site/internal/model"
)

func loggedInSession(api *Client) *SessionManager {
	m := NewSessionManager(api, NewMemoryStore(), NewMemoryStore())
	m.SetAuth("admin-token", "admin@example.com")
	return m
}

func TestContentLoad_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":{"processSteps":["상담"]},"updatedAt":null}`))
	}))
	defer srv.Close()

	api := New(srv.URL, srv.Client())
	c := NewContentClient(api, loggedInSession(api))

	doc := c.Load(context.Background())
	if _, ok := doc["processSteps"]; !ok {
		t.Errorf("doc = %v", doc)
	}
}

func TestContentLoad_NeverFails(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server_error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"garbage_body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}},
		{"non_object_content", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"content":[1,2]}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			api := New(srv.URL, srv.Client())
			c := NewContentClient(api, loggedInSession(api))

			doc := c.Load(context.Background())
			if doc == nil || len(doc) != 0 {
				t.Errorf("doc = %v, want empty document", doc)
			}
		})
	}
}

func TestContentLoad_UnreachableBackend(t *testing.T) {
	api := New("http://127.0.0.1:1", nil)
	c := NewContentClient(api, loggedInSession(api))

	doc := c.Load(context.Background())
	if doc == nil || len(doc) != 0 {
		t.Errorf("doc = %v, want empty document", doc)
	}
}

func TestSavePatch_FailsFastWithoutLogin(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	api := New(srv.URL, srv.Client())
	session := NewSessionManager(api, NewMemoryStore(), NewMemoryStore())
	c := NewContentClient(api, session)

	err := c.SavePatch(context.Background(), model.ContentDocument{"a": json.RawMessage(`1`)})
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("error = %v, want ErrLoginRequired", err)
	}
	if calls != 0 {
		t.Errorf("logged-out save made %d requests", calls)
	}
}

func TestSavePatch_PostsFullMergedDocument(t *testing.T) {
	var savedContent map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"content":{"indexHeroSlides":[{"title":"기존"}],"processSteps":["상담","견적"]}}`))
		case http.MethodPost:
			if r.Header.Get("Authorization") != "Bearer admin-token" {
				t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
			}
			var payload struct {
				Content map[string]json.RawMessage `json:"content"`
			}
			json.NewDecoder(r.Body).Decode(&payload)
			savedContent = payload.Content

			stored, _ := json.Marshal(payload.Content)
			w.Write([]byte(`{"content":` + string(stored) + `}`))
		}
	}))
	defer srv.Close()

	api := New(srv.URL, srv.Client())
	c := NewContentClient(api, loggedInSession(api))

	c.Load(context.Background())
	err := c.SavePatch(context.Background(), model.ContentDocument{
		"indexHeroSlides": json.RawMessage(`[{"title":"새로운"}]`),
	})
	if err != nil {
		t.Fatalf("SavePatch() error: %v", err)
	}

	// The patch touched one section; the POST still carries the whole
	// document, so untouched sections survive.
	if len(savedContent) != 2 {
		t.Fatalf("posted content keys = %d, want 2", len(savedContent))
	}
	if string(savedContent["indexHeroSlides"]) != `[{"title":"새로운"}]` {
		t.Errorf("indexHeroSlides = %s", savedContent["indexHeroSlides"])
	}
	if string(savedContent["processSteps"]) != `["상담","견적"]` {
		t.Errorf("processSteps = %s", savedContent["processSteps"])
	}
}

func TestSavePatch_AdoptsServerEcho(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The server normalizes the document; its echo is authoritative.
		w.Write([]byte(`{"content":{"serverKey":"server-value"}}`))
	}))
	defer srv.Close()

	api := New(srv.URL, srv.Client())
	c := NewContentClient(api, loggedInSession(api))

	err := c.SavePatch(context.Background(), model.ContentDocument{"localKey": json.RawMessage(`1`)})
	if err != nil {
		t.Fatalf("SavePatch() error: %v", err)
	}

	doc := c.Document()
	if _, ok := doc["serverKey"]; !ok {
		t.Error("server echo was not adopted")
	}
	if _, ok := doc["localKey"]; ok {
		t.Error("local merge survived despite a usable server echo")
	}
}

func TestSavePatch_KeepsLocalMergeOnUnusableEcho(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	api := New(srv.URL, srv.Client())
	c := NewContentClient(api, loggedInSession(api))

	err := c.SavePatch(context.Background(), model.ContentDocument{"localKey": json.RawMessage(`1`)})
	if err != nil {
		t.Fatalf("SavePatch() error: %v", err)
	}
	if _, ok := c.Document()["localKey"]; !ok {
		t.Error("local merge lost when the echo was unusable")
	}
}

func TestSavePatch_UnauthorizedInvalidatesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "로그인이 만료되었습니다."})
	}))
	defer srv.Close()

	api := New(srv.URL, srv.Client())
	session := loggedInSession(api)
	c := NewContentClient(api, session)

	err := c.SavePatch(context.Background(), model.ContentDocument{"a": json.RawMessage(`1`)})
	var saveErr *SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("error = %v, want SaveError", err)
	}
	if saveErr.Message != "로그인이 만료되었습니다." {
		t.Errorf("Message = %q", saveErr.Message)
	}
	if session.IsLoggedIn() {
		t.Error("session survived a 401 save")
	}
}

func TestReadErrorMessage_DetailJoinRule(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"failure_with_detail", `{"message":"공지 조회에 실패했습니다.","detail":"PGRST205"}`, "공지 조회에 실패했습니다. (PGRST205)"},
		{"non_failure_with_detail", `{"message":"관리자 로그인이 필요합니다.","detail":"x"}`, "관리자 로그인이 필요합니다."},
		{"message_only", `{"message":"허용되지 않는 파일 형식입니다."}`, "허용되지 않는 파일 형식입니다."},
		{"detail_only", `{"detail":"upstream detail"}`, "upstream detail"},
		{"empty_body", ``, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := srv.Client().Get(srv.URL)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if got := readErrorMessage(resp, "fallback"); got != tt.want {
				t.Errorf("readErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
