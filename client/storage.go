// Copyright (c) 2025-2026 KMS Corp.
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// CredentialStore is one persistence tier for session credentials.
// Implementations may fail (disabled storage, unwritable disk); the
// session manager swallows those failures and runs memory-only.
type CredentialStore interface {
	Get(key string) (string, error)
	// Set stores a value. An empty value removes the key instead of
	// storing a blank.
	Set(key, value string) error
}

// MemoryStore is an in-memory credential tier.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory tier.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements CredentialStore.
func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

// Set implements CredentialStore.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.values, key)
		return nil
	}
	s.values[key] = value
	return nil
}

// FileStore is a long-lived credential tier backed by one JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed tier at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		// A corrupt file behaves as empty; the next write replaces it.
		return map[string]string{}, nil
	}
	return values, nil
}

func (s *FileStore) save(values map[string]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// Get implements CredentialStore.
func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

// Set implements CredentialStore.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	if value == "" {
		delete(values, key)
	} else {
		values[key] = value
	}
	return s.save(values)
}
