// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists session entries as one file per key under a state
// directory, giving each entry independent failure semantics.
//
// # Layout
//
//	~/.certrix/certmgmt_token
//	~/.certrix/certmgmt_user
//	~/.certrix/certmgmt_tenant_id
//	~/.certrix/certmgmt_tenant_schema
//
// Files are 0600; the directory is 0700. Tokens are bearer credentials.
type FileStore struct {
	dir string
}

// NewFileStore creates the state directory if needed. An empty dir selects
// ~/.certrix.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("auth: cannot resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".certrix")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("auth: cannot create state directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Get reads one entry. A missing file is (value "", ok false, err nil).
func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("auth: read %s failed: %w", key, err)
	}
	return strings.TrimRight(string(data), "\n"), true, nil
}

// Set writes one entry atomically via a rename so a crash mid-write never
// leaves a truncated value behind.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return fmt.Errorf("auth: write %s failed: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("auth: commit %s failed: %w", key, err)
	}
	return nil
}

// Delete removes one entry; deleting an absent entry is not an error.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("auth: delete %s failed: %w", key, err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key)
}
