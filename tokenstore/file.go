package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the pair as a JSON document with owner-only
// permissions. It suits CLI and desktop shells where the session must
// survive process restarts.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by the file at path. Parent
// directories are created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultSessionPath returns the conventional per-user session file
// location, e.g. ~/.careloop/session.json.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("tokenstore: resolving home directory: %w", err)
	}
	return filepath.Join(home, ".careloop", "session.json"), nil
}

func (s *FileStore) Load(_ context.Context) (Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Pair{}, ErrNotFound
		}
		return Pair{}, fmt.Errorf("tokenstore: reading %s: %w", s.path, err)
	}

	var pair Pair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return Pair{}, fmt.Errorf("tokenstore: decoding %s: %w", s.path, err)
	}
	if !pair.Valid() {
		// A corrupt or half-written file reads as empty.
		return Pair{}, ErrNotFound
	}
	return pair, nil
}

func (s *FileStore) Save(_ context.Context, pair Pair) error {
	if !pair.Valid() {
		return errIncomplete
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("tokenstore: creating session directory: %w", err)
	}
	raw, err := json.MarshalIndent(pair, "", "  ")
	if err != nil {
		return fmt.Errorf("tokenstore: encoding pair: %w", err)
	}
	// Write-then-rename keeps a crash from leaving a truncated session file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("tokenstore: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("tokenstore: replacing %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("tokenstore: removing %s: %w", s.path, err)
	}
	return nil
}
