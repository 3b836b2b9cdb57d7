package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore keeps objects under a directory, keys mapping to relative
// paths. It backs tests and offline runs.
type LocalStore struct {
	dir string
}

func NewLocal(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	body, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil {
		return nil, fmt.Errorf("local: get %s: %w", key, err)
	}
	return body, nil
}

func (s *LocalStore) Put(_ context.Context, key string, body []byte) error {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("local: put %s: %w", key, err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("local: put %s: %w", key, err)
	}
	return nil
}
