package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists raw upload bytes and hands them back by path. The rest of
// the pipeline never touches the filesystem directly so tests can swap this
// for an in-memory implementation.
type Store interface {
	Save(ctx context.Context, path string, data []byte) (string, error)
	Load(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
}

// DiskStore keeps uploads under a base directory.
type DiskStore struct {
	baseDir string
}

func NewDiskStore(baseDir string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", baseDir, err)
	}
	return &DiskStore{baseDir: baseDir}, nil
}

func (s *DiskStore) Save(_ context.Context, path string, data []byte) (string, error) {
	full := filepath.Join(s.baseDir, filepath.Clean("/"+path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return full, nil
}

func (s *DiskStore) Load(_ context.Context, path string) ([]byte, error) {
	full := filepath.Join(s.baseDir, filepath.Clean("/"+path))
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func (s *DiskStore) Remove(_ context.Context, path string) error {
	full := filepath.Join(s.baseDir, filepath.Clean("/"+path))
	return os.Remove(full)
}

// MemStore is the test double.
type MemStore struct {
	files map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string][]byte)}
}

func (s *MemStore) Save(_ context.Context, path string, data []byte) (string, error) {
	s.files[path] = append([]byte(nil), data...)
	return path, nil
}

func (s *MemStore) Load(_ context.Context, path string) ([]byte, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("no stored file at %s", path)
	}
	return data, nil
}

func (s *MemStore) Remove(_ context.Context, path string) error {
	delete(s.files, path)
	return nil
}

// Len reports how many objects are currently stored.
func (s *MemStore) Len() int {
	return len(s.files)
}
