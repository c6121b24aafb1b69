package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists each document as a JSON file under a base directory.
type FileStore struct {
	dir string
}

// NewFileStore ensures the directory exists and returns a handle.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Load reads the document for key, returning ErrNoDocument when the file
// has never been written.
func (s *FileStore) Load(_ context.Context, key string) ([]byte, error) {
	doc, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("read document %s: %w", key, err)
	}
	return doc, nil
}

// Save writes the document through a temp file rename so a crash mid-write
// never leaves a truncated collection behind.
func (s *FileStore) Save(_ context.Context, key string, doc []byte) error {
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, doc, 0o644); err != nil {
		return fmt.Errorf("write document %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit document %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
