// Package storage is the key-value collaborator for whiteboard raster
// snapshots and board comments. Keys are room-scoped strings; values are
// opaque bytes.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Store is the get/set contract the whiteboard persists through.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// FileStore keeps one file per key under a base directory. Backed by an
// afero.Fs so tests run on a memory filesystem.
type FileStore struct {
	fs   afero.Fs
	base string
}

func NewFileStore(fs afero.Fs, base string) (*FileStore, error) {
	if err := fs.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", base, err)
	}
	return &FileStore{fs: fs, base: base}, nil
}

// keyPath flattens the key into a safe filename.
func (s *FileStore) keyPath(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(s.base, safe)
}

func (s *FileStore) Get(key string) ([]byte, bool, error) {
	b, err := afero.ReadFile(s.fs, s.keyPath(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read key %s: %w", key, err)
	}
	return b, true, nil
}

func (s *FileStore) Set(key string, value []byte) error {
	if err := afero.WriteFile(s.fs, s.keyPath(key), value, 0o644); err != nil {
		return fmt.Errorf("write key %s: %w", key, err)
	}
	return nil
}
