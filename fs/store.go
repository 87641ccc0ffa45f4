// Package fs provides a file-based KeyValueStore, useful when cached
// extraction results should survive restarts without a database.
package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joblens/joblens"
)

// Ensure Store implements joblens.KeyValueStore at compile time.
var _ joblens.KeyValueStore = (*Store)(nil)

// Store keeps each value in its own file under a base directory. Writes
// go to a temporary file first and are moved into place with a rename, so
// a crash mid-write never leaves a torn value behind.
type Store struct {
	baseDir string
}

// NewStore creates a Store rooted at baseDir. The directory is created on
// first write.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// keyPath maps a cache key to a file path. Keys contain characters that
// are not filesystem-safe (colons, slashes), so they are sanitized.
func (s *Store) keyPath(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', '\\', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, key)
	return filepath.Join(s.baseDir, safe+".json")
}

// Get retrieves the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, err := os.ReadFile(s.keyPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, joblens.Errorf(joblens.ENOTFOUND, "no value for key %q", key)
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}

	path := s.keyPath(key)
	tmp, err := os.CreateTemp(s.baseDir, ".write-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Remove deletes the value stored under key. Removing a missing key is
// not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(s.keyPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
