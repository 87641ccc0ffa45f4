package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/joblens/joblens"
)

// Compile-time interface verification.
var _ joblens.KeyValueStore = (*KeyValueStore)(nil)

// KeyValueStore implements joblens.KeyValueStore using SQLite, giving
// cached extraction results a home that survives a restart.
type KeyValueStore struct {
	db *DB
}

// NewKeyValueStore creates a new KeyValueStore.
func NewKeyValueStore(db *DB) *KeyValueStore {
	return &KeyValueStore{db: db}
}

// Get retrieves the value stored under key.
func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM kv WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, joblens.Errorf(joblens.ENOTFOUND, "no value for key %q", key)
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Remove deletes the value stored under key. Removing a missing key is
// not an error.
func (s *KeyValueStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}
