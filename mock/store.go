package mock

import (
	"context"
	"sync"

	"github.com/joblens/joblens"
)

var _ joblens.KeyValueStore = (*KeyValueStore)(nil)

// KeyValueStore is a mock implementation of joblens.KeyValueStore.
type KeyValueStore struct {
	GetFn    func(ctx context.Context, key string) ([]byte, error)
	SetFn    func(ctx context.Context, key string, value []byte) error
	RemoveFn func(ctx context.Context, key string) error
}

func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.GetFn(ctx, key)
}

func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	return s.SetFn(ctx, key, value)
}

func (s *KeyValueStore) Remove(ctx context.Context, key string) error {
	return s.RemoveFn(ctx, key)
}

var _ joblens.KeyValueStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory joblens.KeyValueStore for tests that need
// working persistence rather than scripted responses.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, joblens.Errorf(joblens.ENOTFOUND, "key %q not found", key)
	}
	return v, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Len reports the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}
