// Package memory provides a process-local KeyValueStore for development, the
// batch CLI and tests.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/lorrc/service-desk-analytics/internal/core/ports"
)

// KeyValueStore keeps values in a map guarded by one mutex, which makes
// Update atomic for every key.
type KeyValueStore struct {
	mu     sync.Mutex
	values map[string]json.RawMessage
}

var _ ports.KeyValueStore = (*KeyValueStore)(nil)

// NewKeyValueStore creates an empty store.
func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{values: make(map[string]json.RawMessage)}
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, nil
	}
	return clone(v), nil
}

func (s *KeyValueStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = clone(value)
	return nil
}

func (s *KeyValueStore) Update(ctx context.Context, key string, fn ports.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(clone(s.values[key]))
	if err != nil {
		return err
	}
	s.values[key] = clone(next)
	return nil
}

func (s *KeyValueStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len reports the number of stored keys.
func (s *KeyValueStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

func clone(v json.RawMessage) json.RawMessage {
	if v == nil {
		return nil
	}
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out
}
