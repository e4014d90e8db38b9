package kvstore

import (
	"encoding/json"
	"sync"
)

// MemoryStore returns an in-memory Store. Data is lost on Close.
func MemoryStore() *memoryStore {
	return &memoryStore{
		values: map[string]json.RawMessage{},
	}
}

var _ Store = &memoryStore{}

type memoryStore struct {
	mu     sync.Mutex
	values map[string]json.RawMessage
}

func (s *memoryStore) Get(key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

func (s *memoryStore) Set(key string, value json.RawMessage) error {
	stored := make(json.RawMessage, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = stored
	return nil
}

func (s *memoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string]json.RawMessage{}
	return nil
}
