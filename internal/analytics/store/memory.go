package store

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is a map-backed store adapter. It backs dev deployments
// without Redis and doubles as the recording fake in engine tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemory constructs an empty in-memory store adapter.
func NewMemory() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

// Set seeds an entry. Used by callers populating the cache and by tests.
func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

// Get reports the entry and whether it exists.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok
}

// Len reports the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// DeleteScope evicts one exact key.
func (s *MemoryStore) DeleteScope(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// DeletePattern evicts every key matching the wildcard pattern. Only the
// trailing-asterisk form the key namespace produces is supported.
func (s *MemoryStore) DeletePattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
		}
	}
	return nil
}
