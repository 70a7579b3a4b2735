package storage

import (
	"sort"
	"sync"
)

// Store defines the interface for node-local key-value storage.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves a value by key. The boolean is false if the key is absent.
	Get(key string) ([]byte, bool)
	// Put stores value under key, overwriting any previous value.
	Put(key string, value []byte)
	// Len returns the number of stored keys.
	Len() int
	// Keys returns all stored keys in sorted order.
	Keys() []string
}

// InMemoryStore is a map-backed Store guarded by a RWMutex.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		data: make(map[string][]byte),
	}
}

// Get retrieves a value by key.
// Returns a copy to avoid external modifications.
func (s *InMemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.data[key]
	if !exists {
		return nil, false
	}
	return append([]byte{}, value...), true
}

// Put stores a copy of value under key.
func (s *InMemoryStore) Put(key string, value []byte) {
	valueCopy := append([]byte{}, value...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = valueCopy
}

// Len returns the number of stored keys.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys returns all stored keys in sorted order.
func (s *InMemoryStore) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	return keys
}
