// Package storage implements core.Store over the supported backends.
//
// Every backend holds opaque byte values under string keys. Keys are
// namespaced with a configurable prefix where the backend is shared.
package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in process memory. State is lost on exit.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// PutAll stores a copy of every entry under one lock.
func (m *MemoryStore) PutAll(_ context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.entries[k] = append([]byte(nil), v...)
	}
	return nil
}

// Close implements io.Closer.
func (m *MemoryStore) Close() error { return nil }
