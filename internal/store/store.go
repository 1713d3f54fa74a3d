// Package store provides the string-keyed persisted store backing session
// fields, caches, and transaction history. Values are JSON documents kept
// under a private namespace prefix.
package store

import (
	"encoding/json"
	"sync"
)

// Namespace prefixes every key this client writes, so a shared store does
// not collide with other tenants.
const Namespace = "nearlight:"

// Store is the persistence contract. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the raw JSON value for a key and whether it exists.
	Get(key string) (json.RawMessage, bool, error)

	// Set writes the raw JSON value for a key.
	Set(key string, value json.RawMessage) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error
}

// GetJSON reads a key and unmarshals it into out. Returns false when the
// key does not exist.
func GetJSON(s Store, key string, out any) (bool, error) {
	raw, ok, err := s.Get(Namespace + key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and writes it under key.
func SetJSON(s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(Namespace+key, raw)
}

// DeleteKey removes a namespaced key.
func DeleteKey(s Store, key string) error {
	return s.Delete(Namespace + key)
}

// MemStore is an in-memory Store used in tests and ephemeral sessions.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
}

// Compile-time interface check
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]json.RawMessage)}
}

// Get retrieves a value.
func (m *MemStore) Get(key string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

// Set stores a value.
func (m *MemStore) Set(key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(json.RawMessage, len(value))
	copy(cp, value)
	m.entries[key] = cp
	return nil
}

// Delete removes a value.
func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
