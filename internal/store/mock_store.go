// ABOUTME: In-memory Store implementation for tests and the memory driver
// ABOUTME: Supports an optional quota and an injectable write failure

package store

import (
	"context"
	"slices"
	"sync"
)

// MockStore is an in-memory Store.
type MockStore struct {
	mu      sync.RWMutex
	items   map[string]string
	quota   int
	failSet error
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{items: make(map[string]string)}
}

// SetQuota caps the size of a single value. Zero disables the cap.
func (m *MockStore) SetQuota(bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quota = bytes
}

// FailWrites makes every subsequent SetItem return err. Pass nil to restore.
func (m *MockStore) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSet = err
}

// GetItem returns the value stored under key.
func (m *MockStore) GetItem(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// SetItem overwrites the value stored under key.
func (m *MockStore) SetItem(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSet != nil {
		return m.failSet
	}
	if err := checkQuota(m.quota, value); err != nil {
		return err
	}
	m.items[key] = value
	return nil
}

// RemoveItem deletes key.
func (m *MockStore) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Keys lists all keys in ascending order.
func (m *MockStore) Keys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Ping always succeeds.
func (m *MockStore) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (m *MockStore) Close() error { return nil }
