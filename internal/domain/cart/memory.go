package cart

import (
	"context"
	"sync"
)

var _ Storage = (*MemoryStorage)(nil)

// MemoryStorage is a process-local Storage used in tests and single-node
// development runs.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

// Load returns the stored blob for cartID, or (nil, nil) when absent.
func (m *MemoryStorage) Load(_ context.Context, cartID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.blobs[cartID]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(blob))
	copy(cp, blob)
	return cp, nil
}

// Save stores a copy of blob under cartID.
func (m *MemoryStorage) Save(_ context.Context, cartID string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(blob))
	copy(cp, blob)
	m.blobs[cartID] = cp
	return nil
}

// Delete removes the blob stored under cartID.
func (m *MemoryStorage) Delete(_ context.Context, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, cartID)
	return nil
}
