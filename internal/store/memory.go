package store

import (
	"context"
	"fmt"
	"image"
	"sync"
)

// MemoryStore keeps fragments in memory.
//
// MemoryStore is safe for concurrent use. Fragments remain in memory until
// the store is discarded.
type MemoryStore struct {
	mu     sync.RWMutex
	images map[Key]image.Image
	writes int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{images: make(map[Key]image.Image)}
}

// Exists reports whether key has been written.
func (m *MemoryStore) Exists(_ context.Context, key Key) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.images[key]
	return ok, nil
}

// Read returns the fragment stored for key.
func (m *MemoryStore) Read(_ context.Context, key Key) (image.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	img, ok := m.images[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return img, nil
}

// Write stores img under key, replacing any previous fragment.
func (m *MemoryStore) Write(_ context.Context, key Key, img image.Image) error {
	m.mu.Lock()
	m.images[key] = img
	m.writes++
	m.mu.Unlock()
	return nil
}

// Writes returns the number of Write calls made so far.
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
