package storage

import "sync"

// MemoryBackend keeps blobs in memory. Used for ephemeral vaults and tests.
type MemoryBackend struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string][]byte)}
}

// Get reads the blob stored under key.
func (mb *MemoryBackend) Get(key string) ([]byte, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	value, ok := mb.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set writes the blob stored under key.
func (mb *MemoryBackend) Set(key string, value []byte) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	mb.blobs[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes the blob stored under key.
func (mb *MemoryBackend) Delete(key string) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	delete(mb.blobs, key)
	return nil
}

// Clear wipes every blob.
func (mb *MemoryBackend) Clear() error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	mb.blobs = make(map[string][]byte)
	return nil
}
