package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by a Fetcher for an unknown id.
var ErrNotFound = errors.New("content not found")

// MemoryStore is an in-process content-addressed store.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	failNext error
	uploads  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// FailNext makes the next Upload fail with err, wrapped in ErrTransport,
// after it has reported half of its progress.
func (m *MemoryStore) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// Uploads returns how many Upload calls were made.
func (m *MemoryStore) Uploads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uploads
}

func (m *MemoryStore) Upload(ctx context.Context, data []byte, onProgress func(float64)) (string, error) {
	m.mu.Lock()
	m.uploads++
	fail := m.failNext
	m.failNext = nil
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}

	report(onProgress, 0.5)
	if fail != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, fail)
	}

	id, err := ComputeCID(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	m.mu.Lock()
	m.objects[id] = cp
	m.mu.Unlock()

	report(onProgress, 1)
	return id, nil
}

// Get returns the content stored under id.
func (m *MemoryStore) Get(_ context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, nil
}

var (
	_ Uploader = (*MemoryStore)(nil)
	_ Fetcher  = (*MemoryStore)(nil)
)
