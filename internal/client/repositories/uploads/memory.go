package uploads

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
)

// MemoryRepository keeps rows in an append-only arena. live maps an id to
// the arena index of its non-deleted row.
type MemoryRepository struct {
	mu    sync.RWMutex
	arena []models.LocalUpload
	live  map[string]int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{live: make(map[string]int)}
}

func (r *MemoryRepository) Add(_ context.Context, u models.LocalUpload) error {
	if !u.Status.Valid() {
		return fmt.Errorf("failed to add upload %s: %w", u.ID, models.ErrUnknownStatus)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.live[u.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateUpload, u.ID)
	}
	r.arena = append(r.arena, u)
	if u.Status != models.StatusDeleted {
		r.live[u.ID] = len(r.arena) - 1
	}
	return nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id string, status models.FileStatus) error {
	if !status.Valid() {
		return fmt.Errorf("failed to update upload %s: %w", id, models.ErrUnknownStatus)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.live[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUploadNotFound, id)
	}
	r.arena[i].Status = status
	if status == models.StatusDeleted {
		delete(r.live, id)
	}
	return nil
}

func (r *MemoryRepository) SetStorageID(_ context.Context, id, storageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.live[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUploadNotFound, id)
	}
	r.arena[i].StorageID = storageID
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.LocalUpload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.arena) - 1; i >= 0; i-- {
		if r.arena[i].ID == id {
			u := r.arena[i]
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUploadNotFound, id)
}

func (r *MemoryRepository) ListByOwner(_ context.Context, owner string) ([]models.LocalUpload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.LocalUpload
	for _, u := range r.arena {
		if u.Owner == owner {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *MemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.arena = nil
	r.live = make(map[string]int)
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
