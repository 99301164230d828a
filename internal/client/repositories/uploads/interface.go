package uploads

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
)

var (
	// ErrDuplicateUpload: a live (non-deleted) row already uses the id.
	ErrDuplicateUpload = errors.New("upload id already in use")
	// ErrUploadNotFound: no live row carries the id.
	ErrUploadNotFound = errors.New("upload not found")
)

type Repository interface {
	// Add appends a row. It fails with ErrDuplicateUpload when a live row
	// with the same id exists.
	Add(ctx context.Context, u models.LocalUpload) error

	// UpdateStatus changes the status of the live row with the given id.
	UpdateStatus(ctx context.Context, id string, status models.FileStatus) error

	// SetStorageID records the storage identifier on the live row.
	SetStorageID(ctx context.Context, id, storageID string) error

	// Get returns the most recent row with the given id, deleted or not.
	Get(ctx context.Context, id string) (*models.LocalUpload, error)

	// ListByOwner returns every row of owner, deleted ones included, in the
	// order they were added.
	ListByOwner(ctx context.Context, owner string) ([]models.LocalUpload, error)

	// Clear evicts all rows.
	Clear(ctx context.Context) error
}
