package saga

import (
	"context"

	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
)

// Ledger is the part of ledger.Backend an upload needs.
type Ledger interface {
	AccountExists(ctx context.Context, addr ledger.Address) (bool, error)
	EnsureConfig(ctx context.Context, authority string) (ledger.TxRef, error)
	EnsureProfile(ctx context.Context, owner string) (ledger.TxRef, error)
	CreateFileRecord(ctx context.Context, p ledger.CreateFileParams) (ledger.TxRef, error)
	RegisterStorage(ctx context.Context, owner, name, storageID string, root models.Digest) (ledger.TxRef, error)
	FinalizeFile(ctx context.Context, owner, name string) (ledger.TxRef, error)
}

// Uploader pushes bytes to content-addressed storage; see storage.Uploader.
type Uploader interface {
	Upload(ctx context.Context, data []byte, onProgress func(float64)) (string, error)
}

// Store is the write side of the local reconciliation store.
type Store interface {
	Add(ctx context.Context, u models.LocalUpload) error
	UpdateStatus(ctx context.Context, id string, status models.FileStatus) error
	SetStorageID(ctx context.Context, id, storageID string) error
}
