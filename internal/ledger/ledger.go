package ledger

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
)

// Acceptance limits published by the ledger program.
const (
	MaxFileNameLen  = 50
	MaxStorageIDLen = 100
)

// TxRef identifies a submitted ledger transaction.
type TxRef string

// CreateFileParams carries the arguments of create-file-record.
type CreateFileParams struct {
	Owner      string
	Name       string
	Size       uint64
	Hash       models.Digest
	ChunkCount uint32
	Timestamp  time.Time
}

// Backend is everything the client can ask of the ledger.
type Backend interface {
	Ping(ctx context.Context) error
	AccountExists(ctx context.Context, addr Address) (bool, error)

	EnsureConfig(ctx context.Context, authority string) (TxRef, error)
	EnsureProfile(ctx context.Context, owner string) (TxRef, error)
	CreateFileRecord(ctx context.Context, p CreateFileParams) (TxRef, error)
	RegisterStorage(ctx context.Context, owner, name, storageID string, root models.Digest) (TxRef, error)
	FinalizeFile(ctx context.Context, owner, name string) (TxRef, error)
	SetVisibility(ctx context.Context, owner, name string, public bool) (TxRef, error)

	ListFilesByOwner(ctx context.Context, owner string) ([]models.FileRecord, error)
	GetProfile(ctx context.Context, owner string) (*models.UserProfile, error)
	GetConfig(ctx context.Context) (*models.LedgerConfig, error)
}
