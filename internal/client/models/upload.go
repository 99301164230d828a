package models

import (
	"fmt"
	"time"
)

// LocalUpload is the optimistic, process-local view of an upload in flight.
// It carries no authority: once the ledger lists the file the row is
// superseded and marked StatusDeleted.
type LocalUpload struct {
	ID        string
	FileName  string
	FileSize  uint64
	StorageID string
	Status    FileStatus
	IsPublic  bool
	Owner     string
	CreatedAt time.Time
}

// NewUploadID builds the synthetic id of a local upload row. The nanosecond
// timestamp keeps repeated uploads of the same name by the same owner apart.
func NewUploadID(owner, fileName string, createdAt time.Time) string {
	return fmt.Sprintf("%s:%s:%d", owner, fileName, createdAt.UnixNano())
}

// InFlight reports whether the row should still be rendered.
func (u LocalUpload) InFlight() bool {
	return u.Status != StatusDeleted
}
