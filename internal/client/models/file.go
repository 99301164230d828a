// Package models defines the client-side data model: ledger-owned records as
// read back from the ledger, and the local in-flight upload rows.
package models

import (
	"errors"
	"fmt"
	"time"
)

// FileStatus is the lifecycle state shared by ledger file records and local
// upload rows.
type FileStatus string

const (
	StatusUploading  FileStatus = "uploading"
	StatusProcessing FileStatus = "processing"
	// StatusActive is the ledger's finalized state, set by finalize-file.
	StatusActive   FileStatus = "active"
	StatusArchived FileStatus = "archived"
	StatusDeleted  FileStatus = "deleted"
)

var ErrUnknownStatus = errors.New("unknown file status")

func (s FileStatus) Valid() bool {
	switch s {
	case StatusUploading, StatusProcessing, StatusActive, StatusArchived, StatusDeleted:
		return true
	}
	return false
}

func ParseFileStatus(s string) (FileStatus, error) {
	st := FileStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// Digest is a 32-byte SHA-256 value (content hash or integrity root).
type Digest [32]byte

// FileRecord is the authoritative ledger record of a published file.
type FileRecord struct {
	Owner      string
	FileName   string
	FileSize   uint64
	FileHash   Digest
	ChunkCount uint32
	MerkleRoot Digest
	// StorageID is the content identifier on the storage network; empty until
	// register-storage succeeded.
	StorageID string
	CreatedAt time.Time
	UpdatedAt time.Time
	Status    FileStatus
	IsPublic  bool
}

// Finalized reports whether the record went through finalize-file.
func (r FileRecord) Finalized() bool {
	return r.Status == StatusActive && r.StorageID != ""
}

// UserProfile is the per-owner ledger account created by ensure-profile.
type UserProfile struct {
	Owner            string
	FilesOwned       uint64
	StorageUsed      uint64
	StoragePaidUntil time.Time
	ReputationScore  uint32
}

// LedgerConfig is the global singleton created by ensure-config.
type LedgerConfig struct {
	Authority       string
	TotalFiles      uint64
	StorageFeePerGB uint64
	MaxFileSize     uint64
}
