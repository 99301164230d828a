package ledger

import (
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
)

// Gateway request/response messages.

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type AccountExistsRequest struct {
	Address Address `json:"address"`
}

type AccountExistsResponse struct {
	Exists bool `json:"exists"`
}

type EnsureConfigRequest struct {
	Authority string `json:"authority"`
}

type EnsureProfileRequest struct {
	Owner string `json:"owner"`
}

type CreateFileRecordRequest struct {
	Owner      string `json:"owner"`
	Name       string `json:"name"`
	Size       uint64 `json:"size"`
	Hash       []byte `json:"hash"`
	ChunkCount uint32 `json:"chunk_count"`
	Timestamp  int64  `json:"timestamp"`
}

type RegisterStorageRequest struct {
	Owner      string `json:"owner"`
	Name       string `json:"name"`
	StorageID  string `json:"storage_id"`
	MerkleRoot []byte `json:"merkle_root"`
}

type FinalizeFileRequest struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

type SetVisibilityRequest struct {
	Owner  string `json:"owner"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

type TxResponse struct {
	Tx TxRef `json:"tx"`
}

type ListFilesRequest struct {
	Owner string `json:"owner"`
}

type ListFilesResponse struct {
	Files []FileRecordMessage `json:"files"`
}

type GetProfileRequest struct {
	Owner string `json:"owner"`
}

type ProfileResponse struct {
	Owner            string `json:"owner"`
	FilesOwned       uint64 `json:"files_owned"`
	StorageUsed      uint64 `json:"storage_used"`
	StoragePaidUntil int64  `json:"storage_paid_until"`
	ReputationScore  uint32 `json:"reputation_score"`
}

type GetConfigRequest struct{}

type ConfigResponse struct {
	Authority       string `json:"authority"`
	TotalFiles      uint64 `json:"total_files"`
	StorageFeePerGB uint64 `json:"storage_fee_per_gb"`
	MaxFileSize     uint64 `json:"max_file_size"`
}

type FileRecordMessage struct {
	Owner      string `json:"owner"`
	FileName   string `json:"file_name"`
	FileSize   uint64 `json:"file_size"`
	FileHash   []byte `json:"file_hash"`
	ChunkCount uint32 `json:"chunk_count"`
	MerkleRoot []byte `json:"merkle_root"`
	StorageID  string `json:"storage_id"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
	Status     string `json:"status"`
	IsPublic   bool   `json:"is_public"`
}

// OwnedRequest is implemented by every request that acts on behalf of an
// owner. The gateway rejects such requests when the session token was issued
// for somebody else.
type OwnedRequest interface {
	RequestOwner() string
}

func (r *EnsureConfigRequest) RequestOwner() string     { return r.Authority }
func (r *EnsureProfileRequest) RequestOwner() string    { return r.Owner }
func (r *CreateFileRecordRequest) RequestOwner() string { return r.Owner }
func (r *RegisterStorageRequest) RequestOwner() string  { return r.Owner }
func (r *FinalizeFileRequest) RequestOwner() string     { return r.Owner }
func (r *SetVisibilityRequest) RequestOwner() string    { return r.Owner }
func (r *ListFilesRequest) RequestOwner() string        { return r.Owner }
func (r *GetProfileRequest) RequestOwner() string       { return r.Owner }

// DigestFromBytes converts a wire digest; ok is false unless b is 32 bytes.
func DigestFromBytes(b []byte) (models.Digest, bool) {
	var d models.Digest
	if len(b) != len(d) {
		return d, false
	}
	copy(d[:], b)
	return d, true
}

func UnixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func Unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func FileRecordToMessage(r models.FileRecord) FileRecordMessage {
	return FileRecordMessage{
		Owner:      r.Owner,
		FileName:   r.FileName,
		FileSize:   r.FileSize,
		FileHash:   r.FileHash[:],
		ChunkCount: r.ChunkCount,
		MerkleRoot: r.MerkleRoot[:],
		StorageID:  r.StorageID,
		CreatedAt:  Unix(r.CreatedAt),
		UpdatedAt:  Unix(r.UpdatedAt),
		Status:     string(r.Status),
		IsPublic:   r.IsPublic,
	}
}

func FileRecordFromMessage(m FileRecordMessage) (models.FileRecord, error) {
	status, err := models.ParseFileStatus(m.Status)
	if err != nil {
		return models.FileRecord{}, err
	}
	hash, _ := DigestFromBytes(m.FileHash)
	root, _ := DigestFromBytes(m.MerkleRoot)
	return models.FileRecord{
		Owner:      m.Owner,
		FileName:   m.FileName,
		FileSize:   m.FileSize,
		FileHash:   hash,
		ChunkCount: m.ChunkCount,
		MerkleRoot: root,
		StorageID:  m.StorageID,
		CreatedAt:  UnixTime(m.CreatedAt),
		UpdatedAt:  UnixTime(m.UpdatedAt),
		Status:     status,
		IsPublic:   m.IsPublic,
	}, nil
}

func ProfileToMessage(p models.UserProfile) ProfileResponse {
	return ProfileResponse{
		Owner:            p.Owner,
		FilesOwned:       p.FilesOwned,
		StorageUsed:      p.StorageUsed,
		StoragePaidUntil: Unix(p.StoragePaidUntil),
		ReputationScore:  p.ReputationScore,
	}
}

func ProfileFromMessage(m ProfileResponse) *models.UserProfile {
	return &models.UserProfile{
		Owner:            m.Owner,
		FilesOwned:       m.FilesOwned,
		StorageUsed:      m.StorageUsed,
		StoragePaidUntil: UnixTime(m.StoragePaidUntil),
		ReputationScore:  m.ReputationScore,
	}
}

func ConfigToMessage(c models.LedgerConfig) ConfigResponse {
	return ConfigResponse{
		Authority:       c.Authority,
		TotalFiles:      c.TotalFiles,
		StorageFeePerGB: c.StorageFeePerGB,
		MaxFileSize:     c.MaxFileSize,
	}
}

func ConfigFromMessage(m ConfigResponse) *models.LedgerConfig {
	return &models.LedgerConfig{
		Authority:       m.Authority,
		TotalFiles:      m.TotalFiles,
		StorageFeePerGB: m.StorageFeePerGB,
		MaxFileSize:     m.MaxFileSize,
	}
}
