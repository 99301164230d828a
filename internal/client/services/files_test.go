package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
	"github.com/dmitrijs2005/ledgerdrive/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger/memledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/logging"
	"github.com/dmitrijs2005/ledgerdrive/internal/saga"
	"github.com/dmitrijs2005/ledgerdrive/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

type fileEnv struct {
	ledger  *memledger.Ledger
	uploads *uploads.MemoryRepository
	store   *storage.MemoryStore
	svc     FileService
}

func newFileEnv(t *testing.T) *fileEnv {
	t.Helper()
	l := memledger.New()
	u := uploads.NewMemoryRepository()
	st := storage.NewMemoryStore()
	c := saga.NewCoordinator(l, st, u)
	return &fileEnv{
		ledger:  l,
		uploads: u,
		store:   st,
		svc:     NewFileService(l, u, c, st, "https://gw.example/ipfs", logging.Discard()),
	}
}

func (e *fileEnv) addLocal(t *testing.T, name string, status models.FileStatus, at time.Time) {
	t.Helper()
	require.NoError(t, e.uploads.Add(context.Background(), models.LocalUpload{
		ID:        models.NewUploadID(owner, name, at),
		FileName:  name,
		FileSize:  3,
		Status:    status,
		Owner:     owner,
		CreatedAt: at,
	}))
}

func names(files []FileView) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.FileName)
	}
	return out
}

func TestFileService_List_LedgerWins(t *testing.T) {
	e := newFileEnv(t)
	ctx := context.Background()

	_, err := e.svc.Upload(ctx, owner, "a.txt", []byte("aaa"), nil)
	require.NoError(t, err)

	t0 := time.Now()
	// shadowed by the ledger record
	e.addLocal(t, "a.txt", models.StatusUploading, t0)
	e.addLocal(t, "b.txt", models.StatusProcessing, t0.Add(time.Second))
	e.addLocal(t, "gone.txt", models.StatusDeleted, t0.Add(2*time.Second))

	got, err := e.svc.List(ctx, owner)
	require.NoError(t, err)
	assert.False(t, got.Degraded)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names(got.Files))

	assert.False(t, got.Files[0].Local)
	assert.Equal(t, models.StatusActive, got.Files[0].Status)
	assert.NotEmpty(t, got.Files[0].StorageID)
	assert.True(t, got.Files[1].Local)
}

func TestFileService_List_DegradesToLocalRows(t *testing.T) {
	e := newFileEnv(t)
	ctx := context.Background()

	_, err := e.svc.Upload(ctx, owner, "a.txt", []byte("aaa"), nil)
	require.NoError(t, err)
	e.addLocal(t, "b.txt", models.StatusUploading, time.Now())

	e.ledger.FailNext(ledger.MethodListFilesByOwner, ledger.ErrTransport)
	got, err := e.svc.List(ctx, owner)
	require.NoError(t, err)

	assert.True(t, got.Degraded)
	assert.ErrorIs(t, got.LedgerErr, ledger.ErrTransport)
	assert.Equal(t, []string{"b.txt"}, names(got.Files))
}

type brokenRepo struct{ uploads.Repository }

func (brokenRepo) ListByOwner(context.Context, string) ([]models.LocalUpload, error) {
	return nil, errors.New("disk I/O error")
}

func TestFileService_List_LocalReadFails(t *testing.T) {
	l := memledger.New()
	st := storage.NewMemoryStore()
	svc := NewFileService(l, brokenRepo{}, saga.NewCoordinator(l, st, brokenRepo{}), st, "", logging.Discard())

	_, err := svc.List(context.Background(), owner)
	require.ErrorContains(t, err, "disk I/O error")
}

func TestFileService_Pending(t *testing.T) {
	e := newFileEnv(t)
	t0 := time.Now()
	e.addLocal(t, "late.txt", models.StatusUploading, t0.Add(time.Minute))
	e.addLocal(t, "early.txt", models.StatusProcessing, t0)
	e.addLocal(t, "done.txt", models.StatusDeleted, t0)

	rows, err := e.svc.Pending(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "early.txt", rows[0].FileName)
	assert.Equal(t, "late.txt", rows[1].FileName)
}

func TestFileService_VisibilityAndURL(t *testing.T) {
	e := newFileEnv(t)
	ctx := context.Background()

	res, err := e.svc.Upload(ctx, owner, "a.txt", []byte("aaa"), nil)
	require.NoError(t, err)

	require.NoError(t, e.svc.SetVisibility(ctx, owner, "a.txt", true))
	got, err := e.svc.List(ctx, owner)
	require.NoError(t, err)
	assert.True(t, got.Files[0].IsPublic)

	err = e.svc.SetVisibility(ctx, owner, "missing.txt", true)
	require.ErrorIs(t, err, ledger.ErrPreconditionFailed)

	u, err := e.svc.FileURL(ctx, owner, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "https://gw.example/ipfs/"+res.StorageID, u)

	_, err = e.svc.FileURL(ctx, owner, "missing.txt")
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestFileService_FileURL_NotStored(t *testing.T) {
	e := newFileEnv(t)
	ctx := context.Background()

	_, err := e.ledger.EnsureConfig(ctx, owner)
	require.NoError(t, err)
	_, err = e.ledger.EnsureProfile(ctx, owner)
	require.NoError(t, err)
	_, err = e.ledger.CreateFileRecord(ctx, ledger.CreateFileParams{
		Owner: owner, Name: "half.bin", Size: 1, Hash: models.Digest{1}, ChunkCount: 1,
	})
	require.NoError(t, err)

	_, err = e.svc.FileURL(ctx, owner, "half.bin")
	require.ErrorIs(t, err, ErrNotStored)
}

func TestFileService_Download(t *testing.T) {
	e := newFileEnv(t)
	ctx := context.Background()
	data := []byte("quarterly numbers")

	_, err := e.svc.Upload(ctx, owner, "q3.csv", data, nil)
	require.NoError(t, err)

	got, err := e.svc.Download(ctx, owner, "q3.csv")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = e.svc.Download(ctx, owner, "missing.csv")
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestFileService_Download_HashMismatch(t *testing.T) {
	e := newFileEnv(t)
	ctx := context.Background()

	id, err := e.store.Upload(ctx, []byte("tampered"), nil)
	require.NoError(t, err)

	_, err = e.ledger.EnsureConfig(ctx, owner)
	require.NoError(t, err)
	_, err = e.ledger.EnsureProfile(ctx, owner)
	require.NoError(t, err)
	_, err = e.ledger.CreateFileRecord(ctx, ledger.CreateFileParams{
		Owner: owner, Name: "doc.txt", Size: 8, Hash: saga.HashContent([]byte("original")), ChunkCount: 1,
	})
	require.NoError(t, err)
	_, err = e.ledger.RegisterStorage(ctx, owner, "doc.txt", id, models.Digest{})
	require.NoError(t, err)

	_, err = e.svc.Download(ctx, owner, "doc.txt")
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestFileService_ProfileAndConfig(t *testing.T) {
	e := newFileEnv(t)
	ctx := context.Background()

	_, err := e.svc.Profile(ctx, owner)
	require.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = e.svc.Upload(ctx, owner, "a.txt", []byte("aaa"), nil)
	require.NoError(t, err)

	p, err := e.svc.Profile(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), p.FilesOwned)
	assert.Equal(t, uint64(3), p.StorageUsed)

	cfg, err := e.svc.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, owner, cfg.Authority)
	assert.Equal(t, uint64(1), cfg.TotalFiles)

	require.NoError(t, e.svc.Ping(ctx))
}

func TestFileService_ClearLocal(t *testing.T) {
	e := newFileEnv(t)
	e.addLocal(t, "b.txt", models.StatusUploading, time.Now())

	require.NoError(t, e.svc.ClearLocal(context.Background()))

	rows, err := e.svc.Pending(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// blockingUploader holds an upload until release is closed.
type blockingUploader struct {
	started, release chan struct{}
}

func (b *blockingUploader) Upload(ctx context.Context, data []byte, _ func(float64)) (string, error) {
	close(b.started)
	<-b.release
	return storage.ComputeCID(data)
}

func TestFileService_ClearLocal_RefusedDuringUpload(t *testing.T) {
	l := memledger.New()
	u := uploads.NewMemoryRepository()
	up := &blockingUploader{started: make(chan struct{}), release: make(chan struct{})}
	c := saga.NewCoordinator(l, up, u)
	svc := NewFileService(l, u, c, storage.NewMemoryStore(), "", logging.Discard())
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Upload(ctx, owner, "a.txt", []byte("a"), nil)
		done <- err
	}()
	<-up.started

	require.ErrorIs(t, svc.ClearLocal(ctx), saga.ErrSagaInFlight)

	close(up.release)
	require.NoError(t, <-done)
	require.NoError(t, svc.ClearLocal(ctx))
}
