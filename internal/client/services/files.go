package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
	"github.com/dmitrijs2005/ledgerdrive/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/logging"
	"github.com/dmitrijs2005/ledgerdrive/internal/saga"
	"github.com/dmitrijs2005/ledgerdrive/internal/storage"
	"golang.org/x/sync/errgroup"
)

var (
	ErrFileNotFound = errors.New("file not found")
	// ErrNotStored: the ledger record has no storage identifier yet.
	ErrNotStored = errors.New("file has no storage identifier")
	// ErrIntegrity: fetched content does not hash to the ledger's file hash.
	ErrIntegrity = errors.New("content does not match ledger hash")
)

// FileView is one row of a listing.
type FileView struct {
	FileName  string
	FileSize  uint64
	Status    models.FileStatus
	StorageID string
	IsPublic  bool
	CreatedAt time.Time
	// Local marks a row the ledger does not list yet.
	Local bool
}

type Listing struct {
	Files []FileView
	// Degraded is set when the ledger could not be read; Files then holds
	// only local rows and LedgerErr says why.
	Degraded  bool
	LedgerErr error
}

type FileService interface {
	List(ctx context.Context, owner string) (*Listing, error)
	Pending(ctx context.Context, owner string) ([]models.LocalUpload, error)
	Upload(ctx context.Context, owner, name string, data []byte, onEvent func(saga.Event)) (*saga.Result, error)
	Profile(ctx context.Context, owner string) (*models.UserProfile, error)
	Config(ctx context.Context) (*models.LedgerConfig, error)
	SetVisibility(ctx context.Context, owner, name string, public bool) error
	FileURL(ctx context.Context, owner, name string) (string, error)
	Download(ctx context.Context, owner, name string) ([]byte, error)
	ClearLocal(ctx context.Context) error
	Ping(ctx context.Context) error
}

type fileService struct {
	ledger     ledger.Backend
	uploads    uploads.Repository
	saga       *saga.Coordinator
	fetcher    storage.Fetcher
	gatewayURL string
	logger     logging.Logger
}

func NewFileService(l ledger.Backend, u uploads.Repository, c *saga.Coordinator, f storage.Fetcher, gatewayURL string, logger logging.Logger) FileService {
	return &fileService{
		ledger:     l,
		uploads:    u,
		saga:       c,
		fetcher:    f,
		gatewayURL: gatewayURL,
		logger:     logger.With("module", "file_service"),
	}
}

// List merges the ledger's records with local rows still in flight. Ledger
// records always win; a local row is shown only while the ledger has no
// record of the same name.
func (s *fileService) List(ctx context.Context, owner string) (*Listing, error) {
	var (
		records   []models.FileRecord
		local     []models.LocalUpload
		ledgerErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		// a ledger failure degrades the listing instead of failing it
		records, ledgerErr = s.ledger.ListFilesByOwner(ctx, owner)
		return nil
	})
	g.Go(func() error {
		var err error
		local, err = s.uploads.ListByOwner(ctx, owner)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error reading local uploads: %w", err)
	}

	out := &Listing{}
	listed := make(map[string]struct{}, len(records))

	if ledgerErr != nil {
		s.logger.Warn(ctx, "ledger unavailable, showing local uploads only", "error", ledgerErr)
		out.Degraded = true
		out.LedgerErr = ledgerErr
	} else {
		for _, r := range records {
			listed[r.FileName] = struct{}{}
			out.Files = append(out.Files, FileView{
				FileName:  r.FileName,
				FileSize:  r.FileSize,
				Status:    r.Status,
				StorageID: r.StorageID,
				IsPublic:  r.IsPublic,
				CreatedAt: r.CreatedAt,
			})
		}
	}

	for _, u := range inFlight(local) {
		if _, ok := listed[u.FileName]; ok {
			continue
		}
		out.Files = append(out.Files, FileView{
			FileName:  u.FileName,
			FileSize:  u.FileSize,
			Status:    u.Status,
			StorageID: u.StorageID,
			IsPublic:  u.IsPublic,
			CreatedAt: u.CreatedAt,
			Local:     true,
		})
	}
	return out, nil
}

func inFlight(rows []models.LocalUpload) []models.LocalUpload {
	out := rows[:0:0]
	for _, u := range rows {
		if u.InFlight() {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Pending returns the local rows of owner that are not deleted.
func (s *fileService) Pending(ctx context.Context, owner string) ([]models.LocalUpload, error) {
	rows, err := s.uploads.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("error reading local uploads: %w", err)
	}
	return inFlight(rows), nil
}

func (s *fileService) Upload(ctx context.Context, owner, name string, data []byte, onEvent func(saga.Event)) (*saga.Result, error) {
	return s.saga.Upload(ctx, owner, name, data, onEvent)
}

func (s *fileService) Profile(ctx context.Context, owner string) (*models.UserProfile, error) {
	return s.ledger.GetProfile(ctx, owner)
}

func (s *fileService) Config(ctx context.Context) (*models.LedgerConfig, error) {
	return s.ledger.GetConfig(ctx)
}

func (s *fileService) SetVisibility(ctx context.Context, owner, name string, public bool) error {
	if _, err := s.ledger.SetVisibility(ctx, owner, name, public); err != nil {
		return fmt.Errorf("error changing visibility of %q: %w", name, err)
	}
	return nil
}

// storedRecord returns the ledger record of name once it carries a storage id.
func (s *fileService) storedRecord(ctx context.Context, owner, name string) (*models.FileRecord, error) {
	records, err := s.ledger.ListFilesByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range records {
		r := &records[i]
		if r.FileName != name {
			continue
		}
		if r.StorageID == "" {
			return nil, fmt.Errorf("%w: %s", ErrNotStored, name)
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
}

// FileURL returns the gateway URL the content of name can be fetched from.
func (s *fileService) FileURL(ctx context.Context, owner, name string) (string, error) {
	r, err := s.storedRecord(ctx, owner, name)
	if err != nil {
		return "", err
	}
	return storage.GatewayURL(s.gatewayURL, r.StorageID)
}

// Download fetches the content of name and checks it against the file hash
// recorded on the ledger.
func (s *fileService) Download(ctx context.Context, owner, name string) ([]byte, error) {
	r, err := s.storedRecord(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	data, err := s.fetcher.Get(ctx, r.StorageID)
	if err != nil {
		return nil, fmt.Errorf("error fetching %q: %w", name, err)
	}
	if saga.HashContent(data) != r.FileHash {
		s.logger.Warn(ctx, "downloaded content does not match ledger hash", "file", name, "storage_id", r.StorageID)
		return nil, fmt.Errorf("%w: %s", ErrIntegrity, name)
	}
	return data, nil
}

// ClearLocal evicts every local upload row. It refuses while an upload is
// running, since that upload still writes its row.
func (s *fileService) ClearLocal(ctx context.Context) error {
	if s.saga.Busy() {
		return saga.ErrSagaInFlight
	}
	return s.uploads.Clear(ctx)
}

func (s *fileService) Ping(ctx context.Context) error {
	return s.ledger.Ping(ctx)
}
