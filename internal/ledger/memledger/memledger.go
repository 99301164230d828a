// Package memledger is an in-process stand-in for the external ledger.
//
// It enforces the ledger program's published acceptance rules (name and
// storage identifier limits, size bounds, call ordering, one record per
// derived address) and classifies rejections with the ledger error kinds, so
// that the upload saga and the gateway daemon can be exercised without a
// network. Faults can be injected per method to simulate lost responses.
package memledger

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"github.com/google/uuid"
)

const (
	// DefaultMaxFileSize is the config max file size when none is given.
	DefaultMaxFileSize = 1 << 30
	// DefaultStorageFeePerGB is the fee recorded in a fresh config.
	DefaultStorageFeePerGB = 1_000_000
	// DefaultReputation is the score a new profile starts with.
	DefaultReputation = 100
)

// ErrInjected is the cause carried by injected faults.
var ErrInjected = errors.New("injected fault")

type fault struct {
	kind       error
	afterApply bool
}

// Ledger is safe for concurrent use.
type Ledger struct {
	mu sync.Mutex

	program     ledger.Program
	maxFileSize uint64
	now         func() time.Time

	config   *models.LedgerConfig
	profiles map[string]*models.UserProfile
	files    map[ledger.Address]*models.FileRecord
	accounts map[ledger.Address]struct{}

	faults  map[string][]fault
	applied map[string]int
}

type Option func(*Ledger)

func WithMaxFileSize(n uint64) Option {
	return func(l *Ledger) { l.maxFileSize = n }
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithProgram(p ledger.Program) Option {
	return func(l *Ledger) { l.program = p }
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		program:     ledger.NewProgram(ledger.DefaultProgramID),
		maxFileSize: DefaultMaxFileSize,
		now:         time.Now,
		profiles:    make(map[string]*models.UserProfile),
		files:       make(map[ledger.Address]*models.FileRecord),
		accounts:    make(map[ledger.Address]struct{}),
		faults:      make(map[string][]fault),
		applied:     make(map[string]int),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// FailNext makes the next call of method fail with kind without applying it.
func (l *Ledger) FailNext(method string, kind error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.faults[method] = append(l.faults[method], fault{kind: kind})
}

// ApplyThenFail makes the next call of method take effect and then report
// kind, the way a transaction that landed but whose confirmation timed out
// looks to the caller.
func (l *Ledger) ApplyThenFail(method string, kind error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.faults[method] = append(l.faults[method], fault{kind: kind, afterApply: true})
}

// Applied returns how many times method changed ledger state.
func (l *Ledger) Applied(method string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applied[method]
}

// takeFault pops the next pending fault for method. Callers hold l.mu.
func (l *Ledger) takeFault(method string) (fault, bool) {
	q := l.faults[method]
	if len(q) == 0 {
		return fault{}, false
	}
	l.faults[method] = q[1:]
	return q[0], true
}

// mutate runs apply under the lock with fault injection around it.
func (l *Ledger) mutate(ctx context.Context, method string, apply func() error) (ledger.TxRef, error) {
	if err := ctx.Err(); err != nil {
		return "", ledger.NewError(method, ledger.ErrTransport, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, faulty := l.takeFault(method)
	if faulty && !f.afterApply {
		return "", ledger.NewError(method, f.kind, ErrInjected)
	}

	if err := apply(); err != nil {
		return "", err
	}
	l.applied[method]++

	if faulty {
		return "", ledger.NewError(method, f.kind, ErrInjected)
	}
	return ledger.TxRef(uuid.NewString()), nil
}

// read runs fn under the lock unless ctx is done or a fault is pending.
func (l *Ledger) read(ctx context.Context, method string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return ledger.NewError(method, ledger.ErrTransport, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.takeFault(method); ok {
		return ledger.NewError(method, f.kind, ErrInjected)
	}
	return fn()
}

func (l *Ledger) Ping(ctx context.Context) error {
	return l.read(ctx, ledger.MethodPing, func() error { return nil })
}

func (l *Ledger) AccountExists(ctx context.Context, addr ledger.Address) (bool, error) {
	var ok bool
	err := l.read(ctx, ledger.MethodAccountExists, func() error {
		_, ok = l.accounts[addr]
		return nil
	})
	return ok, err
}

func (l *Ledger) EnsureConfig(ctx context.Context, authority string) (ledger.TxRef, error) {
	const op = ledger.MethodEnsureConfig
	return l.mutate(ctx, op, func() error {
		if l.config != nil {
			return ledger.Errorf(op, ledger.ErrAlreadyInitialized, "config account %s in use", l.program.ConfigAddress())
		}
		l.config = &models.LedgerConfig{
			Authority:       authority,
			StorageFeePerGB: DefaultStorageFeePerGB,
			MaxFileSize:     l.maxFileSize,
		}
		l.accounts[l.program.ConfigAddress()] = struct{}{}
		return nil
	})
}

func (l *Ledger) EnsureProfile(ctx context.Context, owner string) (ledger.TxRef, error) {
	const op = ledger.MethodEnsureProfile
	return l.mutate(ctx, op, func() error {
		addr := l.program.ProfileAddress(owner)
		if _, ok := l.profiles[owner]; ok {
			return ledger.Errorf(op, ledger.ErrAlreadyInitialized, "profile account %s in use", addr)
		}
		l.profiles[owner] = &models.UserProfile{
			Owner:            owner,
			StoragePaidUntil: l.now().AddDate(0, 0, 30).UTC().Truncate(time.Second),
			ReputationScore:  DefaultReputation,
		}
		l.accounts[addr] = struct{}{}
		return nil
	})
}

func (l *Ledger) CreateFileRecord(ctx context.Context, p ledger.CreateFileParams) (ledger.TxRef, error) {
	const op = ledger.MethodCreateFileRecord
	return l.mutate(ctx, op, func() error {
		switch {
		case p.Name == "":
			return ledger.Errorf(op, ledger.ErrValidation, "file name is empty")
		case len(p.Name) > ledger.MaxFileNameLen:
			return ledger.Errorf(op, ledger.ErrValidation, "file name is too long (max %d)", ledger.MaxFileNameLen)
		case l.config == nil:
			return ledger.Errorf(op, ledger.ErrPreconditionFailed, "ledger config not initialized")
		case p.Size == 0 || p.Size > l.config.MaxFileSize:
			return ledger.Errorf(op, ledger.ErrValidation, "invalid file size %d", p.Size)
		case p.ChunkCount == 0:
			return ledger.Errorf(op, ledger.ErrValidation, "invalid chunk count")
		}

		profile, ok := l.profiles[p.Owner]
		if !ok {
			return ledger.Errorf(op, ledger.ErrPreconditionFailed, "no profile for %s", p.Owner)
		}

		addr := l.program.FileAddress(p.Owner, p.Name)
		if f, ok := l.files[addr]; ok {
			if f.FileHash != p.Hash || f.FileSize != p.Size || f.ChunkCount != p.ChunkCount {
				return ledger.Errorf(op, ledger.ErrPreconditionFailed, "file account %s in use with different content", addr)
			}
			return ledger.Errorf(op, ledger.ErrDuplicateSubmission, "file account %s in use", addr)
		}

		created := p.Timestamp
		if created.IsZero() {
			created = l.now()
		}
		created = created.UTC().Truncate(time.Second)

		l.files[addr] = &models.FileRecord{
			Owner:      p.Owner,
			FileName:   p.Name,
			FileSize:   p.Size,
			FileHash:   p.Hash,
			ChunkCount: p.ChunkCount,
			CreatedAt:  created,
			UpdatedAt:  created,
			Status:     models.StatusUploading,
		}
		l.accounts[addr] = struct{}{}

		l.config.TotalFiles++
		profile.FilesOwned++
		profile.StorageUsed += p.Size
		return nil
	})
}

// fileFor returns the record for owner/name or a PreconditionFailed error.
func (l *Ledger) fileFor(op, owner, name string) (*models.FileRecord, error) {
	f, ok := l.files[l.program.FileAddress(owner, name)]
	if !ok {
		return nil, ledger.Errorf(op, ledger.ErrPreconditionFailed, "no record for %q", name)
	}
	return f, nil
}

func (l *Ledger) RegisterStorage(ctx context.Context, owner, name, storageID string, root models.Digest) (ledger.TxRef, error) {
	const op = ledger.MethodRegisterStorage
	return l.mutate(ctx, op, func() error {
		switch {
		case storageID == "":
			return ledger.Errorf(op, ledger.ErrValidation, "storage location cannot be empty")
		case len(storageID) > ledger.MaxStorageIDLen:
			return ledger.Errorf(op, ledger.ErrValidation, "storage location is too long (max %d)", ledger.MaxStorageIDLen)
		}

		f, err := l.fileFor(op, owner, name)
		if err != nil {
			return err
		}
		if f.StorageID != "" {
			if f.StorageID == storageID {
				return ledger.Errorf(op, ledger.ErrDuplicateSubmission, "storage already registered for %q", name)
			}
			return ledger.Errorf(op, ledger.ErrPreconditionFailed, "invalid file status %s for this operation", f.Status)
		}

		f.StorageID = storageID
		f.MerkleRoot = root
		f.Status = models.StatusProcessing
		f.UpdatedAt = l.now().UTC().Truncate(time.Second)
		return nil
	})
}

func (l *Ledger) FinalizeFile(ctx context.Context, owner, name string) (ledger.TxRef, error) {
	const op = ledger.MethodFinalizeFile
	return l.mutate(ctx, op, func() error {
		f, err := l.fileFor(op, owner, name)
		if err != nil {
			return err
		}
		switch {
		case f.StorageID == "":
			return ledger.Errorf(op, ledger.ErrPreconditionFailed, "no storage location registered")
		case f.Status == models.StatusActive:
			return ledger.Errorf(op, ledger.ErrDuplicateSubmission, "file %q already finalized", name)
		case f.Status != models.StatusProcessing:
			return ledger.Errorf(op, ledger.ErrPreconditionFailed, "invalid file status %s for this operation", f.Status)
		}

		f.Status = models.StatusActive
		f.UpdatedAt = l.now().UTC().Truncate(time.Second)
		return nil
	})
}

func (l *Ledger) SetVisibility(ctx context.Context, owner, name string, public bool) (ledger.TxRef, error) {
	const op = ledger.MethodSetVisibility
	return l.mutate(ctx, op, func() error {
		f, err := l.fileFor(op, owner, name)
		if err != nil {
			return err
		}
		f.IsPublic = public
		f.UpdatedAt = l.now().UTC().Truncate(time.Second)
		return nil
	})
}

// ListFilesByOwner returns the owner's records, oldest first.
func (l *Ledger) ListFilesByOwner(ctx context.Context, owner string) ([]models.FileRecord, error) {
	var out []models.FileRecord
	err := l.read(ctx, ledger.MethodListFilesByOwner, func() error {
		for _, f := range l.files {
			if f.Owner == owner {
				out = append(out, *f)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].FileName < out[j].FileName
	})
	return out, nil
}

func (l *Ledger) GetProfile(ctx context.Context, owner string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := l.read(ctx, ledger.MethodGetProfile, func() error {
		found, ok := l.profiles[owner]
		if !ok {
			return ledger.Errorf(ledger.MethodGetProfile, ledger.ErrNotFound, "no profile for %s", owner)
		}
		p = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (l *Ledger) GetConfig(ctx context.Context) (*models.LedgerConfig, error) {
	var c models.LedgerConfig
	err := l.read(ctx, ledger.MethodGetConfig, func() error {
		if l.config == nil {
			return ledger.Errorf(ledger.MethodGetConfig, ledger.ErrNotFound, "ledger config not initialized")
		}
		c = *l.config
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var _ ledger.Backend = (*Ledger)(nil)
