package saga

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
)

type Step string

const (
	StepHash            Step = "hash"
	StepEnsureConfig    Step = "ensure-config"
	StepEnsureProfile   Step = "ensure-profile"
	StepCreateRecord    Step = "create-record"
	StepStore           Step = "store"
	StepRegisterStorage Step = "register-storage"
	StepFinalize        Step = "finalize"
	StepDone            Step = "done"
)

// Outcome is how a step that did not fail ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeApplied: the step did its work.
	OutcomeApplied
	// OutcomeDuplicate: the ledger reported the work as already applied.
	OutcomeDuplicate
	// OutcomeSkipped: nothing to do, e.g. the account already existed.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "none"
	}
}

type stepDesc struct {
	step Step
	// weight is the step's share of the progress range, in percent.
	weight int
	run    func(*run, context.Context) (Outcome, error)
}

// steps is the upload pipeline. Weights sum to 100. Only store forwards
// sub-progress; every other step is a single round trip. done keeps a
// slice of its own so that 100% is reported only once the run succeeded.
var steps = [...]stepDesc{
	{StepHash, 20, (*run).hash},
	{StepEnsureConfig, 5, (*run).ensureConfig},
	{StepEnsureProfile, 5, (*run).ensureProfile},
	{StepCreateRecord, 15, (*run).createRecord},
	{StepStore, 35, (*run).store},
	{StepRegisterStorage, 10, (*run).registerStorage},
	{StepFinalize, 8, (*run).finalize},
	{StepDone, 2, (*run).done},
}

// ledgerOutcome folds the benign ledger answers into OutcomeDuplicate.
func ledgerOutcome(err error) (Outcome, error) {
	switch {
	case err == nil:
		return OutcomeApplied, nil
	case ledger.IsBenign(err):
		return OutcomeDuplicate, nil
	default:
		return OutcomeNone, err
	}
}

func (r *run) hash(ctx context.Context) (Outcome, error) {
	r.result.FileHash = HashContent(r.data)
	r.result.IntegrityRoot = IntegrityRoot(r.data)
	r.result.ChunkCount = ChunkCount(r.result.Size)
	return OutcomeApplied, nil
}

// ensureAccount creates an account through create unless it exists.
func (r *run) ensureAccount(ctx context.Context, addr ledger.Address, create func() (ledger.TxRef, error)) (Outcome, error) {
	exists, err := r.c.ledger.AccountExists(ctx, addr)
	if err != nil {
		return OutcomeNone, fmt.Errorf("check account %s: %w", addr, err)
	}
	if exists {
		return OutcomeSkipped, nil
	}
	_, err = create()
	return ledgerOutcome(err)
}

func (r *run) ensureConfig(ctx context.Context) (Outcome, error) {
	return r.ensureAccount(ctx, r.c.program.ConfigAddress(), func() (ledger.TxRef, error) {
		return r.c.ledger.EnsureConfig(ctx, r.owner)
	})
}

func (r *run) ensureProfile(ctx context.Context) (Outcome, error) {
	return r.ensureAccount(ctx, r.c.program.ProfileAddress(r.owner), func() (ledger.TxRef, error) {
		return r.c.ledger.EnsureProfile(ctx, r.owner)
	})
}

// createRecord treats an existing record as ours: a previous run that died
// after this step is resumed from store.
func (r *run) createRecord(ctx context.Context) (Outcome, error) {
	_, err := r.c.ledger.CreateFileRecord(ctx, ledger.CreateFileParams{
		Owner:      r.owner,
		Name:       r.result.FileName,
		Size:       r.result.Size,
		Hash:       r.result.FileHash,
		ChunkCount: r.result.ChunkCount,
		Timestamp:  r.createdAt,
	})
	return ledgerOutcome(err)
}

func (r *run) store(ctx context.Context) (Outcome, error) {
	id, err := r.c.uploader.Upload(ctx, r.data, r.subProgress)
	if err != nil {
		return OutcomeNone, err
	}
	if id == "" {
		return OutcomeNone, fmt.Errorf("uploader returned an empty storage id")
	}
	r.result.StorageID = id
	return OutcomeApplied, nil
}

func (r *run) registerStorage(ctx context.Context) (Outcome, error) {
	_, err := r.c.ledger.RegisterStorage(ctx, r.owner, r.result.FileName, r.result.StorageID, r.result.IntegrityRoot)
	o, err := ledgerOutcome(err)
	if err != nil {
		return o, err
	}

	r.setLocalStorageID(ctx)
	r.setLocalStatus(ctx, models.StatusProcessing)
	return o, nil
}

func (r *run) finalize(ctx context.Context) (Outcome, error) {
	_, err := r.c.ledger.FinalizeFile(ctx, r.owner, r.result.FileName)
	o, err := ledgerOutcome(err)
	if err != nil {
		return o, err
	}

	r.setLocalStatus(ctx, models.StatusActive)
	return o, nil
}

// done retires the local row: the ledger now lists the file.
func (r *run) done(ctx context.Context) (Outcome, error) {
	r.setLocalStatus(ctx, models.StatusDeleted)
	return OutcomeApplied, nil
}
