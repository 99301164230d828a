package saga

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/logging"
)

// tickBuffer is the room left in an event channel for store progress ticks.
// Ticks are dropped when it is used up; step events never are.
const tickBuffer = 64

// Coordinator runs upload sagas for one session, one at a time.
type Coordinator struct {
	ledger   Ledger
	uploader Uploader
	store    Store
	program  ledger.Program
	logger   logging.Logger
	now      func() time.Time

	busy atomic.Bool
}

type Option func(*Coordinator)

func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithProgram selects the ledger program whose account addresses are
// checked before the config and profile are created.
func WithProgram(p ledger.Program) Option {
	return func(c *Coordinator) { c.program = p }
}

func NewCoordinator(l Ledger, u Uploader, s Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		ledger:   l,
		uploader: u,
		store:    s,
		program:  ledger.NewProgram(ledger.DefaultProgramID),
		logger:   logging.Discard(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With("module", "saga")
	return c
}

// Busy reports whether a saga is in flight.
func (c *Coordinator) Busy() bool {
	return c.busy.Load()
}

type run struct {
	c         *Coordinator
	owner     string
	data      []byte
	createdAt time.Time
	logger    logging.Logger

	result Result

	events   chan Event
	reserved int // step events still to be sent
	last     float64
	base     int // percent completed before the current step
	weight   int // percent owned by the current step
	step     Step
}

// Run starts an upload of data as name for owner and returns its event
// stream. The local row is added before Run returns. ErrSagaInFlight is
// returned while another saga of c is running.
//
// ctx bounds the run until the ledger record has been created. After that
// the saga runs to completion regardless, since the ledger side effects
// cannot be undone; adapters still apply their own timeouts.
func (c *Coordinator) Run(ctx context.Context, owner, name string, data []byte) (<-chan Event, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrSagaInFlight
	}

	createdAt := c.now()
	id := models.NewUploadID(owner, name, createdAt)

	err := c.store.Add(ctx, models.LocalUpload{
		ID:        id,
		FileName:  name,
		FileSize:  uint64(len(data)),
		Status:    models.StatusUploading,
		Owner:     owner,
		CreatedAt: createdAt,
	})
	if err != nil {
		c.busy.Store(false)
		return nil, err
	}

	r := &run{
		c:         c,
		owner:     owner,
		data:      data,
		createdAt: createdAt,
		logger:    c.logger.With("upload_id", id, "file", name),
		result: Result{
			UploadID: id,
			FileName: name,
			Size:     uint64(len(data)),
			Outcomes: make(map[Step]Outcome, len(steps)),
		},
		reserved: 2 * len(steps),
	}
	r.events = make(chan Event, r.reserved+tickBuffer)

	go r.execute(ctx)
	return r.events, nil
}

// Upload runs a saga and waits for it, passing every event to onEvent
// (which may be nil).
func (c *Coordinator) Upload(ctx context.Context, owner, name string, data []byte, onEvent func(Event)) (*Result, error) {
	events, err := c.Run(ctx, owner, name, data)
	if err != nil {
		return nil, err
	}

	var final Event
	for ev := range events {
		if onEvent != nil {
			onEvent(ev)
		}
		final = ev
	}

	if final.Status != StatusSucceeded {
		return nil, final.Err
	}
	return final.Result, nil
}

func (r *run) execute(ctx context.Context) {
	defer close(r.events)

	r.logger.Info(ctx, "upload started", "size", r.result.Size)

	for _, s := range steps {
		r.step, r.weight = s.step, s.weight
		r.send(Event{Step: s.step, Status: StatusRunning})

		outcome, err := s.run(r, ctx)
		if err != nil {
			r.fail(ctx, err)
			return
		}

		r.result.Outcomes[s.step] = outcome
		r.base += s.weight
		r.logger.Info(ctx, "step finished", "step", s.step, "outcome", outcome.String())

		// Once the record exists the run must not be abandoned halfway.
		if s.step == StepCreateRecord {
			ctx = context.WithoutCancel(ctx)
		}

		if s.step == StepDone {
			r.finish(ctx, outcome)
			return
		}
		r.send(Event{Step: s.step, Status: StatusRunning, Outcome: outcome})
	}
}

func (r *run) fail(ctx context.Context, err error) {
	se := &StepError{Step: r.step, FileName: r.result.FileName, Err: err}
	r.logger.Error(ctx, "upload failed", "step", r.step, "error", err)

	r.setLocalStatus(context.WithoutCancel(ctx), models.StatusDeleted)

	// Release the guard before the terminal event so the caller can start
	// the next upload as soon as it sees this one end.
	r.c.busy.Store(false)
	r.send(Event{Step: r.step, Status: StatusFailed, Err: se})
}

func (r *run) finish(ctx context.Context, outcome Outcome) {
	r.logger.Info(ctx, "upload finished", "storage_id", r.result.StorageID)

	res := r.result
	r.c.busy.Store(false)
	r.send(Event{Step: StepDone, Status: StatusSucceeded, Outcome: outcome, Result: &res})
}

// send delivers a step event. The channel always has room for it.
func (r *run) send(ev Event) {
	ev.UploadID = r.result.UploadID
	ev.Progress = r.advance(float64(r.base) / 100)
	r.reserved--
	r.events <- ev
}

// subProgress maps the store step's own fraction onto the step's slice.
func (r *run) subProgress(f float64) {
	f = min(max(f, 0), 1)
	p := r.advance((float64(r.base) + float64(r.weight)*f) / 100)

	// ticks only use the spare capacity, never the reserved slots
	if len(r.events)+r.reserved < cap(r.events) {
		r.events <- Event{UploadID: r.result.UploadID, Step: r.step, Progress: p, Status: StatusRunning}
	}
}

// advance clamps p so that reported progress never decreases.
func (r *run) advance(p float64) float64 {
	if p > r.last {
		r.last = p
	}
	return r.last
}

func (r *run) setLocalStatus(ctx context.Context, status models.FileStatus) {
	if err := r.c.store.UpdateStatus(ctx, r.result.UploadID, status); err != nil {
		r.logger.Warn(ctx, "local status update failed", "status", status, "error", err)
	}
}

func (r *run) setLocalStorageID(ctx context.Context) {
	if err := r.c.store.SetStorageID(ctx, r.result.UploadID, r.result.StorageID); err != nil {
		r.logger.Warn(ctx, "local storage id update failed", "error", err)
	}
}
