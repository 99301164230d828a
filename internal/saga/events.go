package saga

import (
	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Event reports saga progress. Exactly one event per run has a terminal
// status (succeeded or failed); it is the last one before the channel
// closes.
type Event struct {
	UploadID string
	Step     Step
	// Progress is the composite fraction in [0, 1].
	Progress float64
	Status   Status
	// Outcome is set on the event that ends a step.
	Outcome Outcome
	// Err is a *StepError when Status is StatusFailed.
	Err error
	// Result is set when Status is StatusSucceeded.
	Result *Result
}

func (e Event) Terminal() bool {
	return e.Status != StatusRunning
}

// Result describes a successful upload.
type Result struct {
	UploadID      string
	FileName      string
	Size          uint64
	FileHash      models.Digest
	IntegrityRoot models.Digest
	ChunkCount    uint32
	StorageID     string
	Outcomes      map[Step]Outcome
}
