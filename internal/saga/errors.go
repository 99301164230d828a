package saga

import (
	"errors"
	"fmt"
)

// ErrSagaInFlight is returned by Run while another upload of the same
// coordinator has not finished.
var ErrSagaInFlight = errors.New("an upload is already in progress")

// StepError is the terminal failure of a saga.
type StepError struct {
	Step     Step
	FileName string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("upload of %q failed at step %s: %v", e.FileName, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
