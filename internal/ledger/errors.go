package ledger

import (
	"errors"
	"fmt"
)

// Kinds of ledger failure. Every error returned by a Backend wraps exactly one.
var (
	// ErrDuplicateSubmission: the operation was already applied.
	ErrDuplicateSubmission = errors.New("duplicate submission")
	// ErrAlreadyInitialized: the config/profile account already exists.
	ErrAlreadyInitialized = errors.New("already initialized")
	// ErrTransport: network failure or timeout; outcome unknown.
	ErrTransport = errors.New("ledger transport error")
	// ErrPreconditionFailed: the call was made out of order.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrValidation: the ledger rejected the arguments.
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized: the session token was missing, expired or for another owner.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound: a read targeted an account that does not exist.
	ErrNotFound = errors.New("account not found")
)

// Error is a classified ledger failure.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError classifies cause under kind for operation op.
func NewError(op string, kind error, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// Errorf is NewError with a formatted cause.
func Errorf(op string, kind error, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

var kinds = []error{
	ErrDuplicateSubmission,
	ErrAlreadyInitialized,
	ErrTransport,
	ErrPreconditionFailed,
	ErrValidation,
	ErrUnauthorized,
	ErrNotFound,
}

// KindOf returns the kind sentinel err carries, or nil when err is not a
// classified ledger error.
func KindOf(err error) error {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// IsBenign reports whether err only says "already applied".
func IsBenign(err error) bool {
	return errors.Is(err, ErrDuplicateSubmission) || errors.Is(err, ErrAlreadyInitialized)
}
