package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	keyOwner      = "session.owner"
	keyLoggedInAt = "session.logged_in_at"
)

var ErrNoSession = errors.New("no active session")

// Session is the owner identity the client acts for.
type Session struct {
	Owner      string
	LoggedInAt time.Time
}

// LoadSession returns ErrNoSession when nobody is logged in.
func LoadSession(ctx context.Context, r Repository) (*Session, error) {
	owner, err := r.Get(ctx, keyOwner)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	s := &Session{Owner: owner}
	if at, err := r.Get(ctx, keyLoggedInAt); err == nil {
		if t, perr := time.Parse(time.RFC3339, at); perr == nil {
			s.LoggedInAt = t
		}
	}
	return s, nil
}

func SaveSession(ctx context.Context, r Repository, s Session) error {
	if s.Owner == "" {
		return fmt.Errorf("save session: empty owner")
	}
	if err := r.Set(ctx, keyOwner, s.Owner); err != nil {
		return err
	}
	return r.Set(ctx, keyLoggedInAt, s.LoggedInAt.UTC().Format(time.RFC3339))
}

func ClearSession(ctx context.Context, r Repository) error {
	if err := r.Delete(ctx, keyOwner); err != nil {
		return err
	}
	return r.Delete(ctx, keyLoggedInAt)
}
