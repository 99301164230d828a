// Package services contains application services for the ledgerdrive client.
// This file defines the session service: who the client acts for, persisted
// in the local metadata table so that a restart resumes the session.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/auth"
	"github.com/dmitrijs2005/ledgerdrive/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ledgerdrive/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/ledgerdrive/internal/dbx"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
)

// SessionService defines session operations for the CLI.
//
// Contract:
//   - Login: validate the owner key, persist it and start signing calls for it.
//   - Resume: restore the persisted session, if any.
//   - Logout: forget the session and evict local upload rows.
type SessionService interface {
	Login(ctx context.Context, owner string) (*metadata.Session, error)
	Resume(ctx context.Context) (*metadata.Session, error)
	Logout(ctx context.Context) error
}

type sessionService struct {
	db     *sql.DB
	tokens *auth.TokenSource
	now    func() time.Time
}

// NewSessionService binds a session to the local database db. tokens is
// switched to the session owner on login and cleared on logout.
func NewSessionService(db *sql.DB, tokens *auth.TokenSource) SessionService {
	return &sessionService{db: db, tokens: tokens, now: time.Now}
}

func (s *sessionService) Login(ctx context.Context, owner string) (*metadata.Session, error) {
	if err := ledger.ValidateOwner(owner); err != nil {
		return nil, err
	}

	sess := metadata.Session{Owner: owner, LoggedInAt: s.now().UTC().Truncate(time.Second)}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.SaveSession(ctx, metadata.NewSQLiteRepository(tx), sess)
	})
	if err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}

	s.tokens.SetOwner(owner)
	return &sess, nil
}

// Resume returns metadata.ErrNoSession when nobody is logged in.
func (s *sessionService) Resume(ctx context.Context) (*metadata.Session, error) {
	sess, err := metadata.LoadSession(ctx, metadata.NewSQLiteRepository(s.db))
	if err != nil {
		return nil, err
	}
	s.tokens.SetOwner(sess.Owner)
	return sess, nil
}

// Logout clears the session and the local upload rows in one transaction.
func (s *sessionService) Logout(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := metadata.ClearSession(ctx, metadata.NewSQLiteRepository(tx)); err != nil {
			return err
		}
		return uploads.NewSQLiteRepository(tx).Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("logout error: %w", err)
	}

	s.tokens.SetOwner("")
	return nil
}
