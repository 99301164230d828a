package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/ledgerdrive/internal/client/migrations"
	"github.com/dmitrijs2005/ledgerdrive/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ledgerdrive/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/ledgerdrive/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

type Repositories struct {
	DB       *sql.DB
	Metadata metadata.Repository
	Uploads  uploads.Repository
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// OpenDatabase opens (creating if needed) the SQLite database at dsn and
// brings its schema up to date.
func OpenDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn != MemoryDSN {
		if _, err := filex.EnsureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers anyway; one connection also keeps an
	// in-memory database from being split across connections.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}
	return db, nil
}

func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := OpenDatabase(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(db),
		Uploads:  uploads.NewSQLiteRepository(db),
	}, nil
}
