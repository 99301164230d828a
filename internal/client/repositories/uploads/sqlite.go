package uploads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
	"github.com/dmitrijs2005/ledgerdrive/internal/dbx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository implements Repository over the uploads table.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation reports a constraint failure raised by the live-id index.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT
}

func (r *SQLiteRepository) Add(ctx context.Context, u models.LocalUpload) error {
	if !u.Status.Valid() {
		return fmt.Errorf("failed to add upload %s: %w", u.ID, models.ErrUnknownStatus)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO uploads (id, owner, file_name, file_size, storage_id, status, is_public, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Owner, u.FileName, int64(u.FileSize), u.StorageID, string(u.Status), boolToInt(u.IsPublic), u.CreatedAt.UnixNano())
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateUpload, u.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to add upload %s: %w", u.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status models.FileStatus) error {
	if !status.Valid() {
		return fmt.Errorf("failed to update upload %s: %w", id, models.ErrUnknownStatus)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE uploads SET status = ? WHERE id = ? AND status <> 'deleted'`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update upload %s: %w", id, err)
	}
	return dbx.ExpectOneRow(res, fmt.Errorf("%w: %s", ErrUploadNotFound, id))
}

func (r *SQLiteRepository) SetStorageID(ctx context.Context, id, storageID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE uploads SET storage_id = ? WHERE id = ? AND status <> 'deleted'`, storageID, id)
	if err != nil {
		return fmt.Errorf("failed to set storage id of upload %s: %w", id, err)
	}
	return dbx.ExpectOneRow(res, fmt.Errorf("%w: %s", ErrUploadNotFound, id))
}

const selectColumns = `SELECT id, owner, file_name, file_size, storage_id, status, is_public, created_at FROM uploads`

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (models.LocalUpload, error) {
	var (
		u       models.LocalUpload
		size    int64
		status  string
		public  int
		created int64
	)
	if err := s.Scan(&u.ID, &u.Owner, &u.FileName, &size, &u.StorageID, &status, &public, &created); err != nil {
		return u, err
	}

	st, err := models.ParseFileStatus(status)
	if err != nil {
		return u, err
	}
	u.FileSize = uint64(size)
	u.Status = st
	u.IsPublic = public != 0
	u.CreatedAt = time.Unix(0, created).UTC()
	return u, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.LocalUpload, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ? ORDER BY seq DESC LIMIT 1`, id)
	u, err := scanUpload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUploadNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload %s: %w", id, err)
	}
	return &u, nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, owner string) ([]models.LocalUpload, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` WHERE owner = ? ORDER BY seq`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var result []models.LocalUpload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload row: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate upload rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM uploads`)
	if err != nil {
		return fmt.Errorf("failed to clear uploads: %w", err)
	}
	return nil
}

var _ Repository = (*SQLiteRepository)(nil)
