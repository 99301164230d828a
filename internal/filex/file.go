// Package filex contains filesystem helpers used by the client: locating the
// local data directory, reading upload payloads fully into memory and
// writing downloads.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	ErrNotRegular = errors.New("not a regular file")
	ErrTooLarge   = errors.New("file exceeds size limit")
	ErrExists     = errors.New("file already exists")
)

// EnsureParentDir creates the directory that will hold path (e.g. the local
// SQLite database) and returns the cleaned absolute path.
func EnsureParentDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return abs, nil
}

// ReadUpload reads the whole file at path. A maxSize of 0 disables the limit.
// The base name is returned as the file name recorded on the ledger.
func ReadUpload(path string, maxSize int64) (name string, data []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return "", nil, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	if maxSize > 0 && fi.Size() > maxSize {
		return "", nil, fmt.Errorf("%s (%d bytes): %w", path, fi.Size(), ErrTooLarge)
	}

	var r io.Reader = f
	if maxSize > 0 {
		// guards against files growing between Stat and Read
		r = io.LimitReader(f, maxSize+1)
	}
	data, err = io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", nil, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}

	return filepath.Base(path), data, nil
}

// WriteDownload writes data to a new file at path, creating missing parent
// directories. An existing file is never overwritten.
func WriteDownload(path string, data []byte) error {
	abs, err := EnsureParentDir(path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(abs)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
