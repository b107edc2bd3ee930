package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lifeos/internal/fsutil"
)

// FileBackend keeps the snapshot in a single JSON file. Writes go through a
// temp file and rename, and the previous contents are kept in path+".bak".
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend for the file at path, creating its
// directory if needed.
func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileBackend{path: path}, nil
}

// Path returns the state file path.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Location() string {
	return filepath.Base(b.path)
}

func (b *FileBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (b *FileBackend) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Keep a best-effort backup before overwriting.
	fsutil.BestEffortBackup(b.path, dataFilePerm)
	return fsutil.WriteFileAtomic(b.path, data, dataFilePerm)
}

func (b *FileBackend) ReadBackup(ctx context.Context) ([]byte, error) {
	return os.ReadFile(b.path + ".bak")
}

// Quarantine renames the state file to path.corrupt.<timestamp>.
func (b *FileBackend) Quarantine(ctx context.Context, now time.Time) (string, error) {
	return fsutil.Quarantine(b.path, now)
}

func (b *FileBackend) Close() error {
	return nil
}
