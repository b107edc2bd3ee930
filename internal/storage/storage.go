// Package storage persists snapshots. A Storage wraps a Backend that holds
// one JSON document under a well-known key and adds the load-time recovery
// and section-wise default merge on top of it.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lifeos/internal/state"
)

// StateKey is the well-known key the snapshot is stored under.
const StateKey = "lifeos_state"

// Backend kinds accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

const (
	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600
)

var (
	// ErrNotFound is returned by a Backend when nothing has been stored yet.
	ErrNotFound = errors.New("state not found")

	// ErrMalformedImport is returned when an import document cannot be parsed.
	ErrMalformedImport = errors.New("malformed import")
)

// Backend stores the serialized snapshot.
type Backend interface {
	// Read returns the stored document or ErrNotFound.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the stored document. A failed write leaves the previous
	// document in place.
	Write(ctx context.Context, data []byte) error
	// ReadBackup returns the document as it was before the last write.
	ReadBackup(ctx context.Context) ([]byte, error)
	// Quarantine moves the current document aside and describes where it went.
	Quarantine(ctx context.Context, now time.Time) (string, error)
	// Location describes where the document lives, for messages.
	Location() string
	Close() error
}

// Storage loads and saves snapshots through a Backend.
type Storage struct {
	backend Backend
	now     func() time.Time // injectable clock for deterministic tests
}

// New wraps a backend.
func New(b Backend) *Storage {
	return &Storage{backend: b, now: time.Now}
}

// Open creates the data directory and opens the named backend in it.
func Open(kind, dataDir string) (*Storage, error) {
	if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	switch strings.ToLower(kind) {
	case "", BackendFile:
		b, err := NewFileBackend(filepath.Join(dataDir, StateKey+".json"))
		if err != nil {
			return nil, err
		}
		return New(b), nil
	case BackendSQLite:
		b, err := NewSQLiteBackend(filepath.Join(dataDir, "lifeos.db"))
		if err != nil {
			return nil, err
		}
		return New(b), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q: must be %s or %s", kind, BackendFile, BackendSQLite)
	}
}

// SetNowFunc overrides the clock. Passing nil resets it to time.Now.
func (s *Storage) SetNowFunc(now func() time.Time) {
	if now == nil {
		s.now = time.Now
		return
	}
	s.now = now
}

// Location describes where the snapshot is stored.
func (s *Storage) Location() string {
	return s.backend.Location()
}

// Close releases the backend.
func (s *Storage) Close() error {
	return s.backend.Close()
}

// ReadRaw returns the stored document as-is.
func (s *Storage) ReadRaw(ctx context.Context) ([]byte, error) {
	return s.backend.Read(ctx)
}

// Load returns the persisted snapshot. It always returns a usable snapshot;
// a non-nil error describes anything that was recovered or reset along the
// way and is meant to be shown as a warning.
func (s *Storage) Load(ctx context.Context) (*state.Snapshot, error) {
	data, err := s.backend.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			snap := state.Default()
			if err := s.Save(ctx, snap); err != nil {
				return snap, err
			}
			return snap, nil
		}
		return state.Default(), fmt.Errorf("read %s: %w (using defaults)", s.backend.Location(), err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return s.recover(ctx, fmt.Errorf("%s is empty", s.backend.Location()))
	}

	snap, warnings, err := Decode(data)
	if err != nil {
		return s.recover(ctx, fmt.Errorf("parse %s: %w", s.backend.Location(), err))
	}
	if len(warnings) > 0 {
		return snap, fmt.Errorf("partially recovered %s: %s", s.backend.Location(), strings.Join(warnings, "; "))
	}
	return snap, nil
}

func (s *Storage) recover(ctx context.Context, cause error) (*state.Snapshot, error) {
	// Try the backup first.
	if bak, err := s.backend.ReadBackup(ctx); err == nil && len(bytes.TrimSpace(bak)) > 0 {
		if snap, _, err := Decode(bak); err == nil {
			_, _ = s.backend.Quarantine(ctx, s.now())
			_ = s.Save(ctx, snap)
			return snap, fmt.Errorf("%s (recovered from backup)", cause.Error())
		}
	}

	// No usable backup: preserve the broken document (best effort) and reset.
	where, _ := s.backend.Quarantine(ctx, s.now())
	snap := state.Default()
	_ = s.Save(ctx, snap)
	if where == "" {
		return snap, fmt.Errorf("%s (reset to defaults)", cause.Error())
	}
	return snap, fmt.Errorf("%s (reset to defaults; original moved to %s)", cause.Error(), where)
}

// Save serializes the full snapshot. On failure the previously stored
// document is left in place and the caller may retry.
func (s *Storage) Save(ctx context.Context, snap *state.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := s.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("write %s: %w", s.backend.Location(), err)
	}
	return nil
}

// Encode serializes a snapshot the way it is stored and exported.
func Encode(snap *state.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize snapshot: %w", err)
	}
	return data, nil
}

// ============================================================================
// Export / Import
// ============================================================================

// ExportFilename is the default name of an export document.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("lifeos-backup-%s.json", now.Format("2006-01-02"))
}

// ParseImport parses an export document. Missing sections are filled with
// defaults. A document that is not a JSON object, or that has an entry which
// cannot be decoded, is rejected with ErrMalformedImport so that an import is
// never applied partially.
func ParseImport(data []byte) (*state.Snapshot, error) {
	snap, warnings, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if len(warnings) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMalformedImport, strings.Join(warnings, "; "))
	}
	return snap, nil
}
