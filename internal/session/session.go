// Package session holds the current snapshot for a running program and
// implements the read, mutate, persist cycle on top of storage. Every change
// goes through Apply so the undo history and the persisted document stay in
// step with what the user sees.
package session

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"lifeos/internal/state"
	"lifeos/internal/storage"

	"github.com/mattn/go-runewidth"
)

// maxHistorySize limits the undo stack to prevent unbounded memory growth.
const maxHistorySize = 50

// descriptionWidth bounds undo descriptions shown in status lines.
const descriptionWidth = 40

// ErrNothingToUndo and ErrNothingToRedo are returned when the respective
// stack is empty.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Mutation turns one snapshot into the next. Returning the argument
// unchanged marks the call as a no-op.
type Mutation func(*state.Snapshot) *state.Snapshot

// entry is one step of history: the snapshot before a change and a short
// description of the change.
type entry struct {
	description string
	before      *state.Snapshot
}

// Session serializes mutations of a single snapshot.
type Session struct {
	mu      sync.Mutex
	store   *storage.Storage
	logger  *log.Logger
	snap    *state.Snapshot
	version uint64

	undoStack []entry
	redoStack []entry
}

// Open loads the snapshot from store and re-derives goal progress, which an
// older document may carry stale. Recovery notices from the load are logged
// and do not fail the call.
func Open(ctx context.Context, store *storage.Storage, logger *log.Logger) (*Session, error) {
	if store == nil {
		return nil, errors.New("session: nil storage")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	snap, err := store.Load(ctx)
	if err != nil {
		logger.Print(err)
	}
	return &Session{
		store:     store,
		logger:    logger,
		snap:      state.RefreshGoals(snap),
		undoStack: make([]entry, 0, maxHistorySize),
		redoStack: make([]entry, 0, maxHistorySize),
	}, nil
}

// Snapshot returns the current snapshot. It must not be modified.
func (s *Session) Snapshot() *state.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Version increases by one on every applied change, undo, redo or replace.
func (s *Session) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Location describes where the snapshot is persisted.
func (s *Session) Location() string {
	return s.store.Location()
}

// Apply runs fn against the current snapshot and persists the result. A
// no-op is neither saved nor recorded. When saving fails the new snapshot
// is still kept in memory and the error is returned so the caller can warn.
func (s *Session) Apply(ctx context.Context, description string, fn Mutation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.snap)
	if next == nil || next == s.snap {
		return false, nil
	}

	s.pushUndo(entry{description: truncate(description), before: s.snap})
	s.redoStack = s.redoStack[:0]
	return true, s.commit(ctx, next)
}

// Update is Apply for mutators that also produce a value, such as the id
// of a created habit.
func Update[T any](ctx context.Context, s *Session, description string, fn func(*state.Snapshot) (*state.Snapshot, T)) (T, error) {
	var out T
	_, err := s.Apply(ctx, description, func(snap *state.Snapshot) *state.Snapshot {
		next, v := fn(snap)
		out = v
		return next
	})
	return out, err
}

// Replace swaps in a whole snapshot, as an import does, with goal progress
// re-derived. It can be undone.
func (s *Session) Replace(ctx context.Context, description string, snap *state.Snapshot) error {
	if snap == nil {
		return errors.New("session: nil snapshot")
	}
	_, err := s.Apply(ctx, description, func(*state.Snapshot) *state.Snapshot { return state.RefreshGoals(snap) })
	return err
}

// Reload discards history and re-reads the persisted snapshot, for use
// after the document was changed underneath the session (restore). Like
// storage.Load, a non-nil error is a recovery notice; the session is usable.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Load(ctx)
	s.snap = state.RefreshGoals(snap)
	s.version++
	s.undoStack = s.undoStack[:0]
	s.redoStack = s.redoStack[:0]
	if err != nil {
		s.logger.Print(err)
	}
	return err
}

// CanUndo returns true if there are changes to undo.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack) > 0
}

// CanRedo returns true if there are changes to redo.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack) > 0
}

// Undo restores the snapshot from before the most recent change and
// returns that change's description.
func (s *Session) Undo(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undoStack) == 0 {
		return "", ErrNothingToUndo
	}
	e := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.redoStack = append(s.redoStack, entry{description: e.description, before: s.snap})
	return e.description, s.commit(ctx, e.before)
}

// Redo reapplies the most recently undone change.
func (s *Session) Redo(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redoStack) == 0 {
		return "", ErrNothingToRedo
	}
	e := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.pushUndo(entry{description: e.description, before: s.snap})
	return e.description, s.commit(ctx, e.before)
}

// Tick completes an expired focus timer. It reports whether the timer
// finished on this call. Ticks are not recorded in the undo history.
func (s *Session) Tick(ctx context.Context, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, done := state.CompleteTimer(s.snap, now)
	if !done {
		return false, nil
	}
	return true, s.commit(ctx, next)
}

// Close releases the underlying storage.
func (s *Session) Close() error {
	return s.store.Close()
}

// commit must be called with mu held.
func (s *Session) commit(ctx context.Context, next *state.Snapshot) error {
	s.snap = next
	s.version++
	if err := s.store.Save(ctx, next); err != nil {
		s.logger.Printf("save failed: %v", err)
		return err
	}
	return nil
}

func (s *Session) pushUndo(e entry) {
	if len(s.undoStack) >= maxHistorySize {
		s.undoStack = s.undoStack[1:]
	}
	s.undoStack = append(s.undoStack, e)
}

func truncate(text string) string {
	return runewidth.Truncate(text, descriptionWidth, "..")
}
