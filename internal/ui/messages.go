// Package ui provides terminal user interface components for lifeos.
// This file defines message types for async operations using the Bubble Tea
// command pattern. Every session mutation runs in a command and reports
// back with one of these messages to keep the event loop non-blocking.
package ui

import (
	"time"

	"lifeos/internal/state"
)

// tickMsg is sent every second for the clock and the focus timer.
type tickMsg time.Time

// mutationMsg is sent when a session mutation completes. before and after
// are the snapshots around it; when the mutation was a no-op they are the
// same pointer. A non-nil err with changed set means the change is kept in
// memory but was not saved.
type mutationMsg struct {
	desc    string
	before  *state.Snapshot
	after   *state.Snapshot
	changed bool
	err     error
}

// undoResultMsg is sent when an undo operation completes.
type undoResultMsg struct {
	desc string
	err  error
}

// redoResultMsg is sent when a redo operation completes.
type redoResultMsg struct {
	desc string
	err  error
}

// timerCompletedMsg is sent when a tick found the focus timer expired.
type timerCompletedMsg struct {
	snap *state.Snapshot
	err  error
}

// notifyResultMsg reports a failed desktop notification.
type notifyResultMsg struct {
	err error
}
