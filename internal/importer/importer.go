// Package importer brings tasks over from other to-do apps. Each imported
// task lands on the day it was due, or on a fallback day when it had no due
// date, so imported history shows up in the day views and metrics.
package importer

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"lifeos/internal/calendar"
	"lifeos/internal/state"
)

// Task is one task read from an external export.
type Task struct {
	Text    string
	Project string
	Due     string // YYYY-MM-DD, empty when the source had none
	Done    bool
}

// Result counts what an import did.
type Result struct {
	Imported int      // tasks added
	Skipped  int      // tasks already present on their day
	Errors   []string // tasks that could not be added
	Days     []string // days that received tasks, oldest first
}

// Importer reads tasks from one export format.
type Importer interface {
	// Parse reads every importable task from r.
	Parse(r io.Reader) ([]Task, error)

	// Name returns the format name (e.g. "todoist").
	Name() string
}

// Get returns the importer for format, or nil when it is unknown.
func Get(format string) Importer {
	switch strings.ToLower(format) {
	case "todoist":
		return &TodoistImporter{}
	case "taskwarrior":
		return &TaskwarriorImporter{}
	default:
		return nil
	}
}

// SupportedFormats returns the list of supported import formats.
func SupportedFormats() []string {
	return []string{"todoist", "taskwarrior"}
}

// Apply adds tasks to s. Tasks without a due date go to fallback. A task
// whose text already exists on its day is skipped, so running the same
// import twice adds nothing the second time. It returns s unchanged when
// nothing was added.
func Apply(s *state.Snapshot, tasks []Task, fallback string) (*state.Snapshot, Result) {
	var res Result
	next := s
	for _, t := range tasks {
		key := t.Due
		if key == "" {
			key = fallback
		}
		if !calendar.Valid(key) {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: invalid date %q", t.Text, key))
			continue
		}
		text, err := state.CleanName(t.Text, state.MaxTaskTextLen)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", t.Text, err))
			continue
		}

		d, _ := next.Day(key)
		if slices.ContainsFunc(d.Tasks, func(existing state.Task) bool { return existing.Text == text }) {
			res.Skipped++
			continue
		}

		next = state.AddTask(next, key, state.Task{ID: state.NewID(), Text: text, Completed: t.Done})
		res.Imported++
		if !slices.Contains(res.Days, key) {
			res.Days = append(res.Days, key)
		}
	}
	slices.Sort(res.Days)
	return next, res
}
