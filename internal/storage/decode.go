package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"lifeos/internal/state"
)

// document is the top level of a stored snapshot with every section left
// raw so each one can be decoded, and fail, on its own.
type document struct {
	User       json.RawMessage `json:"user"`
	Days       json.RawMessage `json:"days"`
	Habits     json.RawMessage `json:"habits"`
	Goals      json.RawMessage `json:"goals"`
	FocusTimer json.RawMessage `json:"focusTimer"`
}

var errNotObject = errors.New("document is not a JSON object")

// Decode parses a stored snapshot and merges it onto the defaults.
//
// Every top-level section is decoded independently; an absent section takes
// its default. Within days, habits and goals each entry is decoded on its
// own, so one malformed entry never costs the rest of the section. Anything
// that had to be dropped or reset is listed in the returned warnings. An
// error is returned only when data is not a JSON object at all.
func Decode(data []byte) (*state.Snapshot, []string, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		if err == nil {
			err = errNotObject
		}
		return nil, nil, err
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}

	snap := state.Default()
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if present(doc.User) {
		// Unmarshal onto the defaults so missing fields (including nested
		// settings) keep their default values.
		u := snap.User
		if err := json.Unmarshal(doc.User, &u); err != nil {
			warn("user reset to defaults: %v", err)
		} else {
			snap.User = u
		}
	}

	if present(doc.FocusTimer) {
		ft := snap.FocusTimer
		if err := json.Unmarshal(doc.FocusTimer, &ft); err != nil {
			warn("focusTimer reset to defaults: %v", err)
		} else {
			snap.FocusTimer = normalizeTimer(ft)
		}
	}

	if present(doc.Days) {
		days, w := decodeEntries(doc.Days, "days", func(key string, raw json.RawMessage) (state.Day, error) {
			var d state.Day
			if err := json.Unmarshal(raw, &d); err != nil {
				return d, err
			}
			return normalizeDay(d), nil
		})
		warnings = append(warnings, w...)
		if days != nil {
			snap.Days = days
		}
	}

	if present(doc.Habits) {
		habits, w := decodeEntries(doc.Habits, "habits", func(key string, raw json.RawMessage) (state.Habit, error) {
			var h state.Habit
			if err := json.Unmarshal(raw, &h); err != nil {
				return h, err
			}
			return normalizeHabit(key, h), nil
		})
		warnings = append(warnings, w...)
		if habits != nil {
			snap.Habits = habits
		}
	}

	if present(doc.Goals) {
		goals, w := decodeEntries(doc.Goals, "goals", func(key string, raw json.RawMessage) (state.Goal, error) {
			var g state.Goal
			if err := json.Unmarshal(raw, &g); err != nil {
				return g, err
			}
			if g.ID == "" {
				g.ID = key
			}
			if g.LinkedHabits == nil {
				g.LinkedHabits = []string{}
			}
			return g, nil
		})
		warnings = append(warnings, w...)
		if goals != nil {
			snap.Goals = goals
		}
	}

	return snap, warnings, nil
}

// present reports whether a section was given a non-null value.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// decodeEntries decodes a map section entry by entry. A section that is not
// an object yields nil and a warning.
func decodeEntries[V any](raw json.RawMessage, section string, decode func(string, json.RawMessage) (V, error)) (map[string]V, []string) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, []string{fmt.Sprintf("%s reset to defaults: %v", section, err)}
	}

	out := make(map[string]V, len(entries))
	var warnings []string
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := decode(k, entries[k])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s[%s] dropped: %v", section, k, err))
			continue
		}
		out[k] = v
	}
	return out, warnings
}

func normalizeDay(d state.Day) state.Day {
	if d.Habits == nil {
		d.Habits = map[string]bool{}
	}
	if d.Tasks == nil {
		d.Tasks = []state.Task{}
	}
	if d.Alarms == nil {
		d.Alarms = []state.Alarm{}
	}
	return d
}

func normalizeHabit(key string, h state.Habit) state.Habit {
	if h.ID == "" {
		h.ID = key
	}
	if h.History == nil {
		h.History = map[string]bool{}
	}
	if h.Frequency == "" {
		h.Frequency = state.FrequencyDaily
	}
	if h.Target < 1 {
		h.Target = 1
	}
	return h
}

// normalizeTimer restores the lastStartedAt/isRunning pairing.
func normalizeTimer(t state.FocusTimer) state.FocusTimer {
	if t.Duration < 1 {
		t.Duration = state.DefaultTimerMinutes
	}
	if t.RemainingSeconds < 0 {
		t.RemainingSeconds = 0
	}
	if !t.IsRunning {
		t.LastStartedAt = nil
	} else if t.LastStartedAt == nil {
		t.IsRunning = false
	}
	return t
}
