// Package state holds the immutable snapshot model and the pure mutators
// that derive one snapshot from another.
//
// A *Snapshot is never modified after it is returned. Every mutator copies
// the parts it changes and returns a new pointer; a mutator that changes
// nothing returns its input pointer so callers can skip persistence with a
// plain pointer comparison.
package state

import (
	"slices"
	"sort"

	"github.com/google/uuid"
)

// Theme is the UI color scheme preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// WeekStart is the first day of the user's week.
type WeekStart string

const (
	WeekStartMonday WeekStart = "monday"
	WeekStartSunday WeekStart = "sunday"
)

// Frequency is how often a habit is meant to be done.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

// Repeat is an alarm recurrence.
type Repeat string

const (
	RepeatDaily    Repeat = "daily"
	RepeatWeekdays Repeat = "weekdays"
	RepeatWeekends Repeat = "weekends"
	RepeatNever    Repeat = "never"
)

// Settings are the user's preferences.
type Settings struct {
	Theme         Theme     `json:"theme"`
	WeekStart     WeekStart `json:"weekStart"`
	Notifications bool      `json:"notifications"`
}

// User identifies the owner of the snapshot.
type User struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Settings Settings `json:"settings"`
}

// Task is a to-do item scoped to a single day.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Alarm is a reminder attached to a day.
type Alarm struct {
	ID     string `json:"id"`
	Time   string `json:"time"` // HH:MM
	Label  string `json:"label"`
	Repeat Repeat `json:"repeat"`
}

// Day is everything recorded for one date-key.
type Day struct {
	Journal string             `json:"journal"`
	Mood    *int               `json:"mood"`
	Rating  *int               `json:"rating"`
	Habits  map[string]bool    `json:"habits"`
	Tasks   []Task             `json:"tasks"`
	Alarms  []Alarm            `json:"alarms"`
	Metrics map[string]float64 `json:"metrics"` // reserved cache
}

// Habit is a recurring activity with a completion history.
type Habit struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Frequency Frequency       `json:"frequency"`
	Target    int             `json:"target"`
	Streak    int             `json:"streak"`
	History   map[string]bool `json:"history"`
}

// Goal tracks progress through a set of linked habits.
type Goal struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	LinkedHabits []string `json:"linkedHabits"`
	Progress     int      `json:"progress"`
	Deadline     *string  `json:"deadline"`
}

// FocusTimer is a checkpoint/resume countdown.
//
// RemainingSeconds is the value at the last start or pause, not a live
// value. LastStartedAt is Unix milliseconds and is set iff IsRunning.
type FocusTimer struct {
	Duration         int    `json:"duration"` // minutes
	RemainingSeconds int    `json:"remainingSeconds"`
	LastStartedAt    *int64 `json:"lastStartedAt"`
	IsRunning        bool   `json:"isRunning"`
}

// Snapshot is the complete application state at one point in time.
type Snapshot struct {
	User       User             `json:"user"`
	Days       map[string]Day   `json:"days"`
	Habits     map[string]Habit `json:"habits"`
	Goals      map[string]Goal  `json:"goals"`
	FocusTimer FocusTimer       `json:"focusTimer"`
}

const (
	// DefaultTimerMinutes is the focus timer length for a new snapshot.
	DefaultTimerMinutes = 25

	// SeedMeditateID and SeedReadID are the ids of the seed habits.
	SeedMeditateID = "h1"
	SeedReadID     = "h2"
)

// NewID returns a fresh opaque identifier. Tests may replace it.
var NewID = func() string {
	return uuid.New().String()
}

// DefaultUser returns the user section of a fresh snapshot.
func DefaultUser() User {
	return User{
		ID:   NewID(),
		Name: "User",
		Settings: Settings{
			Theme:         ThemeDark,
			WeekStart:     WeekStartMonday,
			Notifications: true,
		},
	}
}

// DefaultHabits returns the seed habits of a fresh snapshot.
func DefaultHabits() map[string]Habit {
	return map[string]Habit{
		SeedMeditateID: {ID: SeedMeditateID, Name: "Meditate", Frequency: FrequencyDaily, Target: 1, History: map[string]bool{}},
		SeedReadID:     {ID: SeedReadID, Name: "Read", Frequency: FrequencyDaily, Target: 1, History: map[string]bool{}},
	}
}

// DefaultFocusTimer returns a stopped timer at its default length.
func DefaultFocusTimer() FocusTimer {
	return FocusTimer{
		Duration:         DefaultTimerMinutes,
		RemainingSeconds: DefaultTimerMinutes * 60,
	}
}

// Default returns a fresh snapshot.
func Default() *Snapshot {
	return &Snapshot{
		User:       DefaultUser(),
		Days:       map[string]Day{},
		Habits:     DefaultHabits(),
		Goals:      map[string]Goal{},
		FocusTimer: DefaultFocusTimer(),
	}
}

// Day returns the day recorded for key.
func (s *Snapshot) Day(key string) (Day, bool) {
	d, ok := s.Days[key]
	return d, ok
}

// DayKeys returns all recorded date-keys, oldest first.
func (s *Snapshot) DayKeys() []string {
	return sortedKeys(s.Days)
}

// HabitIDs returns habit ids in a stable order.
func (s *Snapshot) HabitIDs() []string {
	return sortedKeys(s.Habits)
}

// GoalIDs returns goal ids in a stable order.
func (s *Snapshot) GoalIDs() []string {
	return sortedKeys(s.Goals)
}

// SortedHabits returns habits ordered by name, then id.
func (s *Snapshot) SortedHabits() []Habit {
	out := make([]Habit, 0, len(s.Habits))
	for _, h := range s.Habits {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CompletedHabits counts habits marked done on the day.
func (d Day) CompletedHabits() int {
	n := 0
	for _, done := range d.Habits {
		if done {
			n++
		}
	}
	return n
}

// CompletedTasks counts completed tasks on the day.
func (d Day) CompletedTasks() int {
	n := 0
	for _, t := range d.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// ============================================================================
// Copy-on-write helpers
// ============================================================================

// shallow copies the top level. Section maps are shared until a caller
// replaces the one it is about to change.
func (s *Snapshot) shallow() *Snapshot {
	next := *s
	return &next
}

func (s *Snapshot) withDays() *Snapshot {
	next := s.shallow()
	next.Days = copyMap(s.Days)
	return next
}

func (s *Snapshot) withHabits() *Snapshot {
	next := s.shallow()
	next.Habits = copyMap(s.Habits)
	return next
}

func (s *Snapshot) withGoals() *Snapshot {
	next := s.shallow()
	next.Goals = copyMap(s.Goals)
	return next
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d Day) clone() Day {
	d.Habits = copyMap(d.Habits)
	d.Tasks = slices.Clone(d.Tasks)
	d.Alarms = slices.Clone(d.Alarms)
	if d.Metrics != nil {
		d.Metrics = copyMap(d.Metrics)
	}
	return d
}

func (h Habit) clone() Habit {
	h.History = copyMap(h.History)
	return h
}

func (g Goal) clone() Goal {
	g.LinkedHabits = slices.Clone(g.LinkedHabits)
	if g.Deadline != nil {
		d := *g.Deadline
		g.Deadline = &d
	}
	return g
}

func emptyDay() Day {
	return Day{
		Habits: map[string]bool{},
		Tasks:  []Task{},
		Alarms: []Alarm{},
	}
}

// Clone returns a deep copy of s. Mutators never need it; it exists for
// callers that hand a snapshot to code they do not control.
func (s *Snapshot) Clone() *Snapshot {
	next := s.shallow()
	next.Days = make(map[string]Day, len(s.Days))
	for k, d := range s.Days {
		next.Days[k] = d.clone()
	}
	next.Habits = make(map[string]Habit, len(s.Habits))
	for k, h := range s.Habits {
		next.Habits[k] = h.clone()
	}
	next.Goals = make(map[string]Goal, len(s.Goals))
	for k, g := range s.Goals {
		next.Goals[k] = g.clone()
	}
	if s.FocusTimer.LastStartedAt != nil {
		v := *s.FocusTimer.LastStartedAt
		next.FocusTimer.LastStartedAt = &v
	}
	return next
}

// EnsureDay returns a snapshot that has a day for key. When the day already
// exists the input pointer is returned unchanged.
func EnsureDay(s *Snapshot, key string) *Snapshot {
	if _, ok := s.Days[key]; ok {
		return s
	}
	next := s.withDays()
	next.Days[key] = emptyDay()
	return next
}

// updateDay applies fn to a private copy of the day at key, creating the day
// if needed.
func updateDay(s *Snapshot, key string, fn func(d *Day)) *Snapshot {
	d, ok := s.Days[key]
	if !ok {
		d = emptyDay()
	} else {
		d = d.clone()
	}
	fn(&d)
	next := s.withDays()
	next.Days[key] = d
	return next
}
