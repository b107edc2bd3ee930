package state

import (
	"slices"

	"lifeos/internal/calendar"
)

// HabitPatch lists the habit fields an update may change. Nil fields are
// left alone. The id, streak and history are never patched.
type HabitPatch struct {
	Name      *string
	Frequency *Frequency
	Target    *int
}

// GoalPatch lists the goal fields an update may change. Nil fields are left
// alone; ClearDeadline removes the deadline.
type GoalPatch struct {
	Title         *string
	LinkedHabits  *[]string
	Deadline      *string
	ClearDeadline bool
}

// ============================================================================
// Habits
// ============================================================================

// CreateHabit adds a habit with an empty history and returns its id.
// An empty frequency means daily and a target below 1 means 1.
func CreateHabit(s *Snapshot, name string, freq Frequency, target int) (*Snapshot, string) {
	if freq == "" {
		freq = FrequencyDaily
	}
	if target < 1 {
		target = 1
	}
	id := NewID()
	next := s.withHabits()
	next.Habits[id] = Habit{
		ID:        id,
		Name:      name,
		Frequency: freq,
		Target:    target,
		History:   map[string]bool{},
	}
	return next, id
}

// UpdateHabit merges patch into the habit with the given id.
func UpdateHabit(s *Snapshot, id string, patch HabitPatch) *Snapshot {
	h, ok := s.Habits[id]
	if !ok {
		return s
	}
	changed := false
	if patch.Name != nil && *patch.Name != h.Name {
		h.Name = *patch.Name
		changed = true
	}
	if patch.Frequency != nil && *patch.Frequency != "" && *patch.Frequency != h.Frequency {
		h.Frequency = *patch.Frequency
		changed = true
	}
	if patch.Target != nil && *patch.Target >= 1 && *patch.Target != h.Target {
		h.Target = *patch.Target
		changed = true
	}
	if !changed {
		return s
	}
	h.ID = id
	next := s.withHabits()
	next.Habits[id] = h
	return next
}

// DeleteHabit removes a habit, unlinks it from every goal and drops it from
// every day's completion map. Goals that lose the habit have their progress
// re-derived.
func DeleteHabit(s *Snapshot, id string) *Snapshot {
	if _, ok := s.Habits[id]; !ok {
		return s
	}
	next := s.withHabits()
	delete(next.Habits, id)

	var unlinked []string
	goalsCopied := false
	for gid, g := range s.Goals {
		if !slices.Contains(g.LinkedHabits, id) {
			continue
		}
		unlinked = append(unlinked, gid)
		if !goalsCopied {
			next.Goals = copyMap(s.Goals)
			goalsCopied = true
		}
		g = g.clone()
		g.LinkedHabits = slices.DeleteFunc(g.LinkedHabits, func(h string) bool { return h == id })
		next.Goals[gid] = g
	}

	daysCopied := false
	for key, d := range s.Days {
		if _, ok := d.Habits[id]; !ok {
			continue
		}
		if !daysCopied {
			next.Days = copyMap(s.Days)
			daysCopied = true
		}
		d = d.clone()
		delete(d.Habits, id)
		next.Days[key] = d
	}

	for _, gid := range unlinked {
		next = SetGoalProgress(next, gid, GoalProgress(next, next.Goals[gid]))
	}
	return next
}

// ToggleHabit flips the habit's completion on key.
func ToggleHabit(s *Snapshot, habitID, key string) *Snapshot {
	h, ok := s.Habits[habitID]
	if !ok {
		return s
	}
	done := h.History[key]
	if d, ok := s.Days[key]; ok {
		done = d.Habits[habitID]
	}
	return setCompletion(s, habitID, key, !done)
}

// SetHabitCompletion records an explicit completion value for key.
func SetHabitCompletion(s *Snapshot, habitID, key string, done bool) *Snapshot {
	h, ok := s.Habits[habitID]
	if !ok {
		return s
	}
	if cur, recorded := h.History[key]; recorded && cur == done {
		if d, ok := s.Days[key]; ok {
			if v, ok := d.Habits[habitID]; ok && v == done {
				return s
			}
		}
	}
	return setCompletion(s, habitID, key, done)
}

// setCompletion is the only writer of habit completion. It updates the day
// map and the habit history together and refreshes the cached streak and the
// progress of linked goals.
func setCompletion(s *Snapshot, habitID, key string, done bool) *Snapshot {
	next := updateDay(s, key, func(d *Day) {
		d.Habits[habitID] = done
	})

	h := s.Habits[habitID].clone()
	h.History[key] = done
	h.Streak = CurrentStreak(h.History)

	next.Habits = copyMap(s.Habits)
	next.Habits[habitID] = h
	return refreshGoalsLinking(next, habitID)
}

// Streak counts consecutive completed days walking back from anchor.
// Missing dates count as not completed.
func Streak(history map[string]bool, anchor string) int {
	streak := 0
	key := anchor
	for history[key] {
		streak++
		prev := calendar.PreviousDate(key)
		if prev == key {
			break // malformed key
		}
		key = prev
	}
	return streak
}

// CurrentStreak is the streak anchored at the most recent recorded date,
// done or not. Once that entry is false the streak stays 0 whatever happens
// to earlier dates, until a later date is recorded.
func CurrentStreak(history map[string]bool) int {
	latest := ""
	for key := range history {
		if key > latest {
			latest = key
		}
	}
	if latest == "" {
		return 0
	}
	return Streak(history, latest)
}

// ============================================================================
// Goals
// ============================================================================

// CreateGoal adds a goal and returns its id. Linked ids that do not name an
// existing habit are dropped, as are duplicates.
func CreateGoal(s *Snapshot, title string, linked []string, deadline *string) (*Snapshot, string) {
	id := NewID()
	g := Goal{
		ID:           id,
		Title:        title,
		LinkedHabits: existingHabits(s, linked),
	}
	if deadline != nil {
		d := *deadline
		g.Deadline = &d
	}
	g.Progress = GoalProgress(s, g)
	next := s.withGoals()
	next.Goals[id] = g
	return next, id
}

// UpdateGoal merges patch into the goal with the given id.
func UpdateGoal(s *Snapshot, id string, patch GoalPatch) *Snapshot {
	g, ok := s.Goals[id]
	if !ok {
		return s
	}
	g = g.clone()
	if patch.Title != nil {
		g.Title = *patch.Title
	}
	if patch.LinkedHabits != nil {
		g.LinkedHabits = existingHabits(s, *patch.LinkedHabits)
	}
	switch {
	case patch.ClearDeadline:
		g.Deadline = nil
	case patch.Deadline != nil:
		d := *patch.Deadline
		g.Deadline = &d
	}
	g.ID = id
	g.Progress = GoalProgress(s, g)
	next := s.withGoals()
	next.Goals[id] = g
	return next
}

// DeleteGoal removes a goal.
func DeleteGoal(s *Snapshot, id string) *Snapshot {
	if _, ok := s.Goals[id]; !ok {
		return s
	}
	next := s.withGoals()
	delete(next.Goals, id)
	return next
}

// SetGoalProgress stores a derived progress value, clamped to 0..100.
func SetGoalProgress(s *Snapshot, id string, progress int) *Snapshot {
	g, ok := s.Goals[id]
	if !ok {
		return s
	}
	progress = min(max(progress, 0), 100)
	if g.Progress == progress {
		return s
	}
	g = g.clone()
	g.Progress = progress
	next := s.withGoals()
	next.Goals[id] = g
	return next
}

// GoalProgress returns the share of recorded days on which the goal's linked
// habits were completed, as a rounded percentage. History is not windowed and
// a goal with nothing recorded is at 0.
func GoalProgress(s *Snapshot, g Goal) int {
	completed, total := 0, 0
	for _, hid := range g.LinkedHabits {
		for _, done := range s.Habits[hid].History {
			total++
			if done {
				completed++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return (200*completed + total) / (2 * total)
}

// RefreshGoals re-derives the stored progress of every goal, for snapshots
// whose cached values may be stale, such as a freshly loaded document. It
// returns s when no goal changed.
func RefreshGoals(s *Snapshot) *Snapshot {
	next := s
	for _, id := range s.GoalIDs() {
		next = SetGoalProgress(next, id, GoalProgress(s, s.Goals[id]))
	}
	return next
}

// refreshGoalsLinking re-derives the progress of the goals linked to habitID.
// Every change to a habit's history goes through here, so stored progress
// never lags the history it is computed from.
func refreshGoalsLinking(s *Snapshot, habitID string) *Snapshot {
	next := s
	for _, id := range s.GoalIDs() {
		g := s.Goals[id]
		if slices.Contains(g.LinkedHabits, habitID) {
			next = SetGoalProgress(next, id, GoalProgress(s, g))
		}
	}
	return next
}

func existingHabits(s *Snapshot, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.Habits[id]; !ok || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
