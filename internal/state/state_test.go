package state

import (
	"fmt"
	"reflect"
	"testing"

	"lifeos/internal/calendar"
)

// useSequentialIDs makes NewID deterministic for the duration of a test.
func useSequentialIDs(t *testing.T) {
	t.Helper()
	orig := NewID
	n := 0
	NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	t.Cleanup(func() { NewID = orig })
}

// assertSynced checks the day map and the habit history agree on every key.
func assertSynced(t *testing.T, s *Snapshot) {
	t.Helper()
	for hid, h := range s.Habits {
		for key, done := range h.History {
			d, ok := s.Days[key]
			if !ok {
				t.Fatalf("habit %s history has %s but no day exists", hid, key)
			}
			if d.Habits[hid] != done {
				t.Fatalf("habit %s on %s: history=%v day=%v", hid, key, done, d.Habits[hid])
			}
		}
	}
	for key, d := range s.Days {
		for hid, done := range d.Habits {
			h, ok := s.Habits[hid]
			if !ok {
				t.Fatalf("day %s references unknown habit %s", key, hid)
			}
			if h.History[key] != done {
				t.Fatalf("day %s habit %s: day=%v history=%v", key, hid, done, h.History[key])
			}
		}
	}
}

// =============================================================================
// Store
// =============================================================================

func TestDefault(t *testing.T) {
	s := Default()

	if s.User.ID == "" {
		t.Error("default user id is empty")
	}
	if s.User.Name != "User" {
		t.Errorf("user name = %q, want User", s.User.Name)
	}
	if s.User.Settings != (Settings{Theme: ThemeDark, WeekStart: WeekStartMonday, Notifications: true}) {
		t.Errorf("settings = %+v", s.User.Settings)
	}
	if len(s.Days) != 0 || len(s.Goals) != 0 {
		t.Errorf("days=%d goals=%d, want empty", len(s.Days), len(s.Goals))
	}
	if s.Habits[SeedMeditateID].Name != "Meditate" || s.Habits[SeedReadID].Name != "Read" {
		t.Errorf("seed habits = %+v", s.Habits)
	}
	want := FocusTimer{Duration: 25, RemainingSeconds: 1500}
	if !reflect.DeepEqual(s.FocusTimer, want) {
		t.Errorf("focus timer = %+v, want %+v", s.FocusTimer, want)
	}

	if other := Default(); other.User.ID == s.User.ID {
		t.Error("two defaults share a user id")
	}
}

func TestEnsureDay(t *testing.T) {
	s := Default()

	s1 := EnsureDay(s, "2025-01-01")
	if s1 == s {
		t.Fatal("EnsureDay on missing day returned the same snapshot")
	}
	if _, ok := s.Days["2025-01-01"]; ok {
		t.Fatal("EnsureDay modified its input")
	}
	d, ok := s1.Days["2025-01-01"]
	if !ok {
		t.Fatal("day not created")
	}
	if d.Journal != "" || d.Mood != nil || d.Rating != nil || len(d.Habits) != 0 || len(d.Tasks) != 0 {
		t.Errorf("new day not zero-valued: %+v", d)
	}

	if s2 := EnsureDay(s1, "2025-01-01"); s2 != s1 {
		t.Error("EnsureDay on existing day returned a new snapshot")
	}
}

// =============================================================================
// Habits
// =============================================================================

func TestToggleHabitScenarioStreak(t *testing.T) {
	s := Default()
	s = ToggleHabit(s, "h1", "2025-01-01")
	s = ToggleHabit(s, "h1", "2025-01-02")

	if got := s.Habits["h1"].Streak; got != 2 {
		t.Errorf("streak = %d, want 2", got)
	}
	assertSynced(t, s)
}

func TestToggleHabitKeepsRepresentationsInSync(t *testing.T) {
	s := Default()
	keys := []string{"2025-01-01", "2025-01-03", "2025-01-01", "2025-01-02", "2025-01-03"}
	for _, key := range keys {
		s = ToggleHabit(s, "h1", key)
		s = ToggleHabit(s, "h2", key)
		if s.Days[key].Habits["h1"] != s.Habits["h1"].History[key] {
			t.Fatalf("h1 out of sync on %s", key)
		}
		assertSynced(t, s)
	}
}

func TestToggleHabitDoesNotTouchInput(t *testing.T) {
	s := ToggleHabit(Default(), "h1", "2025-01-01")
	before := s.Clone()

	_ = ToggleHabit(s, "h1", "2025-01-01")
	_ = ToggleHabit(s, "h1", "2025-01-02")

	if !reflect.DeepEqual(before, s) {
		t.Error("ToggleHabit mutated its input snapshot")
	}
}

func TestToggleHabitUnknownIsNoop(t *testing.T) {
	s := Default()
	if got := ToggleHabit(s, "nope", "2025-01-01"); got != s {
		t.Error("toggle of unknown habit returned a new snapshot")
	}
}

func TestStreakEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		toggles []string
		want    int
	}{
		{"single day", []string{"2025-01-01"}, 1},
		{"gap breaks chain", []string{"2025-01-01", "2025-01-03"}, 1},
		{"across month", []string{"2025-01-30", "2025-01-31", "2025-02-01"}, 3},
		{"across year", []string{"2024-12-31", "2025-01-01"}, 2},
		{"untoggle anchor resets", []string{"2025-01-01", "2025-01-02", "2025-01-02"}, 0},
		{"untoggle inside chain shortens", []string{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-02"}, 1},
		{"older date outside chain keeps streak", []string{"2025-01-05", "2025-01-06", "2025-01-01"}, 2},
		{"older date bridges gap", []string{"2025-01-01", "2025-01-03", "2025-01-02"}, 3},
		{"false latest entry pins zero", []string{"2025-01-02", "2025-01-02", "2025-01-01"}, 0},
		{"later date moves anchor", []string{"2025-01-02", "2025-01-02", "2025-01-01", "2025-01-03"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			for _, key := range tt.toggles {
				s = ToggleHabit(s, "h1", key)
			}
			if got := s.Habits["h1"].Streak; got != tt.want {
				t.Errorf("streak = %d, want %d (history %v)", got, tt.want, s.Habits["h1"].History)
			}
		})
	}
}

func TestStreakContiguousRun(t *testing.T) {
	for k := 0; k <= 40; k++ {
		history := map[string]bool{}
		anchor := "2025-03-05"
		for _, key := range calendar.DateRange(anchor, k) {
			history[key] = true
		}
		history[calendar.AddDays(anchor, -k)] = false
		history[calendar.AddDays(anchor, -k-2)] = true

		if got := Streak(history, anchor); got != k {
			t.Errorf("k=%d: Streak() = %d", k, got)
		}
	}
}

func TestStreakMalformedAnchorTerminates(t *testing.T) {
	if got := Streak(map[string]bool{"bogus": true}, "bogus"); got != 1 {
		t.Errorf("Streak(bogus) = %d, want 1", got)
	}
}

func TestCreateUpdateHabit(t *testing.T) {
	useSequentialIDs(t)
	s := Default()

	s1, id := CreateHabit(s, "Run", "", 0)
	h := s1.Habits[id]
	if h.Name != "Run" || h.Frequency != FrequencyDaily || h.Target != 1 || h.Streak != 0 || len(h.History) != 0 {
		t.Fatalf("created habit = %+v", h)
	}
	if _, ok := s.Habits[id]; ok {
		t.Fatal("CreateHabit modified its input")
	}

	name := "Run 5k"
	weekly := FrequencyWeekly
	target := 3
	s2 := UpdateHabit(s1, id, HabitPatch{Name: &name, Frequency: &weekly, Target: &target})
	h = s2.Habits[id]
	if h.ID != id || h.Name != name || h.Frequency != weekly || h.Target != 3 {
		t.Errorf("updated habit = %+v", h)
	}
	if s1.Habits[id].Name != "Run" {
		t.Error("UpdateHabit modified its input")
	}

	if got := UpdateHabit(s2, "missing", HabitPatch{Name: &name}); got != s2 {
		t.Error("update of unknown habit returned a new snapshot")
	}
	if got := UpdateHabit(s2, id, HabitPatch{Name: &name}); got != s2 {
		t.Error("no-change update returned a new snapshot")
	}
}

func TestDeleteHabitCascades(t *testing.T) {
	useSequentialIDs(t)
	s := Default()
	s = ToggleHabit(s, "h1", "2025-01-01")
	s = ToggleHabit(s, "h2", "2025-01-01")
	s = ToggleHabit(s, "h1", "2025-01-02")
	s, g1 := CreateGoal(s, "Calm", []string{"h1", "h2"}, nil)
	s, g2 := CreateGoal(s, "Only h1", []string{"h1"}, nil)

	s1 := DeleteHabit(s, "h1")

	if _, ok := s1.Habits["h1"]; ok {
		t.Fatal("habit not deleted")
	}
	for gid, g := range s1.Goals {
		for _, h := range g.LinkedHabits {
			if h == "h1" {
				t.Errorf("goal %s still links h1", gid)
			}
		}
	}
	if got := s1.Goals[g1].LinkedHabits; !reflect.DeepEqual(got, []string{"h2"}) {
		t.Errorf("goal %s links = %v, want [h2]", g1, got)
	}
	if got := s1.Goals[g2].LinkedHabits; len(got) != 0 {
		t.Errorf("goal %s links = %v, want empty", g2, got)
	}
	if got := s.Goals[g2].Progress; got != 100 {
		t.Errorf("goal %s progress before delete = %d, want 100", g2, got)
	}
	if got := s1.Goals[g2].Progress; got != 0 {
		t.Errorf("goal %s progress = %d, want 0 once unlinked", g2, got)
	}
	for key, d := range s1.Days {
		if _, ok := d.Habits["h1"]; ok {
			t.Errorf("day %s still has h1", key)
		}
	}
	if !s1.Days["2025-01-01"].Habits["h2"] {
		t.Error("cascade removed an unrelated habit completion")
	}

	// Input untouched.
	if _, ok := s.Days["2025-01-01"].Habits["h1"]; !ok {
		t.Error("DeleteHabit modified input days")
	}
	if len(s.Goals[g1].LinkedHabits) != 2 {
		t.Error("DeleteHabit modified input goals")
	}

	// Second delete is a no-op.
	if s2 := DeleteHabit(s1, "h1"); s2 != s1 {
		t.Error("second DeleteHabit returned a new snapshot")
	}
	assertSynced(t, s1)
}

func TestSetHabitCompletion(t *testing.T) {
	s := Default()
	s1 := SetHabitCompletion(s, "h1", "2025-01-01", true)
	if !s1.Habits["h1"].History["2025-01-01"] || !s1.Days["2025-01-01"].Habits["h1"] {
		t.Fatal("completion not recorded")
	}
	if s2 := SetHabitCompletion(s1, "h1", "2025-01-01", true); s2 != s1 {
		t.Error("repeated SetHabitCompletion returned a new snapshot")
	}
	s3 := SetHabitCompletion(s1, "h1", "2025-01-01", false)
	if s3.Habits["h1"].Streak != 0 {
		t.Errorf("streak after clearing = %d, want 0", s3.Habits["h1"].Streak)
	}
	assertSynced(t, s3)
}

// =============================================================================
// Goals
// =============================================================================

func TestCreateGoal(t *testing.T) {
	useSequentialIDs(t)
	deadline := "2025-12-31"
	s, id := CreateGoal(Default(), "Read 12 books", []string{"h2", "h2", "ghost"}, &deadline)

	g := s.Goals[id]
	if g.Title != "Read 12 books" || g.Progress != 0 {
		t.Errorf("goal = %+v", g)
	}
	if !reflect.DeepEqual(g.LinkedHabits, []string{"h2"}) {
		t.Errorf("linked = %v, want [h2]", g.LinkedHabits)
	}
	if g.Deadline == nil || *g.Deadline != deadline {
		t.Errorf("deadline = %v", g.Deadline)
	}
	deadline = "changed"
	if *s.Goals[id].Deadline != "2025-12-31" {
		t.Error("goal shares the caller's deadline pointer")
	}
}

func TestUpdateDeleteGoal(t *testing.T) {
	useSequentialIDs(t)
	s, id := CreateGoal(Default(), "Goal", nil, nil)

	title := "Better goal"
	links := []string{"h1"}
	dl := "2026-01-01"
	s1 := UpdateGoal(s, id, GoalPatch{Title: &title, LinkedHabits: &links, Deadline: &dl})
	g := s1.Goals[id]
	if g.ID != id || g.Title != title || !reflect.DeepEqual(g.LinkedHabits, links) || *g.Deadline != dl {
		t.Errorf("updated goal = %+v", g)
	}

	s2 := UpdateGoal(s1, id, GoalPatch{ClearDeadline: true})
	if s2.Goals[id].Deadline != nil {
		t.Error("deadline not cleared")
	}
	if s1.Goals[id].Deadline == nil {
		t.Error("UpdateGoal modified its input")
	}

	if got := UpdateGoal(s2, "missing", GoalPatch{Title: &title}); got != s2 {
		t.Error("update of unknown goal returned a new snapshot")
	}

	s3 := DeleteGoal(s2, id)
	if _, ok := s3.Goals[id]; ok {
		t.Error("goal not deleted")
	}
	if got := DeleteGoal(s3, id); got != s3 {
		t.Error("second DeleteGoal returned a new snapshot")
	}
}

func TestSetGoalProgressClamps(t *testing.T) {
	useSequentialIDs(t)
	s, id := CreateGoal(Default(), "Goal", nil, nil)

	if got := SetGoalProgress(s, id, 150).Goals[id].Progress; got != 100 {
		t.Errorf("progress = %d, want 100", got)
	}
	if got := SetGoalProgress(s, id, -5).Goals[id].Progress; got != 0 {
		t.Errorf("progress = %d, want 0", got)
	}
	if got := SetGoalProgress(s, id, 0); got != s {
		t.Error("unchanged progress returned a new snapshot")
	}
}

func TestToggleHabitUpdatesLinkedGoals(t *testing.T) {
	useSequentialIDs(t)
	s, linked := CreateGoal(Default(), "Move", []string{"h2"}, nil)
	s, other := CreateGoal(s, "Sit", []string{"h1"}, nil)

	s1 := ToggleHabit(s, "h2", "2025-01-01")
	s1 = ToggleHabit(s1, "h2", "2025-01-02")
	s1 = ToggleHabit(s1, "h2", "2025-01-02")
	if got := s1.Goals[linked].Progress; got != 50 {
		t.Errorf("linked progress = %d, want 50", got)
	}
	if got := s1.Goals[other].Progress; got != 0 {
		t.Errorf("unlinked progress = %d, want 0", got)
	}
	if s.Goals[linked].Progress != 0 {
		t.Error("ToggleHabit modified input goals")
	}
}

func TestRefreshGoals(t *testing.T) {
	useSequentialIDs(t)
	s, id := CreateGoal(Default(), "Move", []string{"h2"}, nil)
	s = ToggleHabit(s, "h2", "2025-01-01")
	if got := s.Goals[id].Progress; got != 100 {
		t.Fatalf("progress = %d, want 100", got)
	}

	stale := SetGoalProgress(s, id, 0)
	fresh := RefreshGoals(stale)
	if got := fresh.Goals[id].Progress; got != 100 {
		t.Errorf("refreshed progress = %d, want 100", got)
	}
	if stale.Goals[id].Progress != 0 {
		t.Error("RefreshGoals modified its input")
	}
	if got := RefreshGoals(fresh); got != fresh {
		t.Error("RefreshGoals with nothing to change returned a new snapshot")
	}
}
