package insights

import (
	"fmt"
	"testing"

	"lifeos/internal/calendar"
	"lifeos/internal/state"
)

func floatEq(p *float64, want float64) bool {
	return p != nil && *p > want-1e-9 && *p < want+1e-9
}

// withHistory records completions for h on the given keys, true for the
// first done entries and false for the rest.
func withHistory(s *state.Snapshot, hid string, keys []string, done int) *state.Snapshot {
	for i, key := range keys {
		s = state.SetHabitCompletion(s, hid, key, i < done)
	}
	return s
}

// =============================================================================
// Goal progress
// =============================================================================

func TestGoalProgressScenario(t *testing.T) {
	s := state.Default()
	deadline := "2025-12-31"
	s, gid := state.CreateGoal(s, "Read 12 books", []string{"h2"}, &deadline)
	s = withHistory(s, "h2", calendar.DateRange("2025-01-10", 10), 3)

	if got := GoalProgress(s, s.Goals[gid]); got != 30 {
		t.Errorf("GoalProgress() = %d, want 30", got)
	}

	if got := s.Goals[gid].Progress; got != 30 {
		t.Errorf("stored progress = %d, want 30", got)
	}
}

func TestGoalProgressBounds(t *testing.T) {
	tests := []struct {
		name   string
		linked []string
		setup  func(*state.Snapshot) *state.Snapshot
		want   int
	}{
		{"no linked habits", nil, nil, 0},
		{"linked but no history", []string{"h1"}, nil, 0},
		{
			"all done", []string{"h1"},
			func(s *state.Snapshot) *state.Snapshot {
				return withHistory(s, "h1", calendar.DateRange("2025-01-05", 5), 5)
			},
			100,
		},
		{
			"two habits pooled", []string{"h1", "h2"},
			func(s *state.Snapshot) *state.Snapshot {
				s = withHistory(s, "h1", calendar.DateRange("2025-01-04", 4), 4)
				return withHistory(s, "h2", calendar.DateRange("2025-01-04", 4), 0)
			},
			50,
		},
		{
			"rounds", []string{"h1"},
			func(s *state.Snapshot) *state.Snapshot {
				return withHistory(s, "h1", calendar.DateRange("2025-01-03", 3), 2)
			},
			67,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state.Default()
			if tt.setup != nil {
				s = tt.setup(s)
			}
			s, gid := state.CreateGoal(s, "g", tt.linked, nil)
			got := GoalProgress(s, s.Goals[gid])
			if got != tt.want {
				t.Errorf("GoalProgress() = %d, want %d", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("progress %d out of bounds", got)
			}
		})
	}
}

// =============================================================================
// Dashboard metrics
// =============================================================================

func TestComputeMetricsEmptyWindow(t *testing.T) {
	for _, n := range []int{0, 7, 30} {
		m := ComputeMetrics(state.Default(), n)
		if m.AvgMood != nil || m.AvgRating != nil || m.CurrentBestStreak != nil {
			t.Errorf("n=%d: expected nil averages and streak, got %+v", n, m)
		}
		if m.JournalConsistency != 0 || m.ProductivityScore != 0 || m.TotalJournalDays != 0 ||
			m.TotalHabitsCompleted != 0 || m.TotalTasksCompleted != 0 || m.DaysInWindow != 0 {
			t.Errorf("n=%d: expected zero counts, got %+v", n, m)
		}
	}
}

func TestComputeMetrics(t *testing.T) {
	s := state.Default()
	s = state.SetMood(s, "2025-01-01", state.Score(2))
	s = state.SetMood(s, "2025-01-02", state.Score(4))
	s = state.SetRating(s, "2025-01-02", state.Score(5))
	s = state.SetJournal(s, "2025-01-01", "wrote things")
	s = state.SetJournal(s, "2025-01-03", "   ")
	s = state.ToggleHabit(s, "h1", "2025-01-02")
	s = state.ToggleHabit(s, "h1", "2025-01-03")
	s = state.ToggleHabit(s, "h2", "2025-01-03")
	s = state.AddTask(s, "2025-01-03", state.Task{ID: "a", Text: "a"})
	s = state.AddTask(s, "2025-01-03", state.Task{ID: "b", Text: "b"})
	s = state.ToggleTask(s, "2025-01-03", "a")

	m := ComputeMetrics(s, 30)

	if m.DaysInWindow != 3 {
		t.Errorf("DaysInWindow = %d, want 3", m.DaysInWindow)
	}
	if !floatEq(m.AvgMood, 3) {
		t.Errorf("AvgMood = %v, want 3 (absent mood excluded)", m.AvgMood)
	}
	if !floatEq(m.AvgRating, 5) {
		t.Errorf("AvgRating = %v, want 5", m.AvgRating)
	}
	if m.TotalJournalDays != 1 || m.JournalConsistency != 33 {
		t.Errorf("journal days=%d consistency=%d, want 1 and 33", m.TotalJournalDays, m.JournalConsistency)
	}
	// 3 completions of 2 habits x 3 days; 1 of 2 tasks.
	if m.TotalHabitsCompleted != 3 || !(m.HabitCompletionRate > 0.49 && m.HabitCompletionRate < 0.51) {
		t.Errorf("habits completed=%d rate=%v", m.TotalHabitsCompleted, m.HabitCompletionRate)
	}
	if m.TotalTasksCompleted != 1 || m.TotalTasks != 2 {
		t.Errorf("tasks completed=%d total=%d", m.TotalTasksCompleted, m.TotalTasks)
	}
	if m.ProductivityScore != 50 {
		t.Errorf("ProductivityScore = %d, want 50", m.ProductivityScore)
	}
	if m.CurrentBestStreak == nil || m.CurrentBestStreak.HabitID != "h1" || m.CurrentBestStreak.Streak != 2 {
		t.Errorf("CurrentBestStreak = %+v, want h1 with 2", m.CurrentBestStreak)
	}
}

func TestComputeMetricsWindowUsesMostRecentDays(t *testing.T) {
	s := state.Default()
	s = state.SetMood(s, "2025-01-01", state.Score(1))
	s = state.SetMood(s, "2025-02-01", state.Score(5))
	s = state.SetMood(s, "2025-03-01", state.Score(3))

	m := ComputeMetrics(s, 2)
	if m.DaysInWindow != 2 || !floatEq(m.AvgMood, 4) {
		t.Errorf("window=%d avg=%v, want 2 and 4", m.DaysInWindow, m.AvgMood)
	}
}

func TestBestStreakTieBreak(t *testing.T) {
	s := state.Default()
	s = state.ToggleHabit(s, "h2", "2025-01-01")
	s = state.ToggleHabit(s, "h1", "2025-01-01")

	best := BestStreak(s)
	if best == nil || best.HabitID != "h1" {
		t.Errorf("BestStreak = %+v, want h1 on tie", best)
	}
}

// =============================================================================
// Day comparison and productivity
// =============================================================================

func TestCompareDays(t *testing.T) {
	s := state.Default()
	s = state.SetMood(s, "2025-01-01", state.Score(4))
	s = state.SetMood(s, "2025-01-02", state.Score(2))
	s = state.SetRating(s, "2025-01-01", state.Score(3))
	s = state.SetJournal(s, "2025-01-01", "héllo")
	s = state.SetJournal(s, "2025-01-02", "hi")
	s = state.ToggleHabit(s, "h1", "2025-01-01")
	s = state.ToggleHabit(s, "h2", "2025-01-01")
	s = state.AddTask(s, "2025-01-02", state.Task{ID: "t", Text: "x"})
	s = state.ToggleTask(s, "2025-01-02", "t")

	c := CompareDays(s, "2025-01-01", "2025-01-02")
	if c.MoodDiff == nil || *c.MoodDiff != 2 {
		t.Errorf("MoodDiff = %v, want 2", c.MoodDiff)
	}
	if c.RatingDiff != nil {
		t.Errorf("RatingDiff = %v, want nil (absent on one side)", *c.RatingDiff)
	}
	if c.HabitsDiff != 2 || c.TasksDiff != -1 || c.JournalLengthDiff != 3 {
		t.Errorf("comparison = %+v", c)
	}

	missing := CompareDays(s, "2025-01-01", "2030-01-01")
	if missing != (DayComparison{}) {
		t.Errorf("comparison with missing day = %+v, want zero", missing)
	}
}

func TestDayProductivityScore(t *testing.T) {
	s := state.Default()
	if got := DayProductivityScore(s, "2025-01-01"); got != 0 {
		t.Errorf("missing day score = %d, want 0", got)
	}

	s = state.ToggleHabit(s, "h1", "2025-01-01")
	if got := DayProductivityScore(s, "2025-01-01"); got != 30 {
		t.Errorf("half habits, no tasks = %d, want 30", got)
	}

	s = state.AddTask(s, "2025-01-01", state.Task{ID: "t1"})
	s = state.ToggleTask(s, "2025-01-01", "t1")
	s = state.ToggleHabit(s, "h2", "2025-01-01")
	if got := DayProductivityScore(s, "2025-01-01"); got != 100 {
		t.Errorf("everything done = %d, want 100", got)
	}
}

// =============================================================================
// Series and helpers
// =============================================================================

func TestMoodSeriesPresenceDistinct(t *testing.T) {
	s := state.Default()
	s = state.SetMood(s, "2025-01-03", state.Score(4))
	s = state.EnsureDay(s, "2025-01-02")

	pts := MoodSeries(s, "2025-01-03", 3)
	if len(pts) != 3 || pts[0].Date != "2025-01-01" || pts[2].Date != "2025-01-03" {
		t.Fatalf("series dates = %+v", pts)
	}
	if pts[0].Value != nil || pts[1].Value != nil {
		t.Error("absent mood produced a value")
	}
	if !floatEq(pts[2].Value, 4) {
		t.Errorf("mood value = %v, want 4", pts[2].Value)
	}

	hs := HabitSeries(s, "2025-01-03", 3)
	if hs[0].Value != nil {
		t.Error("missing day produced a habit value")
	}
	if !floatEq(hs[1].Value, 0) {
		t.Errorf("recorded empty day = %v, want 0", hs[1].Value)
	}
}

func TestBalance(t *testing.T) {
	mood := 3.5
	r := Balance(Metrics{AvgMood: &mood, ProductivityScore: 60, JournalConsistency: 40, HabitCompletionRate: 0.5, TaskCompletionRate: 0.7})
	want := Radar{Mood: 70, Efficiency: 60, Writing: 40, Habits: 50, Tasks: 70}
	if r != want {
		t.Errorf("Balance() = %+v, want %+v", r, want)
	}
	if got := Balance(Metrics{}); got.Mood != 0 {
		t.Errorf("nil mood radar = %d, want 0", got.Mood)
	}
}

func TestDaysUntilAndTier(t *testing.T) {
	if got := DaysUntil("2025-12-31", "2025-12-01"); got != 30 {
		t.Errorf("DaysUntil = %d, want 30", got)
	}
	if got := DaysUntil("2025-12-01", "2025-12-31"); got != -30 {
		t.Errorf("DaysUntil past = %d, want -30", got)
	}
	for p, want := range map[int]Tier{0: TierLow, 49: TierLow, 50: TierMedium, 79: TierMedium, 80: TierHigh, 100: TierHigh} {
		if got := ProgressTier(p); got != want {
			t.Errorf("ProgressTier(%d) = %s, want %s", p, got, want)
		}
	}
}

func TestActiveDates(t *testing.T) {
	s := state.Default()
	for _, key := range []string{"2025-01-31", "2025-02-01", "2025-02-14", "2025-03-01"} {
		s = state.EnsureDay(s, key)
	}
	got := ActiveDates(s, "2025-02")
	if fmt.Sprint(got) != "[2025-02-01 2025-02-14]" {
		t.Errorf("ActiveDates = %v", got)
	}
}

func TestFindHabits(t *testing.T) {
	s := state.Default()
	s, _ = state.CreateHabit(s, "Meal prep", state.FrequencyWeekly, 1)

	if got := FindHabits(s, "h2"); len(got) != 1 || got[0].Name != "Read" {
		t.Errorf("id lookup = %+v", got)
	}
	got := FindHabits(s, "medit")
	if len(got) == 0 || got[0].ID != "h1" {
		t.Errorf("fuzzy lookup = %+v, want Meditate first", got)
	}
	if got := FindHabits(s, "zzz"); len(got) != 0 {
		t.Errorf("no match = %+v", got)
	}
	if got := FindHabits(s, " "); got != nil {
		t.Errorf("blank query = %+v", got)
	}
}

func BenchmarkComputeMetrics(b *testing.B) {
	s := state.Default()
	for _, key := range calendar.DateRange("2025-12-31", 365) {
		s = state.ToggleHabit(s, "h1", key)
		s = state.SetMood(s, key, state.Score(3))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ComputeMetrics(s, 30)
	}
}
