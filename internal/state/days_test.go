package state

import (
	"errors"
	"testing"
	"time"
)

func TestDaySettersCreateDay(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*Snapshot) *Snapshot
		check func(*testing.T, Day)
	}{
		{
			name:  "journal",
			apply: func(s *Snapshot) *Snapshot { return SetJournal(s, "2025-01-01", "dear diary") },
			check: func(t *testing.T, d Day) {
				if d.Journal != "dear diary" {
					t.Errorf("journal = %q", d.Journal)
				}
			},
		},
		{
			name:  "mood",
			apply: func(s *Snapshot) *Snapshot { return SetMood(s, "2025-01-01", Score(4)) },
			check: func(t *testing.T, d Day) {
				if d.Mood == nil || *d.Mood != 4 {
					t.Errorf("mood = %v", d.Mood)
				}
			},
		},
		{
			name:  "rating",
			apply: func(s *Snapshot) *Snapshot { return SetRating(s, "2025-01-01", Score(2)) },
			check: func(t *testing.T, d Day) {
				if d.Rating == nil || *d.Rating != 2 {
					t.Errorf("rating = %v", d.Rating)
				}
			},
		},
		{
			name: "task",
			apply: func(s *Snapshot) *Snapshot {
				return AddTask(s, "2025-01-01", Task{ID: "t1", Text: "write"})
			},
			check: func(t *testing.T, d Day) {
				if len(d.Tasks) != 1 || d.Tasks[0].Text != "write" || d.Tasks[0].Completed {
					t.Errorf("tasks = %+v", d.Tasks)
				}
			},
		},
		{
			name: "alarm",
			apply: func(s *Snapshot) *Snapshot {
				return AddAlarm(s, "2025-01-01", Alarm{ID: "a1", Time: "07:00", Label: "wake"})
			},
			check: func(t *testing.T, d Day) {
				if len(d.Alarms) != 1 || d.Alarms[0].Repeat != RepeatNever {
					t.Errorf("alarms = %+v", d.Alarms)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			next := tt.apply(s)
			if _, ok := s.Days["2025-01-01"]; ok {
				t.Fatal("setter modified its input")
			}
			d, ok := next.Days["2025-01-01"]
			if !ok {
				t.Fatal("day not created")
			}
			tt.check(t, d)
		})
	}
}

func TestMoodRatingOutOfRangeIgnored(t *testing.T) {
	s := SetMood(Default(), "2025-01-01", Score(3))

	for _, v := range []int{0, 6, -1} {
		if got := SetMood(s, "2025-01-01", Score(v)); got != s {
			t.Errorf("SetMood(%d) changed the snapshot", v)
		}
		if got := SetRating(s, "2025-01-01", Score(v)); got != s {
			t.Errorf("SetRating(%d) changed the snapshot", v)
		}
	}

	cleared := SetMood(s, "2025-01-01", nil)
	if cleared.Days["2025-01-01"].Mood != nil {
		t.Error("nil mood did not clear")
	}
	if s.Days["2025-01-01"].Mood == nil {
		t.Error("clearing mood modified the input")
	}
}

func TestTaskToggleDelete(t *testing.T) {
	key := "2025-01-01"
	s := AddTask(Default(), key, Task{ID: "t1", Text: "a"})
	s = AddTask(s, key, Task{ID: "t2", Text: "b"})

	s1 := ToggleTask(s, key, "t2")
	if !s1.Days[key].Tasks[1].Completed {
		t.Error("task not toggled")
	}
	if s.Days[key].Tasks[1].Completed {
		t.Error("ToggleTask modified its input")
	}

	s2 := DeleteTask(s1, key, "t1")
	if len(s2.Days[key].Tasks) != 1 || s2.Days[key].Tasks[0].ID != "t2" {
		t.Errorf("tasks after delete = %+v", s2.Days[key].Tasks)
	}
	if len(s1.Days[key].Tasks) != 2 {
		t.Error("DeleteTask modified its input")
	}

	if got := ToggleTask(s2, key, "ghost"); got != s2 {
		t.Error("toggle of unknown task returned a new snapshot")
	}
	if got := DeleteTask(s2, key, "ghost"); got != s2 {
		t.Error("delete of unknown task returned a new snapshot")
	}

	// Unknown task on a missing day still ensures the day.
	s3 := ToggleTask(s2, "2025-02-01", "ghost")
	if _, ok := s3.Days["2025-02-01"]; !ok {
		t.Error("ToggleTask did not ensure the target day")
	}
}

func TestRemoveAlarm(t *testing.T) {
	key := "2025-01-01"
	s := AddAlarm(Default(), key, Alarm{ID: "a1", Time: "07:00"})
	s = AddAlarm(s, key, Alarm{ID: "a2", Time: "08:00"})

	s1 := RemoveAlarm(s, key, "a1")
	if len(s1.Days[key].Alarms) != 1 || s1.Days[key].Alarms[0].ID != "a2" {
		t.Errorf("alarms = %+v", s1.Days[key].Alarms)
	}
	if got := RemoveAlarm(s1, key, "a1"); got != s1 {
		t.Error("removing a missing alarm returned a new snapshot")
	}
}

func TestSettings(t *testing.T) {
	s := Default()

	if got := SetTheme(s, ThemeLight); got.User.Settings.Theme != ThemeLight {
		t.Error("theme not set")
	}
	if got := SetTheme(s, "neon"); got != s {
		t.Error("unknown theme changed the snapshot")
	}
	if got := SetTheme(s, ThemeDark); got != s {
		t.Error("same theme returned a new snapshot")
	}
	if got := SetWeekStart(s, WeekStartSunday); got.User.Settings.WeekStart != WeekStartSunday {
		t.Error("week start not set")
	}
	if got := SetNotifications(s, false); got.User.Settings.Notifications {
		t.Error("notifications not disabled")
	}
	if got := SetUserName(s, "Ada"); got.User.Name != "Ada" || s.User.Name != "User" {
		t.Error("SetUserName wrong or mutated input")
	}
}

func TestCleanName(t *testing.T) {
	if got, err := CleanName("  Read  ", MaxHabitNameLen); err != nil || got != "Read" {
		t.Errorf("CleanName = %q, %v", got, err)
	}
	if _, err := CleanName("   ", MaxHabitNameLen); !errors.Is(err, ErrEmptyName) {
		t.Errorf("blank err = %v, want ErrEmptyName", err)
	}
	long := make([]rune, MaxHabitNameLen+1)
	for i := range long {
		long[i] = 'é'
	}
	if _, err := CleanName(string(long), MaxHabitNameLen); !errors.Is(err, ErrTooLong) {
		t.Errorf("long err = %v, want ErrTooLong", err)
	}
}

func TestValidAlarmTime(t *testing.T) {
	for _, s := range []string{"00:00", "07:30", "23:59"} {
		if !ValidAlarmTime(s) {
			t.Errorf("ValidAlarmTime(%q) = false", s)
		}
	}
	for _, s := range []string{"24:00", "7:30", "12:60", "ab:cd", ""} {
		if ValidAlarmTime(s) {
			t.Errorf("ValidAlarmTime(%q) = true", s)
		}
	}
}

// =============================================================================
// Focus timer
// =============================================================================

func TestTimerCheckpointResume(t *testing.T) {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	s := Default()

	s = StartTimer(s, base, s.FocusTimer.Remaining(base))
	if !s.FocusTimer.IsRunning || s.FocusTimer.LastStartedAt == nil {
		t.Fatal("timer not running after start")
	}
	if got := s.FocusTimer.Remaining(base.Add(100 * time.Second)); got != 1400 {
		t.Errorf("remaining after 100s = %d, want 1400", got)
	}

	pauseAt := base.Add(300 * time.Second)
	s = PauseTimer(s, s.FocusTimer.Remaining(pauseAt))
	if s.FocusTimer.IsRunning || s.FocusTimer.LastStartedAt != nil || s.FocusTimer.RemainingSeconds != 1200 {
		t.Fatalf("paused timer = %+v", s.FocusTimer)
	}

	// A long pause does not consume countdown.
	resumeAt := pauseAt.Add(2 * time.Hour)
	if got := s.FocusTimer.Remaining(resumeAt); got != 1200 {
		t.Errorf("remaining while paused = %d, want 1200", got)
	}
	s = StartTimer(s, resumeAt, s.FocusTimer.Remaining(resumeAt))
	if got := s.FocusTimer.Remaining(resumeAt.Add(45*time.Second + 900*time.Millisecond)); got != 1155 {
		t.Errorf("remaining 45.9s after resume = %d, want 1155", got)
	}
}

func TestTimerCompletion(t *testing.T) {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	s := StartTimer(Default(), base, 10)

	if _, done := CompleteTimer(s, base.Add(9*time.Second)); done {
		t.Fatal("completed early")
	}
	if got := s.FocusTimer.Remaining(base.Add(time.Hour)); got != 0 {
		t.Errorf("remaining never goes negative, got %d", got)
	}
	s1, done := CompleteTimer(s, base.Add(10*time.Second))
	if !done {
		t.Fatal("timer not completed")
	}
	if s1.FocusTimer.IsRunning || s1.FocusTimer.RemainingSeconds != 0 || s1.FocusTimer.LastStartedAt != nil {
		t.Errorf("completed timer = %+v", s1.FocusTimer)
	}
}

func TestTimerResetAndDuration(t *testing.T) {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	s := StartTimer(Default(), base, 1500)

	s1 := ResetTimer(s)
	if s1.FocusTimer.IsRunning || s1.FocusTimer.RemainingSeconds != 1500 || s1.FocusTimer.LastStartedAt != nil {
		t.Errorf("reset timer = %+v", s1.FocusTimer)
	}
	if got := ResetTimer(s1); got != s1 {
		t.Error("reset of a full stopped timer returned a new snapshot")
	}

	s2 := ChangeDuration(s, 50)
	if s2.FocusTimer.Duration != 50 || s2.FocusTimer.RemainingSeconds != 3000 || s2.FocusTimer.IsRunning {
		t.Errorf("changed timer = %+v", s2.FocusTimer)
	}
	if got := ChangeDuration(s2, 0); got != s2 {
		t.Error("zero duration was accepted")
	}

	if got := StartTimer(s, base, 10); got != s {
		t.Error("starting a running timer returned a new snapshot")
	}
	if got := PauseTimer(s1, 5); got != s1 {
		t.Error("pausing a stopped timer returned a new snapshot")
	}
}
