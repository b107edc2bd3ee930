// Package insights computes read-only analytics from a snapshot: goal
// progress, dashboard metrics, day comparisons, productivity scores and
// chart series. Nothing here modifies a snapshot.
package insights

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"lifeos/internal/state"
)

// Dashboard windows used by the UI when the config does not override them.
const (
	WeekWindow  = 7
	MonthWindow = 30
)

// StreakLeader is the habit with the longest current streak.
type StreakLeader struct {
	HabitID   string `json:"habitId"`
	HabitName string `json:"habitName"`
	Streak    int    `json:"streak"`
}

// Metrics are dashboard aggregates over a window of recorded days.
type Metrics struct {
	Window               int           `json:"window"`
	DaysInWindow         int           `json:"daysInWindow"`
	AvgMood              *float64      `json:"avgMood"`
	AvgRating            *float64      `json:"avgRating"`
	TotalJournalDays     int           `json:"totalJournalDays"`
	JournalConsistency   int           `json:"journalConsistency"`
	HabitCompletionRate  float64       `json:"habitCompletionRate"`
	TaskCompletionRate   float64       `json:"taskCompletionRate"`
	ProductivityScore    int           `json:"productivityScore"`
	TotalHabitsCompleted int           `json:"totalHabitsCompleted"`
	TotalTasks           int           `json:"totalTasks"`
	TotalTasksCompleted  int           `json:"totalTasksCompleted"`
	CurrentBestStreak    *StreakLeader `json:"currentBestStreak"`
}

// DayComparison holds signed differences between two days (a minus b).
type DayComparison struct {
	MoodDiff          *int `json:"moodDiff"`
	RatingDiff        *int `json:"ratingDiff"`
	HabitsDiff        int  `json:"habitsDiff"`
	TasksDiff         int  `json:"tasksDiff"`
	JournalLengthDiff int  `json:"journalLengthDiff"`
}

// ============================================================================
// Goals
// ============================================================================

// GoalProgress is the live progress of g. The state package keeps the stored
// value in step on every habit change.
func GoalProgress(s *state.Snapshot, g state.Goal) int {
	return state.GoalProgress(s, g)
}

// ============================================================================
// Dashboard
// ============================================================================

// ComputeMetrics aggregates the n most recent recorded days. Days with no
// record do not count toward the window.
func ComputeMetrics(s *state.Snapshot, n int) Metrics {
	m := Metrics{Window: n}
	keys := recentDayKeys(s, n)
	m.DaysInWindow = len(keys)
	if len(keys) == 0 {
		return m
	}

	var moodSum, moodN, ratingSum, ratingN int
	habitCount := len(s.Habits)
	habitPossible := 0
	for _, key := range keys {
		d := s.Days[key]
		if d.Mood != nil {
			moodSum += *d.Mood
			moodN++
		}
		if d.Rating != nil {
			ratingSum += *d.Rating
			ratingN++
		}
		if strings.TrimSpace(d.Journal) != "" {
			m.TotalJournalDays++
		}
		m.TotalHabitsCompleted += d.CompletedHabits()
		habitPossible += habitCount
		m.TotalTasks += len(d.Tasks)
		m.TotalTasksCompleted += d.CompletedTasks()
	}

	m.AvgMood = average(moodSum, moodN)
	m.AvgRating = average(ratingSum, ratingN)
	m.JournalConsistency = percent(m.TotalJournalDays, len(keys))
	m.HabitCompletionRate = ratio(m.TotalHabitsCompleted, habitPossible)
	m.TaskCompletionRate = ratio(m.TotalTasksCompleted, m.TotalTasks)
	m.ProductivityScore = int(math.Round((m.HabitCompletionRate + m.TaskCompletionRate) / 2 * 100))
	m.CurrentBestStreak = BestStreak(s)
	return m
}

// BestStreak returns the habit with the longest cached streak, or nil when
// no habit has a streak. Ties go to the lowest habit id.
func BestStreak(s *state.Snapshot) *StreakLeader {
	var best *StreakLeader
	for _, id := range s.HabitIDs() {
		h := s.Habits[id]
		if h.Streak > 0 && (best == nil || h.Streak > best.Streak) {
			best = &StreakLeader{HabitID: id, HabitName: h.Name, Streak: h.Streak}
		}
	}
	return best
}

func recentDayKeys(s *state.Snapshot, n int) []string {
	if n <= 0 {
		return nil
	}
	keys := s.DayKeys()
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// ============================================================================
// Days
// ============================================================================

// CompareDays returns day a minus day b. If either day is missing, every
// difference is zero or absent.
func CompareDays(s *state.Snapshot, a, b string) DayComparison {
	da, okA := s.Days[a]
	db, okB := s.Days[b]
	if !okA || !okB {
		return DayComparison{}
	}
	return DayComparison{
		MoodDiff:          diff(da.Mood, db.Mood),
		RatingDiff:        diff(da.Rating, db.Rating),
		HabitsDiff:        da.CompletedHabits() - db.CompletedHabits(),
		TasksDiff:         da.CompletedTasks() - db.CompletedTasks(),
		JournalLengthDiff: utf8.RuneCountInString(da.Journal) - utf8.RuneCountInString(db.Journal),
	}
}

// DayProductivityScore weighs habit completion at 60% and task completion at
// 40% for one day. A missing day scores 0.
func DayProductivityScore(s *state.Snapshot, key string) int {
	d, ok := s.Days[key]
	if !ok {
		return 0
	}
	habitRate := ratio(d.CompletedHabits(), len(s.Habits))
	taskRate := ratio(d.CompletedTasks(), len(d.Tasks))
	return int(math.Round((0.6*habitRate + 0.4*taskRate) * 100))
}

// ============================================================================
// Helpers
// ============================================================================

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func percent(n, d int) int {
	return int(math.Round(ratio(n, d) * 100))
}

func average(sum, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := float64(sum) / float64(n)
	return &v
}

func diff(a, b *int) *int {
	if a == nil || b == nil {
		return nil
	}
	v := *a - *b
	return &v
}
