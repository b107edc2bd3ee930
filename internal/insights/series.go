package insights

import (
	"math"
	"strings"

	"lifeos/internal/calendar"
	"lifeos/internal/state"

	"github.com/sahilm/fuzzy"
)

// Point is one chart sample. Value is nil when the date has no record or the
// record has no value for the series.
type Point struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// Radar is the life-balance chart, every axis on a 0..100 scale.
type Radar struct {
	Mood       int `json:"mood"`
	Efficiency int `json:"efficiency"`
	Writing    int `json:"writing"`
	Habits     int `json:"habits"`
	Tasks      int `json:"tasks"`
}

// Tier buckets goal progress for display.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// MoodSeries returns the mood for each of the n days ending at end.
func MoodSeries(s *state.Snapshot, end string, n int) []Point {
	return series(s, end, n, func(d state.Day) *float64 {
		if d.Mood == nil {
			return nil
		}
		v := float64(*d.Mood)
		return &v
	})
}

// RatingSeries returns the rating for each of the n days ending at end.
func RatingSeries(s *state.Snapshot, end string, n int) []Point {
	return series(s, end, n, func(d state.Day) *float64 {
		if d.Rating == nil {
			return nil
		}
		v := float64(*d.Rating)
		return &v
	})
}

// HabitSeries returns the habit completion percentage for each of the n days
// ending at end.
func HabitSeries(s *state.Snapshot, end string, n int) []Point {
	total := len(s.Habits)
	return series(s, end, n, func(d state.Day) *float64 {
		v := math.Round(ratio(d.CompletedHabits(), total) * 100)
		return &v
	})
}

func series(s *state.Snapshot, end string, n int, value func(state.Day) *float64) []Point {
	keys := calendar.DateRange(end, n)
	out := make([]Point, len(keys))
	for i, key := range keys {
		out[i] = Point{Date: key}
		if d, ok := s.Days[key]; ok {
			out[i].Value = value(d)
		}
	}
	return out
}

// Balance maps dashboard metrics onto the life-balance radar.
func Balance(m Metrics) Radar {
	r := Radar{
		Efficiency: m.ProductivityScore,
		Writing:    m.JournalConsistency,
		Habits:     int(math.Round(m.HabitCompletionRate * 100)),
		Tasks:      int(math.Round(m.TaskCompletionRate * 100)),
	}
	if m.AvgMood != nil {
		r.Mood = int(math.Round(*m.AvgMood * 20))
	}
	return r
}

// DaysUntil returns whole days from today until deadline. It is negative
// once the deadline has passed.
func DaysUntil(deadline, today string) int {
	return calendar.DaysBetween(today, deadline)
}

// ProgressTier buckets a progress percentage.
func ProgressTier(progress int) Tier {
	switch {
	case progress >= 80:
		return TierHigh
	case progress >= 50:
		return TierMedium
	default:
		return TierLow
	}
}

// ActiveDates returns the recorded date-keys that fall in the given month
// prefix ("YYYY-MM"), oldest first.
func ActiveDates(s *state.Snapshot, month string) []string {
	var out []string
	for _, key := range s.DayKeys() {
		if strings.HasPrefix(key, month+"-") {
			out = append(out, key)
		}
	}
	return out
}

// habitSource adapts habits to fuzzy.Source.
type habitSource []state.Habit

func (h habitSource) String(i int) string { return h[i].Name }
func (h habitSource) Len() int            { return len(h) }

// FindHabits returns habits whose name fuzzily matches query, best first.
// An exact id match is returned on its own.
func FindHabits(s *state.Snapshot, query string) []state.Habit {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if h, ok := s.Habits[query]; ok {
		return []state.Habit{h}
	}
	habits := habitSource(s.SortedHabits())
	matches := fuzzy.FindFrom(query, habits)
	out := make([]state.Habit, 0, len(matches))
	for _, m := range matches {
		out = append(out, habits[m.Index])
	}
	return out
}
