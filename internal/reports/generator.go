package reports

import (
	"fmt"
	"strings"
	"time"

	"lifeos/internal/calendar"
	"lifeos/internal/insights"
	"lifeos/internal/state"
)

// Generator creates reports from a snapshot.
type Generator struct {
	snap *state.Snapshot
	now  func() time.Time
}

// NewGenerator creates a new report generator.
func NewGenerator(snap *state.Snapshot) *Generator {
	return &Generator{snap: snap, now: time.Now}
}

// GenerateDaily generates a report for the day with the given key.
func (g *Generator) GenerateDaily(key string) (*DailyReport, error) {
	if !calendar.Valid(key) {
		return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", key)
	}

	d, ok := g.snap.Day(key)
	report := &DailyReport{
		Date:         key,
		DayOfWeek:    weekday(key),
		Recorded:     ok,
		Journal:      d.Journal,
		Mood:         d.Mood,
		Rating:       d.Rating,
		Productivity: insights.DayProductivityScore(g.snap, key),
		Tasks:        taskSummary(d),
		Habits:       g.habitSummary(key),
		Alarms:       d.Alarms,
		GeneratedAt:  g.now(),
	}
	return report, nil
}

// GenerateWeekly generates a report for the week containing key. The week
// begins on the user's configured week start.
func (g *Generator) GenerateWeekly(key string) (*WeeklyReport, error) {
	if !calendar.Valid(key) {
		return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", key)
	}

	weekStart := string(g.snap.User.Settings.WeekStart)
	start := calendar.StartOfWeek(key, weekStart)
	end := calendar.AddDays(start, 6)
	days := calendar.DateRange(end, 7)

	report := &WeeklyReport{
		StartDate:   start,
		EndDate:     end,
		WeekStart:   weekStart,
		Tasks:       WeeklyTasks{ByDay: make([]DayTaskCount, 0, len(days))},
		Habits:      g.weeklyHabits(days),
		GeneratedAt: g.now(),
	}

	var moodSum, moodN, ratingSum, ratingN int
	for _, date := range days {
		d, ok := g.snap.Day(date)
		summary := DailySummary{
			Date:         date,
			DayOfWeek:    weekday(date),
			Recorded:     ok,
			HabitsTotal:  len(g.snap.Habits),
			Productivity: insights.DayProductivityScore(g.snap, date),
		}
		if ok {
			report.DaysRecorded++
			summary.Mood, summary.Rating = d.Mood, d.Rating
			summary.Journaled = strings.TrimSpace(d.Journal) != ""
			summary.TasksCompleted = d.CompletedTasks()
			summary.TasksTotal = len(d.Tasks)
			summary.HabitsComplete = d.CompletedHabits()

			if summary.Journaled {
				report.JournalDays++
			}
			if d.Mood != nil {
				moodSum += *d.Mood
				moodN++
			}
			if d.Rating != nil {
				ratingSum += *d.Rating
				ratingN++
			}
		}

		report.Tasks.TotalCompleted += summary.TasksCompleted
		report.Tasks.TotalTasks += summary.TasksTotal
		report.Tasks.ByDay = append(report.Tasks.ByDay, DayTaskCount{
			Date:      date,
			DayOfWeek: summary.DayOfWeek,
			Completed: summary.TasksCompleted,
			Total:     summary.TasksTotal,
		})
		report.DailyBreakdown = append(report.DailyBreakdown, summary)
	}

	report.AvgMood = mean(moodSum, moodN)
	report.AvgRating = mean(ratingSum, ratingN)
	report.Tasks.CompletionRate = rate(report.Tasks.TotalCompleted, report.Tasks.TotalTasks)
	return report, nil
}

func taskSummary(d state.Day) TaskSummary {
	summary := TaskSummary{Completed: []state.Task{}, Pending: []state.Task{}}
	for _, t := range d.Tasks {
		if t.Completed {
			summary.Completed = append(summary.Completed, t)
		} else {
			summary.Pending = append(summary.Pending, t)
		}
	}
	summary.CompletedCount = len(summary.Completed)
	summary.PendingCount = len(summary.Pending)
	return summary
}

func (g *Generator) habitSummary(key string) HabitSummary {
	summary := HabitSummary{Habits: []HabitStatus{}}
	for _, h := range g.snap.SortedHabits() {
		done := h.History[key]
		if done {
			summary.CompletedCount++
		}
		summary.Habits = append(summary.Habits, HabitStatus{
			ID:     h.ID,
			Name:   h.Name,
			Done:   done,
			Streak: state.Streak(h.History, key),
		})
	}
	summary.TotalCount = len(summary.Habits)
	summary.CompletionRate = rate(summary.CompletedCount, summary.TotalCount)
	return summary
}

func (g *Generator) weeklyHabits(days []string) WeeklyHabits {
	weekly := WeeklyHabits{Habits: []WeeklyHabitStatus{}}
	last := days[len(days)-1]

	for _, h := range g.snap.SortedHabits() {
		status := WeeklyHabitStatus{
			ID:            h.ID,
			Name:          h.Name,
			Frequency:     h.Frequency,
			DaysCompleted: make([]bool, len(days)),
			ExpectedCount: expectedPerWeek(h),
			Streak:        state.Streak(h.History, last),
		}
		done := 0
		for i, date := range days {
			status.DaysCompleted[i] = h.History[date]
			if h.History[date] {
				done++
			}
		}
		status.CompletedCount = min(done, status.ExpectedCount)
		status.CompletionRate = rate(status.CompletedCount, status.ExpectedCount)

		weekly.TotalCompleted += status.CompletedCount
		weekly.TotalExpected += status.ExpectedCount
		weekly.Habits = append(weekly.Habits, status)
	}

	weekly.OverallRate = rate(weekly.TotalCompleted, weekly.TotalExpected)
	return weekly
}

// expectedPerWeek is how many completions a habit asks for in one week. A
// daily habit wants every day; weekly and custom habits want their target.
func expectedPerWeek(h state.Habit) int {
	if h.Frequency == state.FrequencyDaily || h.Frequency == "" {
		return 7
	}
	return min(max(h.Target, 1), 7)
}

func weekday(key string) string {
	t, err := calendar.Parse(key)
	if err != nil {
		return ""
	}
	return t.Format("Mon")
}

// rate returns n/d as a percentage, 0 when d is 0.
func rate(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

func mean(sum, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := float64(sum) / float64(n)
	return &v
}
