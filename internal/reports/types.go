// Package reports provides daily and weekly report generation for lifeos.
// Reports summarize journal, mood, tasks and habits for a period.
package reports

import (
	"time"

	"lifeos/internal/state"
)

// DailyReport contains aggregated data for a single day.
type DailyReport struct {
	Date         string        `json:"date"`
	DayOfWeek    string        `json:"day_of_week"`
	Recorded     bool          `json:"recorded"`
	Journal      string        `json:"journal"`
	Mood         *int          `json:"mood"`
	Rating       *int          `json:"rating"`
	Productivity int           `json:"productivity"`
	Tasks        TaskSummary   `json:"tasks"`
	Habits       HabitSummary  `json:"habits"`
	Alarms       []state.Alarm `json:"alarms"`
	GeneratedAt  time.Time     `json:"generated_at"`
}

// WeeklyReport contains aggregated data for a week.
type WeeklyReport struct {
	StartDate      string         `json:"start_date"`
	EndDate        string         `json:"end_date"`
	WeekStart      string         `json:"week_start"`
	DaysRecorded   int            `json:"days_recorded"`
	JournalDays    int            `json:"journal_days"`
	AvgMood        *float64       `json:"avg_mood"`
	AvgRating      *float64       `json:"avg_rating"`
	Tasks          WeeklyTasks    `json:"tasks"`
	Habits         WeeklyHabits   `json:"habits"`
	DailyBreakdown []DailySummary `json:"daily_breakdown"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// TaskSummary contains the tasks of one day split by status.
type TaskSummary struct {
	Completed      []state.Task `json:"completed"`
	Pending        []state.Task `json:"pending"`
	CompletedCount int          `json:"completed_count"`
	PendingCount   int          `json:"pending_count"`
}

// HabitSummary contains habit statistics for one day.
type HabitSummary struct {
	Habits         []HabitStatus `json:"habits"`
	CompletedCount int           `json:"completed_count"`
	TotalCount     int           `json:"total_count"`
	CompletionRate float64       `json:"completion_rate"`
}

// HabitStatus represents a habit and its completion status on a day.
type HabitStatus struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Done   bool   `json:"done"`
	Streak int    `json:"streak"`
}

// WeeklyTasks contains task statistics for a week.
type WeeklyTasks struct {
	TotalCompleted int            `json:"total_completed"`
	TotalTasks     int            `json:"total_tasks"`
	CompletionRate float64        `json:"completion_rate"`
	ByDay          []DayTaskCount `json:"by_day"`
}

// DayTaskCount represents task counts for a specific day.
type DayTaskCount struct {
	Date      string `json:"date"`
	DayOfWeek string `json:"day_of_week"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// WeeklyHabits contains habit statistics for a week.
type WeeklyHabits struct {
	Habits         []WeeklyHabitStatus `json:"habits"`
	OverallRate    float64             `json:"overall_rate"`
	TotalCompleted int                 `json:"total_completed"`
	TotalExpected  int                 `json:"total_expected"`
}

// WeeklyHabitStatus represents a habit's completion over a week.
type WeeklyHabitStatus struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Frequency      state.Frequency `json:"frequency"`
	DaysCompleted  []bool          `json:"days_completed"` // one per day, week start first
	CompletedCount int             `json:"completed_count"`
	ExpectedCount  int             `json:"expected_count"`
	CompletionRate float64         `json:"completion_rate"`
	Streak         int             `json:"streak"`
}

// DailySummary provides a quick overview of a single day within a week.
type DailySummary struct {
	Date           string `json:"date"`
	DayOfWeek      string `json:"day_of_week"`
	Recorded       bool   `json:"recorded"`
	Mood           *int   `json:"mood"`
	Rating         *int   `json:"rating"`
	Journaled      bool   `json:"journaled"`
	TasksCompleted int    `json:"tasks_completed"`
	TasksTotal     int    `json:"tasks_total"`
	HabitsComplete int    `json:"habits_complete"`
	HabitsTotal    int    `json:"habits_total"`
	Productivity   int    `json:"productivity"`
}
