package reports

import (
	"fmt"
	"strings"
)

// FormatDailyMarkdown renders a daily report as Markdown.
func FormatDailyMarkdown(r *DailyReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Daily Report: %s (%s)\n\n", r.Date, r.DayOfWeek)
	if !r.Recorded {
		b.WriteString("_Nothing recorded for this day._\n\n")
	}

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Mood: %s\n", score(r.Mood))
	fmt.Fprintf(&b, "- Rating: %s\n", score(r.Rating))
	fmt.Fprintf(&b, "- Productivity: %d%%\n\n", r.Productivity)

	fmt.Fprintf(&b, "## Habits (%d/%d, %.0f%%)\n\n", r.Habits.CompletedCount, r.Habits.TotalCount, r.Habits.CompletionRate)
	for _, h := range r.Habits.Habits {
		fmt.Fprintf(&b, "- %s %s", checkbox(h.Done), h.Name)
		if h.Streak > 1 {
			fmt.Fprintf(&b, " (%d day streak)", h.Streak)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Tasks (%d done, %d pending)\n\n", r.Tasks.CompletedCount, r.Tasks.PendingCount)
	if r.Tasks.CompletedCount+r.Tasks.PendingCount == 0 {
		b.WriteString("_No tasks._\n")
	}
	for _, t := range r.Tasks.Completed {
		fmt.Fprintf(&b, "- [x] %s\n", t.Text)
	}
	for _, t := range r.Tasks.Pending {
		fmt.Fprintf(&b, "- [ ] %s\n", t.Text)
	}
	b.WriteString("\n")

	if len(r.Alarms) > 0 {
		b.WriteString("## Alarms\n\n")
		for _, a := range r.Alarms {
			fmt.Fprintf(&b, "- %s %s (%s)\n", a.Time, a.Label, a.Repeat)
		}
		b.WriteString("\n")
	}

	if journal := strings.TrimSpace(r.Journal); journal != "" {
		b.WriteString("## Journal\n\n")
		for _, line := range strings.Split(journal, "\n") {
			fmt.Fprintf(&b, "> %s\n", line)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "_Generated %s_\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	return b.String()
}

// FormatWeeklyMarkdown renders a weekly report as Markdown.
func FormatWeeklyMarkdown(r *WeeklyReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Weekly Report: %s to %s\n\n", r.StartDate, r.EndDate)

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Days recorded: %d/7\n", r.DaysRecorded)
	fmt.Fprintf(&b, "- Journal entries: %d\n", r.JournalDays)
	fmt.Fprintf(&b, "- Average mood: %s\n", avg(r.AvgMood))
	fmt.Fprintf(&b, "- Average rating: %s\n", avg(r.AvgRating))
	fmt.Fprintf(&b, "- Tasks: %d/%d completed (%.0f%%)\n", r.Tasks.TotalCompleted, r.Tasks.TotalTasks, r.Tasks.CompletionRate)
	fmt.Fprintf(&b, "- Habits: %d/%d (%.0f%%)\n\n", r.Habits.TotalCompleted, r.Habits.TotalExpected, r.Habits.OverallRate)

	if len(r.Habits.Habits) > 0 {
		b.WriteString("## Habits\n\n")
		b.WriteString("| Habit |")
		for _, d := range r.DailyBreakdown {
			fmt.Fprintf(&b, " %s |", d.DayOfWeek)
		}
		b.WriteString(" Done | Streak |\n|---|")
		for range r.DailyBreakdown {
			b.WriteString("---|")
		}
		b.WriteString("---|---|\n")
		for _, h := range r.Habits.Habits {
			fmt.Fprintf(&b, "| %s |", h.Name)
			for _, done := range h.DaysCompleted {
				mark := " "
				if done {
					mark = "x"
				}
				fmt.Fprintf(&b, " %s |", mark)
			}
			fmt.Fprintf(&b, " %d/%d | %d |\n", h.CompletedCount, h.ExpectedCount, h.Streak)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Daily Breakdown\n\n")
	b.WriteString("| Day | Date | Mood | Rating | Tasks | Habits | Productivity |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, d := range r.DailyBreakdown {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d/%d | %d/%d | %d%% |\n",
			d.DayOfWeek, d.Date, score(d.Mood), score(d.Rating),
			d.TasksCompleted, d.TasksTotal, d.HabitsComplete, d.HabitsTotal, d.Productivity)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "_Generated %s_\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	return b.String()
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func score(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d/5", *v)
}

func avg(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}
