package main

import (
	"fmt"
	"strings"

	"lifeos/internal/calendar"
	"lifeos/internal/insights"
	"lifeos/internal/reports"

	"github.com/spf13/cobra"
)

var (
	reportFormat string
	reportDate   string
	calendarMark bool
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"stats"},
	Short:   "Show metrics over recent days",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := sess.Snapshot()
		windows := appConfig.MetricsWindows()
		all := make([]insights.Metrics, 0, len(windows))
		for _, n := range windows {
			all = append(all, insights.ComputeMetrics(snap, n))
		}

		if jsonOutput {
			out := map[string]interface{}{"metrics": all}
			if len(all) > 0 {
				out["balance"] = insights.Balance(all[0])
			}
			return printJSON(cmd.OutOrStdout(), out)
		}

		w := cmd.OutOrStdout()
		for _, m := range all {
			fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Last %d recorded days (%d found)", m.Window, m.DaysInWindow)))
			fmt.Fprintf(w, "  Mood:         %s\n", avgText(m.AvgMood))
			fmt.Fprintf(w, "  Rating:       %s\n", avgText(m.AvgRating))
			fmt.Fprintf(w, "  Journal:      %d%% (%d days)\n", m.JournalConsistency, m.TotalJournalDays)
			fmt.Fprintf(w, "  Habits:       %.0f%% (%d done)\n", m.HabitCompletionRate*100, m.TotalHabitsCompleted)
			fmt.Fprintf(w, "  Tasks:        %.0f%% (%d/%d)\n", m.TaskCompletionRate*100, m.TotalTasksCompleted, m.TotalTasks)
			fmt.Fprintf(w, "  Productivity: %d%%\n\n", m.ProductivityScore)
		}
		if len(all) > 0 {
			r := insights.Balance(all[0])
			fmt.Fprintln(w, headingStyle.Render("Balance"))
			fmt.Fprintf(w, "  mood %d  efficiency %d  writing %d  habits %d  tasks %d\n", r.Mood, r.Efficiency, r.Writing, r.Habits, r.Tasks)
		}
		if best := insights.BestStreak(snap); best != nil {
			fmt.Fprintf(w, "\nBest streak: %s, %d days\n", best.HabitName, best.Streak)
		}
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <date-a> <date-b>",
	Short: "Compare two days (a minus b)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := dateOr(args[0])
		if err != nil {
			return err
		}
		b, err := dateOr(args[1])
		if err != nil {
			return err
		}
		snap := sess.Snapshot()
		c := insights.CompareDays(snap, a, b)

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"a":          a,
				"b":          b,
				"comparison": c,
			})
		}

		w := cmd.OutOrStdout()
		_, okA := snap.Days[a]
		_, okB := snap.Days[b]
		if !okA || !okB {
			fmt.Fprintf(w, "Nothing to compare: %s and %s must both be recorded.\n", a, b)
			return nil
		}
		fmt.Fprintf(w, "%s vs %s\n", a, b)
		fmt.Fprintf(w, "  Mood:    %s\n", diffText(c.MoodDiff))
		fmt.Fprintf(w, "  Rating:  %s\n", diffText(c.RatingDiff))
		fmt.Fprintf(w, "  Habits:  %+d\n", c.HabitsDiff)
		fmt.Fprintf(w, "  Tasks:   %+d\n", c.TasksDiff)
		fmt.Fprintf(w, "  Journal: %+d chars\n", c.JournalLengthDiff)
		return nil
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar [YYYY-MM]",
	Short: "List the recorded days of a month",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		month := today()[:7]
		if len(args) == 1 {
			month = args[0]
			if !calendar.Valid(month + "-01") {
				return fmt.Errorf("invalid month %q: want YYYY-MM", month)
			}
		}
		snap := sess.Snapshot()
		dates := insights.ActiveDates(snap, month)

		if jsonOutput {
			if dates == nil {
				dates = []string{}
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"month": month,
				"dates": dates,
			})
		}

		w := cmd.OutOrStdout()
		if len(dates) == 0 {
			fmt.Fprintf(w, "No recorded days in %s.\n", month)
			return nil
		}
		fmt.Fprintf(w, "%s: %d recorded days\n", month, len(dates))
		for _, key := range dates {
			line := key
			if calendarMark {
				line += "  " + strings.Repeat("■", insights.DayProductivityScore(snap, key)/10)
			}
			fmt.Fprintln(w, line)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate daily or weekly reports",
}

var reportDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Report on one day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := dateOr(reportDate)
		if err != nil {
			return err
		}
		r, err := reports.NewGenerator(sess.Snapshot()).GenerateDaily(key)
		if err != nil {
			return err
		}
		if reportFormat == "json" || jsonOutput {
			data, err := reports.FormatJSON(r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), reports.FormatDailyMarkdown(r))
		return nil
	},
}

var reportWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Report on the week containing a day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := dateOr(reportDate)
		if err != nil {
			return err
		}
		r, err := reports.NewGenerator(sess.Snapshot()).GenerateWeekly(key)
		if err != nil {
			return err
		}
		if reportFormat == "json" || jsonOutput {
			data, err := reports.FormatJSON(r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), reports.FormatWeeklyMarkdown(r))
		return nil
	},
}

func avgText(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

func diffText(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%+d", *v)
}

func validateReportFormat(cmd *cobra.Command, args []string) error {
	if reportFormat != "md" && reportFormat != "json" {
		return fmt.Errorf("invalid format %q: want md or json", reportFormat)
	}
	return nil
}

func init() {
	calendarCmd.Flags().BoolVar(&calendarMark, "score", false, "Show a productivity bar per day")

	reportCmd.PersistentFlags().StringVar(&reportFormat, "format", "md", "Output format: md or json")
	reportCmd.PersistentFlags().StringVarP(&reportDate, "date", "d", "", "Day as YYYY-MM-DD, today, yesterday or tomorrow")
	reportDailyCmd.PreRunE = validateReportFormat
	reportWeeklyCmd.PreRunE = validateReportFormat
	reportCmd.AddCommand(reportDailyCmd, reportWeeklyCmd)

	rootCmd.AddCommand(dashboardCmd, compareCmd, calendarCmd, reportCmd)
}
