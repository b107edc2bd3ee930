package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"lifeos/internal/insights"
	"lifeos/internal/state"

	"github.com/spf13/cobra"
)

var (
	dayDate     string
	journalClr  bool
	alarmRepeat string
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show a day: journal, mood, rating, tasks, habits and alarms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := dateOr(dayDate)
		if err != nil {
			return err
		}
		snap := sess.Snapshot()
		d, recorded := snap.Day(key)

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"date":         key,
				"recorded":     recorded,
				"journal":      d.Journal,
				"mood":         d.Mood,
				"rating":       d.Rating,
				"habits":       d.Habits,
				"tasks":        d.Tasks,
				"alarms":       d.Alarms,
				"productivity": insights.DayProductivityScore(snap, key),
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headingStyle.Render(key))
		if !recorded {
			fmt.Fprintln(out, mutedStyle.Render("Nothing recorded yet."))
		}
		fmt.Fprintf(out, "Mood: %s  Rating: %s  Productivity: %d\n",
			scoreText(d.Mood), scoreText(d.Rating), insights.DayProductivityScore(snap, key))

		if d.Journal != "" {
			fmt.Fprintf(out, "\nJournal:\n%s\n", d.Journal)
		}

		fmt.Fprintln(out, "\nHabits:")
		for _, h := range snap.SortedHabits() {
			line := fmt.Sprintf("  %s %s", checkmark(h.History[key]), h.Name)
			if h.Streak > 0 {
				line += " " + streakStyle.Render(fmt.Sprintf("%dd", h.Streak))
			}
			fmt.Fprintln(out, line)
		}

		if len(d.Tasks) > 0 {
			fmt.Fprintln(out, "\nTasks:")
			printTasks(cmd, d.Tasks)
		}
		if len(d.Alarms) > 0 {
			fmt.Fprintln(out, "\nAlarms:")
			printAlarms(cmd, d.Alarms)
		}
		return nil
	},
}

var journalCmd = &cobra.Command{
	Use:   "journal [text...]",
	Short: "Show or set the journal entry of a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := dateOr(dayDate)
		if err != nil {
			return err
		}

		if len(args) == 0 && !journalClr {
			d, _ := sess.Snapshot().Day(key)
			if d.Journal == "" {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No journal entry for "+key))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.Journal)
			return nil
		}

		text := strings.TrimSpace(strings.Join(args, " "))
		if _, err := apply(cmd, "Journal "+key, func(s *state.Snapshot) *state.Snapshot {
			return state.SetJournal(s, key, text)
		}); err != nil {
			return err
		}
		if text == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared journal for %s\n", key)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved journal for %s (%d characters)\n", key, len([]rune(text)))
		}
		return nil
	},
}

// scoreCommand builds the mood and rating commands, which only differ in
// the field they set.
func scoreCommand(name string, set func(*state.Snapshot, string, *int) *state.Snapshot) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <1-5|clear>",
		Short: fmt.Sprintf("Set the %s of a day (1 to 5)", name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := dateOr(dayDate)
			if err != nil {
				return err
			}

			var value *int
			if args[0] != "clear" {
				n, err := strconv.Atoi(args[0])
				if err != nil || !state.ValidScore(n) {
					return fmt.Errorf("invalid %s %q: must be %d to %d or clear", name, args[0], state.MinScore, state.MaxScore)
				}
				value = &n
			}

			if _, err := apply(cmd, "Set "+name, func(s *state.Snapshot) *state.Snapshot {
				return set(s, key, value)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s for %s: %s\n", strings.ToUpper(name[:1])+name[1:], key, scoreText(value))
			return nil
		},
	}
}

var (
	moodCmd   = scoreCommand("mood", state.SetMood)
	ratingCmd = scoreCommand("rating", state.SetRating)
)

// =============================================================================
// Tasks
// =============================================================================

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage the tasks of a day",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <text...>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := dateOr(dayDate)
		if err != nil {
			return err
		}
		text, err := state.CleanName(strings.Join(args, " "), state.MaxTaskTextLen)
		if err != nil {
			return fmt.Errorf("invalid task: %w", err)
		}

		task := state.Task{ID: state.NewID(), Text: text}
		if _, err := apply(cmd, "Added: "+text, func(s *state.Snapshot) *state.Snapshot {
			return state.AddTask(s, key, task)
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added task to %s: %s\n", key, text)
		return nil
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <number|id>",
	Short: "Toggle a task between done and pending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := dateOr(dayDate)
		if err != nil {
			return err
		}
		d, _ := sess.Snapshot().Day(key)
		task, err := resolveTask(d.Tasks, args[0])
		if err != nil {
			return err
		}

		if _, err := apply(cmd, "Toggled: "+task.Text, func(s *state.Snapshot) *state.Snapshot {
			return state.ToggleTask(s, key, task.ID)
		}); err != nil {
			return err
		}
		if task.Completed {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Reopened: %s\n", task.Text)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Completed: %s\n", task.Text)
		}
		return nil
	},
}

var taskRmCmd = &cobra.Command{
	Use:     "rm <number|id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := dateOr(dayDate)
		if err != nil {
			return err
		}
		d, _ := sess.Snapshot().Day(key)
		task, err := resolveTask(d.Tasks, args[0])
		if err != nil {
			return err
		}

		if _, err := apply(cmd, "Deleted: "+task.Text, func(s *state.Snapshot) *state.Snapshot {
			return state.DeleteTask(s, key, task.ID)
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted: %s\n", task.Text)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the tasks of a day",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := dateOr(dayDate)
		if err != nil {
			return err
		}
		d, _ := sess.Snapshot().Day(key)

		if jsonOutput {
			tasks := d.Tasks
			if tasks == nil {
				tasks = []state.Task{}
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"date":  key,
				"tasks": tasks,
				"count": len(tasks),
			})
		}

		if len(d.Tasks) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No tasks for %s.\n", key)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Tasks for %s (%d/%d done):\n", key, d.CompletedTasks(), len(d.Tasks))
		printTasks(cmd, d.Tasks)
		return nil
	},
}

func printTasks(cmd *cobra.Command, tasks []state.Task) {
	for i, t := range tasks {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s %s\n", i+1, checkmark(t.Completed), t.Text)
	}
}

// resolveTask finds a task by its 1-based position or by an id prefix.
func resolveTask(tasks []state.Task, ref string) (state.Task, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(tasks) {
			return state.Task{}, fmt.Errorf("no task number %d (the day has %d)", n, len(tasks))
		}
		return tasks[n-1], nil
	}

	var found []state.Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return state.Task{}, fmt.Errorf("task not found: %s", ref)
	case 1:
		return found[0], nil
	default:
		return state.Task{}, fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(found))
	}
}

// =============================================================================
// Alarms
// =============================================================================

var alarmCmd = &cobra.Command{
	Use:   "alarm",
	Short: "Manage the alarms of a day",
}

var alarmAddCmd = &cobra.Command{
	Use:   "add <HH:MM> <label...>",
	Short: "Add an alarm",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := dateOr(dayDate)
		if err != nil {
			return err
		}
		at, err := time.Parse("15:04", args[0])
		if err != nil {
			return fmt.Errorf("invalid time %q: want HH:MM", args[0])
		}
		label, err := state.CleanName(strings.Join(args[1:], " "), state.MaxAlarmLabel)
		if err != nil {
			return fmt.Errorf("invalid label: %w", err)
		}
		repeat, err := state.ParseRepeat(alarmRepeat)
		if err != nil {
			return err
		}

		alarm := state.Alarm{ID: state.NewID(), Time: at.Format("15:04"), Label: label, Repeat: repeat}
		if _, err := apply(cmd, "Alarm "+alarm.Time, func(s *state.Snapshot) *state.Snapshot {
			return state.AddAlarm(s, key, alarm)
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Alarm %s %s (%s) on %s\n", alarm.Time, label, repeat, key)
		return nil
	},
}

var alarmRmCmd = &cobra.Command{
	Use:   "rm <number|id>",
	Short: "Remove an alarm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := dateOr(dayDate)
		if err != nil {
			return err
		}
		d, _ := sess.Snapshot().Day(key)

		var alarm *state.Alarm
		if n, err := strconv.Atoi(args[0]); err == nil && n >= 1 && n <= len(d.Alarms) {
			alarm = &d.Alarms[n-1]
		} else {
			for i := range d.Alarms {
				if d.Alarms[i].ID == args[0] {
					alarm = &d.Alarms[i]
				}
			}
		}
		if alarm == nil {
			return fmt.Errorf("alarm not found: %s", args[0])
		}

		id := alarm.ID
		if _, err := apply(cmd, "Removed alarm", func(s *state.Snapshot) *state.Snapshot {
			return state.RemoveAlarm(s, key, id)
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed alarm %s %s\n", alarm.Time, alarm.Label)
		return nil
	},
}

var alarmListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the alarms of a day",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := dateOr(dayDate)
		if err != nil {
			return err
		}
		d, _ := sess.Snapshot().Day(key)
		if jsonOutput {
			alarms := d.Alarms
			if alarms == nil {
				alarms = []state.Alarm{}
			}
			return printJSON(cmd.OutOrStdout(), alarms)
		}
		if len(d.Alarms) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No alarms for %s.\n", key)
			return nil
		}
		printAlarms(cmd, d.Alarms)
		return nil
	},
}

func printAlarms(cmd *cobra.Command, alarms []state.Alarm) {
	for i, a := range alarms {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s %s %s\n", i+1, a.Time, a.Label, mutedStyle.Render("("+string(a.Repeat)+")"))
	}
}

func init() {
	for _, c := range []*cobra.Command{todayCmd, journalCmd, moodCmd, ratingCmd, taskCmd, alarmCmd} {
		c.PersistentFlags().StringVarP(&dayDate, "date", "d", "", "Day as YYYY-MM-DD, today, yesterday or tomorrow")
	}
	journalCmd.Flags().BoolVar(&journalClr, "clear", false, "Clear the journal entry")
	alarmAddCmd.Flags().StringVarP(&alarmRepeat, "repeat", "r", "never", "Repeat: daily, weekdays, weekends or never")

	taskCmd.AddCommand(taskAddCmd, taskDoneCmd, taskRmCmd, taskListCmd)
	alarmCmd.AddCommand(alarmAddCmd, alarmRmCmd, alarmListCmd)
	rootCmd.AddCommand(todayCmd, journalCmd, moodCmd, ratingCmd, taskCmd, alarmCmd)
}
