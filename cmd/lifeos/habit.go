package main

import (
	"fmt"
	"strings"

	"lifeos/internal/insights"
	"lifeos/internal/session"
	"lifeos/internal/state"

	"github.com/spf13/cobra"
)

var (
	habitFreq   string
	habitTarget int
	habitName   string
	habitDate   string
	habitForce  bool

	goalHabits   string
	goalDeadline string
	goalTitle    string
	goalNoDue    bool
	goalForce    bool
)

// resolveHabit finds a habit by id, by exact name, or by a fuzzy name match
// that is unambiguous.
func resolveHabit(snap *state.Snapshot, ref string) (state.Habit, error) {
	if h, ok := snap.Habits[ref]; ok {
		return h, nil
	}
	for _, h := range snap.SortedHabits() {
		if strings.EqualFold(h.Name, ref) {
			return h, nil
		}
	}
	matches := insights.FindHabits(snap, ref)
	switch len(matches) {
	case 0:
		return state.Habit{}, fmt.Errorf("habit not found: %s", ref)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, 0, len(matches))
		for _, h := range matches {
			names = append(names, h.Name)
		}
		return state.Habit{}, fmt.Errorf("%q matches several habits: %s", ref, strings.Join(names, ", "))
	}
}

// resolveGoal finds a goal by id or unique id prefix.
func resolveGoal(snap *state.Snapshot, ref string) (state.Goal, error) {
	if g, ok := snap.Goals[ref]; ok {
		return g, nil
	}
	var found []state.Goal
	for _, id := range snap.GoalIDs() {
		if strings.HasPrefix(id, ref) {
			found = append(found, snap.Goals[id])
		}
	}
	switch len(found) {
	case 0:
		return state.Goal{}, fmt.Errorf("goal not found: %s", ref)
	case 1:
		return found[0], nil
	default:
		return state.Goal{}, fmt.Errorf("goal id %q is ambiguous (%d matches)", ref, len(found))
	}
}

// splitIDs parses a comma-separated list of habit references into ids.
func splitIDs(snap *state.Snapshot, raw string) ([]string, error) {
	var ids []string
	for _, ref := range strings.Split(raw, ",") {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		h, err := resolveHabit(snap, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// =============================================================================
// Habits
// =============================================================================

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage habits",
}

var habitListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List habits with their streaks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := sess.Snapshot()
		habits := snap.SortedHabits()
		key := today()

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"habits": habits,
				"count":  len(habits),
			})
		}

		if len(habits) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No habits yet. Add one with 'lifeos habit add NAME'.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Habits (%d):\n\n", len(habits))
		for _, h := range habits {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-24s %-7s x%d  %s  %s\n",
				checkmark(h.History[key]), h.Name, h.Frequency, h.Target,
				streakStyle.Render(fmt.Sprintf("%3dd", h.Streak)), mutedStyle.Render(h.ID))
		}
		if best := insights.BestStreak(snap); best != nil && best.Streak > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\nBest streak: %s, %d days\n", best.HabitName, best.Streak)
		}
		return nil
	},
}

var habitAddCmd = &cobra.Command{
	Use:   "add <name...>",
	Short: "Add a habit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := state.CleanName(strings.Join(args, " "), state.MaxHabitNameLen)
		if err != nil {
			return fmt.Errorf("invalid habit name: %w", err)
		}
		freq, err := state.ParseFrequency(habitFreq)
		if err != nil {
			return err
		}
		if habitTarget < 1 {
			return fmt.Errorf("target must be at least 1")
		}

		id, err := session.Update(ctxOf(cmd), sess, "Added habit: "+name, func(s *state.Snapshot) (*state.Snapshot, string) {
			return state.CreateHabit(s, name, freq, habitTarget)
		})
		if err != nil {
			logger.Printf("habit added but not saved: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added habit %s (%s, id %s)\n", name, freq, id)
		return nil
	},
}

var habitEditCmd = &cobra.Command{
	Use:   "edit <habit>",
	Short: "Rename a habit or change its frequency or target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := resolveHabit(sess.Snapshot(), args[0])
		if err != nil {
			return err
		}

		var patch state.HabitPatch
		if cmd.Flags().Changed("name") {
			name, err := state.CleanName(habitName, state.MaxHabitNameLen)
			if err != nil {
				return fmt.Errorf("invalid habit name: %w", err)
			}
			patch.Name = &name
		}
		if cmd.Flags().Changed("frequency") {
			freq, err := state.ParseFrequency(habitFreq)
			if err != nil {
				return err
			}
			patch.Frequency = &freq
		}
		if cmd.Flags().Changed("target") {
			if habitTarget < 1 {
				return fmt.Errorf("target must be at least 1")
			}
			patch.Target = &habitTarget
		}

		changed, err := apply(cmd, "Edited habit: "+h.Name, func(s *state.Snapshot) *state.Snapshot {
			return state.UpdateHabit(s, h.ID, patch)
		})
		if err != nil {
			return err
		}
		if !changed {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to change.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated habit %s\n", sess.Snapshot().Habits[h.ID].Name)
		return nil
	},
}

var habitRmCmd = &cobra.Command{
	Use:     "rm <habit>",
	Aliases: []string{"delete"},
	Short:   "Delete a habit, its history and its goal links",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := resolveHabit(sess.Snapshot(), args[0])
		if err != nil {
			return err
		}
		if appConfig.UX.ConfirmDeletions && !habitForce {
			ok, err := confirm(cmd, fmt.Sprintf("Delete habit %q and its history?", h.Name))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		if _, err := apply(cmd, "Deleted habit: "+h.Name, func(s *state.Snapshot) *state.Snapshot {
			return state.DeleteHabit(s, h.ID)
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted habit %s\n", h.Name)
		return nil
	},
}

var habitToggleCmd = &cobra.Command{
	Use:   "toggle <habit>",
	Short: "Toggle a habit's completion for a day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := dateOr(habitDate)
		if err != nil {
			return err
		}
		before := sess.Snapshot()
		h, err := resolveHabit(before, args[0])
		if err != nil {
			return err
		}

		if _, err := apply(cmd, "Toggled: "+h.Name, func(s *state.Snapshot) *state.Snapshot {
			return state.ToggleHabit(s, h.ID, key)
		}); err != nil {
			return err
		}

		after := sess.Snapshot()
		updated := after.Habits[h.ID]
		if updated.History[key] {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s done on %s (streak %d)\n", h.Name, key, updated.Streak)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s not done on %s (streak %d)\n", h.Name, key, updated.Streak)
		}

		if _, err := notifier.StreakMilestones(before, after); err != nil {
			logger.Printf("notification failed: %v", err)
		}
		return nil
	},
}

var habitFindCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Fuzzy-find habits by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches := insights.FindHabits(sess.Snapshot(), strings.Join(args, " "))
		if jsonOutput {
			if matches == nil {
				matches = []state.Habit{}
			}
			return printJSON(cmd.OutOrStdout(), matches)
		}
		if len(matches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching habits.")
			return nil
		}
		for _, h := range matches {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", h.Name, mutedStyle.Render(h.ID))
		}
		return nil
	},
}

// =============================================================================
// Goals
// =============================================================================

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage goals linked to habits",
}

var goalListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List goals with their progress",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := sess.Snapshot()
		key := today()

		type goalView struct {
			state.Goal
			Tier      insights.Tier `json:"tier"`
			DaysUntil *int          `json:"daysUntil"`
		}
		goals := make([]goalView, 0, len(snap.Goals))
		for _, id := range snap.GoalIDs() {
			g := snap.Goals[id]
			g.Progress = insights.GoalProgress(snap, g)
			v := goalView{Goal: g, Tier: insights.ProgressTier(g.Progress)}
			if g.Deadline != nil {
				n := insights.DaysUntil(*g.Deadline, key)
				v.DaysUntil = &n
			}
			goals = append(goals, v)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"goals": goals,
				"count": len(goals),
			})
		}

		if len(goals) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No goals yet. Add one with 'lifeos goal add TITLE --habits NAME'.")
			return nil
		}
		for _, g := range goals {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %3d%% (%s)  %s\n", headingStyle.Render(g.Title), g.Progress, g.Tier, mutedStyle.Render(g.ID))
			names := make([]string, 0, len(g.LinkedHabits))
			for _, hid := range g.LinkedHabits {
				names = append(names, snap.Habits[hid].Name)
			}
			if len(names) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "   habits: %s\n", strings.Join(names, ", "))
			}
			if g.DaysUntil != nil {
				switch n := *g.DaysUntil; {
				case n < 0:
					fmt.Fprintf(cmd.OutOrStdout(), "   deadline %s (%d days ago)\n", *g.Deadline, -n)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "   deadline %s (in %d days)\n", *g.Deadline, n)
				}
			}
		}
		return nil
	},
}

var goalAddCmd = &cobra.Command{
	Use:   "add <title...>",
	Short: "Add a goal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, err := state.CleanName(strings.Join(args, " "), state.MaxGoalTitleLen)
		if err != nil {
			return fmt.Errorf("invalid goal title: %w", err)
		}
		linked, err := splitIDs(sess.Snapshot(), goalHabits)
		if err != nil {
			return err
		}
		var deadline *string
		if goalDeadline != "" {
			d, err := dateOr(goalDeadline)
			if err != nil {
				return err
			}
			deadline = &d
		}

		id, err := session.Update(ctxOf(cmd), sess, "Created goal: "+title, func(s *state.Snapshot) (*state.Snapshot, string) {
			return state.CreateGoal(s, title, linked, deadline)
		})
		if err != nil {
			logger.Printf("goal added but not saved: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added goal %s (id %s, %d linked habits)\n", title, id, len(linked))
		return nil
	},
}

var goalEditCmd = &cobra.Command{
	Use:   "edit <goal>",
	Short: "Change a goal's title or deadline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := resolveGoal(sess.Snapshot(), args[0])
		if err != nil {
			return err
		}

		var patch state.GoalPatch
		if cmd.Flags().Changed("title") {
			title, err := state.CleanName(goalTitle, state.MaxGoalTitleLen)
			if err != nil {
				return fmt.Errorf("invalid goal title: %w", err)
			}
			patch.Title = &title
		}
		if cmd.Flags().Changed("deadline") {
			d, err := dateOr(goalDeadline)
			if err != nil {
				return err
			}
			patch.Deadline = &d
		}
		patch.ClearDeadline = goalNoDue && g.Deadline != nil

		if patch.Title == nil && patch.Deadline == nil && !patch.ClearDeadline {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to change.")
			return nil
		}
		return editGoal(cmd, g, patch)
	},
}

var goalLinkCmd = &cobra.Command{
	Use:   "link <goal> <habit,...>",
	Short: "Replace the habits linked to a goal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := sess.Snapshot()
		g, err := resolveGoal(snap, args[0])
		if err != nil {
			return err
		}
		linked, err := splitIDs(snap, args[1])
		if err != nil {
			return err
		}
		return editGoal(cmd, g, state.GoalPatch{LinkedHabits: &linked})
	},
}

// editGoal applies patch and reports the goal's new progress.
func editGoal(cmd *cobra.Command, g state.Goal, patch state.GoalPatch) error {
	changed, err := apply(cmd, "Edited goal: "+g.Title, func(s *state.Snapshot) *state.Snapshot {
		return state.UpdateGoal(s, g.ID, patch)
	})
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to change.")
		return nil
	}
	updated := sess.Snapshot().Goals[g.ID]
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated goal %s (%d%%)\n", updated.Title, updated.Progress)
	return nil
}

var goalRmCmd = &cobra.Command{
	Use:     "rm <goal>",
	Aliases: []string{"delete"},
	Short:   "Delete a goal",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := resolveGoal(sess.Snapshot(), args[0])
		if err != nil {
			return err
		}
		if appConfig.UX.ConfirmDeletions && !goalForce {
			ok, err := confirm(cmd, fmt.Sprintf("Delete goal %q?", g.Title))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}
		if _, err := apply(cmd, "Deleted goal: "+g.Title, func(s *state.Snapshot) *state.Snapshot {
			return state.DeleteGoal(s, g.ID)
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted goal %s\n", g.Title)
		return nil
	},
}

func init() {
	habitAddCmd.Flags().StringVarP(&habitFreq, "frequency", "f", "daily", "Frequency: daily, weekly or custom")
	habitAddCmd.Flags().IntVarP(&habitTarget, "target", "t", 1, "Completions per period")
	habitEditCmd.Flags().StringVarP(&habitName, "name", "n", "", "New name")
	habitEditCmd.Flags().StringVarP(&habitFreq, "frequency", "f", "daily", "Frequency: daily, weekly or custom")
	habitEditCmd.Flags().IntVarP(&habitTarget, "target", "t", 1, "Completions per period")
	habitRmCmd.Flags().BoolVarP(&habitForce, "force", "f", false, "Skip confirmation prompt")
	habitToggleCmd.Flags().StringVarP(&habitDate, "date", "d", "", "Day as YYYY-MM-DD, today, yesterday or tomorrow")

	goalAddCmd.Flags().StringVar(&goalHabits, "habits", "", "Comma-separated habit ids or names")
	goalAddCmd.Flags().StringVar(&goalDeadline, "deadline", "", "Deadline as YYYY-MM-DD")
	goalEditCmd.Flags().StringVar(&goalTitle, "title", "", "New title")
	goalEditCmd.Flags().StringVar(&goalDeadline, "deadline", "", "New deadline as YYYY-MM-DD")
	goalEditCmd.Flags().BoolVar(&goalNoDue, "no-deadline", false, "Remove the deadline")
	goalRmCmd.Flags().BoolVarP(&goalForce, "force", "f", false, "Skip confirmation prompt")

	habitCmd.AddCommand(habitListCmd, habitAddCmd, habitEditCmd, habitRmCmd, habitToggleCmd, habitFindCmd)
	goalCmd.AddCommand(goalListCmd, goalAddCmd, goalEditCmd, goalRmCmd, goalLinkCmd)
	rootCmd.AddCommand(habitCmd, goalCmd)
}
