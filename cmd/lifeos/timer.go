package main

import (
	"fmt"
	"strconv"

	"lifeos/internal/state"

	"github.com/spf13/cobra"
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Control the focus timer",
	Long: `Control the focus timer. The timer keeps running between invocations:
its start time is stored, so "lifeos timer" reports the live countdown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTimer(cmd)
	},
}

var timerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the focus timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTimer(cmd)
	},
}

var timerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start or resume the focus timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := completeTimer(cmd); err != nil {
			return err
		}
		t := sess.Snapshot().FocusTimer
		if t.IsRunning {
			fmt.Fprintln(cmd.OutOrStdout(), "Timer is already running.")
			return nil
		}
		at := now()
		remaining := t.Remaining(at)
		if remaining == 0 {
			remaining = t.Duration * 60
		}
		if _, err := apply(cmd, "Started timer", func(s *state.Snapshot) *state.Snapshot {
			return state.StartTimer(s, at, remaining)
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "▶ Started, %s left\n", clock(remaining))
		return nil
	},
}

var timerPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the focus timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := completeTimer(cmd); err != nil {
			return err
		}
		t := sess.Snapshot().FocusTimer
		if !t.IsRunning {
			fmt.Fprintln(cmd.OutOrStdout(), "Timer is not running.")
			return nil
		}
		remaining := t.Remaining(now())
		if _, err := apply(cmd, "Paused timer", func(s *state.Snapshot) *state.Snapshot {
			return state.PauseTimer(s, remaining)
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "⏸ Paused at %s\n", clock(remaining))
		return nil
	},
}

var timerResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Stop the timer and refill it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := apply(cmd, "Reset timer", state.ResetTimer); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "■ Reset to %s\n", clock(sess.Snapshot().FocusTimer.RemainingSeconds))
		return nil
	},
}

var timerDurationCmd = &cobra.Command{
	Use:   "duration <minutes>",
	Short: "Set the focus session length",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[0])
		if err != nil || minutes < 1 {
			return fmt.Errorf("invalid duration %q: want a positive number of minutes", args[0])
		}
		if _, err := apply(cmd, fmt.Sprintf("Timer length: %dm", minutes), func(s *state.Snapshot) *state.Snapshot {
			return state.ChangeDuration(s, minutes)
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Timer set to %d minutes\n", minutes)
		return nil
	},
}

// completeTimer records an expired countdown and announces it.
func completeTimer(cmd *cobra.Command) error {
	done, err := sess.Tick(ctxOf(cmd), now())
	if err != nil && !done {
		return err
	}
	if done {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Focus session complete")
		if err := notifier.TimerComplete(sess.Snapshot()); err != nil {
			logger.Printf("notification failed: %v", err)
		}
	}
	return nil
}

func printTimer(cmd *cobra.Command) error {
	if err := completeTimer(cmd); err != nil {
		return err
	}
	t := sess.Snapshot().FocusTimer
	remaining := t.Remaining(now())

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"duration":  t.Duration,
			"remaining": remaining,
			"running":   t.IsRunning,
		})
	}

	icon := "■"
	if t.IsRunning {
		icon = "▶"
	} else if remaining < t.Duration*60 && remaining > 0 {
		icon = "⏸"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s of %d:00\n", icon, clock(remaining), t.Duration)
	return nil
}

// clock formats seconds as MM:SS.
func clock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func init() {
	timerCmd.AddCommand(timerStatusCmd, timerStartCmd, timerPauseCmd, timerResetCmd, timerDurationCmd)
	rootCmd.AddCommand(timerCmd)
}
