// Package ui provides terminal user interface components for lifeos.
// This file contains tea.Cmd factories that wrap session operations. They
// run persistence asynchronously to keep the Bubble Tea event loop
// responsive; each returns a message type defined in messages.go.
package ui

import (
	"context"
	"errors"
	"time"

	"lifeos/internal/notify"
	"lifeos/internal/session"
	"lifeos/internal/state"

	tea "github.com/charmbracelet/bubbletea"
)

// tickCmd returns a command that sends a tick every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// applyCmd runs fn through the session.
func applyCmd(sess *session.Session, desc string, fn session.Mutation) tea.Cmd {
	return func() tea.Msg {
		before := sess.Snapshot()
		changed, err := sess.Apply(context.Background(), desc, fn)
		return mutationMsg{
			desc:    desc,
			before:  before,
			after:   sess.Snapshot(),
			changed: changed,
			err:     err,
		}
	}
}

// =============================================================================
// Task Commands
// =============================================================================

func addTaskCmd(sess *session.Session, key, text string) tea.Cmd {
	task := state.Task{ID: state.NewID(), Text: text}
	return applyCmd(sess, "Added: "+text, func(s *state.Snapshot) *state.Snapshot {
		return state.AddTask(s, key, task)
	})
}

func toggleTaskCmd(sess *session.Session, key string, task state.Task) tea.Cmd {
	desc := "Completed: " + task.Text
	if task.Completed {
		desc = "Reopened: " + task.Text
	}
	return applyCmd(sess, desc, func(s *state.Snapshot) *state.Snapshot {
		return state.ToggleTask(s, key, task.ID)
	})
}

func deleteTaskCmd(sess *session.Session, key string, task state.Task) tea.Cmd {
	return applyCmd(sess, "Deleted: "+task.Text, func(s *state.Snapshot) *state.Snapshot {
		return state.DeleteTask(s, key, task.ID)
	})
}

// =============================================================================
// Habit Commands
// =============================================================================

func addHabitCmd(sess *session.Session, name string, freq state.Frequency) tea.Cmd {
	return applyCmd(sess, "Added habit: "+name, func(s *state.Snapshot) *state.Snapshot {
		next, _ := state.CreateHabit(s, name, freq, 1)
		return next
	})
}

func toggleHabitCmd(sess *session.Session, key string, habit state.Habit) tea.Cmd {
	return applyCmd(sess, "Toggled: "+habit.Name, func(s *state.Snapshot) *state.Snapshot {
		return state.ToggleHabit(s, habit.ID, key)
	})
}

func deleteHabitCmd(sess *session.Session, habit state.Habit) tea.Cmd {
	return applyCmd(sess, "Deleted habit: "+habit.Name, func(s *state.Snapshot) *state.Snapshot {
		return state.DeleteHabit(s, habit.ID)
	})
}

// =============================================================================
// Day Commands
// =============================================================================

func setJournalCmd(sess *session.Session, key, text string) tea.Cmd {
	return applyCmd(sess, "Journal "+key, func(s *state.Snapshot) *state.Snapshot {
		return state.SetJournal(s, key, text)
	})
}

func setMoodCmd(sess *session.Session, key string, mood int) tea.Cmd {
	return applyCmd(sess, "Mood "+key, func(s *state.Snapshot) *state.Snapshot {
		return state.SetMood(s, key, state.Score(mood))
	})
}

func setRatingCmd(sess *session.Session, key string, rating int) tea.Cmd {
	return applyCmd(sess, "Rating "+key, func(s *state.Snapshot) *state.Snapshot {
		return state.SetRating(s, key, state.Score(rating))
	})
}

// =============================================================================
// Timer Commands
// =============================================================================

func startTimerCmd(sess *session.Session, now time.Time, displayed int) tea.Cmd {
	return applyCmd(sess, "Started timer", func(s *state.Snapshot) *state.Snapshot {
		return state.StartTimer(s, now, displayed)
	})
}

func pauseTimerCmd(sess *session.Session, remaining int) tea.Cmd {
	return applyCmd(sess, "Paused timer", func(s *state.Snapshot) *state.Snapshot {
		return state.PauseTimer(s, remaining)
	})
}

func resetTimerCmd(sess *session.Session) tea.Cmd {
	return applyCmd(sess, "Reset timer", state.ResetTimer)
}

func changeDurationCmd(sess *session.Session, minutes int) tea.Cmd {
	return applyCmd(sess, "Timer length", func(s *state.Snapshot) *state.Snapshot {
		return state.ChangeDuration(s, minutes)
	})
}

// tickTimerCmd completes the focus timer if it has run out. It produces no
// message while the timer is still counting.
func tickTimerCmd(sess *session.Session, now time.Time) tea.Cmd {
	return func() tea.Msg {
		done, err := sess.Tick(context.Background(), now)
		if !done {
			return nil
		}
		return timerCompletedMsg{snap: sess.Snapshot(), err: err}
	}
}

// =============================================================================
// Undo/Redo Commands
// =============================================================================

func undoCmd(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		desc, err := sess.Undo(context.Background())
		if errors.Is(err, session.ErrNothingToUndo) {
			return undoResultMsg{}
		}
		return undoResultMsg{desc: desc, err: err}
	}
}

func redoCmd(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		desc, err := sess.Redo(context.Background())
		if errors.Is(err, session.ErrNothingToRedo) {
			return redoResultMsg{}
		}
		return redoResultMsg{desc: desc, err: err}
	}
}

// =============================================================================
// Notification Commands
// =============================================================================

func notifyTimerCmd(n *notify.Notifier, snap *state.Snapshot) tea.Cmd {
	if !n.IsEnabled() {
		return nil
	}
	return func() tea.Msg {
		if err := n.TimerComplete(snap); err != nil {
			return notifyResultMsg{err: err}
		}
		return nil
	}
}

func notifyMilestonesCmd(n *notify.Notifier, before, after *state.Snapshot) tea.Cmd {
	if !n.IsEnabled() {
		return nil
	}
	return func() tea.Msg {
		if _, err := n.StreakMilestones(before, after); err != nil {
			return notifyResultMsg{err: err}
		}
		return nil
	}
}
