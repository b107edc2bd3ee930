// Package notify sends desktop notifications for focus-timer completion and
// habit streak milestones. Delivery goes through beeep, which picks the
// native mechanism for the platform.
package notify

import (
	"fmt"

	"lifeos/internal/state"

	"github.com/gen2brain/beeep"
)

// Milestones are the streak lengths that trigger a notification.
var Milestones = []int{7, 30, 100}

// Sender delivers a notification. Alert is the variant that also plays a
// sound.
type Sender interface {
	Notify(title, message string) error
	Alert(title, message string) error
}

type beeepSender struct{}

func (beeepSender) Notify(title, message string) error {
	return beeep.Notify(title, message, "")
}

func (beeepSender) Alert(title, message string) error {
	return beeep.Alert(title, message, "")
}

// Config holds notification configuration.
type Config struct {
	Enabled bool
	Sound   bool
}

// Notifier sends notifications if both the config and the user's settings
// allow it.
type Notifier struct {
	cfg    Config
	sender Sender
}

// New creates a notifier that delivers through beeep.
func New(cfg Config) *Notifier {
	return &Notifier{cfg: cfg, sender: beeepSender{}}
}

// NewWithSender creates a notifier with a custom delivery mechanism.
func NewWithSender(cfg Config, sender Sender) *Notifier {
	return &Notifier{cfg: cfg, sender: sender}
}

// IsEnabled returns true if notifications are enabled in the config.
func (n *Notifier) IsEnabled() bool {
	return n != nil && n.cfg.Enabled
}

// allowed checks the config switch and the per-user setting in s.
func (n *Notifier) allowed(s *state.Snapshot) bool {
	return n.IsEnabled() && s != nil && s.User.Settings.Notifications
}

// Notify displays a notification if allowed for s.
func (n *Notifier) Notify(s *state.Snapshot, title, message string) error {
	if !n.allowed(s) {
		return nil
	}
	if n.cfg.Sound {
		return n.sender.Alert(title, message)
	}
	return n.sender.Notify(title, message)
}

// TimerComplete announces the end of a focus session.
func (n *Notifier) TimerComplete(s *state.Snapshot) error {
	message := fmt.Sprintf("Your %d minute focus session is complete.", s.FocusTimer.Duration)
	return n.Notify(s, "Focus session complete", message)
}

// StreakMilestones announces every habit whose streak reached a milestone
// between before and after. It returns the ids it announced.
func (n *Notifier) StreakMilestones(before, after *state.Snapshot) ([]string, error) {
	var announced []string
	for _, h := range after.SortedHabits() {
		prev := 0
		if old, ok := before.Habits[h.ID]; ok {
			prev = old.Streak
		}
		if h.Streak <= prev || !IsMilestone(h.Streak) {
			continue
		}
		message := fmt.Sprintf("%s: %d days in a row.", h.Name, h.Streak)
		if err := n.Notify(after, "Streak milestone", message); err != nil {
			return announced, err
		}
		if n.allowed(after) {
			announced = append(announced, h.ID)
		}
	}
	return announced, nil
}

// IsMilestone reports whether streak is one of Milestones.
func IsMilestone(streak int) bool {
	for _, m := range Milestones {
		if streak == m {
			return true
		}
	}
	return false
}
