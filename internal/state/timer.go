package state

import "time"

// Focus timer transitions. The stored RemainingSeconds is a checkpoint taken
// at start and pause; while running, the live value is derived from
// LastStartedAt by Remaining. The caller owns the wall-clock ticking.

// Remaining returns the seconds left at now.
func (t FocusTimer) Remaining(now time.Time) int {
	if !t.IsRunning || t.LastStartedAt == nil {
		return max(t.RemainingSeconds, 0)
	}
	elapsed := (now.UnixMilli() - *t.LastStartedAt) / 1000
	if elapsed < 0 {
		elapsed = 0
	}
	return max(t.RemainingSeconds-int(elapsed), 0)
}

// Expired reports whether a running timer has reached zero at now.
func (t FocusTimer) Expired(now time.Time) bool {
	return t.IsRunning && t.Remaining(now) == 0
}

// StartTimer starts the countdown from displayed seconds. A running timer is
// left alone.
func StartTimer(s *Snapshot, now time.Time, displayed int) *Snapshot {
	if s.FocusTimer.IsRunning {
		return s
	}
	started := now.UnixMilli()
	next := s.shallow()
	next.FocusTimer = FocusTimer{
		Duration:         s.FocusTimer.Duration,
		RemainingSeconds: max(displayed, 0),
		LastStartedAt:    &started,
		IsRunning:        true,
	}
	return next
}

// PauseTimer stops the countdown and checkpoints remaining seconds. Passing
// 0 records completion. A stopped timer is left alone.
func PauseTimer(s *Snapshot, remaining int) *Snapshot {
	if !s.FocusTimer.IsRunning {
		return s
	}
	next := s.shallow()
	next.FocusTimer = FocusTimer{
		Duration:         s.FocusTimer.Duration,
		RemainingSeconds: max(remaining, 0),
	}
	return next
}

// ResetTimer stops the countdown and refills it to the full duration.
func ResetTimer(s *Snapshot) *Snapshot {
	full := FocusTimer{
		Duration:         s.FocusTimer.Duration,
		RemainingSeconds: s.FocusTimer.Duration * 60,
	}
	if timerEqual(s.FocusTimer, full) {
		return s
	}
	next := s.shallow()
	next.FocusTimer = full
	return next
}

// ChangeDuration stops the countdown and sets a new length in minutes.
// Non-positive lengths are ignored.
func ChangeDuration(s *Snapshot, minutes int) *Snapshot {
	if minutes < 1 {
		return s
	}
	t := FocusTimer{
		Duration:         minutes,
		RemainingSeconds: minutes * 60,
	}
	if timerEqual(s.FocusTimer, t) {
		return s
	}
	next := s.shallow()
	next.FocusTimer = t
	return next
}

// CompleteTimer records the terminal pause when the countdown has run out.
// It returns the input and false when the timer is not expired.
func CompleteTimer(s *Snapshot, now time.Time) (*Snapshot, bool) {
	if !s.FocusTimer.Expired(now) {
		return s, false
	}
	return PauseTimer(s, 0), true
}

func timerEqual(a, b FocusTimer) bool {
	if a.Duration != b.Duration || a.RemainingSeconds != b.RemainingSeconds || a.IsRunning != b.IsRunning {
		return false
	}
	if a.LastStartedAt == nil || b.LastStartedAt == nil {
		return a.LastStartedAt == nil && b.LastStartedAt == nil
	}
	return *a.LastStartedAt == *b.LastStartedAt
}
