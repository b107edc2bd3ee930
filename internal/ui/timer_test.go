package ui

import (
	"strings"
	"testing"
	"time"

	"lifeos/internal/config"
	"lifeos/internal/session"
)

func newTimerPane(t *testing.T, sess *session.Session, now time.Time) *TimerPane {
	t.Helper()
	pane := NewTimerPane(sess, createTestStyles(), &config.KeysConfig{})
	pane.SetSize(40, 20)
	pane.SetFocused(true)
	pane.now = func() time.Time { return now }
	pane.setTimer(sess.Snapshot().FocusTimer)
	return pane
}

func TestTimerPaneView_Stopped(t *testing.T) {
	setupTest(t)
	pane := newTimerPane(t, createTestSession(t), time.Now())

	output := pane.View()
	for _, want := range []string{"FOCUS TIMER", "■ 25:00", "Length: 25 min", "Press space to start"} {
		if !strings.Contains(output, want) {
			t.Errorf("view missing %q:\n%s", want, output)
		}
	}
}

func TestTimerPane_StartAndPause(t *testing.T) {
	setupTest(t)
	sess := createTestSession(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	pane := newTimerPane(t, sess, now)

	exec(t, pane.Update(keyMsg(" ")))
	pane.setTimer(sess.Snapshot().FocusTimer)
	if !pane.IsRunning() {
		t.Fatal("space should start the timer")
	}

	now = now.Add(90 * time.Second)
	pane.now = func() time.Time { return now }
	if got := pane.Remaining(); got != 25*60-90 {
		t.Errorf("Remaining() = %d, want %d", got, 25*60-90)
	}
	if !strings.Contains(pane.View(), "▶ 23:30") {
		t.Errorf("running view should show the live clock:\n%s", pane.View())
	}

	exec(t, pane.Update(keyMsg(" ")))
	timer := sess.Snapshot().FocusTimer
	if timer.IsRunning || timer.RemainingSeconds != 25*60-90 || timer.LastStartedAt != nil {
		t.Errorf("paused timer = %+v", timer)
	}
}

func TestTimerPane_RestartsWhenFinished(t *testing.T) {
	sess := createTestSession(t)
	pane := newTimerPane(t, sess, time.Now())
	pane.timer.RemainingSeconds = 0

	exec(t, pane.Update(keyMsg(" ")))
	if got := sess.Snapshot().FocusTimer.RemainingSeconds; got != 25*60 {
		t.Errorf("restart from zero should use the full length, got %d", got)
	}
}

func TestTimerPane_Reset(t *testing.T) {
	sess := createTestSession(t)
	pane := newTimerPane(t, sess, time.Now())

	exec(t, pane.Update(keyMsg(" ")))
	exec(t, pane.Update(keyMsg("r")))
	timer := sess.Snapshot().FocusTimer
	if timer.IsRunning || timer.RemainingSeconds != 25*60 {
		t.Errorf("reset timer = %+v", timer)
	}
}

func TestTimerPane_ChangeDuration(t *testing.T) {
	sess := createTestSession(t)
	pane := newTimerPane(t, sess, time.Now())

	pane.Update(keyMsg("s"))
	if !pane.IsSwitching() {
		t.Fatal("s should prompt for a length")
	}
	pane.Update(keyMsg("50"))
	exec(t, pane.Update(keyMsg("enter")))

	timer := sess.Snapshot().FocusTimer
	if timer.Duration != 50 || timer.RemainingSeconds != 50*60 {
		t.Errorf("timer = %+v, want 50 minutes", timer)
	}
}

func TestTimerPane_ChangeDurationRejectsBadInput(t *testing.T) {
	tests := []string{"0", "abc", "1441", "-5"}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			pane := newTimerPane(t, createTestSession(t), time.Now())
			pane.Update(keyMsg("s"))
			pane.Update(keyMsg(input))
			if cmd := pane.Update(keyMsg("enter")); cmd != nil {
				t.Errorf("input %q should be rejected", input)
			}
			if pane.IsSwitching() {
				t.Error("enter should leave the prompt")
			}
		})
	}
}

func TestTimerPane_Done(t *testing.T) {
	setupTest(t)
	pane := newTimerPane(t, createTestSession(t), time.Now())
	pane.timer.RemainingSeconds = 0

	if !strings.Contains(pane.View(), "✓ 00:00  done") {
		t.Errorf("expected done marker:\n%s", pane.View())
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{25 * 60, "25:00"},
		{3600, "1:00:00"},
		{3661, "1:01:01"},
		{-3, "00:00"},
	}
	for _, tc := range tests {
		if got := formatClock(tc.seconds); got != tc.want {
			t.Errorf("formatClock(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
