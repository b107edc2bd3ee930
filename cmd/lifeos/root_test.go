package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// testEnv points config and data at temporary directories and pins the
// clock to 2025-03-10 noon. It returns the data directory.
func testEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("LIFEOS_NOTIFICATIONS", "false")
	t.Setenv("LIFEOS_DATA_DIR", "")
	t.Setenv("LIFEOS_BACKEND", "")
	t.Setenv("NO_COLOR", "1")

	fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })
	return t.TempDir()
}

// resetFlags restores every flag of cmd and its children to its default,
// since cobra keeps parsed values between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCmd is a helper to execute a cobra command in tests
func executeCmd(cmd *cobra.Command, args ...string) (stdout string, stderr string, err error) {
	return executeWithInput(cmd, "", args...)
}

func executeWithInput(cmd *cobra.Command, input string, args ...string) (string, string, error) {
	resetFlags(cmd)
	bufOut := new(bytes.Buffer)
	bufErr := new(bytes.Buffer)

	cmd.SetOut(bufOut)
	cmd.SetErr(bufErr)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)

	err := cmd.Execute()
	_ = cleanup()
	return bufOut.String(), bufErr.String(), err
}

// lifeos runs the root command against dir and fails the test on error.
func lifeos(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, stderr, err := executeCmd(rootCmd, append([]string{"--data-dir", dir}, args...)...)
	if err != nil {
		t.Fatalf("lifeos %s: %v\nstderr: %s", strings.Join(args, " "), err, stderr)
	}
	return out
}

func lifeosErr(t *testing.T, dir string, args ...string) error {
	t.Helper()
	_, _, err := executeCmd(rootCmd, append([]string{"--data-dir", dir}, args...)...)
	if err == nil {
		t.Fatalf("lifeos %s: expected an error", strings.Join(args, " "))
	}
	return err
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestRootCmd_Use(t *testing.T) {
	if rootCmd.Use != "lifeos" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "lifeos")
	}
}

func TestRootCmd_Help(t *testing.T) {
	stdout, _, err := executeCmd(rootCmd, "--help")
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}
	assertContains(t, stdout, "lifeos", "habit", "goal", "timer", "export")
}

func TestRootCmd_Flags(t *testing.T) {
	for _, name := range []string{"data-dir", "backend", "json", "no-color"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s flag should be registered", name)
		}
	}
}

func TestRootCmd_InvalidBackend(t *testing.T) {
	dir := testEnv(t)
	err := lifeosErr(t, dir, "--backend", "redis", "today")
	if !strings.Contains(err.Error(), "redis") {
		t.Errorf("error = %v, want it to name the backend", err)
	}
}

func TestDateOr(t *testing.T) {
	testEnv(t)
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "2025-03-10", false},
		{"today", "2025-03-10", false},
		{"yesterday", "2025-03-09", false},
		{"tomorrow", "2025-03-11", false},
		{"2024-02-29", "2024-02-29", false},
		{"2025-02-30", "", true},
		{"03/10/2025", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := dateOr(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("dateOr(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("dateOr(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader(tt.input))
		cmd.SetOut(io.Discard)
		got, err := confirm(cmd, "Sure?")
		if err != nil {
			t.Fatalf("confirm(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestToday_FreshData(t *testing.T) {
	dir := testEnv(t)
	out := lifeos(t, dir, "today")
	assertContains(t, out, "2025-03-10", "Nothing recorded yet.", "Meditate", "Read")

	if _, err := os.Stat(filepath.Join(dir, "lifeos_state.json")); err != nil {
		t.Errorf("state file not created: %v", err)
	}
}

func TestToday_JSON(t *testing.T) {
	dir := testEnv(t)
	lifeos(t, dir, "mood", "4")

	out := lifeos(t, dir, "--json", "today")
	var got struct {
		Date     string `json:"date"`
		Recorded bool   `json:"recorded"`
		Mood     *int   `json:"mood"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Date != "2025-03-10" || !got.Recorded || got.Mood == nil || *got.Mood != 4 {
		t.Errorf("today --json = %+v", got)
	}
}

func TestJournal_SetShowClear(t *testing.T) {
	dir := testEnv(t)

	out := lifeos(t, dir, "journal", "Long", "walk")
	assertContains(t, out, "Saved journal for 2025-03-10 (9 characters)")

	out = lifeos(t, dir, "journal")
	assertContains(t, out, "Long walk")

	lifeos(t, dir, "journal", "--clear")
	out = lifeos(t, dir, "journal")
	assertContains(t, out, "No journal entry for 2025-03-10")
}

func TestMoodAndRating(t *testing.T) {
	dir := testEnv(t)

	out := lifeos(t, dir, "mood", "5", "--date", "yesterday")
	assertContains(t, out, "Mood for 2025-03-09: 5/5")

	out = lifeos(t, dir, "rating", "2")
	assertContains(t, out, "Rating for 2025-03-10: 2/5")

	out = lifeos(t, dir, "mood", "clear", "-d", "2025-03-09")
	assertContains(t, out, "Mood for 2025-03-09: -")

	for _, bad := range []string{"0", "6", "x"} {
		lifeosErr(t, dir, "mood", bad)
	}
}

func TestTask_Lifecycle(t *testing.T) {
	dir := testEnv(t)

	assertContains(t, lifeos(t, dir, "task", "list"), "No tasks for 2025-03-10.")

	assertContains(t, lifeos(t, dir, "task", "add", "Write", "report"), "Added task to 2025-03-10: Write report")
	lifeos(t, dir, "task", "add", "Call mom")

	assertContains(t, lifeos(t, dir, "task", "done", "1"), "Completed: Write report")
	assertContains(t, lifeos(t, dir, "task", "list"), "(1/2 done)", "1. [✓] Write report", "2. [ ] Call mom")
	assertContains(t, lifeos(t, dir, "task", "done", "1"), "Reopened: Write report")

	assertContains(t, lifeos(t, dir, "task", "rm", "2"), "Deleted: Call mom")
	lifeosErr(t, dir, "task", "done", "5")
	lifeosErr(t, dir, "task", "add", "   ")
}

func TestAlarm_AddListRemove(t *testing.T) {
	dir := testEnv(t)

	out := lifeos(t, dir, "alarm", "add", "7:05", "Wake", "up", "--repeat", "weekdays")
	assertContains(t, out, "Alarm 07:05 Wake up (weekdays) on 2025-03-10")

	assertContains(t, lifeos(t, dir, "alarm", "list"), "07:05 Wake up", "(weekdays)")
	assertContains(t, lifeos(t, dir, "alarm", "rm", "1"), "Removed alarm 07:05 Wake up")
	assertContains(t, lifeos(t, dir, "alarm", "list"), "No alarms for 2025-03-10.")

	lifeosErr(t, dir, "alarm", "add", "25:00", "Late")
	lifeosErr(t, dir, "alarm", "add", "08:00", "Gym", "--repeat", "hourly")
}

func TestBackendSQLite(t *testing.T) {
	dir := testEnv(t)
	lifeos(t, dir, "--backend", "sqlite", "journal", "stored in sqlite")

	out := lifeos(t, dir, "--backend", "sqlite", "journal")
	assertContains(t, out, "stored in sqlite")
}
