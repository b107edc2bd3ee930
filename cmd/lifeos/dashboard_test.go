package main

import (
	"encoding/json"
	"testing"
)

// seedWeek records two days: a good Monday and a poor Sunday.
func seedWeek(t *testing.T, dir string) {
	t.Helper()
	lifeos(t, dir, "mood", "4")
	lifeos(t, dir, "rating", "5")
	lifeos(t, dir, "journal", "Good day")
	lifeos(t, dir, "task", "add", "Ship it")
	lifeos(t, dir, "task", "done", "1")
	lifeos(t, dir, "habit", "toggle", "Meditate")
	lifeos(t, dir, "mood", "2", "-d", "yesterday")
}

func TestDashboard(t *testing.T) {
	dir := testEnv(t)
	seedWeek(t, dir)

	out := lifeos(t, dir, "dashboard")
	assertContains(t, out,
		"Last 7 recorded days (2 found)",
		"Last 30 recorded days (2 found)",
		"Mood:         3.0",
		"Rating:       5.0",
		"Journal:      50% (1 days)",
		"Tasks:        100% (1/1)",
		"Balance",
		"Best streak: Meditate, 1 days",
	)
}

func TestDashboard_JSON(t *testing.T) {
	dir := testEnv(t)
	seedWeek(t, dir)

	var got struct {
		Metrics []struct {
			Window       int `json:"window"`
			DaysInWindow int `json:"daysInWindow"`
		} `json:"metrics"`
		Balance struct {
			Mood  int `json:"mood"`
			Tasks int `json:"tasks"`
		} `json:"balance"`
	}
	if err := json.Unmarshal([]byte(lifeos(t, dir, "--json", "dashboard")), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Metrics) != 2 || got.Metrics[0].Window != 7 || got.Metrics[1].Window != 30 {
		t.Fatalf("metrics = %+v", got.Metrics)
	}
	if got.Balance.Mood != 60 || got.Balance.Tasks != 100 {
		t.Errorf("balance = %+v, want mood 60 tasks 100", got.Balance)
	}
}

func TestCompare(t *testing.T) {
	dir := testEnv(t)
	seedWeek(t, dir)

	out := lifeos(t, dir, "compare", "today", "yesterday")
	assertContains(t, out, "2025-03-10 vs 2025-03-09", "Mood:    +2", "Rating:  -", "Habits:  +1", "Tasks:   +1", "Journal: +8 chars")

	out = lifeos(t, dir, "compare", "today", "2025-01-01")
	assertContains(t, out, "Nothing to compare")

	lifeosErr(t, dir, "compare", "today", "not-a-date")
}

func TestCalendar(t *testing.T) {
	dir := testEnv(t)
	seedWeek(t, dir)

	assertContains(t, lifeos(t, dir, "calendar"), "2025-03: 2 recorded days", "2025-03-09", "2025-03-10")
	assertContains(t, lifeos(t, dir, "calendar", "2025-02"), "No recorded days in 2025-02.")
	lifeosErr(t, dir, "calendar", "2025-13")
}

func TestReport_Daily(t *testing.T) {
	dir := testEnv(t)
	seedWeek(t, dir)

	out := lifeos(t, dir, "report", "daily")
	assertContains(t, out, "# Daily Report: 2025-03-10", "- Mood: 4/5", "- [x] Ship it", "> Good day")

	var got struct {
		Date     string `json:"date"`
		Recorded bool   `json:"recorded"`
	}
	if err := json.Unmarshal([]byte(lifeos(t, dir, "report", "daily", "--format", "json", "-d", "2025-03-01")), &got); err != nil {
		t.Fatal(err)
	}
	if got.Date != "2025-03-01" || got.Recorded {
		t.Errorf("report = %+v", got)
	}

	lifeosErr(t, dir, "report", "daily", "--format", "pdf")
}

func TestReport_Weekly(t *testing.T) {
	dir := testEnv(t)
	seedWeek(t, dir)

	out := lifeos(t, dir, "report", "weekly", "-d", "2025-03-12")
	assertContains(t, out, "# Weekly Report: 2025-03-10 to 2025-03-16", "- Days recorded: 1/7")

	lifeos(t, dir, "settings", "--week-start", "sunday")
	out = lifeos(t, dir, "report", "weekly")
	assertContains(t, out, "# Weekly Report: 2025-03-09 to 2025-03-15", "- Days recorded: 2/7")
}
