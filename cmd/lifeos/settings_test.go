package main

import (
	"os"
	"strings"
	"testing"

	"lifeos/internal/config"
)

func TestSettings_ShowAndChange(t *testing.T) {
	dir := testEnv(t)

	assertContains(t, lifeos(t, dir, "settings"),
		"Name:          User",
		"Theme:         dark",
		"Week starts:   monday",
		"Notifications: true",
	)

	out := lifeos(t, dir, "settings", "--theme", "light", "--week-start", "sunday", "--name", "Ana", "--notifications", "false")
	assertContains(t, out, "Settings updated", "Name:          Ana", "Theme:         light", "Week starts:   sunday", "Notifications: false")

	assertContains(t, lifeos(t, dir, "settings", "--theme", "light"), "Settings unchanged.")
}

func TestSettings_Invalid(t *testing.T) {
	dir := testEnv(t)
	lifeosErr(t, dir, "settings", "--theme", "blue")
	lifeosErr(t, dir, "settings", "--week-start", "friday")
	lifeosErr(t, dir, "settings", "--notifications", "maybe")
	lifeosErr(t, dir, "settings", "--name", "  ")
	lifeosErr(t, dir, "settings", "--sound", "loud")
	lifeosErr(t, dir, "settings", "--backup-keep", "0")
}

func TestSettings_SavesConfigFile(t *testing.T) {
	dir := testEnv(t)

	assertContains(t, lifeos(t, dir, "settings"), "Sound:         false", "Backups kept:  10")

	out := lifeos(t, dir, "settings", "--sound", "true", "--backup-keep", "3")
	assertContains(t, out, "Config saved", "Sound:         true", "Backups kept:  3")

	data, err := os.ReadFile(config.Path())
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	// testEnv disables notifications through the environment only.
	for _, want := range []string{"sound: true", "keep: 3", "enabled: true"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config file missing %q:\n%s", want, data)
		}
	}

	assertContains(t, lifeos(t, dir, "settings"), "Sound:         true", "Backups kept:  3")
}
