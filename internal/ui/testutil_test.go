package ui

import (
	"context"
	"strings"
	"testing"

	"lifeos/internal/config"
	"lifeos/internal/session"
	"lifeos/internal/state"
	"lifeos/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// setupTest prepares the test environment for deterministic rendering.
// It disables colors so assertions see plain text.
func setupTest(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
}

// createTestSession opens a session over an in-memory store.
func createTestSession(t *testing.T) *session.Session {
	t.Helper()
	backend, err := storage.NewMemoryBackend()
	if err != nil {
		t.Fatalf("failed to create memory backend: %v", err)
	}
	sess, err := session.Open(context.Background(), storage.New(backend), nil)
	if err != nil {
		t.Fatalf("failed to open session: %v", err)
	}
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

// createTestStyles creates a default Styles instance for testing.
func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{}, state.ThemeDark)
}

// createTestApp builds an app without onboarding at a fixed size.
func createTestApp(t *testing.T, width, height int) (*App, *session.Session) {
	t.Helper()
	setupTest(t)
	sess := createTestSession(t)
	app := NewApp(sess, createTestStyles(), &AppConfig{
		Keys:                  &config.KeysConfig{},
		ConfirmDeletions:      true,
		NarrowLayoutThreshold: 80,
	})
	app.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return app, sess
}

// keyMsg converts a key name into the message Bubble Tea would deliver.
func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+z":
		return tea.KeyMsg{Type: tea.KeyCtrlZ}
	case "ctrl+y":
		return tea.KeyMsg{Type: tea.KeyCtrlY}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends keys to the app and returns the command of the last one.
func press(app *App, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = app.Update(keyMsg(k))
	}
	return cmd
}

// run executes a session command and feeds its result back into the app.
func run(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if msg := cmd(); msg != nil {
		app.Update(msg)
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
