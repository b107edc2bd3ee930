// Package ui provides terminal user interface components for lifeos.
// This file defines key bindings using the Bubble Tea key package for
// type-safe key matching, help text generation, and user customization.
package ui

import (
	"strings"

	"lifeos/internal/config"

	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// Helpers
// =============================================================================

// parseKeys splits a comma-separated string into individual keys.
// If the input is empty, returns the default keys.
func parseKeys(customKeys string, defaultKeys ...string) []string {
	if customKeys == "" {
		return defaultKeys
	}
	keys := strings.Split(customKeys, ",")
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		trimmed := strings.TrimSpace(k)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultKeys
	}
	return result
}

// binding builds a key.Binding whose help label is its first key.
func binding(keys []string, desc string) key.Binding {
	label := keys[0]
	if label == " " {
		label = "space"
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// =============================================================================
// Global Keys (available in all contexts)
// =============================================================================

// GlobalKeyMap defines keys available throughout the application.
type GlobalKeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	NextPane key.Binding
	Pane1    key.Binding
	Pane2    key.Binding
	Pane3    key.Binding
	Undo     key.Binding
	Redo     key.Binding

	// Day-level entries for the day being viewed
	PrevDay    key.Binding
	NextDay    key.Binding
	Today      key.Binding
	Journal    key.Binding
	MoodUp     key.Binding
	MoodDown   key.Binding
	RatingUp   key.Binding
	RatingDown key.Binding
}

// DefaultGlobalKeyMap returns the default global key bindings.
func DefaultGlobalKeyMap() GlobalKeyMap {
	return NewGlobalKeyMap(&config.KeysConfig{})
}

// NewGlobalKeyMap creates global key bindings from config.
func NewGlobalKeyMap(cfg *config.KeysConfig) GlobalKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return GlobalKeyMap{
		Quit:     binding(parseKeys(cfg.Quit, "q", "ctrl+c"), "quit"),
		Help:     binding(parseKeys(cfg.Help, "?"), "help"),
		NextPane: binding(parseKeys(cfg.NextPane, "tab"), "next pane"),
		Pane1:    binding([]string{"1"}, "tasks"),
		Pane2:    binding([]string{"2"}, "timer"),
		Pane3:    binding([]string{"3"}, "habits"),
		Undo:     binding(parseKeys(cfg.Undo, "ctrl+z", "u"), "undo"),
		Redo:     binding(parseKeys(cfg.Redo, "ctrl+y"), "redo"),

		PrevDay:    binding(parseKeys(cfg.PrevDay, "[", "h"), "previous day"),
		NextDay:    binding(parseKeys(cfg.NextDay, "]", "l"), "next day"),
		Today:      binding([]string{"t"}, "today"),
		Journal:    binding(parseKeys(cfg.Journal, "J"), "journal"),
		MoodUp:     binding(parseKeys(cfg.MoodUp, "+", "="), "mood up"),
		MoodDown:   binding(parseKeys(cfg.MoodDown, "-"), "mood down"),
		RatingUp:   binding(parseKeys(cfg.RatingUp, ">"), "rating up"),
		RatingDown: binding(parseKeys(cfg.RatingDown, "<"), "rating down"),
	}
}

// =============================================================================
// Navigation Keys (shared by list-based panes)
// =============================================================================

// NavigationKeyMap defines keys for list navigation.
type NavigationKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// NewNavigationKeyMap creates navigation key bindings from config.
func NewNavigationKeyMap(cfg *config.KeysConfig) NavigationKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return NavigationKeyMap{
		Up:     binding(parseKeys(cfg.Up, "k", "up"), "up"),
		Down:   binding(parseKeys(cfg.Down, "j", "down"), "down"),
		Top:    binding([]string{"g"}, "top"),
		Bottom: binding([]string{"G"}, "bottom"),
	}
}

// =============================================================================
// Input Keys (shared by text input fields)
// =============================================================================

// InputKeyMap defines keys for text input mode.
type InputKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// NewInputKeyMap creates input key bindings from config.
func NewInputKeyMap(cfg *config.KeysConfig) InputKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return InputKeyMap{
		Confirm: binding(parseKeys(cfg.Confirm, "enter"), "confirm"),
		Cancel:  binding(parseKeys(cfg.Cancel, "esc"), "cancel"),
	}
}

// JournalKeyMap defines keys for the multi-line journal editor, where enter
// inserts a newline.
type JournalKeyMap struct {
	Save   key.Binding
	Cancel key.Binding
}

// NewJournalKeyMap creates journal editor bindings from config.
func NewJournalKeyMap(cfg *config.KeysConfig) JournalKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return JournalKeyMap{
		Save:   binding([]string{"ctrl+s"}, "save"),
		Cancel: binding(parseKeys(cfg.Cancel, "esc"), "cancel"),
	}
}

// =============================================================================
// List Pane Keys (tasks and habits)
// =============================================================================

// ListKeyMap defines keys for the task and habit panes.
type ListKeyMap struct {
	Add    key.Binding
	Toggle key.Binding
	Delete key.Binding
	NavigationKeyMap
}

// NewListKeyMap creates list pane key bindings from config.
func NewListKeyMap(cfg *config.KeysConfig) ListKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return ListKeyMap{
		Add:              binding(parseKeys(cfg.Add, "a"), "add"),
		Toggle:           binding(parseKeys(cfg.Toggle, " ", "enter", "d"), "toggle"),
		Delete:           binding(parseKeys(cfg.Delete, "x"), "delete"),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// ShortHelp implements help.KeyMap.
func (k ListKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Delete, k.Down}
}

// FullHelp implements help.KeyMap.
func (k ListKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.Toggle, k.Delete},
		{k.Up, k.Down, k.Top, k.Bottom},
	}
}

// =============================================================================
// Timer Pane Keys
// =============================================================================

// TimerKeyMap defines keys for the focus timer pane.
type TimerKeyMap struct {
	Toggle   key.Binding
	Reset    key.Binding
	Duration key.Binding
}

// NewTimerKeyMap creates timer key bindings from config.
func NewTimerKeyMap(cfg *config.KeysConfig) TimerKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return TimerKeyMap{
		Toggle:   binding(parseKeys(cfg.ToggleTimer, " ", "enter"), "start/pause"),
		Reset:    binding(parseKeys(cfg.ResetTimer, "r"), "reset"),
		Duration: binding([]string{"s"}, "set minutes"),
	}
}

// ShortHelp implements help.KeyMap.
func (k TimerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.Duration}
}

// FullHelp implements help.KeyMap.
func (k TimerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Toggle, k.Reset, k.Duration}}
}

// =============================================================================
// Help Overlay Keys
// =============================================================================

// HelpKeyMap defines keys for the help overlay.
type HelpKeyMap struct {
	Close key.Binding
}

// DefaultHelpKeyMap returns the default help overlay key bindings.
func DefaultHelpKeyMap() HelpKeyMap {
	return HelpKeyMap{
		Close: key.NewBinding(
			key.WithKeys("?", "esc", "q", "enter", " "),
			key.WithHelp("any key", "close"),
		),
	}
}
