package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HelpOverlay renders a help screen
type HelpOverlay struct {
	width  int
	height int
	styles *Styles
}

// NewHelpOverlay creates a new help overlay
func NewHelpOverlay(styles *Styles) *HelpOverlay {
	return &HelpOverlay{
		styles: styles,
	}
}

// SetSize sets the overlay dimensions
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	overlayWidth := 60
	if h.width > 0 {
		overlayWidth = min(60, max(20, h.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.styles.ColorPrimary).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorPrimary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorAccent).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorWarning).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorText)

	mutedStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorTextMuted).
		Italic(true)

	var b strings.Builder
	row := func(k, desc string) {
		b.WriteString(keyStyle.Render(k) + descStyle.Render(desc) + "\n")
	}
	section := func(name string) {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(name))
		b.WriteString("\n")
	}

	b.WriteString(titleStyle.Render("lifeos - Keyboard Shortcuts"))
	b.WriteString("\n")

	section("Global")
	row("Tab", "Switch pane")
	row("1 / 2 / 3", "Jump to pane")
	row("u / Ctrl+z", "Undo")
	row("Ctrl+y", "Redo")
	row("?", "Toggle help")
	row("q", "Quit")

	section("Day")
	row("[ / ]", "Previous / next day")
	row("t", "Back to today")
	row("J", "Edit journal")
	row("+ / -", "Mood up / down")
	row("> / <", "Rating up / down")

	section("Tasks and Habits")
	row("a", "Add")
	row("Space / d", "Toggle done")
	row("x", "Delete")
	row("j / k", "Navigate up/down")
	row("g / G", "Go to top/bottom")

	section("Timer")
	row("Space", "Start/pause")
	row("r", "Reset")
	row("s", "Set length")

	section("Input Mode")
	row("Enter", "Save")
	row("Ctrl+s", "Save journal")
	row("Esc", "Cancel")

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Press ? or Esc to close"))

	return lipgloss.Place(
		h.width,
		h.height,
		lipgloss.Center,
		lipgloss.Center,
		overlayStyle.Render(b.String()),
	)
}
