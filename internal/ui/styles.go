package ui

import (
	"strings"

	"lifeos/internal/config"
	"lifeos/internal/state"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds every style the dashboard renders with. Accent colors come
// from the config theme; surface colors follow the user's dark or light
// setting.
type Styles struct {
	Mode state.Theme

	ColorPrimary   lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorDanger    lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorBgLight   lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color

	TitleStyle       lipgloss.Style
	DateStyle        lipgloss.Style
	PaneStyle        lipgloss.Style
	PaneFocusedStyle lipgloss.Style
	PaneTitleStyle   lipgloss.Style

	TaskDoneStyle       lipgloss.Style
	TaskPendingStyle    lipgloss.Style
	TaskSelectedStyle   lipgloss.Style
	TaskCheckboxDone    string
	TaskCheckboxPending string

	HabitDoneIcon    string
	HabitUndoneIcon  string
	HabitStreakStyle lipgloss.Style

	TimerRunningStyle lipgloss.Style
	TimerStoppedStyle lipgloss.Style
	TimerDoneStyle    lipgloss.Style

	MetricLabelStyle lipgloss.Style
	MetricValueStyle lipgloss.Style
	ScoreFilledIcon  string
	ScoreEmptyIcon   string
	JournalStyle     lipgloss.Style

	HelpStyle    lipgloss.Style
	HelpKeyStyle lipgloss.Style

	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style

	InputPromptStyle lipgloss.Style

	StatLabelStyle lipgloss.Style
	StatValueStyle lipgloss.Style
}

// surface is the part of the palette that flips between dark and light.
type surface struct {
	text, textMuted, selection string
}

var surfaces = map[state.Theme]surface{
	state.ThemeDark:  {text: "#F9FAFB", textMuted: "#9CA3AF", selection: "#374151"},
	state.ThemeLight: {text: "#111827", textMuted: "#4B5563", selection: "#E5E7EB"},
}

// NewStyles builds styles from the config theme for the given mode.
func NewStyles(cfg *config.Config, mode state.Theme) *Styles {
	return NewStylesFromTheme(&cfg.Theme, mode)
}

// NewStylesFromTheme builds styles from a ThemeConfig. Empty theme colors
// fall back to defaults and an unknown mode renders dark.
func NewStylesFromTheme(theme *config.ThemeConfig, mode state.Theme) *Styles {
	surf, ok := surfaces[mode]
	if !ok {
		mode, surf = state.ThemeDark, surfaces[state.ThemeDark]
	}

	s := &Styles{
		Mode:           mode,
		ColorPrimary:   colorOrDefault(theme.Primary, "#7C3AED"),
		ColorAccent:    colorOrDefault(theme.Accent, "#10B981"),
		ColorMuted:     colorOrDefault(theme.Muted, "#6B7280"),
		ColorWarning:   colorOrDefault(theme.Warning, "#F59E0B"),
		ColorDanger:    lipgloss.Color("#EF4444"),
		ColorSuccess:   lipgloss.Color("#10B981"),
		ColorBgLight:   lipgloss.Color(surf.selection),
		ColorText:      lipgloss.Color(surf.text),
		ColorTextMuted: lipgloss.Color(surf.textMuted),
	}
	s.build()
	return s
}

func colorOrDefault(hex, fallback string) lipgloss.Color {
	if hex == "" {
		hex = fallback
	}
	return lipgloss.Color(hex)
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func pane(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func (s *Styles) build() {
	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#F9FAFB")).
		Background(s.ColorPrimary).
		Padding(0, 1)
	s.DateStyle = fg(s.ColorTextMuted)

	s.PaneStyle = pane(s.ColorMuted)
	s.PaneFocusedStyle = pane(s.ColorPrimary)
	s.PaneTitleStyle = fg(s.ColorPrimary).Bold(true)

	s.TaskDoneStyle = fg(s.ColorTextMuted).Strikethrough(true)
	s.TaskPendingStyle = fg(s.ColorText)
	s.TaskSelectedStyle = fg(s.ColorText).Background(s.ColorBgLight).Bold(true)
	s.TaskCheckboxDone = fg(s.ColorSuccess).Render("[✓]")
	s.TaskCheckboxPending = fg(s.ColorMuted).Render("[ ]")

	s.HabitDoneIcon = fg(s.ColorSuccess).Render("●")
	s.HabitUndoneIcon = fg(s.ColorMuted).Render("○")
	s.HabitStreakStyle = fg(s.ColorWarning).Bold(true)

	s.TimerRunningStyle = fg(s.ColorSuccess).Bold(true)
	s.TimerStoppedStyle = fg(s.ColorMuted)
	s.TimerDoneStyle = fg(s.ColorAccent).Bold(true)

	s.MetricLabelStyle = fg(s.ColorTextMuted)
	s.MetricValueStyle = fg(s.ColorAccent).Bold(true)
	s.ScoreFilledIcon = fg(s.ColorWarning).Render("★")
	s.ScoreEmptyIcon = fg(s.ColorMuted).Render("☆")
	s.JournalStyle = fg(s.ColorText).Italic(true)

	s.HelpStyle = fg(s.ColorTextMuted)
	s.HelpKeyStyle = fg(s.ColorAccent).Bold(true)

	s.StatusStyle = fg(s.ColorSuccess).Italic(true)
	s.ErrorStyle = fg(s.ColorDanger).Bold(true)
	s.InputPromptStyle = fg(s.ColorPrimary).Bold(true)

	s.StatLabelStyle = fg(s.ColorTextMuted)
	s.StatValueStyle = fg(s.ColorText).Bold(true)
}

// RenderHelp renders key/description pairs as "[k] desc". A trailing
// unpaired key is ignored.
func (s *Styles) RenderHelp(keys ...string) string {
	parts := make([]string, 0, len(keys)/2)
	for i := 0; i+1 < len(keys); i += 2 {
		parts = append(parts, s.HelpKeyStyle.Render("["+keys[i]+"]")+" "+s.HelpStyle.Render(keys[i+1]))
	}
	return strings.Join(parts, "  ")
}

// RenderScore draws a mood or rating as stars, or a dash when unset.
func (s *Styles) RenderScore(v *int) string {
	if v == nil {
		return s.StatLabelStyle.Render("-")
	}
	var b strings.Builder
	for i := 1; i <= state.MaxScore; i++ {
		if i <= *v {
			b.WriteString(s.ScoreFilledIcon)
		} else {
			b.WriteString(s.ScoreEmptyIcon)
		}
	}
	return b.String()
}
