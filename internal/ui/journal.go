package ui

import (
	"strings"

	"lifeos/internal/config"
	"lifeos/internal/session"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// maxJournalChars bounds a single journal entry in the editor.
const maxJournalChars = 10000

// JournalEditor is the multi-line overlay for a day's journal entry.
type JournalEditor struct {
	area   textarea.Model
	date   string
	open   bool
	width  int
	height int
	sess   *session.Session
	styles *Styles
	keys   JournalKeyMap
}

// NewJournalEditor creates a closed journal editor.
func NewJournalEditor(sess *session.Session, styles *Styles, keyCfg *config.KeysConfig) *JournalEditor {
	ta := textarea.New()
	ta.Placeholder = "How was your day?"
	ta.CharLimit = maxJournalChars
	ta.ShowLineNumbers = false

	return &JournalEditor{
		area:   ta,
		sess:   sess,
		styles: styles,
		keys:   NewJournalKeyMap(keyCfg),
	}
}

// Open starts editing text for the day key.
func (j *JournalEditor) Open(key, text string) tea.Cmd {
	j.date = key
	j.open = true
	j.area.SetValue(text)
	return j.area.Focus()
}

// IsOpen reports whether the editor is showing.
func (j *JournalEditor) IsOpen() bool {
	return j.open
}

func (j *JournalEditor) close() {
	j.open = false
	j.area.Blur()
	j.area.Reset()
}

// SetSize sets the overlay dimensions.
func (j *JournalEditor) SetSize(width, height int) {
	j.width = width
	j.height = height
	j.area.SetWidth(min(70, max(20, width-8)))
	j.area.SetHeight(max(3, min(15, height-10)))
}

// Update handles input while the editor is open.
func (j *JournalEditor) Update(msg tea.Msg) tea.Cmd {
	if !j.open {
		return nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, j.keys.Save):
			text := strings.TrimRight(j.area.Value(), " \n")
			date := j.date
			j.close()
			return setJournalCmd(j.sess, date, text)

		case key.Matches(msg, j.keys.Cancel):
			j.close()
			return nil
		}
	}

	var cmd tea.Cmd
	j.area, cmd = j.area.Update(msg)
	return cmd
}

// View renders the editor centered on the screen.
func (j *JournalEditor) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(j.styles.ColorPrimary)

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(j.styles.ColorPrimary).
		Padding(1, 2)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Journal " + j.date))
	b.WriteString("\n\n")
	b.WriteString(j.area.View())
	b.WriteString("\n\n")
	b.WriteString(j.styles.RenderHelp("ctrl+s", "save", "esc", "cancel"))

	return lipgloss.Place(j.width, j.height, lipgloss.Center, lipgloss.Center, overlayStyle.Render(b.String()))
}
