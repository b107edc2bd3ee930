package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"lifeos/internal/config"
	"lifeos/internal/session"
	"lifeos/internal/state"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// maxTimerMinutes bounds the length entered in the pane.
const maxTimerMinutes = 24 * 60

// TimerPane shows the focus countdown. The live value is derived from the
// stored checkpoint on every render.
type TimerPane struct {
	timer     state.FocusTimer
	now       func() time.Time
	focused   bool
	width     int
	height    int
	switching bool // entering a new length
	input     textinput.Model
	sess      *session.Session
	styles    *Styles

	// Key bindings
	keys      TimerKeyMap
	inputKeys InputKeyMap
}

// NewTimerPane creates a new timer pane.
func NewTimerPane(sess *session.Session, styles *Styles, keyCfg *config.KeysConfig) *TimerPane {
	ti := textinput.New()
	ti.Placeholder = "Minutes"
	ti.CharLimit = 4
	ti.Width = 10

	return &TimerPane{
		timer:     state.DefaultFocusTimer(),
		now:       time.Now,
		input:     ti,
		sess:      sess,
		styles:    styles,
		keys:      NewTimerKeyMap(keyCfg),
		inputKeys: NewInputKeyMap(keyCfg),
	}
}

func (p *TimerPane) setTimer(t state.FocusTimer) {
	p.timer = t
}

// SetSize sets the pane dimensions.
func (p *TimerPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetFocused sets whether this pane is focused.
func (p *TimerPane) SetFocused(focused bool) {
	p.focused = focused
}

// IsSwitching returns whether we're entering a new timer length.
func (p *TimerPane) IsSwitching() bool {
	return p.switching
}

// IsRunning returns whether the countdown is running.
func (p *TimerPane) IsRunning() bool {
	return p.timer.IsRunning
}

// Remaining returns the live seconds left.
func (p *TimerPane) Remaining() int {
	return p.timer.Remaining(p.now())
}

// Update handles messages for the timer pane.
func (p *TimerPane) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	if p.switching {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, p.inputKeys.Confirm):
				raw := strings.TrimSpace(p.input.Value())
				p.switching = false
				p.input.Reset()
				minutes, err := strconv.Atoi(raw)
				if err != nil || minutes < 1 || minutes > maxTimerMinutes {
					return nil
				}
				return changeDurationCmd(p.sess, minutes)

			case key.Matches(msg, p.inputKeys.Cancel):
				p.switching = false
				p.input.Reset()
				return nil
			}
		}

		p.input, cmd = p.input.Update(msg)
		return cmd
	}

	if !p.focused {
		return nil
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		// title (1) + separator (1) + blank (1), then the clock
		const headerRows = 3
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress &&
			msg.Y >= headerRows && msg.Y < headerRows+3 {
			return p.toggle()
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Toggle):
			return p.toggle()

		case key.Matches(msg, p.keys.Reset):
			return resetTimerCmd(p.sess)

		case key.Matches(msg, p.keys.Duration):
			p.switching = true
			p.input.Focus()
			return textinput.Blink
		}
	}

	return nil
}

// toggle pauses a running countdown at its live value, or starts it from
// the displayed value. A finished countdown restarts at full length.
func (p *TimerPane) toggle() tea.Cmd {
	now := p.now()
	remaining := p.timer.Remaining(now)
	if p.timer.IsRunning {
		return pauseTimerCmd(p.sess, remaining)
	}
	if remaining == 0 {
		remaining = p.timer.Duration * 60
	}
	return startTimerCmd(p.sess, now, remaining)
}

// View renders the timer pane.
func (p *TimerPane) View() string {
	var b strings.Builder

	b.WriteString(p.styles.PaneTitleStyle.Render("FOCUS TIMER"))
	b.WriteString("\n")

	sepWidth := p.width - 4
	if sepWidth < 10 {
		sepWidth = 30
	}
	b.WriteString(p.styleMutedText(strings.Repeat("─", sepWidth)))
	b.WriteString("\n\n")

	remaining := p.Remaining()
	clock := formatClock(remaining)
	switch {
	case p.timer.IsRunning:
		b.WriteString("  " + p.styles.TimerRunningStyle.Render("▶ "+clock))
		b.WriteString("\n")
	case remaining == 0:
		b.WriteString("  " + p.styles.TimerDoneStyle.Render("✓ "+clock+"  done"))
		b.WriteString("\n")
	default:
		b.WriteString("  " + p.styles.TimerStoppedStyle.Render("■ "+clock))
		b.WriteString("\n")
	}

	b.WriteString("  " + p.progressBar(remaining, max(10, sepWidth-4)))
	b.WriteString("\n\n")

	b.WriteString("  " + p.styles.StatLabelStyle.Render("Length: ") +
		p.styles.StatValueStyle.Render(fmt.Sprintf("%d min", p.timer.Duration)))
	b.WriteString("\n")

	if !p.timer.IsRunning {
		b.WriteString("\n")
		b.WriteString("  " + p.styleMutedText("Press space to start"))
		b.WriteString("\n")
	}

	if p.switching {
		b.WriteString("\n")
		b.WriteString("  " + p.styles.InputPromptStyle.Render("Minutes: ") + p.input.View())
		b.WriteString("\n")
	}

	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(b.String())
}

// progressBar shows the elapsed share of the session.
func (p *TimerPane) progressBar(remaining, width int) string {
	total := p.timer.Duration * 60
	filled := 0
	if total > 0 {
		filled = (total - min(remaining, total)) * width / total
	}
	return p.styles.TimerRunningStyle.Render(strings.Repeat("█", filled)) +
		p.styleMutedText(strings.Repeat("░", width-filled))
}

// formatClock formats seconds as MM:SS, or H:MM:SS past an hour.
func formatClock(seconds int) string {
	d := time.Duration(max(seconds, 0)) * time.Second
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// styleMutedText applies muted style to text.
func (p *TimerPane) styleMutedText(s string) string {
	return p.styles.StatLabelStyle.Render(s)
}
