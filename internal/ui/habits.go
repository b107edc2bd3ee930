// Package ui provides terminal user interface components for lifeos.
package ui

import (
	"fmt"
	"strings"

	"lifeos/internal/calendar"
	"lifeos/internal/config"
	"lifeos/internal/insights"
	"lifeos/internal/session"
	"lifeos/internal/state"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

const habitNamePlaceholder = "Habit name (e.g., Exercise)"

// HabitsPane shows every habit with its last seven days ending at the day
// being viewed.
type HabitsPane struct {
	habits  []state.Habit
	best    *insights.StreakLeader
	date    string
	cursor  int
	focused bool
	width   int
	height  int
	adding  bool
	addStep int // 0 = name, 1 = frequency
	input   textinput.Model
	newName string
	sess    *session.Session
	styles  *Styles

	// Key bindings
	keys      ListKeyMap
	inputKeys InputKeyMap
}

// NewHabitsPane creates a new habits pane.
func NewHabitsPane(sess *session.Session, styles *Styles, keyCfg *config.KeysConfig) *HabitsPane {
	ti := textinput.New()
	ti.Placeholder = habitNamePlaceholder
	ti.CharLimit = state.MaxHabitNameLen
	ti.Width = 30

	return &HabitsPane{
		input:     ti,
		sess:      sess,
		styles:    styles,
		keys:      NewListKeyMap(keyCfg),
		inputKeys: NewInputKeyMap(keyCfg),
	}
}

// setDay refreshes the habit list for the day key.
func (p *HabitsPane) setDay(snap *state.Snapshot, key string) {
	p.habits = snap.SortedHabits()
	p.best = insights.BestStreak(snap)
	p.date = key
	if p.cursor >= len(p.habits) {
		p.cursor = max(0, len(p.habits)-1)
	}
}

// SetSize sets the pane dimensions.
func (p *HabitsPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(10, width-10)
}

// SetFocused sets whether this pane is focused.
func (p *HabitsPane) SetFocused(focused bool) {
	p.focused = focused
}

// IsAdding returns whether we're in add mode.
func (p *HabitsPane) IsAdding() bool {
	return p.adding
}

// Selected returns the habit under the cursor.
func (p *HabitsPane) Selected() (state.Habit, bool) {
	if p.cursor < 0 || p.cursor >= len(p.habits) {
		return state.Habit{}, false
	}
	return p.habits[p.cursor], true
}

// Update handles messages for the habits pane.
func (p *HabitsPane) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	if p.adding {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, p.inputKeys.Confirm):
				return p.confirmAdd()

			case key.Matches(msg, p.inputKeys.Cancel):
				p.resetAddMode()
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
		return p.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Down):
			if len(p.habits) > 0 {
				p.cursor = min(p.cursor+1, len(p.habits)-1)
			}

		case key.Matches(msg, p.keys.Up):
			p.cursor = max(p.cursor-1, 0)

		case key.Matches(msg, p.keys.Top):
			p.cursor = 0

		case key.Matches(msg, p.keys.Bottom):
			p.cursor = max(0, len(p.habits)-1)

		case key.Matches(msg, p.keys.Add):
			p.adding = true
			p.addStep = 0
			p.input.Focus()
			return textinput.Blink

		case key.Matches(msg, p.keys.Toggle):
			if habit, ok := p.Selected(); ok {
				return toggleHabitCmd(p.sess, p.date, habit)
			}

		case key.Matches(msg, p.keys.Delete):
			if habit, ok := p.Selected(); ok {
				return deleteHabitCmd(p.sess, habit)
			}
		}
	}

	return nil
}

// confirmAdd advances the two-step add: name first, then frequency.
func (p *HabitsPane) confirmAdd() tea.Cmd {
	if p.addStep == 0 {
		name, err := state.CleanName(p.input.Value(), state.MaxHabitNameLen)
		if err != nil {
			return nil
		}
		p.newName = name
		p.addStep = 1
		p.input.Reset()
		p.input.Placeholder = "daily, weekly or custom"
		p.input.CharLimit = 10
		return nil
	}

	raw := strings.TrimSpace(p.input.Value())
	freq := state.FrequencyDaily
	if raw != "" {
		parsed, err := state.ParseFrequency(raw)
		if err != nil {
			p.input.Reset()
			return nil
		}
		freq = parsed
	}
	name := p.newName
	p.resetAddMode()
	return addHabitCmd(p.sess, name, freq)
}

// resetAddMode resets the add habit state.
func (p *HabitsPane) resetAddMode() {
	p.adding = false
	p.addStep = 0
	p.newName = ""
	p.input.Reset()
	p.input.Placeholder = habitNamePlaceholder
	p.input.CharLimit = state.MaxHabitNameLen
}

// handleMouse processes mouse events for the habits pane.
func (p *HabitsPane) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if len(p.habits) == 0 {
		return nil
	}

	// title (1) + separator (1) + blank (1)
	const headerRows = 3

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		p.cursor = max(p.cursor-1, 0)

	case tea.MouseButtonWheelDown:
		p.cursor = min(p.cursor+1, len(p.habits)-1)

	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		row := msg.Y - headerRows
		if row < 0 || row >= len(p.habits) {
			return nil
		}
		p.cursor = row
		if msg.X < 4 {
			return toggleHabitCmd(p.sess, p.date, p.habits[row])
		}
	}
	return nil
}

// View renders the habits pane.
func (p *HabitsPane) View() string {
	var b strings.Builder

	b.WriteString(p.styles.PaneTitleStyle.Render("HABITS"))
	b.WriteString("\n")

	sepWidth := p.width - 4
	if sepWidth < 10 {
		sepWidth = 30
	}
	b.WriteString(p.styleMutedText(strings.Repeat("─", sepWidth)))
	b.WriteString("\n\n")

	if len(p.habits) == 0 && !p.adding {
		b.WriteString(p.styleMutedText("  No habits yet."))
		b.WriteString("\n")
		b.WriteString(p.styleMutedText("  Press 'a' to add one."))
		b.WriteString("\n")
	} else {
		days := calendar.DateRange(p.date, 7)
		nameWidth := max(6, p.width-4-2-2-13-6)

		for i, habit := range p.habits {
			selected := i == p.cursor && p.focused && !p.adding

			prefix := "  "
			if selected {
				prefix = "▶ "
			}
			mark := p.styles.HabitUndoneIcon
			if habit.History[p.date] {
				mark = p.styles.HabitDoneIcon
			}

			name := runewidth.FillRight(runewidth.Truncate(habit.Name, nameWidth, ".."), nameWidth)
			line := fmt.Sprintf("%s%s %s  %s", prefix, mark, name, p.renderWeekView(habit, days))
			if habit.Streak > 1 {
				line += " " + p.styles.HabitStreakStyle.Render(fmt.Sprintf("%dd", habit.Streak))
			}
			if selected {
				line = p.styles.TaskSelectedStyle.Render(line)
			}

			b.WriteString(line)
			b.WriteString("\n")
		}

		if p.best != nil && p.best.Streak > 0 {
			b.WriteString("\n")
			b.WriteString("  " + p.styles.StatLabelStyle.Render("Best streak: ") +
				p.styles.HabitStreakStyle.Render(fmt.Sprintf("%s, %d days", p.best.HabitName, p.best.Streak)))
			b.WriteString("\n")
		}

		b.WriteString("\n")
		b.WriteString(p.styleMutedText(p.dayLabels(days, nameWidth)))
		b.WriteString("\n")
	}

	if p.adding {
		b.WriteString("\n")
		prompt := "Name: "
		if p.addStep == 1 {
			prompt = "Freq: "
		}
		b.WriteString("  " + p.styles.InputPromptStyle.Render(prompt) + p.input.View())
		b.WriteString("\n")
	}

	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(b.String())
}

// renderWeekView draws one mark per day in days.
func (p *HabitsPane) renderWeekView(h state.Habit, days []string) string {
	marks := make([]string, len(days))
	for i, day := range days {
		if h.History[day] {
			marks[i] = p.styles.HabitDoneIcon
		} else {
			marks[i] = p.styles.HabitUndoneIcon
		}
	}
	return strings.Join(marks, " ")
}

// dayLabels returns the weekday initials aligned under the week view.
func (p *HabitsPane) dayLabels(days []string, nameWidth int) string {
	labels := make([]string, len(days))
	for i, day := range days {
		t, err := calendar.Parse(day)
		if err != nil {
			labels[i] = "?"
			continue
		}
		labels[i] = t.Format("Mon")[:1]
	}
	return strings.Repeat(" ", 4+nameWidth+2) + strings.Join(labels, " ")
}

// styleMutedText applies muted style to text.
func (p *HabitsPane) styleMutedText(s string) string {
	return p.styles.StatLabelStyle.Render(s)
}

// CompletionRate returns how many habits are done on the viewed day.
func (p *HabitsPane) CompletionRate() (done, total int) {
	for _, h := range p.habits {
		if h.History[p.date] {
			done++
		}
	}
	return done, len(p.habits)
}
