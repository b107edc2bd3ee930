// Package ui provides terminal user interface components for lifeos.
package ui

import (
	"fmt"
	"strings"

	"lifeos/internal/config"
	"lifeos/internal/session"
	"lifeos/internal/state"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TaskPane shows the tasks of the day being viewed.
type TaskPane struct {
	tasks   []state.Task
	date    string
	cursor  int
	focused bool
	width   int
	height  int
	adding  bool
	input   textinput.Model
	sess    *session.Session
	styles  *Styles

	// Key bindings
	keys      ListKeyMap
	inputKeys InputKeyMap
}

// NewTaskPane creates a new task pane.
func NewTaskPane(sess *session.Session, styles *Styles, keyCfg *config.KeysConfig) *TaskPane {
	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = state.MaxTaskTextLen
	ti.Width = 40

	return &TaskPane{
		focused:   true,
		input:     ti,
		sess:      sess,
		styles:    styles,
		keys:      NewListKeyMap(keyCfg),
		inputKeys: NewInputKeyMap(keyCfg),
	}
}

// setDay shows the tasks recorded for key and keeps the cursor in bounds.
func (p *TaskPane) setDay(snap *state.Snapshot, key string) {
	d, _ := snap.Day(key)
	p.tasks = d.Tasks
	if key != p.date {
		p.cursor = 0
	}
	p.date = key
	if p.cursor >= len(p.tasks) {
		p.cursor = max(0, len(p.tasks)-1)
	}
}

// SetSize sets the pane dimensions.
func (p *TaskPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(10, width-4)
}

// SetFocused sets whether this pane is focused.
func (p *TaskPane) SetFocused(focused bool) {
	p.focused = focused
}

// IsAdding returns whether we're in add mode.
func (p *TaskPane) IsAdding() bool {
	return p.adding
}

// Selected returns the task under the cursor.
func (p *TaskPane) Selected() (state.Task, bool) {
	if p.cursor < 0 || p.cursor >= len(p.tasks) {
		return state.Task{}, false
	}
	return p.tasks[p.cursor], true
}

// Update handles messages for the task pane.
func (p *TaskPane) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	if p.adding {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, p.inputKeys.Confirm):
				raw := p.input.Value()
				p.adding = false
				p.input.Reset()
				text, err := state.CleanName(raw, state.MaxTaskTextLen)
				if err != nil {
					return nil
				}
				return addTaskCmd(p.sess, p.date, text)

			case key.Matches(msg, p.inputKeys.Cancel):
				p.adding = false
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
		return p.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Down):
			if len(p.tasks) > 0 {
				p.cursor = min(p.cursor+1, len(p.tasks)-1)
			}

		case key.Matches(msg, p.keys.Up):
			p.cursor = max(p.cursor-1, 0)

		case key.Matches(msg, p.keys.Top):
			p.cursor = 0

		case key.Matches(msg, p.keys.Bottom):
			p.cursor = max(0, len(p.tasks)-1)

		case key.Matches(msg, p.keys.Add):
			p.adding = true
			p.input.Focus()
			return textinput.Blink

		case key.Matches(msg, p.keys.Toggle):
			if task, ok := p.Selected(); ok {
				return toggleTaskCmd(p.sess, p.date, task)
			}

		case key.Matches(msg, p.keys.Delete):
			if task, ok := p.Selected(); ok {
				return deleteTaskCmd(p.sess, p.date, task)
			}
		}
	}

	return nil
}

// visibleRows mirrors the view windowing so clicks map to the shown slice.
func (p *TaskPane) visibleRows() (start, rows int) {
	rows = p.height - 6 // title, separator, input, stats
	if rows < 3 {
		rows = 5
	}
	if p.cursor >= rows {
		start = p.cursor - rows + 1
	}
	return start, rows
}

// handleMouse processes mouse events for the task pane.
func (p *TaskPane) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if len(p.tasks) == 0 {
		return nil
	}

	// Content starts after title (1) + separator (1)
	const headerRows = 2

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		p.cursor = max(p.cursor-1, 0)

	case tea.MouseButtonWheelDown:
		p.cursor = min(p.cursor+1, len(p.tasks)-1)

	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		start, rows := p.visibleRows()
		row := msg.Y - headerRows
		if row < 0 || row >= rows || start+row >= len(p.tasks) {
			return nil
		}
		p.cursor = start + row

		// Clicking the checkbox toggles.
		if msg.X < 5 {
			return toggleTaskCmd(p.sess, p.date, p.tasks[p.cursor])
		}
	}
	return nil
}

// View renders the task pane.
func (p *TaskPane) View() string {
	var b strings.Builder

	b.WriteString(p.styles.PaneTitleStyle.Render("TASKS"))
	b.WriteString("\n")

	sepWidth := p.width - 4
	if sepWidth < 10 {
		sepWidth = 30
	}
	b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorMuted).Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	if len(p.tasks) == 0 && !p.adding {
		b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorTextMuted).Italic(true).Render("  No tasks yet. Press 'a' to add one."))
		b.WriteString("\n")
	} else {
		start, rows := p.visibleRows()
		textWidth := max(5, p.width-4-5) // pane padding, checkbox

		for i, task := range p.tasks {
			if i < start || i >= start+rows {
				continue
			}

			checkbox := p.styles.TaskCheckboxPending
			if task.Completed {
				checkbox = p.styles.TaskCheckboxDone
			}
			text := runewidth.Truncate(task.Text, textWidth, "..")

			var line string
			if i == p.cursor && p.focused && !p.adding {
				line = p.styles.TaskSelectedStyle.Render(fmt.Sprintf(" %s %s ", checkbox, text))
			} else if task.Completed {
				line = fmt.Sprintf(" %s %s", checkbox, p.styles.TaskDoneStyle.Render(text))
			} else {
				line = fmt.Sprintf(" %s %s", checkbox, p.styles.TaskPendingStyle.Render(text))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}

		done, total := p.Stats()
		b.WriteString("\n")
		b.WriteString("  " + p.styles.StatLabelStyle.Render(fmt.Sprintf("%d/%d complete", done, total)))
		b.WriteString("\n")
	}

	if p.adding {
		b.WriteString("\n")
		b.WriteString(p.styles.InputPromptStyle.Render("+ ") + p.input.View())
		b.WriteString("\n")
	}

	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(b.String())
}

// Stats returns task statistics.
func (p *TaskPane) Stats() (done, total int) {
	for _, task := range p.tasks {
		if task.Completed {
			done++
		}
	}
	return done, len(p.tasks)
}
