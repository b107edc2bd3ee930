// Package ui provides terminal user interface components for lifeos.
// This file contains the main App model which coordinates all panes and
// routes messages using the Bubble Tea architecture.
package ui

import (
	"fmt"
	"strings"
	"time"

	"lifeos/internal/calendar"
	"lifeos/internal/config"
	"lifeos/internal/insights"
	"lifeos/internal/notify"
	"lifeos/internal/session"
	"lifeos/internal/state"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// PaneID identifies each pane in the application.
type PaneID int

const (
	PaneTasks PaneID = iota
	PaneTimer
	PaneHabits
)

// LayoutMode determines how panes are arranged based on terminal width.
type LayoutMode int

const (
	// LayoutWide shows all three panes side-by-side.
	LayoutWide LayoutMode = iota
	// LayoutNarrow shows only the focused pane with a tab bar.
	LayoutNarrow
)

// headerRows is the title bar, the day line and the metrics line.
const headerRows = 3

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	Keys                  *config.KeysConfig
	ConfirmDeletions      bool
	ShowOnboarding        bool
	NarrowLayoutThreshold int
	MetricsWindows        []int
	Notifier              *notify.Notifier
}

// App is the main application model that coordinates all panes.
type App struct {
	sess        *session.Session
	snap        *state.Snapshot
	metrics     []insights.Metrics
	styles      *Styles
	config      *AppConfig
	taskPane    *TaskPane
	timerPane   *TimerPane
	habitsPane  *HabitsPane
	helpOverlay *HelpOverlay
	journal     *JournalEditor
	undoBusy    bool
	confirmDel  *confirmDeleteState
	activePane  PaneID
	layoutMode  LayoutMode
	showHelp    bool
	showWelcome bool
	width       int
	height      int
	status      string
	statusErr   bool
	statusUntil time.Time
	quitting    bool

	// date is the day being viewed; followToday moves it at midnight
	// until the user navigates away.
	date        string
	followToday bool
	now         func() time.Time

	// Key bindings
	keys     GlobalKeyMap
	helpKeys HelpKeyMap

	// Pane positions for mouse click detection (x coordinates)
	tasksPaneStart  int
	tasksPaneEnd    int
	timerPaneStart  int
	timerPaneEnd    int
	habitsPaneStart int
	habitsPaneEnd   int
	contentTop      int // Y coordinate where content starts
}

type confirmDeleteState struct {
	title string
	body  string
	cmd   tea.Cmd
}

// NewApp creates a new application over an open session.
func NewApp(sess *session.Session, styles *Styles, cfg *AppConfig) *App {
	if cfg == nil {
		cfg = &AppConfig{
			ConfirmDeletions:      true,
			ShowOnboarding:        true,
			NarrowLayoutThreshold: 80,
		}
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}
	if len(cfg.MetricsWindows) == 0 {
		cfg.MetricsWindows = []int{insights.WeekWindow, insights.MonthWindow}
	}

	app := &App{
		sess:        sess,
		styles:      styles,
		config:      cfg,
		taskPane:    NewTaskPane(sess, styles, cfg.Keys),
		timerPane:   NewTimerPane(sess, styles, cfg.Keys),
		habitsPane:  NewHabitsPane(sess, styles, cfg.Keys),
		helpOverlay: NewHelpOverlay(styles),
		journal:     NewJournalEditor(sess, styles, cfg.Keys),
		activePane:  PaneTasks,
		followToday: true,
		now:         time.Now,
		keys:        NewGlobalKeyMap(cfg.Keys),
		helpKeys:    DefaultHelpKeyMap(),
	}
	app.date = calendar.Today(app.now())
	app.refresh()
	app.showWelcome = cfg.ShowOnboarding && len(app.snap.Days) == 0

	app.taskPane.SetFocused(true)
	app.timerPane.SetFocused(false)
	app.habitsPane.SetFocused(false)

	return app
}

// refresh pulls the current snapshot from the session into every pane.
func (a *App) refresh() {
	a.snap = a.sess.Snapshot()
	a.taskPane.setDay(a.snap, a.date)
	a.habitsPane.setDay(a.snap, a.date)
	a.timerPane.setTimer(a.snap.FocusTimer)

	a.metrics = a.metrics[:0]
	for _, n := range a.config.MetricsWindows {
		a.metrics = append(a.metrics, insights.ComputeMetrics(a.snap, n))
	}
}

// setDate moves the viewed day.
func (a *App) setDate(key string) {
	a.date = key
	a.followToday = key == calendar.Today(a.now())
	a.refresh()
}

// Init starts the clock; the snapshot is already loaded by the session.
func (a *App) Init() tea.Cmd {
	return tickCmd()
}

// Update handles all messages and routes them appropriately.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Session results are processed regardless of which pane is active.
	switch msg := msg.(type) {
	case mutationMsg:
		a.refresh()
		if msg.err != nil {
			a.SetStatus("Not saved: "+msg.err.Error(), true)
		}
		if !msg.changed {
			return a, nil
		}
		return a, notifyMilestonesCmd(a.config.Notifier, msg.before, msg.after)

	case undoResultMsg:
		a.undoBusy = false
		a.refresh()
		switch {
		case msg.err != nil:
			a.SetStatus("Undo failed: "+msg.err.Error(), true)
		case msg.desc != "":
			a.SetStatus("Undid: "+msg.desc, false)
		default:
			a.SetStatus("Nothing to undo", false)
		}
		return a, nil

	case redoResultMsg:
		a.undoBusy = false
		a.refresh()
		switch {
		case msg.err != nil:
			a.SetStatus("Redo failed: "+msg.err.Error(), true)
		case msg.desc != "":
			a.SetStatus("Redid: "+msg.desc, false)
		default:
			a.SetStatus("Nothing to redo", false)
		}
		return a, nil

	case timerCompletedMsg:
		a.refresh()
		if msg.err != nil {
			a.SetStatus("Not saved: "+msg.err.Error(), true)
		} else {
			a.SetStatus("Focus session complete", false)
		}
		return a, notifyTimerCmd(a.config.Notifier, msg.snap)

	case notifyResultMsg:
		if msg.err != nil {
			a.SetStatus("Notification: "+msg.err.Error(), true)
		}
		return a, nil

	case tickMsg:
		now := time.Time(msg)
		if a.status != "" && !a.statusUntil.IsZero() && now.After(a.statusUntil) {
			a.status = ""
			a.statusErr = false
			a.statusUntil = time.Time{}
		}
		if today := calendar.Today(now); a.followToday && today != a.date {
			a.date = today
			a.refresh()
		}
		cmds := []tea.Cmd{tickCmd()}
		if a.snap.FocusTimer.IsRunning {
			cmds = append(cmds, tickTimerCmd(a.sess, now))
		}
		return a, tea.Batch(cmds...)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.MouseMsg:
		return a, a.handleMouse(msg)
	}

	if a.journal.IsOpen() {
		return a, a.journal.Update(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := a.handleKey(msg); handled {
			return a, cmd
		}
	}

	// Forward to active pane (only if help is not shown)
	if a.showHelp {
		return a, nil
	}
	switch a.activePane {
	case PaneTasks:
		return a, a.taskPane.Update(msg)
	case PaneTimer:
		return a, a.timerPane.Update(msg)
	case PaneHabits:
		return a, a.habitsPane.Update(msg)
	}
	return a, nil
}

// inInputMode reports whether a pane owns the keyboard for text entry.
func (a *App) inInputMode() bool {
	return a.taskPane.IsAdding() || a.timerPane.IsSwitching() || a.habitsPane.IsAdding()
}

// handleKey processes app-level keys. It reports false when the key should
// go to the active pane.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if a.showWelcome {
		a.showWelcome = false
		return nil, true
	}

	if a.confirmDel != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			cmd := a.confirmDel.cmd
			a.confirmDel = nil
			return cmd, true
		case "n", "N", "esc":
			a.confirmDel = nil
			a.SetStatus("Canceled", false)
		}
		return nil, true
	}

	if a.showHelp {
		if key.Matches(msg, a.helpKeys.Close) {
			a.showHelp = false
		}
		return nil, true
	}

	if a.inInputMode() {
		return nil, false
	}

	if a.config.ConfirmDeletions {
		if cmd, ok := a.confirmDelete(msg); ok {
			return cmd, true
		}
	}

	d, _ := a.snap.Day(a.date)

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		return tea.Quit, true

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true

	case key.Matches(msg, a.keys.NextPane):
		a.switchPane()

	case key.Matches(msg, a.keys.Pane1):
		a.setActivePane(PaneTasks)

	case key.Matches(msg, a.keys.Pane2):
		a.setActivePane(PaneTimer)

	case key.Matches(msg, a.keys.Pane3):
		a.setActivePane(PaneHabits)

	case key.Matches(msg, a.keys.Undo):
		return a.startHistory(undoCmd), true

	case key.Matches(msg, a.keys.Redo):
		return a.startHistory(redoCmd), true

	case key.Matches(msg, a.keys.PrevDay):
		a.setDate(calendar.PreviousDate(a.date))

	case key.Matches(msg, a.keys.NextDay):
		a.setDate(calendar.NextDate(a.date))

	case key.Matches(msg, a.keys.Today):
		a.setDate(calendar.Today(a.now()))

	case key.Matches(msg, a.keys.Journal):
		return a.journal.Open(a.date, d.Journal), true

	case key.Matches(msg, a.keys.MoodUp):
		return setMoodCmd(a.sess, a.date, stepScore(d.Mood, 1)), true

	case key.Matches(msg, a.keys.MoodDown):
		if d.Mood == nil {
			return nil, true
		}
		return setMoodCmd(a.sess, a.date, stepScore(d.Mood, -1)), true

	case key.Matches(msg, a.keys.RatingUp):
		return setRatingCmd(a.sess, a.date, stepScore(d.Rating, 1)), true

	case key.Matches(msg, a.keys.RatingDown):
		if d.Rating == nil {
			return nil, true
		}
		return setRatingCmd(a.sess, a.date, stepScore(d.Rating, -1)), true

	default:
		return nil, false
	}
	return nil, true
}

// stepScore moves a 1..5 score by delta. An unset score steps to the
// bottom of the scale.
func stepScore(v *int, delta int) int {
	if v == nil {
		return state.MinScore
	}
	return min(max(*v+delta, state.MinScore), state.MaxScore)
}

func (a *App) startHistory(run func(*session.Session) tea.Cmd) tea.Cmd {
	if a.undoBusy {
		a.SetStatus("Busy", true)
		return nil
	}
	a.undoBusy = true
	return run(a.sess)
}

// confirmDelete intercepts delete keys in the list panes.
func (a *App) confirmDelete(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch a.activePane {
	case PaneTasks:
		if !key.Matches(msg, a.taskPane.keys.Delete) {
			return nil, false
		}
		task, ok := a.taskPane.Selected()
		if !ok {
			a.SetStatus("No task selected", true)
			return nil, true
		}
		a.confirmDel = &confirmDeleteState{
			title: "Delete task?",
			body:  runewidth.Truncate(task.Text, 60, "..."),
			cmd:   deleteTaskCmd(a.sess, a.date, task),
		}
		return nil, true

	case PaneHabits:
		if !key.Matches(msg, a.habitsPane.keys.Delete) {
			return nil, false
		}
		habit, ok := a.habitsPane.Selected()
		if !ok {
			a.SetStatus("No habit selected", true)
			return nil, true
		}
		a.confirmDel = &confirmDeleteState{
			title: "Delete habit?",
			body:  runewidth.Truncate(habit.Name, 60, "...") + "\nIts history and goal links are removed too.",
			cmd:   deleteHabitCmd(a.sess, habit),
		}
		return nil, true
	}
	return nil, false
}

// handleMouse routes clicks to panes and closes overlays.
func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.showWelcome || a.confirmDel != nil || a.showHelp || a.journal.IsOpen() {
		if msg.Action == tea.MouseActionPress && !a.journal.IsOpen() {
			if a.confirmDel != nil {
				a.SetStatus("Canceled", false)
			}
			a.showWelcome = false
			a.confirmDel = nil
			a.showHelp = false
		}
		return nil
	}

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		// In narrow mode the tab bar sits right above the content.
		if a.layoutMode == LayoutNarrow && msg.Y == a.contentTop-1 {
			tabWidth := max(1, a.width/3)
			a.setActivePane(PaneID(min(msg.X/tabWidth, int(PaneHabits))))
			return nil
		}
		if pane := a.paneAtPosition(msg.X); pane >= 0 && pane != a.activePane {
			a.setActivePane(pane)
		}
	}

	if msg.Y < a.contentTop {
		return nil
	}
	local := msg
	local.Y = msg.Y - a.contentTop
	if a.layoutMode == LayoutWide {
		switch a.activePane {
		case PaneTimer:
			local.X = msg.X - a.timerPaneStart
		case PaneHabits:
			local.X = msg.X - a.habitsPaneStart
		}
	}

	switch a.activePane {
	case PaneTasks:
		return a.taskPane.Update(local)
	case PaneTimer:
		return a.timerPane.Update(local)
	case PaneHabits:
		return a.habitsPane.Update(local)
	}
	return nil
}

// switchPane cycles through panes.
func (a *App) switchPane() {
	a.setActivePane((a.activePane + 1) % 3)
}

// setActivePane sets the active pane and updates focus states.
func (a *App) setActivePane(pane PaneID) {
	a.activePane = pane

	a.taskPane.SetFocused(pane == PaneTasks)
	a.timerPane.SetFocused(pane == PaneTimer)
	a.habitsPane.SetFocused(pane == PaneHabits)
}

// paneAtPosition returns which pane is at the given X coordinate.
// Returns -1 if no pane is at that position.
func (a *App) paneAtPosition(x int) PaneID {
	if a.layoutMode == LayoutNarrow {
		return a.activePane
	}

	switch {
	case x >= a.tasksPaneStart && x < a.tasksPaneEnd:
		return PaneTasks
	case x >= a.timerPaneStart && x < a.timerPaneEnd:
		return PaneTimer
	case x >= a.habitsPaneStart && x < a.habitsPaneEnd:
		return PaneHabits
	}
	return -1
}

// updateLayout recalculates pane sizes based on terminal dimensions.
func (a *App) updateLayout() {
	// Leave room for the header and the help bar
	contentHeight := a.height - headerRows - 3
	if contentHeight < 10 {
		contentHeight = 10
	}

	a.contentTop = headerRows
	a.helpOverlay.SetSize(a.width, a.height)
	a.journal.SetSize(a.width, a.height)

	totalWidth := a.width - 4

	threshold := a.config.NarrowLayoutThreshold
	if threshold <= 0 {
		threshold = 80
	}

	if a.width < threshold {
		a.layoutMode = LayoutNarrow

		narrowHeight := max(8, contentHeight-1)
		paneWidth := max(20, totalWidth)

		a.taskPane.SetSize(paneWidth, narrowHeight)
		a.timerPane.SetSize(paneWidth, narrowHeight)
		a.habitsPane.SetSize(paneWidth, narrowHeight)

		a.tasksPaneStart, a.tasksPaneEnd = 0, a.width
		a.timerPaneStart, a.timerPaneEnd = 0, a.width
		a.habitsPaneStart, a.habitsPaneEnd = 0, a.width
		a.contentTop = headerRows + 1
		return
	}

	a.layoutMode = LayoutWide

	var tasksWidth, timerWidth, habitsWidth int
	if totalWidth < 120 {
		tasksWidth = (totalWidth * 33) / 100
		timerWidth = (totalWidth * 26) / 100
		habitsWidth = totalWidth - tasksWidth - timerWidth - 2
	} else {
		tasksWidth = min((totalWidth*35)/100, 50)
		timerWidth = min((totalWidth*25)/100, 36)
		habitsWidth = min(totalWidth-tasksWidth-timerWidth-2, 60)
	}

	a.taskPane.SetSize(tasksWidth, contentHeight)
	a.timerPane.SetSize(timerWidth, contentHeight)
	a.habitsPane.SetSize(habitsWidth, contentHeight)

	// Panes are separated by one space.
	a.tasksPaneStart = 0
	a.tasksPaneEnd = tasksWidth
	a.timerPaneStart = tasksWidth + 1
	a.timerPaneEnd = a.timerPaneStart + timerWidth
	a.habitsPaneStart = a.timerPaneEnd + 1
	a.habitsPaneEnd = a.habitsPaneStart + habitsWidth
}

// View renders the entire app.
func (a *App) View() string {
	switch {
	case a.quitting:
		return a.renderGoodbye()
	case a.showWelcome:
		return a.renderWelcome()
	case a.confirmDel != nil:
		return a.renderConfirmDelete()
	case a.journal.IsOpen():
		return a.journal.View()
	case a.showHelp:
		return a.helpOverlay.View()
	}

	var b strings.Builder
	b.WriteString(a.renderTitleBar())
	b.WriteString("\n")
	b.WriteString(a.renderDayLine())
	b.WriteString("\n")
	b.WriteString(a.renderMetricsLine())
	b.WriteString("\n")

	switch a.layoutMode {
	case LayoutNarrow:
		b.WriteString(a.renderPaneTabs())
		b.WriteString("\n")
		switch a.activePane {
		case PaneTasks:
			b.WriteString(a.taskPane.View())
		case PaneTimer:
			b.WriteString(a.timerPane.View())
		case PaneHabits:
			b.WriteString(a.habitsPane.View())
		}
	default:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			a.taskPane.View(), " ", a.timerPane.View(), " ", a.habitsPane.View()))
	}
	b.WriteString("\n")
	b.WriteString(a.renderHelpBar())

	return b.String()
}

func (a *App) overlay(border lipgloss.Color, title, body, hint string) string {
	overlayWidth := 60
	if a.width > 0 {
		overlayWidth = min(60, max(20, a.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(border)

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(a.styles.ColorText).Render(body))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(a.styles.ColorTextMuted).Italic(true).Render(hint))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, overlayStyle.Render(b.String()))
}

func (a *App) renderWelcome() string {
	return a.overlay(a.styles.ColorPrimary, "Welcome to lifeos",
		"Tab switches panes. ? opens help.\nAdd a task with 'a', toggle a habit with space.\nJ writes today's journal, + and - set your mood.",
		"Press any key to continue")
}

func (a *App) renderConfirmDelete() string {
	return a.overlay(a.styles.ColorDanger, a.confirmDel.title, a.confirmDel.body,
		"[y/enter] delete    [n/esc] cancel")
}

// renderPaneTabs renders a tab bar showing available panes.
func (a *App) renderPaneTabs() string {
	tabs := []struct {
		id    PaneID
		label string
	}{
		{PaneTasks, "Tasks"},
		{PaneTimer, "Timer"},
		{PaneHabits, "Habits"},
	}

	activeTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorPrimary).
		Bold(true)
	inactiveTabStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	parts := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		if tab.id == a.activePane {
			parts = append(parts, activeTabStyle.Render("["+tab.label+"]"))
		} else {
			parts = append(parts, inactiveTabStyle.Render(" "+tab.label+" "))
		}
	}

	tabBar := strings.Join(parts, "  ")
	if padding := (a.width - lipgloss.Width(tabBar)) / 2; padding > 0 {
		tabBar = strings.Repeat(" ", padding) + tabBar
	}
	return tabBar
}

// renderGoodbye shows an exit message with the day's progress.
func (a *App) renderGoodbye() string {
	tasksDone, tasksTotal := a.taskPane.Stats()
	habitsDone, habitsTotal := a.habitsPane.CompletionRate()

	var b strings.Builder
	b.WriteString("\n  See you later!\n\n")

	if tasksTotal > 0 || habitsTotal > 0 {
		fmt.Fprintf(&b, "  Progress for %s:\n", a.date)
		if tasksTotal > 0 {
			fmt.Fprintf(&b, "     Tasks:  %d/%d (%d%%)\n", tasksDone, tasksTotal, tasksDone*100/tasksTotal)
		}
		if habitsTotal > 0 {
			fmt.Fprintf(&b, "     Habits: %d/%d (%d%%)\n", habitsDone, habitsTotal, habitsDone*100/habitsTotal)
		}
		fmt.Fprintf(&b, "     Score:  %d\n", insights.DayProductivityScore(a.snap, a.date))
		b.WriteString("\n")
	}

	return b.String()
}

// renderTitleBar creates the top title bar with stats and timer status.
func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render(" lifeos ")

	tasksDone, tasksTotal := a.taskPane.Stats()
	habitsDone, habitsTotal := a.habitsPane.CompletionRate()

	var statsItems []string
	if tasksTotal > 0 {
		statsItems = append(statsItems, fmt.Sprintf("Tasks: %d/%d", tasksDone, tasksTotal))
	}
	if habitsTotal > 0 {
		statsItems = append(statsItems, fmt.Sprintf("Habits: %d/%d", habitsDone, habitsTotal))
	}
	if _, ok := a.snap.Day(a.date); ok {
		statsItems = append(statsItems, fmt.Sprintf("Score: %d", insights.DayProductivityScore(a.snap, a.date)))
	}
	stats := a.styles.StatLabelStyle.Render(strings.Join(statsItems, "  "))

	var timerStatus string
	if a.timerPane.IsRunning() {
		timerStatus = a.styles.TimerRunningStyle.Render("▶ " + formatClock(a.timerPane.Remaining()))
	}

	dateStr := a.date
	if t, err := calendar.Parse(a.date); err == nil {
		dateStr = t.Format("Mon Jan 2 2006")
	}
	if a.date == calendar.Today(a.now()) {
		dateStr += " · today"
	}
	date := a.styles.DateStyle.Render(dateStr)

	usedWidth := lipgloss.Width(title) + lipgloss.Width(stats) + lipgloss.Width(timerStatus) + lipgloss.Width(date)
	spacerWidth := max(2, a.width-usedWidth-6)

	parts := []string{title}
	if stats != "" {
		parts = append(parts, "  "+stats)
	}
	parts = append(parts, strings.Repeat(" ", spacerWidth/2))
	if timerStatus != "" {
		parts = append(parts, timerStatus)
	}
	parts = append(parts, strings.Repeat(" ", spacerWidth-spacerWidth/2), date)

	return strings.Join(parts, "")
}

// renderDayLine shows mood, rating and the start of the journal.
func (a *App) renderDayLine() string {
	d, _ := a.snap.Day(a.date)

	line := " " + a.styles.MetricLabelStyle.Render("Mood ") + a.styles.RenderScore(d.Mood) +
		"  " + a.styles.MetricLabelStyle.Render("Rating ") + a.styles.RenderScore(d.Rating) +
		"  " + a.styles.MetricLabelStyle.Render("Journal ")

	journal := strings.TrimSpace(d.Journal)
	if journal == "" {
		return line + a.styles.StatLabelStyle.Render("(empty, press J)")
	}
	first, _, _ := strings.Cut(journal, "\n")
	room := max(10, a.width-lipgloss.Width(line)-2)
	return line + a.styles.JournalStyle.Render(runewidth.Truncate(first, room, "…"))
}

// renderMetricsLine shows dashboard metrics for each configured window.
func (a *App) renderMetricsLine() string {
	parts := make([]string, 0, len(a.metrics)+1)
	for _, m := range a.metrics {
		mood := "-"
		if m.AvgMood != nil {
			mood = fmt.Sprintf("%.1f", *m.AvgMood)
		}
		parts = append(parts, a.styles.MetricLabelStyle.Render(fmt.Sprintf("%dd ", m.Window))+
			a.styles.MetricValueStyle.Render(fmt.Sprintf("%d%%", m.ProductivityScore))+
			a.styles.MetricLabelStyle.Render(fmt.Sprintf(" mood %s journal %d%%", mood, m.JournalConsistency)))
	}
	if len(a.metrics) > 0 && a.metrics[0].CurrentBestStreak != nil && a.metrics[0].CurrentBestStreak.Streak > 0 {
		best := a.metrics[0].CurrentBestStreak
		parts = append(parts, a.styles.HabitStreakStyle.Render(fmt.Sprintf("best %s %dd", best.HabitName, best.Streak)))
	}
	return " " + strings.Join(parts, "   ")
}

// renderHelpBar creates the bottom help bar with context-sensitive hints.
func (a *App) renderHelpBar() string {
	if a.status != "" {
		if a.statusErr {
			return a.styles.ErrorStyle.Render(a.status)
		}
		return a.styles.StatusStyle.Render(a.status)
	}

	if a.taskPane.IsAdding() || a.timerPane.IsSwitching() {
		return a.styles.RenderHelp("enter", "save", "esc", "cancel")
	}
	if a.habitsPane.IsAdding() {
		return a.styles.RenderHelp("enter", "next/save", "esc", "cancel")
	}

	switch a.activePane {
	case PaneTimer:
		action := "start"
		if a.timerPane.IsRunning() {
			action = "pause"
		}
		return a.styles.RenderHelp("space", action, "r", "reset", "s", "length", "[/]", "day", "?", "help")
	default:
		return a.styles.RenderHelp("a", "add", "space", "toggle", "x", "del", "J", "journal", "+/-", "mood", "[/]", "day", "?", "help")
	}
}

// SetStatus sets a status message to display to the user.
func (a *App) SetStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	ttl := 5 * time.Second
	if isErr {
		ttl = 8 * time.Second
	}
	a.statusUntil = a.now().Add(ttl)
}

// Run starts the Bubble Tea program over the session.
func Run(sess *session.Session, styles *Styles, cfg *AppConfig) error {
	app := NewApp(sess, styles, cfg)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
