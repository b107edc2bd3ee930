// Package mcp exposes the tracker to AI assistants over the Model Context
// Protocol. Tools read the current snapshot and apply mutations through the
// shared session, so changes are persisted and can be undone from the TUI.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lifeos/internal/calendar"
	"lifeos/internal/insights"
	"lifeos/internal/notify"
	"lifeos/internal/session"
	"lifeos/internal/state"
	"lifeos/internal/storage"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server   *server.MCPServer
	sess     *session.Session
	notifier *notify.Notifier
	now      func() time.Time
}

// NewServer creates a new MCP server over sess. notifier may be nil.
func NewServer(sess *session.Session, notifier *notify.Notifier, version string) *Server {
	s := &Server{
		sess:     sess,
		notifier: notifier,
		now:      time.Now,
	}
	s.server = server.NewMCPServer(
		"lifeos",
		version,
		server.WithLogging(),
	)
	s.registerTools()
	return s
}

func dateParam() mcp.ToolOption {
	return mcp.WithString(
		"date",
		mcp.Description("Day as YYYY-MM-DD (default: today)"),
	)
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool(
			"get_snapshot",
			mcp.WithDescription("Get the full tracker state as exported JSON"),
		),
		s.handleGetSnapshot,
	)

	s.server.AddTool(
		mcp.NewTool(
			"get_day",
			mcp.WithDescription("Get the journal, mood, rating, habits, tasks and productivity score for one day"),
			dateParam(),
		),
		s.handleGetDay,
	)

	s.server.AddTool(
		mcp.NewTool(
			"get_metrics",
			mcp.WithDescription("Get dashboard metrics over the most recent recorded days"),
			mcp.WithNumber(
				"window",
				mcp.Description("Number of recorded days to include (default: 7)"),
			),
		),
		s.handleGetMetrics,
	)

	s.server.AddTool(
		mcp.NewTool(
			"compare_days",
			mcp.WithDescription("Compare two days; differences are first minus second"),
			mcp.WithString("first", mcp.Required(), mcp.Description("First day as YYYY-MM-DD")),
			mcp.WithString("second", mcp.Required(), mcp.Description("Second day as YYYY-MM-DD")),
		),
		s.handleCompareDays,
	)

	s.server.AddTool(
		mcp.NewTool(
			"toggle_habit",
			mcp.WithDescription("Toggle a habit's completion for a day"),
			mcp.WithString("habit_id", mcp.Required(), mcp.Description("The ID of the habit")),
			dateParam(),
		),
		s.handleToggleHabit,
	)

	s.server.AddTool(
		mcp.NewTool(
			"set_journal",
			mcp.WithDescription("Replace the journal entry for a day"),
			mcp.WithString("text", mcp.Required(), mcp.Description("Journal text")),
			dateParam(),
		),
		s.handleSetJournal,
	)

	s.server.AddTool(
		mcp.NewTool(
			"set_mood",
			mcp.WithDescription("Set the mood for a day (1-5)"),
			mcp.WithNumber("mood", mcp.Required(), mcp.Description("Mood from 1 (low) to 5 (great)")),
			dateParam(),
		),
		s.handleSetMood,
	)

	s.server.AddTool(
		mcp.NewTool(
			"set_rating",
			mcp.WithDescription("Set the day rating (1-5)"),
			mcp.WithNumber("rating", mcp.Required(), mcp.Description("Rating from 1 to 5")),
			dateParam(),
		),
		s.handleSetRating,
	)

	s.server.AddTool(
		mcp.NewTool(
			"add_task",
			mcp.WithDescription("Add a task to a day"),
			mcp.WithString("text", mcp.Required(), mcp.Description("Task text")),
			dateParam(),
		),
		s.handleAddTask,
	)

	s.server.AddTool(
		mcp.NewTool(
			"toggle_task",
			mcp.WithDescription("Toggle a task's completion"),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("The ID of the task")),
			dateParam(),
		),
		s.handleToggleTask,
	)

	s.server.AddTool(
		mcp.NewTool(
			"create_goal",
			mcp.WithDescription("Create a goal tracked through linked habits"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Goal title")),
			mcp.WithString("linked_habits", mcp.Description("Comma-separated habit IDs")),
			mcp.WithString("deadline", mcp.Description("Optional deadline as YYYY-MM-DD")),
		),
		s.handleCreateGoal,
	)

	s.server.AddTool(
		mcp.NewTool(
			"find_habit",
			mcp.WithDescription("Fuzzy-search habits by name"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Part of the habit name")),
		),
		s.handleFindHabit,
	)

	s.server.AddTool(
		mcp.NewTool(
			"timer_status",
			mcp.WithDescription("Get the focus timer state"),
		),
		s.handleTimerStatus,
	)
}

// Start serves MCP requests via stdio until the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	return server.ServeStdio(s.server)
}

func (s *Server) today() string {
	return calendar.Today(s.now())
}

// dateArg returns the "date" argument, defaulting to today.
func (s *Server) dateArg(request mcp.CallToolRequest, name string) (string, error) {
	key := request.GetString(name, "")
	if key == "" {
		return s.today(), nil
	}
	if !calendar.Valid(key) {
		return "", fmt.Errorf("%s must be YYYY-MM-DD, got %q", name, key)
	}
	return key, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// apply runs a mutation and turns a save failure into a tool error. The
// change itself is kept in memory by the session.
func (s *Server) apply(ctx context.Context, desc string, fn session.Mutation) *mcp.CallToolResult {
	if _, err := s.sess.Apply(ctx, desc, fn); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("change applied but not saved: %v", err))
	}
	return nil
}

func (s *Server) handleGetSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := storage.Encode(s.sess.Snapshot())
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleGetDay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := s.dateArg(request, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.dayView(s.sess.Snapshot(), key))
}

func (s *Server) dayView(snap *state.Snapshot, key string) map[string]interface{} {
	d, ok := snap.Day(key)
	habits := make([]map[string]interface{}, 0, len(snap.Habits))
	for _, h := range snap.SortedHabits() {
		habits = append(habits, map[string]interface{}{
			"id":     h.ID,
			"name":   h.Name,
			"done":   h.History[key],
			"streak": h.Streak,
		})
	}
	return map[string]interface{}{
		"date":         key,
		"recorded":     ok,
		"journal":      d.Journal,
		"mood":         d.Mood,
		"rating":       d.Rating,
		"tasks":        d.Tasks,
		"alarms":       d.Alarms,
		"habits":       habits,
		"productivity": insights.DayProductivityScore(snap, key),
	}
}

func (s *Server) handleGetMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	window := int(request.GetFloat("window", insights.WeekWindow))
	if window < 1 {
		return mcp.NewToolResultError("window must be at least 1"), nil
	}
	m := insights.ComputeMetrics(s.sess.Snapshot(), window)
	return jsonResult(map[string]interface{}{
		"metrics": m,
		"balance": insights.Balance(m),
	})
}

func (s *Server) handleCompareDays(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := request.RequireString("first"); err != nil {
		return mcp.NewToolResultError("first is required: " + err.Error()), nil
	}
	if _, err := request.RequireString("second"); err != nil {
		return mcp.NewToolResultError("second is required: " + err.Error()), nil
	}
	a, err := s.dateArg(request, "first")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := s.dateArg(request, "second")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]interface{}{
		"first":      a,
		"second":     b,
		"comparison": insights.CompareDays(s.sess.Snapshot(), a, b),
	})
}

func (s *Server) handleToggleHabit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	habitID, err := request.RequireString("habit_id")
	if err != nil {
		return mcp.NewToolResultError("habit_id is required: " + err.Error()), nil
	}
	key, err := s.dateArg(request, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	before := s.sess.Snapshot()
	h, ok := before.Habits[habitID]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("habit not found: %s", habitID)), nil
	}
	if res := s.apply(ctx, "Toggled: "+h.Name, func(snap *state.Snapshot) *state.Snapshot {
		return state.ToggleHabit(snap, habitID, key)
	}); res != nil {
		return res, nil
	}

	after := s.sess.Snapshot()
	if s.notifier != nil {
		_, _ = s.notifier.StreakMilestones(before, after)
	}
	updated := after.Habits[habitID]
	return jsonResult(map[string]interface{}{
		"habit_id": habitID,
		"date":     key,
		"done":     updated.History[key],
		"streak":   updated.Streak,
	})
}

func (s *Server) handleSetJournal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text is required: " + err.Error()), nil
	}
	key, err := s.dateArg(request, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res := s.apply(ctx, "Journal "+key, func(snap *state.Snapshot) *state.Snapshot {
		return state.SetJournal(snap, key, text)
	}); res != nil {
		return res, nil
	}
	return jsonResult(map[string]interface{}{"date": key, "length": len([]rune(text))})
}

func (s *Server) handleSetMood(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.setScore(ctx, request, "mood", state.SetMood)
}

func (s *Server) handleSetRating(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.setScore(ctx, request, "rating", state.SetRating)
}

func (s *Server) setScore(ctx context.Context, request mcp.CallToolRequest, name string, set func(*state.Snapshot, string, *int) *state.Snapshot) (*mcp.CallToolResult, error) {
	score := int(request.GetFloat(name, 0))
	if !state.ValidScore(score) {
		return mcp.NewToolResultError(fmt.Sprintf("%s must be between %d and %d", name, state.MinScore, state.MaxScore)), nil
	}
	key, err := s.dateArg(request, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res := s.apply(ctx, fmt.Sprintf("Set %s %d", name, score), func(snap *state.Snapshot) *state.Snapshot {
		return set(snap, key, state.Score(score))
	}); res != nil {
		return res, nil
	}
	return jsonResult(map[string]interface{}{"date": key, name: score})
}

func (s *Server) handleAddTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text is required: " + err.Error()), nil
	}
	text, err := state.CleanName(raw, state.MaxTaskTextLen)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid task: %v", err)), nil
	}
	key, err := s.dateArg(request, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task := state.Task{ID: state.NewID(), Text: text}
	if res := s.apply(ctx, "Added: "+text, func(snap *state.Snapshot) *state.Snapshot {
		return state.AddTask(snap, key, task)
	}); res != nil {
		return res, nil
	}
	return jsonResult(map[string]interface{}{"date": key, "task": task})
}

func (s *Server) handleToggleTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("task_id is required: " + err.Error()), nil
	}
	key, err := s.dateArg(request, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, _ := s.sess.Snapshot().Day(key)
	found := false
	for _, t := range d.Tasks {
		found = found || t.ID == taskID
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("task %s not found on %s", taskID, key)), nil
	}

	if res := s.apply(ctx, "Toggled task", func(snap *state.Snapshot) *state.Snapshot {
		return state.ToggleTask(snap, key, taskID)
	}); res != nil {
		return res, nil
	}

	d, _ = s.sess.Snapshot().Day(key)
	for _, t := range d.Tasks {
		if t.ID == taskID {
			return jsonResult(map[string]interface{}{"date": key, "task": t})
		}
	}
	return mcp.NewToolResultError("task disappeared"), nil
}

func (s *Server) handleCreateGoal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title is required: " + err.Error()), nil
	}
	title, err := state.CleanName(raw, state.MaxGoalTitleLen)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid title: %v", err)), nil
	}

	var linked []string
	if rawLinked := request.GetString("linked_habits", ""); rawLinked != "" {
		for _, id := range strings.Split(rawLinked, ",") {
			if id = strings.TrimSpace(id); id != "" {
				linked = append(linked, id)
			}
		}
	}

	var deadline *string
	if d := request.GetString("deadline", ""); d != "" {
		if !calendar.Valid(d) {
			return mcp.NewToolResultError(fmt.Sprintf("deadline must be YYYY-MM-DD, got %q", d)), nil
		}
		deadline = &d
	}

	id, err := session.Update(ctx, s.sess, "Created goal: "+title, func(snap *state.Snapshot) (*state.Snapshot, string) {
		return state.CreateGoal(snap, title, linked, deadline)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("change applied but not saved: %v", err)), nil
	}
	return jsonResult(s.sess.Snapshot().Goals[id])
}

func (s *Server) handleFindHabit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required: " + err.Error()), nil
	}
	matches := insights.FindHabits(s.sess.Snapshot(), query)
	habits := make([]map[string]interface{}, 0, len(matches))
	for _, h := range matches {
		habits = append(habits, map[string]interface{}{
			"id":        h.ID,
			"name":      h.Name,
			"frequency": h.Frequency,
			"streak":    h.Streak,
		})
	}
	return jsonResult(map[string]interface{}{
		"query":       query,
		"habits":      habits,
		"total_count": len(habits),
	})
}

func (s *Server) handleTimerStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ft := s.sess.Snapshot().FocusTimer
	now := s.now()
	return jsonResult(map[string]interface{}{
		"duration_minutes":  ft.Duration,
		"remaining_seconds": ft.Remaining(now),
		"is_running":        ft.IsRunning,
		"expired":           ft.Expired(now),
	})
}
