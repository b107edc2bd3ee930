package importer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"lifeos/internal/calendar"
)

// TaskwarriorImporter reads the output of "task export": either a JSON
// array or newline-delimited JSON. Deleted tasks are skipped and completed
// tasks arrive completed.
type TaskwarriorImporter struct{}

// taskwarriorTask is the subset of a Taskwarrior task that is imported.
type taskwarriorTask struct {
	Description string `json:"description"`
	Status      string `json:"status"`
	Project     string `json:"project"`
	Due         string `json:"due"`
}

// maxNDJSONLine bounds a single NDJSON record.
const maxNDJSONLine = 4 << 20

// taskwarriorDateLayouts are tried in order; the first is what "task export"
// writes.
var taskwarriorDateLayouts = []string{
	"20060102T150405Z",
	"20060102T150405",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (*TaskwarriorImporter) Name() string { return "taskwarrior" }

func (*TaskwarriorImporter) Parse(r io.Reader) ([]Task, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty input")
		}
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if first == '[' {
		return parseJSONArray(br)
	}
	return parseNDJSON(br)
}

// peekNonSpace discards leading whitespace and returns the next byte
// without consuming it.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b, br.UnreadByte()
	}
}

func parseJSONArray(r io.Reader) ([]Task, error) {
	dec := json.NewDecoder(r)
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse JSON array: %w", err)
	}

	var tasks []Task
	for n := 1; dec.More(); n++ {
		var tw taskwarriorTask
		if err := dec.Decode(&tw); err != nil {
			return nil, fmt.Errorf("failed to decode task %d: %w", n, err)
		}
		if t, ok := tw.task(); ok {
			tasks = append(tasks, t)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse JSON array: %w", err)
	}
	return tasks, nil
}

func parseNDJSON(r io.Reader) ([]Task, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxNDJSONLine)

	var tasks []Task
	lines := 0
	for sc.Scan() {
		lines++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var tw taskwarriorTask
		if err := json.Unmarshal(line, &tw); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", lines, err)
		}
		if t, ok := tw.task(); ok {
			tasks = append(tasks, t)
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("taskwarrior NDJSON line %d exceeds %d bytes", lines+1, maxNDJSONLine)
		}
		return nil, fmt.Errorf("failed to read NDJSON: %w", err)
	}
	return tasks, nil
}

// task converts tw, reporting false for deleted or blank tasks.
func (tw taskwarriorTask) task() (Task, bool) {
	text := strings.TrimSpace(tw.Description)
	if tw.Status == "deleted" || text == "" {
		return Task{}, false
	}
	return Task{
		Text:    text,
		Project: tw.Project,
		Due:     parseTaskwarriorDate(tw.Due),
		Done:    tw.Status == "completed",
	}, true
}

// parseTaskwarriorDate turns a Taskwarrior timestamp into the local
// date-key, or "" when it cannot be read. Timestamps ending in Z are UTC
// instants; the rest are already local.
func parseTaskwarriorDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range taskwarriorDateLayouts {
		loc := time.Local
		if strings.HasSuffix(layout, "Z") {
			loc = time.UTC
		}
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return calendar.Today(t.Local())
		}
	}
	return ""
}
