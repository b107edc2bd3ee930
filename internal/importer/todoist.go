package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"lifeos/internal/calendar"
)

// TodoistImporter reads the CSV files of a Todoist backup
// (Settings, Backups). Only rows of TYPE "task" are imported.
type TodoistImporter struct{}

func (*TodoistImporter) Name() string { return "todoist" }

// todoistDateLayouts are the DATE column shapes seen in backups, tried in
// order.
var todoistDateLayouts = []string{
	"2006-01-02",
	"Jan 2 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"01/02/2006",
	"02/01/2006",
}

func (*TodoistImporter) Parse(r io.Reader) ([]Task, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		cols[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"TYPE", "CONTENT"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	// field returns the named column of record, or "" when the row is short.
	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var tasks []Task
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return tasks, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if !strings.EqualFold(field(record, "TYPE"), "task") {
			continue
		}
		text := field(record, "CONTENT")
		if text == "" {
			continue
		}
		tasks = append(tasks, Task{
			Text:    text,
			Project: field(record, "PROJECT"),
			Due:     parseTodoistDate(field(record, "DATE")),
		})
	}
}

// parseTodoistDate turns a DATE cell into a date-key, or "" when it is
// blank or unreadable.
func parseTodoistDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range todoistDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return calendar.Today(t)
		}
	}
	return ""
}
