package reports

import (
	"encoding/json"
	"fmt"
)

// Report is any report the generator produces.
type Report interface {
	*DailyReport | *WeeklyReport
}

// FormatJSON encodes a report as indented JSON.
func FormatJSON[R Report](r R) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}
