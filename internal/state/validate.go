package state

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Length limits applied at the input boundary.
const (
	MaxHabitNameLen = 60
	MaxGoalTitleLen = 120
	MaxTaskTextLen  = 200
	MaxAlarmLabel   = 60
	MaxUserNameLen  = 60

	MinScore = 1
	MaxScore = 5
)

var (
	// ErrEmptyName is returned when a required name or text is blank.
	ErrEmptyName = errors.New("name is required")

	// ErrTooLong is returned when a name or text exceeds its limit.
	ErrTooLong = errors.New("text too long")
)

// CleanName trims s and checks it against limit runes.
func CleanName(s string, limit int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(s) > limit {
		return "", fmt.Errorf("%w (max %d)", ErrTooLong, limit)
	}
	return s, nil
}

// ValidScore reports whether v is an accepted mood or rating value.
func ValidScore(v int) bool {
	return v >= MinScore && v <= MaxScore
}

// ParseFrequency maps user input to a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FrequencyDaily, nil
	case FrequencyDaily, FrequencyWeekly, FrequencyCustom:
		return f, nil
	default:
		return "", fmt.Errorf("invalid frequency %q: must be daily, weekly, or custom", s)
	}
}

// ParseRepeat maps user input to a Repeat.
func ParseRepeat(s string) (Repeat, error) {
	switch r := Repeat(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RepeatNever, nil
	case RepeatDaily, RepeatWeekdays, RepeatWeekends, RepeatNever:
		return r, nil
	default:
		return "", fmt.Errorf("invalid repeat %q: must be daily, weekdays, weekends, or never", s)
	}
}

// ValidAlarmTime reports whether s is a 24h HH:MM time.
func ValidAlarmTime(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	for _, c := range []byte{s[0], s[1], s[3], s[4]} {
		if c < '0' || c > '9' {
			return false
		}
	}
	return h < 24 && m < 60
}
