package state

// Day-field setters. Each creates the target day when it is missing and then
// applies a single change.

// SetJournal replaces the journal text for key.
func SetJournal(s *Snapshot, key, text string) *Snapshot {
	if d, ok := s.Days[key]; ok && d.Journal == text {
		return s
	}
	return updateDay(s, key, func(d *Day) {
		d.Journal = text
	})
}

// SetMood sets or clears (nil) the mood for key. Values outside 1..5 are
// ignored.
func SetMood(s *Snapshot, key string, mood *int) *Snapshot {
	if mood != nil && !ValidScore(*mood) {
		return EnsureDay(s, key)
	}
	if d, ok := s.Days[key]; ok && sameScore(d.Mood, mood) {
		return s
	}
	return updateDay(s, key, func(d *Day) {
		d.Mood = copyScore(mood)
	})
}

// SetRating sets or clears (nil) the rating for key. Values outside 1..5
// are ignored.
func SetRating(s *Snapshot, key string, rating *int) *Snapshot {
	if rating != nil && !ValidScore(*rating) {
		return EnsureDay(s, key)
	}
	if d, ok := s.Days[key]; ok && sameScore(d.Rating, rating) {
		return s
	}
	return updateDay(s, key, func(d *Day) {
		d.Rating = copyScore(rating)
	})
}

func sameScore(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyScore(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

// Score returns a pointer to v for use with SetMood and SetRating.
func Score(v int) *int {
	return &v
}

// AddTask appends a task to key. The caller supplies a per-day unique id.
func AddTask(s *Snapshot, key string, task Task) *Snapshot {
	return updateDay(s, key, func(d *Day) {
		d.Tasks = append(d.Tasks, task)
	})
}

// ToggleTask flips the completion of a task on key.
func ToggleTask(s *Snapshot, key, taskID string) *Snapshot {
	s = EnsureDay(s, key)
	idx := taskIndex(s.Days[key], taskID)
	if idx < 0 {
		return s
	}
	return updateDay(s, key, func(d *Day) {
		d.Tasks[idx].Completed = !d.Tasks[idx].Completed
	})
}

// DeleteTask removes a task from key.
func DeleteTask(s *Snapshot, key, taskID string) *Snapshot {
	s = EnsureDay(s, key)
	idx := taskIndex(s.Days[key], taskID)
	if idx < 0 {
		return s
	}
	return updateDay(s, key, func(d *Day) {
		d.Tasks = append(d.Tasks[:idx], d.Tasks[idx+1:]...)
	})
}

func taskIndex(d Day, id string) int {
	for i, t := range d.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// AddAlarm appends an alarm to key.
func AddAlarm(s *Snapshot, key string, alarm Alarm) *Snapshot {
	if alarm.Repeat == "" {
		alarm.Repeat = RepeatNever
	}
	return updateDay(s, key, func(d *Day) {
		d.Alarms = append(d.Alarms, alarm)
	})
}

// RemoveAlarm removes an alarm from key.
func RemoveAlarm(s *Snapshot, key, alarmID string) *Snapshot {
	s = EnsureDay(s, key)
	idx := -1
	for i, a := range s.Days[key].Alarms {
		if a.ID == alarmID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	return updateDay(s, key, func(d *Day) {
		d.Alarms = append(d.Alarms[:idx], d.Alarms[idx+1:]...)
	})
}

// ============================================================================
// Settings
// ============================================================================

// SetTheme changes the theme. Unknown themes are ignored.
func SetTheme(s *Snapshot, theme Theme) *Snapshot {
	if theme != ThemeDark && theme != ThemeLight {
		return s
	}
	return updateSettings(s, func(st *Settings) { st.Theme = theme })
}

// SetWeekStart changes the first day of the week. Unknown values are ignored.
func SetWeekStart(s *Snapshot, ws WeekStart) *Snapshot {
	if ws != WeekStartMonday && ws != WeekStartSunday {
		return s
	}
	return updateSettings(s, func(st *Settings) { st.WeekStart = ws })
}

// SetNotifications turns notifications on or off.
func SetNotifications(s *Snapshot, enabled bool) *Snapshot {
	return updateSettings(s, func(st *Settings) { st.Notifications = enabled })
}

// SetUserName changes the display name.
func SetUserName(s *Snapshot, name string) *Snapshot {
	if s.User.Name == name {
		return s
	}
	next := s.shallow()
	next.User.Name = name
	return next
}

func updateSettings(s *Snapshot, fn func(st *Settings)) *Snapshot {
	st := s.User.Settings
	fn(&st)
	if st == s.User.Settings {
		return s
	}
	next := s.shallow()
	next.User.Settings = st
	return next
}
