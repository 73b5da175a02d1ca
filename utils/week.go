package utils

import "time"

// DayStart truncates t to midnight UTC.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of t's week at midnight UTC.
func WeekStart(t time.Time) time.Time {
	d := DayStart(t)
	weekday := int(d.Weekday()) // 0=Sunday
	if weekday == 0 {
		weekday = 7
	}
	return d.AddDate(0, 0, -(weekday - 1))
}

// NextMonday returns the Monday strictly after t. A Monday input yields the
// following Monday, matching how new plans are always dated for the coming
// week.
func NextMonday(t time.Time) time.Time {
	d := DayStart(t)
	daysAhead := 8 - int(d.Weekday()) // Monday=1 .. Saturday=6
	if d.Weekday() == time.Sunday {
		daysAhead = 1
	}
	return d.AddDate(0, 0, daysAhead)
}

// LastWeekStart returns the Monday of the week before t's week.
func LastWeekStart(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, -7)
}
