// Package domain defines shared value types for the biztime platform:
// holidays and precomputed business-day schedule entries.
package domain

import "time"

// Holiday is a single non-working calendar date with an optional display name.
// Only the calendar date (year, month, day in Date's location) is significant;
// the time of day is ignored by all consumers.
type Holiday struct {
	Date time.Time
	Name string
}

// ScheduleDay is one precomputed day of a business calendar, suitable for
// exporting a resolved schedule without shipping the rule set.
type ScheduleDay struct {
	Date        time.Time
	Weekday     time.Weekday
	BusinessDay bool
	Holiday     string
	WindowStart time.Duration // offset from midnight; zero when not a business day
	WindowEnd   time.Duration
}
