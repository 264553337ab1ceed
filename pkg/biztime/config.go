package biztime

import (
	"errors"
	"time"
)

// Defaults applied by New when the corresponding Config field is zero,
// matching the conventional nine-to-five, Monday-to-Friday business day.
const (
	DefaultDayStart = 9 * time.Hour
	DefaultDayEnd   = 17 * time.Hour
)

var (
	// ErrWindow is returned when the configured day end is not strictly
	// after the day start, or either bound falls outside a calendar day.
	ErrWindow = errors.New("biztime: business day end must be after start and both within 24h")

	// ErrWorkingWeek is returned when the working week has no working days.
	ErrWorkingWeek = errors.New("biztime: working week must contain at least one day")

	// ErrZeroTime is returned when a moment is constructed from the zero
	// time.Time.
	ErrZeroTime = errors.New("biztime: time must not be the zero value")
)

// WorkingWeek is a set of weekdays that count as business days.
type WorkingWeek uint8

// NewWorkingWeek builds a WorkingWeek from the given weekdays.
func NewWorkingWeek(days ...time.Weekday) WorkingWeek {
	var w WorkingWeek
	for _, d := range days {
		w |= 1 << uint(d)
	}
	return w
}

// DefaultWorkingWeek is Monday through Friday.
var DefaultWorkingWeek = NewWorkingWeek(
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
)

// IsWorkingDay reports whether d is part of the working week.
func (w WorkingWeek) IsWorkingDay(d time.Weekday) bool {
	return w&(1<<uint(d)) != 0
}

// Days returns the working weekdays in Sunday-first order.
func (w WorkingWeek) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w.IsWorkingDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// Config describes the business-day window, the holiday set, and the working
// week. The zero value of every field selects its default: 09:00-17:00, no
// holidays, Monday through Friday. A Config is shared immutably by a moment
// and everything derived from it; it is never mutated after construction.
type Config struct {
	// DayStart and DayEnd are offsets from midnight marking the bounds of
	// the business day. Both must fit within one calendar day and DayEnd
	// must be strictly after DayStart.
	DayStart time.Duration
	DayEnd   time.Duration

	// Holidays are dates excluded from the business calendar, compared by
	// calendar date only (time of day ignored).
	Holidays []time.Time

	// WorkingWeek selects which weekdays are eligible business days.
	WorkingWeek WorkingWeek
}

// WithDefaults returns the config with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.DayStart == 0 && c.DayEnd == 0 {
		c.DayStart = DefaultDayStart
		c.DayEnd = DefaultDayEnd
	}
	if c.WorkingWeek == 0 {
		c.WorkingWeek = DefaultWorkingWeek
	}
	return c
}

// Validate checks the window bounds and the working week. It is called by
// New after defaults are applied; displacement operations never re-validate.
func (c Config) Validate() error {
	if c.DayStart < 0 || c.DayEnd >= 24*time.Hour || c.DayEnd <= c.DayStart {
		return ErrWindow
	}
	if c.WorkingWeek == 0 {
		return ErrWorkingWeek
	}
	return nil
}
