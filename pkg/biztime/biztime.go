// Package biztime provides an immutable business date-time value: a point on
// a timeline that only contains instants falling between the start and end of
// a configurable business day, skipping nights, weekends, and holidays.
//
// A Time is constructed by normalizing an ordinary time.Time onto that
// timeline and is displaced with Add, Sub, and AddBusinessDays. Every
// operation returns a new value; nothing is ever mutated in place, so values
// may be shared freely between goroutines.
//
//	cfg := biztime.Config{Holidays: []time.Time{newYears}}
//	bt, err := biztime.New(time.Now(), cfg)
//	later, err := bt.Add(90 * time.Minute)
package biztime

import (
	"math"
	"time"

	"biztime/internal/calendar"
	"biztime/internal/domain"
	"biztime/internal/engine"
)

// Time is an immutable moment on the business timeline, together with the
// window configuration and the business-day resolver built from it. The zero
// value is not usable; construct with New.
type Time struct {
	t   time.Time
	cfg Config
	cal *calendar.Calendar
}

// New normalizes t onto the business timeline described by cfg and returns
// the resulting moment. Zero cfg fields take their defaults (09:00-17:00,
// Monday-Friday, no holidays). Out-of-window and non-business inputs snap
// forward: to the start of the same day's window when t is before it, and to
// the start of the next business day's window otherwise.
func New(t time.Time, cfg Config) (Time, error) {
	if t.IsZero() {
		return Time{}, ErrZeroTime
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Time{}, err
	}

	holidays := make([]domain.Holiday, len(cfg.Holidays))
	for i, h := range cfg.Holidays {
		holidays[i] = domain.Holiday{Date: h}
	}
	cal := calendar.New(cfg.WorkingWeek.IsWorkingDay, holidays)

	return normalized(t, cfg, cal)
}

// normalized snaps t forward onto the business timeline using an existing
// resolver.
func normalized(t time.Time, cfg Config, cal *calendar.Calendar) (Time, error) {
	date, nanos, err := engine.Normalize(midnight(t), nanosOfDay(t), cfg.window(), cal)
	if err != nil {
		return Time{}, err
	}
	return Time{t: combine(date, nanos), cfg: cfg, cal: cal}, nil
}

// Add returns a copy of the moment moved forward by d of business time
// (backward when d is negative). Time outside the business window never
// counts toward d. Add(0) returns the receiver unchanged.
func (bt Time) Add(d time.Duration) (Time, error) {
	return bt.shift(d.Nanoseconds(), 1)
}

// Sub returns a copy of the moment moved backward by d of business time
// (forward when d is negative).
func (bt Time) Sub(d time.Duration) (Time, error) {
	n := d.Nanoseconds()
	if n == math.MinInt64 {
		return Time{}, engine.ErrAmountRange
	}
	return bt.shift(-n, 1)
}

// AddBusinessDays returns a copy of the moment moved by n whole business days
// of business time, where one business day equals the window length. Moving
// one business day forward from the window start lands on the same day's
// window end; moving from mid-window lands mid-window n business days away.
func (bt Time) AddBusinessDays(n int) (Time, error) {
	return bt.shift(int64(n), bt.cfg.window().NanosPerDay())
}

// shift displaces by units move-units of unitNanos nanoseconds each.
func (bt Time) shift(units, unitNanos int64) (Time, error) {
	if units == 0 {
		return bt, nil
	}
	res, err := engine.Move(midnight(bt.t), nanosOfDay(bt.t), units, unitNanos, bt.cfg.window(), bt.cal)
	if err != nil {
		return Time{}, err
	}
	return Time{t: combine(res.Date, res.NanosOfDay), cfg: bt.cfg, cal: bt.cal}, nil
}

// AddDate returns the moment displaced by the given years, months, and
// calendar days with no business-hour awareness (the underlying calendar
// arithmetic of time.Time), then re-normalized onto the business timeline.
func (bt Time) AddDate(years, months, days int) (Time, error) {
	return normalized(bt.t.AddDate(years, months, days), bt.cfg, bt.cal)
}

// IsBusinessDay reports whether t's calendar date is a business day under
// the moment's configuration.
func (bt Time) IsBusinessDay(t time.Time) bool {
	return bt.cal.IsBusinessDay(t)
}

// Holidays returns the configured holidays between from and to, inclusive,
// sorted by date.
func (bt Time) Holidays(from, to time.Time) []time.Time {
	hs := bt.cal.HolidaysBetween(from, to)
	out := make([]time.Time, len(hs))
	for i, h := range hs {
		out[i] = h.Date
	}
	return out
}

// Config returns the window configuration in effect.
func (bt Time) Config() Config { return bt.cfg }

// Std returns the moment as a plain time.Time.
func (bt Time) Std() time.Time { return bt.t }

// Equal reports whether both moments represent the same instant. The window
// configurations are not compared.
func (bt Time) Equal(other Time) bool { return bt.t.Equal(other.t) }

// Before reports whether the moment is before other.
func (bt Time) Before(other Time) bool { return bt.t.Before(other.t) }

// After reports whether the moment is after other.
func (bt Time) After(other Time) bool { return bt.t.After(other.t) }

// Calendar-field accessors delegating to the underlying time.Time.

func (bt Time) Year() int                { return bt.t.Year() }
func (bt Time) Month() time.Month        { return bt.t.Month() }
func (bt Time) Day() int                 { return bt.t.Day() }
func (bt Time) Weekday() time.Weekday    { return bt.t.Weekday() }
func (bt Time) Hour() int                { return bt.t.Hour() }
func (bt Time) Minute() int              { return bt.t.Minute() }
func (bt Time) Second() int              { return bt.t.Second() }
func (bt Time) Nanosecond() int          { return bt.t.Nanosecond() }
func (bt Time) Location() *time.Location { return bt.t.Location() }
func (bt Time) Unix() int64              { return bt.t.Unix() }
func (bt Time) UnixNano() int64          { return bt.t.UnixNano() }

// Format formats the moment with the given time layout.
func (bt Time) Format(layout string) string { return bt.t.Format(layout) }

// String renders the moment in RFC 3339 with nanoseconds.
func (bt Time) String() string { return bt.t.Format(time.RFC3339Nano) }

// window converts the config bounds to engine nanosecond offsets.
func (c Config) window() engine.Window {
	return engine.Window{
		StartNanos: c.DayStart.Nanoseconds(),
		EndNanos:   c.DayEnd.Nanoseconds(),
	}
}

// midnight returns t's calendar date at 00:00 in t's location.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// nanosOfDay returns t's wall-clock nanosecond offset into its day.
func nanosOfDay(t time.Time) int64 {
	h, m, s := t.Clock()
	return int64(h)*int64(time.Hour) +
		int64(m)*int64(time.Minute) +
		int64(s)*int64(time.Second) +
		int64(t.Nanosecond())
}

// combine builds an instant from a midnight date and a nanosecond offset.
func combine(date time.Time, nanos int64) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, int(nanos/int64(time.Second)), int(nanos%int64(time.Second)), date.Location())
}
