// Package calendar implements the business-day resolver: a working-week
// predicate combined with a holiday set, queried by calendar date. A Calendar
// is built once from immutable inputs and is safe for concurrent use.
package calendar

import (
	"sort"
	"time"

	"biztime/internal/domain"
)

// maxScanDays bounds the search for an adjacent business day so that a
// degenerate calendar (for example a year of back-to-back holidays) cannot
// loop forever. Exhausting the bound returns the zero time.
const maxScanDays = 366

// date is an internal comparable key for holiday map lookups. Holidays are
// compared by calendar date only; the time of day never participates.
type date struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) date {
	y, m, d := t.Date()
	return date{y, m, d}
}

// midnight returns t's calendar date at 00:00 in t's location.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekdayFunc reports whether a weekday is part of the working week.
type WeekdayFunc func(time.Weekday) bool

// Calendar resolves business days. The zero value is not usable; construct
// with New.
type Calendar struct {
	holidays  map[date]string
	isWorking WeekdayFunc
}

// New builds a Calendar from a holiday list and a working-week predicate.
// A nil predicate means Monday through Friday. Duplicate holiday dates keep
// the last name given.
func New(isWorking WeekdayFunc, holidays []domain.Holiday) *Calendar {
	if isWorking == nil {
		isWorking = func(d time.Weekday) bool {
			return d != time.Saturday && d != time.Sunday
		}
	}
	m := make(map[date]string, len(holidays))
	for _, h := range holidays {
		m[dateOf(h.Date)] = h.Name
	}
	return &Calendar{holidays: m, isWorking: isWorking}
}

// IsBusinessDay reports whether t's calendar date is a working weekday that
// is not a holiday.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	if !c.isWorking(t.Weekday()) {
		return false
	}
	_, holiday := c.holidays[dateOf(t)]
	return !holiday
}

// HolidayName returns the name of the holiday on t's calendar date, or the
// empty string when t is not a holiday.
func (c *Calendar) HolidayName(t time.Time) string {
	return c.holidays[dateOf(t)]
}

// NextBusinessDay returns the first business day on or after t's calendar
// date, at midnight in t's location. Returns the zero time if none is found
// within maxScanDays.
func (c *Calendar) NextBusinessDay(t time.Time) time.Time {
	cur := midnight(t)
	for i := 0; i < maxScanDays; i++ {
		if c.IsBusinessDay(cur) {
			return cur
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return time.Time{}
}

// PreviousBusinessDay returns the most recent business day on or before t's
// calendar date, at midnight in t's location. Returns the zero time if none
// is found within maxScanDays.
func (c *Calendar) PreviousBusinessDay(t time.Time) time.Time {
	cur := midnight(t)
	for i := 0; i < maxScanDays; i++ {
		if c.IsBusinessDay(cur) {
			return cur
		}
		cur = cur.AddDate(0, 0, -1)
	}
	return time.Time{}
}

// ShiftBusinessDays returns the business day n business days from t's
// calendar date. A non-business starting date is first snapped toward the
// direction of travel (forward for n > 0, backward for n < 0): shifting +1
// from a Saturday snaps to Monday and then advances to Tuesday. n == 0
// returns the date unchanged, whether or not it is a business day. Returns
// the zero time if the search bound is exhausted.
func (c *Calendar) ShiftBusinessDays(t time.Time, n int) time.Time {
	cur := midnight(t)
	if n == 0 {
		return cur
	}

	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	if !c.IsBusinessDay(cur) {
		cur = c.scan(cur, step)
		if cur.IsZero() {
			return time.Time{}
		}
	}
	for i := 0; i < n; i++ {
		cur = c.scan(cur.AddDate(0, 0, step), step)
		if cur.IsZero() {
			return time.Time{}
		}
	}
	return cur
}

// scan walks day by day in the given direction until it hits a business day.
func (c *Calendar) scan(from time.Time, step int) time.Time {
	cur := from
	for i := 0; i < maxScanDays; i++ {
		if c.IsBusinessDay(cur) {
			return cur
		}
		cur = cur.AddDate(0, 0, step)
	}
	return time.Time{}
}

// BusinessDaysBetween counts the business days in [from, to] inclusive,
// comparing by calendar date. Returns 0 when from is after to.
func (c *Calendar) BusinessDaysBetween(from, to time.Time) int {
	cur := midnight(from)
	end := midnight(to)
	count := 0
	for !cur.After(end) {
		if c.IsBusinessDay(cur) {
			count++
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return count
}

// HolidaysBetween returns the holidays in [from, to] inclusive, sorted by
// date.
func (c *Calendar) HolidaysBetween(from, to time.Time) []domain.Holiday {
	fromD := dateOf(from)
	toD := dateOf(to)

	var result []domain.Holiday
	for d, name := range c.holidays {
		if d.before(fromD) || toD.before(d) {
			continue
		}
		result = append(result, domain.Holiday{Date: d.toTime(from.Location()), Name: name})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}

// Holidays returns every holiday in the calendar, sorted by date. Dates are
// returned at midnight UTC.
func (c *Calendar) Holidays() []domain.Holiday {
	result := make([]domain.Holiday, 0, len(c.holidays))
	for d, name := range c.holidays {
		result = append(result, domain.Holiday{Date: d.toTime(time.UTC), Name: name})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}

func (d date) before(other date) bool {
	if d.year != other.year {
		return d.year < other.year
	}
	if d.month != other.month {
		return d.month < other.month
	}
	return d.day < other.day
}

func (d date) toTime(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}
