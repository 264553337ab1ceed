// Package engine implements business-time displacement: moving a moment by a
// signed number of sub-day units while counting only time that falls inside
// the business window on business days. All arithmetic is exact int64
// nanoseconds; there is no floating point anywhere in the package.
//
// The package is pure computation over immutable inputs and is safe for
// concurrent use as long as the injected DayResolver is.
package engine

import (
	"errors"
	"math"
	"time"
)

// Window is the business-day window, expressed as nanosecond offsets from
// midnight. Validity (0 <= StartNanos < EndNanos, both under 24h) is enforced
// where configurations are constructed, never here.
type Window struct {
	StartNanos int64
	EndNanos   int64
}

// NanosPerDay returns the length of one business day in nanoseconds.
func (w Window) NanosPerDay() int64 { return w.EndNanos - w.StartNanos }

// DayResolver is the business-day capability consumed by Move and Normalize.
// Dates are midnight time.Time values in the moment's location.
// Implementations must be side-effect free and safe for concurrent reads.
type DayResolver interface {
	// IsBusinessDay reports whether date is a working weekday that is not a
	// holiday.
	IsBusinessDay(date time.Time) bool

	// ShiftBusinessDays returns the business day n business days from date,
	// snapping a non-business date toward the direction of travel first.
	// n == 0 returns date unchanged. The zero time signals an exhausted
	// search.
	ShiftBusinessDays(date time.Time, n int) time.Time

	// NextBusinessDay returns the first business day on or after date, or
	// the zero time.
	NextBusinessDay(date time.Time) time.Time

	// PreviousBusinessDay returns the most recent business day on or before
	// date, or the zero time.
	PreviousBusinessDay(date time.Time) time.Time
}

var (
	// ErrUnitNanos is returned when the size of one move unit is not a
	// positive nanosecond count.
	ErrUnitNanos = errors.New("engine: unit size must be a positive nanosecond count")

	// ErrAmountRange is returned when units*unitNanos (or its rebase against
	// the window edge) does not fit in int64 nanoseconds.
	ErrAmountRange = errors.New("engine: move amount overflows int64 nanoseconds")

	// ErrShiftRange is returned when the computed business-day shift falls
	// outside int32 range.
	ErrShiftRange = errors.New("engine: business-day shift exceeds int32 range")

	// ErrNonBusinessResult is returned when the resolver fails to produce a
	// business day. With a sane calendar this is unreachable.
	ErrNonBusinessResult = errors.New("engine: resolver produced a non-business day")
)

// Result is the outcome of a Move: a calendar date plus a nanosecond offset
// of day that is always inside [StartNanos, EndNanos].
type Result struct {
	Date       time.Time
	NanosOfDay int64
}

// Move displaces the moment (startDate, startNanos) by units*unitNanos
// nanoseconds of business time. startDate is a midnight time.Time; startNanos
// is the wall-clock nanosecond offset into that day and may lie outside the
// window (raw inputs are re-based, not rejected). units may be negative;
// unitNanos must be positive.
//
// The window is closed on both ends: moving one full window length forward
// from the window start lands on the same day's window end, and the mirrored
// backward move lands on the window start.
func Move(startDate time.Time, startNanos, units, unitNanos int64, win Window, cal DayResolver) (Result, error) {
	if unitNanos <= 0 {
		return Result{}, ErrUnitNanos
	}
	total, ok := mulInt64(units, unitNanos)
	if !ok {
		return Result{}, ErrAmountRange
	}

	perDay := win.NanosPerDay()
	working := cal.IsBusinessDay(startDate)
	forward := total >= 0

	var days, rem int64
	if forward {
		if working {
			if startNanos > win.EndNanos {
				// Past the window: "now" is the next day's window start.
				days++
			} else if startNanos > win.StartNanos {
				// Re-base the move to the current day's window start.
				elapsed := startNanos - win.StartNanos
				if total > math.MaxInt64-elapsed {
					return Result{}, ErrAmountRange
				}
				total += elapsed
			}
		}
		// The -1/+1 pair keeps a move landing exactly on the window end
		// inside the same day instead of spilling to the next one.
		days += (total - 1) / perDay
		rem = (total-1)%perDay + 1
	} else {
		if working {
			if startNanos < win.StartNanos {
				// Before the window: "now" is the previous day's window end.
				days--
			} else if startNanos < win.EndNanos {
				// Re-base the move to the current day's window end.
				remaining := win.EndNanos - startNanos
				if total < math.MinInt64+remaining {
					return Result{}, ErrAmountRange
				}
				total -= remaining
			}
		}
		days += (total + 1) / perDay
		rem = (total+1)%perDay - 1
	}

	if days < math.MinInt32 || days > math.MaxInt32 {
		return Result{}, ErrShiftRange
	}

	var endDate time.Time
	switch {
	case days != 0:
		endDate = cal.ShiftBusinessDays(startDate, int(days))
	case working:
		// Zero-day shift from a business day: skip the resolver round trip.
		endDate = startDate
	case forward:
		endDate = cal.NextBusinessDay(startDate)
	default:
		endDate = cal.PreviousBusinessDay(startDate)
	}
	if endDate.IsZero() || !cal.IsBusinessDay(endDate) {
		return Result{}, ErrNonBusinessResult
	}

	// A non-negative remainder is measured from the window start, a negative
	// one from the window end.
	nanos := win.StartNanos + rem
	if rem < 0 {
		nanos = win.EndNanos + rem
	}
	return Result{Date: endDate, NanosOfDay: nanos}, nil
}

// Normalize snaps a raw (date, nanos-of-day) pair onto the business timeline
// using the snap-forward policy: non-business dates move to the next business
// day's window start, a time past the window on a business day moves to the
// next business day's window start, and a time before the window snaps to the
// same day's window start. In-window moments (window end included) are
// returned unchanged. Normalize is idempotent and agrees with a zero Move.
func Normalize(d time.Time, nanos int64, win Window, cal DayResolver) (time.Time, int64, error) {
	if !cal.IsBusinessDay(d) {
		next := cal.NextBusinessDay(d)
		if next.IsZero() {
			return time.Time{}, 0, ErrNonBusinessResult
		}
		return next, win.StartNanos, nil
	}
	switch {
	case nanos > win.EndNanos:
		next := cal.ShiftBusinessDays(d, 1)
		if next.IsZero() {
			return time.Time{}, 0, ErrNonBusinessResult
		}
		return next, win.StartNanos, nil
	case nanos < win.StartNanos:
		return d, win.StartNanos, nil
	default:
		return d, nanos, nil
	}
}

// mulInt64 multiplies a*b, reporting false on overflow. b must be positive.
func mulInt64(a, b int64) (int64, bool) {
	if a == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a {
		return 0, false
	}
	return c, true
}
