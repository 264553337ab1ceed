package biztime

import (
	"errors"
	"testing"
	"time"

	"biztime/internal/engine"
)

// August 2026: the 1st is a Saturday.
func at(d, h, m, s, ns int) time.Time {
	return time.Date(2026, time.August, d, h, m, s, ns, time.UTC)
}

func mustNew(t *testing.T, moment time.Time, cfg Config) Time {
	t.Helper()
	bt, err := New(moment, cfg)
	if err != nil {
		t.Fatalf("New(%v): %v", moment, err)
	}
	return bt
}

func TestNewNormalizes(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"in window unchanged", at(10, 14, 30, 0, 0), at(10, 14, 30, 0, 0)},
		{"window end unchanged", at(10, 17, 0, 0, 0), at(10, 17, 0, 0, 0)},
		{"before window snaps to day start", at(10, 6, 0, 0, 0), at(10, 9, 0, 0, 0)},
		{"evening snaps to next day start", at(10, 17, 0, 0, 1), at(11, 9, 0, 0, 0)},
		{"saturday snaps to monday start", at(15, 12, 0, 0, 0), at(17, 9, 0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bt := mustNew(t, tt.in, Config{})
			if !bt.Std().Equal(tt.want) {
				t.Errorf("New(%v) = %v, want %v", tt.in, bt.Std(), tt.want)
			}
		})
	}
}

func TestNewWithConsecutiveHolidays(t *testing.T) {
	cfg := Config{Holidays: []time.Time{at(12, 0, 0, 0, 0), at(13, 0, 0, 0, 0)}}

	bt := mustNew(t, at(12, 14, 34, 56, 756_000_000), cfg)
	if want := at(14, 9, 0, 0, 0); !bt.Std().Equal(want) {
		t.Errorf("got %v, want %v", bt.Std(), want)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(time.Time{}, Config{}); !errors.Is(err, ErrZeroTime) {
		t.Errorf("zero time: err = %v, want ErrZeroTime", err)
	}
	if _, err := New(at(10, 12, 0, 0, 0), Config{DayStart: 17 * time.Hour, DayEnd: 9 * time.Hour}); !errors.Is(err, ErrWindow) {
		t.Errorf("inverted window: err = %v, want ErrWindow", err)
	}
	if _, err := New(at(10, 12, 0, 0, 0), Config{DayStart: 9 * time.Hour, DayEnd: 24 * time.Hour}); !errors.Is(err, ErrWindow) {
		t.Errorf("24h end: err = %v, want ErrWindow", err)
	}
}

func TestAdd(t *testing.T) {
	bt := mustNew(t, at(10, 12, 0, 0, 0), Config{})

	tests := []struct {
		name string
		d    time.Duration
		want time.Time
	}{
		{"within the day", 90 * time.Minute, at(10, 13, 30, 0, 0)},
		{"across the evening", 6 * time.Hour, at(11, 10, 0, 0, 0)},
		{"across the weekend", 40 * time.Hour, at(17, 12, 0, 0, 0)},
		{"negative goes backward", -4 * time.Hour, at(7, 16, 0, 0, 0)},
		{"zero is identity", 0, at(10, 12, 0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bt.Add(tt.d)
			if err != nil {
				t.Fatalf("Add(%v): %v", tt.d, err)
			}
			if !got.Std().Equal(tt.want) {
				t.Errorf("Add(%v) = %v, want %v", tt.d, got.Std(), tt.want)
			}
		})
	}
}

func TestSub(t *testing.T) {
	bt := mustNew(t, at(10, 9, 0, 0, 2), Config{})

	got, err := bt.Sub(3 * time.Nanosecond)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if want := at(7, 16, 59, 59, 999_999_999); !got.Std().Equal(want) {
		t.Errorf("Sub(3ns) = %v, want %v", got.Std(), want)
	}

	// Sub of a negative duration moves forward.
	got, err = bt.Sub(-time.Hour)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if want := at(10, 10, 0, 0, 2); !got.Std().Equal(want) {
		t.Errorf("Sub(-1h) = %v, want %v", got.Std(), want)
	}
}

func TestAddSubRoundTrip(t *testing.T) {
	bt := mustNew(t, at(10, 11, 0, 0, 0), Config{})

	for _, d := range []time.Duration{time.Nanosecond, 35 * time.Minute, 8 * time.Hour, 100 * time.Hour} {
		fwd, err := bt.Add(d)
		if err != nil {
			t.Fatalf("Add(%v): %v", d, err)
		}
		back, err := fwd.Sub(d)
		if err != nil {
			t.Fatalf("Sub(%v): %v", d, err)
		}
		if !back.Equal(bt) {
			t.Errorf("round trip of %v = %v, want %v", d, back.Std(), bt.Std())
		}
	}
}

func TestAddBusinessDays(t *testing.T) {
	bt := mustNew(t, at(10, 12, 0, 0, 0), Config{})

	got, err := bt.AddBusinessDays(3)
	if err != nil {
		t.Fatalf("AddBusinessDays: %v", err)
	}
	if want := at(13, 12, 0, 0, 0); !got.Std().Equal(want) {
		t.Errorf("AddBusinessDays(3) = %v, want %v", got.Std(), want)
	}

	// One business day from the window start is the same day's window end.
	start := mustNew(t, at(10, 9, 0, 0, 0), Config{})
	got, err = start.AddBusinessDays(1)
	if err != nil {
		t.Fatalf("AddBusinessDays: %v", err)
	}
	if want := at(10, 17, 0, 0, 0); !got.Std().Equal(want) {
		t.Errorf("AddBusinessDays(1) = %v, want %v", got.Std(), want)
	}

	got, err = bt.AddBusinessDays(0)
	if err != nil {
		t.Fatalf("AddBusinessDays: %v", err)
	}
	if !got.Equal(bt) {
		t.Errorf("AddBusinessDays(0) = %v, want unchanged", got.Std())
	}
}

func TestAddDate(t *testing.T) {
	bt := mustNew(t, at(10, 12, 0, 0, 0), Config{})

	// Plain calendar arithmetic, re-normalized: +5 days lands on Saturday
	// noon, which snaps to Monday's window start.
	got, err := bt.AddDate(0, 0, 5)
	if err != nil {
		t.Fatalf("AddDate: %v", err)
	}
	if want := at(17, 9, 0, 0, 0); !got.Std().Equal(want) {
		t.Errorf("AddDate(0,0,5) = %v, want %v", got.Std(), want)
	}

	// Landing on a business day keeps the clock.
	got, err = bt.AddDate(0, 0, 1)
	if err != nil {
		t.Fatalf("AddDate: %v", err)
	}
	if want := at(11, 12, 0, 0, 0); !got.Std().Equal(want) {
		t.Errorf("AddDate(0,0,1) = %v, want %v", got.Std(), want)
	}
}

func TestCustomWindowAndWeek(t *testing.T) {
	cfg := Config{
		DayStart:    8 * time.Hour,
		DayEnd:      18*time.Hour + 30*time.Minute,
		WorkingWeek: NewWorkingWeek(time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday),
	}

	// Sunday the 16th is a working day here.
	bt := mustNew(t, at(16, 8, 0, 0, 0), cfg)
	if !bt.IsBusinessDay(at(16, 0, 0, 0, 0)) {
		t.Errorf("sunday should be a business day")
	}
	if bt.IsBusinessDay(at(14, 0, 0, 0, 0)) {
		t.Errorf("friday should not be a business day")
	}

	// A full 10.5h business day from the window start.
	got, err := bt.AddBusinessDays(1)
	if err != nil {
		t.Fatalf("AddBusinessDays: %v", err)
	}
	if want := at(16, 18, 30, 0, 0); !got.Std().Equal(want) {
		t.Errorf("AddBusinessDays(1) = %v, want %v", got.Std(), want)
	}
}

func TestHolidays(t *testing.T) {
	cfg := Config{Holidays: []time.Time{at(12, 0, 0, 0, 0), at(25, 0, 0, 0, 0)}}
	bt := mustNew(t, at(10, 12, 0, 0, 0), cfg)

	got := bt.Holidays(at(1, 0, 0, 0, 0), at(20, 0, 0, 0, 0))
	if len(got) != 1 || !got[0].Equal(at(12, 0, 0, 0, 0)) {
		t.Errorf("Holidays = %v, want only the 12th", got)
	}
}

func TestRangeErrors(t *testing.T) {
	bt := mustNew(t, at(10, 12, 0, 0, 0), Config{})

	if _, err := bt.Sub(time.Duration(-1 << 63)); !errors.Is(err, engine.ErrAmountRange) {
		t.Errorf("Sub(MinInt64): err = %v, want ErrAmountRange", err)
	}
}

func TestWorkingWeek(t *testing.T) {
	w := NewWorkingWeek(time.Monday, time.Wednesday)
	if !w.IsWorkingDay(time.Monday) || w.IsWorkingDay(time.Tuesday) {
		t.Errorf("membership wrong: %v", w.Days())
	}
	if days := w.Days(); len(days) != 2 || days[0] != time.Monday || days[1] != time.Wednesday {
		t.Errorf("Days = %v", days)
	}
	if !DefaultWorkingWeek.IsWorkingDay(time.Friday) || DefaultWorkingWeek.IsWorkingDay(time.Sunday) {
		t.Errorf("default week wrong")
	}
}

func TestComparisons(t *testing.T) {
	a := mustNew(t, at(10, 12, 0, 0, 0), Config{})
	b := mustNew(t, at(10, 13, 0, 0, 0), Config{})

	if !a.Before(b) || !b.After(a) || a.Equal(b) {
		t.Errorf("ordering wrong: %v vs %v", a, b)
	}
	if a.Weekday() != time.Monday || a.Hour() != 12 {
		t.Errorf("accessors wrong: %v", a)
	}
}
