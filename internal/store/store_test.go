package store

import (
	"context"
	"testing"
	"time"

	"biztime/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSaveLoadHolidays(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	in := []domain.Holiday{
		{Date: date(2026, time.December, 25), Name: "christmas"},
		{Date: date(2026, time.July, 3), Name: "independence day (observed)"},
	}
	if err := s.SaveHolidays(ctx, "us-market", in); err != nil {
		t.Fatalf("SaveHolidays: %v", err)
	}

	out, err := s.LoadHolidays(ctx, "us-market")
	if err != nil {
		t.Fatalf("LoadHolidays: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	// Sorted by date.
	if !out[0].Date.Equal(date(2026, time.July, 3)) || out[0].Name != "independence day (observed)" {
		t.Errorf("first = %+v", out[0])
	}
	if !out[1].Date.Equal(date(2026, time.December, 25)) {
		t.Errorf("second = %+v", out[1])
	}
}

func TestSQLiteSaveReplaces(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	if err := s.SaveHolidays(ctx, "uk", []domain.Holiday{
		{Date: date(2026, time.May, 4), Name: "early may"},
	}); err != nil {
		t.Fatalf("SaveHolidays: %v", err)
	}
	if err := s.SaveHolidays(ctx, "uk", []domain.Holiday{
		{Date: date(2026, time.August, 31), Name: "summer"},
	}); err != nil {
		t.Fatalf("SaveHolidays again: %v", err)
	}

	out, err := s.LoadHolidays(ctx, "uk")
	if err != nil {
		t.Fatalf("LoadHolidays: %v", err)
	}
	if len(out) != 1 || out[0].Name != "summer" {
		t.Errorf("got %+v, want only the replacement set", out)
	}
}

func TestSQLiteUnknownCalendar(t *testing.T) {
	s := newTestSQLite(t)

	out, err := s.LoadHolidays(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("LoadHolidays: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %d holidays, want none", len(out))
	}
}

func TestSQLiteListAndDelete(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for _, name := range []string{"us-market", "uk", "jp"} {
		if err := s.SaveHolidays(ctx, name, nil); err != nil {
			t.Fatalf("SaveHolidays(%s): %v", name, err)
		}
	}

	names, err := s.ListCalendars(ctx)
	if err != nil {
		t.Fatalf("ListCalendars: %v", err)
	}
	if len(names) != 3 || names[0] != "jp" || names[2] != "us-market" {
		t.Errorf("names = %v, want sorted jp/uk/us-market", names)
	}

	if err := s.DeleteCalendar(ctx, "uk"); err != nil {
		t.Fatalf("DeleteCalendar: %v", err)
	}
	names, err = s.ListCalendars(ctx)
	if err != nil {
		t.Fatalf("ListCalendars: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("names after delete = %v", names)
	}

	// Deleting an unknown calendar is fine.
	if err := s.DeleteCalendar(ctx, "nowhere"); err != nil {
		t.Errorf("DeleteCalendar(unknown): %v", err)
	}
}

func TestParquetWriteReadSchedule(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	days := []domain.ScheduleDay{
		{
			Date:        date(2026, time.August, 14),
			Weekday:     time.Friday,
			BusinessDay: true,
			WindowStart: 9 * time.Hour,
			WindowEnd:   17 * time.Hour,
		},
		{
			Date:    date(2026, time.August, 15),
			Weekday: time.Saturday,
		},
		{
			Date:    date(2026, time.August, 17),
			Weekday: time.Monday,
			Holiday: "some holiday",
		},
	}
	if err := ps.WriteSchedule(ctx, "default", days); err != nil {
		t.Fatalf("WriteSchedule: %v", err)
	}

	out, err := ps.ReadSchedule(ctx, "default", date(2026, time.August, 14), date(2026, time.August, 16))
	if err != nil {
		t.Fatalf("ReadSchedule: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2 (range excludes the 17th)", len(out))
	}
	if !out[0].BusinessDay || out[0].WindowStart != 9*time.Hour || out[0].WindowEnd != 17*time.Hour {
		t.Errorf("friday = %+v", out[0])
	}
	if out[1].BusinessDay || out[1].Weekday != time.Saturday {
		t.Errorf("saturday = %+v", out[1])
	}
}

func TestParquetMergeReplacesDates(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	first := []domain.ScheduleDay{{
		Date:        date(2026, time.August, 14),
		Weekday:     time.Friday,
		BusinessDay: true,
	}}
	if err := ps.WriteSchedule(ctx, "default", first); err != nil {
		t.Fatalf("WriteSchedule: %v", err)
	}

	// Re-export the same date as a holiday plus one new date.
	second := []domain.ScheduleDay{
		{Date: date(2026, time.August, 14), Weekday: time.Friday, Holiday: "surprise"},
		{Date: date(2026, time.August, 18), Weekday: time.Tuesday, BusinessDay: true},
	}
	if err := ps.WriteSchedule(ctx, "default", second); err != nil {
		t.Fatalf("WriteSchedule again: %v", err)
	}

	out, err := ps.ReadSchedule(ctx, "default", date(2026, time.August, 1), date(2026, time.August, 31))
	if err != nil {
		t.Fatalf("ReadSchedule: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].BusinessDay || out[0].Holiday != "surprise" {
		t.Errorf("merged friday = %+v, want replacement", out[0])
	}
}

func TestParquetSpansYears(t *testing.T) {
	ps := NewParquetStore(t.TempDir())
	ctx := context.Background()

	days := []domain.ScheduleDay{
		{Date: date(2026, time.December, 31), Weekday: time.Thursday, BusinessDay: true},
		{Date: date(2027, time.January, 1), Weekday: time.Friday, Holiday: "new year"},
	}
	if err := ps.WriteSchedule(ctx, "default", days); err != nil {
		t.Fatalf("WriteSchedule: %v", err)
	}

	out, err := ps.ReadSchedule(ctx, "default", date(2026, time.December, 30), date(2027, time.January, 2))
	if err != nil {
		t.Fatalf("ReadSchedule: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2 across the year boundary", len(out))
	}
	if !out[0].Date.Before(out[1].Date) {
		t.Errorf("results not sorted: %v, %v", out[0].Date, out[1].Date)
	}
}

func TestParquetMissingCalendar(t *testing.T) {
	ps := NewParquetStore(t.TempDir())

	out, err := ps.ReadSchedule(context.Background(), "nowhere", date(2026, time.January, 1), date(2026, time.December, 31))
	if err != nil {
		t.Fatalf("ReadSchedule: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %d days, want none", len(out))
	}
}
