package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"biztime/internal/domain"
)

// Compile-time interface check.
var _ ScheduleStore = (*ParquetStore)(nil)

// ParquetStore implements ScheduleStore using Parquet files on disk.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// ---------------------------------------------------------------------------
// Parquet record type (on-disk schema)
// ---------------------------------------------------------------------------

// ScheduleRecord is the Parquet schema for one resolved schedule day.
type ScheduleRecord struct {
	Calendar    string `parquet:"calendar"`
	Date        int64  `parquet:"date,timestamp(millisecond)"` // Unix ms at midnight UTC
	Weekday     int32  `parquet:"weekday"`
	BusinessDay bool   `parquet:"business_day"`
	Holiday     string `parquet:"holiday"`
	WindowStart int64  `parquet:"window_start"` // nanoseconds from midnight
	WindowEnd   int64  `parquet:"window_end"`
}

// ---------------------------------------------------------------------------
// ScheduleStore implementation
// ---------------------------------------------------------------------------

// WriteSchedule writes schedule days to Parquet files organized by calendar
// and year. Each calendar+year combination produces a separate file at:
//
//	<DataDir>/schedules/<calendar>/<YYYY>.parquet
//
// Days already on disk for the same date are replaced.
func (s *ParquetStore) WriteSchedule(_ context.Context, calendar string, days []domain.ScheduleDay) error {
	if len(days) == 0 {
		return nil
	}

	groups := make(map[int][]ScheduleRecord)
	for _, d := range days {
		year := d.Date.Year()
		groups[year] = append(groups[year], ScheduleRecord{
			Calendar:    calendar,
			Date:        midnightUTC(d.Date).UnixMilli(),
			Weekday:     int32(d.Weekday),
			BusinessDay: d.BusinessDay,
			Holiday:     d.Holiday,
			WindowStart: d.WindowStart.Nanoseconds(),
			WindowEnd:   d.WindowEnd.Nanoseconds(),
		})
	}

	for year, records := range groups {
		path := s.schedulePath(calendar, year)

		existing, _ := readParquetFile[ScheduleRecord](path)
		merged := mergeScheduleRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing schedule for %s/%d: %w", calendar, year, err)
		}
	}
	return nil
}

// ReadSchedule reads schedule days for the calendar within [start, end],
// sorted by date. Years with no file on disk are skipped.
func (s *ParquetStore) ReadSchedule(_ context.Context, calendar string, start, end time.Time) ([]domain.ScheduleDay, error) {
	from := midnightUTC(start)
	to := midnightUTC(end)

	var days []domain.ScheduleDay
	for year := from.Year(); year <= to.Year(); year++ {
		path := s.schedulePath(calendar, year)

		records, err := readParquetFile[ScheduleRecord](path)
		if err != nil {
			continue
		}

		for _, r := range records {
			d := time.UnixMilli(r.Date).UTC()
			if d.Before(from) || d.After(to) {
				continue
			}
			days = append(days, domain.ScheduleDay{
				Date:        d,
				Weekday:     time.Weekday(r.Weekday),
				BusinessDay: r.BusinessDay,
				Holiday:     r.Holiday,
				WindowStart: time.Duration(r.WindowStart),
				WindowEnd:   time.Duration(r.WindowEnd),
			})
		}
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days, nil
}

// ---------------------------------------------------------------------------
// Path and file helpers
// ---------------------------------------------------------------------------

// schedulePath returns the filesystem path for a schedule Parquet file.
// Layout: <dataDir>/schedules/<calendar>/<YYYY>.parquet
func (s *ParquetStore) schedulePath(calendar string, year int) string {
	return filepath.Join(s.DataDir, "schedules", calendar, fmt.Sprintf("%d.parquet", year))
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeScheduleRecords deduplicates records by (calendar, date), preferring
// new records over existing ones. Results are sorted by date.
func mergeScheduleRecords(existing, incoming []ScheduleRecord) []ScheduleRecord {
	type key struct {
		calendar string
		date     int64
	}
	seen := make(map[key]ScheduleRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Calendar, r.Date}] = r
	}
	for _, r := range incoming {
		seen[key{r.Calendar, r.Date}] = r
	}

	merged := make([]ScheduleRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})
	return merged
}

// midnightUTC maps a date to midnight UTC on the same calendar day.
func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
