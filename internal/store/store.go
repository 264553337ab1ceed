// Package store defines storage interfaces for persisting and retrieving
// named holiday calendars and exported business-day schedules.
package store

import (
	"context"
	"time"

	"biztime/internal/domain"
)

// HolidayStore persists and retrieves named holiday calendars.
type HolidayStore interface {
	// SaveHolidays inserts or replaces the holidays of the named calendar.
	SaveHolidays(ctx context.Context, calendar string, holidays []domain.Holiday) error

	// LoadHolidays returns the holidays of the named calendar sorted by date.
	LoadHolidays(ctx context.Context, calendar string) ([]domain.Holiday, error)

	// ListCalendars returns the names of all stored calendars.
	ListCalendars(ctx context.Context) ([]string, error)

	// DeleteCalendar removes the named calendar and its holidays.
	DeleteCalendar(ctx context.Context, calendar string) error
}

// ScheduleStore persists and retrieves per-date business-day schedules.
type ScheduleStore interface {
	// WriteSchedule persists a batch of schedule days for a calendar.
	WriteSchedule(ctx context.Context, calendar string, days []domain.ScheduleDay) error

	// ReadSchedule returns schedule days for the calendar within [start, end].
	ReadSchedule(ctx context.Context, calendar string, start, end time.Time) ([]domain.ScheduleDay, error)
}
