package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"biztime/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ HolidayStore = (*SQLiteStore)(nil)

// SQLiteStore implements HolidayStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS calendars (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS holidays (
	calendar_id INTEGER NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
	date        TEXT    NOT NULL,
	name        TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (calendar_id, date)
);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, creates the
// schema if needed, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// One connection keeps the pragma in effect and makes ":memory:" usable.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveHolidays inserts or replaces the holidays of the named calendar inside
// a single transaction. An empty slice clears the calendar's holidays but
// keeps the calendar row.
func (s *SQLiteStore) SaveHolidays(ctx context.Context, calendar string, holidays []domain.Holiday) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO calendars (name) VALUES (?) ON CONFLICT(name) DO NOTHING", calendar); err != nil {
		return fmt.Errorf("saving calendar %q: %w", calendar, err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx,
		"SELECT id FROM calendars WHERE name = ?", calendar).Scan(&id); err != nil {
		return fmt.Errorf("saving calendar %q: %w", calendar, err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM holidays WHERE calendar_id = ?", id); err != nil {
		return fmt.Errorf("saving calendar %q: %w", calendar, err)
	}

	for _, h := range holidays {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO holidays (calendar_id, date, name) VALUES (?, ?, ?)",
			id, h.Date.Format("2006-01-02"), h.Name); err != nil {
			return fmt.Errorf("saving calendar %q: %w", calendar, err)
		}
	}

	return tx.Commit()
}

// LoadHolidays returns the holidays of the named calendar sorted by date.
// An unknown calendar yields an empty slice, not an error.
func (s *SQLiteStore) LoadHolidays(ctx context.Context, calendar string) ([]domain.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT h.date, h.name
		FROM holidays h
		JOIN calendars c ON c.id = h.calendar_id
		WHERE c.name = ?
		ORDER BY h.date`, calendar)
	if err != nil {
		return nil, fmt.Errorf("loading calendar %q: %w", calendar, err)
	}
	defer rows.Close()

	var holidays []domain.Holiday
	for rows.Next() {
		var ds, name string
		if err := rows.Scan(&ds, &name); err != nil {
			return nil, err
		}
		d, err := time.ParseInLocation("2006-01-02", ds, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("loading calendar %q: invalid date %q", calendar, ds)
		}
		holidays = append(holidays, domain.Holiday{Date: d, Name: name})
	}
	return holidays, rows.Err()
}

// ListCalendars returns the names of all stored calendars sorted by name.
func (s *SQLiteStore) ListCalendars(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM calendars ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteCalendar removes the named calendar and its holidays. Deleting an
// unknown calendar is a no-op.
func (s *SQLiteStore) DeleteCalendar(ctx context.Context, calendar string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM calendars WHERE name = ?", calendar)
	if err != nil {
		return fmt.Errorf("deleting calendar %q: %w", calendar, err)
	}
	return nil
}
