// Package config loads the biztime YAML configuration and converts its
// calendar section into a biztime.Config.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"biztime/pkg/biztime"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the biztime server and CLI.
type Config struct {
	Server   Server         `yaml:"server"`
	Logging  Logging        `yaml:"logging"`
	Storage  Storage        `yaml:"storage"`
	Calendar CalendarConfig `yaml:"calendar"`
	Alpaca   Alpaca         `yaml:"alpaca"`
	Import   ImportConfig   `yaml:"import"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// CalendarConfig describes the business day window, working week, and
// holiday sources.
type CalendarConfig struct {
	// DayStart and DayEnd are clock strings like "09:00" or "09:30:00".
	DayStart string `yaml:"day_start"`
	DayEnd   string `yaml:"day_end"`

	// WorkingWeek lists weekday names ("monday" ... "sunday"). Empty means
	// Monday through Friday.
	WorkingWeek []string `yaml:"working_week"`

	// Holidays lists dates as "2006-01-02" strings.
	Holidays []string `yaml:"holidays"`

	// HolidayCalendar optionally names a stored holiday set to merge in
	// from the SQLite store at startup.
	HolidayCalendar string `yaml:"holiday_calendar"`

	// Timezone is the IANA zone the server interprets date-only inputs in.
	// Empty means UTC.
	Timezone string `yaml:"timezone"`
}

// Alpaca holds credentials and endpoints for the Alpaca market calendar API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
}

// ImportConfig holds parameters for the market-calendar import job.
type ImportConfig struct {
	StartDate       string `yaml:"start_date"`
	EndDate         string `yaml:"end_date"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}

	// Standard Alpaca env vars (highest priority, canonical names used by
	// the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

// ---------------------------------------------------------------------------
// Calendar conversion
// ---------------------------------------------------------------------------

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// BusinessConfig converts the calendar section into a biztime.Config.
// Unset fields keep biztime defaults.
func (c *CalendarConfig) BusinessConfig() (biztime.Config, error) {
	var cfg biztime.Config

	loc, err := c.Location()
	if err != nil {
		return biztime.Config{}, err
	}

	if c.DayStart != "" || c.DayEnd != "" {
		start, err := parseClock(c.DayStart)
		if err != nil {
			return biztime.Config{}, fmt.Errorf("day_start: %w", err)
		}
		end, err := parseClock(c.DayEnd)
		if err != nil {
			return biztime.Config{}, fmt.Errorf("day_end: %w", err)
		}
		cfg.DayStart = start
		cfg.DayEnd = end
	}

	if len(c.WorkingWeek) > 0 {
		var days []time.Weekday
		for _, name := range c.WorkingWeek {
			d, ok := weekdayNames[strings.ToLower(name)]
			if !ok {
				return biztime.Config{}, fmt.Errorf("working_week: unknown weekday %q", name)
			}
			days = append(days, d)
		}
		cfg.WorkingWeek = biztime.NewWorkingWeek(days...)
	}

	for _, ds := range c.Holidays {
		t, err := time.ParseInLocation("2006-01-02", ds, loc)
		if err != nil {
			return biztime.Config{}, fmt.Errorf("holidays: %w", err)
		}
		cfg.Holidays = append(cfg.Holidays, t)
	}

	return cfg, nil
}

// Location resolves the configured timezone, defaulting to UTC.
func (c *CalendarConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}

// parseClock parses "15:04" or "15:04:05" into an offset from midnight.
func parseClock(s string) (time.Duration, error) {
	layout := "15:04"
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}
