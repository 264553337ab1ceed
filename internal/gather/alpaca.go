package gather

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"

	"biztime/internal/domain"
	"biztime/internal/util"
)

// Compile-time interface check.
var _ Importer = (*MarketHolidayImporter)(nil)

// calendarClient is the slice of the Alpaca client used by the importer.
type calendarClient interface {
	GetCalendar(req alpaca.GetCalendarRequest) ([]alpaca.CalendarDay, error)
}

// MarketHolidayImporter derives market holidays from the Alpaca trading
// calendar: a weekday that the working week considers a business day but the
// exchange is closed on is a holiday.
type MarketHolidayImporter struct {
	client    calendarClient
	isWorking func(time.Weekday) bool
	limiter   *util.RateLimiter
	log       *slog.Logger
}

// NewMarketHolidayImporter creates an importer configured with the given
// Alpaca credentials. isWorking decides which weekdays count as business days
// (nil means Monday through Friday). rateLimitPerMin bounds API calls; a
// non-positive value disables limiting.
func NewMarketHolidayImporter(apiKey, apiSecret, baseURL string, isWorking func(time.Weekday) bool, rateLimitPerMin int) *MarketHolidayImporter {
	opts := alpaca.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if baseURL != "" {
		opts.BaseURL = baseURL
	}
	if isWorking == nil {
		isWorking = func(d time.Weekday) bool {
			return d >= time.Monday && d <= time.Friday
		}
	}

	return &MarketHolidayImporter{
		client:    alpaca.NewClient(opts),
		isWorking: isWorking,
		limiter:   util.NewRateLimiter(rateLimitPerMin),
		log:       slog.Default().With("importer", "alpaca-market"),
	}
}

// Name returns the importer identifier.
func (m *MarketHolidayImporter) Name() string { return "alpaca-market" }

// Fetch returns the derived holidays within [start, end]. The trading
// calendar is fetched one calendar year at a time, rate limited and retried.
func (m *MarketHolidayImporter) Fetch(ctx context.Context, start, end time.Time) ([]domain.Holiday, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	trading := make(map[string]bool)
	for year := start.Year(); year <= end.Year(); year++ {
		from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
		if from.Before(start) {
			from = start
		}
		if to.After(end) {
			to = end
		}

		if err := m.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var days []alpaca.CalendarDay
		err := util.Retry(ctx, 3, time.Second, func() error {
			var err error
			days, err = m.client.GetCalendar(alpaca.GetCalendarRequest{
				Start: from,
				End:   to,
			})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("GetCalendar %d: %w", year, err)
		}

		m.log.Info("fetched trading calendar", "year", year, "days", len(days))
		for _, d := range days {
			trading[d.Date] = true
		}
	}

	return DeriveHolidays(start, end, m.isWorking, trading), nil
}

// DeriveHolidays returns, for every date in [start, end] whose weekday the
// working week accepts but that is absent from the trading-date set, a
// Holiday at midnight UTC. Dates in the trading set use the "2006-01-02"
// layout.
func DeriveHolidays(start, end time.Time, isWorking func(time.Weekday) bool, trading map[string]bool) []domain.Holiday {
	var holidays []domain.Holiday
	for d := midnightUTC(start); !d.After(midnightUTC(end)); d = d.AddDate(0, 0, 1) {
		if !isWorking(d.Weekday()) {
			continue
		}
		if trading[d.Format("2006-01-02")] {
			continue
		}
		holidays = append(holidays, domain.Holiday{Date: d, Name: "market closed"})
	}
	return holidays
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
