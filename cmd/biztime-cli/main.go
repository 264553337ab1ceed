package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"biztime/internal/calendar"
	"biztime/internal/config"
	"biztime/internal/domain"
	"biztime/internal/gather"
	"biztime/internal/store"
	"biztime/internal/util"
	"biztime/pkg/biztime"
)

const version = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: biztime-cli <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  shift         Displace a moment by business time\n")
		fmt.Fprintf(os.Stderr, "  normalize     Snap a moment onto the business timeline\n")
		fmt.Fprintf(os.Stderr, "  business-day  Report whether a date is a business day\n")
		fmt.Fprintf(os.Stderr, "  holidays      List configured holidays in a date range\n")
		fmt.Fprintf(os.Stderr, "  import        Import market holidays into the SQLite store\n")
		fmt.Fprintf(os.Stderr, "  export        Export a resolved schedule to Parquet\n")
		fmt.Fprintf(os.Stderr, "  version       Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("biztime-cli %s\n", version)

	case "shift":
		err = cmdShift(os.Args[2:])

	case "normalize":
		err = cmdNormalize(os.Args[2:])

	case "business-day":
		err = cmdBusinessDay(os.Args[2:])

	case "holidays":
		err = cmdHolidays(os.Args[2:])

	case "import":
		err = cmdImport(os.Args[2:])

	case "export":
		err = cmdExport(os.Args[2:])

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "biztime-cli %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Shared setup
// ---------------------------------------------------------------------------

// loadSetup loads the config file and builds the business config, named
// holidays (config plus optional stored calendar), and location.
func loadSetup(cfgPath string) (*config.Config, biztime.Config, []domain.Holiday, *time.Location, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, biztime.Config{}, nil, nil, err
	}

	bizCfg, err := cfg.Calendar.BusinessConfig()
	if err != nil {
		return nil, biztime.Config{}, nil, nil, err
	}
	loc, err := cfg.Calendar.Location()
	if err != nil {
		return nil, biztime.Config{}, nil, nil, err
	}

	var holidays []domain.Holiday
	if cfg.Calendar.HolidayCalendar != "" && cfg.Storage.SQLitePath != "" {
		db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, biztime.Config{}, nil, nil, err
		}
		holidays, err = db.LoadHolidays(context.Background(), cfg.Calendar.HolidayCalendar)
		db.Close()
		if err != nil {
			return nil, biztime.Config{}, nil, nil, err
		}
		for _, h := range holidays {
			bizCfg.Holidays = append(bizCfg.Holidays, h.Date)
		}
	}

	return cfg, bizCfg, holidays, loc, nil
}

func defaultConfigPath() string {
	if p := os.Getenv("BIZTIME_CONFIG"); p != "" {
		return p
	}
	return "config/biztime.yaml"
}

func parseTimeIn(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, loc); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (want RFC 3339, %q, or %q)",
			s, "2006-01-02 15:04:05", "2006-01-02")
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// Subcommands
// ---------------------------------------------------------------------------

func cmdShift(args []string) error {
	fs := flag.NewFlagSet("shift", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath(), "path to config file")
	timeStr := fs.String("time", "", "moment to shift (RFC 3339 or local date-time)")
	durStr := fs.String("by", "", "business duration to add, Go syntax (e.g. 90m, -1h30m)")
	days := fs.Int("business-days", 0, "whole business days to add instead of a duration")
	fs.Parse(args)

	if *timeStr == "" {
		return fmt.Errorf("-time is required")
	}
	if (*durStr == "") == (*days == 0) {
		return fmt.Errorf("exactly one of -by and -business-days is required")
	}

	_, bizCfg, _, loc, err := loadSetup(*cfgPath)
	if err != nil {
		return err
	}
	t, err := parseTimeIn(*timeStr, loc)
	if err != nil {
		return err
	}
	bt, err := biztime.New(t, bizCfg)
	if err != nil {
		return err
	}

	var res biztime.Time
	if *durStr != "" {
		d, err := time.ParseDuration(*durStr)
		if err != nil {
			return err
		}
		res, err = bt.Add(d)
		if err != nil {
			return err
		}
	} else {
		res, err = bt.AddBusinessDays(*days)
		if err != nil {
			return err
		}
	}

	fmt.Println(res.Format(time.RFC3339Nano))
	return nil
}

func cmdNormalize(args []string) error {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath(), "path to config file")
	timeStr := fs.String("time", "", "moment to normalize (RFC 3339 or local date-time)")
	fs.Parse(args)

	if *timeStr == "" {
		return fmt.Errorf("-time is required")
	}

	_, bizCfg, _, loc, err := loadSetup(*cfgPath)
	if err != nil {
		return err
	}
	t, err := parseTimeIn(*timeStr, loc)
	if err != nil {
		return err
	}
	bt, err := biztime.New(t, bizCfg)
	if err != nil {
		return err
	}

	fmt.Println(bt.Format(time.RFC3339Nano))
	return nil
}

func cmdBusinessDay(args []string) error {
	fs := flag.NewFlagSet("business-day", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath(), "path to config file")
	dateStr := fs.String("date", "", "date to check (2006-01-02)")
	fs.Parse(args)

	if *dateStr == "" {
		return fmt.Errorf("-date is required")
	}

	_, bizCfg, holidays, loc, err := loadSetup(*cfgPath)
	if err != nil {
		return err
	}
	d, err := time.ParseInLocation("2006-01-02", *dateStr, loc)
	if err != nil {
		return err
	}

	cal := buildCalendar(bizCfg, holidays)
	if cal.IsBusinessDay(d) {
		fmt.Printf("%s (%s): business day\n", *dateStr, strings.ToLower(d.Weekday().String()))
		return nil
	}
	if name := cal.HolidayName(d); name != "" {
		fmt.Printf("%s (%s): holiday (%s)\n", *dateStr, strings.ToLower(d.Weekday().String()), name)
	} else {
		fmt.Printf("%s (%s): not a business day\n", *dateStr, strings.ToLower(d.Weekday().String()))
	}
	return nil
}

func cmdHolidays(args []string) error {
	fs := flag.NewFlagSet("holidays", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath(), "path to config file")
	fromStr := fs.String("from", "", "range start (2006-01-02)")
	toStr := fs.String("to", "", "range end (2006-01-02)")
	fs.Parse(args)

	if *fromStr == "" || *toStr == "" {
		return fmt.Errorf("-from and -to are required")
	}

	_, bizCfg, holidays, loc, err := loadSetup(*cfgPath)
	if err != nil {
		return err
	}
	from, err := time.ParseInLocation("2006-01-02", *fromStr, loc)
	if err != nil {
		return err
	}
	to, err := time.ParseInLocation("2006-01-02", *toStr, loc)
	if err != nil {
		return err
	}

	cal := buildCalendar(bizCfg, holidays)
	for _, h := range cal.HolidaysBetween(from, to) {
		if h.Name != "" {
			fmt.Printf("%s  %s\n", h.Date.Format("2006-01-02"), h.Name)
		} else {
			fmt.Println(h.Date.Format("2006-01-02"))
		}
	}
	return nil
}

func cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath(), "path to config file")
	name := fs.String("calendar", "us-market", "name to store the imported calendar under")
	fromStr := fs.String("from", "", "range start (2006-01-02, default config import.start_date)")
	toStr := fs.String("to", "", "range end (2006-01-02, default config import.end_date)")
	fs.Parse(args)

	cfg, bizCfg, _, _, err := loadSetup(*cfgPath)
	if err != nil {
		return err
	}
	if cfg.Storage.SQLitePath == "" {
		return fmt.Errorf("storage.sqlite_path is required for import")
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	if *fromStr == "" {
		*fromStr = cfg.Import.StartDate
	}
	if *toStr == "" {
		*toStr = cfg.Import.EndDate
	}
	from, err := time.Parse("2006-01-02", *fromStr)
	if err != nil {
		return fmt.Errorf("range start: %w", err)
	}
	to, err := time.Parse("2006-01-02", *toStr)
	if err != nil {
		return fmt.Errorf("range end: %w", err)
	}

	imp := gather.NewMarketHolidayImporter(
		cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL,
		bizCfg.WithDefaults().WorkingWeek.IsWorkingDay,
		cfg.Import.RateLimitPerMin,
	)

	ctx := context.Background()
	holidays, err := imp.Fetch(ctx, from, to)
	if err != nil {
		return err
	}

	db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveHolidays(ctx, *name, holidays); err != nil {
		return err
	}
	fmt.Printf("imported %d holidays into calendar %q\n", len(holidays), *name)
	return nil
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath(), "path to config file")
	name := fs.String("calendar", "default", "schedule name for the exported files")
	fromStr := fs.String("from", "", "range start (2006-01-02)")
	toStr := fs.String("to", "", "range end (2006-01-02)")
	fs.Parse(args)

	if *fromStr == "" || *toStr == "" {
		return fmt.Errorf("-from and -to are required")
	}

	cfg, bizCfg, holidays, loc, err := loadSetup(*cfgPath)
	if err != nil {
		return err
	}
	if cfg.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is required for export")
	}
	from, err := time.ParseInLocation("2006-01-02", *fromStr, loc)
	if err != nil {
		return err
	}
	to, err := time.ParseInLocation("2006-01-02", *toStr, loc)
	if err != nil {
		return err
	}
	if to.Before(from) {
		return fmt.Errorf("range end before start")
	}

	bizCfg = bizCfg.WithDefaults()
	cal := buildCalendar(bizCfg, holidays)

	var days []domain.ScheduleDay
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		day := domain.ScheduleDay{
			Date:    d,
			Weekday: d.Weekday(),
			Holiday: cal.HolidayName(d),
		}
		if cal.IsBusinessDay(d) {
			day.BusinessDay = true
			day.WindowStart = bizCfg.DayStart
			day.WindowEnd = bizCfg.DayEnd
		}
		days = append(days, day)
	}

	ps := store.NewParquetStore(cfg.Storage.DataDir)
	if err := ps.WriteSchedule(context.Background(), *name, days); err != nil {
		return err
	}
	fmt.Printf("exported %d days to schedule %q under %s\n", len(days), *name, cfg.Storage.DataDir)
	return nil
}

// buildCalendar merges config holiday dates with named holidays into a
// resolver. Named entries win on date collisions.
func buildCalendar(cfg biztime.Config, named []domain.Holiday) *calendar.Calendar {
	cfg = cfg.WithDefaults()
	all := make([]domain.Holiday, 0, len(cfg.Holidays)+len(named))
	for _, d := range cfg.Holidays {
		all = append(all, domain.Holiday{Date: d})
	}
	all = append(all, named...)
	return calendar.New(cfg.WorkingWeek.IsWorkingDay, all)
}
