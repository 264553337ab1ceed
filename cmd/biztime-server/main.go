package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biztime/internal/config"
	"biztime/internal/domain"
	"biztime/internal/httpapi"
	"biztime/internal/store"
	"biztime/internal/util"
)

func main() {
	// Load config.
	cfgPath := "config/biztime.yaml"
	if p := os.Getenv("BIZTIME_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	bizCfg, err := cfg.Calendar.BusinessConfig()
	if err != nil {
		log.Fatalf("calendar config: %v", err)
	}
	loc, err := cfg.Calendar.Location()
	if err != nil {
		log.Fatalf("calendar config: %v", err)
	}

	// Merge in a stored holiday calendar when one is named.
	var holidays []domain.Holiday
	if cfg.Calendar.HolidayCalendar != "" {
		if cfg.Storage.SQLitePath == "" {
			log.Fatalf("holiday_calendar %q set but storage.sqlite_path is empty", cfg.Calendar.HolidayCalendar)
		}
		db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening holiday store: %v", err)
		}
		holidays, err = db.LoadHolidays(context.Background(), cfg.Calendar.HolidayCalendar)
		db.Close()
		if err != nil {
			log.Fatalf("loading holiday calendar %q: %v", cfg.Calendar.HolidayCalendar, err)
		}
		logger.Info("loaded holiday calendar",
			"calendar", cfg.Calendar.HolidayCalendar, "holidays", len(holidays))
	}

	srv := httpapi.NewServer(bizCfg, holidays, loc, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	if cfg.Server.Port == 0 {
		addr = fmt.Sprintf("%s:8080", cfg.Server.Host)
	}
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Handler(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("biztime server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down biztime server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
