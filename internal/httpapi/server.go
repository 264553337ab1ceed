package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"biztime/internal/calendar"
	"biztime/internal/domain"
	"biztime/internal/engine"
	"biztime/pkg/biztime"
)

// Server serves the business-calendar HTTP API.
type Server struct {
	cfg biztime.Config
	cal *calendar.Calendar
	loc *time.Location
	log *slog.Logger
}

// NewServer creates a Server over the given window configuration and holiday
// set. Dates already present in cfg.Holidays and the named holidays slice are
// merged; names from the slice win. Date-only inputs are interpreted in loc.
func NewServer(cfg biztime.Config, holidays []domain.Holiday, loc *time.Location, log *slog.Logger) *Server {
	cfg = cfg.WithDefaults()
	all := make([]domain.Holiday, 0, len(cfg.Holidays)+len(holidays))
	for _, d := range cfg.Holidays {
		all = append(all, domain.Holiday{Date: d})
	}
	all = append(all, holidays...)
	for _, h := range holidays {
		cfg.Holidays = append(cfg.Holidays, h.Date)
	}
	return &Server{
		cfg: cfg,
		cal: calendar.New(cfg.WorkingWeek.IsWorkingDay, all),
		loc: loc,
		log: log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/shift", s.handleShift)
	mux.HandleFunc("POST /api/v1/normalize", s.handleNormalize)
	mux.HandleFunc("GET /api/v1/business-day", s.handleBusinessDay)
	mux.HandleFunc("GET /api/v1/holidays", s.handleHolidays)
	mux.HandleFunc("GET /api/v1/window", s.handleWindow)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// statusFor maps engine errors onto HTTP statuses. Range and unit errors are
// the caller's fault; an exhausted calendar scan is a configuration problem.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrAmountRange), errors.Is(err, engine.ErrShiftRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrNonBusinessResult):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// writeEngineError maps err to a status and logs server-side failures.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("calendar resolution failed", "error", err)
	}
	writeError(w, status, err.Error())
}

func (s *Server) handleShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if (req.Duration == "") == (req.BusinessDays == nil) {
		writeError(w, http.StatusBadRequest, "exactly one of duration and business_days required")
		return
	}

	t, err := time.Parse(time.RFC3339Nano, req.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid time: %v", err))
		return
	}

	bt, err := biztime.New(t, s.cfg)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	var res biztime.Time
	if req.Duration != "" {
		d, err := time.ParseDuration(req.Duration)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid duration: %v", err))
			return
		}
		res, err = bt.Add(d)
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
	} else {
		res, err = bt.AddBusinessDays(*req.BusinessDays)
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
	}

	writeJSON(w, TimeResponse{Result: res.Format(time.RFC3339Nano)})
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	t, err := time.Parse(time.RFC3339Nano, req.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid time: %v", err))
		return
	}

	bt, err := biztime.New(t, s.cfg)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	writeJSON(w, TimeResponse{Result: bt.Format(time.RFC3339Nano)})
}

func (s *Server) handleBusinessDay(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dateParam(w, r, "date")
	if !ok {
		return
	}

	resp := BusinessDayResponse{
		Date:        d.Format("2006-01-02"),
		Weekday:     strings.ToLower(d.Weekday().String()),
		BusinessDay: s.cal.IsBusinessDay(d),
		Holiday:     s.cal.HolidayName(d),
	}
	writeJSON(w, resp)
}

func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	from, ok := s.dateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := s.dateParam(w, r, "to")
	if !ok {
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to before from")
		return
	}

	hs := s.cal.HolidaysBetween(from, to)
	out := make([]HolidayJSON, 0, len(hs))
	for _, h := range hs {
		out = append(out, HolidayJSON{
			Date: h.Date.Format("2006-01-02"),
			Name: h.Name,
		})
	}
	writeJSON(w, HolidaysResponse{Holidays: out})
}

func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	days := s.cfg.WorkingWeek.Days()
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = strings.ToLower(d.String())
	}
	writeJSON(w, WindowResponse{
		DayStart:    clockString(s.cfg.DayStart),
		DayEnd:      clockString(s.cfg.DayEnd),
		WorkingWeek: names,
		Timezone:    s.loc.String(),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// dateParam parses a required "2006-01-02" query parameter in the server's
// location, writing a 400 response on failure.
func (s *Server) dateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		writeError(w, http.StatusBadRequest, name+" required")
		return time.Time{}, false
	}
	d, err := time.ParseInLocation("2006-01-02", v, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: %v", name, err))
		return time.Time{}, false
	}
	return d, true
}

// clockString formats an offset from midnight as "15:04" or "15:04:05".
func clockString(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	sec := int(d % time.Minute / time.Second)
	if sec != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}
