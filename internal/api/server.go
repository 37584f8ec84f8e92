package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/barocast/internal/forecast"
	"github.com/lox/barocast/internal/models"
	"github.com/lox/barocast/internal/store"
)

type Server struct {
	store   *store.Store
	station models.Station
	port    string
	loc     *time.Location
}

func NewServer(st *store.Store, station models.Station, port string, loc *time.Location) *Server {
	return &Server{
		store:   st,
		station: station,
		port:    port,
		loc:     loc,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/current", s.handleCurrent)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/forecast/hourly", s.handleForecastHourly)
	mux.HandleFunc("/api/forecast/daily", s.handleForecastDaily)
	mux.HandleFunc("/api/forecast/diagnostics", s.handleForecastDiagnostics)
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

type HealthStatus struct {
	Status     string     `json:"status"`
	StationID  string     `json:"station_id"`
	LastSeen   *time.Time `json:"last_seen,omitempty"`
	AgeMinutes int        `json:"age_minutes"`
	LastRunAt  *time.Time `json:"last_forecast_run,omitempty"`
	Error      string     `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{Status: "ok", StationID: s.station.StationID, AgeMinutes: -1}

	staleThreshold := 30 * time.Minute
	now := time.Now()

	obs, err := s.store.GetLatestObservation(s.station.StationID)
	switch {
	case err != nil:
		health.Status = "error"
		health.Error = err.Error()
	case obs == nil:
		health.Status = "degraded"
	default:
		health.LastSeen = &obs.ObservedAt
		health.AgeMinutes = int(now.Sub(obs.ObservedAt).Minutes())
		if now.Sub(obs.ObservedAt) > staleThreshold {
			health.Status = "degraded"
		}
	}

	if run, err := s.store.GetLatestForecastRun(s.station.StationID); err == nil && run != nil {
		health.LastRunAt = &run.RunAt
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		log.Printf("health: write response: %v", err)
	}
}

type CurrentData struct {
	Station          models.Station      `json:"station"`
	Observation      *models.Observation `json:"observation"`
	PressureChange3h *float64            `json:"pressure_change_3h,omitempty"`
	TempChange1h     *float64            `json:"temp_change_1h,omitempty"`
	PressureTrend    string              `json:"pressure_trend"`
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	obs, err := s.store.GetLatestObservation(s.station.StationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := CurrentData{
		Station:       s.station,
		Observation:   obs,
		PressureTrend: forecast.TrendSteady.String(),
	}

	now := time.Now()
	if pc, err := s.store.GetPressureChange3h(s.station.StationID, now); err == nil && pc.Valid {
		v := pc.Float64
		data.PressureChange3h = &v
		switch {
		case v >= 1.6:
			data.PressureTrend = forecast.TrendRising.String()
		case v <= -1.6:
			data.PressureTrend = forecast.TrendFalling.String()
		}
	}
	if tc, err := s.store.GetTempChange1h(s.station.StationID, now); err == nil && tc.Valid {
		v := tc.Float64
		data.TempChange1h = &v
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24)
	if hours < 1 {
		hours = 1
	}
	if hours > 24*7 {
		hours = 24 * 7
	}

	end := time.Now()
	start := end.Add(-time.Duration(hours) * time.Hour)

	observations, err := s.store.GetObservations(s.station.StationID, start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(observations)
}

// HourlyEntryView wraps a stored hourly entry with its localized text.
type HourlyEntryView struct {
	forecast.HourlyEntry
	Text string `json:"text"`
}

type HourlyForecast struct {
	RunID   string            `json:"run_id"`
	RunAt   time.Time         `json:"run_at"`
	Locale  string            `json:"locale"`
	Entries []HourlyEntryView `json:"entries"`
}

func (s *Server) handleForecastHourly(w http.ResponseWriter, r *http.Request) {
	run, entries, ok := s.latestHourly(w)
	if !ok {
		return
	}

	hours := queryInt(r, "hours", len(entries)-1)
	if hours >= 0 && hours+1 < len(entries) {
		entries = entries[:hours+1]
	}

	locale := s.locale(r)
	views := make([]HourlyEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, HourlyEntryView{
			HourlyEntry: e,
			Text:        forecast.Text(forecast.Result{NumericCode: e.Code}, locale),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HourlyForecast{
		RunID:   run.ID,
		RunAt:   run.RunAt,
		Locale:  locale,
		Entries: views,
	})
}

type DailyForecast struct {
	RunID   string                `json:"run_id"`
	RunAt   time.Time             `json:"run_at"`
	Entries []forecast.DailyEntry `json:"entries"`
}

func (s *Server) handleForecastDaily(w http.ResponseWriter, r *http.Request) {
	run, ok := s.latestRun(w)
	if !ok {
		return
	}

	var entries []forecast.DailyEntry
	if err := json.Unmarshal([]byte(run.DailyJSON), &entries); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DailyForecast{
		RunID:   run.ID,
		RunAt:   run.RunAt,
		Entries: entries,
	})
}

// Diagnostics exposes the ensemble internals of the latest run: the raw
// algorithm outputs, their texts, and the weighting that combined them.
type Diagnostics struct {
	RunID            string                 `json:"run_id"`
	RunAt            time.Time              `json:"run_at"`
	Pressure         *float64               `json:"pressure,omitempty"`
	Temp             *float64               `json:"temp,omitempty"`
	PressureChange3h *float64               `json:"pressure_change_3h,omitempty"`
	TempChange1h     *float64               `json:"temp_change_1h,omitempty"`
	CurrentCode      *int                   `json:"current_code,omitempty"`
	Zambretti        *AlgorithmDiagnostics  `json:"zambretti,omitempty"`
	Negretti         *AlgorithmDiagnostics  `json:"negretti,omitempty"`
	Consensus        bool                   `json:"consensus"`
	Weights          *forecast.ModelWeights `json:"weights,omitempty"`
}

type AlgorithmDiagnostics struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

func (s *Server) handleForecastDiagnostics(w http.ResponseWriter, r *http.Request) {
	run, ok := s.latestRun(w)
	if !ok {
		return
	}

	locale := s.locale(r)
	diag := Diagnostics{
		RunID:     run.ID,
		RunAt:     run.RunAt,
		Consensus: run.Consensus,
	}

	if run.Pressure.Valid {
		diag.Pressure = &run.Pressure.Float64
	}
	if run.Temp.Valid {
		diag.Temp = &run.Temp.Float64
	}
	if run.PressureChange3h.Valid {
		diag.PressureChange3h = &run.PressureChange3h.Float64
	}
	if run.TempChange1h.Valid {
		diag.TempChange1h = &run.TempChange1h.Float64
	}
	if run.CurrentCode.Valid {
		code := int(run.CurrentCode.Int64)
		diag.CurrentCode = &code
	}
	if run.ZambrettiCode.Valid {
		code := int(run.ZambrettiCode.Int64)
		diag.Zambretti = &AlgorithmDiagnostics{
			Code: code,
			Text: forecast.Text(forecast.Result{NumericCode: code}, locale),
		}
	}
	if run.NegrettiCode.Valid {
		code := int(run.NegrettiCode.Int64)
		diag.Negretti = &AlgorithmDiagnostics{
			Code: code,
			Text: forecast.Text(forecast.Result{NumericCode: code}, locale),
		}
	}
	if run.Pressure.Valid && run.PressureChange3h.Valid {
		w0 := forecast.Weights(run.Pressure.Float64, run.PressureChange3h.Float64, 0)
		diag.Weights = &w0
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(diag)
}

func (s *Server) latestRun(w http.ResponseWriter) (*models.ForecastRun, bool) {
	run, err := s.store.GetLatestForecastRun(s.station.StationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	if run == nil {
		http.Error(w, "no forecast generated yet", http.StatusNotFound)
		return nil, false
	}
	return run, true
}

func (s *Server) latestHourly(w http.ResponseWriter) (*models.ForecastRun, []forecast.HourlyEntry, bool) {
	run, ok := s.latestRun(w)
	if !ok {
		return nil, nil, false
	}
	var entries []forecast.HourlyEntry
	if err := json.Unmarshal([]byte(run.HourlyJSON), &entries); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, nil, false
	}
	return run, entries, true
}

func (s *Server) locale(r *http.Request) string {
	if l := r.URL.Query().Get("locale"); l != "" {
		return l
	}
	if s.station.Locale != "" {
		return s.station.Locale
	}
	return "en"
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
