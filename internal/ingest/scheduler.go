package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/lox/barocast/internal/forecast"
	"github.com/lox/barocast/internal/metrics"
	"github.com/lox/barocast/internal/models"
	"github.com/lox/barocast/internal/store"
)

const (
	defaultHourlyHorizon = 48
	defaultDailyDays     = 5
	observationRetention = 90 * 24 * time.Hour
	forecastRunsToKeep   = 500
)

type Scheduler struct {
	store       *store.Store
	client      *StationClient
	station     models.Station
	loc         *time.Location
	obsInterval time.Duration
	fcInterval  time.Duration
}

func NewScheduler(st *store.Store, client *StationClient, station models.Station, loc *time.Location, obsInterval, fcInterval time.Duration) *Scheduler {
	return &Scheduler{
		store:       st,
		client:      client,
		station:     station,
		loc:         loc,
		obsInterval: obsInterval,
		fcInterval:  fcInterval,
	}
}

func (s *Scheduler) Run(ctx context.Context) {
	s.ingestObservation()
	if err := s.GenerateForecast(time.Now()); err != nil {
		log.Printf("scheduler: generate forecast: %v", err)
	}
	s.prune()

	obsTicker := time.NewTicker(s.obsInterval)
	fcTicker := time.NewTicker(s.fcInterval)
	pruneTicker := time.NewTicker(24 * time.Hour)
	defer obsTicker.Stop()
	defer fcTicker.Stop()
	defer pruneTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("scheduler: shutting down")
			return
		case <-obsTicker.C:
			s.ingestObservation()
		case <-fcTicker.C:
			if err := s.GenerateForecast(time.Now()); err != nil {
				log.Printf("scheduler: generate forecast: %v", err)
			}
		case <-pruneTicker.C:
			s.prune()
		}
	}
}

// IngestOnce fetches a single observation and generates one forecast run.
// Used by the --once flag for cron-style operation.
func (s *Scheduler) IngestOnce() error {
	s.ingestObservation()
	return s.GenerateForecast(time.Now())
}

func (s *Scheduler) ingestObservation() {
	if s.client == nil {
		return
	}

	obs, rawJSON, err := s.client.FetchCurrent(s.station.StationID)
	if err != nil {
		log.Printf("scheduler: fetch %s: %v", s.station.StationID, err)
		return
	}

	flags := ValidateObservation(obs)
	for _, flag := range flags {
		metrics.ObservationsRejected.WithLabelValues(s.station.StationID, flag).Inc()
		log.Printf("scheduler: %s: suspect reading: %s", s.station.StationID, flag)
	}
	if fj := QualityFlagsToJSON(flags); fj != "" {
		obs.QualityFlags = sql.NullString{String: fj, Valid: true}
	}

	obs.RawJSON = rawJSON
	if err := s.store.InsertObservation(*obs); err != nil {
		log.Printf("scheduler: insert %s: %v", s.station.StationID, err)
		return
	}
	metrics.ObservationsIngested.WithLabelValues(s.station.StationID).Inc()

	if obs.Temp.Valid && obs.Pressure.Valid {
		log.Printf("scheduler: %s: %.1f°C %.1f hPa", s.station.StationID, obs.Temp.Float64, obs.Pressure.Float64)
	}
}

// GenerateForecast runs the full ensemble against the latest stored
// observation and persists the run. now is a parameter so the once mode and
// tests control the clock.
func (s *Scheduler) GenerateForecast(now time.Time) error {
	start := time.Now()

	obs, err := s.store.GetLatestObservation(s.station.StationID)
	if err != nil {
		metrics.ForecastRunsTotal.WithLabelValues(s.station.StationID, "error").Inc()
		return fmt.Errorf("latest observation: %w", err)
	}
	if obs == nil {
		metrics.ForecastRunsTotal.WithLabelValues(s.station.StationID, "skipped").Inc()
		return fmt.Errorf("no observations for %s", s.station.StationID)
	}
	if !obs.Pressure.Valid {
		metrics.ForecastRunsTotal.WithLabelValues(s.station.StationID, "skipped").Inc()
		return fmt.Errorf("latest observation has no pressure reading")
	}

	pressureChange, err := s.store.GetPressureChange3h(s.station.StationID, now)
	if err != nil {
		metrics.ForecastRunsTotal.WithLabelValues(s.station.StationID, "error").Inc()
		return fmt.Errorf("pressure trend: %w", err)
	}
	tempChange, err := s.store.GetTempChange1h(s.station.StationID, now)
	if err != nil {
		metrics.ForecastRunsTotal.WithLabelValues(s.station.StationID, "error").Inc()
		return fmt.Errorf("temp trend: %w", err)
	}

	clearFlagged(obs)
	if !obs.Pressure.Valid {
		metrics.ForecastRunsTotal.WithLabelValues(s.station.StationID, "skipped").Inc()
		return fmt.Errorf("pressure reading failed plausibility checks")
	}

	fobs := observationInput(obs, s.station.Elevation)
	trends := forecast.Trends{
		PressureChange3h: pressureChange.Float64,
		TempChange1h:     tempChange.Float64,
	}

	alm := forecast.NewAlmanac(now.In(s.loc), s.station.Latitude, s.station.Longitude)
	orch := forecast.NewOrchestrator(fobs, trends, alm, -1)

	hourly := orch.Hourly(defaultHourlyHorizon)
	daily := orch.Daily(defaultDailyDays)

	hourlyJSON, err := json.Marshal(hourly)
	if err != nil {
		metrics.ForecastRunsTotal.WithLabelValues(s.station.StationID, "error").Inc()
		return fmt.Errorf("marshal hourly: %w", err)
	}
	dailyJSON, err := json.Marshal(daily)
	if err != nil {
		metrics.ForecastRunsTotal.WithLabelValues(s.station.StationID, "error").Inc()
		return fmt.Errorf("marshal daily: %w", err)
	}

	z := forecast.Zambretti(fobs, trends, alm.Now.Month(), alm.Hemisphere)
	n := forecast.Negretti(fobs, trends, alm.Season, alm.Hemisphere)
	w := forecast.Weights(fobs.Pressure, trends.PressureChange3h, 0)
	comb := forecast.Combine(z, n, w, fobs.Pressure, trends.PressureChange3h)

	run := &models.ForecastRun{
		RunAt:         now.UTC(),
		StationID:     s.station.StationID,
		Pressure:      obs.Pressure,
		Temp:          obs.Temp,
		CurrentCode:   sql.NullInt64{Int64: int64(hourly[0].Code), Valid: true},
		ZambrettiCode: sql.NullInt64{Int64: int64(z.NumericCode), Valid: true},
		NegrettiCode:  sql.NullInt64{Int64: int64(n.NumericCode), Valid: true},
		Consensus:     comb.Consensus,
		HourlyJSON:    string(hourlyJSON),
		DailyJSON:     string(dailyJSON),
	}
	if pressureChange.Valid {
		run.PressureChange3h = pressureChange
	}
	if tempChange.Valid {
		run.TempChange1h = tempChange
	}

	if err := s.store.InsertForecastRun(run); err != nil {
		metrics.ForecastRunsTotal.WithLabelValues(s.station.StationID, "error").Inc()
		return fmt.Errorf("insert forecast run: %w", err)
	}

	metrics.ForecastRunsTotal.WithLabelValues(s.station.StationID, "ok").Inc()
	metrics.ForecastRunDuration.Observe(time.Since(start).Seconds())
	if comb.Consensus {
		metrics.ForecastConsensus.WithLabelValues("yes").Inc()
	} else {
		metrics.ForecastConsensus.WithLabelValues("no").Inc()
	}

	log.Printf("scheduler: forecast run %s: code %d, zambretti %d, negretti %d, consensus %v",
		run.ID, hourly[0].Code, z.NumericCode, n.NumericCode, comb.Consensus)
	return nil
}

// clearFlagged nils out sensor fields that failed plausibility checks so
// the models fall back to their documented defaults instead of consuming
// garbage readings.
func clearFlagged(obs *models.Observation) {
	for _, flag := range ValidateObservation(obs) {
		switch flag {
		case FlagTempOutOfRange:
			obs.Temp = sql.NullFloat64{}
		case FlagHumidityInvalid:
			obs.Humidity = sql.NullInt64{}
		case FlagWindDirInvalid:
			obs.WindDir = sql.NullInt64{}
		case FlagWindSpeedUnlikely:
			obs.WindSpeed = sql.NullFloat64{}
		case FlagPressureOutOfRange:
			obs.Pressure = sql.NullFloat64{}
		case FlagSolarNegative:
			obs.SolarRadiation = sql.NullFloat64{}
		case FlagUVNegative:
			obs.UV = sql.NullFloat64{}
		}
	}
}

// observationInput converts a stored observation into the model input,
// filling conservative defaults for absent sensors.
func observationInput(obs *models.Observation, elevation float64) forecast.Observation {
	in := forecast.Observation{
		Pressure:  obs.Pressure.Float64,
		Humidity:  50,
		Elevation: elevation,
	}
	if obs.Temp.Valid {
		in.Temperature = obs.Temp.Float64
	}
	if obs.Humidity.Valid {
		in.Humidity = float64(obs.Humidity.Int64)
	}
	if obs.WindDir.Valid {
		in.WindDir = float64(obs.WindDir.Int64)
	}
	if obs.WindSpeed.Valid {
		// Stored as km/h from the station API; the models want m/s.
		in.WindSpeed = obs.WindSpeed.Float64 / 3.6
	}
	if obs.SolarRadiation.Valid {
		v := obs.SolarRadiation.Float64
		in.SolarRadiation = &v
	}
	if obs.UV.Valid {
		v := obs.UV.Float64
		in.UVIndex = &v
	}
	return in
}

func (s *Scheduler) prune() {
	cutoff := time.Now().UTC().Add(-observationRetention)
	if n, err := s.store.PruneObservations(s.station.StationID, cutoff); err != nil {
		log.Printf("scheduler: prune observations: %v", err)
	} else if n > 0 {
		log.Printf("scheduler: pruned %d observations", n)
	}

	if n, err := s.store.PruneForecastRuns(s.station.StationID, forecastRunsToKeep); err != nil {
		log.Printf("scheduler: prune forecast runs: %v", err)
	} else if n > 0 {
		log.Printf("scheduler: pruned %d forecast runs", n)
	}
}
