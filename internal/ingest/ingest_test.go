package ingest

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/barocast/internal/forecast"
	"github.com/lox/barocast/internal/models"
	"github.com/lox/barocast/internal/store"
)

func TestValidateObservation(t *testing.T) {
	tests := []struct {
		name  string
		obs   models.Observation
		flags []string
	}{
		{
			name: "all plausible",
			obs: models.Observation{
				Temp:     sql.NullFloat64{Float64: 21.5, Valid: true},
				Humidity: sql.NullInt64{Int64: 62, Valid: true},
				Pressure: sql.NullFloat64{Float64: 1013.2, Valid: true},
			},
		},
		{
			name:  "temp too hot",
			obs:   models.Observation{Temp: sql.NullFloat64{Float64: 55, Valid: true}},
			flags: []string{FlagTempOutOfRange},
		},
		{
			name: "temp deep cold is plausible",
			obs:  models.Observation{Temp: sql.NullFloat64{Float64: -35, Valid: true}},
		},
		{
			name:  "temp below record",
			obs:   models.Observation{Temp: sql.NullFloat64{Float64: -45, Valid: true}},
			flags: []string{FlagTempOutOfRange},
		},
		{
			name:  "humidity over 100",
			obs:   models.Observation{Humidity: sql.NullInt64{Int64: 110, Valid: true}},
			flags: []string{FlagHumidityInvalid},
		},
		{
			name:  "wind direction out of range",
			obs:   models.Observation{WindDir: sql.NullInt64{Int64: 400, Valid: true}},
			flags: []string{FlagWindDirInvalid},
		},
		{
			name:  "wind speed absurd",
			obs:   models.Observation{WindSpeed: sql.NullFloat64{Float64: 300, Valid: true}},
			flags: []string{FlagWindSpeedUnlikely},
		},
		{
			name:  "pressure below record",
			obs:   models.Observation{Pressure: sql.NullFloat64{Float64: 850, Valid: true}},
			flags: []string{FlagPressureOutOfRange},
		},
		{
			name:  "pressure above record",
			obs:   models.Observation{Pressure: sql.NullFloat64{Float64: 1090, Valid: true}},
			flags: []string{FlagPressureOutOfRange},
		},
		{
			name:  "negative solar",
			obs:   models.Observation{SolarRadiation: sql.NullFloat64{Float64: -5, Valid: true}},
			flags: []string{FlagSolarNegative},
		},
		{
			name:  "negative uv",
			obs:   models.Observation{UV: sql.NullFloat64{Float64: -1, Valid: true}},
			flags: []string{FlagUVNegative},
		},
		{
			name: "null sensors produce no flags",
			obs:  models.Observation{},
		},
		{
			name: "multiple flags",
			obs: models.Observation{
				Temp:     sql.NullFloat64{Float64: 60, Valid: true},
				Humidity: sql.NullInt64{Int64: -5, Valid: true},
			},
			flags: []string{FlagTempOutOfRange, FlagHumidityInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateObservation(&tt.obs)
			if len(got) != len(tt.flags) {
				t.Fatalf("flags = %v, want %v", got, tt.flags)
			}
			for i := range got {
				if got[i] != tt.flags[i] {
					t.Errorf("flag[%d] = %s, want %s", i, got[i], tt.flags[i])
				}
			}
		})
	}
}

func TestQualityFlagsToJSON(t *testing.T) {
	if got := QualityFlagsToJSON(nil); got != "" {
		t.Errorf("empty flags = %q, want empty string", got)
	}

	got := QualityFlagsToJSON([]string{FlagTempOutOfRange, FlagSolarNegative})
	var decoded []string
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 2 || decoded[0] != FlagTempOutOfRange || decoded[1] != FlagSolarNegative {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestParseCurrentResponse(t *testing.T) {
	body := `{
		"observations": [{
			"stationID": "ITEST42",
			"obsTimeUtc": "2026-04-18T10:05:00Z",
			"humidity": 62,
			"winddir": 225,
			"solarRadiation": 412.5,
			"uv": 3.0,
			"qcStatus": 1,
			"metric": {
				"temp": 16.5,
				"dewpt": 9.2,
				"windSpeed": 15.1,
				"windGust": 22.7,
				"pressure": 1008.0,
				"elev": 520.0
			}
		}]
	}`

	var resp CurrentResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Observations) != 1 {
		t.Fatalf("observations = %d, want 1", len(resp.Observations))
	}

	obs := resp.Observations[0]
	if obs.StationID != "ITEST42" {
		t.Errorf("stationID = %s", obs.StationID)
	}
	if obs.Humidity == nil || *obs.Humidity != 62 {
		t.Errorf("humidity = %v", obs.Humidity)
	}
	if obs.Metric == nil || obs.Metric.Pressure == nil || *obs.Metric.Pressure != 1008.0 {
		t.Errorf("pressure = %v", obs.Metric)
	}
	if obs.Metric.WindGust == nil || *obs.Metric.WindGust != 22.7 {
		t.Errorf("windGust = %v", obs.Metric.WindGust)
	}
}

func TestParseCurrentResponseMissingSensors(t *testing.T) {
	body := `{
		"observations": [{
			"stationID": "IBARE1",
			"obsTimeUtc": "2026-04-18T10:05:00Z",
			"qcStatus": 1,
			"metric": {"pressure": 1013.0}
		}]
	}`

	var resp CurrentResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	obs := resp.Observations[0]
	if obs.Humidity != nil || obs.WindDir != nil || obs.SolarRadiation != nil {
		t.Error("absent sensors should decode to nil")
	}
	if obs.Metric.Temp != nil {
		t.Error("absent temp should decode to nil")
	}
	if obs.Metric.Pressure == nil || *obs.Metric.Pressure != 1013.0 {
		t.Errorf("pressure = %v", obs.Metric.Pressure)
	}
}

func TestObservationInput(t *testing.T) {
	obs := &models.Observation{
		Pressure:       sql.NullFloat64{Float64: 1008.0, Valid: true},
		Temp:           sql.NullFloat64{Float64: 16.5, Valid: true},
		Humidity:       sql.NullInt64{Int64: 62, Valid: true},
		WindDir:        sql.NullInt64{Int64: 225, Valid: true},
		WindSpeed:      sql.NullFloat64{Float64: 18.0, Valid: true},
		SolarRadiation: sql.NullFloat64{Float64: 412.5, Valid: true},
	}

	in := observationInput(obs, 520)
	if in.Pressure != 1008.0 || in.Temperature != 16.5 || in.Humidity != 62 {
		t.Errorf("basic fields = %+v", in)
	}
	if in.Elevation != 520 {
		t.Errorf("elevation = %v", in.Elevation)
	}
	if in.WindSpeed != 5.0 {
		t.Errorf("wind speed = %v m/s, want 5.0 (18 km/h)", in.WindSpeed)
	}
	if in.SolarRadiation == nil || *in.SolarRadiation != 412.5 {
		t.Errorf("solar = %v", in.SolarRadiation)
	}
	if in.UVIndex != nil || in.CloudCover != nil {
		t.Error("absent sensors should stay nil")
	}
}

func TestObservationInputDefaults(t *testing.T) {
	obs := &models.Observation{
		Pressure: sql.NullFloat64{Float64: 1013.0, Valid: true},
	}
	in := observationInput(obs, 0)
	if in.Humidity != 50 {
		t.Errorf("default humidity = %v, want 50", in.Humidity)
	}
	if in.WindSpeed != 0 || in.WindDir != 0 {
		t.Errorf("wind defaults = %v / %v", in.WindSpeed, in.WindDir)
	}
}

func TestClearFlagged(t *testing.T) {
	obs := &models.Observation{
		Temp:     sql.NullFloat64{Float64: 60, Valid: true},
		Humidity: sql.NullInt64{Int64: 62, Valid: true},
		Pressure: sql.NullFloat64{Float64: 1008, Valid: true},
	}
	clearFlagged(obs)
	if obs.Temp.Valid {
		t.Error("implausible temp should be cleared")
	}
	if !obs.Humidity.Valid || !obs.Pressure.Valid {
		t.Error("plausible fields should survive")
	}
}

func setupScheduler(t *testing.T) (*Scheduler, *store.Store) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db, time.UTC)
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	station := models.Station{
		StationID: "ITEST42",
		Name:      "Test Station",
		Latitude:  48.1,
		Longitude: 11.6,
		Elevation: 520,
		Locale:    "en",
	}
	if err := st.UpsertStation(station); err != nil {
		t.Fatalf("upsert station: %v", err)
	}

	return NewScheduler(st, nil, station, time.UTC, time.Minute, time.Minute), st
}

func TestGenerateForecast(t *testing.T) {
	s, st := setupScheduler(t)
	now := time.Date(2026, 4, 18, 10, 0, 0, 0, time.UTC)

	// Three hours of falling pressure.
	for i := 0; i <= 6; i++ {
		obs := models.Observation{
			StationID:  "ITEST42",
			ObservedAt: now.Add(-3 * time.Hour).Add(time.Duration(i) * 30 * time.Minute),
			Temp:       sql.NullFloat64{Float64: 15.0 + 0.2*float64(i), Valid: true},
			Humidity:   sql.NullInt64{Int64: 62, Valid: true},
			Pressure:   sql.NullFloat64{Float64: 1010.0 - 0.3*float64(i), Valid: true},
			WindDir:    sql.NullInt64{Int64: 225, Valid: true},
			WindSpeed:  sql.NullFloat64{Float64: 15.0, Valid: true},
		}
		if err := st.InsertObservation(obs); err != nil {
			t.Fatalf("insert observation: %v", err)
		}
	}

	if err := s.GenerateForecast(now); err != nil {
		t.Fatalf("generate: %v", err)
	}

	run, err := st.GetLatestForecastRun("ITEST42")
	if err != nil {
		t.Fatalf("latest run: %v", err)
	}
	if run == nil {
		t.Fatal("no run stored")
	}

	if !run.Pressure.Valid || run.Pressure.Float64 != 1008.2 {
		t.Errorf("run pressure = %v", run.Pressure)
	}
	if !run.PressureChange3h.Valid || run.PressureChange3h.Float64 >= 0 {
		t.Errorf("pressure change = %v, want valid and falling", run.PressureChange3h)
	}
	if !run.ZambrettiCode.Valid || !run.NegrettiCode.Valid {
		t.Error("algorithm codes should be recorded")
	}

	var hourly []forecast.HourlyEntry
	if err := json.Unmarshal([]byte(run.HourlyJSON), &hourly); err != nil {
		t.Fatalf("unmarshal hourly: %v", err)
	}
	if len(hourly) != defaultHourlyHorizon+1 {
		t.Errorf("hourly entries = %d, want %d", len(hourly), defaultHourlyHorizon+1)
	}

	var daily []forecast.DailyEntry
	if err := json.Unmarshal([]byte(run.DailyJSON), &daily); err != nil {
		t.Fatalf("unmarshal daily: %v", err)
	}
	if len(daily) < defaultDailyDays {
		t.Errorf("daily entries = %d, want at least %d", len(daily), defaultDailyDays)
	}
}

func TestGenerateForecastNoObservations(t *testing.T) {
	s, _ := setupScheduler(t)
	if err := s.GenerateForecast(time.Now()); err == nil {
		t.Fatal("expected error with empty observation history")
	}
}

func TestGenerateForecastImplausiblePressure(t *testing.T) {
	s, st := setupScheduler(t)
	obs := models.Observation{
		StationID:  "ITEST42",
		ObservedAt: time.Now().UTC(),
		Pressure:   sql.NullFloat64{Float64: 600, Valid: true},
	}
	if err := st.InsertObservation(obs); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.GenerateForecast(time.Now()); err == nil {
		t.Fatal("expected error when the pressure reading is implausible")
	}
}

func TestGenerateForecastNoPressure(t *testing.T) {
	s, st := setupScheduler(t)
	obs := models.Observation{
		StationID:  "ITEST42",
		ObservedAt: time.Now().UTC(),
		Temp:       sql.NullFloat64{Float64: 15.0, Valid: true},
	}
	if err := st.InsertObservation(obs); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.GenerateForecast(time.Now()); err == nil {
		t.Fatal("expected error when the barometer reading is missing")
	}
}
