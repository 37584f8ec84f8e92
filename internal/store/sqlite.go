package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lox/barocast/internal/models"
)

type Store struct {
	db  *sql.DB
	loc *time.Location
}

func New(db *sql.DB, loc *time.Location) *Store {
	return &Store{db: db, loc: loc}
}

func (s *Store) UpsertStation(st models.Station) error {
	_, err := s.db.Exec(`
		INSERT INTO stations (station_id, name, latitude, longitude, elevation, locale)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id) DO UPDATE SET
			name = excluded.name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			elevation = excluded.elevation,
			locale = excluded.locale
	`, st.StationID, st.Name, st.Latitude, st.Longitude, st.Elevation, st.Locale)
	return err
}

func (s *Store) GetStation(stationID string) (*models.Station, error) {
	row := s.db.QueryRow(`SELECT station_id, name, latitude, longitude, elevation, locale FROM stations WHERE station_id = ?`, stationID)
	var st models.Station
	err := row.Scan(&st.StationID, &st.Name, &st.Latitude, &st.Longitude, &st.Elevation, &st.Locale)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) InsertObservation(obs models.Observation) error {
	_, err := s.db.Exec(`
		INSERT INTO observations (station_id, observed_at, temp, humidity, dewpoint, pressure, wind_speed, wind_gust, wind_dir, solar_radiation, uv, qc_status, quality_flags, raw_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id, observed_at) DO NOTHING
	`, obs.StationID, obs.ObservedAt, obs.Temp, obs.Humidity, obs.Dewpoint, obs.Pressure, obs.WindSpeed, obs.WindGust, obs.WindDir, obs.SolarRadiation, obs.UV, obs.QCStatus, obs.QualityFlags, obs.RawJSON)
	return err
}

func (s *Store) GetLatestObservation(stationID string) (*models.Observation, error) {
	row := s.db.QueryRow(`
		SELECT id, station_id, observed_at, temp, humidity, dewpoint, pressure, wind_speed, wind_gust, wind_dir, solar_radiation, uv, qc_status, quality_flags, raw_json, created_at
		FROM observations
		WHERE station_id = ?
		ORDER BY observed_at DESC
		LIMIT 1
	`, stationID)

	var obs models.Observation
	err := row.Scan(&obs.ID, &obs.StationID, &obs.ObservedAt, &obs.Temp, &obs.Humidity, &obs.Dewpoint, &obs.Pressure, &obs.WindSpeed, &obs.WindGust, &obs.WindDir, &obs.SolarRadiation, &obs.UV, &obs.QCStatus, &obs.QualityFlags, &obs.RawJSON, &obs.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &obs, nil
}

func (s *Store) GetObservations(stationID string, start, end time.Time) ([]models.Observation, error) {
	rows, err := s.db.Query(`
		SELECT id, station_id, observed_at, temp, humidity, dewpoint, pressure, wind_speed, wind_gust, wind_dir, solar_radiation, uv, qc_status, quality_flags, raw_json, created_at
		FROM observations
		WHERE station_id = ? AND observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at ASC
	`, stationID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var obs models.Observation
		if err := rows.Scan(&obs.ID, &obs.StationID, &obs.ObservedAt, &obs.Temp, &obs.Humidity, &obs.Dewpoint, &obs.Pressure, &obs.WindSpeed, &obs.WindGust, &obs.WindDir, &obs.SolarRadiation, &obs.UV, &obs.QCStatus, &obs.QualityFlags, &obs.RawJSON, &obs.CreatedAt); err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}
	return observations, rows.Err()
}

// PruneObservations removes observations older than the retention window.
// Returns the number of rows deleted.
func (s *Store) PruneObservations(stationID string, olderThan time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM observations WHERE station_id = ? AND observed_at < ?`, stationID, olderThan)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetPressureChange3h computes the barometric delta over the trailing 3h
// window, normalized to exactly 3 hours when the endpoints do not span the
// full window. Returns invalid when there is not enough history.
func (s *Store) GetPressureChange3h(stationID string, now time.Time) (sql.NullFloat64, error) {
	return s.windowDelta(stationID, "pressure", now, 3*time.Hour, 3.0)
}

// GetTempChange1h computes the temperature delta over the trailing hour,
// normalized to 1 hour.
func (s *Store) GetTempChange1h(stationID string, now time.Time) (sql.NullFloat64, error) {
	return s.windowDelta(stationID, "temp", now, time.Hour, 1.0)
}

func (s *Store) windowDelta(stationID, column string, now time.Time, window time.Duration, hours float64) (sql.NullFloat64, error) {
	var result sql.NullFloat64
	windowStart := now.UTC().Add(-window)

	// column is one of our own field names, never user input.
	var oldest, newest sql.NullFloat64
	var oldestTime, newestTime time.Time

	err := s.db.QueryRow(fmt.Sprintf(`
		SELECT %s, observed_at FROM observations
		WHERE station_id = ? AND observed_at >= ? AND observed_at <= ? AND %s IS NOT NULL
		ORDER BY observed_at ASC LIMIT 1
	`, column, column), stationID, windowStart, now.UTC()).Scan(&oldest, &oldestTime)
	if err == sql.ErrNoRows || (err == nil && !oldest.Valid) {
		return result, nil
	}
	if err != nil {
		return result, err
	}

	err = s.db.QueryRow(fmt.Sprintf(`
		SELECT %s, observed_at FROM observations
		WHERE station_id = ? AND observed_at <= ? AND %s IS NOT NULL
		ORDER BY observed_at DESC LIMIT 1
	`, column, column), stationID, now.UTC()).Scan(&newest, &newestTime)
	if err == sql.ErrNoRows || (err == nil && !newest.Valid) {
		return result, nil
	}
	if err != nil {
		return result, err
	}

	spanHours := newestTime.Sub(oldestTime).Hours()
	if spanHours < hours/4 {
		// Too little history to call it a trend.
		return result, nil
	}

	delta := (newest.Float64 - oldest.Float64) / spanHours * hours
	result = sql.NullFloat64{Float64: delta, Valid: true}
	return result, nil
}

func (s *Store) InsertForecastRun(run *models.ForecastRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO forecast_runs (id, run_at, station_id, pressure, temp, pressure_change_3h, temp_change_1h, current_code, zambretti_code, negretti_code, consensus, hourly_json, daily_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.RunAt, run.StationID, run.Pressure, run.Temp, run.PressureChange3h, run.TempChange1h,
		run.CurrentCode, run.ZambrettiCode, run.NegrettiCode, run.Consensus, run.HourlyJSON, run.DailyJSON)
	return err
}

func (s *Store) GetLatestForecastRun(stationID string) (*models.ForecastRun, error) {
	row := s.db.QueryRow(`
		SELECT id, run_at, station_id, pressure, temp, pressure_change_3h, temp_change_1h, current_code, zambretti_code, negretti_code, consensus, hourly_json, daily_json, created_at
		FROM forecast_runs
		WHERE station_id = ?
		ORDER BY run_at DESC
		LIMIT 1
	`, stationID)

	var run models.ForecastRun
	err := row.Scan(&run.ID, &run.RunAt, &run.StationID, &run.Pressure, &run.Temp, &run.PressureChange3h, &run.TempChange1h,
		&run.CurrentCode, &run.ZambrettiCode, &run.NegrettiCode, &run.Consensus, &run.HourlyJSON, &run.DailyJSON, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *Store) GetForecastRuns(stationID string, limit int) ([]models.ForecastRun, error) {
	rows, err := s.db.Query(`
		SELECT id, run_at, station_id, pressure, temp, pressure_change_3h, temp_change_1h, current_code, zambretti_code, negretti_code, consensus, hourly_json, daily_json, created_at
		FROM forecast_runs
		WHERE station_id = ?
		ORDER BY run_at DESC
		LIMIT ?
	`, stationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ForecastRun
	for rows.Next() {
		var run models.ForecastRun
		if err := rows.Scan(&run.ID, &run.RunAt, &run.StationID, &run.Pressure, &run.Temp, &run.PressureChange3h, &run.TempChange1h,
			&run.CurrentCode, &run.ZambrettiCode, &run.NegrettiCode, &run.Consensus, &run.HourlyJSON, &run.DailyJSON, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// PruneForecastRuns keeps the most recent keep runs and deletes the rest.
func (s *Store) PruneForecastRuns(stationID string, keep int) (int64, error) {
	res, err := s.db.Exec(`
		DELETE FROM forecast_runs
		WHERE station_id = ? AND id NOT IN (
			SELECT id FROM forecast_runs WHERE station_id = ? ORDER BY run_at DESC LIMIT ?
		)
	`, stationID, stationID, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
