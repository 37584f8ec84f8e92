package models

import (
	"database/sql"
	"time"
)

// Station describes the single weather station this instance forecasts for.
type Station struct {
	StationID string
	Name      string
	Latitude  float64
	Longitude float64
	Elevation float64
	Locale    string
}

type Observation struct {
	ID             int64
	StationID      string
	ObservedAt     time.Time
	Temp           sql.NullFloat64
	Humidity       sql.NullInt64
	Dewpoint       sql.NullFloat64
	Pressure       sql.NullFloat64
	WindSpeed      sql.NullFloat64
	WindGust       sql.NullFloat64
	WindDir        sql.NullInt64
	SolarRadiation sql.NullFloat64
	UV             sql.NullFloat64
	QCStatus       int
	QualityFlags   sql.NullString
	RawJSON        string
	CreatedAt      time.Time
}

// ForecastRun records one full forecast generation: the inputs it was
// computed from and the serialized hourly/daily output. Runs are immutable;
// the latest run is what the API serves.
type ForecastRun struct {
	ID               string // uuid
	RunAt            time.Time
	StationID        string
	Pressure         sql.NullFloat64
	Temp             sql.NullFloat64
	PressureChange3h sql.NullFloat64
	TempChange1h     sql.NullFloat64
	CurrentCode      sql.NullInt64
	ZambrettiCode    sql.NullInt64
	NegrettiCode     sql.NullInt64
	Consensus        bool
	HourlyJSON       string
	DailyJSON        string
	CreatedAt        time.Time
}
