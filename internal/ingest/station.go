package ingest

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lox/barocast/internal/httputil"
	"github.com/lox/barocast/internal/metrics"
	"github.com/lox/barocast/internal/models"
)

// StationClient fetches current conditions for one personal weather station
// from the Weather Underground PWS API.
type StationClient struct {
	apiKey string
	client *http.Client
}

func NewStationClient(apiKey string) *StationClient {
	return &StationClient{
		apiKey: apiKey,
		client: httputil.NewClient(),
	}
}

type CurrentResponse struct {
	Observations []CurrentObservation `json:"observations"`
}

type CurrentObservation struct {
	StationID      string   `json:"stationID"`
	ObsTimeUtc     string   `json:"obsTimeUtc"`
	Humidity       *int     `json:"humidity"`
	UV             *float64 `json:"uv"`
	WindDir        *int     `json:"winddir"`
	SolarRadiation *float64 `json:"solarRadiation"`
	QCStatus       int      `json:"qcStatus"`
	Metric         *struct {
		Temp      *float64 `json:"temp"`
		Dewpt     *float64 `json:"dewpt"`
		WindSpeed *float64 `json:"windSpeed"`
		WindGust  *float64 `json:"windGust"`
		Pressure  *float64 `json:"pressure"`
		Elev      *float64 `json:"elev"`
	} `json:"metric"`
}

func (c *StationClient) FetchCurrent(stationID string) (*models.Observation, string, error) {
	url := fmt.Sprintf("https://api.weather.com/v2/pws/observations/current?stationId=%s&format=json&units=m&apiKey=%s", stationID, c.apiKey)

	start := time.Now()
	var body []byte
	operation := func() error {
		resp, err := c.client.Get(url)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("fetch current: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("rate limited: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("fetch current: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, bo); err != nil {
		metrics.StationAPICallsTotal.WithLabelValues(stationID, "error").Inc()
		return nil, "", err
	}
	metrics.StationAPICallsTotal.WithLabelValues(stationID, "ok").Inc()
	metrics.StationAPILatency.WithLabelValues(stationID).Observe(time.Since(start).Seconds())

	var data CurrentResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, "", fmt.Errorf("unmarshal: %w", err)
	}

	if len(data.Observations) == 0 {
		return nil, "", fmt.Errorf("no observations returned for %s", stationID)
	}

	obs := data.Observations[0]
	observedAt, err := time.Parse(time.RFC3339, obs.ObsTimeUtc)
	if err != nil {
		return nil, "", fmt.Errorf("parse time: %w", err)
	}

	result := &models.Observation{
		StationID:  obs.StationID,
		ObservedAt: observedAt,
		QCStatus:   obs.QCStatus,
	}

	if obs.Humidity != nil {
		result.Humidity = sql.NullInt64{Int64: int64(*obs.Humidity), Valid: true}
	}
	if obs.UV != nil {
		result.UV = sql.NullFloat64{Float64: *obs.UV, Valid: true}
	}
	if obs.WindDir != nil {
		result.WindDir = sql.NullInt64{Int64: int64(*obs.WindDir), Valid: true}
	}
	if obs.SolarRadiation != nil {
		result.SolarRadiation = sql.NullFloat64{Float64: *obs.SolarRadiation, Valid: true}
	}

	if obs.Metric != nil {
		if obs.Metric.Temp != nil {
			result.Temp = sql.NullFloat64{Float64: *obs.Metric.Temp, Valid: true}
		}
		if obs.Metric.Dewpt != nil {
			result.Dewpoint = sql.NullFloat64{Float64: *obs.Metric.Dewpt, Valid: true}
		}
		if obs.Metric.Pressure != nil {
			result.Pressure = sql.NullFloat64{Float64: *obs.Metric.Pressure, Valid: true}
		}
		if obs.Metric.WindSpeed != nil {
			result.WindSpeed = sql.NullFloat64{Float64: *obs.Metric.WindSpeed, Valid: true}
		}
		if obs.Metric.WindGust != nil {
			result.WindGust = sql.NullFloat64{Float64: *obs.Metric.WindGust, Valid: true}
		}
	}

	return result, string(body), nil
}
