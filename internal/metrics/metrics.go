package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StationAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barocast_station_api_calls_total",
			Help: "Total station API calls",
		},
		[]string{"station", "status"},
	)

	StationAPILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barocast_station_api_latency_seconds",
			Help:    "Station API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"station"},
	)

	ObservationsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barocast_observations_ingested_total",
			Help: "Total observations successfully ingested",
		},
		[]string{"station"},
	)

	ObservationsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barocast_observations_rejected_total",
			Help: "Observations rejected by plausibility validation",
		},
		[]string{"station", "flag"},
	)

	ForecastRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barocast_forecast_runs_total",
			Help: "Total forecast generation runs",
		},
		[]string{"station", "outcome"},
	)

	ForecastRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "barocast_forecast_run_duration_seconds",
			Help:    "Time spent generating one full forecast run",
			Buckets: prometheus.DefBuckets,
		},
	)

	ForecastConsensus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barocast_forecast_consensus_total",
			Help: "Forecast runs split by whether the barometric algorithms agreed",
		},
		[]string{"consensus"},
	)
)
