package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solar_predictions_total",
		Help: "Total number of power estimations, by estimator mode.",
	}, []string{"mode"})
	PredictionsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solar_predictions_stored_total",
		Help: "Total number of prediction records persisted.",
	})
	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solar_prediction_persist_failures_total",
		Help: "Total number of prediction records that could not be persisted.",
	})
	StoreReadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solar_store_read_failures_total",
		Help: "Total number of prediction store reads degraded to empty results.",
	}, []string{"op"})
	ReportsExported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solar_reports_exported_total",
		Help: "Total number of exported reports, by format.",
	}, []string{"format"})
	UserSyncEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solar_user_sync_events_total",
		Help: "User directory sync events processed, by outcome.",
	}, []string{"status"})
	UserSyncCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "solar_user_sync_cycle_duration_seconds",
		Help:    "Duration of a full user directory sync cycle.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
	})
	GenerationReadings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solar_generation_readings_total",
		Help: "Generation readings received by the collector, by outcome.",
	}, []string{"status"})
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solar_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
