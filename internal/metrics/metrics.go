// Package metrics exposes Prometheus collectors for the quant service
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantcore_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quantcore_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Market data metrics
	MarketDataRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantcore_marketdata_requests_total",
			Help: "Market data provider calls by outcome",
		},
		[]string{"provider", "operation", "outcome"},
	)

	MarketDataLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quantcore_marketdata_latency_seconds",
			Help:    "Market data provider call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	MarketDataCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantcore_marketdata_cache_hits_total",
			Help: "Quote and history lookups served from cache",
		},
		[]string{"kind"},
	)

	// Quant metrics
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quantcore_analysis_duration_seconds",
			Help:    "Portfolio analysis duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	Optimizations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantcore_optimizations_total",
			Help: "Optimizer runs by strategy and outcome (solved, direct, fallback)",
		},
		[]string{"strategy", "outcome"},
	)

	SimulationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantcore_montecarlo_runs_total",
			Help: "Monte Carlo runs by simulation method",
		},
		[]string{"method"},
	)
)
