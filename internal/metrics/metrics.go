package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cashout"

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// USSD Metrics
var (
	// USSDResponses counts replies by the step the session ended the request in
	USSDResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ussd_responses_total",
			Help:      "USSD replies by resulting step",
		},
		[]string{"step"},
	)

	USSDReplays = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ussd_replays_total",
			Help:      "Requests answered from a terminal session's cached reply",
		},
	)

	StakeCollections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stake_collections_total",
			Help:      "Stake collection attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// Draw Metrics
var (
	DrawsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draws_total",
			Help:      "Draw executions by outcome",
		},
		[]string{"outcome"},
	)

	DrawDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "draw_duration_seconds",
			Help:      "Time taken to settle a draw",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	Disbursements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disbursements_total",
			Help:      "Prize disbursements by payout status",
		},
		[]string{"status"},
	)

	CurrentJackpot = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_jackpot",
			Help:      "Jackpot carried into the open betting window",
		},
	)
)
