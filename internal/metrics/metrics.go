// Package metrics defines Prometheus metrics for the port resolver.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portmap"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Health metrics.
var (
	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 if the last /healthz request succeeded, 0 otherwise.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 if the last /readyz request succeeded, 0 otherwise.",
	})
)

// Webhook and resolution metrics.
var (
	WebhooksReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhooks_received_total",
		Help:      "Total number of order webhooks received, by topic.",
	}, []string{"topic"})

	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolutions_total",
		Help:      "Total number of successful port resolutions, by source.",
	}, []string{"source"})

	ResolutionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolution_failures_total",
		Help:      "Total number of failed port resolutions, by reason.",
	}, []string{"reason"})

	DegradedMatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "degraded_matches_total",
		Help:      "Total number of scrape resolutions that fell back to the first dataset record.",
	})

	ResolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resolution_duration_seconds",
		Help:      "Duration of port resolutions in seconds, by source.",
		Buckets:   []float64{0.001, 0.01, 0.1, 1, 5, 15, 30, 60, 120, 180},
	}, []string{"source"})

	PortsPerResolution = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ports_per_resolution",
		Help:      "Number of ports in each resolved itinerary.",
		Buckets:   prometheus.LinearBuckets(1, 2, 10), // 1, 3, ..., 19
	})
)

// Apify metrics.
var (
	ApifyCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "apify_calls_total",
		Help:      "Total Apify API calls, by call and outcome.",
	}, []string{"call", "outcome"})

	ApifyRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "apify_run_duration_seconds",
		Help:      "Duration of Apify task runs including dataset fetch, in seconds.",
		Buckets:   []float64{1, 5, 10, 20, 30, 60, 90, 120, 150},
	})

	ApifyDailyUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "apify_daily_usage",
		Help:      "Apify task runs started within the rolling 24-hour window.",
	})

	ApifyDailyLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "apify_daily_limit_hits_total",
		Help:      "Total number of times the daily Apify run limit was reached.",
	})

	ApifyUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "apify_up",
		Help:      "1 if the last Apify task probe succeeded, 0 otherwise.",
	})
)

// Notification metrics.
var (
	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of failure notifications delivered.",
	})

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures.",
	})
)

// Event log metrics.
var (
	EventLogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "event_log_size",
		Help:      "Number of events currently held in the recent-events log.",
	})
)
