package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelreel_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travelreel_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	Toggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelreel_engagement_toggles_total",
			Help: "Engagement toggles by relation kind and resulting state",
		},
		[]string{"kind", "state"},
	)

	ToggleConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelreel_engagement_toggle_conflicts_total",
			Help: "Toggles aborted by a concurrent duplicate insert",
		},
		[]string{"kind"},
	)

	FeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelreel_feed_requests_total",
			Help: "Feed pages served by mode",
		},
		[]string{"mode"},
	)

	TrendingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelreel_trending_recompute_total",
			Help: "Trending recompute attempts by outcome",
		},
		[]string{"outcome"},
	)

	TrendingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "travelreel_trending_recompute_seconds",
			Help:    "Duration of a trending recompute",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "travelreel_search_duration_seconds",
			Help:    "Duration of a fanned-out search",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
