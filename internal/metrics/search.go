package metrics

import "github.com/prometheus/client_golang/prometheus"

// Fusion search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scenedex",
			Name:      "search_requests_total",
			Help:      "Total number of fusion search requests",
		},
		[]string{"status"}, // "ok" / "no_results" / "embed_error"
	)

	ChannelRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scenedex",
			Name:      "channel_request_duration_seconds",
			Help:      "Channel retrieval duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"channel"},
	)

	ChannelStatusTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scenedex",
			Name:      "channel_status_total",
			Help:      "Channel retrieval outcomes by status",
		},
		[]string{"channel", "status"},
	)

	DegenerateChannelsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scenedex",
			Name:      "degenerate_channels_total",
			Help:      "Channels that returned no distinguishable score spread",
		},
		[]string{"channel"},
	)

	FusionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "scenedex",
			Name:      "fusion_duration_seconds",
			Help:      "End-to-end fusion search duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers fusion search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(ChannelRequestDuration)
	prometheus.MustRegister(ChannelStatusTotal)
	prometheus.MustRegister(DegenerateChannelsTotal)
	prometheus.MustRegister(FusionDuration)
	searchMetricsRegistered = true
}
