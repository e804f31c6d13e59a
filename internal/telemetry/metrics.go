// Package telemetry provides application-level observability for the Sniff server.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// automatically available on the side-channel HTTP server started by main.go:
//
//	GET http(s)://<host>:<SNIFF_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090.  The endpoint returns data in the Prometheus text exposition
// format (Content-Type: text/plain; version=0.0.4) and is intended to be scraped by
// a Prometheus server every 15–60 seconds.  It is NOT served by the Gin router.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - Upstream Play call counters by channel, call type, and outcome
//   - APK proxy stream counters (started, aborted, bytes relayed) and duration histogram
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /v1/apk/:package_name/:channel)
// rather than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments such as package names or version codes. Upstream
// metrics use the three fixed channel names and a small closed set of outcomes.
//
// # Usage
//
//	telemetry.UpstreamRequestsTotal.WithLabelValues("stable", "details", "ok").Inc()
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, labelled by method, route template, and status code.
//
// HTTPRequestsTotal is a CounterVec with labels {method, path, status}.
// The path label holds the Gin route template (e.g. /v1/details/:package_name/:channel),
// NOT the raw URL, to prevent unbounded cardinality.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Error rate (%):                    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//   - Requests by route:                 sum by (path) (rate(http_requests_total[5m]))
//
// HTTPRequestDuration is a HistogramVec with labels {method, path} and exponential-ish
// buckets from 5 ms to 30 s.  Use histogram_quantile to compute latency percentiles.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Upstream Play metrics, recorded by the channel resolver and download resolver.
//
// UpstreamRequestsTotal is a CounterVec with labels {channel, call, outcome}:
//
//   - channel: stable | beta | alpha
//   - call:    details | delivery
//   - outcome: ok | not_found | auth_error | version_not_found | error
//
// The auth_error outcome is the operational signal for an expired AAS token on
// one channel. At the API boundary the channel merely degrades to unavailable,
// so this counter is the only place the distinction remains visible.
//
// Example PromQL queries:
//   - Expired-token alert:      increase(upstream_requests_total{outcome="auth_error"}[15m]) > 0
//   - Upstream error rate:      sum by (channel) (rate(upstream_requests_total{outcome="error"}[5m]))
//   - Visibility by channel:    sum by (channel) (rate(upstream_requests_total{call="details",outcome="ok"}[1h]))
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Total number of upstream Play protocol calls, by channel, call type, and outcome.",
	},
	[]string{"channel", "call", "outcome"},
)

// APK proxy metrics, recorded by the streaming proxy endpoint.
//
// APKDownloadsTotal is a CounterVec with label {channel} incremented when a
// proxied APK stream finishes cleanly.
//
// APKStreamAbortsTotal is a CounterVec with label {channel} incremented when an
// already-started stream is truncated: either the upstream connection dropped
// mid-transfer or the caller disconnected. Every started stream ends in exactly
// one of the two counters, so started = downloads + aborts.
//
// APKBytesRelayedTotal is a plain Counter of payload bytes relayed to callers.
// Its rate is the proxy's egress bandwidth.
//
// Example PromQL queries:
//   - Abort ratio:      sum(rate(apk_stream_aborts_total[1h])) / sum(rate(apk_downloads_total[1h]) + rate(apk_stream_aborts_total[1h]))
//   - Egress (MB/s):    rate(apk_bytes_relayed_total[5m]) / 1e6
//   - Popular channels: topk(3, sum by (channel) (apk_downloads_total))
var (
	APKDownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apk_downloads_total",
			Help: "Total number of proxied APK streams completed, by channel.",
		},
		[]string{"channel"},
	)

	APKStreamAbortsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apk_stream_aborts_total",
			Help: "Total number of proxied APK streams truncated after headers were sent, by channel.",
		},
		[]string{"channel"},
	)

	APKBytesRelayedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apk_bytes_relayed_total",
			Help: "Total number of APK payload bytes relayed to callers.",
		},
	)
)

// APKStreamDuration is a Histogram of relay durations in seconds, observed at
// the terminal state of every started stream, aborted ones included. Buckets
// extend to 15 minutes because large splits on slow links legitimately take
// that long.
//
// Example PromQL queries:
//   - p95 stream duration:  histogram_quantile(0.95, rate(apk_stream_duration_seconds_bucket[1h]))
var APKStreamDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "apk_stream_duration_seconds",
		Help:    "Duration of finished APK relay streams.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 900},
	},
)
