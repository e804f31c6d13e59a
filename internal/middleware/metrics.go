// Package middleware provides Gin HTTP middleware components for the gateway.
// Everything here is registered in internal/api/router.go before any route
// handlers so every request is covered regardless of handler.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sniff-api/sniff-server/internal/telemetry"
)

// MetricsMiddleware records request count and duration for every request that
// passes through the router:
//
//	http_requests_total{method, path, status}    CounterVec
//	http_request_duration_seconds{method, path}  HistogramVec
//
// The path label comes from c.FullPath(), the matched route template
// (e.g. /v1/apk/:package_name/:channel), never the raw URL, so package names
// and version codes cannot explode label cardinality. Requests matching no
// route at all use the literal "<no-route>".
//
// Register after gin.Recovery() so the status written by the panic handler is
// the one recorded. Note the duration histogram covers the full APK relay for
// streaming requests; telemetry.APKStreamDuration is the purpose-built view of
// that, with buckets sized for multi-minute transfers.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
