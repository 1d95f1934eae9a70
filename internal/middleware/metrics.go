package middleware

import (
	"net/http"
	"strconv"
	"time"

	"vid2pdf/internal/metrics"
)

// knownPaths are recorded under their own label; anything else is "other".
var knownPaths = map[string]bool{
	"/metrics": true,
	"/health":  true,
	"/livez":   true,
}

// Metrics returns a middleware that records request counts, latency and
// in-flight requests.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			wrapped := newResponseWriter(w)
			start := time.Now()

			next.ServeHTTP(wrapped, r)

			path := normalizePath(r.URL.Path)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath keeps label cardinality bounded.
func normalizePath(path string) string {
	if knownPaths[path] {
		return path
	}
	return "other"
}
