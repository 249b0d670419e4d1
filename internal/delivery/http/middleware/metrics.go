package middleware

import (
	"net/http"
	"time"

	"gifttable/internal/metrics"
)

// Metrics records request count and latency labelled by the matched route pattern.
// It must wrap the ServeMux so the pattern is known once the handler returns.
func Metrics(m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(r.Method, route, wrapped.status, time.Since(start))
	})
}
