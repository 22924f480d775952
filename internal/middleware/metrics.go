package middleware

import (
	"net/http"
	"time"

	"github.com/freetools/toolsite/internal/metrics"
)

// Metrics records request durations labelled with the matched chi route
// pattern, so /developer/hex-to-rgb and /developer/rgb-to-hex share a series.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			m.ObserveRequest(routePattern(r), r.Method, rw.status, time.Since(start))
		})
	}
}
