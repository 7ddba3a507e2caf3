package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"splittab/internal/metrics"
)

// Instrument records request counts, latency and in-flight gauge for every
// request. Routes are labelled by chi's matched pattern, not the raw path,
// to keep metric cardinality bounded.
func Instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := newStatusRecorder(w)
			m.InFlight.Inc()
			start := time.Now()

			next.ServeHTTP(recorder, r)

			m.InFlight.Dec()
			route := "unknown"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := strconv.Itoa(recorder.status)
			m.ReqTotal.WithLabelValues(r.Method, route, status).Inc()
			m.ReqDur.WithLabelValues(r.Method, route).Observe(metrics.DurationMillis(time.Since(start)))
		})
	}
}
