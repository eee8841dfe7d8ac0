package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pribylovaa/comments-web/internal/metrics"
)

// WithMetrics считает вызовы бэкенда и их длительность.
// Метка endpoint — "METHOD /path": набор путей REST API конечен.
// Транспортный сбой учитывается с code="error".
func WithMetrics(m *metrics.Metrics) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if m == nil {
			return next
		}

		return Func(func(r *http.Request) (*http.Response, error) {
			endpoint := r.Method + " " + r.URL.Path
			start := time.Now()

			resp, err := next.RoundTrip(r)

			m.BackendDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
			code := "error"
			if err == nil {
				code = strconv.Itoa(resp.StatusCode)
			}
			m.BackendRequests.WithLabelValues(endpoint, code).Inc()

			return resp, err
		})
	}
}
