package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/comments-web/internal/metrics"
)

// Metrics считает запросы по шаблону маршрута chi (не по сырому пути,
// чтобы не раздувать кардинальность). Несопоставленные — route="unmatched".
func Metrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}

			m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
			m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.Status())).Inc()
		})
	}
}
