package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependency — проверка зависимости для /healthz (например, Ping Redis).
type Dependency struct {
	Name  string
	Check func(ctx context.Context) error
}

// checkTimeout — предел одной проверки готовности.
const checkTimeout = 2 * time.Second

// NewOpsMux — служебные ручки: /livez, /healthz и /metrics; всё прочее
// уходит в app. g == nil — prometheus.DefaultGatherer.
func NewOpsMux(app http.Handler, ready *atomic.Bool, g prometheus.Gatherer, log *slog.Logger, deps ...Dependency) *http.ServeMux {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		for _, p := range deps {
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			err := p.Check(ctx)
			cancel()
			if err != nil {
				log.Warn("readiness_check_failed", slog.String("dependency", p.Name), slog.String("err", err.Error()))
				http.Error(w, "not ready: "+p.Name, http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	mux.Handle("/", app)

	return mux
}
