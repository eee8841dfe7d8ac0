// metrics — Prometheus-коллекторы comments-web.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "comments_web"

// Metrics агрегирует коллекторы HTTP-слоя, вызовов бэкенда и сессий.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	BackendRequests *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	Sessions        *prometheus.CounterVec
	TreeNodes       prometheus.Histogram
}

// Значения метки result у Sessions.
const (
	SessionAnonymous     = "anonymous"
	SessionAuthenticated = "authenticated"
	SessionFailed        = "failed"
)

// New регистрирует коллекторы в reg. nil — отдельный реестр (удобно в тестах).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Входящие HTTP-запросы по маршруту и статусу.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Длительность обработки входящих запросов.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		BackendRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Вызовы REST API бэкенда по эндпойнту и коду ответа.",
		}, []string{"endpoint", "code"}),
		BackendDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Длительность вызовов бэкенда.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		Sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "resolutions_total",
			Help:      "Разрешение пользователя сессии: anonymous/authenticated/failed.",
		}, []string{"result"}),
		TreeNodes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tree",
			Name:      "nodes",
			Help:      "Число узлов в загруженном дереве комментариев.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}
