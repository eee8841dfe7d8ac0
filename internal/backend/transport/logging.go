package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/comments-web/internal/pkg/log"
)

// WithLogging — логирование исходящих вызовов бэкенда.
// Поведение:
//   - берёт X-Request-Id из заголовка запроса или контекста, иначе генерирует новый;
//   - добавляет поля method/path/host, прокладывает обогащённый логгер в контекст (pkg/log);
//   - пишет одну финальную запись: msg="backend", status, dur. Сбой транспорта — уровень Warn.
//
// Безопасность: не логирует тело, Authorization и query.
func WithLogging(base *slog.Logger) Middleware {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return Func(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			rid := r.Header.Get("X-Request-Id")
			if rid == "" {
				rid = RequestID(r)
			}
			if rid == "" {
				rid = uuid.NewString()
				r = r.Clone(r.Context())
				r.Header.Set("X-Request-Id", rid)
			}

			l := base.With(
				slog.String("request_id", rid),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("host", r.URL.Host),
			)
			r = r.WithContext(log.Into(r.Context(), l))

			resp, err := next.RoundTrip(r)
			dur := time.Since(start)

			if err != nil {
				l.Warn("backend", slog.String("error", err.Error()), slog.Duration("dur", dur))
				return nil, err
			}

			l.Info("backend", slog.Int("status", resp.StatusCode), slog.Duration("dur", dur))
			return resp, nil
		})
	}
}
