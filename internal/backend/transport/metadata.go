package transport

import "net/http"

// WithMetadata — добавляет в исходящий запрос заголовки:
//   - X-Request-Id (если есть в контексте и не задан явно),
//   - User-Agent (если передан параметром).
//
// Исходный запрос не модифицируется: при необходимости делается клон.
func WithMetadata(userAgent string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return Func(func(r *http.Request) (*http.Response, error) {
			rid := RequestID(r)

			needRID := rid != "" && r.Header.Get("X-Request-Id") == ""
			needUA := userAgent != ""
			if !needRID && !needUA {
				return next.RoundTrip(r)
			}

			r = r.Clone(r.Context())
			if needRID {
				r.Header.Set("X-Request-Id", rid)
			}
			if needUA {
				r.Header.Set("User-Agent", userAgent)
			}

			return next.RoundTrip(r)
		})
	}
}
