package middleware

import (
	"net/http"

	"github.com/pribylovaa/comments-web/internal/session"
)

// Session один раз на запрос собирает Store, разрешает пользователя и кладёт
// *session.Session в контекст. Обработчики берут её через session.MustFrom.
func Session(f *session.Factory, p *session.Provider) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := f.Store(w, r)
			s := p.Resolve(r.Context(), store)

			next.ServeHTTP(w, r.WithContext(session.Into(r.Context(), s)))
		})
	}
}
