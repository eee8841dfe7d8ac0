package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pribylovaa/comments-web/internal/backend/transport"
)

// AuthBearer извлекает Bearer-токен из Authorization и кладёт "сырой" токен
// в контекст по ключу transport.CtxAuthToken. Его читает session.HeaderTier.
func AuthBearer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "

			auth := r.Header.Get("Authorization")
			if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
				if token := strings.TrimSpace(auth[len(prefix):]); token != "" {
					ctx := context.WithValue(r.Context(), transport.CtxAuthToken, token)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
