package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expiry — момент истечения токена для срока жизни durable-хранилища.
// Подпись не проверяется: это делает бэкенд. Если токен не JWT или без exp —
// now+fallback.
func Expiry(token string, now time.Time, fallback time.Duration) time.Time {
	var claims jwt.RegisteredClaims

	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}

	return now.Add(fallback)
}
