package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/comments-web/internal/cache"
	"github.com/pribylovaa/comments-web/internal/pkg/log"
)

// RedisTier — durable-область на стороне сервера: в cookie лежит только
// случайный sid, токен хранится в Redis с TTL по сроку токена.
type RedisTier struct {
	w     http.ResponseWriter
	r     *http.Request
	cache cache.TokenCache
	opts  CookieOptions

	written bool
	sid     string
}

func NewRedisTier(w http.ResponseWriter, r *http.Request, c cache.TokenCache, opts CookieOptions) *RedisTier {
	return &RedisTier{w: w, r: r, cache: c, opts: opts}
}

func (t *RedisTier) Scope() Scope { return ScopeDurable }

func (t *RedisTier) currentSID() string {
	if t.written {
		return t.sid
	}

	c, err := t.r.Cookie(SIDCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}

	return c.Value
}

func (t *RedisTier) Load(ctx context.Context) (string, bool, error) {
	const op = "internal/session/RedisTier.Load"

	sid := t.currentSID()
	if sid == "" {
		return "", false, nil
	}

	e, ok, err := t.cache.Get(ctx, sid)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return "", false, nil
	}

	return e.Token, true, nil
}

// Save выдаёт новый sid (старый удаляется), чтобы не переиспользовать
// идентификатор, пришедший от клиента.
func (t *RedisTier) Save(ctx context.Context, token string) error {
	const op = "internal/session/RedisTier.Save"

	now := t.opts.now()
	exp := Expiry(token, now, t.opts.DurableTTL)
	ttl := exp.Sub(now)
	if ttl < time.Second {
		if err := t.Delete(ctx); err != nil {
			log.From(ctx).Warn("session_tier_delete_failed", slog.String("err", err.Error()))
		}
		return fmt.Errorf("%s: %w", op, ErrTokenExpired)
	}

	if old := t.currentSID(); old != "" {
		if err := t.cache.Delete(ctx, old); err != nil {
			// Старая запись доживёт до своего TTL.
			log.From(ctx).Warn("session_sid_rotate_delete_failed", slog.String("err", err.Error()))
		}
	}

	sid := uuid.NewString()
	if err := t.cache.Set(ctx, sid, &cache.TokenEntry{Token: token, ExpiresAt: exp}, ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	http.SetCookie(t.w, &http.Cookie{
		Name:     SIDCookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Expires:  exp.UTC(),
		HttpOnly: true,
		Secure:   t.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	t.written, t.sid = true, sid

	return nil
}

// Delete убирает запись из Redis и гасит cookie. Cookie гасится даже при
// ошибке Redis: локальный выход не должен зависеть от хранилища.
func (t *RedisTier) Delete(ctx context.Context) error {
	const op = "internal/session/RedisTier.Delete"

	var err error
	if sid := t.currentSID(); sid != "" {
		err = t.cache.Delete(ctx, sid)
	}

	http.SetCookie(t.w, expiredCookie(SIDCookieName, t.opts.Secure))
	t.written, t.sid = true, ""

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
