package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"
)

const (
	// DurableCookieName — persistent-cookie с токеном (remember me).
	DurableCookieName = "access_token"
	// EphemeralCookieName — session-cookie с токеном.
	EphemeralCookieName = "access_token_session"
	// SIDCookieName — persistent-cookie с идентификатором записи в Redis.
	SIDCookieName = "sid"
)

// CookieOptions — общие параметры cookie-областей.
type CookieOptions struct {
	Secure bool
	// DurableTTL — срок жизни, если из токена его не извлечь.
	DurableTTL time.Duration
	// Now — источник времени (для тестов); nil — time.Now.
	Now func() time.Time
}

func (o CookieOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// CookieTier хранит токен прямо в cookie. Durable — с Max-Age по сроку
// токена, Ephemeral — без Max-Age.
//
// Записи в рамках запроса видны последующим Load того же запроса.
type CookieTier struct {
	w     http.ResponseWriter
	r     *http.Request
	scope Scope
	name  string
	opts  CookieOptions

	// written/local — состояние после Save/Delete в этом запросе.
	written bool
	local   string
}

// NewCookieTier привязывает область к запросу. scope — ScopeDurable или ScopeEphemeral.
func NewCookieTier(w http.ResponseWriter, r *http.Request, scope Scope, opts CookieOptions) *CookieTier {
	name := EphemeralCookieName
	if scope == ScopeDurable {
		name = DurableCookieName
	}

	return &CookieTier{w: w, r: r, scope: scope, name: name, opts: opts}
}

func (t *CookieTier) Scope() Scope { return t.scope }

func (t *CookieTier) Load(context.Context) (string, bool, error) {
	if t.written {
		return t.local, t.local != "", nil
	}

	c, err := t.r.Cookie(t.name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	tok, err := url.QueryUnescape(c.Value)
	if err != nil {
		return "", false, err
	}

	return tok, tok != "", nil
}

func (t *CookieTier) Save(_ context.Context, token string) error {
	c := &http.Cookie{
		Name:     t.name,
		Value:    url.QueryEscape(token),
		Path:     "/",
		HttpOnly: true,
		Secure:   t.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	if t.scope == ScopeDurable {
		now := t.opts.now()
		exp := Expiry(token, now, t.opts.DurableTTL)
		ttl := exp.Sub(now)
		if ttl < time.Second {
			_ = t.Delete(context.Background())
			return ErrTokenExpired
		}
		c.MaxAge = int(ttl / time.Second)
		c.Expires = exp.UTC()
	}

	http.SetCookie(t.w, c)
	t.written, t.local = true, token

	return nil
}

func (t *CookieTier) Delete(context.Context) error {
	http.SetCookie(t.w, expiredCookie(t.name, t.opts.Secure))
	t.written, t.local = true, ""

	return nil
}

func expiredCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
