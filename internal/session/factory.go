package session

import (
	"net/http"

	"github.com/pribylovaa/comments-web/internal/cache"
	"github.com/pribylovaa/comments-web/internal/config"
)

// Factory собирает Store для каждого запроса.
// Порядок областей: durable (cookie или Redis) -> ephemeral cookie -> Authorization.
type Factory struct {
	opts  CookieOptions
	cache cache.TokenCache
}

// NewFactory: c == nil — durable-область в persistent-cookie, иначе в Redis.
func NewFactory(cfg config.SessionConfig, c cache.TokenCache) *Factory {
	return &Factory{
		opts: CookieOptions{
			Secure:     cfg.SecureCookies,
			DurableTTL: cfg.DurableTTL,
		},
		cache: c,
	}
}

// Store привязывает области к паре w/r.
func (f *Factory) Store(w http.ResponseWriter, r *http.Request) *Store {
	var durable Tier
	if f.cache != nil {
		durable = NewRedisTier(w, r, f.cache, f.opts)
	} else {
		durable = NewCookieTier(w, r, ScopeDurable, f.opts)
	}

	return NewStore(
		durable,
		NewCookieTier(w, r, ScopeEphemeral, f.opts),
		NewHeaderTier(r),
	)
}
