package session

import (
	"context"
	"log/slog"

	"github.com/pribylovaa/comments-web/internal/backend"
	"github.com/pribylovaa/comments-web/internal/metrics"
	"github.com/pribylovaa/comments-web/internal/models"
	"github.com/pribylovaa/comments-web/internal/pkg/log"
	"github.com/pribylovaa/comments-web/internal/pkg/redact"
)

// Session — состояние одного запроса (одной загрузки страницы).
// User == nil — гость: токена нет либо бэкенд его отверг.
type Session struct {
	Token string
	User  *models.User
	Store *Store
}

// Authenticated сообщает, что личность подтверждена бэкендом.
func (s *Session) Authenticated() bool { return s != nil && s.User != nil }

// Provider разрешает личность по токену через GET /api/v1/user/me.
type Provider struct {
	users   backend.Users
	metrics *metrics.Metrics
}

func NewProvider(users backend.Users, m *metrics.Metrics) *Provider {
	return &Provider{users: users, metrics: m}
}

// Resolve никогда не возвращает ошибку: любой сбой деградирует до гостя
// и только логируется.
func (p *Provider) Resolve(ctx context.Context, store *Store) *Session {
	s := &Session{Store: store}

	tok, ok := store.Get(ctx)
	if !ok {
		p.observe(metrics.SessionAnonymous)
		return s
	}
	s.Token = tok

	u, err := p.users.Me(ctx, tok)
	if err != nil {
		log.From(ctx).Debug("session_resolve_failed",
			slog.String("token", redact.Fingerprint(tok)),
			slog.String("err", err.Error()),
		)
		p.observe(metrics.SessionFailed)
		return s
	}

	s.User = u
	p.observe(metrics.SessionAuthenticated)

	return s
}

func (p *Provider) observe(result string) {
	if p.metrics != nil {
		p.metrics.Sessions.WithLabelValues(result).Inc()
	}
}
