package session

import (
	"context"
	"net/http"

	"github.com/pribylovaa/comments-web/internal/backend/transport"
)

// HeaderTier отдаёт токен, извлечённый мидлваром AuthBearer из
// Authorization: Bearer. Только чтение: скриптовый клиент сам управляет токеном.
type HeaderTier struct {
	r *http.Request
}

func NewHeaderTier(r *http.Request) *HeaderTier { return &HeaderTier{r: r} }

func (t *HeaderTier) Scope() Scope { return ScopeRequest }

func (t *HeaderTier) Load(context.Context) (string, bool, error) {
	tok, _ := t.r.Context().Value(transport.CtxAuthToken).(string)
	return tok, tok != "", nil
}

func (t *HeaderTier) Save(context.Context, string) error { return ErrReadOnly }

func (t *HeaderTier) Delete(context.Context) error { return nil }
