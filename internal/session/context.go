package session

import "context"

type ctxKey struct{}

// Into кладёт сессию в контекст (это делает только мидлвар сессии).
func Into(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// From достаёт сессию из контекста.
func From(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// MustFrom — паника, если вызвано вне поддерева мидлвара сессии.
// Это ошибка сборки роутера, а не состояние времени выполнения.
func MustFrom(ctx context.Context) *Session {
	s, ok := From(ctx)
	if !ok {
		panic("session: MustFrom called outside of session middleware")
	}
	return s
}
