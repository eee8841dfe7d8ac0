package tree

import (
	"strconv"
	"sync"

	apierrors "github.com/pribylovaa/comments-web/internal/errors"
	"github.com/pribylovaa/comments-web/internal/pkg/redact"
)

// Guard — защита от повторной отправки одной и той же формы, пока первая
// ещё выполняется. Ключ — сессия + форма (корень или ответ на конкретный узел).
type Guard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{inflight: make(map[string]struct{})}
}

// Key собирает ключ формы по полному sha256 токена. parentID == nil или 0 —
// форма корневого комментария. Гостю (пустой токен) ключ не нужен: публикация
// без токена отклоняется раньше.
func Key(token string, parentID *int64) string {
	scope := "root"
	if parentID != nil && *parentID > 0 {
		scope = "reply:" + strconv.FormatInt(*parentID, 10)
	}
	return redact.Digest(token) + "/" + scope
}

// Acquire занимает ключ. Если ключ уже занят — ErrSubmitInProgress.
// release идемпотентен.
func (g *Guard) Acquire(key string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inflight[key]; busy {
		return nil, apierrors.ErrSubmitInProgress
	}
	g.inflight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, key)
			g.mu.Unlock()
		})
	}, nil
}
