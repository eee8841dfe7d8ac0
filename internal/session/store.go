// session — bearer-токен браузера и идентичность текущего пользователя.
//
// Токен живёт ровно в одном из двух областей хранения:
//   - Durable — переживает перезапуск браузера (persistent-cookie или Redis);
//   - Ephemeral — до конца сессии браузера (session-cookie).
//
// Store читает области по порядку и возвращает первое найденное значение,
// поэтому долговременная область всегда проверяется первой.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/comments-web/internal/pkg/log"
)

// Scope — область хранения токена.
type Scope int

const (
	ScopeDurable Scope = iota + 1
	ScopeEphemeral
	// ScopeRequest — токен пришёл с самим запросом (Authorization), только чтение.
	ScopeRequest
)

func (s Scope) String() string {
	switch s {
	case ScopeDurable:
		return "durable"
	case ScopeEphemeral:
		return "ephemeral"
	case ScopeRequest:
		return "request"
	default:
		return "unknown"
	}
}

var (
	// ErrReadOnly — запись в область, доступную только для чтения.
	ErrReadOnly = errors.New("session: tier is read-only")
	// ErrNoTier — в Store нет записываемой области нужного типа.
	ErrNoTier = errors.New("session: no writable tier for scope")
	// ErrEmptyToken — попытка сохранить пустой токен.
	ErrEmptyToken = errors.New("session: empty token")
	// ErrTokenExpired — срок токена (exp) уже истёк, сохранять нечего.
	ErrTokenExpired = errors.New("session: token already expired")
)

// Tier — одна область хранения токена, привязанная к текущему запросу.
type Tier interface {
	Scope() Scope
	// Load возвращает токен и признак его наличия.
	Load(ctx context.Context) (string, bool, error)
	// Save записывает токен; ErrReadOnly для областей только для чтения.
	Save(ctx context.Context, token string) error
	// Delete удаляет токен; отсутствие токена ошибкой не считается.
	Delete(ctx context.Context) error
}

// Store — упорядоченный список областей. Сетевых вызовов к бэкенду не делает.
type Store struct {
	tiers []Tier
}

// NewStore собирает Store; порядок tiers — порядок чтения.
func NewStore(tiers ...Tier) *Store {
	return &Store{tiers: tiers}
}

// Get возвращает первый найденный токен. Сбой отдельной области логируется
// и не мешает проверить следующую.
func (s *Store) Get(ctx context.Context) (string, bool) {
	for _, t := range s.tiers {
		tok, ok, err := t.Load(ctx)
		if err != nil {
			log.From(ctx).Warn("session_tier_load_failed",
				slog.String("scope", t.Scope().String()),
				slog.String("err", err.Error()),
			)
			continue
		}
		if ok && tok != "" {
			return tok, true
		}
	}

	return "", false
}

// Set записывает токен в область durable/ephemeral и удаляет его из всех
// остальных областей, чтобы авторитетной оставалась одна копия.
func (s *Store) Set(ctx context.Context, token string, durable bool) error {
	const op = "internal/session/Store.Set"

	if token == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyToken)
	}

	want := ScopeEphemeral
	if durable {
		want = ScopeDurable
	}

	target := -1
	for i, t := range s.tiers {
		if t.Scope() == want {
			target = i
			break
		}
	}
	if target < 0 {
		return fmt.Errorf("%s: %s: %w", op, want, ErrNoTier)
	}

	if err := s.tiers[target].Save(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var errs []error
	for i, t := range s.tiers {
		if i == target {
			continue
		}
		if err := t.Delete(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Clear удаляет токен из всех областей. Идемпотентен; ошибки областей
// объединяются, но удаление из остальных продолжается.
func (s *Store) Clear(ctx context.Context) error {
	const op = "internal/session/Store.Clear"

	var errs []error
	for _, t := range s.tiers {
		if err := t.Delete(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
