package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apierrors "github.com/pribylovaa/comments-web/internal/errors"
	"github.com/pribylovaa/comments-web/internal/models"
	"github.com/pribylovaa/comments-web/internal/pkg/log"
	"github.com/pribylovaa/comments-web/internal/pkg/redact"
	"github.com/pribylovaa/comments-web/internal/session"
	"github.com/pribylovaa/comments-web/internal/validate"
)

// Login — вход по username или email.
//
// Поведение:
//   - при ошибках полей возвращает ValidationError без сетевого вызова;
//   - при отказе бэкенда — AuthError с его сообщением (или "Login failed");
//   - токен не сохраняет: решение remember me принимает вызывающий.
func (s *Service) Login(ctx context.Context, f models.LoginForm) (*models.Token, error) {
	const op = "service/auth/Login"

	if errs := validate.Login(f); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", op, &apierrors.ValidationError{Fields: errs})
	}

	ident := strings.TrimSpace(f.Identifier)
	lg := log.From(ctx).With("op", op, "identifier", redactIdentifier(ident))

	tok, err := s.auth.Login(ctx, models.LoginRequest{
		Identifier: ident,
		Password:   f.Password,
		Remember:   f.Remember,
	})
	if err != nil {
		lg.Info("login_rejected", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("login_ok", slog.Bool("remember", f.Remember))

	return tok, nil
}

// Register — регистрация. Автоматического входа нет.
func (s *Service) Register(ctx context.Context, f models.RegisterForm) error {
	const op = "service/auth/Register"

	if errs := validate.Register(f); len(errs) > 0 {
		return fmt.Errorf("%s: %w", op, &apierrors.ValidationError{Fields: errs})
	}

	req := models.RegisterRequest{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}
	lg := log.From(ctx).With("op", op, "email", redact.Email(req.Email))

	if err := s.auth.Register(ctx, req); err != nil {
		lg.Info("register_rejected", slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("register_ok")

	return nil
}

// Logout — выход. Вызов бэкенда best-effort: его сбой логируется, а токен
// удаляется из всех областей хранения в любом случае. Ошибка возвращается
// только если не удалось очистить локальное хранилище.
func (s *Service) Logout(ctx context.Context, store *session.Store, token string) error {
	const op = "service/auth/Logout"

	lg := log.From(ctx).With("op", op)

	if token != "" {
		if err := s.auth.Logout(ctx, token); err != nil {
			lg.Warn("logout_backend_failed", slog.String("err", err.Error()))
		}
	}

	if err := store.Clear(ctx); err != nil {
		lg.Error("logout_clear_failed", slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// redactIdentifier маскирует email, username оставляет как есть.
func redactIdentifier(s string) string {
	if strings.Contains(s, "@") {
		return redact.Email(s)
	}
	return s
}
