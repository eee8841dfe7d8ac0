package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apierrors "github.com/pribylovaa/comments-web/internal/errors"
	"github.com/pribylovaa/comments-web/internal/models"
)

// scopeRememberMe — значение поля scope для долгоживущего токена.
const scopeRememberMe = "remember_me"

// Login — POST /api/v1/auth/login (application/x-www-form-urlencoded).
// Токен не сохраняется: это делает вызывающий с учётом флага Remember.
func (c *Client) Login(ctx context.Context, in models.LoginRequest) (*models.Token, error) {
	const op = "internal/backend/Login"

	form := url.Values{}
	form.Set("username", in.Identifier)
	form.Set("password", in.Password)
	scope := ""
	if in.Remember {
		scope = scopeRememberMe
	}
	form.Set("scope", scope)

	status, body, err := c.do(ctx, http.MethodPost, pathLogin, "",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, &apierrors.AuthError{Message: MsgLoginFailed, Status: status, Err: err})
	}
	if !ok(status) {
		return nil, fmt.Errorf("%s: %w", op, &apierrors.AuthError{Message: orDefault(detail(body), MsgLoginFailed), Status: status})
	}

	var tok models.Token
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("%s: %w", op, &apierrors.AuthError{Message: MsgLoginFailed, Status: status, Err: err})
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%s: %w", op, &apierrors.AuthError{Message: MsgLoginFailed, Status: status})
	}

	return &tok, nil
}

// Register — POST /api/v1/auth/register (JSON). Автоматического входа нет.
func (c *Client) Register(ctx context.Context, in models.RegisterRequest) error {
	const op = "internal/backend/Register"

	status, body, err := c.doJSON(ctx, http.MethodPost, pathRegister, "", in)
	if err != nil {
		return fmt.Errorf("%s: %w", op, &apierrors.AuthError{Message: MsgRegistrationFailed, Status: status, Err: err})
	}
	if !ok(status) {
		return fmt.Errorf("%s: %w", op, &apierrors.AuthError{Message: orDefault(detail(body), MsgRegistrationFailed), Status: status})
	}

	return nil
}

// Logout — POST /api/v1/auth/logout без тела. Ошибка возвращается только
// для логирования: локальная очистка токена от неё не зависит.
func (c *Client) Logout(ctx context.Context, token string) error {
	const op = "internal/backend/Logout"

	status, _, err := c.do(ctx, http.MethodPost, pathLogout, token, "", nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok(status) {
		return fmt.Errorf("%s: unexpected status %d", op, status)
	}

	return nil
}
