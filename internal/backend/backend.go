// backend — клиент REST API комментариев (/api/v1/...).
//
// Клиент stateless: токен передаётся в каждый вызов явно и нигде не сохраняется.
// Исходящие запросы проходят цепочку transport: otelhttp -> metadata -> timeout ->
// logging -> metrics.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pribylovaa/comments-web/internal/backend/transport"
	"github.com/pribylovaa/comments-web/internal/metrics"
	"github.com/pribylovaa/comments-web/internal/models"
)

//go:generate mockgen -source=backend.go -destination=../../mocks/backend.go -package=mocks

// Auth — учётные операции бэкенда.
type Auth interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.Token, error)
	Register(ctx context.Context, req models.RegisterRequest) error
	Logout(ctx context.Context, token string) error
}

// Users — профиль текущего пользователя.
type Users interface {
	Me(ctx context.Context, token string) (*models.User, error)
}

// Comments — чтение и публикация комментариев.
type Comments interface {
	ListComments(ctx context.Context, token string) ([]models.Comment, error)
	CreateComment(ctx context.Context, token string, req models.CreateCommentRequest) error
}

// Пользовательские сообщения по умолчанию (если бэкенд не прислал detail).
const (
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed"
	MsgFetchComments      = "Failed to fetch comments"
	MsgPostComment        = "Failed to post comment"
	MsgFetchUser          = "Failed to fetch user"
)

const (
	pathLogin    = "/api/v1/auth/login"
	pathRegister = "/api/v1/auth/register"
	pathLogout   = "/api/v1/auth/logout"
	pathMe       = "/api/v1/user/me"
	pathComments = "/api/v1/comments/"

	// maxBody — предел читаемого тела ответа.
	maxBody = 8 << 20
)

// Options — параметры клиента.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	// Transport — базовый транспорт; nil — http.DefaultTransport.
	Transport http.RoundTripper
}

// Client реализует Auth, Users и Comments поверх net/http.
type Client struct {
	base *url.URL
	http *http.Client
}

var (
	_ Auth     = (*Client)(nil)
	_ Users    = (*Client)(nil)
	_ Comments = (*Client)(nil)
)

// New собирает клиент и цепочку транспорта.
func New(opts Options) (*Client, error) {
	const op = "internal/backend/New"

	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: base url %q is not absolute", op, opts.BaseURL)
	}

	rt := transport.Chain(opts.Transport,
		transport.WithMetadata(opts.UserAgent),
		transport.WithTimeout(opts.Timeout),
		transport.WithLogging(opts.Logger),
		transport.WithMetrics(opts.Metrics),
	)

	return &Client{
		base: u,
		http: &http.Client{
			Transport: otelhttp.NewTransport(rt,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "backend " + r.Method + " " + r.URL.Path
				}),
			),
			// Редиректы бэкенда не ожидаются; отдаём их вызывающему как non-2xx.
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}, nil
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// do выполняет запрос и возвращает статус и тело (не более maxBody).
func (c *Client) do(ctx context.Context, method, path, token, contentType string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, nil, err
	}

	return resp.StatusCode, data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in any) (int, []byte, error) {
	if in == nil {
		return c.do(ctx, method, path, token, "", nil)
	}

	buf, err := json.Marshal(in)
	if err != nil {
		return 0, nil, err
	}

	return c.do(ctx, method, path, token, "application/json", bytes.NewReader(buf))
}

func ok(status int) bool { return status >= 200 && status < 300 }

// detail достаёт сообщение об ошибке бэкенда:
//   - {"detail": "text"} -> "text";
//   - {"detail": [{"msg": "text"}, ...]} -> первое msg (ошибки валидации);
//   - иначе "".
func detail(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(env.Detail, &items); err == nil && len(items) > 0 {
		return strings.TrimSpace(items[0].Msg)
	}

	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
