package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/comments-web/internal/http/handlers"
	"github.com/pribylovaa/comments-web/internal/http/middleware"
	"github.com/pribylovaa/comments-web/internal/metrics"
	"github.com/pribylovaa/comments-web/internal/session"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	Metrics *metrics.Metrics
	// ServiceName — имя операции серверного спана.
	ServiceName string
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, f *session.Factory, p *session.Provider, opts Options) http.Handler {
	root := chi.NewRouter()

	name := opts.ServiceName
	if name == "" {
		name = "comments-web"
	}

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Tracing(name),
		middleware.Recover(),
		middleware.RequestID(), // до логирования
		middleware.Logging(opts.Logger),
		middleware.Metrics(opts.Metrics),
		middleware.AuthBearer(), // токен из Authorization для области запроса
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}
	// Сессия разрешается после установки дедлайна: /user/me под ним же.
	root.Use(middleware.Session(f, p))

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации страниц и фрагментов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	r.Get("/", h.Index)

	// auth
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Get("/register", h.RegisterPage)
	r.Post("/register", h.Register)
	r.Post("/logout", h.Logout)

	// comments
	r.Post("/comments", h.PostComment)
	r.Get("/fragments/comments", h.CommentsFragment)
	r.Post("/fragments/comments", h.PostCommentFragment)
}
