package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/comments-web/internal/backend"
	"github.com/pribylovaa/comments-web/internal/cache"
	"github.com/pribylovaa/comments-web/internal/config"
	webhttp "github.com/pribylovaa/comments-web/internal/http"
	"github.com/pribylovaa/comments-web/internal/http/handlers"
	"github.com/pribylovaa/comments-web/internal/metrics"
	"github.com/pribylovaa/comments-web/internal/service"
	"github.com/pribylovaa/comments-web/internal/session"
	"github.com/pribylovaa/comments-web/internal/tracing"
	"github.com/pribylovaa/comments-web/internal/tree"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting comments-web", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	shutdownTracing, err := tracing.Init(rootCtx, cfg.Tracing, cfg.Env)
	if err != nil {
		log.Error("tracing_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("tracing_shutdown_failed", slog.String("err", err.Error()))
		}
	}()

	m := metrics.New(prometheus.DefaultRegisterer)

	var (
		tokenCache cache.TokenCache
		deps       []webhttp.Dependency
	)
	if cfg.Session.DurableBackend == config.DurableRedis {
		tokenCache, err = cache.NewRedisCache(rootCtx, cfg.Session.RedisURL, cfg.Session.RedisPrefix)
		if err != nil {
			log.Error("redis_init_failed", slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer func() {
			if cerr := tokenCache.Close(); cerr != nil {
				log.Warn("redis_close_failed", slog.String("err", cerr.Error()))
			}
		}()
		deps = append(deps, webhttp.Dependency{Name: "redis", Check: tokenCache.Ping})
		log.Info("redis_connected")
	}

	client, err := backend.New(backend.Options{
		BaseURL:   cfg.Backend.BaseURL,
		UserAgent: cfg.Backend.UserAgent,
		Timeout:   cfg.Timeouts.Backend,
		Logger:    log,
		Metrics:   m,
	})
	if err != nil {
		log.Error("backend_client_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	loc, err := cfg.Render.Location()
	if err != nil {
		log.Error("render_timezone_invalid", slog.String("tz", cfg.Render.Timezone), slog.String("err", err.Error()))
		os.Exit(1)
	}

	h, err := handlers.New(service.New(client, client), tree.NewGuard(), handlers.Options{
		MaxDepth: cfg.Render.MaxDepth,
		Location: loc,
		Metrics:  m,
	})
	if err != nil {
		log.Error("templates_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	appHandler := webhttp.NewRouter(h,
		session.NewFactory(cfg.Session, tokenCache),
		session.NewProvider(client, m),
		webhttp.Options{
			Logger:      log,
			Timeout:     cfg.Timeouts.Request,
			Metrics:     m,
			ServiceName: cfg.Tracing.ServiceName,
		},
	)

	var ready atomic.Bool
	mux := webhttp.NewOpsMux(appHandler, &ready, prometheus.DefaultGatherer, log, deps...)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr), slog.String("backend", cfg.Backend.BaseURL))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	ready.Store(true)
	log.Info("comments_web_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
