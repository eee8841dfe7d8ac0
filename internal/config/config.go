// config — источник загрузки конфигурации comments-web.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	// DurableCookie — долговременный токен хранится в persistent-cookie.
	DurableCookie = "cookie"
	// DurableRedis — в persistent-cookie лежит только sid, токен — в Redis.
	DurableRedis = "redis"
)

type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Backend  BackendConfig `yaml:"backend"`
	Session  SessionConfig `yaml:"session"`
	Render   RenderConfig  `yaml:"render"`
	Tracing  TracingConfig `yaml:"tracing"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — дедлайны входящего запроса и исходящего вызова бэкенда.
type TimeoutConfig struct {
	Request time.Duration `yaml:"request" env:"REQUEST_TIMEOUT" env-default:"15s"`
	Backend time.Duration `yaml:"backend" env:"BACKEND_TIMEOUT" env-default:"10s"`
}

// HTTPConfig — публичный HTTP-сервер фронтенда.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"3000"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// BackendConfig — REST API комментариев (внешний сервис).
type BackendConfig struct {
	BaseURL   string `yaml:"base_url"   env:"BACKEND_BASE_URL"   env-default:"http://127.0.0.1:8000"`
	UserAgent string `yaml:"user_agent" env:"BACKEND_USER_AGENT" env-default:"comments-web"`
}

// SessionConfig — хранение bearer-токена на стороне браузера.
type SessionConfig struct {
	// DurableTTL — срок жизни remember-me cookie, если токен не JWT или без exp.
	DurableTTL     time.Duration `yaml:"durable_ttl"     env:"SESSION_DURABLE_TTL"     env-default:"720h"`
	SecureCookies  bool          `yaml:"secure_cookies"  env:"SESSION_SECURE_COOKIES"  env-default:"false"`
	DurableBackend string        `yaml:"durable_backend" env:"SESSION_DURABLE_BACKEND" env-default:"cookie"`
	RedisURL       string        `yaml:"redis_url"       env:"REDIS_URL"`
	RedisPrefix    string        `yaml:"redis_prefix"    env:"REDIS_PREFIX"            env-default:"web:token:"`
}

// RenderConfig — параметры отрисовки дерева комментариев.
type RenderConfig struct {
	// MaxDepth — предел визуальной вложенности; более глубокие ответы
	// выводятся на этом уровне, данные не отбрасываются.
	MaxDepth int    `yaml:"max_depth" env:"RENDER_MAX_DEPTH" env-default:"16"`
	Timezone string `yaml:"timezone"  env:"RENDER_TIMEZONE"  env-default:"Local"`
}

// Location возвращает часовой пояс для форматирования дат.
func (r RenderConfig) Location() (*time.Location, error) {
	return time.LoadLocation(r.Timezone)
}

// TracingConfig — экспорт трейсов OTLP/HTTP. Пустой Endpoint выключает трейсинг.
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"     env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string  `yaml:"service_name" env:"OTEL_SERVICE_NAME"         env-default:"comments-web"`
	SampleRatio float64 `yaml:"sample_ratio" env:"OTEL_TRACES_SAMPLER_ARG"   env-default:"1"`
}

// Validate проверяет согласованность значений, которые cleanenv не покрывает тегами.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url %q is not an absolute url", c.Backend.BaseURL)
	}

	switch c.Session.DurableBackend {
	case DurableCookie:
	case DurableRedis:
		if c.Session.RedisURL == "" {
			return errors.New("session.redis_url is required for durable_backend=redis")
		}
	default:
		return fmt.Errorf("unknown session.durable_backend %q", c.Session.DurableBackend)
	}

	if c.Render.MaxDepth < 1 {
		return fmt.Errorf("render.max_depth must be >= 1, got %d", c.Render.MaxDepth)
	}

	if _, err := c.Render.Location(); err != nil {
		return fmt.Errorf("render.timezone: %w", err)
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be in [0,1], got %v", c.Tracing.SampleRatio)
	}

	return nil
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func read(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
