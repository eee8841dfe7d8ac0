package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenEntry описывает данные, которые мы храним в Redis по идентификатору сессии (sid).
type TokenEntry struct {
	Token     string
	ExpiresAt time.Time
}

// TokenCache — минимальный контракт серверного хранилища долговременных токенов.
type TokenCache interface {
	// Get возвращает запись и признак её наличия в кэше.
	Get(ctx context.Context, sid string) (*TokenEntry, bool, error)
	// Set сохраняет запись с TTL (обычно ExpiresAt-now).
	Set(ctx context.Context, sid string, e *TokenEntry, ttl time.Duration) error
	// Delete удаляет запись; отсутствие ключа ошибкой не считается.
	Delete(ctx context.Context, sid string) error
	// Ping проверяет доступность Redis (readiness).
	Ping(ctx context.Context) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "web:token:".
func NewRedisCache(ctx context.Context, redisURL, prefix string) (TokenCache, error) {
	if prefix == "" {
		prefix = "web:token:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(sid string) string { return c.prefix + sid }

// Храним как Redis Hash с полями: tok, exp (unix).
func (c *redisCache) Get(ctx context.Context, sid string) (*TokenEntry, bool, error) {
	m, err := c.rdb.HGetAll(ctx, c.key(sid)).Result()
	if err != nil {
		return nil, false, err
	}

	if len(m) == 0 || m["tok"] == "" {
		return nil, false, nil
	}

	expUnix, err := strconv.ParseInt(m["exp"], 10, 64)
	if err != nil {
		return nil, false, err
	}

	return &TokenEntry{
		Token:     m["tok"],
		ExpiresAt: time.Unix(expUnix, 0).UTC(),
	}, true, nil
}

func (c *redisCache) Set(ctx context.Context, sid string, e *TokenEntry, ttl time.Duration) error {
	kv := map[string]string{
		"tok": e.Token,
		"exp": strconv.FormatInt(e.ExpiresAt.Unix(), 10),
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, c.key(sid), kv)
	pipe.Expire(ctx, c.key(sid), ttl)

	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisCache) Delete(ctx context.Context, sid string) error {
	return c.rdb.Del(ctx, c.key(sid)).Err()
}

func (c *redisCache) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

func (c *redisCache) Close() error { return c.rdb.Close() }
