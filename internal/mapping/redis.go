package mapping

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultExpire — TTL записи по умолчанию. Короткий: кэш защищает
// только от повторной доставки того же лота соседними проходами feed.
const defaultExpire = 30 * time.Second

// Redis — разделяемый кэш в redis с TTL на запись.
type Redis struct {
	db     *redis.Client
	expire time.Duration
}

// NewRedis создаёт redis-бэкенд. Host и Port обязательны; соединение
// проверяется пробной записью, как и остальная конфигурация — на
// старте процесса.
func NewRedis(ctx context.Context, cfg Config) (*Redis, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: host is required for redis mapping", ErrConfiguration)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("%w: port is required for redis mapping", ErrConfiguration)
	}

	db := 0
	if cfg.Name != "" {
		parsed, err := strconv.Atoi(cfg.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: redis db name %q is not a number", ErrConfiguration, cfg.Name)
		}
		db = parsed
	}

	expire := defaultExpire
	if cfg.ExpireSeconds > 0 {
		expire = time.Duration(cfg.ExpireSeconds) * time.Second
	}

	r := &Redis{
		db: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       db,
		}),
		expire: expire,
	}

	// Пробная запись вместо PING: проверяет заодно права на запись.
	if err := r.db.Set(ctx, "check", "check", time.Second).Err(); err != nil {
		return nil, fmt.Errorf("mapping: redis connection check: %w", err)
	}
	if err := r.db.Del(ctx, "check").Err(); err != nil {
		return nil, fmt.Errorf("mapping: redis connection check: %w", err)
	}
	return r, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := r.db.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("mapping: redis get: %w", err)
	}
	return value, nil
}

func (r *Redis) Put(ctx context.Context, key, value string) error {
	if err := r.db.Set(ctx, key, value, r.expire).Err(); err != nil {
		return fmt.Errorf("mapping: redis set: %w", err)
	}
	return nil
}

func (r *Redis) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.db.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("mapping: redis exists: %w", err)
	}
	return n > 0, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("mapping: redis del: %w", err)
	}
	return nil
}
