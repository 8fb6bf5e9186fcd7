// Package mapping — advisory-кэш обработанных лотов.
//
// Кэш подсказывает worker'у, что лот только что был обработан и
// повторную доставку из feed можно пропустить. Он никогда не участвует
// в корректности: потерянная запись означает лишь лишний проход
// process_lots, который checkLot превратит в no-op.
//
// Бэкенд выбирается один раз при конструировании из конфигурации:
//   - "void"  — кэширование выключено;
//   - "lazy"  — встроенное in-process хранилище без TTL;
//   - "redis" — разделяемое хранилище с TTL на запись (по умолчанию 30с).
package mapping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Типы бэкендов.
const (
	TypeVoid  = "void"
	TypeLazy  = "lazy"
	TypeRedis = "redis"
)

// ErrConfiguration — бэкенд не может быть сконструирован из данной
// конфигурации. Поднимается на старте процесса, не в рантайме.
var ErrConfiguration = errors.New("mapping: invalid configuration")

// Mapping — интерфейс кэша обработанных лотов.
// Ключ — строковый id лота, значение — булевоподобная метка.
type Mapping interface {
	// Get возвращает значение по ключу, пустую строку — если ключа нет.
	Get(ctx context.Context, key string) (string, error)

	// Put сохраняет метку. TTL определяется бэкендом.
	Put(ctx context.Context, key, value string) error

	// Has сообщает, есть ли ключ в кэше.
	Has(ctx context.Context, key string) (bool, error)

	// Delete удаляет ключ.
	Delete(ctx context.Context, key string) error
}

// Config — конфигурация кэша.
type Config struct {
	// Type — один из TypeVoid, TypeLazy, TypeRedis. Пустое значение
	// трактуется как TypeVoid.
	Type string `yaml:"type"`

	// Name — имя базы: номер БД для redis.
	Name string `yaml:"name"`

	// Host и Port — адрес redis. Обязательны для TypeRedis.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Password — пароль redis.
	Password string `yaml:"password"`

	// ExpireSeconds — TTL записи в redis. По умолчанию 30.
	ExpireSeconds int `yaml:"expire_time"`
}

// New конструирует бэкенд по конфигурации. Для redis соединение
// проверяется сразу — нерабочий кэш должен валить процесс на старте,
// а не молча терять записи.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Mapping, error) {
	switch cfg.Type {
	case TypeVoid, "":
		logger.Info("lots mapping disabled, caching is off")
		return NewVoid(), nil
	case TypeLazy:
		logger.Info("using embedded lots mapping", "name", cfg.Name)
		return NewLazy(), nil
	case TypeRedis:
		m, err := NewRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("using redis lots mapping",
			"host", cfg.Host,
			"port", cfg.Port,
			"db", cfg.Name,
		)
		return m, nil
	default:
		return nil, fmt.Errorf("%w: unknown mapping type %q", ErrConfiguration, cfg.Type)
	}
}

// SelfCheck прогоняет put/has/get/delete на живом бэкенде. Используется
// режимом -check воркера.
func SelfCheck(ctx context.Context, m Mapping) error {
	const key, value = "check", "1"

	if err := m.Put(ctx, key, value); err != nil {
		return fmt.Errorf("mapping self-check: put: %w", err)
	}
	if _, ok := m.(*Void); ok {
		// void ничего не хранит, дальше проверять нечего
		return nil
	}
	has, err := m.Has(ctx, key)
	if err != nil {
		return fmt.Errorf("mapping self-check: has: %w", err)
	}
	if !has {
		return errors.New("mapping self-check: stored key not found")
	}
	got, err := m.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("mapping self-check: get: %w", err)
	}
	if got != value {
		return fmt.Errorf("mapping self-check: got %q, want %q", got, value)
	}
	if err := m.Delete(ctx, key); err != nil {
		return fmt.Errorf("mapping self-check: delete: %w", err)
	}
	return nil
}
