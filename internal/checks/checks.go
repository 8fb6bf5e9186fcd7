// Package checks — стартовые проверки подключений.
//
// Режим -check воркера и команда check у cli прогоняют один и тот же
// набор проб: три сервиса реестра, document store, Postgres ledger'а и
// advisory-кэш. Проба не меняет удалённое состояние.
package checks

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shaiso/Concierge/internal/clients"
	"github.com/shaiso/Concierge/internal/config"
	"github.com/shaiso/Concierge/internal/feed"
	"github.com/shaiso/Concierge/internal/ledger"
	"github.com/shaiso/Concierge/internal/mapping"
)

// ErrFailed — хотя бы одна проверка провалилась.
var ErrFailed = errors.New("checks: failed")

// Check — одна именованная проверка.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// ForConfig собирает стандартный набор проверок для конфигурации.
func ForConfig(cfg *config.Config, logger *slog.Logger) []Check {
	lots := clients.NewLotsClient(clients.Config{
		URL: cfg.Lots.URL, Token: cfg.Lots.Token, Timeout: cfg.Lots.Timeout(),
	})
	assets := clients.NewAssetsClient(clients.Config{
		URL: cfg.Assets.URL, Token: cfg.Assets.Token, Timeout: cfg.Assets.Timeout(),
	})
	auctions := clients.NewAuctionsClient(clients.Config{
		URL: cfg.Auctions.URL, Token: cfg.Auctions.Token, Timeout: cfg.Auctions.Timeout(),
	})

	return []Check{
		{Name: "lots service", Fn: lots.Check},
		{Name: "assets service", Fn: assets.Check},
		{Name: "auctions service", Fn: auctions.Check},
		{Name: "document store", Fn: func(ctx context.Context) error {
			cursor, err := feed.NewCursor(cfg.ResweepSchedule)
			if err != nil {
				return err
			}
			return feed.New(cfg.DB, cursor, logger).Check(ctx)
		}},
		{Name: "ledger database", Fn: func(ctx context.Context) error {
			pool, err := ledger.NewPool(ctx, cfg.Ledger.DSN)
			if err != nil {
				return err
			}
			pool.Close()
			return nil
		}},
		{Name: "lots mapping", Fn: func(ctx context.Context) error {
			m, err := mapping.New(ctx, cfg.LotsMapping, logger)
			if err != nil {
				return err
			}
			return mapping.SelfCheck(ctx, m)
		}},
	}
}

// Run прогоняет проверки по очереди, логируя каждый результат.
// Возвращает ErrFailed, если провалилась хотя бы одна — но прогоняет
// все: оператору нужна полная картина, а не первый отказ.
func Run(ctx context.Context, checks []Check, logger *slog.Logger) error {
	failed := 0
	for _, check := range checks {
		if err := check.Fn(ctx); err != nil {
			logger.Error("check failed", "check", check.Name, "error", err)
			failed++
			continue
		}
		logger.Info("check passed", "check", check.Name)
	}
	if failed > 0 {
		return ErrFailed
	}
	return nil
}
