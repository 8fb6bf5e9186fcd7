package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shaiso/Concierge/internal/domain"
	"github.com/shaiso/Concierge/internal/ledger"
	"github.com/shaiso/Concierge/internal/mapping"
	"github.com/shaiso/Concierge/internal/processing"
	"github.com/shaiso/Concierge/internal/telemetry"
)

const defaultSleepInterval = 10 * time.Second

// Feed — источник лотов: один вызов вычитывает feed до пустой порции.
type Feed interface {
	Drain(ctx context.Context) ([]domain.Lot, error)
}

// Ledger — срез ledger'а для правила ревизий.
type Ledger interface {
	Get(ctx context.Context, lotID string) (*domain.BrokenLotRecord, error)
	Resolve(ctx context.Context, lot domain.Lot) error
}

// Worker — последовательный цикл обработки лотов.
type Worker struct {
	feed       Feed
	ledger     Ledger
	cache      mapping.Mapping
	processors map[string]processing.Processor

	sleepInterval time.Duration
	logger        *slog.Logger
}

// Config — конфигурация Worker.
type Config struct {
	Feed   Feed
	Ledger Ledger
	Cache  mapping.Mapping

	// Processors — процессор на каждый алиас lotType из конфигурации.
	Processors map[string]processing.Processor

	// SleepInterval — пауза между циклами дрена (default: 10s).
	SleepInterval time.Duration

	Logger *slog.Logger
}

// New создаёт Worker.
func New(cfg Config) *Worker {
	sleepInterval := cfg.SleepInterval
	if sleepInterval <= 0 {
		sleepInterval = defaultSleepInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		feed:          cfg.Feed,
		ledger:        cfg.Ledger,
		cache:         cfg.Cache,
		processors:    cfg.Processors,
		sleepInterval: sleepInterval,
		logger:        logger,
	}
}

// Run крутит цикл дрен-диспетчеризация до отмены контекста. Отмена
// проверяется на границах цикла: начатый лот дорабатывается до конца.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("starting worker",
		"sleep_interval", w.sleepInterval,
		"lot_types", len(w.processors),
	)

	for {
		lots, err := w.feed.Drain(ctx)
		if err != nil {
			// Частично вычитанные лоты всё равно обрабатываются:
			// курсор за них уже сдвинут.
			w.logger.Error("feed drain failed", "error", err)
		}
		feedDrains.Inc()
		lotsReceived.Add(float64(len(lots)))

		for i := range lots {
			w.dispatch(ctx, &lots[i])
		}

		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return ctx.Err()
		case <-time.After(w.sleepInterval):
		}
	}
}

// dispatch прогоняет один лот через фильтры и передаёт процессору.
func (w *Worker) dispatch(ctx context.Context, lot *domain.Lot) {
	logger := telemetry.WithLotID(w.logger, lot.ID).With("lot_type", lot.LotType)

	processor, ok := w.processors[lot.LotType]
	if !ok {
		logger.Warn("no processor registered for lot type, skipping")
		lotsSkipped.WithLabelValues(skipUnknownType).Inc()
		return
	}

	cached, err := w.cache.Has(ctx, lot.ID)
	if err != nil {
		// кэш advisory: его отказ не мешает обработке
		logger.Warn("mapping lookup failed", "error", err)
	}
	if cached {
		logger.Info("lot was processed recently, skipping")
		lotsSkipped.WithLabelValues(skipCached).Inc()
		return
	}

	if !w.clearBroken(ctx, lot, logger) {
		return
	}

	lotsDispatched.Inc()
	processor.ProcessLots(ctx, lot)
}

// clearBroken применяет правило ревизий к записи ledger'а. true —
// лот можно обрабатывать.
func (w *Worker) clearBroken(ctx context.Context, lot *domain.Lot, logger *slog.Logger) bool {
	record, err := w.ledger.Get(ctx, lot.ID)
	if errors.Is(err, ledger.ErrNotFound) {
		return true
	}
	if err != nil {
		// Исход неизвестен: обработка сломанного лота опаснее, чем
		// пропуск здорового, поэтому пропускаем до следующей доставки.
		logger.Error("ledger lookup failed, skipping", "error", err)
		lotsSkipped.WithLabelValues(skipLedgerError).Inc()
		return false
	}
	if record.Resolved {
		return true
	}
	if record.Rev == lot.Rev {
		logger.Info("lot is broken and unchanged, skipping", "rev", lot.Rev)
		lotsSkipped.WithLabelValues(skipBroken).Inc()
		return false
	}

	// Ревизия сдвинулась: удалённое состояние менялось после поломки,
	// запись снимается и лот обрабатывается заново.
	if err := w.ledger.Resolve(ctx, *lot); err != nil {
		logger.Error("failed to resolve broken lot, skipping", "error", err)
		lotsSkipped.WithLabelValues(skipLedgerError).Inc()
		return false
	}
	lotsResolved.Inc()
	return true
}
