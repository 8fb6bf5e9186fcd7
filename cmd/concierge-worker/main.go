// Concierge Worker — двигает лоты по статусным workflow.
//
// Worker:
//   - Вычитывает change feed document store до пустой порции
//   - Диспетчеризует лоты по процессорам согласно lotType
//   - Фиксирует несводимые сбои компенсации в ledger
//
// Цикл однопоточный: процесс один, последовательная обработка —
// единственный контроль конкурентности.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Concierge/internal/calendar"
	"github.com/shaiso/Concierge/internal/checks"
	"github.com/shaiso/Concierge/internal/clients"
	"github.com/shaiso/Concierge/internal/config"
	"github.com/shaiso/Concierge/internal/domain"
	"github.com/shaiso/Concierge/internal/feed"
	"github.com/shaiso/Concierge/internal/ledger"
	"github.com/shaiso/Concierge/internal/mapping"
	"github.com/shaiso/Concierge/internal/mq"
	"github.com/shaiso/Concierge/internal/processing"
	"github.com/shaiso/Concierge/internal/retry"
	"github.com/shaiso/Concierge/internal/telemetry"
	"github.com/shaiso/Concierge/internal/transition"
	"github.com/shaiso/Concierge/internal/worker"
)

func main() {
	var configPath string
	var checkMode bool
	flag.StringVar(&configPath, "config", "", "path to YAML config file")
	flag.BoolVar(&checkMode, "check", false, "probe external dependencies and exit")
	flag.Parse()

	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting concierge-worker")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if checkMode {
		if err := checks.Run(ctx, checks.ForConfig(cfg, logger), logger); err != nil {
			os.Exit(1)
		}
		return
	}

	// DB pool ledger'а
	pool, err := ledger.NewPool(ctx, cfg.Ledger.DSN)
	if err != nil {
		logger.Error("failed to connect to ledger database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("ledger database connected")

	// RabbitMQ: алерты опциональны, без брокера ledger работает молча
	var notifier ledger.Notifier
	if cfg.MQ.URL != "" {
		mqConn, err := mq.NewConnection(cfg.MQ.URL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, ledger alerts are off", "error", err)
		} else {
			defer mqConn.Close()
			logger.Info("RabbitMQ connected")

			if err := mq.SetupTopology(ctx, mqConn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}
			notifier = mq.NewNotifier(mqConn, logger)
		}
	}

	store := ledger.New(pool, notifier, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure ledger schema", "error", err)
		os.Exit(1)
	}

	// Advisory-кэш обработанных лотов
	cache, err := mapping.New(ctx, cfg.LotsMapping, logger)
	if err != nil {
		logger.Error("failed to create lots mapping", "error", err)
		os.Exit(1)
	}

	// Клиенты сервисов реестра
	lots := clients.NewLotsClient(clients.Config{
		URL: cfg.Lots.URL, Token: cfg.Lots.Token, Timeout: cfg.Lots.Timeout(),
	})
	assets := clients.NewAssetsClient(clients.Config{
		URL: cfg.Assets.URL, Token: cfg.Assets.Token, Timeout: cfg.Assets.Timeout(),
	})
	auctions := clients.NewAuctionsClient(clients.Config{
		URL: cfg.Auctions.URL, Token: cfg.Auctions.Token, Timeout: cfg.Auctions.Timeout(),
	})

	deps := processing.Deps{
		Lots:   lots,
		Assets: assets,
		Ledger: store,
		Cache:  cache,
		Logger: logger,
	}
	policy := retry.DefaultPolicy()

	processors := make(map[string]processing.Processor)
	if len(cfg.Basic.Aliases) > 0 {
		basic, err := processing.NewBasic(deps, processing.BasicConfig{
			AssetTypes: cfg.Basic.AssetTypes,
			Retry:      policy,
		})
		if err != nil {
			logger.Error("failed to create basic processor", "error", err)
			os.Exit(1)
		}
		for _, alias := range cfg.Basic.Aliases {
			processors[alias] = basic
		}
	}
	if len(cfg.Loki.Aliases) > 0 {
		loki, err := processing.NewLoki(deps, auctions, calendar.Default(), processing.LokiConfig{
			AssetTypes:  cfg.Loki.AssetTypes,
			PlannedPMTs: cfg.Loki.PlannedPMTs,
			Retry:       policy,
		})
		if err != nil {
			logger.Error("failed to create loki processor", "error", err)
			os.Exit(1)
		}
		for _, alias := range cfg.Loki.Aliases {
			processors[alias] = loki
		}
	}

	// Feed: фильтр пропускает только наши lotType в обрабатываемых
	// статусах
	cursor, err := feed.NewCursor(cfg.ResweepSchedule)
	if err != nil {
		logger.Error("invalid resweep schedule", "error", err)
		os.Exit(1)
	}
	feedClient := feed.New(cfg.DB, cursor, logger)
	condition := feed.BuildCondition(cfg.Aliases(), handledStatuses(cfg))
	if err := feedClient.Setup(ctx, condition); err != nil {
		logger.Error("failed to setup feed", "error", err)
		os.Exit(1)
	}

	w := worker.New(worker.Config{
		Feed:          feedClient,
		Ledger:        store,
		Cache:         cache,
		Processors:    processors,
		SleepInterval: cfg.Sleep(),
		Logger:        logger,
	})

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.WorkerPort)
	go func() {
		logger.Info("listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("concierge-worker stopped")
}

// handledStatuses собирает объединение обрабатываемых статусов обоих
// вариантов для предиката фильтра feed.
func handledStatuses(cfg *config.Config) []string {
	seen := make(map[domain.Status]struct{})
	var statuses []string

	add := func(list []domain.Status) {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			statuses = append(statuses, string(s))
		}
	}
	if len(cfg.Basic.Aliases) > 0 {
		add(transition.BasicHandledStatuses)
	}
	if len(cfg.Loki.Aliases) > 0 {
		add(transition.LokiHandledStatuses)
	}
	return statuses
}
