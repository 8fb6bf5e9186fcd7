package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Причины пропуска лота для метрики lotsSkipped.
const (
	skipUnknownType = "unknown_lot_type"
	skipCached      = "already_processed"
	skipBroken      = "broken_unchanged"
	skipLedgerError = "ledger_error"
)

var (
	feedDrains = promauto.NewCounter(prometheus.CounterOpts{
		Name: "concierge_feed_drains_total",
		Help: "Completed change feed drain cycles.",
	})

	lotsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "concierge_lots_received_total",
		Help: "Lots received from the change feed.",
	})

	lotsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "concierge_lots_dispatched_total",
		Help: "Lots dispatched to a processor.",
	})

	lotsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "concierge_lots_skipped_total",
		Help: "Lots skipped before dispatch, by reason.",
	}, []string{"reason"})

	lotsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "concierge_broken_lots_resolved_total",
		Help: "Broken lot records resolved by the revision rule.",
	})
)
