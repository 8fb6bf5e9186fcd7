package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lotsBroken = promauto.NewCounter(prometheus.CounterOpts{
	Name: "concierge_broken_lots_logged_total",
	Help: "Broken lot records written to the ledger.",
})
