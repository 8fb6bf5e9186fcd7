package retry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var retries = promauto.NewCounter(prometheus.CounterOpts{
	Name: "concierge_retry_attempts_total",
	Help: "Remote call attempts made beyond the first one.",
})
