package binding

import "github.com/prometheus/client_golang/prometheus"

var (
	// activeSubscriptions gauges open live subscriptions by binding kind.
	activeSubscriptions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "binding_active_subscriptions",
			Help: "Current number of open live binding subscriptions.",
		},
		[]string{"kind"},
	)

	// staleResults counts results discarded because a newer bind superseded
	// the request that produced them.
	staleResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binding_stale_results_total",
			Help: "Results discarded because their binding had been re-bound or closed.",
		},
		[]string{"kind"},
	)

	// failures counts remote failures swallowed into an empty result.
	failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binding_failures_total",
			Help: "Remote read or subscription failures resolved to an empty result.",
		},
		[]string{"kind", "mode"},
	)
)

func init() {
	prometheus.MustRegister(activeSubscriptions, staleResults, failures)
}
