package appstore

import "github.com/prometheus/client_golang/prometheus"

var (
	// mutations counts committed store actions by action name.
	mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_mutations_total",
			Help: "Committed application store mutations by action.",
		},
		[]string{"action"},
	)

	// persistFailures counts snapshot writes the durable storage rejected.
	persistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "store_persist_failures_total",
			Help: "Snapshot writes to durable storage that failed.",
		},
	)
)

func init() {
	prometheus.MustRegister(mutations, persistFailures)
}
