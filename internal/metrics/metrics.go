// Package metrics defines Prometheus collectors for the session lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// OperationsTotal counts lifecycle operations by outcome
	// ("ok", "unauthorized", "error").
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "session",
			Name:      "operations_total",
			Help:      "Session lifecycle operations by outcome",
		},
		[]string{"op", "outcome"},
	)

	// IssuedTokens counts signed tokens by kind ("access", "refresh").
	IssuedTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "session",
			Name:      "issued_tokens_total",
			Help:      "Tokens issued by kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(OperationsTotal, IssuedTokens)
}
