// Package telemetry exposes the Prometheus metrics of the scheduler.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationsTotal counts completed generation pipeline runs.
	GenerationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotagen_generations_total",
		Help: "Completed schedule generation runs.",
	})

	// BalancerOpsAccepted counts accepted pair-breaking operators.
	BalancerOpsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotagen_balancer_ops_accepted_total",
		Help: "Pair-breaking operators accepted by the balancer.",
	})

	// ShortenerOps counts applied shift shortenings.
	ShortenerOps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotagen_shortener_ops_total",
		Help: "Day shifts shortened to fit hour caps.",
	})
)
