package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trendradar"

var (
	DigestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "digest_runs_total",
		Help:      "Digest pipeline runs by outcome.",
	}, []string{"outcome"})

	ModelAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_attempts_total",
		Help:      "Generation attempts per candidate model and result.",
	}, []string{"model", "result"})

	TopicsExtracted = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "topics_extracted",
		Help:      "Topics extracted from the latest snapshot by extraction mode.",
	}, []string{"mode"})

	LastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_sent_timestamp_seconds",
		Help:      "Unix time of the last delivered digest.",
	})
)

// ObserveAttempt records one candidate model call.
func ObserveAttempt(model string, result string) {
	ModelAttempts.WithLabelValues(model, result).Inc()
}
