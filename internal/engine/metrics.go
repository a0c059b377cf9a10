package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "engine",
			Name:      "generations_total",
			Help:      "Total generations by outcome",
		},
		[]string{"outcome"},
	)

	generatedTokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "engine",
			Name:      "generated_tokens_total",
			Help:      "Total tokens produced by the runtime",
		},
	)

	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "inferd",
			Subsystem: "engine",
			Name:      "generation_duration_seconds",
			Help:      "Wall time of a single generation call",
			Buckets:   prometheus.DefBuckets,
		},
	)

	promptCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "engine",
			Name:      "prompt_cache_total",
			Help:      "Prompt response cache lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(generationsTotal, generatedTokensTotal, generationDuration, promptCacheTotal)
}
