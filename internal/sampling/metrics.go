package sampling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	subsampledTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skipgram_subsample_tokens_total",
		Help: "Tokens seen by the subsampler, by outcome (kept, discarded)",
	}, []string{"outcome"})

	batchesEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skipgram_batches_total",
		Help: "Total number of batches yielded by the batch generator",
	})

	pairsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skipgram_pairs_total",
		Help: "Total number of (center, context) pairs yielded",
	})
)
