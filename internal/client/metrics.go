package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	forwardedBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skipgram_forwarded_batches_total",
		Help: "Batches forwarded to Longbow, by outcome (sent, failed, rejected)",
	}, []string{"outcome"})

	forwardedPairs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skipgram_forwarded_pairs_total",
		Help: "Total number of pairs forwarded to Longbow",
	})
)
