package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skipgram_request_duration_seconds",
		Help:    "Time spent processing HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"handler"})

	batchesServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skipgram_batches_served_total",
		Help: "The total number of batches served over HTTP or Flight",
	})

	similarCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skipgram_similar_cache_hits_total",
		Help: "The total number of /similar queries answered from the cache",
	})
)
