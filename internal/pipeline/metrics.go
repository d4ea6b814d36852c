package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skipgram_stage_duration_seconds",
		Help:    "Time spent in each preparation stage",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	vocabSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skipgram_vocab_size",
		Help: "Number of distinct tokens in the current vocabulary",
	})

	trainWords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skipgram_train_words",
		Help: "Length of the subsampled sequence",
	})
)
