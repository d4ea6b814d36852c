package evaluate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skipgram_similarity_duration_seconds",
		Help:    "Time spent computing validation similarities",
		Buckets: prometheus.DefBuckets,
	}, []string{"device"})

	validationWords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skipgram_validation_words_total",
		Help: "Total number of validation words scored",
	})
)
