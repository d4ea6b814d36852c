package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"

	"github.com/23skdu/longbow-skipgram/internal/cache"
	"github.com/23skdu/longbow-skipgram/internal/evaluate"
	"github.com/23skdu/longbow-skipgram/internal/pipeline"
	"github.com/23skdu/longbow-skipgram/internal/sampling"
)

const (
	defaultMaxBatches = 16
	limitMaxBatches   = 1024
	defaultTopK       = 10
	similarCacheSize  = 1024
)

// BatchesRequest asks for batches over the prepared sequence.
type BatchesRequest struct {
	BatchSize  int    `cbor:"batch_size"`
	WindowSize int    `cbor:"window_size"`
	MaxBatches int    `cbor:"max_batches"`
	Seed       uint64 `cbor:"seed"`
}

// SimilarRequest asks for the nearest neighbours of a word.
type SimilarRequest struct {
	Word string `cbor:"word"`
	K    int    `cbor:"k"`
}

// SimilarWord is one neighbour in a SimilarResponse.
type SimilarWord struct {
	Word       string  `cbor:"word"`
	Similarity float64 `cbor:"similarity"`
}

// SimilarResponse lists neighbours from most to least similar.
type SimilarResponse struct {
	Word       string        `cbor:"word"`
	Neighbours []SimilarWord `cbor:"neighbours"`
}

// Server answers batch and nearest-neighbour queries over HTTP with CBOR
// bodies. index may be nil, in which case /similar reports 503.
type Server struct {
	prep    *pipeline.Prepared
	index   *evaluate.Index
	sem     *semaphore.Weighted
	similar *cache.SliceCache[SimilarWord]
}

// NewServer admits at most maxConcurrent batch requests at a time.
func NewServer(prep *pipeline.Prepared, index *evaluate.Index, maxConcurrent int) *Server {
	return &Server{
		prep:    prep,
		index:   index,
		sem:     semaphore.NewWeighted(int64(max(maxConcurrent, 1))),
		similar: cache.NewSliceCache[SimilarWord](similarCacheSize),
	}
}

// Handler routes /metrics, /batches, /similar and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/batches", s.handleBatches)
	mux.HandleFunc("/similar", s.handleSimilar)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func startServer(addr string, srv *Server) {
	log.Info().Str("addr", addr).Bool("embeddings", srv.index != nil).Msg("Starting Skipgram Server")
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

var tracer = otel.Tracer("skipgram-server")

func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "handleBatches")
	defer span.End()

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues("batches").Observe(time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BatchesRequest
	if err := cbor.NewDecoder(r.Body).Decode(&req); err != nil {
		span.RecordError(err)
		http.Error(w, fmt.Sprintf("Bad Request (CBOR decode): %v", err), http.StatusBadRequest)
		return
	}
	batches, err := requestBatches(s.prep.Train, &req)
	if err != nil {
		span.RecordError(err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.Int("batch_size", req.BatchSize),
		attribute.Int("window_size", req.WindowSize),
		attribute.Int("max_batches", req.MaxBatches),
	)

	// Admission Control
	weight := int64(1)
	if err := s.sem.Acquire(ctx, weight); err != nil {
		log.Error().Err(err).Msg("Failed to acquire semaphore")
		http.Error(w, "Server busy", http.StatusServiceUnavailable)
		return
	}
	defer s.sem.Release(weight)

	out := make([]sampling.Batch, 0, req.MaxBatches)
	for b := range batches {
		out = append(out, b)
	}
	batchesServed.Add(float64(len(out)))

	writeCBOR(w, out)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "handleSimilar")
	defer span.End()

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues("similar").Observe(time.Since(start).Seconds())
	}()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.index == nil {
		http.Error(w, "No embeddings loaded", http.StatusServiceUnavailable)
		return
	}

	var req SimilarRequest
	if err := cbor.NewDecoder(r.Body).Decode(&req); err != nil {
		span.RecordError(err)
		http.Error(w, fmt.Sprintf("Bad Request (CBOR decode): %v", err), http.StatusBadRequest)
		return
	}
	if req.K <= 0 {
		req.K = defaultTopK
	}
	span.SetAttributes(attribute.String("word", req.Word), attribute.Int("k", req.K))

	id, ok := s.prep.Vocab.ID(req.Word)
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown word %q", req.Word), http.StatusNotFound)
		return
	}

	key := fmt.Sprintf("%d|%d", id, req.K)
	if words, ok := s.similar.Get(key); ok {
		similarCacheHits.Inc()
		writeCBOR(w, SimilarResponse{Word: req.Word, Neighbours: words})
		return
	}

	neighbours, err := s.index.Similar(id, req.K)
	if err != nil {
		span.RecordError(err)
		status := http.StatusInternalServerError
		if errors.Is(err, evaluate.ErrIDOutOfRange) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}

	resp := SimilarResponse{Word: req.Word, Neighbours: make([]SimilarWord, len(neighbours))}
	for i, n := range neighbours {
		resp.Neighbours[i] = SimilarWord{Word: s.prep.Vocab.Token(n.ID), Similarity: n.Similarity}
	}
	s.similar.Put(key, resp.Neighbours)
	writeCBOR(w, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeCBOR(w http.ResponseWriter, v any) {
	data, err := cbor.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		http.Error(w, "Encode error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/cbor")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
