package main

import (
	"fmt"
	"iter"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/23skdu/longbow-skipgram/internal/client"
	"github.com/23skdu/longbow-skipgram/internal/pipeline"
	"github.com/23skdu/longbow-skipgram/internal/sampling"
)

// PairFlightServer streams training pairs over Arrow Flight. A DoGet ticket
// is a CBOR encoded BatchesRequest; an empty ticket uses the defaults.
type PairFlightServer struct {
	flight.BaseFlightServer
	prep  *pipeline.Prepared
	alloc memory.Allocator
	sem   *semaphore.Weighted
}

// NewPairFlightServer serves prep.Train. sem bounds concurrent streams and is
// usually shared with the HTTP Server.
func NewPairFlightServer(prep *pipeline.Prepared, sem *semaphore.Weighted) *PairFlightServer {
	return &PairFlightServer{
		prep:  prep,
		alloc: memory.NewGoAllocator(),
		sem:   sem,
	}
}

func (s *PairFlightServer) DoGet(tkt *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	req := BatchesRequest{BatchSize: 512, WindowSize: 5}
	if len(tkt.GetTicket()) > 0 {
		if err := cbor.Unmarshal(tkt.GetTicket(), &req); err != nil {
			return status.Errorf(codes.InvalidArgument, "bad ticket: %v", err)
		}
	}

	batches, err := requestBatches(s.prep.Train, &req)
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	// Admission Control
	if err := s.sem.Acquire(stream.Context(), 1); err != nil {
		return status.FromContextError(err).Err()
	}
	defer s.sem.Release(1)

	builder := client.NewRecordBatchBuilder(s.alloc)
	writer := flight.NewRecordWriter(stream, ipc.WithSchema(client.PairSchema), ipc.WithAllocator(s.alloc))
	defer func() { _ = writer.Close() }()

	var rows int64
	for b := range batches {
		batchesServed.Inc()
		if b.Len() == 0 {
			continue
		}
		rec := builder.BuildPairBatch(b)
		err := writer.Write(rec)
		rows += rec.NumRows()
		rec.Release()
		if err != nil {
			return fmt.Errorf("failed to write pairs: %w", err)
		}
	}
	log.Debug().Int64("rows", rows).Msg("DoGet streamed pairs")
	return nil
}

// requestBatches applies MaxBatches defaults and caps and returns the
// truncated batch sequence.
func requestBatches(train []int, req *BatchesRequest) (iter.Seq[sampling.Batch], error) {
	if req.MaxBatches <= 0 {
		req.MaxBatches = defaultMaxBatches
	}
	req.MaxBatches = min(req.MaxBatches, limitMaxBatches)

	batches, err := sampling.Batches(train, req.BatchSize, req.WindowSize, pipeline.NewRand(req.Seed))
	if err != nil {
		return nil, err
	}
	limit := req.MaxBatches
	return func(yield func(sampling.Batch) bool) {
		n := 0
		for b := range batches {
			n++
			// Stop before the generator builds a batch nobody will receive.
			if !yield(b) || n == limit {
				return
			}
		}
	}, nil
}

func startFlightServer(addr string, svc *PairFlightServer) {
	server := flight.NewServerWithMiddleware(nil)
	server.RegisterFlightService(svc)

	if err := server.Init(addr); err != nil {
		log.Fatal().Err(err).Msg("Failed to init Flight server")
	}

	log.Info().Str("addr", server.Addr().String()).Msg("Starting Skipgram Flight Server")
	if err := server.Serve(); err != nil {
		log.Fatal().Err(err).Msg("Flight server failed")
	}
}
