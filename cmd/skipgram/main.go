package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/23skdu/longbow-skipgram/internal/client"
	"github.com/23skdu/longbow-skipgram/internal/corpus"
	"github.com/23skdu/longbow-skipgram/internal/embeddings"
	"github.com/23skdu/longbow-skipgram/internal/evaluate"
	"github.com/23skdu/longbow-skipgram/internal/pipeline"
)

var (
	cpuProfile     = flag.String("cpuprofile", "", "Write cpu profile to file")
	logLevel       = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	enableOTel     = flag.Bool("otel", false, "Enable OpenTelemetry tracing (stdout)")
	loremIpsum     = flag.Int("lorem", 0, "Use N generated lorem ipsum paragraphs instead of the corpus file")
	epochs         = flag.Int("epochs", 0, "Generate batches for N epochs and report pair counts")
	exportPath     = flag.String("export", "", "Write one epoch of training pairs as an Arrow IPC stream")
	serverAddr     = flag.String("server", "", "Longbow server address to forward pairs to (e.g., localhost:3000)")
	datasetName    = flag.String("dataset", "skipgram_pairs", "Target dataset name on server")
	embeddingsPath = flag.String("embeddings", "", "Trained embedding matrix (.arrow IPC stream or raw little-endian float32)")
	embeddingDim   = flag.Int("dim", 0, "Embedding dimension for raw float32 matrices")
	validSize      = flag.Int("valid-size", 16, "Number of validation words (even)")
	validWindow    = flag.Int("valid-window", 100, "Validation words are drawn from [0, w) and [w, 2w)")
	topK           = flag.Int("top-k", 6, "Neighbours to print per validation word")
	deviceName     = flag.String("device", "cpu", "Device label for similarity metrics")
	listenAddr     = flag.String("listen", "", "Address to listen on for HTTP Server (e.g. :8080)")
	maxConcurrent  = flag.Int("max-concurrent", 64, "Maximum number of batch requests served concurrently over HTTP and Flight")
	flightAddr     = flag.String("flight-listen", "", "Address to serve training pairs over Arrow Flight DoGet (e.g. :3001)")
)

func bindPipelineFlags(cfg *pipeline.Config) {
	flag.StringVar(&cfg.CorpusPath, "corpus", cfg.CorpusPath, "Path to the plain-text corpus")
	flag.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "Subsampling threshold t")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed (0 picks one per run)")
	flag.IntVar(&cfg.MinCount, "min-count", cfg.MinCount, "Drop words occurring this many times or fewer")
	flag.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Ids per batch")
	flag.IntVar(&cfg.WindowSize, "window", cfg.WindowSize, "Maximum context window size")
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	cfg := pipeline.DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatal().Err(err).Msg("Invalid environment")
	}
	bindPipelineFlags(cfg)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if *enableOTel {
		shutdown, err := initTracer()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracer")
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create CPU profile file")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("Could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	ctx := context.Background()
	p, err := pipeline.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	var prep *pipeline.Prepared
	if *loremIpsum > 0 {
		prep, err = p.RunText(ctx, corpus.GenerateLorem(*loremIpsum, p.Rand()))
	} else {
		prep, err = p.Run(ctx)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Data preparation failed")
	}

	for e := 1; e <= *epochs; e++ {
		batches, err := p.Batches(prep)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid batch settings")
		}
		start := time.Now()
		n, pairs := countPairs(batches)
		log.Info().
			Int("epoch", e).
			Int("batches", n).
			Int("pairs", pairs).
			Dur("elapsed", time.Since(start)).
			Msg("Epoch generated")
	}

	if *exportPath != "" {
		if err := exportEpoch(p, prep, *exportPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to export pairs")
		}
	}

	if *serverAddr != "" {
		if err := forwardEpoch(ctx, p, prep); err != nil {
			log.Fatal().Err(err).Msg("Failed to forward pairs")
		}
	}

	var index *evaluate.Index
	if *embeddingsPath != "" {
		emb, err := loadEmbeddings(*embeddingsPath, *embeddingDim, prep.Vocab.Size())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load embeddings")
		}
		opts := evaluate.Options{ValidSize: *validSize, ValidWindow: *validWindow, Device: *deviceName}
		res, err := evaluate.CosineSimilarity(emb, opts, p.Rand())
		if err != nil {
			log.Fatal().Err(err).Msg("Similarity evaluation failed")
		}
		printNeighbours(res, prep, *topK)
		index = evaluate.NewIndex(emb)
	}

	srv := NewServer(prep, index, *maxConcurrent)
	pairs := NewPairFlightServer(prep, srv.sem)
	switch {
	case *flightAddr != "" && *listenAddr != "":
		go startFlightServer(*flightAddr, pairs)
		startServer(*listenAddr, srv)
	case *flightAddr != "":
		startFlightServer(*flightAddr, pairs)
	case *listenAddr != "":
		startServer(*listenAddr, srv)
	}
}

func forwardEpoch(ctx context.Context, p *pipeline.Pipeline, prep *pipeline.Prepared) error {
	fc, err := client.NewFlightClient(*serverAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := fc.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close flight client")
		}
	}()

	batches, err := p.Batches(prep)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	log.Info().Str("server", *serverAddr).Str("dataset", *datasetName).Msg("Sending pairs to Longbow")
	fwd := client.NewForwarder(fc, *datasetName, client.NewCircuitBreaker(5, 30*time.Second))
	stats, err := fwd.Forward(ctx, batches)
	log.Info().
		Int("batches", stats.Batches).
		Int("pairs", stats.Pairs).
		Int("failed", stats.Failed).
		Int("skipped", stats.Skipped).
		Msg("Forwarding finished")
	return err
}

// loadEmbeddings reads the trained matrix and refuses it unless it has one
// row per vocabulary id.
func loadEmbeddings(path string, dim, vocabSize int) (*mat.Dense, error) {
	if !strings.EqualFold(filepath.Ext(path), ".arrow") {
		return embeddings.LoadRawFloat32(path, vocabSize, dim)
	}
	emb, err := embeddings.LoadArrowFile(path)
	if err != nil {
		return nil, err
	}
	if err := embeddings.CheckRows(emb, vocabSize); err != nil {
		return nil, err
	}
	return emb, nil
}

func printNeighbours(res *evaluate.Result, prep *pipeline.Prepared, k int) {
	for i, id := range res.ValidIDs {
		nearest := res.Nearest(i, k)
		words := make([]string, len(nearest))
		for j, n := range nearest {
			words[j] = prep.Vocab.Token(n.ID)
		}
		log.Info().Str("word", prep.Vocab.Token(id)).Strs("nearest", words).Msg("Validation word")
	}
}

func initTracer() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("skipgram"),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp.Shutdown, nil
}
