// Package pipeline runs load, vocabulary and subsampling in sequence.
package pipeline

import (
	"context"
	"fmt"
	"iter"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/23skdu/longbow-skipgram/internal/corpus"
	"github.com/23skdu/longbow-skipgram/internal/sampling"
	"github.com/23skdu/longbow-skipgram/internal/tokenizer"
	"github.com/23skdu/longbow-skipgram/internal/vocab"
)

var tracer = otel.Tracer("skipgram-pipeline")

// Prepared is the immutable output of the preparation stages.
type Prepared struct {
	Vocab       *vocab.Vocabulary
	Train       []int
	Frequencies map[string]float64
	TokenCount  int
}

// Pipeline owns the random source shared by every stochastic stage.
type Pipeline struct {
	cfg *Config
	tok tokenizer.Tokenizer
	rng *rand.Rand
}

// New creates a Pipeline seeded from cfg.Seed.
func New(cfg *Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tok := tokenizer.NewWordTokenizer()
	tok.MinCount = cfg.MinCount

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	log.Debug().Uint64("seed", seed).Msg("Random source seeded")
	return &Pipeline{
		cfg: cfg,
		tok: tok,
		rng: NewRand(seed),
	}, nil
}

// NewRand returns a PCG-backed source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Rand exposes the pipeline's random source for later stages such as evaluation.
func (p *Pipeline) Rand() *rand.Rand {
	return p.rng
}

// Config returns the validated configuration.
func (p *Pipeline) Config() *Config {
	return p.cfg
}

// Run loads cfg.CorpusPath and prepares it.
func (p *Pipeline) Run(ctx context.Context) (*Prepared, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()

	log.Info().Str("path", p.cfg.CorpusPath).Msg("Loading data...")
	var tokens []string
	err := stage(ctx, "load", func(span trace.Span) error {
		var err error
		tokens, err = corpus.Load(p.cfg.CorpusPath, p.tok)
		span.SetAttributes(attribute.Int("tokens", len(tokens)))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	log.Info().Int("tokens", len(tokens)).Msg("Tokens loaded")

	return p.Prepare(ctx, tokens)
}

// RunText tokenizes an in-memory corpus and prepares it.
func (p *Pipeline) RunText(ctx context.Context, text string) (*Prepared, error) {
	ctx, span := tracer.Start(ctx, "pipeline.RunText")
	defer span.End()

	tokens := p.tok.Tokenize(text)
	log.Info().Int("tokens", len(tokens)).Msg("Tokens loaded")
	return p.Prepare(ctx, tokens)
}

// Prepare builds the vocabulary from tokens and subsamples them.
func (p *Pipeline) Prepare(ctx context.Context, tokens []string) (*Prepared, error) {
	log.Info().Msg("Creating lookup tables...")
	var v *vocab.Vocabulary
	_ = stage(ctx, "vocabulary", func(span trace.Span) error {
		v = vocab.Build(tokens)
		span.SetAttributes(attribute.Int("vocab_size", v.Size()))
		return nil
	})
	vocabSize.Set(float64(v.Size()))
	log.Info().Int("vocab_size", v.Size()).Msg("Vocabulary size")

	log.Info().Float64("threshold", p.cfg.Threshold).Msg("Starting subsampling...")
	var res *sampling.Result
	err := stage(ctx, "subsample", func(span trace.Span) error {
		var err error
		res, err = sampling.Subsample(tokens, v, p.cfg.Threshold, p.rng)
		if err == nil {
			span.SetAttributes(attribute.Int("kept", len(res.Kept)))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	trainWords.Set(float64(len(res.Kept)))
	log.Info().Int("train_words", len(res.Kept)).Msg("Subsampling done")

	return &Prepared{
		Vocab:       v,
		Train:       res.Kept,
		Frequencies: res.Frequencies,
		TokenCount:  len(tokens),
	}, nil
}

// Batches returns the batch generator over the prepared sequence using the
// configured batch and window sizes.
func (p *Pipeline) Batches(prep *Prepared) (iter.Seq[sampling.Batch], error) {
	return sampling.Batches(prep.Train, p.cfg.BatchSize, p.cfg.WindowSize, p.rng)
}

func stage(ctx context.Context, name string, fn func(trace.Span) error) error {
	_, span := tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(span)
	stageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
