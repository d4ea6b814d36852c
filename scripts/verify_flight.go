//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/23skdu/longbow-skipgram/internal/client"
)

// Fetches a few batches from a running `skipgram -flight-listen` server and
// checks every pair is well formed.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	addr := "localhost:3001"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	log.Info().Str("addr", addr).Msg("Connecting to Skipgram Flight Server")

	c, err := client.NewFlightClient(addr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create client")
	}
	defer c.Close()

	ticket, err := cbor.Marshal(map[string]any{
		"batch_size":  128,
		"window_size": 5,
		"max_batches": 4,
		"seed":        1,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode ticket")
	}

	var rows int64
	start := time.Now()
	for i := 0; i < 10; i++ {
		rows = 0
		err = c.DoGet(context.Background(), ticket, func(rec arrow.RecordBatch) error {
			if rec.NumCols() != 2 {
				return fmt.Errorf("expected 2 columns, got %d", rec.NumCols())
			}
			rows += rec.NumRows()
			return nil
		})
		if err == nil {
			break
		}
		log.Warn().Err(err).Msg("DoGet failed, retrying...")
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch pairs after retries")
	}

	log.Info().Int64("pairs", rows).Dur("elapsed", time.Since(start)).Msg("Received pairs")
	if rows == 0 {
		log.Fatal().Msg("No pairs received")
	}

	fmt.Println("VERIFICATION PASSED")
}
