package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/asterview/asterview/internal/bench"
	"github.com/asterview/asterview/internal/config"
	"github.com/asterview/asterview/internal/store"
)

// storebench replays the report scan against every query shape over the
// same database and writes a latency comparison CSV.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		queuesFlag = flag.String("queues", "", "comma-separated queue names (empty: all)")
		startFlag  = flag.String("start", "", "scan start (RFC3339 or YYYY-MM-DD)")
		endFlag    = flag.String("end", "", "scan end (RFC3339 or YYYY-MM-DD)")
		iterations = flag.Int("iterations", 5, "iterations per query shape")
		out        = flag.String("out", "storebench.csv", "results CSV path")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	start, err := parseTime(*startFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -start")
	}
	end, err := parseTime(*endFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -end")
	}

	var queues []string
	if *queuesFlag != "" {
		for _, q := range strings.Split(*queuesFlag, ",") {
			if q = strings.TrimSpace(q); q != "" {
				queues = append(queues, q)
			}
		}
	}

	ctx := context.Background()
	targets := make([]bench.Target, 0, 2)
	for _, shape := range []store.QueryShape{store.ShapeTwoPhase, store.ShapeExists} {
		st, err := store.OpenSQL(ctx, store.SQLConfig{
			Driver:       cfg.DBDriver,
			DSN:          cfg.DBDSN,
			Shape:        shape,
			MaxOpenConns: cfg.DBMaxOpenConns,
		}, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Str("shape", string(shape)).Msg("failed to open event store")
		}
		defer st.Close()
		targets = append(targets, bench.Target{Name: string(shape), Store: st})
	}

	results := bench.Run(ctx, targets, bench.Scenario{
		Queues:     queues,
		Start:      start,
		End:        end,
		ChunkSize:  cfg.BatchChunkSize,
		Iterations: *iterations,
	})

	for _, r := range results {
		log.Info().
			Str("target", r.Target).
			Int("iterations", r.Iterations).
			Int("errors", r.Errors).
			Int("rows", r.Rows).
			Float64("mean_ms", r.MeanMS).
			Float64("p95_ms", r.P95MS).
			Msg("shape benchmarked")
	}

	if err := bench.WriteCSV(*out, results); err != nil {
		log.Fatal().Err(err).Msg("failed to write results")
	}
	log.Info().Str("path", *out).Msg("results written")
}

func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
