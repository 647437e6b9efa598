package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/asterview/asterview/internal/report"
	"github.com/asterview/asterview/internal/store"
)

// Target is one named EventStore implementation under test. The names
// usually identify query shapes ("twophase", "exists") over the same
// database.
type Target struct {
	Name  string
	Store store.EventStore
}

// Scenario describes the scan the harness replays against every target.
type Scenario struct {
	Queues     []string
	Start      time.Time
	End        time.Time
	ChunkSize  int
	Iterations int
}

// Result summarizes one target's latency distribution.
type Result struct {
	RunID      string
	Target     string
	Iterations int
	Errors     int
	Rows       int // rows returned by the last successful iteration

	MinMS  float64
	MeanMS float64
	P95MS  float64
	MaxMS  float64
}

// Run replays the scenario against every target and reports latency
// percentiles. Each iteration performs a full report scan: queue events,
// completion events, then the chunked CDR lookup for the scanned ids.
func Run(ctx context.Context, targets []Target, sc Scenario) []Result {
	if sc.Iterations <= 0 {
		sc.Iterations = 5
	}
	if sc.ChunkSize <= 0 {
		sc.ChunkSize = 1000
	}
	runID := uuid.NewString()

	results := make([]Result, 0, len(targets))
	for _, target := range targets {
		res := Result{RunID: runID, Target: target.Name, Iterations: sc.Iterations}
		durations := make([]float64, 0, sc.Iterations)

		for i := 0; i < sc.Iterations; i++ {
			started := time.Now()
			rows, err := scanOnce(ctx, target.Store, sc)
			if err != nil {
				res.Errors++
				continue
			}
			durations = append(durations, float64(time.Since(started).Microseconds())/1000)
			res.Rows = rows
		}

		if len(durations) > 0 {
			sort.Float64s(durations)
			res.MinMS = durations[0]
			res.MaxMS = durations[len(durations)-1]
			res.P95MS = percentile(durations, 0.95)
			var sum float64
			for _, d := range durations {
				sum += d
			}
			res.MeanMS = sum / float64(len(durations))
		}
		results = append(results, res)
	}
	return results
}

func scanOnce(ctx context.Context, st store.EventStore, sc Scenario) (int, error) {
	events, err := st.GetQueueEvents(ctx, sc.Queues, sc.Start, sc.End)
	if err != nil {
		return 0, err
	}
	completions, err := st.GetCompletionEvents(ctx, sc.Queues, sc.Start, sc.End)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(events))
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		if _, ok := seen[ev.CallID]; ok || ev.CallID == "" {
			continue
		}
		seen[ev.CallID] = struct{}{}
		ids = append(ids, ev.CallID)
	}
	cdrs, err := report.FetchCDRsChunked(ctx, st, ids, sc.ChunkSize)
	if err != nil {
		return 0, err
	}
	return len(events) + len(completions) + len(cdrs), nil
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// WriteCSV writes the results table to path.
func WriteCSV(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"runId", "target", "iterations", "errors", "rows", "minMs", "meanMs", "p95Ms", "maxMs"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write results header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.RunID,
			r.Target,
			strconv.Itoa(r.Iterations),
			strconv.Itoa(r.Errors),
			strconv.Itoa(r.Rows),
			strconv.FormatFloat(r.MinMS, 'f', 3, 64),
			strconv.FormatFloat(r.MeanMS, 'f', 3, 64),
			strconv.FormatFloat(r.P95MS, 'f', 3, 64),
			strconv.FormatFloat(r.MaxMS, 'f', 3, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write results row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
