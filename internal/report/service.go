package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/asterview/asterview/internal/metrics"
	"github.com/asterview/asterview/internal/store"
	"github.com/asterview/asterview/internal/types"
)

// Selection names one report request: a queue scope and a time range.
// An empty Queues slice selects every queue.
type Selection struct {
	Queues          []string
	Start           time.Time
	End             time.Time
	IncludeInternal bool // keep calls that fail the inbound heuristic
}

// Config tunes the report pipeline.
type Config struct {
	MinNumberLength     int           // internal/external number-length boundary
	SLAThresholdSeconds int           // answer-within bucket boundary
	CallbackWindow      time.Duration // callback search horizon
	BatchChunkSize      int           // max ids per store lookup
}

func (cfg Config) withDefaults() Config {
	if cfg.MinNumberLength <= 0 {
		cfg.MinNumberLength = 4
	}
	if cfg.SLAThresholdSeconds <= 0 {
		cfg.SLAThresholdSeconds = 20
	}
	if cfg.CallbackWindow <= 0 {
		cfg.CallbackWindow = 2 * time.Hour
	}
	if cfg.BatchChunkSize <= 0 {
		cfg.BatchChunkSize = 1000
	}
	return cfg
}

// Service runs the report pipeline: scan, reconstruct, resolve
// recordings, classify, correlate callbacks. Everything it builds is
// request-scoped; nothing survives the call.
type Service struct {
	store      store.EventStore
	cfg        Config
	reconstr   *Reconstructor
	correlator *Correlator
	logger     zerolog.Logger
}

// NewService creates a report Service over the given event store.
func NewService(st store.EventStore, cfg Config, logger zerolog.Logger) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		store:    st,
		cfg:      cfg,
		reconstr: NewReconstructor(logger),
		correlator: NewCorrelator(st, CallbackConfig{
			Window:          cfg.CallbackWindow,
			ChunkSize:       cfg.BatchChunkSize,
			MinNumberLength: cfg.MinNumberLength,
		}, logger),
		logger: logger.With().Str("component", "report").Logger(),
	}
}

// Calls reconstructs the ordered call list for a selection. Zero
// matching rows yields an empty list, not an error.
func (s *Service) Calls(ctx context.Context, sel Selection) ([]types.Call, error) {
	started := time.Now()
	m := metrics.Get()

	calls, err := s.buildCalls(ctx, sel)
	if err != nil {
		outcome := "error"
		var pbe *PartialBatchError
		if errors.As(err, &pbe) {
			outcome = "partial_batch"
			m.RecordChunkFailures(len(pbe.FailedChunks))
		}
		m.RecordReport(outcome, time.Since(started))
		return nil, err
	}

	m.RecordReport("ok", time.Since(started))
	m.RecordCallsReconstructed(len(calls))
	s.logger.Info().
		Strs("queues", sel.Queues).
		Time("start", sel.Start).
		Time("end", sel.End).
		Int("calls", len(calls)).
		Dur("took", time.Since(started)).
		Msg("report built")
	return calls, nil
}

func (s *Service) buildCalls(ctx context.Context, sel Selection) ([]types.Call, error) {
	queryStart := time.Now()
	events, err := s.store.GetQueueEvents(ctx, sel.Queues, sel.Start, sel.End)
	if err != nil {
		return nil, fmt.Errorf("queue event scan: %w", err)
	}
	metrics.Get().ObserveStoreQuery("queue_events", time.Since(queryStart))

	calls := s.reconstr.Reconstruct(events)
	if len(calls) == 0 {
		return []types.Call{}, nil
	}

	ids := make([]string, 0, len(calls))
	for id := range calls {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	queryStart = time.Now()
	cdrs, err := FetchCDRsChunked(ctx, s.store, ids, s.cfg.BatchChunkSize)
	if err != nil {
		return nil, fmt.Errorf("cdr lookup: %w", err)
	}
	metrics.Get().ObserveStoreQuery("cdrs_by_ids", time.Since(queryStart))

	// Earliest CDR leg per call carries the source/destination pair the
	// direction heuristic needs.
	firstCDR := make(map[string]types.CallDetailRecord)
	for _, rec := range cdrs {
		cur, ok := firstCDR[rec.LinkedID]
		if !ok || rec.CallDate.Before(cur.CallDate) {
			firstCDR[rec.LinkedID] = rec
		}
	}

	if !sel.IncludeInternal {
		for id := range calls {
			rec, ok := firstCDR[id]
			if !ok || !IsInbound(rec, s.cfg.MinNumberLength) {
				delete(calls, id)
			}
		}
	}

	recordings := ResolveRecordings(cdrs, singleQueue(sel.Queues))
	for id, call := range calls {
		if file, ok := recordings[id]; ok {
			call.RecordingFile = file
		}
		if call.Duration == 0 {
			if rec, ok := firstCDR[id]; ok && rec.Answered() {
				call.Duration = rec.BillableSeconds
			}
		}
	}

	if err := s.correlator.Correlate(ctx, calls, sel.Queues); err != nil {
		return nil, err
	}
	for _, call := range calls {
		if call.Callback != nil {
			metrics.Get().RecordCallback(string(call.Callback.Type))
		}
	}

	out := make([]types.Call, 0, len(calls))
	for _, call := range calls {
		out = append(out, *call)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].StartTime, out[j].StartTime
		switch {
		case ti == nil && tj == nil:
			return out[i].CallID < out[j].CallID
		case ti == nil:
			return false
		case tj == nil:
			return true
		case ti.Equal(*tj):
			return out[i].CallID < out[j].CallID
		default:
			return ti.Before(*tj)
		}
	})
	return out, nil
}

// Summarize reduces a call collection into its StatsSummary.
func (s *Service) Summarize(calls []types.Call) types.StatsSummary {
	return Summarize(calls, s.cfg.SLAThresholdSeconds)
}

func singleQueue(queues []string) string {
	if len(queues) == 1 {
		return queues[0]
	}
	return ""
}
