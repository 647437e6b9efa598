package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/asterview/asterview/internal/store"
	"github.com/asterview/asterview/internal/types"
)

// Callback status labels surfaced to the report UI.
const (
	StatusLabelClientCalledBack = "client called back"
	StatusLabelAgentCalledBack  = "agent called back"
	StatusLabelNoCallback       = "no callback"
)

// shortCallSeconds is the answered-duration cutoff below which a call is
// still treated as abandoned, whatever its terminal event said.
const shortCallSeconds = 5

// IsEffectivelyAbandoned applies the single classification rule used
// everywhere: abandoned status, or an answered talk time too short to
// count as handled.
func IsEffectivelyAbandoned(c *types.Call) bool {
	if c.Status == types.StatusAbandoned {
		return true
	}
	return c.Duration > 0 && c.Duration <= shortCallSeconds
}

// CallbackConfig tunes the correlation search.
type CallbackConfig struct {
	Window             time.Duration // search horizon past the abandoned call's start
	MinBillableSeconds int           // candidate CDR billsec floor
	ChunkSize          int           // abandoned calls correlated per batch
	MinNumberLength    int           // internal/external boundary for the outbound leg
}

func (cfg CallbackConfig) withDefaults() CallbackConfig {
	if cfg.Window <= 0 {
		cfg.Window = 2 * time.Hour
	}
	if cfg.MinBillableSeconds <= 0 {
		cfg.MinBillableSeconds = 5
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.MinNumberLength <= 0 {
		cfg.MinNumberLength = 4
	}
	return cfg
}

// Correlator answers, for each abandoned call, whether the customer
// called back or was called back within the search window.
//
// Matching happens per chunk of abandoned calls: a callback landing in a
// different chunk's result set is not found. That is a deliberate
// scale/accuracy trade-off carried over from the batched lookups, not a
// bug to paper over.
type Correlator struct {
	store  store.EventStore
	cfg    CallbackConfig
	logger zerolog.Logger
}

// NewCorrelator creates a Correlator over the given store.
func NewCorrelator(st store.EventStore, cfg CallbackConfig, logger zerolog.Logger) *Correlator {
	return &Correlator{
		store:  st,
		cfg:    cfg.withDefaults(),
		logger: logger.With().Str("component", "correlator").Logger(),
	}
}

// Correlate annotates every effectively-abandoned call that has a known
// client number and start time with a CallbackResult. Other calls are
// left untouched.
func (c *Correlator) Correlate(ctx context.Context, calls map[string]*types.Call, queues []string) error {
	var originals []*types.Call
	for _, call := range calls {
		if IsEffectivelyAbandoned(call) && call.ClientNumber != "" && call.StartTime != nil {
			originals = append(originals, call)
		}
	}
	if len(originals) == 0 {
		return nil
	}
	sort.Slice(originals, func(i, j int) bool {
		if originals[i].StartTime.Equal(*originals[j].StartTime) {
			return originals[i].CallID < originals[j].CallID
		}
		return originals[i].StartTime.Before(*originals[j].StartTime)
	})

	for start := 0; start < len(originals); start += c.cfg.ChunkSize {
		end := start + c.cfg.ChunkSize
		if end > len(originals) {
			end = len(originals)
		}
		if err := c.correlateChunk(ctx, originals[start:end], queues); err != nil {
			return fmt.Errorf("callback correlation: %w", err)
		}
	}
	return nil
}

func (c *Correlator) correlateChunk(ctx context.Context, chunk []*types.Call, queues []string) error {
	from := chunk[0].StartTime.Add(time.Second)
	to := chunk[0].StartTime.Add(c.cfg.Window)
	for _, orig := range chunk[1:] {
		if t := orig.StartTime.Add(c.cfg.Window); t.After(to) {
			to = t
		}
	}

	completions, err := c.store.GetCompletionEvents(ctx, queues, from, to)
	if err != nil {
		return fmt.Errorf("completion scan: %w", err)
	}
	events, err := c.store.GetQueueEvents(ctx, queues, from, to)
	if err != nil {
		return fmt.Errorf("candidate event scan: %w", err)
	}

	// Caller numbers come from the candidates' own ENTERQUEUE rows.
	enterNumbers := make(map[string]string)
	for _, ev := range events {
		if ev.EventType == types.EventEnterQueue && ev.Data2 != "" {
			if _, ok := enterNumbers[ev.CallID]; !ok {
				enterNumbers[ev.CallID] = ev.Data2
			}
		}
	}

	candidateIDs := make([]string, 0, len(completions))
	seen := make(map[string]struct{}, len(completions))
	for _, ev := range completions {
		if _, ok := seen[ev.CallID]; ok {
			continue
		}
		seen[ev.CallID] = struct{}{}
		candidateIDs = append(candidateIDs, ev.CallID)
	}

	cdrs, err := FetchCDRsChunked(ctx, c.store, candidateIDs, c.cfg.ChunkSize)
	if err != nil {
		return err
	}
	cdrByID := make(map[string]types.CallDetailRecord)
	for _, rec := range cdrs {
		if !rec.Answered() || rec.BillableSeconds < c.cfg.MinBillableSeconds {
			continue
		}
		cur, ok := cdrByID[rec.LinkedID]
		if !ok || rec.CallDate.Before(cur.CallDate) {
			cdrByID[rec.LinkedID] = rec
		}
	}
	recordings := ResolveRecordings(cdrs, "")

	// Outbound legs are only scanned when at least one call in the chunk
	// has no inbound match.
	var outbound []types.CallDetailRecord
	outboundLoaded := false

	matched := 0
	for _, orig := range chunk {
		res := c.matchClient(orig, completions, enterNumbers, cdrByID, recordings)
		if res == nil {
			if !outboundLoaded {
				outbound, err = c.loadOutbound(ctx, from, to)
				if err != nil {
					return err
				}
				outboundLoaded = true
			}
			res = c.matchAgent(orig, outbound)
		}
		if res == nil {
			res = &types.CallbackResult{Type: types.CallbackNone, Status: StatusLabelNoCallback}
		} else {
			matched++
		}
		orig.Callback = res
	}

	c.logger.Debug().
		Int("abandoned", len(chunk)).
		Int("candidates", len(candidateIDs)).
		Int("matched", matched).
		Time("window_from", from).
		Time("window_to", to).
		Msg("chunk correlated")
	return nil
}

func (c *Correlator) matchClient(orig *types.Call, completions []types.QueueEvent,
	enterNumbers map[string]string, cdrByID map[string]types.CallDetailRecord,
	recordings map[string]string) *types.CallbackResult {

	for _, ev := range completions {
		if ev.CallID == orig.CallID {
			continue
		}
		if !c.inWindow(*orig.StartTime, ev.Time) {
			continue
		}
		if !numbersMatch(orig.ClientNumber, enterNumbers[ev.CallID]) {
			continue
		}
		rec, ok := cdrByID[ev.CallID]
		if !ok {
			continue
		}

		when := ev.Time
		if !rec.CallDate.IsZero() && c.inWindow(*orig.StartTime, rec.CallDate) {
			when = rec.CallDate
		}
		file := recordings[ev.CallID]
		if file == "" {
			file = orig.RecordingFile
		}
		return &types.CallbackResult{
			Type:          types.CallbackClient,
			Status:        StatusLabelClientCalledBack,
			CallbackTime:  &when,
			RecordingFile: file,
			MatchedCallID: ev.CallID,
		}
	}
	return nil
}

func (c *Correlator) matchAgent(orig *types.Call, outbound []types.CallDetailRecord) *types.CallbackResult {
	for _, rec := range outbound {
		if rec.LinkedID == orig.CallID {
			continue
		}
		if !rec.Answered() || rec.BillableSeconds < c.cfg.MinBillableSeconds {
			continue
		}
		if !IsOutbound(rec, c.cfg.MinNumberLength) {
			continue
		}
		if !c.inWindow(*orig.StartTime, rec.CallDate) {
			continue
		}
		if !numbersMatch(orig.ClientNumber, rec.Destination) {
			continue
		}

		when := rec.CallDate
		file := rec.RecordingFile
		if file == "" {
			file = orig.RecordingFile
		}
		return &types.CallbackResult{
			Type:          types.CallbackAgent,
			Status:        StatusLabelAgentCalledBack,
			CallbackTime:  &when,
			RecordingFile: file,
			MatchedCallID: rec.LinkedID,
		}
	}
	return nil
}

func (c *Correlator) loadOutbound(ctx context.Context, from, to time.Time) ([]types.CallDetailRecord, error) {
	rows, err := c.store.GetCDRsByDateRange(ctx, from, to, 0)
	if err != nil {
		return nil, fmt.Errorf("outbound scan: %w", err)
	}
	return rows, nil
}

func (c *Correlator) inWindow(start, t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(start.Add(time.Second)) && !t.After(start.Add(c.cfg.Window))
}

// numbersMatch compares two caller numbers the way customers actually
// redial: exactly, or on the last 10 or last 9 digits, tolerating a
// differing country or trunk prefix.
func numbersMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if sa, sb := lastN(a, 10), lastN(b, 10); sa != "" && sa == sb {
		return true
	}
	if sa, sb := lastN(a, 9), lastN(b, 9); sa != "" && sa == sb {
		return true
	}
	return false
}

func lastN(s string, n int) string {
	if len(s) < n {
		return ""
	}
	return s[len(s)-n:]
}
