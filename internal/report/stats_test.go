package report

import (
	"testing"
	"time"

	"github.com/asterview/asterview/internal/types"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 20)
	if s.Total != 0 {
		t.Fatalf("expected total 0, got %d", s.Total)
	}
	if s.AnswerRate != 0 || s.SLARate != 0 || s.AbandonRate != 0 || s.ASASeconds != 0 {
		t.Errorf("zero-call summary must have zero rates, got %+v", s)
	}
}

func TestSummarizeCounts(t *testing.T) {
	calls := []types.Call{
		{Status: types.StatusCompletedByAgent, Duration: 120, WaitTime: 10},
		{Status: types.StatusCompletedByCaller, Duration: 90, WaitTime: 30},
		{Status: types.StatusAbandoned, WaitTime: 45},
		// answered but hung up immediately: counts as abandoned
		{Status: types.StatusCompletedByCaller, Duration: 4, WaitTime: 5},
	}
	s := Summarize(calls, 20)

	if s.Total != 4 {
		t.Fatalf("expected total 4, got %d", s.Total)
	}
	if s.Answered != 2 || s.Abandoned != 2 {
		t.Fatalf("expected 2 answered / 2 abandoned, got %d / %d", s.Answered, s.Abandoned)
	}
	if s.Answered+s.Abandoned != s.Total {
		t.Errorf("answered + abandoned must equal total")
	}
	if s.AnswerRate != 50 {
		t.Errorf("expected answer rate 50, got %d", s.AnswerRate)
	}
	if s.AbandonRate != 50.0 {
		t.Errorf("expected abandon rate 50.0, got %v", s.AbandonRate)
	}
	// only the 10s answered wait makes the threshold: 1/4 = 25
	if s.SLARate != 25 {
		t.Errorf("expected SLA rate 25, got %d", s.SLARate)
	}
	// answered waits 10 and 30
	if s.ASASeconds != 20 {
		t.Errorf("expected ASA 20, got %v", s.ASASeconds)
	}
	// all four waits: (10+30+45+5)/4
	if s.AvgWaitSeconds != 22.5 {
		t.Errorf("expected avg wait 22.5, got %v", s.AvgWaitSeconds)
	}
}

func TestSummarizeAbandonRateOneDecimal(t *testing.T) {
	calls := []types.Call{
		{Status: types.StatusAbandoned},
		{Status: types.StatusCompletedByAgent, Duration: 60},
		{Status: types.StatusCompletedByAgent, Duration: 60},
	}
	s := Summarize(calls, 20)
	// 1/3 → 33.333… rounded to one decimal
	if s.AbandonRate != 33.3 {
		t.Errorf("expected abandon rate 33.3, got %v", s.AbandonRate)
	}
}

func TestSummarizeSLABoundary(t *testing.T) {
	calls := []types.Call{
		{Status: types.StatusCompletedByAgent, Duration: 60, WaitTime: 20},
		{Status: types.StatusCompletedByAgent, Duration: 60, WaitTime: 21},
	}
	s := Summarize(calls, 20)
	// wait == threshold is in SLA, one step beyond is not
	if s.SLARate != 50 {
		t.Errorf("expected SLA rate 50, got %d", s.SLARate)
	}
}

func TestSummarizeWaitFromTimestamps(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	connect := start.Add(25 * time.Second)
	calls := []types.Call{
		{Status: types.StatusCompletedByAgent, Duration: 60, StartTime: &start, ConnectTime: &connect},
	}
	s := Summarize(calls, 30)
	if s.AvgWaitSeconds != 25 {
		t.Errorf("expected wait 25 derived from timestamps, got %v", s.AvgWaitSeconds)
	}
	if s.SLARate != 100 {
		t.Errorf("expected SLA rate 100, got %d", s.SLARate)
	}
}

func TestSummarizeDiscardsNoiseWaits(t *testing.T) {
	calls := []types.Call{
		{Status: types.StatusCompletedByAgent, Duration: 60, WaitTime: 7200}, // parse noise
		{Status: types.StatusCompletedByAgent, Duration: 60, WaitTime: 15},
	}
	s := Summarize(calls, 20)
	if s.AvgWaitSeconds != 15 {
		t.Errorf("expected noisy wait discarded, avg 15, got %v", s.AvgWaitSeconds)
	}
}

func TestSummarizeASAFallsBackToOverallAvg(t *testing.T) {
	// No answered call has a usable wait sample.
	calls := []types.Call{
		{Status: types.StatusCompletedByAgent, Duration: 60},
		{Status: types.StatusAbandoned, WaitTime: 40},
	}
	s := Summarize(calls, 20)
	if s.ASASeconds != s.AvgWaitSeconds {
		t.Errorf("expected ASA fallback to overall avg %v, got %v", s.AvgWaitSeconds, s.ASASeconds)
	}
	if s.AvgWaitSeconds != 40 {
		t.Errorf("expected avg wait 40, got %v", s.AvgWaitSeconds)
	}
}

func TestSummarizeCallbackCounts(t *testing.T) {
	calls := []types.Call{
		{Status: types.StatusAbandoned, Callback: &types.CallbackResult{Type: types.CallbackClient}},
		{Status: types.StatusAbandoned, Callback: &types.CallbackResult{Type: types.CallbackAgent}},
		{Status: types.StatusAbandoned, Callback: &types.CallbackResult{Type: types.CallbackNone}},
		{Status: types.StatusAbandoned},
	}
	s := Summarize(calls, 20)
	if s.ClientCallbacks != 1 || s.AgentCallbacks != 1 {
		t.Errorf("expected 1 client / 1 agent callback, got %d / %d", s.ClientCallbacks, s.AgentCallbacks)
	}
	if s.UnhandledAbandoned != 2 {
		t.Errorf("expected 2 unhandled abandoned, got %d", s.UnhandledAbandoned)
	}
}
