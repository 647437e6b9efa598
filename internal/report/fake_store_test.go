package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asterview/asterview/internal/types"
)

// fakeStore serves canned rows the way the SQL store would: time-range
// filtered, ordered by time.
type fakeStore struct {
	events []types.QueueEvent
	cdrs   []types.CallDetailRecord

	// ids whose chunk lookup should fail
	failIDs map[string]bool

	mu         sync.Mutex
	idLookups  [][]string
	rangeCalls int
	eventCalls int
}

func (f *fakeStore) GetQueueEvents(_ context.Context, queues []string, start, end time.Time) ([]types.QueueEvent, error) {
	f.mu.Lock()
	f.eventCalls++
	f.mu.Unlock()

	var out []types.QueueEvent
	for _, ev := range f.events {
		if ev.Time.Before(start) || !ev.Time.Before(end) {
			continue
		}
		if !queueMatches(queues, ev.QueueName) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeStore) GetCompletionEvents(ctx context.Context, queues []string, start, end time.Time) ([]types.QueueEvent, error) {
	all, err := f.GetQueueEvents(ctx, queues, start, end)
	if err != nil {
		return nil, err
	}
	var out []types.QueueEvent
	for _, ev := range all {
		if ev.EventType == types.EventCompleteCaller || ev.EventType == types.EventCompleteAgent {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeStore) GetCDRsByIDs(_ context.Context, ids []string) ([]types.CallDetailRecord, error) {
	f.mu.Lock()
	f.idLookups = append(f.idLookups, append([]string(nil), ids...))
	f.mu.Unlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if f.failIDs[id] {
			return nil, fmt.Errorf("simulated lookup failure for %s", id)
		}
		want[id] = true
	}
	var out []types.CallDetailRecord
	for _, rec := range f.cdrs {
		if want[rec.LinkedID] {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) GetCDRsByDateRange(_ context.Context, start, end time.Time, minLength int) ([]types.CallDetailRecord, error) {
	f.mu.Lock()
	f.rangeCalls++
	f.mu.Unlock()

	var out []types.CallDetailRecord
	for _, rec := range f.cdrs {
		if rec.CallDate.Before(start) || !rec.CallDate.Before(end) {
			continue
		}
		if minLength > 0 && len(rec.Source) < minLength {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func queueMatches(queues []string, name string) bool {
	if len(queues) == 0 {
		return true
	}
	for _, q := range queues {
		if q == name {
			return true
		}
	}
	return false
}
