package store

import (
	"context"
	"errors"
	"time"

	"github.com/asterview/asterview/internal/types"
)

// ErrUnavailable marks a failure to reach the underlying database. The
// core propagates it unchanged; retry policy, if any, lives in the caller.
var ErrUnavailable = errors.New("event store unavailable")

// EventStore is the read-only view over the PBX queue event log and CDR
// table. Implementations choose their own query shape; callers only rely
// on this contract.
type EventStore interface {
	// GetQueueEvents returns queue events for the given queues within
	// [start, end), ordered by event time. Empty queues means all queues.
	GetQueueEvents(ctx context.Context, queues []string, start, end time.Time) ([]types.QueueEvent, error)

	// GetCompletionEvents returns only COMPLETECALLER/COMPLETEAGENT
	// events within [start, end), ordered by event time. Used by the
	// callback correlation search.
	GetCompletionEvents(ctx context.Context, queues []string, start, end time.Time) ([]types.QueueEvent, error)

	// GetCDRsByIDs returns CDR rows whose linked id is in ids. The
	// caller is responsible for keeping ids within the store's batch
	// size limit.
	GetCDRsByIDs(ctx context.Context, ids []string) ([]types.CallDetailRecord, error)

	// GetCDRsByDateRange returns CDR rows within [start, end) whose
	// source number is at least minLength digits, for queue-unscoped
	// inbound/outbound scans.
	GetCDRsByDateRange(ctx context.Context, start, end time.Time, minLength int) ([]types.CallDetailRecord, error)
}
