package report

import (
	"strconv"

	"github.com/rs/zerolog"

	"github.com/asterview/asterview/internal/types"
)

// Terminal event ranks. A terminal field set by a higher rank is never
// reverted by a lower one, so duplicate or out-of-order delivery cannot
// corrupt a finalized call.
const (
	rankNone     = 0
	rankAbandon  = 1
	rankComplete = 2
)

type callBuild struct {
	call         *types.Call
	terminalRank int
}

// Reconstructor folds raw queue events into per-call aggregates.
type Reconstructor struct {
	logger zerolog.Logger
}

// NewReconstructor creates a new Reconstructor.
func NewReconstructor(logger zerolog.Logger) *Reconstructor {
	return &Reconstructor{
		logger: logger.With().Str("component", "reconstructor").Logger(),
	}
}

// Reconstruct groups events by call id and applies them as a monotonic
// field-wise merge. A call starts as abandoned and only a terminal event
// changes that. Malformed data fields leave the corresponding call field
// unset; the row itself is never dropped.
func (r *Reconstructor) Reconstruct(events []types.QueueEvent) map[string]*types.Call {
	builds := make(map[string]*callBuild)

	for _, ev := range events {
		if ev.CallID == "" {
			continue
		}
		b, ok := builds[ev.CallID]
		if !ok {
			b = &callBuild{call: &types.Call{
				CallID:   ev.CallID,
				LinkedID: ev.CallID,
				Status:   types.StatusAbandoned,
			}}
			builds[ev.CallID] = b
		}
		c := b.call
		if c.QueueName == "" {
			c.QueueName = ev.QueueName
		}

		switch ev.EventType {
		case types.EventEnterQueue:
			if c.StartTime == nil && !ev.Time.IsZero() {
				t := ev.Time
				c.StartTime = &t
			}
			if c.ClientNumber == "" {
				c.ClientNumber = ev.Data2
			}
			if c.QueuePosition == 0 {
				if pos, err := strconv.Atoi(ev.Data3); err == nil {
					c.QueuePosition = pos
				} else if ev.Data3 != "" {
					r.logger.Debug().Str("callid", ev.CallID).Str("data3", ev.Data3).Msg("unparsable queue position")
				}
			}

		case types.EventConnect:
			if c.ConnectTime == nil && !ev.Time.IsZero() {
				t := ev.Time
				c.ConnectTime = &t
			}
			if c.Agent == "" {
				c.Agent = ev.Agent
			}

		case types.EventCompleteCaller, types.EventCompleteAgent:
			status := types.StatusCompletedByCaller
			if ev.EventType == types.EventCompleteAgent {
				status = types.StatusCompletedByAgent
			}
			r.applyTerminal(b, ev, rankComplete, func() {
				c.Status = status
				if talk, err := strconv.Atoi(ev.Data2); err == nil {
					c.Duration = talk
				}
				if hold, err := strconv.Atoi(ev.Data1); err == nil {
					c.WaitTime = hold
				}
				if c.Agent == "" {
					c.Agent = ev.Agent
				}
			})

		case types.EventAbandon, types.EventExitWithTimeout:
			r.applyTerminal(b, ev, rankAbandon, func() {
				c.Status = types.StatusAbandoned
				if wait, err := strconv.Atoi(ev.Data3); err == nil {
					c.WaitTime = wait
				}
			})
		}
	}

	calls := make(map[string]*types.Call, len(builds))
	for id, b := range builds {
		calls[id] = b.call
	}
	return calls
}

// applyTerminal applies a terminal event's own fields. A strictly higher
// rank overwrites; an equal rank (a duplicate) only fills what is still
// unset; a lower rank is ignored entirely.
func (r *Reconstructor) applyTerminal(b *callBuild, ev types.QueueEvent, rank int, apply func()) {
	if rank < b.terminalRank {
		return
	}
	if rank == b.terminalRank && b.terminalRank != rankNone {
		if b.call.EndTime == nil && !ev.Time.IsZero() {
			t := ev.Time
			b.call.EndTime = &t
		}
		return
	}
	b.terminalRank = rank
	if !ev.Time.IsZero() {
		t := ev.Time
		b.call.EndTime = &t
	}
	apply()
}
