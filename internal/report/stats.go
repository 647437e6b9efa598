package report

import (
	"math"

	"github.com/asterview/asterview/internal/types"
)

// maxWaitSampleSeconds discards wait samples that are clearly parse
// noise (negative or an hour and longer).
const maxWaitSampleSeconds = 3600

// Summarize reduces a call collection into the report headline numbers.
// Every ratio guards total == 0 by returning 0.
func Summarize(calls []types.Call, slaThresholdSeconds int) types.StatsSummary {
	s := types.StatsSummary{Total: len(calls)}
	if s.Total == 0 {
		return s
	}

	var (
		waitSum         float64
		waitCount       int
		answeredWaitSum float64
		answeredWaitN   int
		answeredInSLA   int
	)

	for i := range calls {
		c := &calls[i]
		abandoned := IsEffectivelyAbandoned(c)
		if abandoned {
			s.Abandoned++
			if c.Callback != nil {
				switch c.Callback.Type {
				case types.CallbackClient:
					s.ClientCallbacks++
				case types.CallbackAgent:
					s.AgentCallbacks++
				}
			}
		} else {
			s.Answered++
		}

		wait, ok := waitSample(c)
		if !ok {
			continue
		}
		waitSum += wait
		waitCount++
		if !abandoned {
			answeredWaitSum += wait
			answeredWaitN++
			if wait <= float64(slaThresholdSeconds) {
				answeredInSLA++
			}
		}
	}

	total := float64(s.Total)
	s.AnswerRate = int(math.Round(float64(s.Answered) / total * 100))
	s.SLARate = int(math.Round(float64(answeredInSLA) / total * 100))
	s.AbandonRate = math.Round(float64(s.Abandoned)/total*1000) / 10

	if waitCount > 0 {
		s.AvgWaitSeconds = waitSum / float64(waitCount)
	}
	if answeredWaitN > 0 {
		s.ASASeconds = answeredWaitSum / float64(answeredWaitN)
	} else {
		s.ASASeconds = s.AvgWaitSeconds
	}

	s.UnhandledAbandoned = s.Abandoned - s.ClientCallbacks - s.AgentCallbacks
	if s.UnhandledAbandoned < 0 {
		s.UnhandledAbandoned = 0
	}
	return s
}

// waitSample is the call's explicit wait time, else connect minus start
// when both are present, filtered to [0, 3600).
func waitSample(c *types.Call) (float64, bool) {
	if c.WaitTime > 0 {
		w := float64(c.WaitTime)
		if w < maxWaitSampleSeconds {
			return w, true
		}
		return 0, false
	}
	if c.ConnectTime != nil && c.StartTime != nil {
		w := c.ConnectTime.Sub(*c.StartTime).Seconds()
		if w >= 0 && w < maxWaitSampleSeconds {
			return w, true
		}
	}
	return 0, false
}
