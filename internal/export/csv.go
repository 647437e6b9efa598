package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/asterview/asterview/internal/types"
)

// WriteCallsCSV writes the call list in the column order the report
// table shows.
func WriteCallsCSV(w io.Writer, calls []types.Call) error {
	cw := csv.NewWriter(w)
	header := []string{
		"callId", "queue", "status", "startTime", "connectTime", "endTime",
		"clientNumber", "agent", "waitTimeSec", "durationSec", "recording",
		"callbackType", "callbackTime", "callbackRecording",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, c := range calls {
		row := []string{
			c.CallID,
			c.QueueName,
			string(c.Status),
			formatTime(c.StartTime),
			formatTime(c.ConnectTime),
			formatTime(c.EndTime),
			c.ClientNumber,
			c.Agent,
			strconv.Itoa(c.WaitTime),
			strconv.Itoa(c.Duration),
			c.RecordingFile,
			"", "", "",
		}
		if c.Callback != nil {
			row[11] = string(c.Callback.Type)
			row[12] = formatTime(c.Callback.CallbackTime)
			row[13] = c.Callback.RecordingFile
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes the stats summary as a two-row CSV.
func WriteSummaryCSV(w io.Writer, s types.StatsSummary) error {
	cw := csv.NewWriter(w)
	header := []string{
		"total", "answered", "abandoned", "answerRate", "avgWaitSec",
		"slaRate", "asaSec", "abandonRate",
		"clientCallbacks", "agentCallbacks", "unhandledAbandoned",
	}
	row := []string{
		strconv.Itoa(s.Total),
		strconv.Itoa(s.Answered),
		strconv.Itoa(s.Abandoned),
		strconv.Itoa(s.AnswerRate),
		strconv.FormatFloat(s.AvgWaitSeconds, 'f', 1, 64),
		strconv.Itoa(s.SLARate),
		strconv.FormatFloat(s.ASASeconds, 'f', 1, 64),
		strconv.FormatFloat(s.AbandonRate, 'f', 1, 64),
		strconv.Itoa(s.ClientCallbacks),
		strconv.Itoa(s.AgentCallbacks),
		strconv.Itoa(s.UnhandledAbandoned),
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
