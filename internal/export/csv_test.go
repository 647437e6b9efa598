package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/asterview/asterview/internal/types"
)

func TestWriteCallsCSV(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	connect := start.Add(20 * time.Second)
	end := start.Add(3 * time.Minute)
	cbTime := start.Add(15 * time.Minute)

	calls := []types.Call{
		{
			CallID:        "1741597200.100",
			QueueName:     "support",
			Status:        types.StatusCompletedByCaller,
			StartTime:     &start,
			ConnectTime:   &connect,
			EndTime:       &end,
			ClientNumber:  "79991234567",
			Agent:         "agent1",
			WaitTime:      20,
			Duration:      160,
			RecordingFile: "q-support-a.mp3",
		},
		{
			CallID:       "1741597500.101",
			QueueName:    "support",
			Status:       types.StatusAbandoned,
			StartTime:    &start,
			ClientNumber: "74951112233",
			WaitTime:     40,
			Callback: &types.CallbackResult{
				Type:          types.CallbackClient,
				Status:        "client called back",
				CallbackTime:  &cbTime,
				RecordingFile: "q-support-cb.mp3",
			},
		},
	}

	var buf bytes.Buffer
	if err := WriteCallsCSV(&buf, calls); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if len(rows[0]) != 14 {
		t.Fatalf("expected 14 columns, got %d", len(rows[0]))
	}
	if rows[0][0] != "callId" || rows[0][13] != "callbackRecording" {
		t.Errorf("unexpected header %v", rows[0])
	}

	answered := rows[1]
	if answered[0] != "1741597200.100" || answered[2] != string(types.StatusCompletedByCaller) {
		t.Errorf("unexpected answered row %v", answered)
	}
	if answered[3] != "2025-03-10 09:00:00" || answered[5] != "2025-03-10 09:03:00" {
		t.Errorf("unexpected timestamps in %v", answered)
	}
	if answered[11] != "" || answered[12] != "" {
		t.Errorf("answered call must have empty callback columns, got %v", answered)
	}

	abandoned := rows[2]
	if abandoned[4] != "" || abandoned[5] != "" {
		t.Errorf("abandoned call must have empty connect/end times, got %v", abandoned)
	}
	if abandoned[11] != string(types.CallbackClient) {
		t.Errorf("expected callback type column, got %q", abandoned[11])
	}
	if abandoned[12] != "2025-03-10 09:15:00" {
		t.Errorf("unexpected callback time %q", abandoned[12])
	}
	if abandoned[13] != "q-support-cb.mp3" {
		t.Errorf("unexpected callback recording %q", abandoned[13])
	}
}

func TestWriteCallsCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCallsCSV(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected header only, got %d rows", len(rows))
	}
}

func TestWriteSummaryCSV(t *testing.T) {
	s := types.StatsSummary{
		Total:              10,
		Answered:           7,
		Abandoned:          3,
		AnswerRate:         70,
		AvgWaitSeconds:     22.5,
		SLARate:            60,
		ASASeconds:         18.0,
		AbandonRate:        30.0,
		ClientCallbacks:    1,
		AgentCallbacks:     1,
		UnhandledAbandoned: 1,
	}

	var buf bytes.Buffer
	if err := WriteSummaryCSV(&buf, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + row, got %d", len(rows))
	}
	if len(rows[1]) != 11 {
		t.Fatalf("expected 11 columns, got %d", len(rows[1]))
	}
	if rows[1][0] != "10" || rows[1][3] != "70" {
		t.Errorf("unexpected counts in %v", rows[1])
	}
	if rows[1][4] != "22.5" || rows[1][7] != "30.0" {
		t.Errorf("unexpected rates in %v", rows[1])
	}
}
