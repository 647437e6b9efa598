package report

import (
	"testing"

	"github.com/asterview/asterview/internal/types"
)

func TestResolveRecordingsPriority(t *testing.T) {
	records := []types.CallDetailRecord{
		{LinkedID: "c1", Disposition: types.DispositionAnswered, RecordingFile: "in-z.mp3"},
		{LinkedID: "c1", Disposition: types.DispositionAnswered, RecordingFile: "q-2000-y.mp3"},
		{LinkedID: "c1", Disposition: types.DispositionAnswered, RecordingFile: "q-1049-x.mp3"},
	}

	got := ResolveRecordings(records, "1049")
	if got["c1"] != "q-1049-x.mp3" {
		t.Fatalf("expected q-1049-x.mp3, got %q", got["c1"])
	}
}

func TestResolveRecordingsTiers(t *testing.T) {
	tests := []struct {
		name      string
		queueName string
		files     []string
		want      string
	}{
		{
			name:      "generic queue prefix beats plain file",
			queueName: "1049",
			files:     []string{"out-123.wav", "q-2000-a.wav"},
			want:      "q-2000-a.wav",
		},
		{
			name:      "lexicographic tie-break inside a tier",
			queueName: "",
			files:     []string{"q-b.wav", "q-a.wav"},
			want:      "q-a.wav",
		},
		{
			name:      "plain files only",
			queueName: "1049",
			files:     []string{"zzz.wav", "aaa.wav"},
			want:      "aaa.wav",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []types.CallDetailRecord
			for _, f := range tt.files {
				records = append(records, types.CallDetailRecord{
					LinkedID:      "c",
					Disposition:   types.DispositionAnswered,
					RecordingFile: f,
				})
			}
			got := ResolveRecordings(records, tt.queueName)
			if got["c"] != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got["c"])
			}
		})
	}
}

func TestResolveRecordingsSkipsUnanswered(t *testing.T) {
	records := []types.CallDetailRecord{
		{LinkedID: "c1", Disposition: types.DispositionNoAnswer, RecordingFile: "q-1049-x.mp3"},
		{LinkedID: "c2", Disposition: types.DispositionAnswered, RecordingFile: ""},
	}

	got := ResolveRecordings(records, "1049")
	if len(got) != 0 {
		t.Fatalf("expected no recordings, got %v", got)
	}
}
