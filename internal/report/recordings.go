package report

import (
	"strings"

	"github.com/asterview/asterview/internal/types"
)

// ResolveRecordings maps each linked id to its single best recording
// filename. Only answered CDR rows with a non-empty filename are
// considered. Queue-scoped recordings (q-{queue}-*) beat generic queue
// recordings (q-*), which beat everything else; ties inside a tier go to
// the lexicographically smallest filename.
func ResolveRecordings(records []types.CallDetailRecord, queueName string) map[string]string {
	type candidate struct {
		file string
		tier int
	}
	best := make(map[string]candidate)

	for _, rec := range records {
		if !rec.Answered() || rec.RecordingFile == "" || rec.LinkedID == "" {
			continue
		}
		c := candidate{file: rec.RecordingFile, tier: recordingTier(rec.RecordingFile, queueName)}
		cur, ok := best[rec.LinkedID]
		if !ok || c.tier < cur.tier || (c.tier == cur.tier && c.file < cur.file) {
			best[rec.LinkedID] = c
		}
	}

	out := make(map[string]string, len(best))
	for id, c := range best {
		out[id] = c.file
	}
	return out
}

func recordingTier(file, queueName string) int {
	if queueName != "" && strings.HasPrefix(file, "q-"+queueName+"-") {
		return 0
	}
	if strings.HasPrefix(file, "q-") {
		return 1
	}
	return 2
}
