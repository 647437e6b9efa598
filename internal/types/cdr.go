package types

import "time"

// CDR dispositions as written by the PBX
const (
	DispositionAnswered = "ANSWERED"
	DispositionNoAnswer = "NO ANSWER"
	DispositionBusy     = "BUSY"
	DispositionFailed   = "FAILED"
)

// CallDetailRecord is one row of the CDR table. LinkedID ties the row
// to the queue-event call id; UniqueID is the row's own identity.
type CallDetailRecord struct {
	UniqueID             string    `json:"uniqueId"`
	LinkedID             string    `json:"linkedId"`
	CallDate             time.Time `json:"callDate"`
	Source               string    `json:"source"`
	Destination          string    `json:"destination"`
	Disposition          string    `json:"disposition"`
	BillableSeconds      int       `json:"billableSeconds"`
	Duration             int       `json:"duration"`
	RecordingFile        string    `json:"recordingFile"`
	Channel              string    `json:"channel"`
	OutboundCallerNumber string    `json:"outboundCallerNumber"`
}

// Answered reports whether the leg was actually connected.
func (c CallDetailRecord) Answered() bool {
	return c.Disposition == DispositionAnswered
}
