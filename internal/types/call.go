package types

import "time"

// CallStatus represents the terminal lifecycle state of a reconstructed call
type CallStatus string

const (
	StatusAbandoned         CallStatus = "abandoned"
	StatusCompletedByCaller CallStatus = "completed_by_caller"
	StatusCompletedByAgent  CallStatus = "completed_by_agent"
	StatusAnswered          CallStatus = "answered"
	StatusNoAnswer          CallStatus = "no_answer"
	StatusBusy              CallStatus = "busy"
	StatusFailed            CallStatus = "failed"
	StatusUnknown           CallStatus = "unknown"
)

// Call is a per-call lifecycle aggregate reconstructed from queue events
// and enriched from CDR rows. Calls live for the duration of one report
// request; nothing persists them.
type Call struct {
	CallID        string     `json:"callId"`
	LinkedID      string     `json:"linkedId,omitempty"`
	QueueName     string     `json:"queueName"`
	Status        CallStatus `json:"status"`
	StartTime     *time.Time `json:"startTime,omitempty"`
	ConnectTime   *time.Time `json:"connectTime,omitempty"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	ClientNumber  string     `json:"clientNumber,omitempty"`
	QueuePosition int        `json:"queuePosition,omitempty"`
	Agent         string     `json:"agent,omitempty"`
	Duration      int        `json:"duration,omitempty"` // talk seconds
	WaitTime      int        `json:"waitTime,omitempty"` // queue seconds
	RecordingFile string     `json:"recordingFile,omitempty"`

	Callback *CallbackResult `json:"callback,omitempty"`
}

// CallbackType classifies the outcome of the callback search for an
// abandoned call.
type CallbackType string

const (
	CallbackClient CallbackType = "client_callback" // the customer called again
	CallbackAgent  CallbackType = "agent_callback"  // an agent called the customer back
	CallbackNone   CallbackType = "no_callback"
)

// CallbackResult is the correlation verdict for one abandoned call.
type CallbackResult struct {
	Type          CallbackType `json:"type"`
	Status        string       `json:"status"`
	CallbackTime  *time.Time   `json:"callbackTime,omitempty"`
	RecordingFile string       `json:"recordingFile,omitempty"`
	MatchedCallID string       `json:"matchedCallId,omitempty"`
}
