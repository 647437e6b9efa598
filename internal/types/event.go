package types

import "time"

// QueueEventType identifies a queue_log event
type QueueEventType string

const (
	EventEnterQueue      QueueEventType = "ENTERQUEUE"
	EventConnect         QueueEventType = "CONNECT"
	EventCompleteCaller  QueueEventType = "COMPLETECALLER"
	EventCompleteAgent   QueueEventType = "COMPLETEAGENT"
	EventAbandon         QueueEventType = "ABANDON"
	EventExitWithTimeout QueueEventType = "EXITWITHTIMEOUT"
)

// IsTerminal reports whether the event ends a call's life in the queue.
func (t QueueEventType) IsTerminal() bool {
	switch t {
	case EventCompleteCaller, EventCompleteAgent, EventAbandon, EventExitWithTimeout:
		return true
	}
	return false
}

// QueueEvent is one row of the append-only queue event log.
// The meaning of Data1..Data5 depends on the event type:
//
//	ENTERQUEUE:     data2 = caller number, data3 = queue position
//	CONNECT:        data1 = hold time (seconds)
//	COMPLETE*:      data1 = hold time, data2 = talk time (seconds)
//	ABANDON:        data1 = position, data2 = original position, data3 = wait time
//	EXITWITHTIMEOUT: data1 = position, data3 = wait time
type QueueEvent struct {
	Time      time.Time      `json:"time"`
	EventType QueueEventType `json:"eventType"`
	CallID    string         `json:"callId"`
	QueueName string         `json:"queueName"`
	Agent     string         `json:"agent"`
	Data1     string         `json:"data1"`
	Data2     string         `json:"data2"`
	Data3     string         `json:"data3"`
	Data4     string         `json:"data4"`
	Data5     string         `json:"data5"`
}
