package notify

import (
	"context"
	"sync"
)

// Message is one captured publication.
type Message struct {
	Topic   string
	Payload []byte
}

// MockPublisher records publications for tests.
type MockPublisher struct {
	mu       sync.Mutex
	messages []Message
	closed   bool
}

func NewMockPublisher() *MockPublisher { return &MockPublisher{} }

func (p *MockPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	buf := make([]byte, len(payload))
	copy(buf, payload)
	p.messages = append(p.messages, Message{Topic: topic, Payload: buf})
	return nil
}

func (p *MockPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Messages returns a copy of everything published so far.
func (p *MockPublisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Message, len(p.messages))
	copy(out, p.messages)
	return out
}

// Closed reports whether Close was called.
func (p *MockPublisher) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
