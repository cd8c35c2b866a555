package codereview

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Notification is one user-facing message: an error surfaced by the request
// pipeline or anything else the application wants the notification center to
// show.
type Notification struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Text      string    `json:"text"`
	Code      int       `json:"code,omitempty"`
	Status    int       `json:"status,omitempty"`
	Request   string    `json:"request_id,omitempty"`
	Source    string    `json:"source,omitempty"`
}

// Sink receives [Notification] values from the dispatcher.
type Sink interface {
	Emit(ctx context.Context, n Notification)
}

// NoOpSink is a [Sink] that silently discards all notifications.
type NoOpSink struct{}

// Emit implements [Sink].
func (NoOpSink) Emit(context.Context, Notification) {}

// ChannelSink is a buffered channel-based [Sink], for hosts that render
// notifications from their own event loop.
type ChannelSink struct {
	items chan Notification
}

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{items: make(chan Notification, buffer)}
}

// Emit implements [Sink].
func (s *ChannelSink) Emit(ctx context.Context, n Notification) {
	select {
	case s.items <- n:
	case <-ctx.Done():
	}
}

// Notifications returns the receive side of the sink.
func (s *ChannelSink) Notifications() <-chan Notification {
	return s.items
}

// JSONWriterSink is a [Sink] that writes JSON-encoded notifications to an
// [io.Writer], one per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{writer: w}
}

// Emit implements [Sink].
func (s *JSONWriterSink) Emit(_ context.Context, n Notification) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
