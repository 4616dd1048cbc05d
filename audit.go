package careauth

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// EventType labels a session lifecycle audit event.
type EventType string

const (
	// EventLogin records a successful credential sign-in.
	EventLogin EventType = "session.login"
	// EventLoginFailed records a rejected or failed sign-in attempt.
	EventLoginFailed EventType = "session.login_failed"
	// EventRestore records a successful startup restoration.
	EventRestore EventType = "session.restore"
	// EventRestoreAnonymous records a restoration that resolved to an
	// anonymous session, with or without stored tokens.
	EventRestoreAnonymous EventType = "session.restore_anonymous"
	// EventRefresh records a successful token pair rotation.
	EventRefresh EventType = "session.refresh"
	// EventRefreshFailed records a rotation failure and the forced logout
	// that follows it.
	EventRefreshFailed EventType = "session.refresh_failed"
	// EventLogout records an explicit logout.
	EventLogout EventType = "session.logout"
)

// Event is one session lifecycle occurrence handed to an [AuditSink].
type Event struct {
	Type      EventType `json:"event_type"`
	At        time.Time `json:"timestamp"`
	AccountID int64     `json:"account_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// AuditSink receives session lifecycle events. Emit is called from a single
// dispatcher goroutine and should not block for long; slow sinks cause
// events to be dropped upstream.
type AuditSink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink discards every event.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink forwards events to a buffered channel for the caller to drain.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan Event, buffer)}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events returns the channel the sink forwards to.
func (s *ChannelSink) Events() <-chan Event { return s.events }

// JSONWriterSink writes one JSON object per event, newline-delimited.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{writer: w}
}

func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
