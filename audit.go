package goHawcx

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Audit event types recorded by the client.
const (
	AuditAuthStarted       = "auth_started"
	AuditAuthSucceeded     = "auth_succeeded"
	AuditAuthFailed        = "auth_failed"
	AuditAuthCancelled     = "auth_cancelled"
	AuditAuthCommandFailed = "auth_command_failed"
	AuditOTPSubmitted      = "otp_submitted"
	AuditWebLogin          = "web_login"
	AuditWebApprove        = "web_approve"
	AuditPushApproved      = "push_approved"
	AuditPushDeclined      = "push_declined"
	AuditTokensStored      = "tokens_stored"
)

// AuditEvent is one lifecycle record. User identifiers are fingerprinted before
// they reach a sink.
type AuditEvent struct {
	Timestamp       time.Time         `json:"timestamp"`
	EventType       string            `json:"event_type"`
	InvocationID    string            `json:"invocation_id,omitempty"`
	UserFingerprint string            `json:"user_fp,omitempty"`
	Platform        string            `json:"platform,omitempty"`
	Success         bool              `json:"success"`
	Code            string            `json:"code,omitempty"`
	Error           string            `json:"error,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink discards every event.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink forwards events to a buffered channel. Useful in tests.
type ChannelSink struct {
	events chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(_ context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.writer.Write(data)
}
