package goHawcx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrEthical07/goHawcx/emitter"
	"go.uber.org/zap"
)

// WebSessionStatus is the UI-facing phase of a web session command.
type WebSessionStatus string

const (
	WebSessionIdle    WebSessionStatus = "idle"
	WebSessionLoading WebSessionStatus = "loading"
	WebSessionSuccess WebSessionStatus = "success"
	WebSessionError   WebSessionStatus = "error"
)

// sessionErrorCode is used when a failed command carries no engine code.
const sessionErrorCode = "session_error"

// WebSessionState is a snapshot of a WebSessionMachine.
type WebSessionState struct {
	Status WebSessionStatus
	Error  *ErrorPayload
}

// WebSessionMachine projects the session channel into a WebSessionState. Every
// session event reprojects the state, including a late event from an earlier call.
type WebSessionMachine struct {
	client *Client

	mu       sync.Mutex
	state    WebSessionState
	disposed bool
	sub      emitter.Subscription

	notify *notifier[WebSessionState]
}

// NewWebSessionMachine subscribes to the client's session channel until Dispose.
func NewWebSessionMachine(client *Client) *WebSessionMachine {
	m := &WebSessionMachine{
		client:    client,
		state:     WebSessionState{Status: WebSessionIdle},
		notify:    newNotifier[WebSessionState]("session.state"),
	}
	m.sub = client.hub.Session().Subscribe(m.apply)
	return m
}

// State returns the current snapshot.
func (m *WebSessionMachine) State() WebSessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe observes every state change, in the order the state changed.
func (m *WebSessionMachine) Subscribe(fn func(WebSessionState)) emitter.Subscription {
	return m.notify.subscribe(fn)
}

func (m *WebSessionMachine) apply(event SessionEvent) {
	switch e := event.(type) {
	case SessionSuccess:
		m.set(WebSessionState{Status: WebSessionSuccess})
	case SessionFailure:
		p := e.ErrorPayload
		m.set(WebSessionState{Status: WebSessionError, Error: &p})
	default:
		m.client.log.Error("web session machine ignored unknown event",
			zap.String("type", event.Type()),
			zap.String("go_type", fmt.Sprintf("%T", event)),
		)
	}
}

func (m *WebSessionMachine) set(next WebSessionState) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.state = next
	m.notify.push(next)
	m.mu.Unlock()
	m.notify.flush()
}

// WebLogin moves to loading and submits pin.
func (m *WebSessionMachine) WebLogin(ctx context.Context, pin string) error {
	return m.run(func() error { return m.client.WebLogin(ctx, pin, nil) })
}

// WebApprove moves to loading and approves with token.
func (m *WebSessionMachine) WebApprove(ctx context.Context, token string) error {
	return m.run(func() error { return m.client.WebApprove(ctx, token, nil) })
}

// GetDeviceDetails moves to loading and requests device details.
func (m *WebSessionMachine) GetDeviceDetails(ctx context.Context) error {
	return m.run(func() error { return m.client.GetDeviceDetails(ctx) })
}

// run enters loading before cmd. Rejected input restores the previous state; a
// rejected command moves to error unless an event already moved the state on.
func (m *WebSessionMachine) run(cmd func() error) error {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return ErrMachineDisposed
	}
	prev := m.state
	m.state = WebSessionState{Status: WebSessionLoading}
	m.notify.push(m.state)
	m.mu.Unlock()
	m.notify.flush()

	err := cmd()
	if err == nil {
		return nil
	}

	next := prev
	if !errors.Is(err, ErrValidation) {
		p := ErrorPayload{Code: sessionErrorCode, Message: err.Error()}
		if be, ok := asBridgeError(err); ok && be.Code != "" {
			p.Code = be.Code
		}
		next = WebSessionState{Status: WebSessionError, Error: &p}
	}

	m.mu.Lock()
	if !m.disposed && m.state.Status == WebSessionLoading {
		m.state = next
		m.notify.push(next)
	}
	m.mu.Unlock()
	m.notify.flush()
	return err
}

// Reset returns to idle.
func (m *WebSessionMachine) Reset() {
	m.set(WebSessionState{Status: WebSessionIdle})
}

// Dispose detaches from the session channel and drops every observer. Idempotent.
func (m *WebSessionMachine) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	sub := m.sub
	m.mu.Unlock()

	sub.Remove()
	m.notify.close()
}
