package goHawcx

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrEthical07/goHawcx/emitter"
	"go.uber.org/zap"
)

// AuthStatus is the UI-facing phase of an authentication flow.
type AuthStatus string

const (
	AuthIdle                           AuthStatus = "idle"
	AuthPending                        AuthStatus = "pending"
	AuthOTP                            AuthStatus = "otp"
	AuthAuthorizationCode              AuthStatus = "authorization_code"
	AuthAdditionalVerificationRequired AuthStatus = "additional_verification_required"
	AuthSucceeded                      AuthStatus = "success"
	AuthFailed                         AuthStatus = "error"
)

// AuthState is a snapshot of an AuthMachine. Only the field matching Status is set.
type AuthState struct {
	Status                 AuthStatus
	Attempts               int
	AuthorizationCode      *AuthorizationCode
	AdditionalVerification *AdditionalVerificationRequired
	Result                 *AuthSuccess
	Error                  *ErrorPayload
}

// AuthMachine projects the auth channel into an AuthState for a UI. It observes
// every auth event, not only those of its own invocations, and is independent of
// any Invocation: Reset never cancels one.
type AuthMachine struct {
	client *Client

	mu       sync.Mutex
	state    AuthState
	attempts int
	disposed bool
	sub      emitter.Subscription

	notify *notifier[AuthState]
}

// NewAuthMachine subscribes to the client's auth channel until Dispose.
func NewAuthMachine(client *Client) *AuthMachine {
	m := &AuthMachine{
		client:    client,
		state:     AuthState{Status: AuthIdle},
		notify:    newNotifier[AuthState]("auth.state"),
	}
	m.sub = client.hub.Auth().Subscribe(m.apply)
	return m
}

// State returns the current snapshot.
func (m *AuthMachine) State() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe observes every state change. Notifications arrive in the order the
// state changed, so the last one seen matches State.
func (m *AuthMachine) Subscribe(fn func(AuthState)) emitter.Subscription {
	return m.notify.subscribe(fn)
}

func (m *AuthMachine) apply(event AuthEvent) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	var next AuthState
	switch e := event.(type) {
	case OTPRequired:
		m.attempts++
		next = AuthState{Status: AuthOTP, Attempts: m.attempts}
	case AuthorizationCode:
		m.attempts = 0
		next = AuthState{Status: AuthAuthorizationCode, AuthorizationCode: &e}
	case AdditionalVerificationRequired:
		m.attempts = 0
		next = AuthState{Status: AuthAdditionalVerificationRequired, AdditionalVerification: &e}
	case AuthSuccess:
		m.attempts = 0
		next = AuthState{Status: AuthSucceeded, Result: &e}
	case AuthFailure:
		m.attempts = 0
		p := e.ErrorPayload
		next = AuthState{Status: AuthFailed, Error: &p}
	default:
		m.mu.Unlock()
		m.client.log.Error("auth machine ignored unknown event",
			zap.String("type", event.Type()),
			zap.String("go_type", fmt.Sprintf("%T", event)),
		)
		return
	}
	m.state = next
	m.notify.push(next)
	m.mu.Unlock()
	m.notify.flush()
}

// set replaces the state unless the machine is disposed.
func (m *AuthMachine) set(next AuthState) {
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

// Authenticate moves to pending, then starts an invocation. If the client rejects
// the call synchronously the previous state is restored.
func (m *AuthMachine) Authenticate(ctx context.Context, userID string, opts *AuthOptions) (*Invocation, error) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return nil, ErrMachineDisposed
	}
	prev := m.state
	m.state = AuthState{Status: AuthPending}
	m.notify.push(m.state)
	m.mu.Unlock()
	m.notify.flush()

	inv, err := m.client.Authenticate(ctx, userID, opts)
	if err != nil {
		m.mu.Lock()
		if !m.disposed && m.state.Status == AuthPending {
			m.state = prev
			m.notify.push(prev)
		}
		m.mu.Unlock()
		m.notify.flush()
		return nil, err
	}
	return inv, nil
}

// SubmitOTP forwards otp. State changes only when the engine answers.
func (m *AuthMachine) SubmitOTP(ctx context.Context, otp string) error {
	m.mu.Lock()
	disposed := m.disposed
	m.mu.Unlock()
	if disposed {
		return ErrMachineDisposed
	}
	return m.client.SubmitOTP(ctx, otp)
}

// Reset returns to idle and zeroes the OTP attempt counter.
func (m *AuthMachine) Reset() {
	m.mu.Lock()
	m.attempts = 0
	m.mu.Unlock()
	m.set(AuthState{Status: AuthIdle})
}

// Dispose detaches from the auth channel and drops every observer. Idempotent.
func (m *AuthMachine) Dispose() {
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
