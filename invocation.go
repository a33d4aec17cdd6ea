package goHawcx

import (
	"context"

	"github.com/MrEthical07/goHawcx/internal/correlate"
)

// AuthOptions are per-invocation observers of non-terminal auth events. Callbacks
// run on the emitting goroutine and must not block.
type AuthOptions struct {
	OnOTPRequired                    func()
	OnAuthorizationCode              func(AuthorizationCode)
	OnAdditionalVerificationRequired func(AdditionalVerificationRequired)
	// OnEvent sees every auth event received while pending, before the typed callback.
	OnEvent func(AuthEvent)
}

// WebOptions observe the first session event after a web command.
type WebOptions struct {
	OnEvent func(SessionEvent)
}

// BackendOAuthTokens are tokens issued by the application backend after it exchanged
// an authorization code.
type BackendOAuthTokens struct {
	AccessToken  string
	RefreshToken *string
}

// Invocation is one pending authentication. It settles exactly once: with the
// auth_success payload, with an *AuthError, with the command error, or with the
// cancellation error.
type Invocation struct {
	id   string
	flow *correlate.Flow[AuthSuccess]
}

// ID is a random identifier used to correlate logs and audit records.
func (i *Invocation) ID() string {
	return i.id
}

// Wait blocks until the invocation settles or ctx is done. Giving up on ctx does not
// cancel the invocation.
func (i *Invocation) Wait(ctx context.Context) (AuthSuccess, error) {
	return i.flow.Wait(ctx)
}

// Done is closed when the invocation settles.
func (i *Invocation) Done() <-chan struct{} {
	return i.flow.Done()
}

// Settled reports whether the invocation has an outcome.
func (i *Invocation) Settled() bool {
	return i.flow.Settled()
}

// Cancel rejects a pending invocation with the auth_cancelled error and stops
// listening for its events. It reports whether the invocation was still pending.
// The engine is not told; a later engine event is ignored.
func (i *Invocation) Cancel() bool {
	return i.flow.Cancel(newCancelledError())
}
