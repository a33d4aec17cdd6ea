package goHawcx

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goHawcx/emitter"
	"github.com/MrEthical07/goHawcx/internal/correlate"
	"github.com/MrEthical07/goHawcx/internal/redact"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client is the session client. It validates input, issues commands through its
// Bridge and correlates the events the engine later emits on the Hub.
//
// A Client is safe for concurrent use. Build one with [New].
type Client struct {
	cfg     Config
	bridge  Bridge
	hub     *Hub
	log     *zap.Logger
	metrics *Metrics
	audit   *auditDispatcher
	closed  atomic.Bool
	now     func() time.Time
}

// Platform returns the platform the client was configured for.
func (c *Client) Platform() Platform {
	return c.cfg.Platform
}

// Hub returns the channels this client listens on.
func (c *Client) Hub() *Hub {
	return c.hub
}

func (c *Client) checkOpen() error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return nil
}

func (c *Client) fingerprint(userID string) string {
	if len(c.cfg.Redact.FingerprintKey) > 0 {
		return redact.Keyed(c.cfg.Redact.FingerprintKey, userID)
	}
	return redact.Fingerprint(userID)
}

func (c *Client) rejectInput(err error) error {
	c.metrics.Inc(MetricValidationRejected)
	return err
}

func (c *Client) emitAudit(ctx context.Context, event AuditEvent) {
	if c.audit == nil {
		return
	}
	event.Timestamp = c.now()
	event.Platform = c.cfg.Platform.String()
	c.audit.Emit(ctx, event)
}

// Initialize validates cfg and hands the normalized configuration to the engine.
// Invalid configuration is reported as *ConfigError and never reaches the engine.
func (c *Client) Initialize(ctx context.Context, cfg InitializeConfig) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	normalized, err := cfg.Normalize(c.cfg.Platform)
	if err != nil {
		return c.rejectInput(err)
	}
	if err := c.bridge.Initialize(ctx, normalized); err != nil {
		c.log.Warn("initialize rejected by engine", zap.Error(err))
		return err
	}
	c.log.Info("engine initialized",
		zap.Bool("oauth", normalized.OAuthConfig != nil),
		zap.Bool("base_url", normalized.BaseURL != ""),
	)
	return nil
}

/*
====================================
AUTHENTICATE
====================================
*/

// Authenticate starts an authentication for userID and returns the pending
// invocation. The auth listener is attached before the command is dispatched, so
// events emitted while the command is in flight are not lost.
//
// Only input validation fails synchronously. A command failure, an auth_error and
// a cancellation all surface through the invocation.
func (c *Client) Authenticate(ctx context.Context, userID string, opts *AuthOptions) (*Invocation, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	id, err := ensureNonEmpty(userID, "userId")
	if err != nil {
		return nil, c.rejectInput(err)
	}

	var o AuthOptions
	if opts != nil {
		o = *opts
	}

	inv := &Invocation{id: uuid.NewString()}
	userFP := c.fingerprint(id)
	started := c.now()

	c.metrics.Inc(MetricAuthStarted)
	c.log.Debug("authenticate started", zap.String("invocation_id", inv.id), zap.String("user_fp", userFP))
	c.emitAudit(ctx, AuditEvent{
		EventType:       AuditAuthStarted,
		InvocationID:    inv.id,
		UserFingerprint: userFP,
		Success:         true,
	})

	inv.flow = correlate.Start(ctx, correlate.Options[AuthEvent, AuthSuccess]{
		Subscribe: c.hub.Auth().Subscribe,
		Command: func(ctx context.Context) error {
			return c.bridge.Authenticate(ctx, id)
		},
		Observe: c.observeAuth(inv.id, o),
		Match:   matchAuthOutcome,
		OnSettle: func(s correlate.Settlement[AuthSuccess], cause correlate.Cause) {
			c.recordSettlement(inv.id, userFP, started, s, cause)
		},
	})
	return inv, nil
}

func matchAuthOutcome(event AuthEvent) (correlate.Settlement[AuthSuccess], bool) {
	switch e := event.(type) {
	case AuthSuccess:
		return correlate.Resolve(e), true
	case AuthFailure:
		return correlate.Reject[AuthSuccess](NewAuthError(e.ErrorPayload)), true
	default:
		return correlate.Settlement[AuthSuccess]{}, false
	}
}

func (c *Client) observeAuth(invocationID string, o AuthOptions) func(AuthEvent) {
	return func(event AuthEvent) {
		if o.OnEvent != nil {
			c.guard(invocationID, "OnEvent", func() { o.OnEvent(event) })
		}
		switch e := event.(type) {
		case OTPRequired:
			if o.OnOTPRequired != nil {
				c.guard(invocationID, "OnOTPRequired", o.OnOTPRequired)
			}
		case AuthorizationCode:
			if o.OnAuthorizationCode != nil {
				c.guard(invocationID, "OnAuthorizationCode", func() { o.OnAuthorizationCode(e) })
			}
		case AdditionalVerificationRequired:
			if o.OnAdditionalVerificationRequired != nil {
				c.guard(invocationID, "OnAdditionalVerificationRequired", func() { o.OnAdditionalVerificationRequired(e) })
			}
		}
	}
}

// guard runs a caller-supplied callback and recovers its panic. invocationID is
// empty for session observers.
func (c *Client) guard(invocationID, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.metrics.Inc(MetricListenerPanic)
			c.log.Error("callback panicked",
				zap.String("invocation_id", invocationID),
				zap.String("callback", name),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	fn()
}

func (c *Client) recordSettlement(invocationID, userFP string, started time.Time, s correlate.Settlement[AuthSuccess], cause correlate.Cause) {
	c.metrics.Observe(MetricAuthSettleLatency, c.now().Sub(started))

	event := AuditEvent{
		InvocationID:    invocationID,
		UserFingerprint: userFP,
	}

	switch cause {
	case correlate.CauseCommand:
		c.metrics.Inc(MetricAuthCommandFailed)
		c.log.Warn("authenticate command failed", zap.String("invocation_id", invocationID), zap.Error(s.Err))
		event.EventType = AuditAuthCommandFailed
		event.Error = s.Err.Error()
		if be, ok := asBridgeError(s.Err); ok {
			event.Code = be.Code
		}
	case correlate.CauseCancel:
		c.metrics.Inc(MetricAuthCancelled)
		c.log.Debug("authenticate cancelled", zap.String("invocation_id", invocationID))
		event.EventType = AuditAuthCancelled
		event.Code = AuthCancelledCode
	default:
		if s.Err != nil {
			c.metrics.Inc(MetricAuthFailed)
			event.EventType = AuditAuthFailed
			event.Error = s.Err.Error()
			var ae *AuthError
			if errors.As(s.Err, &ae) {
				event.Code = ae.Code
			}
			c.log.Debug("authenticate failed", zap.String("invocation_id", invocationID), zap.String("code", event.Code))
		} else {
			c.metrics.Inc(MetricAuthSucceeded)
			event.EventType = AuditAuthSucceeded
			event.Success = true
			event.Metadata = map[string]string{"login_flow": fmt.Sprint(s.Value.IsLoginFlow)}
			c.log.Debug("authenticate succeeded", zap.String("invocation_id", invocationID), zap.Bool("login_flow", s.Value.IsLoginFlow))
		}
	}

	c.emitAudit(context.Background(), event)
}

// SubmitOTP forwards a one-time code. The outcome arrives on the auth channel and,
// for a pending invocation, settles it.
func (c *Client) SubmitOTP(ctx context.Context, otp string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	code, err := ensureNonEmpty(otp, "otp")
	if err != nil {
		return c.rejectInput(err)
	}
	if err := c.bridge.SubmitOTP(ctx, code); err != nil {
		c.log.Warn("submit otp rejected", zap.Error(err))
		return err
	}
	c.metrics.Inc(MetricOTPSubmitted)
	c.emitAudit(ctx, AuditEvent{EventType: AuditOTPSubmitted, Success: true})
	return nil
}

/*
====================================
LISTENERS
====================================
*/

// AddAuthListener observes every auth event until the subscription is removed.
func (c *Client) AddAuthListener(handler func(AuthEvent)) emitter.Subscription {
	return c.hub.Auth().Subscribe(handler)
}

// AddSessionListener observes every session event.
func (c *Client) AddSessionListener(handler func(SessionEvent)) emitter.Subscription {
	return c.hub.Session().Subscribe(handler)
}

// AddPushListener observes every push event.
func (c *Client) AddPushListener(handler func(PushEvent)) emitter.Subscription {
	return c.hub.Push().Subscribe(handler)
}

// RemoveAllListeners detaches every listener on all three channels. Pending
// invocations stop receiving events and stay pending until cancelled.
func (c *Client) RemoveAllListeners() {
	c.hub.RemoveAllListeners()
}

/*
====================================
LIFECYCLE
====================================
*/

// Close flushes and stops the audit dispatcher. Commands issued afterwards fail with
// ErrClientClosed; pending invocations are left as they are.
func (c *Client) Close() {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.audit.Close()
	_ = c.log.Sync()
}

// MetricsSnapshot copies the client counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{}
	}
	return c.metrics.Snapshot()
}

// AuditDropped reports audit events dropped because the buffer was full.
func (c *Client) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}
