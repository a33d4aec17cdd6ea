package goHawcx

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrEthical07/goHawcx/emitter"
	"go.uber.org/zap"
)

// WebLogin submits a web-login pin. With opts.OnEvent set, the first session event
// that follows is handed to it; the session channel carries no correlation id, so
// that event may belong to a concurrent session command.
func (c *Client) WebLogin(ctx context.Context, pin string, opts *WebOptions) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	p, err := ensureNonEmpty(pin, "pin")
	if err != nil {
		return c.rejectInput(err)
	}
	err = c.runSessionCommand(ctx, opts, func(ctx context.Context) error {
		return c.bridge.WebLogin(ctx, p)
	})
	c.recordWeb(ctx, MetricWebLogin, AuditWebLogin, err)
	return err
}

// WebApprove approves a web session with token. See WebLogin for opts.
func (c *Client) WebApprove(ctx context.Context, token string, opts *WebOptions) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	t, err := ensureNonEmpty(token, "token")
	if err != nil {
		return c.rejectInput(err)
	}
	err = c.runSessionCommand(ctx, opts, func(ctx context.Context) error {
		return c.bridge.WebApprove(ctx, t)
	})
	c.recordWeb(ctx, MetricWebApprove, AuditWebApprove, err)
	return err
}

// runSessionCommand attaches the single-shot observer before dispatching cmd. An
// event that arrives while cmd is in flight is held until cmd returns: it reaches
// the observer only if cmd succeeded. On failure the observer is detached and the
// held event dropped.
func (c *Client) runSessionCommand(ctx context.Context, opts *WebOptions, cmd func(context.Context) error) error {
	if opts == nil || opts.OnEvent == nil {
		return cmd(ctx)
	}

	var (
		mu      sync.Mutex
		acked   bool
		held    SessionEvent
		holding bool
	)
	sub := emitter.Once(c.hub.Session(), func(event SessionEvent) {
		mu.Lock()
		if !acked {
			held, holding = event, true
			mu.Unlock()
			return
		}
		mu.Unlock()
		opts.OnEvent(event)
	})

	if err := cmd(ctx); err != nil {
		sub.Remove()
		mu.Lock()
		held, holding = nil, false
		mu.Unlock()
		return err
	}

	mu.Lock()
	acked = true
	event, deliver := held, holding
	held, holding = nil, false
	mu.Unlock()
	if deliver {
		c.guard("", "WebOptions.OnEvent", func() { opts.OnEvent(event) })
	}
	return nil
}

func (c *Client) recordWeb(ctx context.Context, id MetricID, eventType string, err error) {
	event := AuditEvent{EventType: eventType, Success: err == nil}
	if err != nil {
		c.log.Warn("session command rejected", zap.String("command", eventType), zap.Error(err))
		event.Error = err.Error()
		if be, ok := asBridgeError(err); ok {
			event.Code = be.Code
		}
	} else {
		c.metrics.Inc(id)
	}
	c.emitAudit(ctx, event)
}

// GetDeviceDetails asks the engine for device session details. The outcome
// arrives on the session channel.
func (c *Client) GetDeviceDetails(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if err := c.bridge.GetDeviceDetails(ctx); err != nil {
		c.log.Warn("device details rejected", zap.Error(err))
		return err
	}
	return nil
}

// StoreBackendOAuthTokens hands tokens the backend issued for userID to the engine
// for secure storage. A blank refresh token is sent as absent. Any refusal by the
// engine is reported as ErrTokenStorage.
func (c *Client) StoreBackendOAuthTokens(ctx context.Context, userID string, tokens BackendOAuthTokens) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	id, err := ensureNonEmpty(userID, "userId")
	if err != nil {
		return c.rejectInput(err)
	}
	access, err := ensureNonEmpty(tokens.AccessToken, "accessToken")
	if err != nil {
		return c.rejectInput(err)
	}
	refresh := optionalTrimmed(tokens.RefreshToken)

	stored, err := c.bridge.StoreBackendOAuthTokens(ctx, id, access, refresh)
	switch {
	case err != nil:
		err = fmt.Errorf("%w: %w", ErrTokenStorage, err)
	case !stored:
		err = ErrTokenStorage
	}

	event := AuditEvent{
		EventType:       AuditTokensStored,
		UserFingerprint: c.fingerprint(id),
		Success:         err == nil,
		Metadata:        map[string]string{"refresh_token": fmt.Sprint(refresh != nil)},
	}
	if err != nil {
		c.metrics.Inc(MetricTokensStoreFailed)
		c.log.Warn("backend token storage failed", zap.String("user_fp", event.UserFingerprint), zap.Error(err))
		event.Error = err.Error()
		c.emitAudit(ctx, event)
		return err
	}

	c.metrics.Inc(MetricTokensStored)
	c.emitAudit(ctx, event)
	return nil
}
