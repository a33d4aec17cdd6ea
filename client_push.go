package goHawcx

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"
)

const (
	apnsShapeMessage = "APNs tokens must be provided as byte arrays or Uint8Arrays"
	fcmShapeMessage  = "FCM token must be a string on Android"
)

// SetPushDeviceToken registers a push token for the configured platform. iOS needs a
// binary APNs token, Android a string FCM token; anything else is a *PlatformError.
func (c *Client) SetPushDeviceToken(ctx context.Context, token DeviceToken) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	switch c.cfg.Platform {
	case PlatformIOS:
		if !token.IsBytes() {
			return c.rejectInput(&PlatformError{Platform: c.cfg.Platform, Message: apnsShapeMessage})
		}
		return c.SetAPNsDeviceToken(ctx, token.Bytes())
	case PlatformAndroid:
		if !token.IsString() {
			return c.rejectInput(&PlatformError{Platform: c.cfg.Platform, Message: fcmShapeMessage})
		}
		return c.SetFCMToken(ctx, token.String())
	default:
		return c.rejectInput(&PlatformError{
			Platform: c.cfg.Platform,
			Message:  fmt.Sprintf("Unsupported platform for push token registration: %s", c.cfg.Platform),
		})
	}
}

// SetAPNsDeviceToken sends the token base64-encoded. It does nothing off iOS.
func (c *Client) SetAPNsDeviceToken(ctx context.Context, token []byte) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if c.cfg.Platform != PlatformIOS {
		return nil
	}
	return c.bridge.SetAPNsDeviceToken(ctx, base64.StdEncoding.EncodeToString(token))
}

// SetFCMToken sends the trimmed token. It does nothing off Android.
func (c *Client) SetFCMToken(ctx context.Context, token string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if c.cfg.Platform != PlatformAndroid {
		return nil
	}
	t, err := ensureNonEmpty(token, "token")
	if err != nil {
		return c.rejectInput(err)
	}
	return c.bridge.SetFCMToken(ctx, t)
}

// NotifyUserAuthenticated tells the engine that the application completed sign-in,
// which enables push login approvals.
func (c *Client) NotifyUserAuthenticated(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	return c.bridge.UserDidAuthenticate(ctx)
}

// HandlePushNotification forwards a received notification payload. Values are
// stringified and nil values dropped; a nil payload is a *ValidationError. It
// reports whether the engine recognised the payload as a login request; the
// request itself arrives on the push channel.
func (c *Client) HandlePushNotification(ctx context.Context, payload map[string]any) (bool, error) {
	if err := c.checkOpen(); err != nil {
		return false, err
	}
	if payload == nil {
		return false, c.rejectInput(&ValidationError{Field: "payload"})
	}
	flat := make(map[string]string, len(payload))
	for k, v := range payload {
		switch val := v.(type) {
		case nil:
		case string:
			flat[k] = val
		default:
			flat[k] = fmt.Sprint(val)
		}
	}
	handled, err := c.bridge.HandlePushNotification(ctx, flat)
	if err != nil {
		c.log.Warn("push notification rejected", zap.Error(err))
		return false, err
	}
	return handled, nil
}

// ApprovePushRequest approves a push login request.
func (c *Client) ApprovePushRequest(ctx context.Context, requestID string) error {
	return c.answerPush(ctx, requestID, true)
}

// DeclinePushRequest declines a push login request.
func (c *Client) DeclinePushRequest(ctx context.Context, requestID string) error {
	return c.answerPush(ctx, requestID, false)
}

func (c *Client) answerPush(ctx context.Context, requestID string, approve bool) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	id, err := ensureNonEmpty(requestID, "requestId")
	if err != nil {
		return c.rejectInput(err)
	}

	metric, eventType := MetricPushApproved, AuditPushApproved
	call := c.bridge.ApprovePushRequest
	if !approve {
		metric, eventType = MetricPushDeclined, AuditPushDeclined
		call = c.bridge.DeclinePushRequest
	}

	event := AuditEvent{EventType: eventType, Metadata: map[string]string{"request_id": id}}
	if err := call(ctx, id); err != nil {
		c.log.Warn("push answer rejected", zap.String("request_id", id), zap.Bool("approve", approve), zap.Error(err))
		event.Error = err.Error()
		c.emitAudit(ctx, event)
		return err
	}
	c.metrics.Inc(metric)
	event.Success = true
	c.emitAudit(ctx, event)
	return nil
}
