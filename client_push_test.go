package goHawcx

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
)

func TestSetPushDeviceTokenPlatformMismatch(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		token    DeviceToken
		want     string
	}{
		{"ios string", PlatformIOS, StringToken("abc"), "APNs tokens must be provided as byte arrays or Uint8Arrays"},
		{"ios zero", PlatformIOS, DeviceToken{}, "APNs tokens must be provided as byte arrays or Uint8Arrays"},
		{"android bytes", PlatformAndroid, BytesToken([]byte{1, 2}), "FCM token must be a string on Android"},
		{"web", Platform("web"), StringToken("abc"), "Unsupported platform for push token registration: web"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.platform)
			err := env.client.SetPushDeviceToken(context.Background(), tt.token)
			if err == nil || err.Error() != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, err)
			}
			if !errors.Is(err, ErrPlatform) {
				t.Fatalf("expected ErrPlatform, got %v", err)
			}
			if env.bridge.callCount() != 0 {
				t.Fatalf("expected no commands, got %v", env.bridge.callNames())
			}
		})
	}
}

func TestSetPushDeviceTokenDispatchesByPlatform(t *testing.T) {
	ios := newTestEnv(t, PlatformIOS)
	raw := []byte{0xde, 0xad, 0xbe, 0xef}
	if err := ios.client.SetPushDeviceToken(context.Background(), BytesToken(raw)); err != nil {
		t.Fatalf("SetPushDeviceToken failed: %v", err)
	}
	if want := base64.StdEncoding.EncodeToString(raw); ios.bridge.apns != want {
		t.Fatalf("expected base64 %q, got %q", want, ios.bridge.apns)
	}

	android := newTestEnv(t, PlatformAndroid)
	if err := android.client.SetPushDeviceToken(context.Background(), StringToken(" fcm-token ")); err != nil {
		t.Fatalf("SetPushDeviceToken failed: %v", err)
	}
	if android.bridge.fcm != "fcm-token" {
		t.Fatalf("expected trimmed fcm token, got %q", android.bridge.fcm)
	}
	if err := android.client.SetPushDeviceToken(context.Background(), StringToken("  ")); err == nil || err.Error() != "token is required" {
		t.Fatalf("expected token is required, got %v", err)
	}
}

func TestPlatformSpecificTokenSettersAreNoOpsElsewhere(t *testing.T) {
	android := newTestEnv(t, PlatformAndroid)
	if err := android.client.SetAPNsDeviceToken(context.Background(), []byte{1}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	ios := newTestEnv(t, PlatformIOS)
	if err := ios.client.SetFCMToken(context.Background(), ""); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if android.bridge.callCount() != 0 || ios.bridge.callCount() != 0 {
		t.Fatal("expected no commands")
	}
}

func TestPushAnswersValidateRequestID(t *testing.T) {
	env := newTestEnv(t, PlatformAndroid)
	ctx := context.Background()

	if err := env.client.ApprovePushRequest(ctx, " "); err == nil || err.Error() != "requestId is required" {
		t.Fatalf("expected requestId is required, got %v", err)
	}
	if err := env.client.DeclinePushRequest(ctx, ""); err == nil || err.Error() != "requestId is required" {
		t.Fatalf("expected requestId is required, got %v", err)
	}
	if err := env.client.ApprovePushRequest(ctx, " req-1 "); err != nil || env.bridge.pushAnswer != "req-1" {
		t.Fatalf("unexpected approve result %v %q", err, env.bridge.pushAnswer)
	}

	env.bridge.failWith("declinePushRequest", errors.New("expired"))
	if err := env.client.DeclinePushRequest(ctx, "req-2"); err == nil || err.Error() != "expired" {
		t.Fatalf("expected command error verbatim, got %v", err)
	}

	snap := env.client.MetricsSnapshot()
	if snap.Counters[MetricPushApproved] != 1 || snap.Counters[MetricPushDeclined] != 0 {
		t.Fatalf("unexpected push counters %v", snap.Counters)
	}
}

func TestHandlePushNotificationStringifiesPayload(t *testing.T) {
	env := newTestEnv(t, PlatformAndroid)
	env.bridge.handled = true

	handled, err := env.client.HandlePushNotification(context.Background(), map[string]any{
		"request_id": "req-9",
		"attempt":    2,
		"urgent":     true,
		"missing":    nil,
	})
	if err != nil || !handled {
		t.Fatalf("unexpected result %v %v", handled, err)
	}

	got := env.bridge.pushPayload
	if got["request_id"] != "req-9" || got["attempt"] != "2" || got["urgent"] != "true" {
		t.Fatalf("unexpected payload %v", got)
	}
	if _, ok := got["missing"]; ok {
		t.Fatal("nil values must be dropped")
	}
}

func TestHandlePushNotificationRejectsNilPayload(t *testing.T) {
	env := newTestEnv(t, PlatformAndroid)

	handled, err := env.client.HandlePushNotification(context.Background(), nil)
	if handled || !errors.Is(err, ErrValidation) || err.Error() != "payload is required" {
		t.Fatalf("expected payload is required, got %v %v", handled, err)
	}
	if n := env.bridge.callCount(); n != 0 {
		t.Fatalf("nil payload must not reach the engine, got %v", env.bridge.callNames())
	}
	if got := env.client.MetricsSnapshot().Counters[MetricValidationRejected]; got != 1 {
		t.Fatalf("expected one validation rejection, got %d", got)
	}

	handled, err = env.client.HandlePushNotification(context.Background(), map[string]any{})
	if err != nil || handled {
		t.Fatalf("empty payload is forwarded, got %v %v", handled, err)
	}
}

func TestNotifyUserAuthenticated(t *testing.T) {
	env := newTestEnv(t, PlatformIOS)
	if err := env.client.NotifyUserAuthenticated(context.Background()); err != nil {
		t.Fatalf("NotifyUserAuthenticated failed: %v", err)
	}
	if names := env.bridge.callNames(); len(names) != 1 || names[0] != "userDidAuthenticate" {
		t.Fatalf("unexpected calls %v", names)
	}
}
