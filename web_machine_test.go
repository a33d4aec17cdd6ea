package goHawcx

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWebSessionMachineLoadingThenError(t *testing.T) {
	env := newTestEnv(t, PlatformAndroid)
	m := NewWebSessionMachine(env.client)
	defer m.Dispose()

	var seen []WebSessionStatus
	m.Subscribe(func(s WebSessionState) { seen = append(seen, s.Status) })

	env.bridge.onCall("webLogin", func() {
		if got := m.State().Status; got != WebSessionLoading {
			t.Errorf("expected loading before the command runs, got %s", got)
		}
	})

	if err := m.WebLogin(context.Background(), "1234"); err != nil {
		t.Fatalf("WebLogin failed: %v", err)
	}
	if got := m.State().Status; got != WebSessionLoading {
		t.Fatalf("expected loading, got %s", got)
	}

	env.hub.EmitSession(SessionFailure{ErrorPayload{Code: "pin_invalid", Message: "Invalid pin"}})
	s := m.State()
	if s.Status != WebSessionError || s.Error == nil || s.Error.Code != "pin_invalid" || s.Error.Message != "Invalid pin" {
		t.Fatalf("unexpected state %+v", s)
	}
	if len(seen) != 2 || seen[0] != WebSessionLoading || seen[1] != WebSessionError {
		t.Fatalf("unexpected transitions %v", seen)
	}
}

func TestWebSessionMachineReprojectsEveryEvent(t *testing.T) {
	env := newTestEnv(t, PlatformAndroid)
	m := NewWebSessionMachine(env.client)
	defer m.Dispose()

	if err := m.WebApprove(context.Background(), "token"); err != nil {
		t.Fatalf("WebApprove failed: %v", err)
	}
	env.hub.EmitSession(SessionSuccess{})
	if got := m.State().Status; got != WebSessionSuccess {
		t.Fatalf("expected success, got %s", got)
	}

	// a late event from an unrelated call still wins
	env.hub.EmitSession(SessionFailure{ErrorPayload{Code: "stale", Message: "late"}})
	if got := m.State().Status; got != WebSessionError {
		t.Fatalf("expected error, got %s", got)
	}

	if err := m.GetDeviceDetails(context.Background()); err != nil {
		t.Fatalf("GetDeviceDetails failed: %v", err)
	}
	if got := m.State().Status; got != WebSessionLoading {
		t.Fatalf("expected loading, got %s", got)
	}

	m.Reset()
	if got := m.State(); got.Status != WebSessionIdle || got.Error != nil {
		t.Fatalf("expected idle after reset, got %+v", got)
	}
}

func TestWebSessionMachineCommandFailures(t *testing.T) {
	env := newTestEnv(t, PlatformAndroid)
	m := NewWebSessionMachine(env.client)
	defer m.Dispose()

	if err := m.WebLogin(context.Background(), "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := m.State().Status; got != WebSessionIdle {
		t.Fatalf("expected idle restored after validation failure, got %s", got)
	}

	env.bridge.failWith("webLogin", &BridgeError{Code: CodeSDK, Message: "initialize must be called before webLogin"})
	if err := m.WebLogin(context.Background(), "1234"); err == nil {
		t.Fatal("expected command error")
	}
	s := m.State()
	if s.Status != WebSessionError || s.Error.Code != CodeSDK {
		t.Fatalf("expected error state with engine code, got %+v", s)
	}

	env.bridge.failWith("getDeviceDetails", errors.New("no session"))
	_ = m.GetDeviceDetails(context.Background())
	if s := m.State(); s.Error == nil || s.Error.Code != "session_error" || s.Error.Message != "no session" {
		t.Fatalf("expected default session_error code, got %+v", s)
	}
}

func TestWebSessionMachineDispose(t *testing.T) {
	env := newTestEnv(t, PlatformAndroid)
	m := NewWebSessionMachine(env.client)

	m.Dispose()
	m.Dispose()
	if env.hub.Session().Len() != 0 {
		t.Fatal("expected session subscription removed")
	}
	env.hub.EmitSession(SessionSuccess{})
	if got := m.State().Status; got != WebSessionIdle {
		t.Fatalf("disposed machine must not change, got %s", got)
	}
	if err := m.WebLogin(context.Background(), "1"); !errors.Is(err, ErrMachineDisposed) {
		t.Fatalf("expected ErrMachineDisposed, got %v", err)
	}
}

type relabeledSessionSuccess struct {
	SessionSuccess
}

func TestWebSessionMachineLogsUnknownEvent(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	env := newTestEnv(t, PlatformAndroid, func(b *Builder) { b.WithLogger(zap.New(core)) })
	m := NewWebSessionMachine(env.client)
	defer m.Dispose()

	env.hub.EmitSession(relabeledSessionSuccess{})

	if got := m.State().Status; got != WebSessionIdle {
		t.Fatalf("unknown event must not move the state, got %s", got)
	}
	if n := logs.FilterMessage("web session machine ignored unknown event").Len(); n != 1 {
		t.Fatalf("expected one error log, got %d", n)
	}
}

func TestWebSessionMachineReentrantResetNotifiesInOrder(t *testing.T) {
	env := newTestEnv(t, PlatformAndroid)
	m := NewWebSessionMachine(env.client)
	defer m.Dispose()

	m.Subscribe(func(s WebSessionState) {
		if s.Status == WebSessionError {
			m.Reset()
		}
	})
	var seen []WebSessionStatus
	m.Subscribe(func(s WebSessionState) { seen = append(seen, s.Status) })

	env.hub.EmitSession(SessionFailure{ErrorPayload{Code: "pin_invalid", Message: "bad pin"}})

	if len(seen) != 2 || seen[0] != WebSessionError || seen[1] != WebSessionIdle {
		t.Fatalf("expected [error idle], got %v", seen)
	}
	if got := m.State().Status; got != WebSessionIdle {
		t.Fatalf("expected idle, got %s", got)
	}
}
