package goHawcx

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// fakeBridge records every command and answers from its configured fields.
type fakeBridge struct {
	mu    sync.Mutex
	calls []string
	errs  map[string]error
	hooks map[string]func()

	initCfg     InitializeConfig
	authUser    string
	otp         string
	pin         string
	webToken    string
	storeUser   string
	storeAccess string
	storeRef    *string
	stored      bool
	apns        string
	fcm         string
	pushPayload map[string]string
	handled     bool
	pushAnswer  string
	lastUser    string
	clearedUser string

	called chan string
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		errs:   map[string]error{},
		hooks:  map[string]func(){},
		stored: true,
		called: make(chan string, 64),
	}
}

func (f *fakeBridge) record(name string) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	err := f.errs[name]
	hook := f.hooks[name]
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	select {
	case f.called <- name:
	default:
	}
	return err
}

func (f *fakeBridge) failWith(name string, err error) {
	f.mu.Lock()
	f.errs[name] = err
	f.mu.Unlock()
}

func (f *fakeBridge) onCall(name string, hook func()) {
	f.mu.Lock()
	f.hooks[name] = hook
	f.mu.Unlock()
}

func (f *fakeBridge) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBridge) callNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBridge) Initialize(_ context.Context, cfg InitializeConfig) error {
	f.mu.Lock()
	f.initCfg = cfg
	f.mu.Unlock()
	return f.record("initialize")
}

func (f *fakeBridge) Authenticate(_ context.Context, userID string) error {
	f.mu.Lock()
	f.authUser = userID
	f.mu.Unlock()
	return f.record("authenticate")
}

func (f *fakeBridge) SubmitOTP(_ context.Context, otp string) error {
	f.mu.Lock()
	f.otp = otp
	f.mu.Unlock()
	return f.record("submitOtp")
}

func (f *fakeBridge) StoreBackendOAuthTokens(_ context.Context, userID, accessToken string, refreshToken *string) (bool, error) {
	f.mu.Lock()
	f.storeUser, f.storeAccess, f.storeRef = userID, accessToken, refreshToken
	stored := f.stored
	f.mu.Unlock()
	if err := f.record("storeBackendOAuthTokens"); err != nil {
		return false, err
	}
	return stored, nil
}

func (f *fakeBridge) GetDeviceDetails(context.Context) error {
	return f.record("getDeviceDetails")
}

func (f *fakeBridge) WebLogin(_ context.Context, pin string) error {
	f.mu.Lock()
	f.pin = pin
	f.mu.Unlock()
	return f.record("webLogin")
}

func (f *fakeBridge) WebApprove(_ context.Context, token string) error {
	f.mu.Lock()
	f.webToken = token
	f.mu.Unlock()
	return f.record("webApprove")
}

func (f *fakeBridge) SetAPNsDeviceToken(_ context.Context, tokenBase64 string) error {
	f.mu.Lock()
	f.apns = tokenBase64
	f.mu.Unlock()
	return f.record("setApnsDeviceToken")
}

func (f *fakeBridge) SetFCMToken(_ context.Context, token string) error {
	f.mu.Lock()
	f.fcm = token
	f.mu.Unlock()
	return f.record("setFcmToken")
}

func (f *fakeBridge) UserDidAuthenticate(context.Context) error {
	return f.record("userDidAuthenticate")
}

func (f *fakeBridge) HandlePushNotification(_ context.Context, payload map[string]string) (bool, error) {
	f.mu.Lock()
	f.pushPayload = payload
	handled := f.handled
	f.mu.Unlock()
	if err := f.record("handlePushNotification"); err != nil {
		return false, err
	}
	return handled, nil
}

func (f *fakeBridge) ApprovePushRequest(_ context.Context, requestID string) error {
	f.mu.Lock()
	f.pushAnswer = requestID
	f.mu.Unlock()
	return f.record("approvePushRequest")
}

func (f *fakeBridge) DeclinePushRequest(_ context.Context, requestID string) error {
	f.mu.Lock()
	f.pushAnswer = requestID
	f.mu.Unlock()
	return f.record("declinePushRequest")
}

func (f *fakeBridge) GetLastLoggedInUser(context.Context) (string, error) {
	f.mu.Lock()
	user := f.lastUser
	f.mu.Unlock()
	return user, f.record("getLastLoggedInUser")
}

func (f *fakeBridge) ClearSessionTokens(_ context.Context, userID string) error {
	f.mu.Lock()
	f.clearedUser = userID
	f.mu.Unlock()
	return f.record("clearSessionTokens")
}

func (f *fakeBridge) ClearUserKeychainData(_ context.Context, userID string) error {
	f.mu.Lock()
	f.clearedUser = userID
	f.mu.Unlock()
	return f.record("clearUserKeychainData")
}

type testEnv struct {
	client *Client
	bridge *fakeBridge
	hub    *Hub
}

func newTestEnv(t *testing.T, platform Platform, configure ...func(*Builder)) testEnv {
	t.Helper()

	bridge := newFakeBridge()
	hub := NewHub(zap.NewNop(), nil)
	b := New().WithBridge(bridge).WithHub(hub).WithPlatform(platform)
	for _, fn := range configure {
		fn(b)
	}
	client, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)
	return testEnv{client: client, bridge: bridge, hub: hub}
}

func (e testEnv) waitCall(t *testing.T, name string) {
	t.Helper()
	for {
		select {
		case got := <-e.bridge.called:
			if got == name {
				return
			}
		case <-testTimeout():
			t.Fatalf("timed out waiting for %s; calls=%v", name, e.bridge.callNames())
		}
	}
}
