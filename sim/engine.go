package sim

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"
	"time"

	goHawcx "github.com/MrEthical07/goHawcx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Error codes carried by the events the engine emits.
const (
	CodeOTPAttemptsExceeded = "otp_attempts_exceeded"
	CodeInvalidPIN          = "invalid_pin"
	CodeInvalidToken        = "invalid_token"
	CodeUnknownRequest      = "unknown_push_request"
)

// Sink receives the events the engine produces. *goHawcx.Hub and
// *redisrelay.Publisher satisfy it.
type Sink interface {
	EmitAuth(goHawcx.AuthEvent)
	EmitSession(goHawcx.SessionEvent)
	EmitPush(goHawcx.PushEvent)
}

// Options tunes the simulated engine. Zero values take the defaults from NewEngine.
type Options struct {
	ValidOTP       string
	MaxOTPAttempts int
	// WebPIN and WebToken are the accepted web login PIN and approval token. Empty
	// accepts any non-empty value.
	WebPIN   string
	WebToken string
	// AuthorizationCodeFlow makes a valid OTP end the flow with authorization_code.
	AuthorizationCodeFlow bool

	SigningKey []byte
	Issuer     string
	TokenTTL   time.Duration
	// Delay is applied before every emitted event.
	Delay time.Duration

	Logger *zap.Logger
	Now    func() time.Time
}

func (o Options) withDefaults() Options {
	if o.ValidOTP == "" {
		o.ValidOTP = "123456"
	}
	if o.MaxOTPAttempts <= 0 {
		o.MaxOTPAttempts = 3
	}
	if len(o.SigningKey) == 0 {
		o.SigningKey = []byte(uuid.NewString())
	}
	if o.Issuer == "" {
		o.Issuer = "hawcx-sim"
	}
	if o.TokenTTL <= 0 {
		o.TokenTTL = 15 * time.Minute
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// StoredTokens are the backend tokens handed to StoreBackendOAuthTokens.
type StoredTokens struct {
	AccessToken  string
	RefreshToken *string
}

// Engine is a scripted goHawcx.Bridge. It is safe for concurrent use.
type Engine struct {
	sink Sink
	opts Options
	log  *zap.Logger

	mu          sync.Mutex
	initialized bool
	config      goHawcx.InitializeConfig
	currentUser string
	attempts    int
	lastUser    string
	tokens      map[string]StoredTokens
	deviceToken string
	pushPending map[string]struct{}
	notified    int

	qmu     sync.Mutex
	closed  bool
	pending []func()
	signal  chan struct{}
	wg      sync.WaitGroup
}

var _ goHawcx.Bridge = (*Engine)(nil)

// NewEngine starts an engine emitting on sink. Call Close to stop it.
func NewEngine(sink Sink, opts Options) *Engine {
	opts = opts.withDefaults()
	e := &Engine{
		sink:        sink,
		opts:        opts,
		log:         opts.Logger,
		tokens:      map[string]StoredTokens{},
		pushPending: map[string]struct{}{},
		signal:      make(chan struct{}, 1),
	}
	e.wg.Add(1)
	go e.loop()
	return e
}

func (e *Engine) loop() {
	defer e.wg.Done()
	for {
		e.qmu.Lock()
		batch := e.pending
		e.pending = nil
		closed := e.closed
		e.qmu.Unlock()

		for _, fn := range batch {
			if e.opts.Delay > 0 {
				time.Sleep(e.opts.Delay)
			}
			fn()
		}
		if len(batch) == 0 {
			if closed {
				return
			}
			<-e.signal
		}
	}
}

// Close stops the emit loop after queued events have been delivered. Events
// produced after Close are dropped.
func (e *Engine) Close() {
	e.qmu.Lock()
	if e.closed {
		e.qmu.Unlock()
		return
	}
	e.closed = true
	e.qmu.Unlock()
	e.wake()
	e.wg.Wait()
}

// enqueue never blocks; commands call it with e.mu held.
func (e *Engine) enqueue(fn func()) {
	e.qmu.Lock()
	if e.closed {
		e.qmu.Unlock()
		return
	}
	e.pending = append(e.pending, fn)
	e.qmu.Unlock()
	e.wake()
}

func (e *Engine) wake() {
	select {
	case e.signal <- struct{}{}:
	default:
	}
}

func (e *Engine) emitAuth(event goHawcx.AuthEvent) {
	e.enqueue(func() { e.sink.EmitAuth(event) })
}

func (e *Engine) emitSession(event goHawcx.SessionEvent) {
	e.enqueue(func() { e.sink.EmitSession(event) })
}

func (e *Engine) emitPush(event goHawcx.PushEvent) {
	e.enqueue(func() { e.sink.EmitPush(event) })
}

func notInitialized(op string) error {
	return &goHawcx.BridgeError{Code: goHawcx.CodeSDK, Message: "initialize must be called before " + op}
}

// requireInit must be called with e.mu held.
func (e *Engine) requireInit(op string) error {
	if !e.initialized {
		return notInitialized(op)
	}
	return nil
}

// Initialize records cfg. Every other command fails until it has succeeded.
func (e *Engine) Initialize(ctx context.Context, cfg goHawcx.InitializeConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.ProjectAPIKey) == "" {
		return &goHawcx.BridgeError{Code: goHawcx.CodeConfig, Message: "projectApiKey is required"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.initialized = true
	e.config = cfg
	e.log.Debug("sim engine initialized", zap.String("base_url", cfg.ResolveBaseURL()))
	return nil
}

// Authenticate starts a flow for userID and always asks for an OTP.
func (e *Engine) Authenticate(ctx context.Context, userID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInit("authenticate"); err != nil {
		return err
	}
	e.currentUser = userID
	e.attempts = 0
	e.emitAuth(goHawcx.OTPRequired{})
	return nil
}

func (e *Engine) SubmitOTP(ctx context.Context, otp string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInit("submitOtp"); err != nil {
		return err
	}
	if e.currentUser == "" {
		return &goHawcx.BridgeError{Code: goHawcx.CodeSDK, Message: "no authentication in progress"}
	}

	if otp != e.opts.ValidOTP {
		e.attempts++
		if e.attempts >= e.opts.MaxOTPAttempts {
			e.currentUser = ""
			e.attempts = 0
			e.emitAuth(goHawcx.AuthFailure{ErrorPayload: goHawcx.ErrorPayload{
				Code:    CodeOTPAttemptsExceeded,
				Message: "Too many invalid OTP attempts",
			}})
			return nil
		}
		e.emitAuth(goHawcx.OTPRequired{})
		return nil
	}

	user := e.currentUser
	e.currentUser = ""
	e.attempts = 0
	e.lastUser = user

	if e.opts.AuthorizationCodeFlow {
		e.emitAuth(goHawcx.AuthorizationCode{Code: uuid.NewString(), ExpiresIn: goHawcx.IntPtr(600)})
		return nil
	}

	access, err := e.issueAccessToken(user)
	if err != nil {
		e.emitAuth(goHawcx.AuthFailure{ErrorPayload: goHawcx.ErrorPayload{Code: "token_issue_failed", Message: err.Error()}})
		return nil
	}
	e.emitAuth(goHawcx.AuthSuccess{
		AccessToken:  goHawcx.StringPtr(access),
		RefreshToken: goHawcx.StringPtr(uuid.NewString()),
		IsLoginFlow:  true,
	})
	return nil
}

func (e *Engine) issueAccessToken(userID string) (string, error) {
	now := e.opts.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    e.opts.Issuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(e.opts.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.opts.SigningKey)
}

func (e *Engine) StoreBackendOAuthTokens(ctx context.Context, userID, accessToken string, refreshToken *string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInit("storeBackendOAuthTokens"); err != nil {
		return false, err
	}
	st := StoredTokens{AccessToken: accessToken}
	if refreshToken != nil {
		st.RefreshToken = goHawcx.StringPtr(*refreshToken)
	}
	e.tokens[userID] = st
	e.lastUser = userID
	return true, nil
}

func (e *Engine) GetDeviceDetails(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInit("getDeviceDetails"); err != nil {
		return err
	}
	e.emitSession(goHawcx.SessionSuccess{})
	return nil
}

func (e *Engine) WebLogin(ctx context.Context, pin string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInit("webLogin"); err != nil {
		return err
	}
	if e.opts.WebPIN != "" && pin != e.opts.WebPIN {
		e.emitSession(goHawcx.SessionFailure{ErrorPayload: goHawcx.ErrorPayload{Code: CodeInvalidPIN, Message: "Invalid PIN"}})
		return nil
	}
	e.emitSession(goHawcx.SessionSuccess{})
	return nil
}

func (e *Engine) WebApprove(ctx context.Context, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInit("webApprove"); err != nil {
		return err
	}
	if e.opts.WebToken != "" && token != e.opts.WebToken {
		e.emitSession(goHawcx.SessionFailure{ErrorPayload: goHawcx.ErrorPayload{Code: CodeInvalidToken, Message: "Invalid approval token"}})
		return nil
	}
	e.emitSession(goHawcx.SessionSuccess{})
	return nil
}

func (e *Engine) SetAPNsDeviceToken(ctx context.Context, tokenBase64 string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInit("setApnsDeviceToken"); err != nil {
		return err
	}
	if _, err := base64.StdEncoding.DecodeString(tokenBase64); err != nil {
		return &goHawcx.BridgeError{Code: goHawcx.CodeInput, Message: "device token is not valid base64", Err: err}
	}
	e.deviceToken = tokenBase64
	return nil
}

func (e *Engine) SetFCMToken(ctx context.Context, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInit("setFcmToken"); err != nil {
		return err
	}
	e.deviceToken = token
	return nil
}

func (e *Engine) UserDidAuthenticate(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInit("userDidAuthenticate"); err != nil {
		return err
	}
	e.notified++
	return nil
}

func (e *Engine) HandlePushNotification(ctx context.Context, payload map[string]string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInit("handlePushNotification"); err != nil {
		return false, err
	}
	requestID, ok := payload["request_id"]
	if !ok || requestID == "" {
		return false, nil
	}

	req := goHawcx.PushLoginRequest{
		RequestID:  requestID,
		IPAddress:  valueOr(payload["ip_address"], "203.0.113.10"),
		DeviceInfo: valueOr(payload["device_info"], "unknown device"),
		Timestamp:  e.opts.Now().UTC().Format(time.RFC3339),
	}
	if loc := payload["location"]; loc != "" {
		req.Location = goHawcx.StringPtr(loc)
	}
	e.pushPending[requestID] = struct{}{}
	e.emitPush(req)
	return true, nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func (e *Engine) ApprovePushRequest(ctx context.Context, requestID string) error {
	return e.answerPush("approvePushRequest", requestID)
}

func (e *Engine) DeclinePushRequest(ctx context.Context, requestID string) error {
	return e.answerPush("declinePushRequest", requestID)
}

func (e *Engine) answerPush(op, requestID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInit(op); err != nil {
		return err
	}
	if _, ok := e.pushPending[requestID]; !ok {
		e.emitPush(goHawcx.PushFailure{ErrorPayload: goHawcx.ErrorPayload{
			Code:    CodeUnknownRequest,
			Message: "push request " + requestID + " not found",
		}})
		return nil
	}
	delete(e.pushPending, requestID)
	return nil
}

func (e *Engine) GetLastLoggedInUser(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInit("getLastLoggedInUser"); err != nil {
		return "", err
	}
	return e.lastUser, nil
}

func (e *Engine) ClearSessionTokens(ctx context.Context, userID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInit("clearSessionTokens"); err != nil {
		return err
	}
	delete(e.tokens, userID)
	return nil
}

func (e *Engine) ClearUserKeychainData(ctx context.Context, userID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireInit("clearUserKeychainData"); err != nil {
		return err
	}
	delete(e.tokens, userID)
	if e.lastUser == userID {
		e.lastUser = ""
	}
	return nil
}

// Tokens returns the backend tokens stored for userID.
func (e *Engine) Tokens(userID string) (StoredTokens, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.tokens[userID]
	return st, ok
}

// DeviceToken returns the last registered push token.
func (e *Engine) DeviceToken() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deviceToken
}

// Notifications counts UserDidAuthenticate calls.
func (e *Engine) Notifications() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.notified
}

// Config returns the configuration accepted by Initialize.
func (e *Engine) Config() goHawcx.InitializeConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// Initialized reports whether Initialize has succeeded.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}
