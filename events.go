package goHawcx

import (
	"errors"
	"time"

	"github.com/MrEthical07/goHawcx/jwt"
)

// Channel names used by the engine for its three broadcast streams.
const (
	AuthChannelName    = "hawcx.auth.event"
	SessionChannelName = "hawcx.session.event"
	PushChannelName    = "hawcx.push.event"
)

// Wire tags for every event the engine emits.
const (
	EventOTPRequired                    = "otp_required"
	EventAuthSuccess                    = "auth_success"
	EventAuthorizationCode              = "authorization_code"
	EventAdditionalVerificationRequired = "additional_verification_required"
	EventAuthError                      = "auth_error"

	EventSessionSuccess = "session_success"
	EventSessionError   = "session_error"

	EventPushLoginRequest = "push_login_request"
	EventPushError        = "push_error"
)

// ErrorPayload is the {code, message} body shared by every error event.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AuthEvent is an event delivered on the auth channel. The set of implementations
// is closed: OTPRequired, AuthSuccess, AuthorizationCode,
// AdditionalVerificationRequired and AuthFailure.
type AuthEvent interface {
	Type() string
	authEvent()
}

// SessionEvent is an event delivered on the session channel: SessionSuccess or
// SessionFailure.
type SessionEvent interface {
	Type() string
	sessionEvent()
}

// PushEvent is an event delivered on the push channel: PushLoginRequest or
// PushFailure.
type PushEvent interface {
	Type() string
	pushEvent()
}

// OTPRequired asks the user for a one-time code.
type OTPRequired struct{}

// AuthSuccess completes an authentication flow.
type AuthSuccess struct {
	AccessToken  *string `json:"accessToken,omitempty"`
	RefreshToken *string `json:"refreshToken,omitempty"`
	IsLoginFlow  bool    `json:"isLoginFlow"`
}

// AuthorizationCode carries a code the application exchanges with its backend.
type AuthorizationCode struct {
	Code      string `json:"code"`
	ExpiresIn *int   `json:"expiresIn,omitempty"`
}

// AdditionalVerificationRequired escalates the flow to an extra verification step.
type AdditionalVerificationRequired struct {
	SessionID string  `json:"sessionId"`
	Detail    *string `json:"detail,omitempty"`
}

// AuthFailure reports an engine-side authentication error.
type AuthFailure struct {
	ErrorPayload
}

// SessionSuccess reports a successful web login, web approval or device lookup.
type SessionSuccess struct{}

// SessionFailure reports a failed session operation.
type SessionFailure struct {
	ErrorPayload
}

// PushLoginRequest is a login approval request delivered through push.
type PushLoginRequest struct {
	RequestID  string  `json:"requestId"`
	IPAddress  string  `json:"ipAddress"`
	DeviceInfo string  `json:"deviceInfo"`
	Location   *string `json:"location,omitempty"`
	Timestamp  string  `json:"timestamp"`
}

// PushFailure reports that push request details could not be fetched.
type PushFailure struct {
	ErrorPayload
}

func (OTPRequired) Type() string                    { return EventOTPRequired }
func (AuthSuccess) Type() string                    { return EventAuthSuccess }
func (AuthorizationCode) Type() string              { return EventAuthorizationCode }
func (AdditionalVerificationRequired) Type() string { return EventAdditionalVerificationRequired }
func (AuthFailure) Type() string                    { return EventAuthError }
func (SessionSuccess) Type() string                 { return EventSessionSuccess }
func (SessionFailure) Type() string                 { return EventSessionError }
func (PushLoginRequest) Type() string               { return EventPushLoginRequest }
func (PushFailure) Type() string                    { return EventPushError }

func (OTPRequired) authEvent()                    {}
func (AuthSuccess) authEvent()                    {}
func (AuthorizationCode) authEvent()              {}
func (AdditionalVerificationRequired) authEvent() {}
func (AuthFailure) authEvent()                    {}
func (SessionSuccess) sessionEvent()              {}
func (SessionFailure) sessionEvent()              {}
func (PushLoginRequest) pushEvent()               {}
func (PushFailure) pushEvent()                    {}

// ErrNoAccessToken is returned by AuthSuccess.Claims when the event carried no token.
var ErrNoAccessToken = errors.New("auth success carries no access token")

// Claims decodes the access token without verifying its signature. Verification is
// the backend's job; the claims are only for display and expiry hints.
func (s AuthSuccess) Claims() (*jwt.AccessClaims, error) {
	if s.AccessToken == nil || *s.AccessToken == "" {
		return nil, ErrNoAccessToken
	}
	return jwt.InspectAccessToken(*s.AccessToken)
}

// ParsedTimestamp parses the RFC 3339 timestamp of a push request.
func (p PushLoginRequest) ParsedTimestamp() (time.Time, error) {
	return time.Parse(time.RFC3339, p.Timestamp)
}

// StringPtr returns a pointer to s. Convenience for optional event fields.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}
