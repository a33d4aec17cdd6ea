package goHawcx

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every input validation failure.
	ErrValidation = errors.New("invalid input")
	// ErrConfig matches every initialize configuration failure.
	ErrConfig = errors.New("invalid configuration")
	// ErrPlatform matches push token platform mismatches.
	ErrPlatform = errors.New("platform mismatch")
	// ErrAuthCancelled matches the error an invocation rejects with after Cancel.
	ErrAuthCancelled = errors.New("auth cancelled")
	// ErrTokenStorage is returned when the engine refuses to persist backend tokens.
	ErrTokenStorage = errors.New("failed to persist backend-issued tokens")
	// ErrUnknownEventType is returned for an event tag outside the known taxonomy.
	ErrUnknownEventType = errors.New("unknown event type")
	// ErrMalformedEvent is returned for a record whose shape does not match its tag.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrUnknownChannel is returned by Hub.Dispatch for an unrecognised channel name.
	ErrUnknownChannel = errors.New("unknown event channel")
	// ErrBridgeRequired is returned by Build when no command bridge is configured.
	ErrBridgeRequired = errors.New("bridge required")
	// ErrClientClosed is returned by commands issued after Close.
	ErrClientClosed = errors.New("client closed")
	// ErrMachineDisposed is returned by state machine commands after Dispose.
	ErrMachineDisposed = errors.New("state machine disposed")
)

// Codes used by native bridge rejections.
const (
	CodeConfig  = "hawcx.config"
	CodeSDK     = "hawcx.sdk"
	CodeInput   = "hawcx.input"
	CodeStorage = "hawcx.storage"
)

// AuthCancelledCode is the stable code of the synthetic cancellation error.
const AuthCancelledCode = "auth_cancelled"

// ValidationError reports an empty required field. It never reaches the engine.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConfigError reports an invalid InitializeConfig.
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// PlatformError reports a push token of the wrong shape for the platform, or an
// unsupported platform.
type PlatformError struct {
	Platform Platform
	Message  string
}

func (e *PlatformError) Error() string {
	return e.Message
}

func (e *PlatformError) Is(target error) bool {
	return target == ErrPlatform
}

// AuthError is an authentication failure reported by the engine, or the synthetic
// cancellation error. Callers branch on Code.
type AuthError struct {
	Code    string
	Message string
}

// NewAuthError builds an AuthError from an event payload.
func NewAuthError(p ErrorPayload) *AuthError {
	return &AuthError{Code: p.Code, Message: p.Message}
}

func (e *AuthError) Error() string {
	return e.Message
}

// Payload returns the {code, message} body the error was built from.
func (e *AuthError) Payload() ErrorPayload {
	return ErrorPayload{Code: e.Code, Message: e.Message}
}

func (e *AuthError) Is(target error) bool {
	if target == ErrAuthCancelled {
		return e.Code == AuthCancelledCode
	}
	t, ok := target.(*AuthError)
	return ok && t.Code == e.Code
}

func newCancelledError() *AuthError {
	return &AuthError{Code: AuthCancelledCode, Message: "Authentication cancelled by caller"}
}

// BridgeError is a command-level rejection returned by a Bridge implementation.
type BridgeError struct {
	Code    string
	Message string
	Err     error
}

func (e *BridgeError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *BridgeError) Unwrap() error {
	return e.Err
}

// UnknownEventError reports a tag the decoder does not know.
type UnknownEventError struct {
	Channel string
	Type    string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event type %q on %s", e.Type, e.Channel)
}

func (e *UnknownEventError) Is(target error) bool {
	return target == ErrUnknownEventType
}

func asBridgeError(err error) (*BridgeError, bool) {
	var be *BridgeError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
