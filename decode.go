package goHawcx

import (
	"encoding/json"
	"fmt"
)

// record is the {type, payload?} envelope every engine event travels in.
type record struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func readRecord(raw []byte) (record, error) {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return r, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if r.Type == "" {
		return r, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}
	return r, nil
}

func decodePayload(r record, dst any) error {
	if len(r.Payload) == 0 || string(r.Payload) == "null" {
		return fmt.Errorf("%w: %s requires a payload", ErrMalformedEvent, r.Type)
	}
	if err := json.Unmarshal(r.Payload, dst); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrMalformedEvent, r.Type, err)
	}
	return nil
}

func decodeErrorPayload(r record) (ErrorPayload, error) {
	var p ErrorPayload
	if err := decodePayload(r, &p); err != nil {
		return p, err
	}
	if p.Code == "" {
		return p, fmt.Errorf("%w: %s missing code", ErrMalformedEvent, r.Type)
	}
	return p, nil
}

// DecodeAuthEvent decodes a raw auth-channel record.
func DecodeAuthEvent(raw []byte) (AuthEvent, error) {
	r, err := readRecord(raw)
	if err != nil {
		return nil, err
	}

	switch r.Type {
	case EventOTPRequired:
		return OTPRequired{}, nil
	case EventAuthSuccess:
		var p AuthSuccess
		if err := decodePayload(r, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EventAuthorizationCode:
		var p AuthorizationCode
		if err := decodePayload(r, &p); err != nil {
			return nil, err
		}
		if p.Code == "" {
			return nil, fmt.Errorf("%w: %s missing code", ErrMalformedEvent, r.Type)
		}
		return p, nil
	case EventAdditionalVerificationRequired:
		var p AdditionalVerificationRequired
		if err := decodePayload(r, &p); err != nil {
			return nil, err
		}
		if p.SessionID == "" {
			return nil, fmt.Errorf("%w: %s missing sessionId", ErrMalformedEvent, r.Type)
		}
		return p, nil
	case EventAuthError:
		p, err := decodeErrorPayload(r)
		if err != nil {
			return nil, err
		}
		return AuthFailure{ErrorPayload: p}, nil
	default:
		return nil, &UnknownEventError{Channel: AuthChannelName, Type: r.Type}
	}
}

// DecodeSessionEvent decodes a raw session-channel record.
func DecodeSessionEvent(raw []byte) (SessionEvent, error) {
	r, err := readRecord(raw)
	if err != nil {
		return nil, err
	}

	switch r.Type {
	case EventSessionSuccess:
		return SessionSuccess{}, nil
	case EventSessionError:
		p, err := decodeErrorPayload(r)
		if err != nil {
			return nil, err
		}
		return SessionFailure{ErrorPayload: p}, nil
	default:
		return nil, &UnknownEventError{Channel: SessionChannelName, Type: r.Type}
	}
}

// DecodePushEvent decodes a raw push-channel record.
func DecodePushEvent(raw []byte) (PushEvent, error) {
	r, err := readRecord(raw)
	if err != nil {
		return nil, err
	}

	switch r.Type {
	case EventPushLoginRequest:
		var p PushLoginRequest
		if err := decodePayload(r, &p); err != nil {
			return nil, err
		}
		if p.RequestID == "" {
			return nil, fmt.Errorf("%w: %s missing requestId", ErrMalformedEvent, r.Type)
		}
		return p, nil
	case EventPushError:
		p, err := decodeErrorPayload(r)
		if err != nil {
			return nil, err
		}
		return PushFailure{ErrorPayload: p}, nil
	default:
		return nil, &UnknownEventError{Channel: PushChannelName, Type: r.Type}
	}
}

// MarshalEvent encodes an auth, session or push event into its wire record.
// Events without a payload are encoded as {"type": "..."}.
func MarshalEvent(event interface{ Type() string }) ([]byte, error) {
	r := record{Type: event.Type()}

	var payload any
	switch e := event.(type) {
	case OTPRequired, SessionSuccess:
	case AuthSuccess, AuthorizationCode, AdditionalVerificationRequired, PushLoginRequest:
		payload = e
	case AuthFailure:
		payload = e.ErrorPayload
	case SessionFailure:
		payload = e.ErrorPayload
	case PushFailure:
		payload = e.ErrorPayload
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEventType, event)
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		r.Payload = data
	}
	return json.Marshal(r)
}
