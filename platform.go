package goHawcx

import "strings"

// Platform is the host platform the engine runs on. It decides push token shape.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// ParsePlatform maps a platform name to a Platform. Unknown names are kept verbatim
// so they can be reported in errors.
func ParsePlatform(name string) Platform {
	switch p := Platform(strings.ToLower(strings.TrimSpace(name))); p {
	case PlatformIOS, PlatformAndroid:
		return p
	default:
		return Platform(strings.TrimSpace(name))
	}
}

func (p Platform) String() string {
	return string(p)
}

// Supported reports whether push token registration is defined for p.
func (p Platform) Supported() bool {
	return p == PlatformIOS || p == PlatformAndroid
}

type deviceTokenKind uint8

const (
	deviceTokenBytes deviceTokenKind = iota + 1
	deviceTokenString
)

// DeviceToken is a push registration token: raw bytes (APNs) or a string (FCM).
// Build one with BytesToken or StringToken.
type DeviceToken struct {
	kind  deviceTokenKind
	bytes []byte
	str   string
}

// BytesToken wraps a binary APNs device token.
func BytesToken(b []byte) DeviceToken {
	cp := make([]byte, len(b))
	copy(cp, b)
	return DeviceToken{kind: deviceTokenBytes, bytes: cp}
}

// StringToken wraps an FCM registration token.
func StringToken(s string) DeviceToken {
	return DeviceToken{kind: deviceTokenString, str: s}
}

// IsBytes reports whether the token carries bytes.
func (t DeviceToken) IsBytes() bool {
	return t.kind == deviceTokenBytes
}

// IsString reports whether the token carries a string.
func (t DeviceToken) IsString() bool {
	return t.kind == deviceTokenString
}

// Bytes returns a copy of the binary token, or nil for string tokens.
func (t DeviceToken) Bytes() []byte {
	if t.kind != deviceTokenBytes {
		return nil
	}
	cp := make([]byte, len(t.bytes))
	copy(cp, t.bytes)
	return cp
}

// String returns the string token, or "" for binary tokens.
func (t DeviceToken) String() string {
	if t.kind != deviceTokenString {
		return ""
	}
	return t.str
}
