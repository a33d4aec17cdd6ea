// Package redact derives stable, non-reversible fingerprints of user identifiers for
// logs and audit records.
package redact

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const fingerprintSize = 16

// Fingerprint returns a 32-hex-char BLAKE2b-128 digest of the trimmed, lower-cased
// identifier. An empty identifier yields "".
func Fingerprint(id string) string {
	norm := strings.ToLower(strings.TrimSpace(id))
	if norm == "" {
		return ""
	}
	h, err := blake2b.New(fingerprintSize, nil)
	if err != nil {
		return ""
	}
	_, _ = h.Write([]byte(norm))
	return hex.EncodeToString(h.Sum(nil))
}

// Keyed is like Fingerprint but mixes in a per-deployment key so fingerprints
// cannot be correlated across installations. Keys longer than 64 bytes are
// rejected by BLAKE2b; Keyed falls back to the unkeyed form in that case.
func Keyed(key []byte, id string) string {
	norm := strings.ToLower(strings.TrimSpace(id))
	if norm == "" {
		return ""
	}
	h, err := blake2b.New(fingerprintSize, key)
	if err != nil {
		return Fingerprint(id)
	}
	_, _ = h.Write([]byte(norm))
	return hex.EncodeToString(h.Sum(nil))
}
