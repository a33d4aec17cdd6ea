package jwt

import (
	"crypto"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidPublicKey is returned when PEM data does not hold a supported public key.
var ErrInvalidPublicKey = errors.New("invalid public key pem")

// KeyType names the algorithm family of a parsed public key.
type KeyType string

const (
	KeyRSA     KeyType = "rsa"
	KeyEC      KeyType = "ec"
	KeyEd25519 KeyType = "ed25519"
)

// ParsePublicKeyPEM parses an RSA, EC or Ed25519 public key in PEM form.
func ParsePublicKeyPEM(data string) (crypto.PublicKey, KeyType, error) {
	raw := []byte(strings.TrimSpace(data))
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("%w: empty", ErrInvalidPublicKey)
	}
	if block, _ := pem.Decode(raw); block == nil {
		return nil, "", fmt.Errorf("%w: no PEM block", ErrInvalidPublicKey)
	}

	if key, err := jwt.ParseRSAPublicKeyFromPEM(raw); err == nil {
		return key, KeyRSA, nil
	}
	if key, err := jwt.ParseECPublicKeyFromPEM(raw); err == nil {
		return key, KeyEC, nil
	}
	if key, err := jwt.ParseEdPublicKeyFromPEM(raw); err == nil {
		return key, KeyEd25519, nil
	}
	return nil, "", fmt.Errorf("%w: unsupported key type", ErrInvalidPublicKey)
}
