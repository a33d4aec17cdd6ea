package jwt

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, claims gjwt.MapClaims) string {
	t.Helper()
	tok := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret-test-secret-test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestInspectAccessTokenReadsRegisteredClaims(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	token := signTestToken(t, gjwt.MapClaims{
		"sub":   "user@example.com",
		"iss":   "hawcx",
		"aud":   "app",
		"jti":   "id-1",
		"exp":   exp.Unix(),
		"scope": "login",
	})

	claims, err := InspectAccessToken(token)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if claims.Subject != "user@example.com" || claims.Issuer != "hawcx" || claims.ID != "id-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != "app" {
		t.Fatalf("unexpected audience: %v", claims.Audience)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Fatalf("expected exp %v, got %v", exp, claims.ExpiresAt)
	}
	if claims.Algorithm != "HS256" {
		t.Fatalf("expected HS256, got %s", claims.Algorithm)
	}
	if claims.Extra["scope"] != "login" {
		t.Fatalf("expected extra scope claim, got %v", claims.Extra)
	}
	if _, ok := claims.Extra["sub"]; ok {
		t.Fatal("registered claims must not appear in Extra")
	}
}

func TestAccessClaimsExpiry(t *testing.T) {
	now := time.Now()
	c := &AccessClaims{ExpiresAt: now.Add(time.Minute)}
	if c.Expired(now) {
		t.Fatal("token must not be expired yet")
	}
	if ttl := c.TTL(now); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}
	if !c.Expired(now.Add(2 * time.Minute)) {
		t.Fatal("token must be expired")
	}

	unbounded := &AccessClaims{}
	if unbounded.Expired(now) || unbounded.TTL(now) != 0 {
		t.Fatal("token without exp is never expired and has no ttl")
	}
}

func TestInspectAccessTokenRejectsOpaqueTokens(t *testing.T) {
	for _, token := range []string{"", "opaque-token", "a.b", "a.b.c"} {
		if _, err := InspectAccessToken(token); !errors.Is(err, ErrNotJWT) {
			t.Fatalf("expected ErrNotJWT for %q, got %v", token, err)
		}
	}
}

func pemEncode(t *testing.T, pub any) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func TestParsePublicKeyPEMSupportedTypes(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa key: %v", err)
	}
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("ec key: %v", err)
	}
	edPub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("ed25519 key: %v", err)
	}

	cases := []struct {
		name string
		pem  string
		want KeyType
	}{
		{"rsa", pemEncode(t, &rsaKey.PublicKey), KeyRSA},
		{"ec", pemEncode(t, &ecKey.PublicKey), KeyEC},
		{"ed25519", pemEncode(t, edPub), KeyEd25519},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, kind, err := ParsePublicKeyPEM(tc.pem)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if key == nil || kind != tc.want {
				t.Fatalf("expected %s key, got %s", tc.want, kind)
			}
		})
	}
}

func TestParsePublicKeyPEMRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "not a pem", "-----BEGIN PUBLIC KEY-----\nAAAA\n-----END PUBLIC KEY-----\n"} {
		if _, _, err := ParsePublicKeyPEM(input); !errors.Is(err, ErrInvalidPublicKey) {
			t.Fatalf("expected ErrInvalidPublicKey for %q, got %v", input, err)
		}
	}
}

// FuzzInspectAccessToken checks the inspector never panics on arbitrary input.
func FuzzInspectAccessToken(f *testing.F) {
	f.Add("eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ1In0.sig")
	f.Add("..")
	f.Add("a.b.c")
	f.Fuzz(func(t *testing.T, token string) {
		_, _ = InspectAccessToken(token)
	})
}
