package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned for an access token that is not a compact JWS.
var ErrNotJWT = errors.New("access token is not a jwt")

// AccessClaims is the subset of registered claims surfaced to applications.
type AccessClaims struct {
	Subject   string
	Issuer    string
	Audience  []string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
	NotBefore time.Time
	Algorithm string
	Extra     map[string]any
}

var registeredClaimNames = map[string]struct{}{
	"sub": {}, "iss": {}, "aud": {}, "jti": {}, "iat": {}, "exp": {}, "nbf": {},
}

// InspectAccessToken decodes token claims without verifying the signature.
func InspectAccessToken(token string) (*AccessClaims, error) {
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return nil, ErrNotJWT
	}

	claims := jwt.MapClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	out := &AccessClaims{
		Algorithm: parsed.Method.Alg(),
		Extra:     map[string]any{},
	}
	if out.Subject, err = claims.GetSubject(); err != nil {
		return nil, err
	}
	if out.Issuer, err = claims.GetIssuer(); err != nil {
		return nil, err
	}
	aud, err := claims.GetAudience()
	if err != nil {
		return nil, err
	}
	out.Audience = []string(aud)
	if jti, ok := claims["jti"].(string); ok {
		out.ID = jti
	}

	if out.IssuedAt, err = numericTime(claims.GetIssuedAt()); err != nil {
		return nil, err
	}
	if out.ExpiresAt, err = numericTime(claims.GetExpirationTime()); err != nil {
		return nil, err
	}
	if out.NotBefore, err = numericTime(claims.GetNotBefore()); err != nil {
		return nil, err
	}

	for k, v := range claims {
		if _, registered := registeredClaimNames[k]; !registered {
			out.Extra[k] = v
		}
	}
	return out, nil
}

func numericTime(d *jwt.NumericDate, err error) (time.Time, error) {
	if err != nil {
		return time.Time{}, err
	}
	if d == nil {
		return time.Time{}, nil
	}
	return d.Time, nil
}

// Expired reports whether the token has an expiry at or before now.
func (c *AccessClaims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// TTL returns the time left before expiry, or 0 when expired or unbounded.
func (c *AccessClaims) TTL(now time.Time) time.Duration {
	if c == nil || c.ExpiresAt.IsZero() || c.Expired(now) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
