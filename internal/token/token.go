// Package token issues and verifies the signed bearer credentials used by
// the API. Tokens are self-contained HS256 JWTs binding a subject (the
// account email) to an expiry; there is no server-side session state and no
// revocation before expiry.
package token

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Verification failures, ordered by how far the token got.
var (
	ErrMalformed    = errors.New("token: malformed")
	ErrBadSignature = errors.New("token: signature mismatch")
	ErrExpired      = errors.New("token: expired")
)

// Codec signs and verifies tokens with a fixed secret and TTL. The secret is
// injected once at construction and never mutated, so a single Codec is safe
// for concurrent use across requests.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewCodec constructs a Codec for the given signing secret and token TTL.
func NewCodec(secret string, issuer string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Issue mints a signed token for the subject, expiring after the configured TTL.
func (c *Codec) Issue(subject string) (string, error) {
	now := time.Now()
	claims := jwtlib.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   subject,
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(c.ttl)),
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks the token's structure, signature, and expiry, in that order,
// and returns the embedded subject. Expiry is an exact cutoff; no leeway is
// granted.
func (c *Codec) Verify(raw string) (string, error) {
	claims := &jwtlib.RegisteredClaims{}
	parsed, err := jwtlib.ParseWithClaims(raw, claims, func(t *jwtlib.Token) (interface{}, error) {
		return c.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}))
	if err != nil {
		switch {
		case errors.Is(err, jwtlib.ErrTokenMalformed):
			return "", ErrMalformed
		case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
			return "", ErrBadSignature
		case errors.Is(err, jwtlib.ErrTokenExpired):
			return "", ErrExpired
		default:
			return "", ErrMalformed
		}
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrMalformed
	}
	return claims.Subject, nil
}
