package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every decode failure: bad signature, malformed
// payload, expired token, or a purpose mismatch.
var ErrInvalidToken = errors.New("invalid token")

// Purpose is embedded in every token and checked on decode, so an access
// token can never be replayed against a verification or reset endpoint.
type Purpose string

const (
	PurposeAccess        Purpose = "access"
	PurposeVerifyEmail   Purpose = "verify_email"
	PurposeResetPassword Purpose = "reset_password"
)

// Action tokens back out-of-band flows (email links), so they live longer
// than access tokens.
const actionTokenTTL = 7 * 24 * time.Hour

type Claims struct {
	Purpose Purpose `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies the compact identity assertions used for
// per-request auth and for email verification / password reset links.
// Tokens are stateless; expiry embedded in the signed payload is the only
// lifecycle control.
type TokenCodec struct {
	secret    []byte
	method    jwt.SigningMethod
	accessTTL time.Duration
}

func NewTokenCodec(secret []byte, algorithm string, accessTTL time.Duration) (*TokenCodec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if len(secret) == 0 {
		return nil, errors.New("signing secret is empty")
	}
	return &TokenCodec{secret: secret, method: method, accessTTL: accessTTL}, nil
}

// IssueAccessToken mints a short-lived token whose subject is the username.
// A ttl of zero falls back to the configured default; a negative ttl yields
// a token that is already expired.
func (c *TokenCodec) IssueAccessToken(subject string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = c.accessTTL
	}
	now := time.Now()
	claims := Claims{
		Purpose: PurposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// IssueActionToken mints a 7-day token whose subject is the email address.
func (c *TokenCodec) IssueActionToken(subject string, purpose Purpose) (string, error) {
	now := time.Now()
	claims := Claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(actionTokenTTL)),
		},
	}
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// Decode verifies signature, expiry, and purpose, returning the claims.
func (c *TokenCodec) Decode(tokenString string, purpose Purpose) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
