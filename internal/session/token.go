package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors.
var (
	ErrEmptyToken     = errors.New("session token is empty")
	ErrMalformedToken = errors.New("session token is malformed")
)

// Token is the locally decoded view of a session token. The client reads
// identity and expiry out of it and nothing more; the signature is never
// verified here, the server stays the trust authority.
type Token struct {
	Raw       string
	Subject   string
	SessionID string
	ExpiresAt time.Time
}

// DecodeToken parses a raw JWT without verifying it.
func DecodeToken(raw string) (*Token, error) {
	if raw == "" {
		return nil, ErrEmptyToken
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	token := &Token{Raw: raw}

	if sub, err := claims.GetSubject(); err == nil {
		token.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		token.ExpiresAt = exp.Time
	}
	if sid, ok := claims["sid"].(string); ok {
		token.SessionID = sid
	}
	// Older tokens carry the session id under jti.
	if token.SessionID == "" {
		if jti, ok := claims["jti"].(string); ok {
			token.SessionID = jti
		}
	}

	return token, nil
}

// Expired reports whether the token's expiry has passed. Tokens without an
// exp claim never expire locally; the server rejects them if it disagrees.
func (t *Token) Expired(now time.Time) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return now.After(t.ExpiresAt)
}
