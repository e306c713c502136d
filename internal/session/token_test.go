package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestDecodeToken_ReadsIdentityAndExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signedToken(t, jwt.MapClaims{
		"sub": "mara",
		"sid": "sess-42",
		"exp": exp.Unix(),
	})

	tok, err := DecodeToken(raw)
	if err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if tok.Subject != "mara" {
		t.Errorf("Subject = %q, want mara", tok.Subject)
	}
	if tok.SessionID != "sess-42" {
		t.Errorf("SessionID = %q, want sess-42", tok.SessionID)
	}
	if !tok.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", tok.ExpiresAt, exp)
	}
	if tok.Expired(time.Now()) {
		t.Error("token should not be expired yet")
	}
	if !tok.Expired(exp.Add(time.Minute)) {
		t.Error("token should be expired after exp")
	}
}

func TestDecodeToken_SignatureIsNotChecked(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "mara"})
	// Corrupt the signature; local decode must still succeed because the
	// server is the trust authority, not this client.
	tampered := raw[:len(raw)-4] + "AAAA"

	tok, err := DecodeToken(tampered)
	if err != nil {
		t.Fatalf("DecodeToken on tampered signature: %v", err)
	}
	if tok.Subject != "mara" {
		t.Errorf("Subject = %q, want mara", tok.Subject)
	}
}

func TestDecodeToken_SessionIDFallsBackToJTI(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "mara", "jti": "legacy-7"})

	tok, err := DecodeToken(raw)
	if err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if tok.SessionID != "legacy-7" {
		t.Errorf("SessionID = %q, want legacy-7", tok.SessionID)
	}
}

func TestDecodeToken_Errors(t *testing.T) {
	if _, err := DecodeToken(""); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("empty token error = %v, want ErrEmptyToken", err)
	}
	if _, err := DecodeToken("not-a-jwt"); !errors.Is(err, ErrMalformedToken) {
		t.Errorf("malformed token error = %v, want ErrMalformedToken", err)
	}
}

func TestToken_NoExpNeverExpiresLocally(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "mara"})
	tok, err := DecodeToken(raw)
	if err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if tok.Expired(time.Now().Add(100 * 365 * 24 * time.Hour)) {
		t.Error("token without exp should never expire locally")
	}
}
