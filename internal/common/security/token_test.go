package security

import (
	"testing"
	"time"
)

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec([]byte("test-secret"), "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec error: %v", err)
	}
	return codec
}

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	token, err := codec.IssueAccessToken("agent007", 0)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	claims, err := codec.Decode(token, PurposeAccess)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if claims.Subject != "agent007" {
		t.Fatalf("subject mismatch: got %q want %q", claims.Subject, "agent007")
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected a future exp, got %v", claims.ExpiresAt)
	}
}

func TestAccessToken_Expired(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	token, err := codec.IssueAccessToken("agent007", -time.Second)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	if _, err := codec.Decode(token, PurposeAccess); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestDecode_WrongSecret(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	other, err := NewTokenCodec([]byte("other-secret"), "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec error: %v", err)
	}

	token, err := codec.IssueAccessToken("agent007", 0)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	if _, err := other.Decode(token, PurposeAccess); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	if _, err := codec.Decode("not.a.jwt", PurposeAccess); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestDecode_PurposeMismatch(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	access, err := codec.IssueAccessToken("agent007", 0)
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	// An access token must not pass where an action token is expected.
	if _, err := codec.Decode(access, PurposeResetPassword); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for purpose mismatch, got %v", err)
	}

	action, err := codec.IssueActionToken("agent007@gmail.com", PurposeVerifyEmail)
	if err != nil {
		t.Fatalf("IssueActionToken error: %v", err)
	}
	if _, err := codec.Decode(action, PurposeAccess); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for purpose mismatch, got %v", err)
	}
}

func TestActionToken_Claims(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	token, err := codec.IssueActionToken("agent007@gmail.com", PurposeVerifyEmail)
	if err != nil {
		t.Fatalf("IssueActionToken error: %v", err)
	}

	claims, err := codec.Decode(token, PurposeVerifyEmail)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if claims.Subject != "agent007@gmail.com" {
		t.Fatalf("subject mismatch: got %q", claims.Subject)
	}
	if claims.IssuedAt == nil {
		t.Fatalf("action token must carry iat")
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != 7*24*time.Hour {
		t.Fatalf("action token ttl: got %v want %v", ttl, 7*24*time.Hour)
	}
}
