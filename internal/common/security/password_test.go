package security

import (
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("12345678")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "12345678" {
		t.Fatalf("hash must not equal the plaintext")
	}

	if !CheckPasswordHash("12345678", hash) {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPasswordHash("12345679", hash) {
		t.Fatalf("expected mutated password to fail verification")
	}
}

func TestCheckPasswordHash_MalformedHash(t *testing.T) {
	t.Parallel()

	if CheckPasswordHash("password", "not-a-bcrypt-hash") {
		t.Fatalf("expected malformed stored hash to fail verification, not panic")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password should differ (salt)")
	}
}
