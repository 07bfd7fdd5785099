package auth

import (
	"strings"
	"testing"
)

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext password")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash %q does not look like bcrypt", hash)
	}

	if !hasher.Verify("correct horse battery staple", hash) {
		t.Error("Verify() rejected the correct password")
	}
	if hasher.Verify("wrong password", hash) {
		t.Error("Verify() accepted a wrong password")
	}
}

func TestPasswordHasher_DistinctSalts(t *testing.T) {
	hasher := NewPasswordHasher()

	h1, err := hasher.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := hasher.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password should differ (salted)")
	}
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(ResetTokenLength)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if len(token) != ResetTokenLength {
		t.Errorf("token length = %d, want %d", len(token), ResetTokenLength)
	}
	for _, c := range token {
		if !strings.ContainsRune(tokenChars, c) {
			t.Errorf("token contains unexpected character %q", c)
		}
	}

	other, err := GenerateToken(ResetTokenLength)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == other {
		t.Error("two generated tokens should differ")
	}

	short, err := GenerateToken(0)
	if err != nil {
		t.Fatalf("GenerateToken(0) error = %v", err)
	}
	if len(short) != ResetTokenLength {
		t.Errorf("zero length should fall back to default, got %d", len(short))
	}
}
