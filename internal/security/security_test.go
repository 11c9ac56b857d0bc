package security

import (
	"errors"
	"testing"
	"time"
)

func TestUserTokenRoundTrip(t *testing.T) {
	token, errCreate := CreateUserToken("secret", time.Hour, 42)
	if errCreate != nil {
		t.Fatalf("create token: %v", errCreate)
	}

	claims, errParse := ParseUserToken("secret", token)
	if errParse != nil {
		t.Fatalf("parse token: %v", errParse)
	}
	if claims.AccountID != 42 {
		t.Fatalf("expected account 42, got %d", claims.AccountID)
	}
}

func TestTokenKindsDoNotCross(t *testing.T) {
	adminToken, errCreate := CreateAdminToken("secret", time.Hour, 1)
	if errCreate != nil {
		t.Fatalf("create admin token: %v", errCreate)
	}
	if _, errParse := ParseUserToken("secret", adminToken); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("admin token must not validate as user token, got %v", errParse)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, _ := CreateUserToken("secret", time.Hour, 1)
	if _, errParse := ParseUserToken("other", token); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestCreateTokenRequiresSecret(t *testing.T) {
	if _, errCreate := CreateUserToken("  ", time.Hour, 1); errCreate == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, errHash := HashPassword("hunter2")
	if errHash != nil {
		t.Fatalf("hash: %v", errHash)
	}
	if hash == "hunter2" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatalf("expected password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestTOTPSecretGeneration(t *testing.T) {
	secret, url, errGenerate := GenerateTOTPSecret("PitchSmith", "admin")
	if errGenerate != nil {
		t.Fatalf("generate: %v", errGenerate)
	}
	if secret == "" || url == "" {
		t.Fatalf("expected non-empty secret and url")
	}
	if ValidateTOTP(secret, "000000") {
		t.Fatalf("arbitrary code must not validate")
	}
}
