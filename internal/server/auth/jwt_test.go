package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/carechain/carechain/internal/common"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("alice@clinic.test", secret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	email, err := GetEmailFromToken(token, secret)
	if err != nil {
		t.Fatalf("GetEmailFromToken error: %v", err)
	}
	if email != "alice@clinic.test" {
		t.Fatalf("unexpected subject: %q", email)
	}
}

func TestExpiredToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("alice@clinic.test", secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetEmailFromToken(token, secret)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestWrongSecret(t *testing.T) {
	token, err := GenerateToken("alice@clinic.test", []byte("one"), time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetEmailFromToken(token, []byte("another"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGarbageToken(t *testing.T) {
	_, err := GetEmailFromToken("not-a-jwt", []byte("secret"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
