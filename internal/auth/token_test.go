package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{Subject: "tester"}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestInspect(t *testing.T) {
	claims, err := Inspect(signedToken(t, time.Time{}))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if claims.Subject != "tester" {
		t.Errorf("expected subject 'tester', got %q", claims.Subject)
	}

	if _, err := Inspect("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()

	expired, err := Expired(signedToken(t, now.Add(-time.Hour)), now)
	if err != nil {
		t.Fatalf("Expired: %v", err)
	}
	if !expired {
		t.Error("expected past token to be expired")
	}

	expired, err = Expired(signedToken(t, now.Add(time.Hour)), now)
	if err != nil {
		t.Fatalf("Expired: %v", err)
	}
	if expired {
		t.Error("expected future token to be valid")
	}

	// No expiry claim means the token never expires.
	expired, err = Expired(signedToken(t, time.Time{}), now)
	if err != nil {
		t.Fatalf("Expired: %v", err)
	}
	if expired {
		t.Error("expected token without expiry to be valid")
	}

	if _, err := Expired("garbage", now); err == nil {
		t.Error("expected error for malformed token")
	}
}
