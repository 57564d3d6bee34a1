package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Inspect parses a bearer token without verifying its signature. Signature
// verification is the backend's job; the client only reads the claims to
// know whether the token is still worth sending.
func Inspect(tokenStr string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	return claims, nil
}

// Expired reports whether the token has an expiry claim in the past.
// Tokens without an expiry claim never expire. Malformed tokens are
// reported as an error so the caller can fail with a clear message
// instead of a doomed request.
func Expired(tokenStr string, now time.Time) (bool, error) {
	claims, err := Inspect(tokenStr)
	if err != nil {
		return false, err
	}
	if claims.ExpiresAt == nil {
		return false, nil
	}
	return claims.ExpiresAt.Before(now), nil
}
