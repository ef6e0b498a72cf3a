package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Overridable per service via configuration.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	// Short-lived; typical range is 15m to 1h.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	// Long-lived; typical range is 7d to 30d.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the payload carried by both token kinds. Access tokens carry
// the full identity; refresh tokens carry only the subject. Keep changes
// additive to preserve compatibility with already-issued tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user (access tokens only).
	Email string `json:"email,omitempty"`

	// Username is the unique identity handle (access tokens only).
	Username string `json:"username,omitempty"`

	// FullName is the display name (access tokens only).
	FullName string `json:"full_name,omitempty"`
}

// NewAccessClaims builds the claims for a short-lived access token.
func NewAccessClaims(
	subject, email, username, fullName string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: registered(subject, ttl, issuer, now),
		Email:            email,
		Username:         username,
		FullName:         fullName,
	}
}

// NewRefreshClaims builds the claims for a long-lived refresh token. Only
// the subject goes in; everything else is re-derived at refresh time.
func NewRefreshClaims(subject string, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{RegisteredClaims: registered(subject, ttl, issuer, now)}
}

func registered(subject string, ttl time.Duration, issuer string, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        NewJTI(),
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim, so two
// tokens minted in the same second still differ.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
