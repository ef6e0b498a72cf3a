package domain

import "time"

// TokenPair is what a successful login or refresh returns: a short-lived
// access token (JWT) and the long-lived refresh token that replaces any
// previously issued one.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // access token lifetime
}
