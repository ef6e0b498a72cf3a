package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSecret reports a signer or verifier constructed without key material.
var ErrNoSecret = errors.New("jwtx: empty secret")

// Signer is anything that can sign a set of claims into a compact JWT.
type Signer interface {
	Sign(Claims) (string, error)
}

// NewSignerHS256 creates an HMAC-SHA256 signer. Access and refresh tokens
// should each get their own signer with an independent secret so that
// compromise of one kind does not compromise the other.
func NewSignerHS256(secret []byte) (Signer, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	return &hs256Signer{secret: secret}, nil
}

type hs256Signer struct {
	secret []byte
}

func (s *hs256Signer) Sign(c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}
