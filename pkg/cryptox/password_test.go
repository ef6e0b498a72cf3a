package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost) // keep tests fast

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"unicode password", "пароль密码"},
		{"whitespace password", "   spaces   "},
		{"empty password", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.Hash(tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, hash)
			require.NotContains(t, hash, tt.password, "hash must not embed the plaintext")

			ok, err := hasher.Verify(tt.password, hash)
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = hasher.Verify(tt.password+"x", hash)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestHashUniqueSalts(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	hash1, err := hasher.Hash("samepassword")
	require.NoError(t, err)
	hash2, err := hasher.Hash("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")

	for _, h := range []string{hash1, hash2} {
		ok, err := hasher.Verify("samepassword", h)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestVerifyMismatchIsNotAnError(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{"a", "wrong-password", strings.Repeat("x", 60)} {
		ok, err := hasher.Verify(wrong, hash)
		require.NoError(t, err, "mismatch must not surface as an error")
		require.False(t, ok)
	}
}

func TestVerifyGarbageHashIsAnError(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	for _, garbage := range []string{"", "not-a-hash", "$argon2id$v=19$..."} {
		ok, err := hasher.Verify("anything", garbage)
		require.Error(t, err)
		require.False(t, ok)
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	require.Equal(t, DefaultCost, NewHasher(-1).Cost())
	require.Equal(t, DefaultCost, NewHasher(99).Cost())
	require.Equal(t, bcrypt.MinCost, NewHasher(bcrypt.MinCost).Cost())
}
