package jwtx_test

import (
	"testing"
	"time"

	"github.com/cliptube/cliptube/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testIssuer = "cliptube-accounts"

var (
	accessSecret  = []byte("test-access-secret")
	refreshSecret = []byte("test-refresh-secret")
)

func newPair(t *testing.T, secret []byte) (jwtx.Signer, jwtx.Verifier) {
	t.Helper()

	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)

	verifier, err := jwtx.NewVerifierHS256(secret, jwtx.VerifyOptions{Issuer: testIssuer})
	require.NoError(t, err)

	return signer, verifier
}

func TestAccessTokenRoundTrip(t *testing.T) {
	signer, verifier := newPair(t, accessSecret)

	now := time.Now().UTC()
	claims := jwtx.NewAccessClaims(
		"01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV",
		"ada@example.com",
		"ada",
		"Ada Lovelace",
		time.Minute,
		testIssuer,
		now,
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", got.Subject)
	require.Equal(t, "ada@example.com", got.Email)
	require.Equal(t, "ada", got.Username)
	require.Equal(t, "Ada Lovelace", got.FullName)
	require.Equal(t, testIssuer, got.Issuer)
}

func TestRefreshClaimsCarrySubjectOnly(t *testing.T) {
	signer, verifier := newPair(t, refreshSecret)

	token, err := signer.Sign(jwtx.NewRefreshClaims("user-1", time.Hour, testIssuer, time.Now().UTC()))
	require.NoError(t, err)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Empty(t, got.Email)
	require.Empty(t, got.Username)
	require.Empty(t, got.FullName)
}

func TestVerifyWrongSecret(t *testing.T) {
	signer, _ := newPair(t, accessSecret)
	_, wrongVerifier := newPair(t, refreshSecret)

	token, err := signer.Sign(jwtx.NewRefreshClaims("user-1", time.Hour, testIssuer, time.Now().UTC()))
	require.NoError(t, err)

	_, err = wrongVerifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestVerifyExpired(t *testing.T) {
	signer, verifier := newPair(t, accessSecret)

	issued := time.Now().UTC().Add(-2 * time.Hour)
	token, err := signer.Sign(jwtx.NewRefreshClaims("user-1", time.Hour, testIssuer, issued))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerifyMalformed(t *testing.T) {
	_, verifier := newPair(t, accessSecret)

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := verifier.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "input %q", raw)
	}
}

func TestVerifyIssuerMismatch(t *testing.T) {
	signer, verifier := newPair(t, accessSecret)

	token, err := signer.Sign(jwtx.NewRefreshClaims("user-1", time.Hour, "someone-else", time.Now().UTC()))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestVerifyRejectsForeignAlgorithm(t *testing.T) {
	_, verifier := newPair(t, accessSecret)

	// A token signed with HS384, even with the right secret, must not pass.
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS384,
		jwtx.NewRefreshClaims("user-1", time.Hour, testIssuer, time.Now().UTC()))
	raw, err := foreign.SignedString(accessSecret)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.Error(t, err)
}

func TestConstructorsRejectEmptySecret(t *testing.T) {
	_, err := jwtx.NewSignerHS256(nil)
	require.ErrorIs(t, err, jwtx.ErrNoSecret)

	_, err = jwtx.NewVerifierHS256(nil, jwtx.VerifyOptions{})
	require.ErrorIs(t, err, jwtx.ErrNoSecret)
}
