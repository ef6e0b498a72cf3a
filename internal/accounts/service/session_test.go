package service

import (
	"context"
	"testing"
	"time"

	"github.com/cliptube/cliptube/internal/accounts/store"
	"github.com/cliptube/cliptube/internal/accounts/store/drivers/sqlite"
	"github.com/cliptube/cliptube/pkg/cryptox"
	"github.com/cliptube/cliptube/pkg/jwtx"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testIssuer = "cliptube-accounts"

var (
	testAccessSecret  = []byte("test-access-secret")
	testRefreshSecret = []byte("test-refresh-secret")
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newSessionService(t *testing.T, s store.Store) *SessionService {
	t.Helper()

	accessSigner, err := jwtx.NewSignerHS256(testAccessSecret)
	require.NoError(t, err)
	refreshSigner, err := jwtx.NewSignerHS256(testRefreshSecret)
	require.NoError(t, err)
	refreshVerifier, err := jwtx.NewVerifierHS256(testRefreshSecret, jwtx.VerifyOptions{Issuer: testIssuer})
	require.NoError(t, err)

	return &SessionService{
		Store:           s,
		Hasher:          cryptox.NewHasher(bcrypt.MinCost),
		AccessSigner:    accessSigner,
		RefreshSigner:   refreshSigner,
		RefreshVerifier: refreshVerifier,
		Issuer:          testIssuer,
		AccessTTL:       15 * time.Minute,
		RefreshTTL:      7 * 24 * time.Hour,
	}
}

func testRegisterParams() RegisterParams {
	return RegisterParams{
		FullName:  "Ada Lovelace",
		Email:     "ada@example.com",
		Username:  "ada",
		Password:  "correct horse battery staple",
		AvatarURL: "https://cdn.example.com/avatars/ada.png",
	}
}

func TestSessionService_Register(t *testing.T) {
	s := newTestStore(t)
	svc := newSessionService(t, s)
	ctx := context.Background()

	pub, err := svc.Register(ctx, testRegisterParams())
	require.NoError(t, err)
	require.NotEmpty(t, pub.ID)
	require.Equal(t, "ada", pub.Username)
	require.Equal(t, "ada@example.com", pub.Email)

	t.Run("normalizes identifiers", func(t *testing.T) {
		p := testRegisterParams()
		p.Username = "  GRACE  "
		p.Email = "Grace@Example.COM"
		p.FullName = "Grace Hopper"

		pub, err := svc.Register(ctx, p)
		require.NoError(t, err)
		require.Equal(t, "grace", pub.Username)
		require.Equal(t, "grace@example.com", pub.Email)
	})

	t.Run("duplicate username", func(t *testing.T) {
		before, err := s.Users().CountUsers(ctx)
		require.NoError(t, err)

		p := testRegisterParams()
		p.Email = "ada2@example.com"
		_, err = svc.Register(ctx, p)
		require.ErrorIs(t, err, ErrDuplicateUser)

		// Conflict must not leave a record behind
		after, err := s.Users().CountUsers(ctx)
		require.NoError(t, err)
		require.Equal(t, before, after)
	})

	t.Run("duplicate email different case", func(t *testing.T) {
		p := testRegisterParams()
		p.Username = "ada2"
		p.Email = "ADA@example.com"
		_, err := svc.Register(ctx, p)
		require.ErrorIs(t, err, ErrDuplicateUser)
	})

	t.Run("missing fields", func(t *testing.T) {
		for name, mutate := range map[string]func(*RegisterParams){
			"full name": func(p *RegisterParams) { p.FullName = "   " },
			"email":     func(p *RegisterParams) { p.Email = "" },
			"username":  func(p *RegisterParams) { p.Username = "" },
			"password":  func(p *RegisterParams) { p.Password = "" },
			"avatar":    func(p *RegisterParams) { p.AvatarURL = "" },
		} {
			t.Run(name, func(t *testing.T) {
				p := testRegisterParams()
				mutate(&p)
				_, err := svc.Register(ctx, p)
				require.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})

	t.Run("malformed email", func(t *testing.T) {
		p := testRegisterParams()
		p.Username = "noat"
		p.Email = "not-an-email"
		_, err := svc.Register(ctx, p)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestSessionService_Login(t *testing.T) {
	s := newTestStore(t)
	svc := newSessionService(t, s)
	ctx := context.Background()

	reg, err := svc.Register(ctx, testRegisterParams())
	require.NoError(t, err)

	t.Run("by username", func(t *testing.T) {
		pub, pair, err := svc.Login(ctx, "ada", "correct horse battery staple")
		require.NoError(t, err)
		require.Equal(t, reg.ID, pub.ID)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, "Bearer", pair.TokenType)

		// Refresh token is persisted verbatim on the user row
		stored, err := s.Users().GetUserByID(ctx, reg.ID)
		require.NoError(t, err)
		require.Equal(t, pair.RefreshToken, stored.RefreshToken)
	})

	t.Run("by email mixed case", func(t *testing.T) {
		pub, _, err := svc.Login(ctx, "ADA@Example.com", "correct horse battery staple")
		require.NoError(t, err)
		require.Equal(t, reg.ID, pub.ID)
	})

	t.Run("access token carries profile claims", func(t *testing.T) {
		_, pair, err := svc.Login(ctx, "ada", "correct horse battery staple")
		require.NoError(t, err)

		v, err := jwtx.NewVerifierHS256(testAccessSecret, jwtx.VerifyOptions{Issuer: testIssuer})
		require.NoError(t, err)
		claims, err := v.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, reg.ID, claims.Subject)
		require.Equal(t, "ada@example.com", claims.Email)
		require.Equal(t, "ada", claims.Username)
		require.Equal(t, "Ada Lovelace", claims.FullName)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ada", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody", "whatever")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestSessionService_Refresh(t *testing.T) {
	s := newTestStore(t)
	svc := newSessionService(t, s)
	ctx := context.Background()

	reg, err := svc.Register(ctx, testRegisterParams())
	require.NoError(t, err)
	_, pair, err := svc.Login(ctx, "ada", "correct horse battery staple")
	require.NoError(t, err)

	t.Run("rotates the stored token", func(t *testing.T) {
		next, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, next.AccessToken)
		require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		stored, err := s.Users().GetUserByID(ctx, reg.ID)
		require.NoError(t, err)
		require.Equal(t, next.RefreshToken, stored.RefreshToken)

		// The old token was rotated out; replaying it must fail
		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrStaleRefresh)

		pair = next
	})

	t.Run("blank token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "   ")
		require.ErrorIs(t, err, ErrMissingRefresh)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "not.a.jwt")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with wrong secret", func(t *testing.T) {
		bad, err := jwtx.NewSignerHS256([]byte("some-other-secret"))
		require.NoError(t, err)
		tok, err := bad.Sign(jwtx.NewRefreshClaims(reg.ID, time.Hour, testIssuer, time.Now()))
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("after logout", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, reg.ID))
		_, err := svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrStaleRefresh)
	})
}

func TestSessionService_Logout(t *testing.T) {
	s := newTestStore(t)
	svc := newSessionService(t, s)
	ctx := context.Background()

	reg, err := svc.Register(ctx, testRegisterParams())
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "ada", "correct horse battery staple")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, reg.ID))

	stored, err := s.Users().GetUserByID(ctx, reg.ID)
	require.NoError(t, err)
	require.Empty(t, stored.RefreshToken)

	// Idempotent for a user with no open session
	require.NoError(t, svc.Logout(ctx, reg.ID))

	t.Run("unknown user", func(t *testing.T) {
		require.ErrorIs(t, svc.Logout(ctx, "no-such-user"), ErrUserNotFound)
	})
}
