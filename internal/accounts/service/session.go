package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cliptube/cliptube/internal/accounts/domain"
	"github.com/cliptube/cliptube/internal/accounts/store"
	"github.com/cliptube/cliptube/pkg/cryptox"
	"github.com/cliptube/cliptube/pkg/idx"
	"github.com/cliptube/cliptube/pkg/jwtx"
	"github.com/cliptube/cliptube/pkg/slogx"
)

var (
	ErrInvalidInput       = errors.New("invalid_input")
	ErrDuplicateUser      = errors.New("duplicate_user")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrMissingRefresh     = errors.New("missing_refresh_token")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrStaleRefresh       = errors.New("stale_refresh_token")
)

// SessionService owns registration and the access/refresh token lifecycle.
// Refresh tokens are stored verbatim on the user row; only the most recently
// issued one is valid, so every refresh rotates the stored value and any
// replay of an older token fails.
type SessionService struct {
	Store           store.Store
	Hasher          cryptox.Hasher
	AccessSigner    jwtx.Signer
	RefreshSigner   jwtx.Signer
	RefreshVerifier jwtx.Verifier
	Issuer          string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
}

type RegisterParams struct {
	FullName      string
	Email         string
	Username      string
	Password      string
	AvatarURL     string
	CoverImageURL string
}

// Register creates a new account. Username and email are normalized before
// the uniqueness check; the database constraints remain the authoritative
// guard against races.
func (s *SessionService) Register(ctx context.Context, p RegisterParams) (domain.PublicUser, error) {
	l := slogx.FromContext(ctx)

	p.FullName = strings.TrimSpace(p.FullName)
	p.Email = normalize(p.Email)
	p.Username = normalize(p.Username)

	if p.FullName == "" || p.Email == "" || p.Username == "" || p.Password == "" {
		return domain.PublicUser{}, ErrInvalidInput
	}
	if !strings.Contains(p.Email, "@") {
		return domain.PublicUser{}, ErrInvalidInput
	}
	if p.AvatarURL == "" {
		return domain.PublicUser{}, ErrInvalidInput
	}

	hash, err := s.Hasher.Hash(p.Password)
	if err != nil {
		return domain.PublicUser{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:            idx.New().String(),
		Username:      p.Username,
		Email:         p.Email,
		FullName:      p.FullName,
		AvatarURL:     p.AvatarURL,
		CoverImageURL: p.CoverImageURL,
		PasswordHash:  hash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().GetUserByUsernameOrEmail(ctx, user.Username, user.Email)
		if err == nil {
			return ErrDuplicateUser
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateUser
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.PublicUser{}, err
	}

	l.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user.Public(), nil
}

// Login verifies the credentials for a username or email identifier and
// opens a session by issuing a fresh token pair.
func (s *SessionService) Login(ctx context.Context, identifier, password string) (domain.PublicUser, domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	identifier = normalize(identifier)
	if identifier == "" || password == "" {
		return domain.PublicUser{}, domain.TokenPair{}, ErrInvalidInput
	}

	user, err := s.Store.Users().GetUserByUsernameOrEmail(ctx, identifier, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PublicUser{}, domain.TokenPair{}, ErrUserNotFound
		}
		return domain.PublicUser{}, domain.TokenPair{}, err
	}

	ok, err := s.Hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return domain.PublicUser{}, domain.TokenPair{}, err
	}
	if !ok {
		l.Info("login rejected", slog.String("user_id", user.ID))
		return domain.PublicUser{}, domain.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return domain.PublicUser{}, domain.TokenPair{}, err
	}

	l.Info("session opened", slog.String("user_id", user.ID))
	return user.Public(), pair, nil
}

// Logout closes the user's session by clearing the stored refresh token.
// Logging out with no active session succeeds.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	if err := s.Store.Users().ClearRefreshToken(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	slogx.FromContext(ctx).Info("session closed", slog.String("user_id", userID))
	return nil
}

// Refresh exchanges a valid refresh token for a new token pair, rotating
// the stored refresh token in the process. The presented token must match
// the stored one exactly; anything else is treated as a stale or replayed
// token and rejected.
func (s *SessionService) Refresh(ctx context.Context, presented string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	presented = strings.TrimSpace(presented)
	if presented == "" {
		return domain.TokenPair{}, ErrMissingRefresh
	}

	claims, err := s.RefreshVerifier.Verify(presented)
	if err != nil {
		return domain.TokenPair{}, errors.Join(ErrInvalidToken, err)
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidToken
		}
		return domain.TokenPair{}, err
	}

	if user.RefreshToken == "" ||
		subtle.ConstantTimeCompare([]byte(presented), []byte(user.RefreshToken)) != 1 {
		l.Warn("stale refresh token presented", slog.String("user_id", user.ID))
		return domain.TokenPair{}, ErrStaleRefresh
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return domain.TokenPair{}, err
	}

	l.Info("session refreshed", slog.String("user_id", user.ID))
	return pair, nil
}

// issuePair signs a fresh access/refresh pair and persists the refresh
// token as the user's single valid session token.
func (s *SessionService) issuePair(ctx context.Context, user domain.User) (domain.TokenPair, error) {
	now := time.Now()

	access, err := s.AccessSigner.Sign(jwtx.NewAccessClaims(
		user.ID, user.Email, user.Username, user.FullName,
		s.AccessTTL, s.Issuer, now,
	))
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.RefreshSigner.Sign(jwtx.NewRefreshClaims(
		user.ID, s.RefreshTTL, s.Issuer, now,
	))
	if err != nil {
		return domain.TokenPair{}, err
	}

	if err := s.Store.Users().UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
