package service

import (
	"context"
	"errors"
	"strings"

	"github.com/cliptube/cliptube/internal/accounts/domain"
	"github.com/cliptube/cliptube/internal/accounts/store"
	"github.com/cliptube/cliptube/pkg/cryptox"
)

type UserService struct {
	Store  store.Store
	Hasher cryptox.Hasher
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// ChangePassword verifies the current password before replacing it. Setting
// the same password again is accepted without rewriting the hash.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrInvalidInput
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.Hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if newPassword == oldPassword {
		return nil
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
}

// UpdateAvatar replaces the avatar reference. Avatars are mandatory, so a
// blank URL is rejected.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, url string) (domain.User, error) {
	if strings.TrimSpace(url) == "" {
		return domain.User{}, ErrInvalidInput
	}
	if err := s.Store.Users().UpdateAvatarURL(ctx, userID, url); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return s.GetUserByID(ctx, userID)
}

// UpdateCoverImage replaces the cover image reference. Covers are optional;
// an empty URL clears the current one.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID, url string) (domain.User, error) {
	if err := s.Store.Users().UpdateCoverImageURL(ctx, userID, url); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return s.GetUserByID(ctx, userID)
}

// RecordWatch appends a video to the user's watch history.
func (s *UserService) RecordWatch(ctx context.Context, userID, videoID string) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return ErrInvalidInput
	}

	// Make sure the user exists first; the history table only enforces
	// this via FK and we want a typed error.
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return err
	}
	return s.Store.Users().AppendWatchHistory(ctx, userID, videoID)
}

// WatchHistory returns the user's watch history in watch order.
func (s *UserService) WatchHistory(ctx context.Context, userID string) ([]string, error) {
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.Store.Users().ListWatchHistory(ctx, userID)
}
