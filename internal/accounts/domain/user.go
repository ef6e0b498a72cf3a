package domain

import "time"

// User is the single persisted entity. Username and Email are stored
// normalized (lowercased, trimmed) and are unique. RefreshToken holds the
// currently valid refresh token verbatim; empty means no active session.
type User struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	AvatarURL     string
	CoverImageURL string   // optional, "" when the user never set one
	WatchHistory  []string // video IDs in watch order
	PasswordHash  string   // bcrypt encoded
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicUser is the caller-facing view of a User with credentials stripped.
type PublicUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	WatchHistory  []string  `json:"watch_history,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Public returns the sanitized view of u. The password hash and refresh
// token never leave the service through any other path.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		WatchHistory:  u.WatchHistory,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
