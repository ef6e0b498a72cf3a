package store

import (
	"context"
	"errors"

	"github.com/cliptube/cliptube/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Sub-repositories are exposed as methods so transactional
// and plain access share the same shape.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id, watch history included.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsernameOrEmail matches either column; callers pass the
	// normalized identifier in both positions for single-field login.
	GetUserByUsernameOrEmail(ctx context.Context, username, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the username or email is taken; the
	// database unique constraints are the authoritative guard.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateRefreshToken replaces the stored refresh token, invalidating
	// whatever was there before, and bumps updated_at.
	UpdateRefreshToken(ctx context.Context, userID, token string) error

	// ClearRefreshToken resets the stored refresh token to unset.
	// Clearing an already-clear token is a no-op, not an error.
	ClearRefreshToken(ctx context.Context, userID string) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// UpdateAvatarURL replaces the avatar reference.
	UpdateAvatarURL(ctx context.Context, userID, url string) error

	// UpdateCoverImageURL replaces the cover image reference ("" clears it).
	UpdateCoverImageURL(ctx context.Context, userID, url string) error

	// AppendWatchHistory records a watched video at the end of the
	// user's history.
	AppendWatchHistory(ctx context.Context, userID, videoID string) error

	// ListWatchHistory returns video IDs in watch order.
	ListWatchHistory(ctx context.Context, userID string) ([]string, error)

	// CountUsers returns the total number of users.
	CountUsers(ctx context.Context) (int64, error)
}
