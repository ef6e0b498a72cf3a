package sqlite

import (
	"context"
	"time"

	"github.com/cliptube/cliptube/internal/accounts/domain"
	"github.com/cliptube/cliptube/internal/accounts/store"
)

type usersRepo struct {
	db querier
}

const userColumns = `id, username, email, full_name, avatar_url, cover_image_url, password_hash, refresh_token, created_at, updated_at`

func (r *usersRepo) scanUser(ctx context.Context, query string, args ...any) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FullName,
		&u.AvatarURL,
		&u.CoverImageURL,
		&u.PasswordHash,
		&u.RefreshToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.WatchHistory, err = r.ListWatchHistory(ctx, u.ID)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *usersRepo) GetUserByUsernameOrEmail(ctx context.Context, username, email string) (domain.User, error) {
	return r.scanUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? OR email = ? LIMIT 1`,
		username, email,
	)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, full_name, avatar_url, cover_image_url, password_hash, refresh_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Username,
		u.Email,
		u.FullName,
		u.AvatarURL,
		u.CoverImageURL,
		u.PasswordHash,
		u.RefreshToken,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return nil
}

// setColumn updates a single user column plus updated_at, translating a
// zero-row update into ErrNotFound.
func (r *usersRepo) setColumn(ctx context.Context, column, value, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	return r.setColumn(ctx, "refresh_token", token, userID)
}

func (r *usersRepo) ClearRefreshToken(ctx context.Context, userID string) error {
	return r.setColumn(ctx, "refresh_token", "", userID)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	return r.setColumn(ctx, "password_hash", newHash, userID)
}

func (r *usersRepo) UpdateAvatarURL(ctx context.Context, userID, url string) error {
	return r.setColumn(ctx, "avatar_url", url, userID)
}

func (r *usersRepo) UpdateCoverImageURL(ctx context.Context, userID, url string) error {
	return r.setColumn(ctx, "cover_image_url", url, userID)
}

func (r *usersRepo) AppendWatchHistory(ctx context.Context, userID, videoID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO watch_history (user_id, video_id, watched_at) VALUES (?, ?, ?)`,
		userID, videoID, time.Now().UTC(),
	)
	return err
}

func (r *usersRepo) ListWatchHistory(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT video_id FROM watch_history WHERE user_id = ? ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
