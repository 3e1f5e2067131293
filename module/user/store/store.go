package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"LSProject/module/user/model"
	"LSProject/tools/errs"
)

// Store profiles / follows 两张表的读写
type Store struct {
	Pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store { return &Store{Pool: pool} }

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, user_name, COALESCE(field,''), COALESCE(avatar_url,''), COALESCE(bio,''), created_at, updated_at
		FROM profiles WHERE id = $1`, id)

	var u model.User
	err := row.Scan(&u.ID, &u.UserName, &u.Field, &u.AvatarURL, &u.Bio, &u.CreatedAt, &u.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, errs.ErrRecordNotFound.WithDetail("user " + id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile 只更新给了值的字段
func (s *Store) UpdateProfile(ctx context.Context, id string, patch model.ProfilePatch) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE profiles SET
			user_name  = COALESCE($2, user_name),
			field      = COALESCE($3, field),
			avatar_url = COALESCE($4, avatar_url),
			bio        = COALESCE($5, bio),
			updated_at = $6
		WHERE id = $1`,
		id, patch.UserName, patch.Field, patch.AvatarURL, patch.Bio, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrRecordNotFound.WithDetail("user " + id)
	}
	return nil
}

// Follow 幂等：重复关注不报错
func (s *Store) Follow(ctx context.Context, followerID, followeeID string) (created bool, err error) {
	tag, err := s.Pool.Exec(ctx, `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		followerID, followeeID, time.Now())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Unfollow(ctx context.Context, followerID, followeeID string) error {
	_, err := s.Pool.Exec(ctx, `
		DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID)
	return err
}

func (s *Store) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var one int
	err := s.Pool.QueryRow(ctx, `
		SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Followers(ctx context.Context, userID string) ([]model.User, error) {
	return s.queryUsers(ctx, `
		SELECT p.id, p.user_name, COALESCE(p.field,''), COALESCE(p.avatar_url,''), COALESCE(p.bio,''), p.created_at, p.updated_at
		FROM follows f JOIN profiles p ON p.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC`, userID)
}

func (s *Store) Following(ctx context.Context, userID string) ([]model.User, error) {
	return s.queryUsers(ctx, `
		SELECT p.id, p.user_name, COALESCE(p.field,''), COALESCE(p.avatar_url,''), COALESCE(p.bio,''), p.created_at, p.updated_at
		FROM follows f JOIN profiles p ON p.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC`, userID)
}

func (s *Store) queryUsers(ctx context.Context, sql string, args ...any) ([]model.User, error) {
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.UserName, &u.Field, &u.AvatarURL, &u.Bio, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
