package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"LSProject/module/feed/model"
	"LSProject/tools/errs"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store { return &Store{Pool: pool} }

// GetFeed 关键字游标翻页，新帖在前。viewer 决定 is_liked。
func (s *Store) GetFeed(ctx context.Context, viewerID, category string, before time.Time, limit int) ([]model.Post, error) {
	sql := `
		SELECT p.id, p.author_id, p.user_name, p.scientific_field, p.content, p.category,
		       COALESCE(p.media_url,''), COALESCE(p.link,''), p.created_at,
		       (SELECT count(*) FROM post_likes pl WHERE pl.post_id = p.id),
		       (SELECT count(*) FROM comments c WHERE c.post_id = p.id),
		       EXISTS (SELECT 1 FROM post_likes pl WHERE pl.post_id = p.id AND pl.user_id = $1)
		FROM posts p
		WHERE ($2 = '' OR p.category = $2) AND ($3::timestamptz IS NULL OR p.created_at < $3)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $4`

	var beforeArg any
	if !before.IsZero() {
		beforeArg = before
	}
	rows, err := s.Pool.Query(ctx, sql, viewerID, category, beforeArg, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Post
	for rows.Next() {
		var p model.Post
		err := rows.Scan(&p.ID, &p.AuthorID, &p.UserName, &p.ScientificField, &p.Content, &p.Category,
			&p.MediaURL, &p.Link, &p.CreatedAt, &p.LikeCount, &p.CommentCount, &p.IsLiked)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) InsertPost(ctx context.Context, p *model.Post) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO posts (id, author_id, user_name, scientific_field, content, category, media_url, link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''), NULLIF($8,''), $9)`,
		p.ID, p.AuthorID, p.UserName, p.ScientificField, p.Content, p.Category, p.MediaURL, p.Link, p.CreatedAt)
	return err
}

// DeletePost 仅作者本人可删，连带评论与点赞
func (s *Store) DeletePost(ctx context.Context, postID, authorID string) error {
	tag, err := s.Pool.Exec(ctx, `
		DELETE FROM posts WHERE id = $1 AND author_id = $2`, postID, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrRecordNotFound.WithDetail("post " + postID + " not owned by user")
	}
	return nil
}

func (s *Store) PostAuthor(ctx context.Context, postID string) (string, error) {
	var author string
	err := s.Pool.QueryRow(ctx, `SELECT author_id FROM posts WHERE id = $1`, postID).Scan(&author)
	if err == pgx.ErrNoRows {
		return "", errs.ErrRecordNotFound.WithDetail("post " + postID)
	}
	return author, err
}

func (s *Store) InsertComment(ctx context.Context, c *model.Comment) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO comments (id, post_id, author_id, user_name, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.PostID, c.AuthorID, c.UserName, c.Content, c.CreatedAt)
	return err
}

func (s *Store) CommentAuthor(ctx context.Context, postID, commentID string) (string, error) {
	var author string
	err := s.Pool.QueryRow(ctx, `
		SELECT author_id FROM comments WHERE id = $1 AND post_id = $2`, commentID, postID).Scan(&author)
	if err == pgx.ErrNoRows {
		return "", errs.ErrRecordNotFound.WithDetail("comment " + commentID)
	}
	return author, err
}

// Comments 帖子详情页：评论升序
func (s *Store) Comments(ctx context.Context, viewerID, postID string) ([]model.Comment, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT c.id, c.post_id, c.author_id, c.user_name, c.content, c.created_at,
		       (SELECT count(*) FROM comment_likes cl WHERE cl.comment_id = c.id),
		       EXISTS (SELECT 1 FROM comment_likes cl WHERE cl.comment_id = c.id AND cl.user_id = $1)
		FROM comments c WHERE c.post_id = $2
		ORDER BY c.created_at, c.id`, viewerID, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Comment
	for rows.Next() {
		var c model.Comment
		err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.UserName, &c.Content, &c.CreatedAt,
			&c.LikeCount, &c.IsLiked)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TogglePostLike 点赞开关，返回操作后的状态
func (s *Store) TogglePostLike(ctx context.Context, postID, userID string) (liked bool, err error) {
	tag, err := s.Pool.Exec(ctx, `
		DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return false, nil
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO post_likes (post_id, user_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`, postID, userID, time.Now())
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) ToggleCommentLike(ctx context.Context, commentID, userID string) (liked bool, err error) {
	tag, err := s.Pool.Exec(ctx, `
		DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return false, nil
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO comment_likes (comment_id, user_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`, commentID, userID, time.Now())
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) InsertReport(ctx context.Context, r *model.Report) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO reports (id, reporter_id, post_id, comment_id, type, reason, created_at)
		VALUES ($1, $2, $3, NULLIF($4,''), $5, $6, $7)`,
		r.ID, r.ReporterID, r.PostID, r.CommentID, r.Type, r.Reason, r.CreatedAt)
	return err
}
