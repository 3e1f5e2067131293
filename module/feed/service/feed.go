package service

import (
	"context"
	"time"

	"LSProject/logger"
	"LSProject/module/feed/model"
	"LSProject/module/feed/validate"
	ka "LSProject/service/kafka"
	syncmodel "LSProject/sync/model"
	"LSProject/tools/errs"
	"LSProject/tools/ids"
)

const (
	defaultLimit = 20
	maxLimit     = 50
)

// FeedResource 全局流的实时资源 id；帖子详情用 PostResource。
const FeedResource = "feed"

func PostResource(postID string) string { return "post." + postID }

type Store interface {
	GetFeed(ctx context.Context, viewerID, category string, before time.Time, limit int) ([]model.Post, error)
	InsertPost(ctx context.Context, p *model.Post) error
	DeletePost(ctx context.Context, postID, authorID string) error
	PostAuthor(ctx context.Context, postID string) (string, error)
	InsertComment(ctx context.Context, c *model.Comment) error
	CommentAuthor(ctx context.Context, postID, commentID string) (string, error)
	Comments(ctx context.Context, viewerID, postID string) ([]model.Comment, error)
	TogglePostLike(ctx context.Context, postID, userID string) (bool, error)
	ToggleCommentLike(ctx context.Context, commentID, userID string) (bool, error)
	InsertReport(ctx context.Context, r *model.Report) error
}

type Live interface {
	Publish(resourceID string, item syncmodel.Item) error
}

type Publisher interface {
	PublishNotify(ev *ka.NotifyEvent) error
}

// LikeCache 点赞计数缓存（Redis），miss 回落数据库计数
type LikeCache interface {
	Adjust(postID string, delta int64) error
	Get(postID string) (int64, error)
}

type Service struct {
	Store Store
	Live  Live
	Pub   Publisher
	Likes LikeCache
}

// GetFeed 返回一页帖子和下一页游标。空游标表示没有更多。
func (s *Service) GetFeed(ctx context.Context, viewerID string, filter model.FeedFilter) ([]model.Post, string, error) {
	if err := validate.Category(filter.Category); err != nil {
		return nil, "", err
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	var before time.Time
	if filter.Cursor != "" {
		t, err := time.Parse(time.RFC3339Nano, filter.Cursor)
		if err != nil {
			return nil, "", errs.ErrArgs.WithDetail("cursor must be RFC3339: " + filter.Cursor)
		}
		before = t
	}

	posts, err := s.Store.GetFeed(ctx, viewerID, filter.Category, before, limit)
	if err != nil {
		return nil, "", errs.ErrFetchFailed.WrapMsg(err, "load feed")
	}
	s.overlayLikeCounts(posts)
	next := ""
	if len(posts) == limit {
		next = posts[len(posts)-1].CreatedAt.Format(time.RFC3339Nano)
	}
	return posts, next, nil
}

func (s *Service) CreatePost(ctx context.Context, userID string, v model.CreatePostValues) (*model.Post, error) {
	if err := validate.CreatePost(v); err != nil {
		return nil, err
	}
	post := &model.Post{
		ID:              ids.GenerateString(),
		AuthorID:        userID,
		UserName:        v.UserName,
		ScientificField: v.ScientificField,
		Content:         v.Content,
		Category:        v.Category,
		MediaURL:        v.MediaURL,
		Link:            v.Link,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.Store.InsertPost(ctx, post); err != nil {
		return nil, errs.ErrMutationFailed.WrapMsg(err, "insert post")
	}
	s.publish(FeedResource, syncmodel.Item{
		ID:        post.ID,
		CreatedAt: post.CreatedAt.Format(time.RFC3339Nano),
		SenderID:  post.AuthorID,
		Content:   post.Content,
		Extra: map[string]any{
			"user_name": post.UserName,
			"category":  post.Category,
		},
	})
	return post, nil
}

func (s *Service) DeletePost(ctx context.Context, userID, postID string) error {
	if err := s.Store.DeletePost(ctx, postID, userID); err != nil {
		if errs.ErrRecordNotFound.Is(err) {
			return err
		}
		return errs.ErrMutationFailed.WrapMsg(err, "delete post")
	}
	return nil
}

func (s *Service) CreateComment(ctx context.Context, userID, postID string, v model.CreateCommentValues) (*model.Comment, error) {
	if err := validate.CreateComment(v); err != nil {
		return nil, err
	}
	author, err := s.Store.PostAuthor(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := &model.Comment{
		ID:        ids.GenerateString(),
		PostID:    postID,
		AuthorID:  userID,
		UserName:  v.UserName,
		Content:   v.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.InsertComment(ctx, comment); err != nil {
		return nil, errs.ErrMutationFailed.WrapMsg(err, "insert comment")
	}

	s.publish(PostResource(postID), syncmodel.Item{
		ID:        comment.ID,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339Nano),
		SenderID:  comment.AuthorID,
		Content:   comment.Content,
		Extra:     map[string]any{"user_name": comment.UserName},
	})
	if author != userID {
		s.notify(&ka.NotifyEvent{
			ID:          ids.GenerateString(),
			Type:        ka.EventNewComment,
			RecipientID: author,
			ActorID:     userID,
			ActorName:   v.UserName,
			PostID:      postID,
			CommentID:   comment.ID,
			Preview:     truncate(v.Content, 140),
			CreatedAt:   time.Now(),
		})
	}
	return comment, nil
}

func (s *Service) Comments(ctx context.Context, viewerID, postID string) ([]model.Comment, error) {
	list, err := s.Store.Comments(ctx, viewerID, postID)
	if err != nil {
		return nil, errs.ErrFetchFailed.WrapMsg(err, "load comments")
	}
	return list, nil
}

// LikePost 点赞开关。点赞方向通知作者，取消不通知。
func (s *Service) LikePost(ctx context.Context, userID, postID string) (bool, error) {
	author, err := s.Store.PostAuthor(ctx, postID)
	if err != nil {
		return false, err
	}
	liked, err := s.Store.TogglePostLike(ctx, postID, userID)
	if err != nil {
		return false, errs.ErrMutationFailed.WrapMsg(err, "toggle post like")
	}
	if s.Likes != nil {
		delta := int64(-1)
		if liked {
			delta = 1
		}
		if err := s.Likes.Adjust(postID, delta); err != nil {
			logger.Warnf("[feed] like cache adjust post=%s: %v", postID, err)
		}
	}
	if liked && author != userID {
		s.notify(&ka.NotifyEvent{
			ID:          ids.GenerateString(),
			Type:        ka.EventPostLike,
			RecipientID: author,
			ActorID:     userID,
			PostID:      postID,
			CreatedAt:   time.Now(),
		})
	}
	return liked, nil
}

func (s *Service) LikeComment(ctx context.Context, userID, postID, commentID string) (bool, error) {
	author, err := s.Store.CommentAuthor(ctx, postID, commentID)
	if err != nil {
		return false, err
	}
	liked, err := s.Store.ToggleCommentLike(ctx, commentID, userID)
	if err != nil {
		return false, errs.ErrMutationFailed.WrapMsg(err, "toggle comment like")
	}
	if liked && author != userID {
		s.notify(&ka.NotifyEvent{
			ID:          ids.GenerateString(),
			Type:        ka.EventCommentLike,
			RecipientID: author,
			ActorID:     userID,
			PostID:      postID,
			CommentID:   commentID,
			CreatedAt:   time.Now(),
		})
	}
	return liked, nil
}

func (s *Service) CreateReport(ctx context.Context, userID, postID, commentID string, v model.CreateReportValues) (*model.Report, error) {
	if err := validate.CreateReport(v); err != nil {
		return nil, err
	}
	if commentID == "" {
		if _, err := s.Store.PostAuthor(ctx, postID); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.Store.CommentAuthor(ctx, postID, commentID); err != nil {
			return nil, err
		}
	}
	report := &model.Report{
		ID:         ids.GenerateString(),
		ReporterID: userID,
		PostID:     postID,
		CommentID:  commentID,
		Type:       v.Type,
		Reason:     v.Reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Store.InsertReport(ctx, report); err != nil {
		return nil, errs.ErrMutationFailed.WrapMsg(err, "insert report")
	}
	return report, nil
}

// overlayLikeCounts 用缓存计数覆盖数据库计数。
// miss（-1）或读取出错时保留数据库的值，缓存只是热路径捷径。
func (s *Service) overlayLikeCounts(posts []model.Post) {
	if s.Likes == nil {
		return
	}
	for i := range posts {
		n, err := s.Likes.Get(posts[i].ID)
		if err != nil {
			logger.Warnf("[feed] like cache read post=%s: %v", posts[i].ID, err)
			continue
		}
		if n >= 0 {
			posts[i].LikeCount = n
		}
	}
}

func (s *Service) publish(resource string, item syncmodel.Item) {
	if s.Live == nil {
		return
	}
	if err := s.Live.Publish(resource, item); err != nil {
		logger.Warnf("[feed] live publish %s item=%s: %v", resource, item.ID, err)
	}
}

func (s *Service) notify(ev *ka.NotifyEvent) {
	if s.Pub == nil {
		return
	}
	if err := s.Pub.PublishNotify(ev); err != nil {
		logger.Warnf("[feed] notify dropped type=%s recipient=%s: %v", ev.Type, ev.RecipientID, err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
