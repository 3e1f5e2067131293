package model

import "time"

// Category 帖子学科分类
const (
	CategoryFormal  = "formal"
	CategoryNatural = "natural"
	CategorySocial  = "social"
	CategoryApplied = "applied"
	CategoryGeneral = "general"
)

// Post 动态流里的一篇帖子
type Post struct {
	ID              string    `json:"id"`
	AuthorID        string    `json:"author_id"`
	UserName        string    `json:"user_name"`
	ScientificField string    `json:"scientific_field"`
	Content         string    `json:"content"`
	Category        string    `json:"category"`
	MediaURL        string    `json:"media_url,omitempty"`
	Link            string    `json:"link,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
	IsLiked      bool  `json:"is_liked"`
}

// Comment 帖子下的评论
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	LikeCount int64 `json:"like_count"`
	IsLiked   bool  `json:"is_liked"`
}

// Report 对帖子或评论的举报。CommentID 为空表示举报帖子。
type Report struct {
	ID         string    `json:"id"`
	ReporterID string    `json:"reporter_id"`
	PostID     string    `json:"post_id"`
	CommentID  string    `json:"comment_id,omitempty"`
	Type       string    `json:"type"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreatePostValues 发帖表单
type CreatePostValues struct {
	UserName        string `json:"user_name"`
	ScientificField string `json:"scientific_field"`
	Content         string `json:"content"`
	Category        string `json:"category"`
	MediaURL        string `json:"media_url,omitempty"`
	Link            string `json:"link,omitempty"`
}

// CreateCommentValues 评论表单
type CreateCommentValues struct {
	UserName string `json:"user_name"`
	Content  string `json:"content"`
}

// CreateReportValues 举报表单
type CreateReportValues struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// FeedFilter 流查询参数
type FeedFilter struct {
	Category string `json:"category,omitempty"`
	Cursor   string `json:"cursor,omitempty"`
	Limit    int    `json:"limit,omitempty"` // <=50，缺省 20
}
