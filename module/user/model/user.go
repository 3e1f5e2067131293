package model

import "time"

// User 研究者账号，profiles 表的投影
type User struct {
	ID        string    `json:"id"`
	UserName  string    `json:"user_name"`
	Field     string    `json:"field,omitempty"` // 研究方向
	AvatarURL string    `json:"avatar_url,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Follow 关注关系，(follower, followee) 唯一
type Follow struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProfilePatch 可编辑字段，nil 表示不改
type ProfilePatch struct {
	UserName  *string `json:"user_name,omitempty"`
	Field     *string `json:"field,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}
