package model

import "time"

// Notification 收件箱一行（Mongo 文档）
type Notification struct {
	ID          string    `bson:"_id" json:"id"`
	RecipientID string    `bson:"recipient_id" json:"recipient_id"`
	Type        string    `bson:"type" json:"type"`
	ActorID     string    `bson:"actor_id" json:"actor_id"`
	ActorName   string    `bson:"actor_name,omitempty" json:"actor_name,omitempty"`
	PostID      string    `bson:"post_id,omitempty" json:"post_id,omitempty"`
	CommentID   string    `bson:"comment_id,omitempty" json:"comment_id,omitempty"`
	ChatID      string    `bson:"chat_id,omitempty" json:"chat_id,omitempty"`
	Preview     string    `bson:"preview,omitempty" json:"preview,omitempty"`
	Read        bool      `bson:"read" json:"read"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

func (Notification) GetTableName() string { return "notifications" }

// Preferences 每用户的通知开关，缺省全开
type Preferences struct {
	UserID      string    `bson:"_id" json:"user_id"`
	PostLike    bool      `bson:"post_like" json:"post_like"`
	CommentLike bool      `bson:"comment_like" json:"comment_like"`
	NewComment  bool      `bson:"new_comment" json:"new_comment"`
	NewFollow   bool      `bson:"new_follow" json:"new_follow"`
	GroupInvite bool      `bson:"group_invite" json:"group_invite"`
	NewMessage  bool      `bson:"new_message" json:"new_message"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

func (Preferences) GetTableName() string { return "notification_prefs" }

func DefaultPreferences(userID string) Preferences {
	return Preferences{
		UserID:      userID,
		PostLike:    true,
		CommentLike: true,
		NewComment:  true,
		NewFollow:   true,
		GroupInvite: true,
		NewMessage:  true,
	}
}

// Allows 按类型查偏好
func (p Preferences) Allows(eventType string) bool {
	switch eventType {
	case "post_like":
		return p.PostLike
	case "comment_like":
		return p.CommentLike
	case "new_comment":
		return p.NewComment
	case "new_follow":
		return p.NewFollow
	case "group_invite":
		return p.GroupInvite
	case "new_message":
		return p.NewMessage
	}
	return true
}
