package kafka

import (
	"encoding/json"
	"time"

	"LSProject/tools/errs"
)

// 通知事件类型。和收件箱 type 字段、偏好开关一一对应。
const (
	EventPostLike    = "post_like"
	EventCommentLike = "comment_like"
	EventNewComment  = "new_comment"
	EventNewFollow   = "new_follow"
	EventGroupInvite = "group_invite"
	EventNewMessage  = "new_message"
)

// NotifyEvent 一条待投递的通知。
// Key 用 RecipientID，保证同一收件人事件有序。
type NotifyEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	RecipientID string    `json:"recipient_id"`
	ActorID     string    `json:"actor_id"`
	ActorName   string    `json:"actor_name,omitempty"`
	PostID      string    `json:"post_id,omitempty"`
	CommentID   string    `json:"comment_id,omitempty"`
	ChatID      string    `json:"chat_id,omitempty"`
	Preview     string    `json:"preview,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e *NotifyEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func DecodeNotifyEvent(data []byte) (*NotifyEvent, error) {
	var e NotifyEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errs.ErrDecode.WithDetail(err.Error())
	}
	if e.RecipientID == "" || e.Type == "" {
		return nil, errs.ErrDecode.WithDetail("notify event requires type and recipient_id")
	}
	return &e, nil
}
