package service

import (
	"context"
	"encoding/json"
	"time"

	"LSProject/logger"
	"LSProject/module/notify/model"
	gw "LSProject/service/gateway"
	ka "LSProject/service/kafka"
	syncmodel "LSProject/sync/model"
)

// Store 收件箱与偏好持久层
type Store interface {
	Insert(ctx context.Context, n *model.Notification) error
	Inbox(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]model.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	GetPreferences(ctx context.Context, userID string) (model.Preferences, error)
	UpsertPreferences(ctx context.Context, p model.Preferences) error
}

// Pusher 在线推送面（websocket 网关）
type Pusher interface {
	PushToUser(userID string, f *gw.Frame) int
}

// Live 通知下拉的实时订阅源（NATS）
type Live interface {
	Publish(resourceID string, item syncmodel.Item) error
}

type Service struct {
	Store  Store
	Pusher Pusher
	Live   Live
}

// NotifyResource 用户收件箱对应的实时资源 id
func NotifyResource(userID string) string { return "notify." + userID }

// HandleEvent Kafka 消费入口：事件 → 偏好过滤 → 落库 → 实时推送。
// 返回 nil 让位点前移；坏消息直接丢弃。
func (s *Service) HandleEvent(topic string, key, value []byte) error {
	ev, err := ka.DecodeNotifyEvent(value)
	if err != nil {
		logger.Warnf("[notify] drop malformed event on %s: %v", topic, err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prefs, err := s.Store.GetPreferences(ctx, ev.RecipientID)
	if err != nil {
		return err
	}
	if !prefs.Allows(ev.Type) {
		logger.Debugf("[notify] muted type=%s user=%s", ev.Type, ev.RecipientID)
		return nil
	}

	n := &model.Notification{
		ID:          ev.ID,
		RecipientID: ev.RecipientID,
		Type:        ev.Type,
		ActorID:     ev.ActorID,
		ActorName:   ev.ActorName,
		PostID:      ev.PostID,
		CommentID:   ev.CommentID,
		ChatID:      ev.ChatID,
		Preview:     ev.Preview,
		CreatedAt:   ev.CreatedAt,
	}
	if err := s.Store.Insert(ctx, n); err != nil {
		return err
	}

	s.pushLive(n)
	return nil
}

// pushLive 两条路：NATS 驱动打开着的通知下拉，网关直推在线端
func (s *Service) pushLive(n *model.Notification) {
	if s.Live != nil {
		item := syncmodel.Item{
			ID:        n.ID,
			CreatedAt: n.CreatedAt.Format(time.RFC3339Nano),
			SenderID:  n.ActorID,
			Content:   n.Preview,
			Extra: map[string]any{
				"type":       n.Type,
				"actor_name": n.ActorName,
			},
		}
		if err := s.Live.Publish(NotifyResource(n.RecipientID), item); err != nil {
			logger.Warnf("[notify] live publish user=%s: %v", n.RecipientID, err)
		}
	}
	if s.Pusher != nil {
		payload, err := json.Marshal(n)
		if err != nil {
			return
		}
		s.Pusher.PushToUser(n.RecipientID, &gw.Frame{
			Type:       gw.FrameNotify,
			ResourceID: NotifyResource(n.RecipientID),
			Payload:    payload,
			Ts:         time.Now().UnixMilli(),
		})
	}
}

func (s *Service) Inbox(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.Store.Inbox(ctx, userID, unreadOnly, limit)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.Store.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.Store.MarkRead(ctx, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.Store.MarkAllRead(ctx, userID)
}

func (s *Service) GetPreferences(ctx context.Context, userID string) (model.Preferences, error) {
	return s.Store.GetPreferences(ctx, userID)
}

func (s *Service) UpdatePreferences(ctx context.Context, p model.Preferences) error {
	return s.Store.UpsertPreferences(ctx, p)
}
