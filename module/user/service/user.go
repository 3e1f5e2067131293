package service

import (
	"context"
	"time"

	"LSProject/logger"
	"LSProject/module/user/model"
	"LSProject/module/user/store"
	ka "LSProject/service/kafka"
	"LSProject/tools/errs"
	"LSProject/tools/ids"
)

// Publisher 关注事件出口，落到通知管道
type Publisher interface {
	PublishNotify(ev *ka.NotifyEvent) error
}

type Service struct {
	Store *store.Store
	Pub   Publisher
}

func New(st *store.Store, pub Publisher) *Service {
	return &Service{Store: st, Pub: pub}
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	return s.Store.GetUser(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, patch model.ProfilePatch) error {
	if patch.UserName != nil && (len(*patch.UserName) == 0 || len(*patch.UserName) > 80) {
		return errs.ErrValidationFailed.WithDetail("user_name must be 1-80 chars")
	}
	if patch.Field != nil && len(*patch.Field) > 120 {
		return errs.ErrValidationFailed.WithDetail("field must be at most 120 chars")
	}
	return s.Store.UpdateProfile(ctx, userID, patch)
}

// ToggleFollow 关注/取关。返回操作后的状态。
func (s *Service) ToggleFollow(ctx context.Context, actorID, targetID string) (following bool, err error) {
	if actorID == targetID {
		return false, errs.ErrValidationFailed.WithDetail("cannot follow yourself")
	}
	already, err := s.Store.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		return false, err
	}
	if already {
		if err := s.Store.Unfollow(ctx, actorID, targetID); err != nil {
			return true, err
		}
		return false, nil
	}

	created, err := s.Store.Follow(ctx, actorID, targetID)
	if err != nil {
		return false, err
	}
	if created && s.Pub != nil {
		ev := &ka.NotifyEvent{
			ID:          ids.GenerateString(),
			Type:        ka.EventNewFollow,
			RecipientID: targetID,
			ActorID:     actorID,
			CreatedAt:   time.Now(),
		}
		if err := s.Pub.PublishNotify(ev); err != nil {
			// 通知丢了不影响关注本身
			logger.Warnf("[user] follow notify dropped actor=%s target=%s: %v", actorID, targetID, err)
		}
	}
	return true, nil
}

func (s *Service) Followers(ctx context.Context, userID string) ([]model.User, error) {
	return s.Store.Followers(ctx, userID)
}

func (s *Service) Following(ctx context.Context, userID string) ([]model.User, error) {
	return s.Store.Following(ctx, userID)
}
