package service

import (
	"context"
	"time"

	"LSProject/logger"
	"LSProject/module/chat/model"
	"LSProject/module/chat/store"
	ka "LSProject/service/kafka"
	syncmodel "LSProject/sync/model"
	"LSProject/tools/errs"
	"LSProject/tools/ids"
)

const maxContentLen = 5000

// Store 会话/消息持久层
type Store interface {
	GetOldMessages(ctx context.Context, chatID string, cursor time.Time) ([]model.Message, error)
	InsertMessage(ctx context.Context, m *model.Message) error
	EditMessage(ctx context.Context, messageID, senderID, content string, editedAt time.Time) error
	CreateChat(ctx context.Context, chat *model.Chat, memberIDs []string) error
	AddMembers(ctx context.Context, chatID string, userIDs []string) error
	RemoveMember(ctx context.Context, chatID, userID string) error
	RenameChat(ctx context.Context, chatID, name string) error
	IsMember(ctx context.Context, chatID, userID string) (bool, error)
	MemberIDs(ctx context.Context, chatID string) ([]string, error)
	ChatsOf(ctx context.Context, userID string) ([]model.ChatPreview, error)
}

// Live 实时插入出口（NATS）
type Live interface {
	Publish(resourceID string, item syncmodel.Item) error
}

// Unread 未读计数（Redis）
type Unread interface {
	Incr(user, chatID string) error
	Clear(user, chatID string) error
	All(user string) (map[string]int64, error)
}

// Publisher 通知事件出口（Kafka）。消息量大的路径走异步投递。
type Publisher interface {
	PublishNotify(ev *ka.NotifyEvent) error
	PublishNotifyAsync(ev *ka.NotifyEvent) error
}

type Service struct {
	Store  Store
	Live   Live
	Unread Unread
	Pub    Publisher
}

// LiveResource 会话对应的实时资源 id
func LiveResource(chatID string) string { return "conv." + chatID }

// GetOldMessages 翻一页历史。hasMore 由“整页收满”推断。
func (s *Service) GetOldMessages(ctx context.Context, chatID, userID, cursor string) ([]model.Message, bool, error) {
	if err := s.requireMember(ctx, chatID, userID); err != nil {
		return nil, false, err
	}
	var before time.Time
	if cursor != "" {
		t, err := time.Parse(time.RFC3339Nano, cursor)
		if err != nil {
			return nil, false, errs.ErrArgs.WithDetail("cursor must be RFC3339: " + cursor)
		}
		before = t
	}
	page, err := s.Store.GetOldMessages(ctx, chatID, before)
	if err != nil {
		return nil, false, errs.ErrFetchFailed.WrapMsg(err, "load messages")
	}
	return page, len(page) == store.PageSize, nil
}

func (s *Service) SendMessage(ctx context.Context, chatID, senderID, content string) (*model.Message, error) {
	if content == "" || len(content) > maxContentLen {
		return nil, errs.ErrValidationFailed.WithDetail("content must be 1-5000 chars")
	}
	if err := s.requireMember(ctx, chatID, senderID); err != nil {
		return nil, err
	}

	msg := &model.Message{
		ID:        ids.GenerateString(),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.InsertMessage(ctx, msg); err != nil {
		return nil, errs.ErrMutationFailed.WrapMsg(err, "insert message")
	}

	s.fanout(ctx, msg)
	return msg, nil
}

// fanout 实时广播 + 其他成员未读 +1 并发 new_message 通知。
// 失败只记日志，消息已经落库。
func (s *Service) fanout(ctx context.Context, msg *model.Message) {
	if s.Live != nil {
		item := syncmodel.Item{
			ID:        msg.ID,
			CreatedAt: msg.CreatedAt.Format(time.RFC3339Nano),
			SenderID:  msg.SenderID,
			Content:   msg.Content,
		}
		if err := s.Live.Publish(LiveResource(msg.ChatID), item); err != nil {
			logger.Warnf("[chat] live publish chat=%s msg=%s: %v", msg.ChatID, msg.ID, err)
		}
	}
	if s.Unread == nil && s.Pub == nil {
		return
	}
	members, err := s.Store.MemberIDs(ctx, msg.ChatID)
	if err != nil {
		logger.Warnf("[chat] member list for fanout chat=%s: %v", msg.ChatID, err)
		return
	}
	for _, uid := range members {
		if uid == msg.SenderID {
			continue
		}
		if s.Unread != nil {
			if err := s.Unread.Incr(uid, msg.ChatID); err != nil {
				logger.Warnf("[chat] unread incr user=%s chat=%s: %v", uid, msg.ChatID, err)
			}
		}
		if s.Pub != nil {
			ev := &ka.NotifyEvent{
				ID:          ids.GenerateString(),
				Type:        ka.EventNewMessage,
				RecipientID: uid,
				ActorID:     msg.SenderID,
				ChatID:      msg.ChatID,
				Preview:     truncate(msg.Content, 140),
				CreatedAt:   time.Now(),
			}
			if err := s.Pub.PublishNotifyAsync(ev); err != nil {
				logger.Warnf("[chat] message notify dropped chat=%s user=%s: %v", msg.ChatID, uid, err)
			}
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (s *Service) EditMessage(ctx context.Context, messageID, senderID, content string) error {
	if content == "" || len(content) > maxContentLen {
		return errs.ErrValidationFailed.WithDetail("content must be 1-5000 chars")
	}
	if err := s.Store.EditMessage(ctx, messageID, senderID, content, time.Now().UTC()); err != nil {
		if errs.ErrRecordNotFound.Is(err) {
			return err
		}
		return errs.ErrMutationFailed.WrapMsg(err, "edit message")
	}
	return nil
}

// CreateChat 创建会话并拉人。creator 总在成员里。
func (s *Service) CreateChat(ctx context.Context, creatorID, name string, memberIDs []string, isGroup bool) (*model.Chat, error) {
	if isGroup && len(name) > 120 {
		return nil, errs.ErrValidationFailed.WithDetail("name must be at most 120 chars")
	}
	members := append([]string{creatorID}, memberIDs...)
	chat := &model.Chat{
		ID:        ids.GenerateString(),
		Name:      name,
		IsGroup:   isGroup,
		CreatorID: creatorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.CreateChat(ctx, chat, members); err != nil {
		return nil, errs.ErrMutationFailed.WrapMsg(err, "create chat")
	}
	s.notifyInvites(creatorID, chat.ID, memberIDs)
	return chat, nil
}

func (s *Service) AddUsersToChat(ctx context.Context, chatID, actorID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return errs.ErrArgs.WithDetail("no users to add")
	}
	if err := s.requireMember(ctx, chatID, actorID); err != nil {
		return err
	}
	if err := s.Store.AddMembers(ctx, chatID, userIDs); err != nil {
		return errs.ErrMutationFailed.WrapMsg(err, "add members")
	}
	s.notifyInvites(actorID, chatID, userIDs)
	return nil
}

func (s *Service) notifyInvites(actorID, chatID string, userIDs []string) {
	if s.Pub == nil {
		return
	}
	for _, uid := range userIDs {
		if uid == actorID {
			continue
		}
		ev := &ka.NotifyEvent{
			ID:          ids.GenerateString(),
			Type:        ka.EventGroupInvite,
			RecipientID: uid,
			ActorID:     actorID,
			ChatID:      chatID,
			CreatedAt:   time.Now(),
		}
		if err := s.Pub.PublishNotify(ev); err != nil {
			logger.Warnf("[chat] invite notify dropped chat=%s user=%s: %v", chatID, uid, err)
		}
	}
}

func (s *Service) LeaveConversation(ctx context.Context, chatID, userID string) error {
	if err := s.Store.RemoveMember(ctx, chatID, userID); err != nil {
		if errs.ErrRecordNotFound.Is(err) {
			return err
		}
		return errs.ErrMutationFailed.WrapMsg(err, "leave conversation")
	}
	if s.Unread != nil {
		_ = s.Unread.Clear(userID, chatID)
	}
	return nil
}

func (s *Service) UpdateConversationName(ctx context.Context, chatID, actorID, name string) error {
	if name == "" || len(name) > 120 {
		return errs.ErrValidationFailed.WithDetail("name must be 1-120 chars")
	}
	if err := s.requireMember(ctx, chatID, actorID); err != nil {
		return err
	}
	if err := s.Store.RenameChat(ctx, chatID, name); err != nil {
		if errs.ErrRecordNotFound.Is(err) {
			return err
		}
		return errs.ErrMutationFailed.WrapMsg(err, "rename chat")
	}
	return nil
}

// GetChatsWithPreview 侧栏：会话 + 成员 + 最后一条 + 未读
func (s *Service) GetChatsWithPreview(ctx context.Context, userID string) ([]model.ChatPreview, error) {
	previews, err := s.Store.ChatsOf(ctx, userID)
	if err != nil {
		return nil, errs.ErrFetchFailed.WrapMsg(err, "load chats")
	}
	var unread map[string]int64
	if s.Unread != nil {
		if unread, err = s.Unread.All(userID); err != nil {
			logger.Warnf("[chat] unread counts user=%s: %v", userID, err)
		}
	}
	for i := range previews {
		chatID := previews[i].Chat.ID
		members, err := s.Store.MemberIDs(ctx, chatID)
		if err != nil {
			return nil, errs.ErrFetchFailed.WrapMsg(err, "load members")
		}
		previews[i].MemberIDs = members
		if unread != nil {
			previews[i].Unread = unread[chatID]
		}
	}
	return previews, nil
}

// MarkRead 打开会话时清未读
func (s *Service) MarkRead(ctx context.Context, chatID, userID string) error {
	if s.Unread == nil {
		return nil
	}
	return s.Unread.Clear(userID, chatID)
}

func (s *Service) requireMember(ctx context.Context, chatID, userID string) error {
	ok, err := s.Store.IsMember(ctx, chatID, userID)
	if err != nil {
		return errs.ErrFetchFailed.WrapMsg(err, "membership check")
	}
	if !ok {
		return errs.ErrAuthRequired.WithDetail("not a member of chat " + chatID)
	}
	return nil
}
