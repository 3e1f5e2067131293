package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"LSProject/module/chat/model"
	"LSProject/tools/errs"
)

// PageSize 历史翻页长度。满页意味着可能还有更老的。
const PageSize = 50

type Store struct {
	Pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store { return &Store{Pool: pool} }

// GetOldMessages 取 cursor（最老一条的 created_at）之前的一页，按时间升序返回。
// cursor 为零值时取最新一页。
func (s *Store) GetOldMessages(ctx context.Context, chatID string, cursor time.Time) ([]model.Message, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if cursor.IsZero() {
		rows, err = s.Pool.Query(ctx, `
			SELECT id, chat_id, sender_id, content, created_at, COALESCE(edited_at, 'epoch'::timestamptz)
			FROM messages WHERE chat_id = $1
			ORDER BY created_at DESC, id DESC LIMIT $2`, chatID, PageSize)
	} else {
		rows, err = s.Pool.Query(ctx, `
			SELECT id, chat_id, sender_id, content, created_at, COALESCE(edited_at, 'epoch'::timestamptz)
			FROM messages WHERE chat_id = $1 AND created_at < $2
			ORDER BY created_at DESC, id DESC LIMIT $3`, chatID, cursor, PageSize)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var page []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.CreatedAt, &m.EditedAt); err != nil {
			return nil, err
		}
		if m.EditedAt.Unix() <= 0 {
			m.EditedAt = time.Time{}
		}
		page = append(page, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 倒序查出来的，翻回升序
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}
	return page, nil
}

func (s *Store) InsertMessage(ctx context.Context, m *model.Message) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO messages (id, chat_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.ChatID, m.SenderID, m.Content, m.CreatedAt)
	return err
}

// EditMessage 只有发送者本人能改
func (s *Store) EditMessage(ctx context.Context, messageID, senderID, content string, editedAt time.Time) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE messages SET content = $3, edited_at = $4
		WHERE id = $1 AND sender_id = $2`,
		messageID, senderID, content, editedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrRecordNotFound.WithDetail("message " + messageID + " not owned by sender")
	}
	return nil
}

// CreateChat 会话与成员同事务落库
func (s *Store) CreateChat(ctx context.Context, chat *model.Chat, memberIDs []string) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO chats (id, name, is_group, creator_id, created_at)
		VALUES ($1, NULLIF($2,''), $3, $4, $5)`,
		chat.ID, chat.Name, chat.IsGroup, chat.CreatorID, chat.CreatedAt)
	if err != nil {
		return err
	}
	for _, uid := range memberIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO chat_members (chat_id, user_id, joined_at)
			VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			chat.ID, uid, chat.CreatedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// AddMembers 拉人进会话。1:1 会话拉人即升级为群，改名等群操作随之可用。
func (s *Store) AddMembers(ctx context.Context, chatID string, userIDs []string) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	for _, uid := range userIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO chat_members (chat_id, user_id, joined_at)
			VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			chatID, uid, now)
		if err != nil {
			return err
		}
	}
	_, err = tx.Exec(ctx, `
		UPDATE chats SET is_group = true WHERE id = $1 AND NOT is_group`, chatID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) RemoveMember(ctx context.Context, chatID, userID string) error {
	tag, err := s.Pool.Exec(ctx, `
		DELETE FROM chat_members WHERE chat_id = $1 AND user_id = $2`, chatID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrRecordNotFound.WithDetail("membership " + chatID + "/" + userID)
	}
	return nil
}

func (s *Store) RenameChat(ctx context.Context, chatID, name string) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE chats SET name = $2 WHERE id = $1 AND is_group`, chatID, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrRecordNotFound.WithDetail("group chat " + chatID)
	}
	return nil
}

func (s *Store) IsMember(ctx context.Context, chatID, userID string) (bool, error) {
	var one int
	err := s.Pool.QueryRow(ctx, `
		SELECT 1 FROM chat_members WHERE chat_id = $1 AND user_id = $2`, chatID, userID).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) MemberIDs(ctx context.Context, chatID string) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT user_id FROM chat_members WHERE chat_id = $1 ORDER BY joined_at`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		out = append(out, uid)
	}
	return out, rows.Err()
}

// ChatsOf 用户参与的全部会话，带最后一条消息，按活跃时间倒序
func (s *Store) ChatsOf(ctx context.Context, userID string) ([]model.ChatPreview, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT c.id, COALESCE(c.name,''), c.is_group, c.creator_id, c.created_at,
		       m.id, m.sender_id, m.content, m.created_at
		FROM chats c
		JOIN chat_members cm ON cm.chat_id = c.id AND cm.user_id = $1
		LEFT JOIN LATERAL (
			SELECT id, sender_id, content, created_at
			FROM messages WHERE chat_id = c.id
			ORDER BY created_at DESC, id DESC LIMIT 1
		) m ON true
		ORDER BY COALESCE(m.created_at, c.created_at) DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ChatPreview
	for rows.Next() {
		var (
			p                  model.ChatPreview
			msgID, sender, txt *string
			msgAt              *time.Time
		)
		err := rows.Scan(&p.Chat.ID, &p.Chat.Name, &p.Chat.IsGroup, &p.Chat.CreatorID, &p.Chat.CreatedAt,
			&msgID, &sender, &txt, &msgAt)
		if err != nil {
			return nil, err
		}
		if msgID != nil {
			p.LastMessage = &model.Message{
				ID: *msgID, ChatID: p.Chat.ID, SenderID: *sender, Content: *txt, CreatedAt: *msgAt,
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
