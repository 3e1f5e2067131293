package model

import "context"

// Item 缓冲区中的一条记录（消息 / 帖子 / 评论）
// ID 为不可变身份，CreatedAt 为排序键（ISO-8601，服务端提交时间）
type Item struct {
	ID        string         `json:"id"`
	CreatedAt string         `json:"created_at"`
	SenderID  string         `json:"sender_id,omitempty"`
	Content   string         `json:"content,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"` // userName、isLiked 等展示字段
}

// Less 排序规则：CreatedAt 升序，相同时间戳按 ID 决定（稳定）
func Less(a, b Item) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt < b.CreatedAt
	}
	return a.ID < b.ID
}

// Reason 状态变更原因，展示层据此决定滚动行为
type Reason int

const (
	ReasonInit Reason = iota
	ReasonNewItem
	ReasonPagination
)

func (r Reason) String() string {
	switch r {
	case ReasonInit:
		return "init"
	case ReasonNewItem:
		return "new_item"
	case ReasonPagination:
		return "pagination"
	}
	return "unknown"
}

// ConnState 订阅通道连接状态
type ConnState int

const (
	StateConnecting ConnState = iota
	StateSubscribed
	StateClosed
	StateErrored
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateClosed:
		return "closed"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}

// Unsubscribe 释放订阅；必须恰好调用一次，重复调用为 no-op
type Unsubscribe func()

// HistoryFetcher 拉取一页历史记录。
// cursor 为空表示首屏（最新一页）；否则取 created_at < cursor 的更旧一页。
// 返回结果为时间正序（最旧在前），长度不超过约定页大小。
type HistoryFetcher interface {
	FetchPage(ctx context.Context, resourceID string, cursor string) ([]Item, error)
}

// LiveFeed 按资源订阅新增行。channel 名需全局唯一（重挂载不冲突）。
// onInsert 按后端提交顺序回调；onState 报告通道状态变化。
type LiveFeed interface {
	Subscribe(resourceID, channel string, onInsert func(Item), onState func(ConnState)) (Unsubscribe, error)
}

// Identity 解析当前用户；订阅建立之前必须先完成
type Identity interface {
	CurrentUser(ctx context.Context) (string, error)
}

// Notifier 用户可见的一次性提示（对应前端 toast）
type Notifier interface {
	Notify(title, message string)
}
