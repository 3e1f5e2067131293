package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"LSProject/logger"
	"LSProject/sync/buffer"
	"LSProject/sync/model"
	"LSProject/tools/errs"
	"LSProject/tools/safe"
)

// View 一个会话/信息流视图的同步会话：
// 历史拉取 + 实时订阅 + 合并缓冲区的组合。
// 生命周期：Open 建立（身份 → 首屏 → 订阅），Close 释放订阅（恰好一次）。
type View struct {
	resourceID string
	channel    string
	userID     string

	fetcher  model.HistoryFetcher
	feed     model.LiveFeed
	identity model.Identity

	buf *buffer.Buffer

	mu     sync.Mutex
	conn   model.ConnState
	closed bool

	unsub     model.Unsubscribe
	unsubOnce sync.Once
}

type Options struct {
	PageSize int
}

// Open 建立视图会话。
// 身份解析是订阅的硬前置条件：身份未就绪直接失败（服务端按 viewer 过滤，
// 先订阅后出身份会静默丢事件），不允许竞态。
func Open(ctx context.Context, resourceID string, fetcher model.HistoryFetcher, feed model.LiveFeed, identity model.Identity, opts Options) (*View, error) {
	uid, err := identity.CurrentUser(ctx)
	if err != nil || uid == "" {
		return nil, errs.ErrAuthRequired.Wrap()
	}

	v := &View{
		resourceID: resourceID,
		userID:     uid,
		fetcher:    fetcher,
		feed:       feed,
		identity:   identity,
		buf:        buffer.New(opts.PageSize),
		conn:       model.StateConnecting,
	}

	v.buf.BeginLoad()
	items, err := fetcher.FetchPage(ctx, resourceID, "")
	if err != nil {
		return nil, errs.ErrFetchFailed.WrapMsg(err, "initial page")
	}
	v.buf.ApplyHistory(items)

	// 频道名带上激活时间戳，重挂载不会与残留订阅撞名
	v.channel = fmt.Sprintf("%s@%d", resourceID, time.Now().UnixNano())
	unsub, err := feed.Subscribe(resourceID, v.channel, v.onInsert, v.onState)
	if err != nil {
		return nil, errs.ErrChannelDisconnected.WrapMsg(err, "subscribe")
	}
	v.unsub = unsub
	return v, nil
}

// Close 释放订阅。幂等；之后到达的事件与在飞请求结果一律丢弃。
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.unsubOnce.Do(func() {
		if v.unsub != nil {
			v.unsub()
		}
	})
}

func (v *View) onInsert(it model.Item) {
	if v.isClosed() {
		return
	}
	v.buf.AppendLive(it)
}

func (v *View) onState(s model.ConnState) {
	v.mu.Lock()
	prev := v.conn
	v.conn = s
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return
	}

	// 断连窗口内的事件可能已丢失：恢复订阅后整页补偿合并
	if s == model.StateSubscribed && (prev == model.StateErrored || prev == model.StateClosed) {
		safe.SafeGo(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			items, err := v.fetcher.FetchPage(ctx, v.resourceID, "")
			if err != nil {
				logger.Warnf("[view] reconcile after reconnect failed resource=%s err=%v", v.resourceID, err)
				return
			}
			if v.isClosed() {
				return
			}
			v.buf.MergeRecent(items)
		})
	}
}

// LoadOlder 向前翻页。hasMore=false 或已有在飞分页请求时为 no-op。
// 返回是否真正应用了新的一页。
func (v *View) LoadOlder(ctx context.Context) (bool, error) {
	cursor, ok := v.buf.BeginPagination()
	if !ok {
		return false, nil
	}
	items, err := v.fetcher.FetchPage(ctx, v.resourceID, cursor)
	if err != nil {
		v.buf.AbortPagination()
		return false, errs.ErrFetchFailed.WrapMsg(err, "older page")
	}
	if v.isClosed() {
		// 卸载后才完成的请求：丢弃结果
		v.buf.AbortPagination()
		return false, nil
	}
	v.buf.ApplyPage(items)
	return true, nil
}

// Refresh 全量对账：重拉首屏并整体替换（变更成功后的 invalidate 路径）
func (v *View) Refresh(ctx context.Context) error {
	items, err := v.fetcher.FetchPage(ctx, v.resourceID, "")
	if err != nil {
		return errs.ErrFetchFailed.WrapMsg(err, "refresh")
	}
	if v.isClosed() {
		return nil
	}
	v.buf.ApplyHistory(items)
	return nil
}

// CanSend 通道在线且未关闭才允许发送（断连时发送按钮禁用）
func (v *View) CanSend() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.closed && v.conn == model.StateSubscribed
}

func (v *View) ConnState() model.ConnState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conn
}

func (v *View) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Items 当前合并结果
func (v *View) Items() []model.Item { return v.buf.Snapshot() }

// Buffer 暴露缓冲区（reason/hasMore/滚动决策用）
func (v *View) Buffer() *buffer.Buffer { return v.buf }

func (v *View) UserID() string { return v.userID }

func (v *View) Channel() string { return v.channel }
