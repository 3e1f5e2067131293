package coordinator

import (
	"context"
	"sync"

	"LSProject/sync/model"
	"LSProject/tools/errs"
)

// Kind 写操作类别
type Kind string

const (
	KindSendMessage   Kind = "send_message"
	KindLikePost      Kind = "like_post"
	KindLikeComment   Kind = "like_comment"
	KindCreatePost    Kind = "create_post"
	KindCreateComment Kind = "create_comment"
	KindCreateReport  Kind = "create_report"
)

// Fingerprint = (目标 id, 类别)。同一指纹最多一个在飞写操作。
type Fingerprint struct {
	Target string
	Kind   Kind
}

// Mutation 一次写意图：先乐观生效，失败回滚并提示一次
type Mutation struct {
	// Apply 乐观更新（调用后立即可见），可为 nil
	Apply func()
	// Call 真正的后端写
	Call func(ctx context.Context) error
	// Rollback 失败时恢复 Apply 之前的状态，可为 nil
	Rollback func()
	// OnSuccess 成功后的收尾（清输入框、关闭弹层等），可为 nil
	OnSuccess func()
	// FailTitle 失败提示标题，如 "Could not update like"
	FailTitle string
}

// Coordinator 写操作协调器：指纹级互斥 + 乐观更新 + 失败回滚。
// 作用域与单个视图实例一致，不是进程级全局。
type Coordinator struct {
	mu       sync.Mutex
	inflight map[Fingerprint]struct{}

	notifier model.Notifier
	// onInvalidate 成功的共享状态变更后触发整体刷新（refetch 式对账）
	onInvalidate func()
}

func New(notifier model.Notifier, onInvalidate func()) *Coordinator {
	return &Coordinator{
		inflight:     make(map[Fingerprint]struct{}),
		notifier:     notifier,
		onInvalidate: onInvalidate,
	}
}

// InFlight 指纹是否有在飞写操作（UI 可据此禁用按钮）
func (c *Coordinator) InFlight(fp Fingerprint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[fp]
	return ok
}

// Run 执行一次写意图。
// 同指纹已有在飞请求时直接合并：不发起第二次调用、不产生第二条提示，
// 返回 (false, nil)。否则同步执行到落定，返回 (true, 结果)。
func (c *Coordinator) Run(ctx context.Context, fp Fingerprint, m Mutation) (ran bool, err error) {
	c.mu.Lock()
	if _, busy := c.inflight[fp]; busy {
		c.mu.Unlock()
		return false, nil
	}
	c.inflight[fp] = struct{}{}
	c.mu.Unlock()

	// 任何退出路径都必须清掉在飞标记
	defer func() {
		c.mu.Lock()
		delete(c.inflight, fp)
		c.mu.Unlock()
	}()

	if m.Apply != nil {
		m.Apply()
	}

	if err := m.Call(ctx); err != nil {
		if m.Rollback != nil {
			m.Rollback()
		}
		if c.notifier != nil && m.FailTitle != "" {
			c.notifier.Notify(m.FailTitle, errs.MsgOf(err))
		}
		return true, err
	}

	if m.OnSuccess != nil {
		m.OnSuccess()
	}
	if c.onInvalidate != nil {
		c.onInvalidate()
	}
	return true, nil
}
