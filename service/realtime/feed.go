package realtime

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"LSProject/logger"
	"LSProject/sync/model"
)

// Config 客户端配置
type Config struct {
	Servers       []string
	Name          string
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// Feed 按资源维度的实时插入分发：
// 每个资源一个 subject，订阅方收到的是后端提交顺序的新增行。
// 断连/重连/关闭通过 onState 广播给所有活跃订阅。
type Feed struct {
	cfg Config
	nc  *nats.Conn

	mu     sync.RWMutex
	subs   map[string]*nats.Subscription    // channel -> sub
	states map[string]func(model.ConnState) // channel -> onState
}

// Subject 资源到 subject 的映射，如 conv.42 → ls.live.conv.42
func Subject(resourceID string) string {
	return "ls.live." + resourceID
}

// NewFeed 连接 NATS 并挂接连接状态回调
func NewFeed(cfg Config) (*Feed, error) {
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 500 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Second
	}

	f := &Feed{
		cfg:    cfg,
		subs:   make(map[string]*nats.Subscription),
		states: make(map[string]func(model.ConnState)),
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warnf("[realtime] disconnected: %v", err)
			f.broadcast(model.StateErrored)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Infof("[realtime] reconnected")
			f.broadcast(model.StateSubscribed)
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			f.broadcast(model.StateClosed)
		}),
	}
	nc, err := nats.Connect(strings.Join(cfg.Servers, ","), opts...)
	if err != nil {
		return nil, err
	}
	f.nc = nc
	return f, nil
}

// Publish 服务端提交一行后广播给该资源的订阅者
func (f *Feed) Publish(resourceID string, item model.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return f.nc.Publish(Subject(resourceID), data)
}

// Subscribe 实现 model.LiveFeed。
// channel 名由调用方保证唯一（资源 id + 激活时间戳），避免重挂载撞名。
// 返回的 Unsubscribe 幂等，必须恰好调用一次。
func (f *Feed) Subscribe(resourceID, channel string, onInsert func(model.Item), onState func(model.ConnState)) (model.Unsubscribe, error) {
	sub, err := f.nc.Subscribe(Subject(resourceID), func(m *nats.Msg) {
		var it model.Item
		if err := json.Unmarshal(m.Data, &it); err != nil {
			logger.Errorf("[realtime] drop malformed insert on %s: %v", m.Subject, err)
			return
		}
		onInsert(it)
	})
	if err != nil {
		if onState != nil {
			onState(model.StateErrored)
		}
		return nil, err
	}
	_ = sub.SetPendingLimits(1_000_000, 64*1024*1024)

	f.mu.Lock()
	f.subs[channel] = sub
	if onState != nil {
		f.states[channel] = onState
	}
	f.mu.Unlock()

	if onState != nil {
		onState(model.StateSubscribed)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, channel)
			delete(f.states, channel)
			f.mu.Unlock()
			if err := sub.Unsubscribe(); err != nil {
				logger.Warnf("[realtime] unsubscribe %s: %v", channel, err)
			}
		})
	}, nil
}

func (f *Feed) broadcast(s model.ConnState) {
	f.mu.RLock()
	cbs := make([]func(model.ConnState), 0, len(f.states))
	for _, cb := range f.states {
		cbs = append(cbs, cb)
	}
	f.mu.RUnlock()
	for _, cb := range cbs {
		cb(s)
	}
}

// Close 优雅关闭：先停全部订阅再断开连接
func (f *Feed) Close() error {
	f.mu.Lock()
	for ch, sub := range f.subs {
		_ = sub.Drain()
		delete(f.subs, ch)
	}
	f.mu.Unlock()
	if f.nc != nil {
		return f.nc.Drain()
	}
	return nil
}
