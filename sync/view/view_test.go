package view

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"LSProject/sync/model"
	"LSProject/tools/errs"
)

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string][]model.Item // cursor -> page（"" 为首屏）
	fail  bool
	block chan struct{} // 非 nil 时 FetchPage 阻塞到该通道关闭
	calls int32
}

func (f *fakeFetcher) FetchPage(ctx context.Context, resourceID, cursor string) ([]model.Item, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("backend unavailable")
	}
	return f.pages[cursor], nil
}

func (f *fakeFetcher) setPage(cursor string, items []model.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[cursor] = items
}

type fakeFeed struct {
	mu       sync.Mutex
	onInsert func(model.Item)
	onState  func(model.ConnState)
	channel  string
	unsubs   int32
	subErr   error
}

func (f *fakeFeed) Subscribe(resourceID, channel string, onInsert func(model.Item), onState func(model.ConnState)) (model.Unsubscribe, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	f.mu.Lock()
	f.onInsert = onInsert
	f.onState = onState
	f.channel = channel
	f.mu.Unlock()
	return func() { atomic.AddInt32(&f.unsubs, 1) }, nil
}

func (f *fakeFeed) push(it model.Item)      { f.onInsert(it) }
func (f *fakeFeed) state(s model.ConnState) { f.onState(s) }

type fakeIdentity struct {
	id  string
	err error
}

func (f *fakeIdentity) CurrentUser(ctx context.Context) (string, error) { return f.id, f.err }

func mk(id, ts string) model.Item {
	return model.Item{ID: id, CreatedAt: ts}
}

func newFixture() (*fakeFetcher, *fakeFeed, *fakeIdentity) {
	fetcher := &fakeFetcher{pages: map[string][]model.Item{
		"": {
			mk("m1", "2026-01-10T10:00:00Z"),
			mk("m2", "2026-01-10T10:01:00Z"),
		},
	}}
	return fetcher, &fakeFeed{}, &fakeIdentity{id: "u1"}
}

func TestOpenFailsFastWithoutResolvedIdentity(t *testing.T) {
	fetcher, feed, _ := newFixture()

	_, err := Open(context.Background(), "conv-1", fetcher, feed, &fakeIdentity{}, Options{})
	if !errs.ErrAuthRequired.Is(err) {
		t.Fatalf("err = %v, want AuthRequired", err)
	}
	// 身份未就绪时绝不能建立订阅（服务端过滤依赖 viewer 身份）
	if feed.onInsert != nil {
		t.Fatalf("subscription must not be attached before identity resolves")
	}
	if atomic.LoadInt32(&fetcher.calls) != 0 {
		t.Fatalf("no fetch should happen before identity resolves")
	}
}

func TestOpenLoadsHistoryThenSubscribes(t *testing.T) {
	fetcher, feed, ident := newFixture()

	v, err := Open(context.Background(), "conv-1", fetcher, feed, ident, Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer v.Close()

	if got := v.Items(); len(got) != 2 {
		t.Fatalf("items = %d, want 2", len(got))
	}
	if !strings.HasPrefix(feed.channel, "conv-1@") {
		t.Fatalf("channel %q must embed resource id and activation timestamp", feed.channel)
	}

	feed.state(model.StateSubscribed)
	if !v.CanSend() {
		t.Fatalf("send must be enabled once subscribed")
	}

	feed.push(mk("m3", "2026-01-10T10:02:00Z"))
	if got := v.Items(); len(got) != 3 || got[2].ID != "m3" {
		t.Fatalf("live insert not appended: %v", got)
	}
}

func TestUnsubscribeRunsExactlyOnce(t *testing.T) {
	fetcher, feed, ident := newFixture()
	v, err := Open(context.Background(), "conv-1", fetcher, feed, ident, Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	v.Close()
	v.Close()
	if n := atomic.LoadInt32(&feed.unsubs); n != 1 {
		t.Fatalf("unsubscribe ran %d times, want exactly 1", n)
	}
}

func TestInsertsAfterCloseDiscarded(t *testing.T) {
	fetcher, feed, ident := newFixture()
	v, err := Open(context.Background(), "conv-1", fetcher, feed, ident, Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	v.Close()
	feed.push(mk("m3", "2026-01-10T10:02:00Z"))
	if got := v.Items(); len(got) != 2 {
		t.Fatalf("event after close must be discarded, items = %d", len(got))
	}
}

func TestLatePaginationResultDiscardedAfterClose(t *testing.T) {
	fetcher, feed, ident := newFixture()
	fetcher.setPage("", []model.Item{
		mk("m1", "2026-01-10T10:00:00Z"),
	})

	v, err := Open(context.Background(), "conv-1", fetcher, feed, ident, Options{PageSize: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	fetcher.block = make(chan struct{})
	fetcher.setPage("2026-01-10T10:00:00Z", []model.Item{mk("m0", "2026-01-10T09:59:00Z")})

	done := make(chan struct{})
	go func() {
		defer close(done)
		applied, err := v.LoadOlder(context.Background())
		if err != nil {
			t.Errorf("LoadOlder: %v", err)
		}
		if applied {
			t.Errorf("completion landing after close must not be applied")
		}
	}()

	time.Sleep(10 * time.Millisecond) // 让 LoadOlder 进入在飞状态
	v.Close()
	close(fetcher.block)
	<-done

	if got := v.Items(); len(got) != 1 {
		t.Fatalf("items = %d, want untouched 1", len(got))
	}
}

func TestPaginationFailureClearsGuard(t *testing.T) {
	fetcher, feed, ident := newFixture()
	fetcher.setPage("", []model.Item{mk("m1", "2026-01-10T10:00:00Z")})

	v, err := Open(context.Background(), "conv-1", fetcher, feed, ident, Options{PageSize: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer v.Close()

	fetcher.mu.Lock()
	fetcher.fail = true
	fetcher.mu.Unlock()

	if _, err := v.LoadOlder(context.Background()); !errs.ErrFetchFailed.Is(err) {
		t.Fatalf("err = %v, want FetchFailed", err)
	}

	// 失败清掉在飞标记后可以重试
	fetcher.mu.Lock()
	fetcher.fail = false
	fetcher.mu.Unlock()
	fetcher.setPage("2026-01-10T10:00:00Z", []model.Item{mk("m0", "2026-01-10T09:59:00Z")})

	applied, err := v.LoadOlder(context.Background())
	if err != nil || !applied {
		t.Fatalf("retry after failure: applied=%v err=%v", applied, err)
	}
}

func TestDisconnectDisablesSendAndReconnectReconciles(t *testing.T) {
	fetcher, feed, ident := newFixture()
	v, err := Open(context.Background(), "conv-1", fetcher, feed, ident, Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer v.Close()

	feed.state(model.StateSubscribed)
	feed.state(model.StateErrored)
	if v.CanSend() {
		t.Fatalf("send must be disabled while disconnected")
	}

	// 断连期间服务端提交了 m3；重连后整页补偿
	fetcher.setPage("", []model.Item{
		mk("m1", "2026-01-10T10:00:00Z"),
		mk("m2", "2026-01-10T10:01:00Z"),
		mk("m3", "2026-01-10T10:02:00Z"),
	})
	feed.state(model.StateSubscribed)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if len(v.Items()) == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("missed event not reconciled after reconnect: %d items", len(v.Items()))
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !v.CanSend() {
		t.Fatalf("send must be re-enabled once resubscribed")
	}
}
