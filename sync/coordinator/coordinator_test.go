package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *fakeNotifier) Notify(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, title)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func TestSecondCallOnSameFingerprintCoalesced(t *testing.T) {
	n := &fakeNotifier{}
	c := New(n, nil)
	fp := Fingerprint{Target: "p1", Kind: KindLikePost}

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ran, _ := c.Run(context.Background(), fp, Mutation{
			Call: func(ctx context.Context) error {
				atomic.AddInt32(&calls, 1)
				close(started)
				<-release
				return nil
			},
		})
		if !ran {
			t.Errorf("first run must execute")
		}
	}()

	<-started
	// 第一次还在飞：针对同一指纹的重复点击必须被合并
	ran, err := c.Run(context.Background(), fp, Mutation{
		Call: func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		},
	})
	if ran || err != nil {
		t.Fatalf("second run while pending: ran=%v err=%v, want coalesced", ran, err)
	}

	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("network calls = %d, want exactly 1", got)
	}
}

func TestOptimisticRollbackAndSingleNotificationOnFailure(t *testing.T) {
	n := &fakeNotifier{}
	c := New(n, nil)
	fp := Fingerprint{Target: "p1", Kind: KindLikePost}

	isLiked := false
	ran, err := c.Run(context.Background(), fp, Mutation{
		Apply:    func() { isLiked = true },
		Rollback: func() { isLiked = false },
		Call: func(ctx context.Context) error {
			if !isLiked {
				t.Errorf("optimistic state must be visible before the call resolves")
			}
			return errors.New("boom")
		},
		FailTitle: "Could not update like",
	})
	if !ran || err == nil {
		t.Fatalf("ran=%v err=%v, want executed failure", ran, err)
	}
	if isLiked {
		t.Fatalf("optimistic change must be rolled back on failure")
	}
	if n.count() != 1 {
		t.Fatalf("notifications = %d, want exactly 1", n.count())
	}
}

func TestRapidRepeatedFailingLikesNotifyAtMostOncePerSettledAttempt(t *testing.T) {
	n := &fakeNotifier{}
	c := New(n, nil)
	fp := Fingerprint{Target: "p1", Kind: KindLikePost}

	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = c.Run(context.Background(), fp, Mutation{
			Call: func(ctx context.Context) error {
				<-release
				return errors.New("boom")
			},
			FailTitle: "Could not update like",
		})
	}()

	// 等首个请求进入在飞状态后连点若干次
	for i := 0; i < 10; i++ {
		if c.InFlight(fp) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	for i := 0; i < 5; i++ {
		ran, _ := c.Run(context.Background(), fp, Mutation{
			Call:      func(ctx context.Context) error { return errors.New("boom") },
			FailTitle: "Could not update like",
		})
		if ran {
			t.Fatalf("click %d must be coalesced while first is pending", i)
		}
	}

	close(release)
	wg.Wait()

	if n.count() != 1 {
		t.Fatalf("notifications = %d, want 1 for the single settled attempt", n.count())
	}
}

func TestSuccessTriggersInvalidate(t *testing.T) {
	var invalidated int32
	c := New(&fakeNotifier{}, func() { atomic.AddInt32(&invalidated, 1) })
	fp := Fingerprint{Target: "p2", Kind: KindCreateComment}

	cleared := false
	ran, err := c.Run(context.Background(), fp, Mutation{
		Call:      func(ctx context.Context) error { return nil },
		OnSuccess: func() { cleared = true },
	})
	if !ran || err != nil {
		t.Fatalf("ran=%v err=%v", ran, err)
	}
	if !cleared {
		t.Fatalf("OnSuccess must run")
	}
	if atomic.LoadInt32(&invalidated) != 1 {
		t.Fatalf("shared-state mutation must invalidate the buffer")
	}
}

func TestFingerprintClearedOnEveryExitPath(t *testing.T) {
	c := New(&fakeNotifier{}, nil)
	fp := Fingerprint{Target: "p3", Kind: KindLikePost}

	_, _ = c.Run(context.Background(), fp, Mutation{
		Call: func(ctx context.Context) error { return errors.New("boom") },
	})
	if c.InFlight(fp) {
		t.Fatalf("in-flight flag must be cleared after failure")
	}

	_, _ = c.Run(context.Background(), fp, Mutation{
		Call: func(ctx context.Context) error { return nil },
	})
	if c.InFlight(fp) {
		t.Fatalf("in-flight flag must be cleared after success")
	}
}
