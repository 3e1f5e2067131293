package buffer

import (
	"fmt"
	"testing"

	"LSProject/sync/model"
)

func mk(id, ts string) model.Item {
	return model.Item{ID: id, CreatedAt: ts, Content: "msg-" + id}
}

func assertOrdered(t *testing.T, items []model.Item) {
	t.Helper()
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if _, dup := seen[it.ID]; dup {
			t.Fatalf("duplicate id %s at index %d", it.ID, i)
		}
		seen[it.ID] = struct{}{}
		if i > 0 && model.Less(it, items[i-1]) {
			t.Fatalf("out of order at index %d: %s(%s) before %s(%s)",
				i, items[i-1].ID, items[i-1].CreatedAt, it.ID, it.CreatedAt)
		}
	}
}

func ids(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestInitialPageShorterThanPageSize(t *testing.T) {
	b := New(50)
	b.ApplyHistory([]model.Item{
		mk("m1", "2026-01-10T10:00:00Z"),
		mk("m2", "2026-01-10T10:01:00Z"),
	})

	got := b.Snapshot()
	if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m2" {
		t.Fatalf("unexpected items: %v", ids(got))
	}
	if b.HasMore() {
		t.Fatalf("hasMore should be false after a 2-item page with pageSize 50")
	}
	if b.Reason() != model.ReasonInit {
		t.Fatalf("reason = %v, want init", b.Reason())
	}
	if b.State() != Populated {
		t.Fatalf("state = %v, want Populated", b.State())
	}
}

func TestLiveEchoOfExistingIDDropped(t *testing.T) {
	b := New(50)
	b.ApplyHistory([]model.Item{
		mk("m1", "2026-01-10T10:00:00Z"),
		mk("m2", "2026-01-10T10:01:00Z"),
	})

	// 乐观插入的回显：同 id 再次到达必须丢弃，保留先到的那份
	echo := mk("m2", "2026-01-10T10:01:00Z")
	echo.Content = "server echo"
	if b.AppendLive(echo) {
		t.Fatalf("duplicate id must not be appended")
	}

	got := b.Snapshot()
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1].Content != "msg-m2" {
		t.Fatalf("first-seen instance must win, got %q", got[1].Content)
	}
}

func TestPaginationPrependKeepsOrder(t *testing.T) {
	b := New(2)
	b.ApplyHistory([]model.Item{
		mk("m1", "2026-01-10T10:00:00Z"),
		mk("m2", "2026-01-10T10:01:00Z"),
	})
	if !b.HasMore() {
		t.Fatalf("a full page means more pages may exist")
	}

	cursor, ok := b.BeginPagination()
	if !ok {
		t.Fatalf("pagination should be allowed")
	}
	if cursor != "2026-01-10T10:00:00Z" {
		t.Fatalf("cursor = %q, want oldest created_at", cursor)
	}

	b.ApplyPage([]model.Item{mk("m0", "2026-01-10T09:59:00Z")})

	got := b.Snapshot()
	want := []string{"m0", "m1", "m2"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("items = %v, want %v", ids(got), want)
		}
	}
	if b.HasMore() {
		t.Fatalf("1 < pageSize(2): hasMore must flip to false")
	}
	if b.Reason() != model.ReasonPagination {
		t.Fatalf("reason = %v, want pagination", b.Reason())
	}
}

func TestPaginationIsIdempotent(t *testing.T) {
	b := New(2)
	b.ApplyHistory([]model.Item{
		mk("m2", "2026-01-10T10:01:00Z"),
		mk("m3", "2026-01-10T10:02:00Z"),
	})

	page := []model.Item{
		mk("m0", "2026-01-10T09:58:00Z"),
		mk("m1", "2026-01-10T09:59:00Z"),
	}

	if _, ok := b.BeginPagination(); !ok {
		t.Fatalf("first pagination rejected")
	}
	b.ApplyPage(page)
	once := ids(b.Snapshot())

	// 同一游标的页再来一次（网络重试、边界重叠）：结果必须不变
	if _, ok := b.BeginPagination(); !ok {
		t.Fatalf("second pagination rejected")
	}
	b.ApplyPage(page)
	twice := ids(b.Snapshot())

	if len(once) != len(twice) {
		t.Fatalf("merge not idempotent: %v vs %v", once, twice)
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("merge not idempotent: %v vs %v", once, twice)
		}
	}
	assertOrdered(t, b.Snapshot())
}

func TestOverlappingPaginationRejected(t *testing.T) {
	b := New(1)
	b.ApplyHistory([]model.Item{mk("m5", "2026-01-10T10:05:00Z")})

	if _, ok := b.BeginPagination(); !ok {
		t.Fatalf("first pagination rejected")
	}
	if _, ok := b.BeginPagination(); ok {
		t.Fatalf("second pagination must be rejected while one is in flight")
	}
	b.AbortPagination()
	if _, ok := b.BeginPagination(); !ok {
		t.Fatalf("pagination should be allowed again after abort")
	}
}

func TestNoFurtherFetchOnceExhausted(t *testing.T) {
	b := New(50)
	b.ApplyHistory([]model.Item{mk("m1", "2026-01-10T10:00:00Z")})

	if b.HasMore() {
		t.Fatalf("short page means exhausted")
	}
	if _, ok := b.BeginPagination(); ok {
		t.Fatalf("pagination must be suppressed once hasMore is false")
	}
}

func TestLiveInsertWhilePaginationInFlight(t *testing.T) {
	b := New(2)
	b.ApplyHistory([]model.Item{
		mk("m2", "2026-01-10T10:02:00Z"),
		mk("m3", "2026-01-10T10:03:00Z"),
	})

	if _, ok := b.BeginPagination(); !ok {
		t.Fatalf("pagination rejected")
	}
	// 翻页请求在飞时到达的实时消息
	if !b.AppendLive(mk("m4", "2026-01-10T10:04:00Z")) {
		t.Fatalf("live insert dropped")
	}
	b.ApplyPage([]model.Item{
		mk("m0", "2026-01-10T10:00:00Z"),
		mk("m1", "2026-01-10T10:01:00Z"),
	})

	got := b.Snapshot()
	want := []string{"m0", "m1", "m2", "m3", "m4"}
	if len(got) != len(want) {
		t.Fatalf("items = %v, want %v", ids(got), want)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("items = %v, want %v", ids(got), want)
		}
	}
	assertOrdered(t, got)
}

func TestClockSkewedLiveInsertLandsInOrder(t *testing.T) {
	b := New(50)
	b.ApplyHistory([]model.Item{
		mk("m1", "2026-01-10T10:00:00Z"),
		mk("m3", "2026-01-10T10:02:00Z"),
	})

	// 本地乐观时间戳早于尾部：必须落到中间而不是尾部
	if !b.AppendLive(mk("m2", "2026-01-10T10:01:00Z")) {
		t.Fatalf("insert dropped")
	}

	got := b.Snapshot()
	want := []string{"m1", "m2", "m3"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("items = %v, want %v", ids(got), want)
		}
	}
}

func TestMergeRecentFillsDisconnectGap(t *testing.T) {
	b := New(50)
	b.ApplyHistory([]model.Item{
		mk("m1", "2026-01-10T10:00:00Z"),
		mk("m2", "2026-01-10T10:01:00Z"),
	})

	// 断连窗口丢了 m3；重连补偿页包含 m2、m3、m4
	added := b.MergeRecent([]model.Item{
		mk("m2", "2026-01-10T10:01:00Z"),
		mk("m3", "2026-01-10T10:02:00Z"),
		mk("m4", "2026-01-10T10:03:00Z"),
	})
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}
	got := b.Snapshot()
	want := []string{"m1", "m2", "m3", "m4"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("items = %v, want %v", ids(got), want)
		}
	}
}

// 任意交错的历史页与实时事件，最终序列必须有序且无重复 id。
func TestInterleavedCompletionsKeepInvariant(t *testing.T) {
	history := make([]model.Item, 0, 4)
	for i := 4; i < 8; i++ {
		history = append(history, mk(fmt.Sprintf("m%d", i), fmt.Sprintf("2026-01-10T10:0%d:00Z", i)))
	}
	older := []model.Item{
		mk("m0", "2026-01-10T10:00:00Z"),
		mk("m1", "2026-01-10T10:01:00Z"),
		mk("m2", "2026-01-10T10:02:00Z"),
		mk("m3", "2026-01-10T10:03:00Z"),
	}
	live := []model.Item{
		mk("m8", "2026-01-10T10:08:00Z"),
		mk("m7", "2026-01-10T10:07:00Z"), // 回显重复
		mk("m9", "2026-01-10T10:09:00Z"),
	}

	// 三种完成顺序交错
	for variant := 0; variant < 3; variant++ {
		b := New(4)
		b.ApplyHistory(history)

		switch variant {
		case 0: // 先翻页后实时
			b.BeginPagination()
			b.ApplyPage(older)
			for _, it := range live {
				b.AppendLive(it)
			}
		case 1: // 实时先到
			for _, it := range live {
				b.AppendLive(it)
			}
			b.BeginPagination()
			b.ApplyPage(older)
		case 2: // 夹在中间
			b.AppendLive(live[0])
			b.BeginPagination()
			b.AppendLive(live[1])
			b.ApplyPage(older)
			b.AppendLive(live[2])
		}

		got := b.Snapshot()
		if len(got) != 10 {
			t.Fatalf("variant %d: len = %d, want 10 (%v)", variant, len(got), ids(got))
		}
		assertOrdered(t, got)
	}
}
