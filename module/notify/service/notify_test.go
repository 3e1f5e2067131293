package service

import (
	"context"
	"testing"
	"time"

	"LSProject/module/notify/model"
	gw "LSProject/service/gateway"
	ka "LSProject/service/kafka"
	syncmodel "LSProject/sync/model"
	"LSProject/tools/errs"
)

type fakeStore struct {
	rows  map[string]*model.Notification
	prefs map[string]model.Preferences
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]*model.Notification{}, prefs: map[string]model.Preferences{}}
}

func (f *fakeStore) Insert(ctx context.Context, n *model.Notification) error {
	if _, ok := f.rows[n.ID]; ok {
		return nil // 幂等
	}
	f.rows[n.ID] = n
	return nil
}

func (f *fakeStore) Inbox(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range f.rows {
		if n.RecipientID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (f *fakeStore) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	for _, r := range f.rows {
		if r.RecipientID == userID && !r.Read {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) MarkRead(ctx context.Context, userID, notificationID string) error {
	n, ok := f.rows[notificationID]
	if !ok || n.RecipientID != userID {
		return errs.ErrRecordNotFound.WithDetail("notification")
	}
	n.Read = true
	return nil
}

func (f *fakeStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	var n int64
	for _, r := range f.rows {
		if r.RecipientID == userID && !r.Read {
			r.Read = true
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) GetPreferences(ctx context.Context, userID string) (model.Preferences, error) {
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return model.DefaultPreferences(userID), nil
}

func (f *fakeStore) UpsertPreferences(ctx context.Context, p model.Preferences) error {
	f.prefs[p.UserID] = p
	return nil
}

type fakePusher struct {
	frames map[string][]*gw.Frame
}

func (f *fakePusher) PushToUser(userID string, fr *gw.Frame) int {
	if f.frames == nil {
		f.frames = map[string][]*gw.Frame{}
	}
	f.frames[userID] = append(f.frames[userID], fr)
	return 1
}

type fakeLive struct {
	resources []string
	items     []syncmodel.Item
}

func (f *fakeLive) Publish(resourceID string, item syncmodel.Item) error {
	f.resources = append(f.resources, resourceID)
	f.items = append(f.items, item)
	return nil
}

func event(id, typ, recipient string) []byte {
	ev := &ka.NotifyEvent{
		ID: id, Type: typ, RecipientID: recipient, ActorID: "actor",
		CreatedAt: time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC),
	}
	data, _ := ev.Encode()
	return data
}

func TestHandleEventStoresAndPushes(t *testing.T) {
	st := newFakeStore()
	pusher := &fakePusher{}
	live := &fakeLive{}
	svc := &Service{Store: st, Pusher: pusher, Live: live}

	if err := svc.HandleEvent("ls.notify-00", nil, event("n1", ka.EventPostLike, "u2")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if st.rows["n1"] == nil || st.rows["n1"].Read {
		t.Fatalf("inbox row not written unread: %+v", st.rows["n1"])
	}
	if len(live.resources) != 1 || live.resources[0] != NotifyResource("u2") {
		t.Fatalf("live insert missing: %v", live.resources)
	}
	if len(pusher.frames["u2"]) != 1 || pusher.frames["u2"][0].Type != gw.FrameNotify {
		t.Fatalf("gateway push missing: %+v", pusher.frames)
	}
}

func TestHandleEventRespectsPreferences(t *testing.T) {
	st := newFakeStore()
	p := model.DefaultPreferences("u2")
	p.PostLike = false
	st.prefs["u2"] = p
	svc := &Service{Store: st}

	if err := svc.HandleEvent("t", nil, event("n1", ka.EventPostLike, "u2")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(st.rows) != 0 {
		t.Fatalf("muted type must not be stored")
	}

	// 其他类型不受影响
	if err := svc.HandleEvent("t", nil, event("n2", ka.EventNewFollow, "u2")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if st.rows["n2"] == nil {
		t.Fatalf("allowed type must be stored")
	}
}

func TestHandleEventIdempotentOnRedelivery(t *testing.T) {
	st := newFakeStore()
	svc := &Service{Store: st}

	data := event("n1", ka.EventNewComment, "u2")
	if err := svc.HandleEvent("t", nil, data); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := svc.HandleEvent("t", nil, data); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if len(st.rows) != 1 {
		t.Fatalf("redelivery must not duplicate, rows=%d", len(st.rows))
	}
}

func TestHandleEventDropsMalformed(t *testing.T) {
	svc := &Service{Store: newFakeStore()}
	// 坏消息返回 nil，让位点前移
	if err := svc.HandleEvent("t", nil, []byte("garbage")); err != nil {
		t.Fatalf("malformed event must be dropped, got %v", err)
	}
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	st := newFakeStore()
	svc := &Service{Store: st}
	_ = svc.HandleEvent("t", nil, event("n1", ka.EventNewFollow, "u2"))

	if err := svc.MarkRead(context.Background(), "intruder", "n1"); !errs.ErrRecordNotFound.Is(err) {
		t.Fatalf("foreign mark-read must fail, got %v", err)
	}
	if err := svc.MarkRead(context.Background(), "u2", "n1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	n, _ := svc.UnreadCount(context.Background(), "u2")
	if n != 0 {
		t.Fatalf("unread = %d, want 0", n)
	}
}
