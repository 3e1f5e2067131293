package gateway

import (
	"testing"

	"LSProject/tools/errs"
)

func TestParseFrameRejectsGarbage(t *testing.T) {
	if _, err := ParseFrame([]byte("{not json")); !errs.ErrDecode.Is(err) {
		t.Fatalf("err = %v, want DecodeError", err)
	}
	if _, err := ParseFrame([]byte(`{"seq":1}`)); !errs.ErrDecode.Is(err) {
		t.Fatalf("missing type must be rejected, got %v", err)
	}
}

func TestParseFrameRoundtrip(t *testing.T) {
	f, err := ParseFrame([]byte(`{"type":"insert","resource_id":"conv.9","payload":{"id":"m1"}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Type != FrameInsert || f.ResourceID != "conv.9" {
		t.Fatalf("unexpected frame: %+v", f)
	}
}

func TestHubRegisterAndPush(t *testing.T) {
	h := NewHub()

	c1 := newClient("s1", nil)
	c1.userID = "u1"
	c2 := newClient("s2", nil)
	c2.userID = "u1"
	h.Register(c1)
	h.Register(c2)

	if n := h.PushToUser("u1", &Frame{Type: FrameNotify}); n != 2 {
		t.Fatalf("pushed to %d conns, want 2", n)
	}
	if len(c1.send) != 1 || len(c2.send) != 1 {
		t.Fatalf("each conn must get one frame")
	}

	h.Unregister(c1)
	if h.OnlineCount("u1") != 1 {
		t.Fatalf("online count = %d, want 1", h.OnlineCount("u1"))
	}
	h.Unregister(c2)
	if n := h.PushToUser("u1", &Frame{Type: FrameNotify}); n != 0 {
		t.Fatalf("push after unregister reached %d conns", n)
	}
}
