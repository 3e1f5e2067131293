package coordinator

import (
	"context"
	"errors"
	"testing"
)

func TestReportFailureKeepsOverlayOpenWithDraft(t *testing.T) {
	n := &fakeNotifier{}
	c := New(n, nil)
	o := NewReportOverlay()

	o.Open(ReportTarget{PostID: "p1"})
	o.SetDraft(ReportDraft{Type: "Spam/Scam", Reason: "repeated crypto spam"})

	err := o.Submit(context.Background(), c, func(ctx context.Context, tgt ReportTarget, d ReportDraft) error {
		return errors.New("backend down")
	})
	if err == nil {
		t.Fatalf("want submit failure")
	}
	if !o.IsOpen() {
		t.Fatalf("overlay must stay open on failure so the user can retry")
	}
	if d := o.Draft(); d.Reason != "repeated crypto spam" || d.Type != "Spam/Scam" {
		t.Fatalf("draft must be retained for resubmission, got %+v", d)
	}
	if n.count() != 1 || n.calls[0] != "Could not submit report" {
		t.Fatalf("want exactly one 'Could not submit report' notification, got %v", n.calls)
	}
}

func TestReportSuccessClosesOverlayAndClearsDraft(t *testing.T) {
	c := New(&fakeNotifier{}, nil)
	o := NewReportOverlay()

	o.Open(ReportTarget{PostID: "p1", CommentID: "c9"})
	o.SetDraft(ReportDraft{Type: "Harassment/Hate", Reason: "targeted abuse"})

	var gotTarget ReportTarget
	err := o.Submit(context.Background(), c, func(ctx context.Context, tgt ReportTarget, d ReportDraft) error {
		gotTarget = tgt
		return nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if gotTarget.PostID != "p1" || gotTarget.CommentID != "c9" {
		t.Fatalf("wrong target: %+v", gotTarget)
	}
	if o.IsOpen() {
		t.Fatalf("overlay must close on success")
	}
	if d := o.Draft(); d != (ReportDraft{}) {
		t.Fatalf("draft must be cleared, got %+v", d)
	}

	// 终态：同一目标不重新发起就不能再提交
	err = o.Submit(context.Background(), c, func(ctx context.Context, tgt ReportTarget, d ReportDraft) error {
		t.Fatalf("closed overlay must not submit")
		return nil
	})
	if err != nil {
		t.Fatalf("no-op submit: %v", err)
	}
}
