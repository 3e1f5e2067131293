package coordinator

import (
	"context"
	"sync"
)

// ReportTarget 举报对象：帖子，或帖子下的某条评论
type ReportTarget struct {
	PostID    string
	CommentID string // 为空表示举报帖子本身
}

// ReportDraft 用户已填写的举报内容；失败重试时必须保留
type ReportDraft struct {
	Type   string
	Reason string
}

// ReportOverlay 举报弹层的状态机。
// 提交成功即终态：关闭且清空草稿；失败保持打开、草稿原样保留以便直接重试。
type ReportOverlay struct {
	mu     sync.Mutex
	open   bool
	target ReportTarget
	draft  ReportDraft
}

func NewReportOverlay() *ReportOverlay {
	return &ReportOverlay{}
}

// Open 针对某个目标发起新的举报
func (o *ReportOverlay) Open(target ReportTarget) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.open = true
	o.target = target
	o.draft = ReportDraft{}
}

func (o *ReportOverlay) SetDraft(d ReportDraft) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.draft = d
}

func (o *ReportOverlay) Draft() ReportDraft {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.draft
}

func (o *ReportOverlay) IsOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

func (o *ReportOverlay) Target() ReportTarget {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.target
}

// Submit 通过协调器提交当前草稿。
// call 收到目标与草稿并执行真正的后端写。
func (o *ReportOverlay) Submit(ctx context.Context, c *Coordinator, call func(ctx context.Context, t ReportTarget, d ReportDraft) error) error {
	o.mu.Lock()
	if !o.open {
		o.mu.Unlock()
		return nil
	}
	target := o.target
	draft := o.draft
	o.mu.Unlock()

	fp := Fingerprint{Target: target.PostID + "/" + target.CommentID, Kind: KindCreateReport}
	_, err := c.Run(ctx, fp, Mutation{
		Call: func(ctx context.Context) error {
			return call(ctx, target, draft)
		},
		OnSuccess: func() {
			o.mu.Lock()
			o.open = false
			o.draft = ReportDraft{}
			o.mu.Unlock()
		},
		FailTitle: "Could not submit report",
	})
	return err
}
