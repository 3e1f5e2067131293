package buffer

import (
	"sort"
	"sync"

	"LSProject/sync/model"
)

// DefaultPageSize 历史分页大小；一页不足该数即视为到底
const DefaultPageSize = 50

// State 缓冲区状态机：Empty → Loading(reason) → Populated(reason)
type State int

const (
	Empty State = iota
	Loading
	Populated
)

// Buffer 单个会话/信息流视图的内存有序集合。
// 负责把历史分页结果与实时插入事件合并为一个无重复、按时间升序的序列。
// 每次变更都会记录 reason，供展示层决定滚动行为。
type Buffer struct {
	mu sync.Mutex

	items []model.Item
	index map[string]struct{} // id 去重

	state  State
	reason model.Reason

	hasMore     bool
	loadingMore bool // 同一缓冲区最多一个在飞的分页请求

	pageSize int
}

func New(pageSize int) *Buffer {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Buffer{
		index:    make(map[string]struct{}),
		hasMore:  true,
		pageSize: pageSize,
	}
}

// BeginLoad 标记首屏加载中
func (b *Buffer) BeginLoad() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Loading
	b.reason = model.ReasonInit
}

// ApplyHistory 首屏历史写入：整体替换。
// hasMore 由页长推导：恰好一整页才可能还有更旧数据。
func (b *Buffer) ApplyHistory(items []model.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = b.items[:0]
	b.index = make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := b.index[it.ID]; dup {
			continue
		}
		b.index[it.ID] = struct{}{}
		b.items = append(b.items, it)
	}
	b.ensureSorted()
	b.hasMore = len(items) == b.pageSize
	b.state = Populated
	b.reason = model.ReasonInit
}

// AppendLive 实时插入：按 id 去重（乐观本地插入与服务端回显只保留先到的那份），
// 通常追加到尾部；当本地乐观时间戳与服务端确认时间戳存在偏差时退化为插入排序。
// 返回 false 表示该 id 已存在，被丢弃。
func (b *Buffer) AppendLive(it model.Item) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, dup := b.index[it.ID]; dup {
		return false
	}
	b.index[it.ID] = struct{}{}

	// 常见路径：新消息晚于尾部，直接追加
	n := len(b.items)
	if n == 0 || !model.Less(it, b.items[n-1]) {
		b.items = append(b.items, it)
	} else {
		// 时钟偏差：从尾部回退找到插入点（有界线性，不做全量排序）
		pos := n
		for pos > 0 && model.Less(it, b.items[pos-1]) {
			pos--
		}
		b.items = append(b.items, model.Item{})
		copy(b.items[pos+1:], b.items[pos:])
		b.items[pos] = it
	}
	b.state = Populated
	b.reason = model.ReasonNewItem
	return true
}

// BeginPagination 请求向前翻页。返回游标（当前最旧一条的排序键）。
// hasMore=false 或已有在飞的分页请求时拒绝（ok=false）。
func (b *Buffer) BeginPagination() (cursor string, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.hasMore || b.loadingMore || len(b.items) == 0 {
		return "", false
	}
	b.loadingMore = true
	b.state = Loading
	b.reason = model.ReasonPagination
	return b.items[0].CreatedAt, true
}

// AbortPagination 分页请求失败/被丢弃时清除在飞标记（所有退出路径都要走到）
func (b *Buffer) AbortPagination() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadingMore = false
	if len(b.items) > 0 {
		b.state = Populated
	} else {
		b.state = Empty
	}
}

// ApplyPage 翻页结果前插。页内已有的 id（页边界重叠、时钟偏差）全部去重，
// 因此对同一游标重复应用同一页是幂等的。
func (b *Buffer) ApplyPage(items []model.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.loadingMore = false

	fresh := make([]model.Item, 0, len(items))
	for _, it := range items {
		if _, dup := b.index[it.ID]; dup {
			continue
		}
		b.index[it.ID] = struct{}{}
		fresh = append(fresh, it)
	}
	if len(fresh) > 0 {
		merged := make([]model.Item, 0, len(fresh)+len(b.items))
		merged = append(merged, fresh...)
		merged = append(merged, b.items...)
		b.items = merged
		b.ensureSorted()
	}
	b.hasMore = len(items) == b.pageSize
	b.state = Populated
	b.reason = model.ReasonPagination
}

// MergeRecent 重连后的补偿合并：把一页最新数据并入，缺失的补上、已有的丢弃。
// 用于断连窗口内可能丢失的事件恢复。
func (b *Buffer) MergeRecent(items []model.Item) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	added := 0
	for _, it := range items {
		if _, dup := b.index[it.ID]; dup {
			continue
		}
		b.index[it.ID] = struct{}{}
		b.items = append(b.items, it)
		added++
	}
	if added > 0 {
		b.ensureSorted()
		b.state = Populated
		b.reason = model.ReasonNewItem
	}
	return added
}

// Reset 清空（订阅键变化时重建）
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
	b.index = make(map[string]struct{})
	b.state = Empty
	b.reason = model.ReasonInit
	b.hasMore = true
	b.loadingMore = false
}

// Snapshot 当前有序序列的拷贝
func (b *Buffer) Snapshot() []model.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Item, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

func (b *Buffer) HasMore() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasMore
}

func (b *Buffer) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reason 最近一次变更的原因
func (b *Buffer) Reason() model.Reason {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reason
}

// ensureSorted 调用方需持锁。先校验有序，乱序才排（历史页与实时流各自有序，
// 正常情况下这里只是一次线性扫描）。
func (b *Buffer) ensureSorted() {
	for i := 1; i < len(b.items); i++ {
		if model.Less(b.items[i], b.items[i-1]) {
			sort.SliceStable(b.items, func(x, y int) bool {
				return model.Less(b.items[x], b.items[y])
			})
			return
		}
	}
}
