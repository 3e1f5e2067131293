package gateway

import (
	"sync"
)

// Hub 维护 userID → 连接集合。
// 同一用户多端在线，推送时广播到每条连接。
type Hub struct {
	mu     sync.RWMutex
	byUser map[string]map[*Client]struct{}
	bySnow map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		byUser: make(map[string]map[*Client]struct{}),
		bySnow: make(map[string]*Client),
	}
}

// Register 连接 auth 通过后登记
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bySnow[c.snowID] = c
	if c.userID != "" {
		set, ok := h.byUser[c.userID]
		if !ok {
			set = make(map[*Client]struct{})
			h.byUser[c.userID] = set
		}
		set[c] = struct{}{}
	}
}

// Unregister 连接退出时摘除
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.bySnow, c.snowID)
	if c.userID != "" {
		if set, ok := h.byUser[c.userID]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.byUser, c.userID)
			}
		}
	}
}

// PushToUser 给该用户所有在线连接投递帧
func (h *Hub) PushToUser(userID string, f *Frame) int {
	data, err := MarshalFrame(f)
	if err != nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.byUser[userID] {
		c.Push(data)
		n++
	}
	return n
}

// OnlineCount 当前该用户的连接数
func (h *Hub) OnlineCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}
