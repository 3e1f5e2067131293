package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"LSProject/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// Client 一条已升级的 websocket 连接。
// 写走 send 通道由单写协程消费，读循环只读不写。
type Client struct {
	snowID string // 连接级唯一 id
	userID string // auth 通过后才有值
	ws     *websocket.Conn
	send   chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(snowID string, ws *websocket.Conn) *Client {
	return &Client{
		snowID: snowID,
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Push 非阻塞投递。通道满了丢帧并记日志，慢消费端不拖垮网关。
func (c *Client) Push(data []byte) {
	select {
	case c.send <- data:
	case <-c.done:
	default:
		logger.Warnf("[gateway] send buffer full, drop frame snowID=%s user=%s", c.snowID, c.userID)
	}
}

// PushFrame 编码后投递
func (c *Client) PushFrame(f *Frame) {
	data, err := MarshalFrame(f)
	if err != nil {
		logger.Errorf("[gateway] marshal frame: %v", err)
		return
	}
	c.Push(data)
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// writePump 单写协程：消费 send 通道并按周期发 ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Infof("[gateway] write err snowID=%s: %v", c.snowID, err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
