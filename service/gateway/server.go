package gateway

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"LSProject/logger"
	"LSProject/service/storage"
	"LSProject/tools/ids"
	"LSProject/tools/security"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server 推送网关。连接升级后必须先发 auth 帧，
// 通过校验才登记到 Hub 并写 presence。
type Server struct {
	hub       *Hub
	jwtOpts   security.Options
	gatewayID string
	presTTL   time.Duration
}

func NewServer(hub *Hub, jwtOpts security.Options, gatewayID string) *Server {
	return &Server{
		hub:       hub,
		jwtOpts:   jwtOpts,
		gatewayID: gatewayID,
		presTTL:   90 * time.Second,
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// HandleWS gin 路由入口
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[gateway] upgrade websocket error: %v", err)
		return
	}

	client := newClient(ids.GenerateString(), ws)
	go client.writePump()
	defer s.teardown(client)

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// ---- 读循环：只读，不写；出错即退出（写协程收尾） ----
	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[gateway] peer closed snowID=%s err=%v", client.snowID, rerr)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[gateway] read timeout snowID=%s err=%v", client.snowID, rerr)
			} else {
				logger.Infof("[gateway] read err snowID=%s err=%v", client.snowID, rerr)
			}
			break
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrame(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[gateway] bad frame snowID=%s err=%v sample=%q", client.snowID, perr, sample)
			continue
		}

		switch frame.Type {
		case FrameAuth:
			s.handleAuth(client, frame)
		case FramePing:
			client.PushFrame(&Frame{Type: FramePong, Seq: frame.Seq, Ts: time.Now().UnixMilli()})
			if client.userID != "" {
				// 心跳顺带续 presence
				if err := storage.PresenceOnline(client.userID, s.gatewayID, s.presTTL); err != nil {
					logger.Warnf("[gateway] presence renew user=%s: %v", client.userID, err)
				}
			}
		default:
			// 网关是单向推送面，其余类型一律拒绝
			client.PushFrame(&Frame{Type: FrameError, Seq: frame.Seq, Payload: mustJSON(gin.H{
				"reason": "unsupported frame type: " + frame.Type,
			})})
		}
	}
}

func (s *Server) handleAuth(client *Client, frame *Frame) {
	var p authPayload
	if err := json.Unmarshal(frame.Payload, &p); err != nil || p.Token == "" {
		client.PushFrame(&Frame{Type: FrameError, Seq: frame.Seq, Payload: mustJSON(gin.H{
			"reason": "auth payload requires token",
		})})
		return
	}
	claims, err := security.Verify(s.jwtOpts, p.Token)
	if err != nil {
		logger.Infof("[gateway] auth rejected snowID=%s: %v", client.snowID, err)
		client.PushFrame(&Frame{Type: FrameError, Seq: frame.Seq, Payload: mustJSON(gin.H{
			"reason": "invalid token",
		})})
		return
	}

	client.userID = claims.UserID()
	s.hub.Register(client)
	if err := storage.PresenceOnline(client.userID, s.gatewayID, s.presTTL); err != nil {
		logger.Warnf("[gateway] presence online user=%s: %v", client.userID, err)
	}
	client.PushFrame(&Frame{Type: FrameAck, Seq: frame.Seq, Ts: time.Now().UnixMilli()})
	logger.Infof("[gateway] auth ok user=%s snowID=%s", client.userID, client.snowID)
}

func (s *Server) teardown(client *Client) {
	s.hub.Unregister(client)
	client.close()
	if client.userID != "" && s.hub.OnlineCount(client.userID) == 0 {
		if err := storage.PresenceOffline(client.userID); err != nil {
			logger.Warnf("[gateway] presence offline user=%s: %v", client.userID, err)
		}
	}
}

func mustJSON(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
