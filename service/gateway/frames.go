package gateway

import (
	"encoding/json"

	"LSProject/tools/errs"
)

// 帧类型。网关与前端之间走 JSON 文本帧。
const (
	FrameAuth   = "auth"   // 客户端首帧，payload = {"token": "..."}
	FramePing   = "ping"   // 心跳探测
	FramePong   = "pong"   // 心跳应答
	FrameInsert = "insert" // 服务端推送：某资源新增一行
	FrameNotify = "notify" // 服务端推送：通知中心新条目
	FrameAck    = "ack"    // 服务端对 auth 的应答
	FrameError  = "error"  // 服务端错误应答
)

// Frame 网关线缆帧
type Frame struct {
	Type       string          `json:"type"`
	Seq        int64           `json:"seq,omitempty"`
	ResourceID string          `json:"resource_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Ts         int64           `json:"ts,omitempty"`
}

// ParseFrame 解析入站帧，坏帧返回 DecodeError
func ParseFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errs.ErrDecode.WithDetail(err.Error())
	}
	if f.Type == "" {
		return nil, errs.ErrDecode.WithDetail("missing frame type")
	}
	return &f, nil
}

// MarshalFrame 出站帧编码
func MarshalFrame(f *Frame) ([]byte, error) {
	return json.Marshal(f)
}

// authPayload auth 帧负载
type authPayload struct {
	Token string `json:"token"`
}
