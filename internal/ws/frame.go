package ws

import (
	"github.com/goccy/go-json"
)

// Frame 长连接上下行的统一载体
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// EncodeFrame 序列化一帧，广播场景只编码一次后复用
func EncodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Frame{Event: event, Data: raw})
}

func DecodeFrame(buf []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(buf, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
