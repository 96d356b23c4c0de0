package ws

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// Frame is one named event on the wire: a JSON object per websocket
// text message
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// DecodeFrame parses an inbound websocket message
func DecodeFrame(msg []byte) (Frame, error) {
	var f Frame
	if err := sonic.Unmarshal(msg, &f); err != nil {
		return Frame{}, fmt.Errorf("malformed frame: %w", err)
	}
	if f.Event == "" {
		return Frame{}, fmt.Errorf("malformed frame: missing event")
	}
	return f, nil
}

// EncodeFrame serializes an outbound event
func EncodeFrame(event string, data any) ([]byte, error) {
	msg, err := sonic.Marshal(outboundFrame{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode frame %s: %w", event, err)
	}
	return msg, nil
}
