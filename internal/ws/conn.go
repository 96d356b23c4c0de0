package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn wraps a websocket connection with a write lock so replies and
// relayed traffic can be emitted from any handler. Implements
// registry.Sender.
type Conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

// NewConn wraps an upgraded websocket
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// Emit sends one named event as a text frame
func (c *Conn) Emit(event string, data any) error {
	msg, err := EncodeFrame(event, data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, msg)
}

// Close tears down the underlying websocket
func (c *Conn) Close() error {
	return c.ws.Close()
}
