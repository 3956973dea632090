package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

const wsReadLimit = 64 << 10

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// wsFrame is every server-to-client message.
type wsFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// wsCommand is every client-to-server message. Fields unused by a type are ignored.
type wsCommand struct {
	Type     string  `json:"type"`
	Position int     `json:"position"`
	Length   int     `json:"length"`
	Value    string  `json:"value"`
	Percent  float64 `json:"percent"`
}

func errFrame(msg string) wsFrame {
	return wsFrame{Type: "error", Data: msg}
}

// wsClient serialises writes; replay updates arrive from timer goroutines while the read
// loop may also answer. Sends before attach or after a write failure are dropped.
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) attach(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *wsClient) Send(frame wsFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if err := c.conn.WriteJSON(frame); err != nil {
		c.conn = nil
	}
}
