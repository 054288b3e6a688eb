package ws

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBufferSize = 256
)

// Client is one live websocket session. A user may hold several at once.
type Client struct {
	Id     string
	UserId int64

	hub  IHub
	conn *websocket.Conn
	send chan []byte
	log  *slog.Logger

	// guarded by the hub lock
	destinations map[string]struct{}
}

func NewClient(userId int64, hub IHub, conn *websocket.Conn, log *slog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		Id:           id,
		UserId:       userId,
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, sendBufferSize),
		log:          log.With("user", userId, "session", id),
		destinations: make(map[string]struct{}),
	}
}

// ReadPump hands every inbound frame to handle until the connection fails,
// then unregisters the session.
func (c *Client) ReadPump(handle func(data []byte)) {
	defer func() {
		c.hub.UnregisterClient(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Unexpected close", "error", err)
			}
			return
		}
		handle(data)
	}
}

// WritePump drains the send buffer to the connection and keeps it alive with
// pings. It returns once the hub closes the buffer or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Debug("Write failed", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
