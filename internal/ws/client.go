package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/logger"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/service"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	maxMessageSize = 4096
	sendBuffer     = 256
)

type Client struct {
	UserID      int64
	Username    string
	DisplayName string
	Conn        *websocket.Conn
	Send        chan []byte

	Hub  *Hub
	Done chan struct{}

	mu        sync.RWMutex
	room      *Room
	closeOnce sync.Once
}

func NewClient(who service.Identity, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID:      who.UserID,
		Username:    who.Username,
		DisplayName: who.DisplayName,
		Conn:        conn,
		Send:        make(chan []byte, sendBuffer),
		Hub:         hub,
		Done:        make(chan struct{}),
	}
}

func (c *Client) Room() *Room {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

func (c *Client) setRoom(r *Room) {
	c.mu.Lock()
	c.room = r
	c.mu.Unlock()
}

// Run serves the connection until the peer goes away
func (c *Client) Run() {
	go c.writePump()

	c.send(Message{Type: MsgConnected, Payload: ConnectedPayload{
		UserID:      c.UserID,
		Username:    c.Username,
		DisplayName: c.DisplayName,
	}})

	c.readPump()
}

// send queues msg without blocking; a client that stops reading loses frames
func (c *Client) send(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("ws marshal failed", "error", err, "type", msg.Type)
		return
	}
	select {
	case <-c.Done:
	case c.Send <- data:
	default:
		logger.Warn("ws send buffer full, dropping frame", "user_id", c.UserID, "type", msg.Type)
	}
}

func (c *Client) sendError(message string) {
	c.send(Message{Type: MsgError, Payload: ErrorPayload{Message: message}})
}

func (c *Client) readPump() {
	defer c.disconnect()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "error", err, "user_id", c.UserID)
			}
			return
		}
		c.Hub.HandleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case <-c.Done:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Warn("ws write error", "error", err, "user_id", c.UserID)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) disconnect() {
	c.closeOnce.Do(func() {
		c.Hub.OnDisconnect(c)
		close(c.Done)
		_ = c.Conn.Close()
	})
}
