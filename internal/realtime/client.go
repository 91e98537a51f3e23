package realtime

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// NewUpgrader accepts origins listed in allowed; "*" or an empty list accepts any origin.
func NewUpgrader(allowed []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowed) == 0 {
				return true
			}
			for _, o := range allowed {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
}

// Handler is called from the read loop with each frame the peer sends.
type Handler func(c *Client, data []byte)

// Client is one websocket connection. Frames from the peer go to the handler
// set with OnMessage, or are discarded when there is none.
type Client struct {
	ID       string
	Username string

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	handle Handler
}

func NewClient(hub *Hub, conn *websocket.Conn, username string) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Username: username,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
	}
}

func (c *Client) OnMessage(h Handler) *Client {
	c.handle = h
	return c
}

// Reply queues v for this client only, wrapped in an envelope on topic.
// It must only be called from the handler.
func (c *Client) Reply(topic string, v any) {
	data, err := encode(topic, v)
	if err != nil {
		logrus.WithError(err).WithField("client_id", c.ID).Warn("Websocket reply not encoded.")
		return
	}
	select {
	case c.send <- data:
	default:
		logrus.WithField("client_id", c.ID).Warn("Client send buffer full, dropping reply.")
	}
}

// Serve subscribes the client and blocks until the connection closes.
func (c *Client) Serve(topics ...string) {
	c.hub.Subscribe(c, topics...)
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unsubscribe(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithField("client_id", c.ID).Warn("Websocket read failed.")
			}
			return
		}
		if kind == websocket.TextMessage && c.handle != nil {
			c.handle(c, data)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logrus.WithError(err).WithField("client_id", c.ID).Warn("Websocket write failed.")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
