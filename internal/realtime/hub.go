// Package realtime pushes JSON envelopes to websocket subscribers grouped by topic.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fleet_tracker/internal/apperr"
)

const (
	AdminTopic     = "admin-notifications"
	BroadcastTopic = "broadcast-notifications"
	LocationsTopic = "driver-locations"
)

// DriverTopic is the per-driver notification topic.
func DriverTopic(username string) string {
	return "driver-" + username + "-notifications"
}

var errQueueFull = errors.New("hub queue full")

// Envelope is what subscribers receive on the wire.
type Envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

func encode(topic string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload for %s: %w", topic, err)
	}
	return json.Marshal(Envelope{Topic: topic, Payload: raw, SentAt: time.Now().UTC()})
}

type outbound struct {
	topic string
	data  []byte
}

// Hub fans published messages out to the clients subscribed to each topic.
// Publish never blocks: when the queue or a client buffer is full the message is dropped.
type Hub struct {
	mu      sync.RWMutex
	topics  map[string]map[*Client]struct{}
	clients map[*Client][]string
	queue   chan outbound
}

func NewHub(queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Hub{
		topics:  make(map[string]map[*Client]struct{}),
		clients: make(map[*Client][]string),
		queue:   make(chan outbound, queueSize),
	}
}

// Run drains the queue until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.queue:
			h.fanout(msg)
		}
	}
}

func (h *Hub) Publish(ctx context.Context, topic string, payload any) error {
	data, err := encode(topic, payload)
	if err != nil {
		return apperr.Delivery(topic, err)
	}
	return h.enqueue(topic, data)
}

func (h *Hub) enqueue(topic string, data []byte) error {
	select {
	case h.queue <- outbound{topic: topic, data: data}:
		return nil
	default:
		logrus.WithField("topic", topic).Warn("Hub queue full, dropping message.")
		return apperr.Delivery(topic, errQueueFull)
	}
}

func (h *Hub) fanout(msg outbound) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.topics[msg.topic] {
		select {
		case c.send <- msg.data:
		default:
			logrus.WithFields(logrus.Fields{
				"topic":     msg.topic,
				"client_id": c.ID,
				"username":  c.Username,
			}).Warn("Client send buffer full, dropping message.")
		}
	}
}

func (h *Hub) Subscribe(c *Client, topics ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range topics {
		if _, ok := h.topics[topic]; !ok {
			h.topics[topic] = make(map[*Client]struct{})
		}
		h.topics[topic][c] = struct{}{}
	}
	h.clients[c] = append(h.clients[c], topics...)
	logrus.WithFields(logrus.Fields{
		"client_id": c.ID,
		"username":  c.Username,
		"topics":    topics,
	}).Info("Client subscribed.")
}

// Unsubscribe removes c from every topic and closes its send channel. It is safe to call twice.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	topics, ok := h.clients[c]
	if !ok {
		return
	}
	for _, topic := range topics {
		delete(h.topics[topic], c)
		if len(h.topics[topic]) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(h.clients, c)
	close(c.send)
	logrus.WithFields(logrus.Fields{
		"client_id": c.ID,
		"username":  c.Username,
	}).Info("Client unsubscribed.")
}

// Subscribers reports how many clients listen on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
