package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"fleet_tracker/internal/apperr"
)

// RedisBroker publishes envelopes on a Redis channel. Every instance runs Relay,
// which feeds what arrives on the channel into its local Hub.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *Hub
}

func NewRedisBroker(client *redis.Client, channel string, hub *Hub) *RedisBroker {
	return &RedisBroker{client: client, channel: channel, hub: hub}
}

func (b *RedisBroker) Publish(ctx context.Context, topic string, payload any) error {
	data, err := encode(topic, payload)
	if err != nil {
		return apperr.Delivery(topic, err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return apperr.Delivery(topic, err)
	}
	return nil
}

// Relay blocks until ctx is cancelled.
func (b *RedisBroker) Relay(ctx context.Context) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	logrus.WithField("channel", b.channel).Info("Relaying push messages from Redis.")
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.relay([]byte(msg.Payload))
		}
	}
}

func (b *RedisBroker) relay(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Topic == "" {
		logrus.WithError(err).WithField("channel", b.channel).Warn("Ignoring malformed push message.")
		return
	}
	if err := b.hub.enqueue(env.Topic, data); err != nil {
		logrus.WithError(err).WithField("topic", env.Topic).Warn("Relayed push message dropped.")
	}
}
