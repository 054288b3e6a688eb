package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const redisChannelPrefix = "live:"

// RedisHub extends the local Hub across server instances: every publish is
// delivered to local subscribers and relayed on a Redis channel named after
// the destination, so sessions connected to other instances receive it too.
type RedisHub struct {
	*Hub

	redisClient *redis.Client
	serverID    string
}

type RedisMessage struct {
	FromServerID string          `json:"fromServerId"`
	Destination  string          `json:"destination"`
	Payload      json.RawMessage `json:"payload"`
}

func NewRedisHub(log *slog.Logger, redisClient *redis.Client, serverID string) *RedisHub {
	return &RedisHub{
		Hub:         NewHub(log.With("server", serverID)),
		redisClient: redisClient,
		serverID:    serverID,
	}
}

func (h *RedisHub) Run(ctx context.Context) {
	pubsub := h.redisClient.PSubscribe(ctx, redisChannelPrefix+"*")
	defer pubsub.Close()

	go h.subscribeRedis(pubsub.Channel())

	h.Hub.Run(ctx)
}

// subscribeRedis relays frames published by other instances to local sessions.
func (h *RedisHub) subscribeRedis(ch <-chan *redis.Message) {
	h.log.Info("Redis subscriber started")

	for msg := range ch {
		h.handleRedisMessage([]byte(msg.Payload))
	}
}

func (h *RedisHub) handleRedisMessage(data []byte) {
	var redisMsg RedisMessage
	if err := json.Unmarshal(data, &redisMsg); err != nil {
		h.log.Warn("Unreadable Redis message", "error", err)
		return
	}

	// Local subscribers already got it in Publish.
	if redisMsg.FromServerID == h.serverID {
		return
	}

	if _, err := h.deliverLocal(redisMsg.Destination, redisMsg.Payload); err != nil {
		h.log.Warn("Relaying Redis message failed", "destination", redisMsg.Destination, "error", err)
	}
}

func (h *RedisHub) Publish(ctx context.Context, destination string, payload []byte) error {
	if _, err := h.deliverLocal(destination, payload); err != nil {
		return err
	}

	msgBytes, err := json.Marshal(RedisMessage{
		FromServerID: h.serverID,
		Destination:  destination,
		Payload:      payload,
	})
	if err != nil {
		return err
	}

	return h.redisClient.Publish(ctx, redisChannelPrefix+destination, msgBytes).Err()
}
