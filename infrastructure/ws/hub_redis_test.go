package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mama165/sdk-go/logs"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func startRedisHub(t *testing.T, mr *miniredis.Miniredis, serverID string) *RedisHub {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hub := NewRedisHub(logs.GetLoggerFromLevel(slog.LevelDebug), client, serverID)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestRedisHub_Publish(t *testing.T) {
	t.Run("should deliver locally and relay to other instances", func(t *testing.T) {
		req := require.New(t)
		ctx := context.Background()
		mr := miniredis.RunT(t)
		serverA := startRedisHub(t, mr, "server-a")
		serverB := startRedisHub(t, mr, "server-b")
		req.Eventually(func() bool { return mr.PubSubNumPat() == 2 }, time.Second, 10*time.Millisecond)

		observer := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer observer.Close()
		sub := observer.Subscribe(ctx, "live:user:1")
		defer sub.Close()
		_, err := sub.Receive(ctx)
		req.NoError(err)

		onA := NewClient(1, serverA, nil, slog.Default())
		onB := NewClient(1, serverB, nil, slog.Default())
		serverA.RegisterClient(onA)
		serverB.RegisterClient(onB)

		req.NoError(serverA.Publish(ctx, "user:1", []byte(`{"content":"is Rex still available?"}`)))

		local := receive(t, onA)
		req.Equal("user:1", local.Destination)
		req.JSONEq(`{"content":"is Rex still available?"}`, string(local.Payload))

		relayed := receive(t, onB)
		req.Equal("user:1", relayed.Destination)
		req.JSONEq(`{"content":"is Rex still available?"}`, string(relayed.Payload))

		msg, err := sub.ReceiveMessage(ctx)
		req.NoError(err)
		req.Equal("live:user:1", msg.Channel)
		var envelope RedisMessage
		req.NoError(json.Unmarshal([]byte(msg.Payload), &envelope))
		req.Equal("server-a", envelope.FromServerID)
		req.Equal("user:1", envelope.Destination)
		req.JSONEq(`{"content":"is Rex still available?"}`, string(envelope.Payload))

		// server-a sees its own relay and drops it
		req.Never(func() bool { return len(onA.send) > 0 }, 200*time.Millisecond, 20*time.Millisecond)
	})

	t.Run("should still deliver locally when Redis is unreachable", func(t *testing.T) {
		req := require.New(t)
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
		defer client.Close()
		mr.Close()

		hub := &RedisHub{Hub: startHub(t), redisClient: client, serverID: "server-a"}
		local := NewClient(1, hub, nil, slog.Default())
		hub.RegisterClient(local)

		err := hub.Publish(context.Background(), "user:1", []byte(`1`))

		req.Error(err)
		req.Equal("user:1", receive(t, local).Destination)
	})
}
